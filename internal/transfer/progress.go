package transfer

import "io"

// ProgressReader reports the running byte count of an underlying reader.
type ProgressReader struct {
	r      io.Reader
	total  int64
	read   int64
	report func(read, total int64)
}

func NewProgressReader(r io.Reader, total int64, report func(read, total int64)) *ProgressReader {
	return &ProgressReader{r: r, total: total, report: report}
}

func (p *ProgressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.read += int64(n)
		if p.report != nil {
			p.report(p.read, p.total)
		}
	}
	return n, err
}

// BytesRead returns the number of bytes read so far.
func (p *ProgressReader) BytesRead() int64 {
	return p.read
}
