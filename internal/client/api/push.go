package api

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strings"

	"github.com/dmitrijs2005/prodhub/internal/server/models"
	"github.com/dmitrijs2005/prodhub/internal/transfer"
)

// LocalFile is a file on disk scheduled for upload. RelativePath uses
// forward slashes and is relative to the pushed folder.
type LocalFile struct {
	Path         string
	RelativePath string
	Size         int64
	ContentType  string
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Push streams files as one commit. The body is produced while it is sent,
// so memory use does not depend on file sizes; onProgress receives whole
// percentages of file bytes sent.
func (c *Client) Push(ctx context.Context, repoID, branchID, message string, files []LocalFile, onProgress transfer.PercentFunc) (*models.Commit, error) {
	var total int64
	for _, f := range files {
		total += f.Size
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		pw.CloseWithError(writeCommitBody(mw, message, files, total, onProgress))
	}()

	path := "/api/repositories/" + url.PathEscape(repoID) + "/branches/" + url.PathEscape(branchID) + "/commits"
	req, err := c.newRequest(ctx, http.MethodPost, path, pr)
	if err != nil {
		pr.Close()
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out models.Commit
	if err := c.do(req, &out); err != nil {
		pr.CloseWithError(err)
		return nil, err
	}
	return &out, nil
}

func writeCommitBody(mw *multipart.Writer, message string, files []LocalFile, total int64, onProgress transfer.PercentFunc) error {
	if err := mw.WriteField("message", message); err != nil {
		return err
	}

	var sent int64
	last := -1
	report := func(n int64) {
		if onProgress == nil {
			return
		}
		p := 100
		if total > 0 {
			p = int(n * 100 / total)
		}
		if p != last {
			last = p
			onProgress(p)
		}
	}

	for _, f := range files {
		if err := writeFilePart(mw, f, func(read, _ int64) { report(sent + read) }); err != nil {
			return fmt.Errorf("upload %s: %w", f.RelativePath, err)
		}
		sent += f.Size
	}
	for _, f := range files {
		if err := mw.WriteField("paths", f.RelativePath); err != nil {
			return err
		}
	}
	report(total)
	return mw.Close()
}

func writeFilePart(mw *multipart.Writer, f LocalFile, progress func(read, total int64)) error {
	src, err := os.Open(f.Path)
	if err != nil {
		return err
	}
	defer src.Close()

	h := make(textproto.MIMEHeader)
	name := f.RelativePath[strings.LastIndex(f.RelativePath, "/")+1:]
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, quoteEscaper.Replace(name)))
	if f.ContentType != "" {
		h.Set("Content-Type", f.ContentType)
	}
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}

	_, err = io.Copy(part, transfer.NewProgressReader(src, f.Size, progress))
	return err
}
