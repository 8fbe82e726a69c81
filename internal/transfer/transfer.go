// Package transfer uploads project files onto a blob store and describes
// the stored objects.
package transfer

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/dmitrijs2005/prodhub/internal/common"
	"github.com/rs/xid"
)

// File is one file offered for upload. RelativePath is set when the file
// comes from a folder picker and keeps its place in the project tree.
type File struct {
	Name         string
	RelativePath string
	Size         int64
	ContentType  string
	Body         io.Reader
}

// StorageFile describes an uploaded object.
type StorageFile struct {
	URL  string `json:"url"`
	Path string `json:"path"`
	Name string `json:"name"`
	Size int64  `json:"size"`
	Type string `json:"type"`
}

// Store is the object storage files are uploaded to. The server's blob
// drivers satisfy it.
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(ctx context.Context, key string) (string, error)
}

// ProgressFunc receives the fraction of a single file sent so far, 0 to 1.
type ProgressFunc func(fraction float64)

// PercentFunc receives overall progress of a batch as a whole percentage.
type PercentFunc func(percent int)

type Uploader struct {
	store Store
	newID func() string
}

func NewUploader(store Store) *Uploader {
	return &Uploader{store: store, newID: func() string { return xid.New().String() }}
}

// Upload stores f under dir and returns its descriptor. Store errors are
// returned unchanged and nothing is retried.
func (u *Uploader) Upload(ctx context.Context, dir string, f File, onProgress ProgressFunc) (*StorageFile, error) {
	key, name, err := u.destination(dir, f)
	if err != nil {
		return nil, err
	}

	body := io.Reader(f.Body)
	if onProgress != nil {
		body = NewProgressReader(f.Body, f.Size, func(read, total int64) {
			if total > 0 {
				onProgress(min(float64(read)/float64(total), 1))
			}
		})
	}

	if err := u.store.Put(ctx, key, body, f.Size, f.ContentType); err != nil {
		return nil, err
	}
	if onProgress != nil {
		onProgress(1)
	}

	url, err := u.store.URL(ctx, key)
	if err != nil {
		return nil, err
	}

	return &StorageFile{URL: url, Path: key, Name: name, Size: f.Size, Type: f.ContentType}, nil
}

// UploadMultiple uploads files one after another. The first failure stops
// the batch; files already stored stay in place and are returned alongside
// the error so the caller can clean them up.
func (u *Uploader) UploadMultiple(ctx context.Context, dir string, files []File, onProgress PercentFunc) ([]StorageFile, error) {
	var total int64
	for _, f := range files {
		total += f.Size
	}

	results := make([]StorageFile, 0, len(files))
	var done int64
	last := -1
	report := func(sent int64) {
		if onProgress == nil {
			return
		}
		p := 100
		if total > 0 {
			p = int(float64(sent) * 100 / float64(total))
		}
		if p != last {
			last = p
			onProgress(p)
		}
	}

	for _, f := range files {
		size := f.Size
		sf, err := u.Upload(ctx, dir, f, func(fraction float64) {
			report(done + int64(fraction*float64(size)))
		})
		if err != nil {
			return results, fmt.Errorf("upload %s: %w", f.Name, err)
		}
		results = append(results, *sf)
		done += size
		report(done)
	}
	if len(files) == 0 {
		report(0)
	}

	return results, nil
}

// Delete removes the object at key.
func (u *Uploader) Delete(ctx context.Context, key string) error {
	return u.store.Delete(ctx, key)
}

// URL returns a fresh download URL for key.
func (u *Uploader) URL(ctx context.Context, key string) (string, error) {
	return u.store.URL(ctx, key)
}

func (u *Uploader) destination(dir string, f File) (key, name string, err error) {
	dir = strings.TrimSuffix(dir, "/")
	id := u.newID()

	if f.RelativePath == "" {
		name = path.Base(strings.ReplaceAll(f.Name, "\\", "/"))
		if name == "." || name == "/" || name == ".." {
			return "", "", fmt.Errorf("%w: invalid file name %q", common.ErrorValidation, f.Name)
		}
		return fmt.Sprintf("%s/%s_%s", dir, id, name), name, nil
	}

	rel, err := CleanRelativePath(f.RelativePath)
	if err != nil {
		return "", "", err
	}
	name = f.Name
	if name == "" {
		name = path.Base(rel)
	}
	return fmt.Sprintf("%s/%s/%s", dir, id, rel), name, nil
}

// CleanRelativePath normalizes a folder-picker path and rejects paths that
// would leave the upload directory.
func CleanRelativePath(p string) (string, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	if strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("%w: absolute path %q", common.ErrorValidation, p)
	}
	c := path.Clean(p)
	if c == "." || c == ".." || strings.HasPrefix(c, "../") {
		return "", fmt.Errorf("%w: path %q escapes the upload directory", common.ErrorValidation, p)
	}
	return c, nil
}
