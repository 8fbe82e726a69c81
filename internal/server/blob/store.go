// Package blob stores uploaded project files in object storage and hands
// out download URLs for them.
package blob

import (
	"context"
	"io"
)

// Store is the object storage used for commit files. Keys are slash
// separated paths such as "repositories/{repo}/branches/{branch}/...".
type Store interface {
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	// URL returns a download URL for key. Presigned URLs expire, so callers
	// should not persist the result as the only way to reach an object.
	URL(ctx context.Context, key string) (string, error)
}
