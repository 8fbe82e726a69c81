package blob

import (
	"context"
	"io"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CachedStore memoizes download URLs of the wrapped Store. Entries expire
// before the presigned URLs they hold.
type CachedStore struct {
	Store
	urls *expirable.LRU[string, string]
}

// NewCachedStore caches up to size URLs for ttl each.
func NewCachedStore(s Store, size int, ttl time.Duration) *CachedStore {
	return &CachedStore{Store: s, urls: expirable.NewLRU[string, string](size, nil, ttl)}
}

func (c *CachedStore) Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	c.urls.Remove(key)
	return c.Store.Put(ctx, key, body, size, contentType)
}

func (c *CachedStore) Delete(ctx context.Context, key string) error {
	c.urls.Remove(key)
	return c.Store.Delete(ctx, key)
}

func (c *CachedStore) URL(ctx context.Context, key string) (string, error) {
	if u, ok := c.urls.Get(key); ok {
		return u, nil
	}
	u, err := c.Store.URL(ctx, key)
	if err != nil {
		return "", err
	}
	c.urls.Add(key, u)
	return u, nil
}
