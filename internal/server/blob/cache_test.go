package blob

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	*MemoryStore
	urlCalls int
	urlErr   error
}

func (c *countingStore) URL(ctx context.Context, key string) (string, error) {
	c.urlCalls++
	if c.urlErr != nil {
		return "", c.urlErr
	}
	return c.MemoryStore.URL(ctx, key)
}

func TestCachedStore_URLIsMemoized(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{MemoryStore: NewMemoryStore("b")}
	c := NewCachedStore(inner, 16, time.Minute)

	require.NoError(t, c.Put(ctx, "k", strings.NewReader("x"), 1, ""))

	for i := 0; i < 3; i++ {
		u, err := c.URL(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, "memory://b/k", u)
	}
	assert.Equal(t, 1, inner.urlCalls)
}

func TestCachedStore_DeleteInvalidates(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{MemoryStore: NewMemoryStore("b")}
	c := NewCachedStore(inner, 16, time.Minute)

	require.NoError(t, c.Put(ctx, "k", strings.NewReader("x"), 1, ""))
	_, err := c.URL(ctx, "k")
	require.NoError(t, err)

	require.NoError(t, c.Delete(ctx, "k"))
	_, err = c.URL(ctx, "k")
	assert.Error(t, err)
	assert.Equal(t, 2, inner.urlCalls)
}

func TestCachedStore_ErrorsAreNotCached(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{MemoryStore: NewMemoryStore("b"), urlErr: errors.New("presign failed")}
	c := NewCachedStore(inner, 16, time.Minute)

	_, err := c.URL(ctx, "k")
	require.Error(t, err)
	_, err = c.URL(ctx, "k")
	require.Error(t, err)
	assert.Equal(t, 2, inner.urlCalls)
}

func TestCachedStore_Expiry(t *testing.T) {
	ctx := context.Background()
	inner := &countingStore{MemoryStore: NewMemoryStore("b")}
	c := NewCachedStore(inner, 16, 20*time.Millisecond)
	require.NoError(t, inner.Put(ctx, "k", strings.NewReader("x"), 1, ""))

	_, err := c.URL(ctx, "k")
	require.NoError(t, err)
	time.Sleep(60 * time.Millisecond)
	_, err = c.URL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.urlCalls)
}
