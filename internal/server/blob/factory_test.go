package blob

import (
	"context"
	"testing"
	"time"

	sc "github.com/dmitrijs2005/prodhub/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(driver string) *sc.Config {
	cfg := &sc.Config{}
	cfg.LoadDefaults()
	cfg.BlobDriver = driver
	return cfg
}

func TestNew_MemoryIsCached(t *testing.T) {
	s, err := New(context.Background(), testConfig(DriverMemory))
	require.NoError(t, err)

	c, ok := s.(*CachedStore)
	require.True(t, ok)
	_, ok = c.Store.(*MemoryStore)
	assert.True(t, ok)
}

func TestNew_CacheDisabled(t *testing.T) {
	cfg := testConfig(DriverMemory)
	cfg.URLCacheSize = 0

	s, err := New(context.Background(), cfg)
	require.NoError(t, err)
	_, ok := s.(*MemoryStore)
	assert.True(t, ok)
}

func TestNew_Minio(t *testing.T) {
	cfg := testConfig(DriverMinio)
	cfg.PresignExpiry = time.Minute

	s, err := New(context.Background(), cfg)
	require.NoError(t, err)
	_, ok := s.(*CachedStore).Store.(*MinioStore)
	assert.True(t, ok)
}

func TestNew_UnknownDriver(t *testing.T) {
	_, err := New(context.Background(), testConfig("ftp"))
	assert.ErrorContains(t, err, `unknown blob driver "ftp"`)
}
