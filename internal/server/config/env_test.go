package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_ReadsVariables(t *testing.T) {
	t.Setenv(EnvDatabaseDSN, "postgres://env/db")
	t.Setenv(EnvBlobDriver, "minio")
	t.Setenv(EnvPresignExpiry, "5m")
	t.Setenv(EnvURLCacheSize, "12")
	t.Setenv(EnvMaxFileSize, "2048")
	t.Setenv(EnvHealthInterval, "not-a-duration")

	c := &Config{}
	c.LoadDefaults()
	parseEnv(c, nil)

	assert.Equal(t, "postgres://env/db", c.DatabaseDSN)
	assert.Equal(t, "minio", c.BlobDriver)
	assert.Equal(t, 5*time.Minute, c.PresignExpiry)
	assert.Equal(t, 12, c.URLCacheSize)
	assert.Equal(t, int64(2048), c.MaxFileSize)
	assert.Equal(t, 10*time.Second, c.HealthCheckInterval, "malformed value keeps the default")
}

func TestParseEnv_LoadsDotenvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prodhub.env")
	require.NoError(t, os.WriteFile(path, []byte("PRODHUB_SECRET_KEY=dotenv-secret\nPRODHUB_S3_REGION=eu-west-1\n"), 0o600))

	t.Setenv(EnvS3Region, "already-set")
	t.Cleanup(func() { _ = os.Unsetenv(EnvSecretKey) })

	c := &Config{}
	c.LoadDefaults()
	parseEnv(c, []string{"-env", path})

	assert.Equal(t, "dotenv-secret", c.SecretKey)
	assert.Equal(t, "already-set", c.S3Region, "dotenv never overrides the real environment")
}

func TestParseEnv_MissingExplicitFilePanics(t *testing.T) {
	c := &Config{}
	require.Panics(t, func() { parseEnv(c, []string{"-env", filepath.Join(t.TempDir(), "nope.env")}) })
}
