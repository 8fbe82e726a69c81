package blob

import (
	"context"
	"fmt"

	sc "github.com/dmitrijs2005/prodhub/internal/server/config"
)

const (
	DriverS3     = "s3"
	DriverMinio  = "minio"
	DriverMemory = "memory"
)

// New builds the Store selected by cfg.BlobDriver and wraps it with the URL
// cache. Cached URLs live for half the presign expiry.
func New(ctx context.Context, cfg *sc.Config) (Store, error) {
	c := S3Config{
		Endpoint:  cfg.S3BaseEndpoint,
		Region:    cfg.S3Region,
		AccessKey: cfg.S3RootUser,
		SecretKey: cfg.S3RootPassword,
		Bucket:    cfg.S3Bucket,
		Expiry:    cfg.PresignExpiry,
	}

	var (
		s   Store
		err error
	)
	switch cfg.BlobDriver {
	case DriverS3:
		s, err = NewS3Store(ctx, c)
	case DriverMinio:
		s, err = NewMinioStore(c)
	case DriverMemory:
		s = NewMemoryStore(cfg.S3Bucket)
	default:
		return nil, fmt.Errorf("unknown blob driver %q", cfg.BlobDriver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.URLCacheSize <= 0 {
		return s, nil
	}
	return NewCachedStore(s, cfg.URLCacheSize, cfg.PresignExpiry/2), nil
}
