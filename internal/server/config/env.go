package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/prodhub/internal/flagx"
	"github.com/joho/godotenv"
)

// Environment variable names understood by parseEnv.
const (
	EnvHTTPAddr       = "PRODHUB_HTTP_ADDR"
	EnvGRPCAddr       = "PRODHUB_GRPC_ADDR"
	EnvDatabaseDSN    = "PRODHUB_DATABASE_DSN"
	EnvSecretKey      = "PRODHUB_SECRET_KEY"
	EnvLogLevel       = "PRODHUB_LOG_LEVEL"
	EnvBlobDriver     = "PRODHUB_BLOB_DRIVER"
	EnvS3User         = "PRODHUB_S3_ROOT_USER"
	EnvS3Password     = "PRODHUB_S3_ROOT_PASSWORD"
	EnvS3Bucket       = "PRODHUB_S3_BUCKET"
	EnvS3Region       = "PRODHUB_S3_REGION"
	EnvS3Endpoint     = "PRODHUB_S3_BASE_ENDPOINT"
	EnvPresignExpiry  = "PRODHUB_PRESIGN_EXPIRY"
	EnvURLCacheSize   = "PRODHUB_URL_CACHE_SIZE"
	EnvMaxFileSize    = "PRODHUB_MAX_FILE_SIZE"
	EnvHealthInterval = "PRODHUB_HEALTH_CHECK_INTERVAL"
)

// parseEnv loads a dotenv file (the -env flag, or ./.env when present)
// into the process environment without overriding variables that are
// already set, then copies every PRODHUB_* variable found into config.
//
// Durations use Go syntax ("15m"); sizes are plain byte counts.
// Malformed numeric values are ignored and the previous value is kept.
func parseEnv(config *Config, args []string) {
	if file := flagx.EnvFileFlag(args); file != "" {
		if err := godotenv.Load(file); err != nil {
			panic(err)
		}
	} else {
		_ = godotenv.Load()
	}

	setString(&config.EndpointAddrHTTP, EnvHTTPAddr)
	setString(&config.EndpointAddrGRPC, EnvGRPCAddr)
	setString(&config.DatabaseDSN, EnvDatabaseDSN)
	setString(&config.SecretKey, EnvSecretKey)
	setString(&config.LogLevel, EnvLogLevel)
	setString(&config.BlobDriver, EnvBlobDriver)
	setString(&config.S3RootUser, EnvS3User)
	setString(&config.S3RootPassword, EnvS3Password)
	setString(&config.S3Bucket, EnvS3Bucket)
	setString(&config.S3Region, EnvS3Region)
	setString(&config.S3BaseEndpoint, EnvS3Endpoint)
	setDuration(&config.PresignExpiry, EnvPresignExpiry)
	setDuration(&config.HealthCheckInterval, EnvHealthInterval)

	if v, ok := lookup(EnvURLCacheSize); ok {
		if n, err := strconv.Atoi(v); err == nil {
			config.URLCacheSize = n
		}
	}
	if v, ok := lookup(EnvMaxFileSize); ok {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.MaxFileSize = n
		}
	}
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(name)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func setString(dst *string, name string) {
	if v, ok := lookup(name); ok {
		*dst = v
	}
}

func setDuration(dst *time.Duration, name string) {
	if v, ok := lookup(name); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}
