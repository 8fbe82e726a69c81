package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/prodhub/internal/flagx"
	"github.com/dmitrijs2005/prodhub/internal/timex"
)

// JsonConfig is the on-disk shape of the server config file. Durations use
// timex.Duration so both "15m" and integer nanoseconds are accepted.
// Fields left out of the file keep their current values.
type JsonConfig struct {
	EndpointAddrHTTP    *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC    *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN         *string         `json:"database_dsn"`
	SecretKey           *string         `json:"secret_key"`
	LogLevel            *string         `json:"log_level"`
	BlobDriver          *string         `json:"blob_driver"`
	S3RootUser          *string         `json:"s3_root_user"`
	S3RootPassword      *string         `json:"s3_root_password"`
	S3Bucket            *string         `json:"s3_bucket"`
	S3Region            *string         `json:"s3_region"`
	S3BaseEndpoint      *string         `json:"s3_base_endpoint"`
	PresignExpiry       *timex.Duration `json:"presign_expiry"`
	URLCacheSize        *int            `json:"url_cache_size"`
	MaxFileSize         *int64          `json:"max_file_size"`
	HealthCheckInterval *timex.Duration `json:"health_check_interval"`
}

// parseJson overlays values from the JSON file named by -c/-config.
// Without the flag nothing is loaded. An unreadable file or invalid JSON
// panics: a broken config file must stop the server at start-up.
func parseJson(config *Config, args []string) {
	jsonConfigFile := flagx.ConfigFileFlag(args)
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	copyString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	copyString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	copyString(&config.DatabaseDSN, c.DatabaseDSN)
	copyString(&config.SecretKey, c.SecretKey)
	copyString(&config.LogLevel, c.LogLevel)
	copyString(&config.BlobDriver, c.BlobDriver)
	copyString(&config.S3RootUser, c.S3RootUser)
	copyString(&config.S3RootPassword, c.S3RootPassword)
	copyString(&config.S3Bucket, c.S3Bucket)
	copyString(&config.S3Region, c.S3Region)
	copyString(&config.S3BaseEndpoint, c.S3BaseEndpoint)

	if c.PresignExpiry != nil {
		config.PresignExpiry = c.PresignExpiry.Duration
	}
	if c.HealthCheckInterval != nil {
		config.HealthCheckInterval = c.HealthCheckInterval.Duration
	}
	if c.URLCacheSize != nil {
		config.URLCacheSize = *c.URLCacheSize
	}
	if c.MaxFileSize != nil {
		config.MaxFileSize = *c.MaxFileSize
	}
}

func copyString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
