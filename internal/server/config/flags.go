package config

import (
	"flag"
	"time"

	"github.com/dmitrijs2005/prodhub/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8080")
//	-r string   gRPC health bind address (e.g., ":50051")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-l string   log level (debug, info, warn, error)
//	-x string   blob driver (s3, minio, memory)
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-t int      download URL validity, minutes
//	-m int      per-file upload limit, megabytes
//
// Only these flags are taken from args (see flagx.FilterArgs); anything
// else on the command line belongs to other loaders. The unit-converted
// flags -t and -m only apply when given explicitly.
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-r", "-d", "-s", "-l", "-x", "-u", "-p", "-b", "-g", "-e", "-t", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port to run server")
	fs.StringVar(&config.EndpointAddrGRPC, "r", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.BlobDriver, "x", config.BlobDriver, "blob driver: s3, minio or memory")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	presignExpiry := fs.Int("t", int(config.PresignExpiry.Minutes()), "download URL validity (in minutes)")
	maxFileSize := fs.Int64("m", config.MaxFileSize/(1024*1024), "per-file upload limit (in megabytes)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.PresignExpiry = time.Duration(*presignExpiry) * time.Minute
		case "m":
			config.MaxFileSize = *maxFileSize * 1024 * 1024
		}
	})
}
