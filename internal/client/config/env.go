package config

import (
	"os"
	"time"

	"github.com/dmitrijs2005/prodhub/internal/flagx"
	"github.com/joho/godotenv"
)

const (
	EnvServerURL = "PRODHUB_SERVER_URL"
	EnvToken     = "PRODHUB_TOKEN"
	EnvSecretKey = "PRODHUB_SECRET_KEY"
	EnvTimeout   = "PRODHUB_TIMEOUT"
)

// parseEnv loads the dotenv file named by -env (or ./.env when present)
// without overriding variables already set, then copies the PRODHUB_*
// variables it finds into cfg. A malformed timeout is ignored.
func parseEnv(cfg *Config, args []string) {
	if file := flagx.EnvFileFlag(args); file != "" {
		if err := godotenv.Load(file); err != nil {
			panic(err)
		}
	} else {
		_ = godotenv.Load()
	}

	if v, ok := os.LookupEnv(EnvServerURL); ok && v != "" {
		cfg.ServerURL = v
	}
	if v, ok := os.LookupEnv(EnvToken); ok && v != "" {
		cfg.Token = v
	}
	if v, ok := os.LookupEnv(EnvSecretKey); ok && v != "" {
		cfg.SecretKey = v
	}
	if v, ok := os.LookupEnv(EnvTimeout); ok {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Timeout = d
		}
	}
}
