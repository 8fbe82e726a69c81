// Package config holds prodhubctl settings: defaults, then an optional JSON
// file (-c/-config), then PRODHUB_* environment variables (optionally from a
// .env file). Command-line flags of individual commands are applied last by
// the cli package.
package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the ProdHub CLI.
//
// Fields:
//   - ServerURL: base URL of the ProdHub HTTP API.
//   - Token: access token sent with every request.
//   - SecretKey: HMAC secret used by the "token" command to mint dev tokens.
//   - Timeout: limit for non-upload requests.
type Config struct {
	ServerURL string
	Token     string
	SecretKey string
	Timeout   time.Duration
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.SecretKey = "secretKey"
	c.Timeout = 30 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from JSON (if present) and the environment. Later sources take precedence.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, os.Args[1:])
	parseEnv(cfg, os.Args[1:])
	return cfg
}
