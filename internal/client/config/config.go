// Package config handles configuration for the CLI client: defaults, an
// optional JSON file and command-line flags.
package config

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds runtime settings for gatekeeper-cli.
//
// Fields:
//   - ServerEndpointAddr: base URL of the HTTP API.
//   - TokenFile: where the token from register/login is kept.
//   - RequestTimeout: limit for a single API call.
type Config struct {
	ServerEndpointAddr string
	TokenFile          string
	RequestTimeout     time.Duration
}

// LoadDefaults populates c with defaults. The token lives under the user's
// home directory, or the working directory when that cannot be resolved.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://localhost:5000"
	c.TokenFile = defaultTokenFile()
	c.RequestTimeout = 10 * time.Second
}

func defaultTokenFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".gatekeeper", "token")
}

// LoadConfig applies defaults, then JSON, then flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
