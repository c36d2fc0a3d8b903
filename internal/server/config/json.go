package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/gatekeeper/internal/flagx"
	"github.com/dmitrijs2005/gatekeeper/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations use timex.Duration so
// both "10s" and integer nanoseconds are accepted. Pointer fields tell an
// explicit false or zero apart from an absent key.
type JsonConfig struct {
	EndpointAddrHTTP string          `json:"endpoint_addr_http"`
	EndpointAddrGRPC string          `json:"endpoint_addr_grpc"`
	DatabaseDSN      string          `json:"database_dsn"`
	SecretKey        string          `json:"secret_key"`
	BcryptCost       int             `json:"bcrypt_cost"`
	AllowedOrigins   []string        `json:"allowed_origins"`
	ShutdownTimeout  *timex.Duration `json:"shutdown_timeout"`
	LogLevel         string          `json:"log_level"`
	UseMemoryStore   *bool           `json:"use_memory_store"`
}

// parseJson overlays values from the file named by -c / -config. Keys that
// are absent from the file leave the current values untouched. An
// unreadable file or invalid JSON panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)

	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.UseMemoryStore != nil {
		config.UseMemoryStore = *c.UseMemoryStore
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
