package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		expected    *Config
		name        string
		args        []string
		expectPanic bool
	}{
		{name: "all flags", args: []string{"cmd",
			"-a", "127.0.0.1:5000", "-g", "127.0.0.1:50051", "-d", "db", "-s", "secret",
			"-b", "12", "-o", "http://a,http://b", "-t", "3", "-l", "debug", "-m",
		}, expected: &Config{
			EndpointAddrHTTP: "127.0.0.1:5000",
			EndpointAddrGRPC: "127.0.0.1:50051",
			DatabaseDSN:      "db",
			SecretKey:        "secret",
			BcryptCost:       12,
			AllowedOrigins:   []string{"http://a", "http://b"},
			ShutdownTimeout:  3 * time.Second,
			LogLevel:         "debug",
			UseMemoryStore:   true,
		}},
		{name: "config flag ignored", args: []string{"cmd", "-c", "conf.json", "-m", "-s", "k"}, expected: &Config{
			SecretKey:      "k",
			UseMemoryStore: true,
		}},
		{name: "bad int", args: []string{"cmd", "-b", "many"}, expectPanic: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args

			config := &Config{}

			if !tt.expectPanic {
				require.NotPanics(t, func() { parseFlags(config) })
				assert.Empty(t, cmp.Diff(config, tt.expected))
			} else {
				require.Panics(t, func() { parseFlags(config) })
			}
		})
	}
}

func TestParseFlags_KeepsUnsetValues(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })
	os.Args = []string{"cmd"}

	c := &Config{ShutdownTimeout: 1500 * time.Millisecond, AllowedOrigins: []string{"http://a"}}
	parseFlags(c)

	assert.Equal(t, 1500*time.Millisecond, c.ShutdownTimeout)
	assert.Equal(t, []string{"http://a"}, c.AllowedOrigins)
}
