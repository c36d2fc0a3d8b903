package config

import (
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/flagx"
)

// parseEnv overlays values from environment variables:
//
//	PORT             HTTP port; ":" is prepended when only digits are given
//	GRPC_ADDR        gRPC bind address
//	DATABASE_DSN     PostgreSQL DSN
//	JWT_SECRET       token signing secret
//	BCRYPT_COST      bcrypt work factor
//	ALLOWED_ORIGINS  comma separated CORS origins
//	SHUTDOWN_TIMEOUT graceful shutdown limit, e.g. "15s"
//	LOG_LEVEL        debug, info, warn or error
//	MEMORY_STORE     keep users in memory instead of PostgreSQL
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv("PORT"); ok && v != "" {
		if _, err := strconv.Atoi(v); err == nil {
			v = ":" + v
		}
		config.EndpointAddrHTTP = v
	}
	if v, ok := os.LookupEnv("GRPC_ADDR"); ok && v != "" {
		config.EndpointAddrGRPC = v
	}
	if v, ok := os.LookupEnv("DATABASE_DSN"); ok && v != "" {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv("JWT_SECRET"); ok && v != "" {
		config.SecretKey = v
	}
	if v, ok := os.LookupEnv("BCRYPT_COST"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			panic(err)
		}
		config.BcryptCost = n
	}
	if v, ok := os.LookupEnv("ALLOWED_ORIGINS"); ok {
		config.AllowedOrigins = flagx.SplitList(v)
	}
	if v, ok := os.LookupEnv("SHUTDOWN_TIMEOUT"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			panic(err)
		}
		config.ShutdownTimeout = d
	}
	if v, ok := os.LookupEnv("LOG_LEVEL"); ok && v != "" {
		config.LogLevel = v
	}
	if v, ok := os.LookupEnv("MEMORY_STORE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		config.UseMemoryStore = b
	}
}
