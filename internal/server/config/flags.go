package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-a string   HTTP bind address (e.g. ":5000")
//	-g string   gRPC bind address (e.g. ":50051")
//	-d string   PostgreSQL DSN
//	-s string   token signing secret
//	-b int      bcrypt cost
//	-o string   comma separated allowed origins
//	-t int      shutdown timeout, seconds
//	-l string   log level
//	-m          keep users in memory
//
// os.Args is filtered with flagx.FilterArgs first, so -c and flags owned
// by other components do not break parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-d", "-s", "-b", "-o", "-t", "-l", "-m"}, "-m")

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port of the HTTP server")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "address and port of the gRPC server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	origins := fs.String("o", strings.Join(config.AllowedOrigins, ","), "allowed CORS origins, comma separated")
	shutdownTimeout := fs.Int("t", int(config.ShutdownTimeout.Seconds()), "shutdown timeout (in seconds)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.BoolVar(&config.UseMemoryStore, "m", config.UseMemoryStore, "keep users in memory")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// only flags given explicitly, so sub-second env values survive
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "o":
			config.AllowedOrigins = flagx.SplitList(*origins)
		case "t":
			config.ShutdownTimeout = time.Duration(*shutdownTimeout) * time.Second
		}
	})
}
