// Package cli implements gatekeeper-cli: one subcommand per invocation,
// prompting for credentials and keeping the token between runs.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/gatekeeper/internal/client/client"
	"github.com/dmitrijs2005/gatekeeper/internal/client/config"
)

// API is the part of client.APIClient the commands use.
type API interface {
	Register(ctx context.Context, name, email string, password []byte) (*client.AuthResponse, error)
	Login(ctx context.Context, email string, password []byte) (*client.AuthResponse, error)
	Profile(ctx context.Context, token string) (*client.User, error)
	Health(ctx context.Context) (*client.HealthResponse, error)
}

// test seams
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

type App struct {
	config *config.Config
	api    API
	tokens *TokenStore
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config) (*App, error) {
	if c.ServerEndpointAddr == "" {
		return nil, fmt.Errorf("server address is empty")
	}
	return &App{
		config: c,
		api:    client.NewAPIClient(c.ServerEndpointAddr, c.RequestTimeout),
		tokens: NewTokenStore(c.TokenFile),
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

const usage = "usage: gatekeeper-cli [-a url] [-f token-file] register|login|profile|health|logout"

// Run executes the subcommand found in args (flags are skipped).
func (a *App) Run(ctx context.Context, args []string) error {
	cmd := subcommand(args)

	switch cmd {
	case "register":
		return a.Register(ctx)
	case "login":
		return a.Login(ctx)
	case "profile":
		return a.Profile(ctx)
	case "health":
		return a.Health(ctx)
	case "logout":
		return a.Logout()
	case "", "help":
		fmt.Fprintln(a.out, usage)
		return nil
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
}

// subcommand returns the first argument that is neither a flag nor a
// flag's value.
func subcommand(args []string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if strings.HasPrefix(arg, "-") {
			if !strings.Contains(arg, "=") && i+1 < len(args) {
				i++
			}
			continue
		}
		return arg
	}
	return ""
}
