// Package server wires the gatekeeper components together: storage, the
// password hasher, the token service, the HTTP API and the gRPC listener.
// It also handles OS signals and graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/dbx"
	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/auth"
	"github.com/dmitrijs2005/gatekeeper/internal/server/config"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gatekeeper/internal/server/repositories/users"
	"github.com/dmitrijs2005/gatekeeper/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	gs "github.com/dmitrijs2005/gatekeeper/internal/server/grpc"
	hs "github.com/dmitrijs2005/gatekeeper/internal/server/http"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	userService *services.UserService
	gate        *auth.Gate
	registry    *prometheus.Registry
}

// repoManager is a seam for tests.
var repoManager = repomanager.NewPostgresRepositoryManager

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	ctx := context.Background()

	gin.SetMode(ginMode(c.LogLevel))

	secret := c.SecretKey
	if secret == "" {
		s, err := common.MakeRandHexString(32)
		if err != nil {
			return nil, fmt.Errorf("secret generation error: %w", err)
		}
		secret = s
		logger.Warn(ctx, "no secret key configured, using a random one; tokens will not survive a restart")
	}

	var (
		repo users.Repository
		db   *sql.DB
	)

	if c.UseMemoryStore {
		logger.Warn(ctx, "using in-memory user store")
		repo = users.NewMemoryRepository()
	} else {
		var err error
		db, err = dbx.Open(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}

		rm := repoManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migration error: %w", err)
		}
		repo = rm.Users(db)
	}

	hasher := auth.NewBcryptHasher(c.BcryptCost)
	if hasher.Cost() != c.BcryptCost {
		logger.Warn(ctx, "bcrypt cost out of range, using default", "configured", c.BcryptCost, "cost", hasher.Cost())
	}

	tokens := auth.NewTokenService([]byte(secret))

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		userService: services.NewUserService(repo, hasher, tokens),
		gate:        auth.NewGate(tokens),
		registry:    prometheus.NewRegistry(),
	}, nil
}

// ginMode keeps gin's route dump and debug warnings off stdout unless
// debug logging was asked for.
func ginMode(logLevel string) string {
	if strings.EqualFold(logLevel, "debug") {
		return gin.DebugMode
	}
	return gin.ReleaseMode
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case s := <-sigs:
			app.logger.Info(ctx, "signal received", "signal", s.String())
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	s := hs.NewServer(hs.Options{
		Address:         app.config.EndpointAddrHTTP,
		AllowedOrigins:  app.config.AllowedOrigins,
		ShutdownTimeout: app.config.ShutdownTimeout,
	}, app.logger, app.userService, app.gate, app.registry)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return err
	}
	return nil
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.gate)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return err
	}
	return nil
}

// Run starts both listeners and blocks until ctx is cancelled, a
// termination signal arrives or one of the listeners fails.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	record := func(err error) {
		mu.Lock()
		defer mu.Unlock()
		if firstErr == nil {
			firstErr = err
		}
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := app.startHTTPServer(ctx, cancelFunc); err != nil {
			record(err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := app.startGRPCServer(ctx, cancelFunc); err != nil {
			record(err)
		}
	}()

	wg.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(context.Background(), "db close error", "error", err.Error())
		}
	}

	app.logger.Info(context.Background(), "app stopped")
	return firstErr
}
