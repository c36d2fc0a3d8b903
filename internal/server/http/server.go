// Package http exposes the authentication service over a JSON HTTP API
// built on gin: registration, login, the protected profile route, a
// health probe and prometheus metrics.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"github.com/dmitrijs2005/gatekeeper/internal/server/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// UserService is what the handlers need from services.UserService.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*services.AuthResult, error)
	Login(ctx context.Context, email, password string) (*services.AuthResult, error)
	Profile(ctx context.Context, id models.Identity) (*models.User, error)
}

// Authorizer is what RequireAuth needs from auth.Gate.
type Authorizer interface {
	Authorize(header string) (models.Identity, error)
}

type Options struct {
	Address         string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

type Server struct {
	opts     Options
	logger   logging.Logger
	users    UserService
	gate     Authorizer
	metrics  *Metrics
	registry *prometheus.Registry
	engine   *gin.Engine
	now      func() time.Time
}

// NewServer builds the router. Metrics are registered in reg and served
// from it on /metrics.
func NewServer(opts Options, l logging.Logger, us UserService, gate Authorizer, reg *prometheus.Registry) *Server {
	if opts.ShutdownTimeout <= 0 {
		opts.ShutdownTimeout = 10 * time.Second
	}

	s := &Server{
		opts:     opts,
		logger:   l.With("module", "http_server"),
		users:    us,
		gate:     gate,
		metrics:  NewMetrics(reg),
		registry: reg,
		now:      time.Now,
	}
	s.engine = s.routes()
	return s
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(AccessLogMiddleware(s.logger))
	r.Use(MetricsMiddleware(s.metrics))
	r.Use(CORSMiddleware(s.opts.AllowedOrigins))

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	api := r.Group("/api")
	{
		api.POST("/register", s.register)
		api.POST("/login", s.login)
		api.GET("/profile", s.RequireAuth(), s.profile)
		api.GET("/health", s.health)
	}

	return r
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Address,
		Handler:           s.engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "http server listening", "addr", s.opts.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info(context.Background(), "shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown error: %w", err)
	}
	return nil
}
