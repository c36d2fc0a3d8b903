// Package grpc runs the gRPC listener: the standard health service, server
// reflection, and the access token interceptors shared by both.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/gatekeeper/internal/logging"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Reflection exposes the server's schema, so it is protected by default.
var defaultProtected = []string{
	"/grpc.reflection.v1.ServerReflection/ServerReflectionInfo",
	"/grpc.reflection.v1alpha.ServerReflection/ServerReflectionInfo",
}

// Authorizer is what the interceptors need from auth.Gate.
type Authorizer interface {
	Authorize(header string) (models.Identity, error)
}

type GRPCServer struct {
	address   string
	logger    logging.Logger
	gate      Authorizer
	health    *health.Server
	protected map[string]struct{}
}

func NewGRPCServer(a string, l logging.Logger, gate Authorizer, protected ...string) *GRPCServer {
	p := make(map[string]struct{}, len(defaultProtected)+len(protected))
	for _, m := range defaultProtected {
		p[m] = struct{}{}
	}
	for _, m := range protected {
		p[m] = struct{}{}
	}

	return &GRPCServer{
		address:   a,
		logger:    l.With("module", "grpc_server"),
		gate:      gate,
		health:    health.NewServer(),
		protected: p,
	}
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	return s.Serve(ctx, listen)
}

// Serve accepts connections on lis until ctx is cancelled. Health reports
// NOT_SERVING before the graceful stop begins.
func (s *GRPCServer) Serve(ctx context.Context, lis net.Listener) error {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(s.accessTokenInterceptor),
		grpc.ChainStreamInterceptor(s.accessTokenStreamInterceptor),
	)

	healthpb.RegisterHealthServer(srv, s.health)
	reflection.Register(srv)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	go func() {
		<-ctx.Done()
		s.logger.Info(context.Background(), "Stopping gPRC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	// starts accepting incoming connections
	if err := srv.Serve(lis); err != nil {
		return err
	}

	return nil
}
