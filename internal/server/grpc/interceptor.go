package grpc

import (
	"context"

	"github.com/dmitrijs2005/gatekeeper/internal/common"
	"github.com/dmitrijs2005/gatekeeper/internal/server/auth"
	"github.com/dmitrijs2005/gatekeeper/internal/server/models"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

type ctxKey string

const identityKey ctxKey = "identity"

// IdentityFromContext returns the identity the interceptor attached to a
// protected call.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(models.Identity)
	return id, ok
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if _, ok := s.protected[info.FullMethod]; ok {
		var err error
		ctx, err = s.authorize(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}
	}

	return handler(ctx, req)
}

func (s *GRPCServer) accessTokenStreamInterceptor(srv interface{}, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {

	if _, ok := s.protected[info.FullMethod]; ok {
		ctx, err := s.authorize(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}
		ss = &identityStream{ServerStream: ss, ctx: ctx}
	}

	return handler(srv, ss)
}

func (s *GRPCServer) authorize(ctx context.Context, method string) (context.Context, error) {
	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AuthorizationHeaderName)
		if len(values) > 0 {
			header = values[0]
		}
	}

	id, err := s.gate.Authorize(header)
	if err != nil {
		reason := auth.RejectReason(err)
		s.logger.Warn(ctx, "access denied", "method", method, "reason", reason)
		if reason == auth.ReasonMissingToken {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}

	return context.WithValue(ctx, identityKey, id), nil
}

type identityStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (w *identityStream) Context() context.Context {
	return w.ctx
}
