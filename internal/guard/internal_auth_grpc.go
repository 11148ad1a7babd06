package guard

import (
	"context"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/shamell/trustgate/internal/logger"
)

// UnaryServerInterceptor enforces internal authentication on unary RPCs
// using the same header names, lowercased, as gRPC metadata keys.
func (a *InternalAuth) UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if err := a.authorizeRPC(ctx, info.FullMethod); err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// StreamServerInterceptor enforces internal authentication on streaming
// RPCs.
func (a *InternalAuth) StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if err := a.authorizeRPC(ss.Context(), info.FullMethod); err != nil {
			return err
		}
		return handler(srv, ss)
	}
}

func (a *InternalAuth) authorizeRPC(ctx context.Context, method string) error {
	md, _ := metadata.FromIncomingContext(ctx)
	v := a.Decide(firstMetadata(md, a.secretHeader), firstMetadata(md, a.callerHeader))
	if v == VerdictAllow {
		return nil
	}

	logger.FromContext(ctx).Warn().
		Str("guard", GuardInternalAuth).
		Str("reason", v.Reason()).
		Str("rpc", method).
		Msg("rpc denied")
	a.observer.ObserveDenial(GuardInternalAuth, v.Reason())

	if v == VerdictNotConfigured {
		return status.Error(codes.Unavailable, v.Detail())
	}
	return status.Error(codes.Unauthenticated, v.Detail())
}

func firstMetadata(md metadata.MD, key string) string {
	values := md.Get(strings.ToLower(key))
	if len(values) == 0 {
		return ""
	}
	return values[0]
}
