package grpc

import (
	"context"
	"crypto/subtle"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"

	"github.com/tallerhub/taller-status/internal/core"
)

// healthPrefix covers Check and Watch of the standard health service. Neither
// requires a key.
const healthPrefix = "/grpc.health.v1.Health/"

// KeyAuthInterceptor returns a unary interceptor that requires the
// "authorization: Bearer <apiKey>" metadata on every call except health
// checks.
func KeyAuthInterceptor(apiKey string) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if err := checkKey(ctx, info.FullMethod, apiKey); err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// KeyAuthStreamInterceptor is the streaming counterpart of KeyAuthInterceptor.
func KeyAuthStreamInterceptor(apiKey string) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if err := checkKey(ss.Context(), info.FullMethod, apiKey); err != nil {
			return err
		}
		return handler(srv, ss)
	}
}

// ServerOptions returns the options that install key authentication. An empty
// apiKey yields no options.
func ServerOptions(apiKey string) []grpc.ServerOption {
	if apiKey == "" {
		return nil
	}
	return []grpc.ServerOption{
		grpc.UnaryInterceptor(KeyAuthInterceptor(apiKey)),
		grpc.StreamInterceptor(KeyAuthStreamInterceptor(apiKey)),
	}
}

func checkKey(ctx context.Context, method, apiKey string) error {
	if strings.HasPrefix(method, healthPrefix) {
		return nil
	}

	var header string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		if vals := md.Get("authorization"); len(vals) > 0 {
			header = vals[0]
		}
	}
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return coreErrorToGRPC(&core.APIError{
			Code:    core.ErrCodeUnauthorized,
			Message: "Missing or malformed authorization metadata.",
		})
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(apiKey)) != 1 {
		return coreErrorToGRPC(&core.APIError{
			Code:    core.ErrCodeForbidden,
			Message: "Invalid API key.",
		})
	}
	return nil
}
