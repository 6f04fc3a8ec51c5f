package auth

import (
	"context"
	"errors"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// MetadataKey is the gRPC metadata key carrying the bearer token.
const MetadataKey = "authorization"

func (a *Authenticator) authenticate(ctx context.Context) (context.Context, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	values := md.Get(MetadataKey)
	if len(values) == 0 {
		return nil, status.Error(codes.Unauthenticated, "missing token")
	}
	token, ok := BearerToken(values[0])
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "malformed authorization")
	}
	claims, err := a.ValidateToken(token)
	if errors.Is(err, ErrExpiredToken) {
		return nil, status.Error(codes.Unauthenticated, "token expired, log in again")
	}
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, "invalid token")
	}
	return WithParticipant(ctx, claims.ParticipantID()), nil
}

// UnaryServerInterceptor authenticates every unary call except the full
// method names listed in public.
func (a *Authenticator) UnaryServerInterceptor(public ...string) grpc.UnaryServerInterceptor {
	open := toSet(public)
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if open[info.FullMethod] {
			return handler(ctx, req)
		}
		ctx, err := a.authenticate(ctx)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

// StreamServerInterceptor is UnaryServerInterceptor for streams.
func (a *Authenticator) StreamServerInterceptor(public ...string) grpc.StreamServerInterceptor {
	open := toSet(public)
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if open[info.FullMethod] {
			return handler(srv, ss)
		}
		ctx, err := a.authenticate(ss.Context())
		if err != nil {
			return err
		}
		return handler(srv, &authedStream{ServerStream: ss, ctx: ctx})
	}
}

type authedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (s *authedStream) Context() context.Context {
	return s.ctx
}

// TokenCredentials attaches a bearer token to every outgoing call. The
// daemon listens on a local socket, so transport security is not required.
type TokenCredentials string

func (t TokenCredentials) GetRequestMetadata(context.Context, ...string) (map[string]string, error) {
	if t == "" {
		return nil, nil
	}
	return map[string]string{MetadataKey: "Bearer " + string(t)}, nil
}

func (t TokenCredentials) RequireTransportSecurity() bool {
	return false
}

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[it] = true
	}
	return set
}
