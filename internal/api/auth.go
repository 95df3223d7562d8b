package api

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"shareit/internal/config"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/peer"
	"google.golang.org/grpc/status"
)

const (
	apiKeyHeaderDefault   = "x-api-key"
	apiExtraHeaderDefault = "x-api-extra"
	permRead              = "read"
	permWrite             = "write"
	clientKeyUnknown      = "unknown"

	healthServicePrefix = "/grpc.health.v1.Health/"
)

type AuthInterceptor struct {
	cfg *config.APIConfig

	clientsByAPIKey map[string]config.APIClientKey
	limiter         *rateLimiter
}

func NewAuthInterceptor(cfg *config.APIConfig) *AuthInterceptor {
	m := make(map[string]config.APIClientKey, len(cfg.Auth.APIKeys))
	for _, k := range cfg.Auth.APIKeys {
		m[k.Key] = k
	}

	return &AuthInterceptor{
		cfg:             cfg,
		clientsByAPIKey: m,
		limiter:         newRateLimiter(cfg),
	}
}

func (a *AuthInterceptor) Unary() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		if err := a.authorize(ctx, info.FullMethod); err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

func (a *AuthInterceptor) Stream() grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		if err := a.authorize(ss.Context(), info.FullMethod); err != nil {
			return err
		}
		return handler(srv, ss)
	}
}

// authorize lets health checks through untouched; every other method needs
// a valid key (when auth is on) and a free rate limit token.
func (a *AuthInterceptor) authorize(ctx context.Context, fullMethod string) error {
	if strings.HasPrefix(fullMethod, healthServicePrefix) {
		return nil
	}

	if a.cfg.Auth.Enabled {
		if err := a.checkAuth(ctx); err != nil {
			return err
		}
	}
	if !a.limiter.allow(a.clientKey(ctx)) {
		return status.Error(codes.ResourceExhausted, "rate limit exceeded")
	}
	return nil
}

func (a *AuthInterceptor) checkAuth(ctx context.Context) error {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return status.Error(codes.Unauthenticated, "missing metadata")
	}

	apiKey := first(md.Get(metadataKey(a.cfg.Auth.HeaderAPIKey, apiKeyHeaderDefault)))
	extra := first(md.Get(metadataKey(a.cfg.Auth.HeaderExtra, apiExtraHeaderDefault)))
	if apiKey == "" || extra == "" {
		return status.Error(codes.Unauthenticated, "missing api key headers")
	}

	client, ok := a.clientsByAPIKey[apiKey]
	if !ok {
		return status.Error(codes.Unauthenticated, "invalid api key")
	}

	if subtle.ConstantTimeCompare([]byte(client.Extra), []byte(extra)) != 1 {
		return status.Error(codes.Unauthenticated, "invalid extra header")
	}

	// Reflection only exposes the schema; it needs read access.
	if !hasPermission(client, permRead) {
		return status.Error(codes.PermissionDenied, "permission denied")
	}
	return nil
}

// hasPermission treats an empty permission list as allow-all.
func hasPermission(client config.APIClientKey, required string) bool {
	if required == "" || len(client.Permissions) == 0 {
		return true
	}
	for _, p := range client.Permissions {
		if strings.TrimSpace(p) == required {
			return true
		}
	}
	return false
}

func (a *AuthInterceptor) clientKey(ctx context.Context) string {
	md, _ := metadata.FromIncomingContext(ctx)
	if apiKey := first(md.Get(metadataKey(a.cfg.Auth.HeaderAPIKey, apiKeyHeaderDefault))); apiKey != "" {
		return apiKey
	}

	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		return p.Addr.String()
	}
	return clientKeyUnknown
}

// metadataKey normalizes a configured header name; gRPC metadata keys are lower case.
func metadataKey(configured, def string) string {
	key := strings.ToLower(strings.TrimSpace(configured))
	if key == "" {
		return def
	}
	return key
}

func first(vals []string) string {
	if len(vals) == 0 {
		return ""
	}
	return strings.TrimSpace(vals[0])
}

func LoggingUnaryInterceptor(logger *zerolog.Logger) grpc.UnaryServerInterceptor {
	base := grpcLogger(logger)

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		requestID := requestIDFromMetadata(ctx)
		_ = grpc.SetHeader(ctx, metadata.Pairs(requestIDMetadataKey, requestID))

		start := time.Now()
		resp, err := handler(ctx, req)
		logCall(ctx, base, requestID, info.FullMethod, err, time.Since(start))
		return resp, err
	}
}

func LoggingStreamInterceptor(logger *zerolog.Logger) grpc.StreamServerInterceptor {
	base := grpcLogger(logger)

	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		requestID := requestIDFromMetadata(ss.Context())
		_ = ss.SetHeader(metadata.Pairs(requestIDMetadataKey, requestID))

		start := time.Now()
		err := handler(srv, ss)
		logCall(ss.Context(), base, requestID, info.FullMethod, err, time.Since(start))
		return err
	}
}

func grpcLogger(logger *zerolog.Logger) zerolog.Logger {
	if logger == nil {
		return zerolog.Nop()
	}
	return logger.With().Str("component", "grpc").Logger()
}

func logCall(ctx context.Context, base zerolog.Logger, requestID, method string, err error, dur time.Duration) {
	remote := clientKeyUnknown
	if p, ok := peer.FromContext(ctx); ok && p.Addr != nil {
		remote = p.Addr.String()
	}

	base.Info().
		Str("request_id", requestID).
		Str("method", method).
		Str("remote", remote).
		Str("code", status.Code(err).String()).
		Dur("duration", dur).
		Msg("grpc request")
}

const requestIDMetadataKey = "x-request-id"

func requestIDFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if ok {
		if vals := md.Get(requestIDMetadataKey); len(vals) > 0 {
			if id := strings.TrimSpace(vals[0]); id != "" {
				return id
			}
		}
	}
	return uuid.NewString()
}
