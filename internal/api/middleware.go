package api

import (
	"context"
	"crypto/subtle"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"shareit/internal/config"
	"shareit/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const requestIDHeader = "X-Request-Id"

type requestIDKey struct{}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// observe tags each request with an id (reusing an inbound X-Request-Id),
// logs it when it finishes and records the request metrics.
func observe(logger *zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey{}, requestID))

		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		dur := time.Since(start)

		endpoint := r.Pattern
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.ObserveHTTP(endpoint, statusClass(recorder.status), dur)

		logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", dur).
			Msg("http request")
	})
}

func statusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// HTTPAuth provides API-key auth and per-client rate limiting for HTTP endpoints.
type HTTPAuth struct {
	cfg     *config.APIConfig
	clients map[string]config.APIClientKey
	limiter *rateLimiter
}

func NewHTTPAuth(cfg *config.APIConfig) *HTTPAuth {
	m := make(map[string]config.APIClientKey, len(cfg.Auth.APIKeys))
	for _, k := range cfg.Auth.APIKeys {
		m[k.Key] = k
	}
	return &HTTPAuth{cfg: cfg, clients: m, limiter: newRateLimiter(cfg)}
}

var (
	errPermissionDenied = errors.New("permission denied")
	errRateLimited      = errors.New("rate limit exceeded")
)

func (a *HTTPAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isHealthPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if a.cfg.Auth.Enabled {
			if err := a.checkAuth(r); err != nil {
				statusCode := http.StatusUnauthorized
				if errors.Is(err, errPermissionDenied) {
					statusCode = http.StatusForbidden
				}
				writeError(w, statusCode, http.StatusText(statusCode), err.Error())
				return
			}
		}

		if !a.limiter.allow(a.clientKey(r)) {
			writeError(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests), errRateLimited.Error())
			return
		}

		next.ServeHTTP(w, r)
	})
}

func isHealthPath(path string) bool {
	return path == "/healthz" || path == "/readyz"
}

func (a *HTTPAuth) checkAuth(r *http.Request) error {
	apiKey := strings.TrimSpace(r.Header.Get(a.headerName(a.cfg.Auth.HeaderAPIKey, apiKeyHeaderDefault)))
	extra := strings.TrimSpace(r.Header.Get(a.headerName(a.cfg.Auth.HeaderExtra, apiExtraHeaderDefault)))
	if apiKey == "" || extra == "" {
		return errors.New("missing api key headers")
	}

	client, ok := a.clients[apiKey]
	if !ok {
		return errors.New("invalid api key")
	}
	if subtle.ConstantTimeCompare([]byte(client.Extra), []byte(extra)) != 1 {
		return errors.New("invalid extra header")
	}

	if !hasPermission(client, requiredPermissionHTTP(r)) {
		return errPermissionDenied
	}
	return nil
}

// requiredPermissionHTTP treats safe methods as reads and everything else as writes.
func requiredPermissionHTTP(r *http.Request) string {
	switch r.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return permRead
	default:
		return permWrite
	}
}

func (a *HTTPAuth) headerName(configured, def string) string {
	name := strings.TrimSpace(configured)
	if name == "" {
		return def
	}
	return name
}

func (a *HTTPAuth) clientKey(r *http.Request) string {
	if apiKey := strings.TrimSpace(r.Header.Get(a.headerName(a.cfg.Auth.HeaderAPIKey, apiKeyHeaderDefault))); apiKey != "" {
		return apiKey
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return clientKeyUnknown
}
