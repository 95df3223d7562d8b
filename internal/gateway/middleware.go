package gateway

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"shareit/internal/metrics"
	"shareit/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-Id"

// observe assigns a request id, forwarded upstream in the request headers,
// and logs and measures each request by its route pattern.
func (g *Gateway) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
			r.Header.Set(requestIDHeader, requestID)
		}
		w.Header().Set(requestIDHeader, requestID)

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		dur := time.Since(start)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		pattern := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			pattern = r.Method + " " + rctx.RoutePattern()
		}
		metrics.ObserveHTTP("gateway "+pattern, statusClass(status), dur)

		g.logger.Info().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", dur).
			Msg("http request")
	})
}

// rateLimit applies the per-user fixed window. Callers without the user id
// header are counted by remote address.
func (g *Gateway) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g.limiter == nil || g.cfg.RateLimitRequests <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		window := time.Duration(g.cfg.RateLimitWindow) * time.Second
		allowed, err := g.limiter.CheckRateLimit(r.Context(), limitKey(r), g.cfg.RateLimitRequests, window)
		if err != nil {
			// Fail open; the limiter already falls back to memory when Redis is down.
			g.logger.Warn().Err(err).Msg("rate limit check failed")
		} else if !allowed {
			writeError(w, http.StatusTooManyRequests, "Too Many Requests", "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func limitKey(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(models.HeaderUserID)); id != "" {
		return "user:" + id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "addr:" + host
}

func statusClass(code int) string {
	return strconv.Itoa(code/100) + "xx"
}
