package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/dto"
	"shareit/internal/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const readyTimeout = 2 * time.Second

// HealthChecker is the part of the gRPC health client the gateway needs.
type HealthChecker interface {
	Check(ctx context.Context, in *healthpb.HealthCheckRequest, opts ...grpc.CallOption) (*healthpb.HealthCheckResponse, error)
}

// Gateway validates inbound requests and forwards the valid ones to the API
// server. Invalid requests are answered with 400 and never reach upstream.
type Gateway struct {
	cfg     *config.GatewayConfig
	proxy   *httputil.ReverseProxy
	limiter domain.RateLimitRepository
	health  HealthChecker
	logger  *zerolog.Logger
	now     func() time.Time
	server  *http.Server
}

// New builds a gateway for cfg. limiter and health may be nil, which disables
// rate limiting and upstream readiness checks respectively.
func New(cfg *config.GatewayConfig, limiter domain.RateLimitRepository, health HealthChecker, logger *zerolog.Logger) (*Gateway, error) {
	target, err := url.Parse(cfg.UpstreamURL)
	if err != nil || target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("invalid upstream url %q", cfg.UpstreamURL)
	}

	g := &Gateway{
		cfg:     cfg,
		limiter: limiter,
		health:  health,
		logger:  logging.Component(logger, "gateway"),
		now:     time.Now,
	}
	g.proxy = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.SetURL(target)
			pr.SetXForwarded()
			if cfg.UpstreamAPIKey != "" {
				pr.Out.Header.Set(cfg.UpstreamAPIKeyHeader, cfg.UpstreamAPIKey)
			}
		},
		ErrorHandler: g.upstreamError,
	}

	g.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           g.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return g, nil
}

func (g *Gateway) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(g.observe)

	r.Get("/healthz", g.handleHealthz)
	r.Get("/readyz", g.handleReadyz)

	r.Group(func(r chi.Router) {
		r.Use(g.rateLimit)

		r.Post("/users", g.forward(jsonBody[dto.UserCreate](nil)))
		r.Get("/users", g.forward(page))
		r.Get("/users/{id}", g.forward(pathID("id")))
		r.Patch("/users/{id}", g.forward(pathID("id"), jsonBody[dto.UserPatch](nil)))
		r.Delete("/users/{id}", g.forward(pathID("id")))

		r.Post("/items", g.forward(sharer, jsonBody[dto.ItemCreate](nil)))
		r.Get("/items", g.forward(sharer, page))
		r.Get("/items/search", g.forward(sharer, page))
		r.Get("/items/{id}", g.forward(sharer, pathID("id")))
		r.Patch("/items/{id}", g.forward(sharer, pathID("id"), jsonBody[dto.ItemPatch](nil)))
		r.Delete("/items/{id}", g.forward(sharer, pathID("id")))
		r.Post("/items/{id}/comment", g.forward(sharer, pathID("id"), jsonBody[dto.CommentCreate](nil)))

		r.Post("/bookings", g.forward(sharer, jsonBody(g.bookingWindow)))
		r.Patch("/bookings/{id}", g.forward(sharer, pathID("id"), approvedFlag))
		r.Get("/bookings/{id}", g.forward(sharer, pathID("id")))
		r.Get("/bookings", g.forward(sharer, state, page))
		r.Get("/bookings/owner", g.forward(sharer, state, page))
		r.Get("/bookings/owner/export", g.forward(sharer, state))

		r.Post("/requests", g.forward(sharer, jsonBody[dto.RequestCreate](nil)))
		r.Get("/requests", g.forward(sharer, page))
		r.Get("/requests/all", g.forward(sharer, page))
		r.Get("/requests/{id}", g.forward(sharer, pathID("id")))
	})

	return r
}

// forward runs checks in order and proxies the request when all pass.
func (g *Gateway) forward(checks ...check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, c := range checks {
			if err := c(r); err != nil {
				g.logger.Debug().Err(err).Str("path", r.URL.Path).Msg("request rejected")
				writeCheckError(w, err)
				return
			}
		}
		g.proxy.ServeHTTP(w, r)
	}
}

func (g *Gateway) bookingWindow(b *dto.BookingCreate) error {
	return b.CheckWindow(g.now())
}

func (g *Gateway) upstreamError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, context.Canceled) {
		return
	}
	g.logger.Error().Err(err).
		Str("request_id", r.Header.Get(requestIDHeader)).
		Str("path", r.URL.Path).
		Msg("upstream request failed")
	writeError(w, http.StatusBadGateway, "Bad Gateway", "upstream is unavailable")
}

func (g *Gateway) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (g *Gateway) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if g.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		resp, err := g.health.Check(ctx, &healthpb.HealthCheckRequest{Service: api.ServiceName})
		if err != nil || resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
			status := "unreachable"
			if err == nil {
				status = resp.GetStatus().String()
			}
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready", "upstream": status})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (g *Gateway) Start() error {
	g.logger.Info().Str("addr", g.server.Addr).Str("upstream", g.cfg.UpstreamURL).Msg("gateway listening")
	if err := g.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (g *Gateway) Shutdown(ctx context.Context) error {
	return g.server.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, statusCode int, label, message string) {
	writeJSON(w, statusCode, dto.ErrorResponse{Error: label, ErrorMessage: message})
}
