package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/logging"

	"github.com/rs/zerolog"
)

// Services bundles the domain services the HTTP API dispatches to.
type Services struct {
	Users    domain.UserService
	Items    domain.ItemService
	Bookings domain.BookingService
	Requests domain.RequestService
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HTTPServer exposes the ShareIt REST API.
type HTTPServer struct {
	cfg    *config.APIConfig
	svc    Services
	db     Pinger
	server *http.Server
	auth   *HTTPAuth
	logger *zerolog.Logger
}

func NewHTTPServer(cfg *config.APIConfig, svc Services, db Pinger, logger *zerolog.Logger) *HTTPServer {
	srv := &HTTPServer{
		cfg:    cfg,
		svc:    svc,
		db:     db,
		auth:   NewHTTPAuth(cfg),
		logger: logging.Component(logger, "http"),
	}

	srv.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           observe(srv.logger, srv.auth.Wrap(srv.routes())),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	return srv
}

func (s *HTTPServer) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /readyz", s.handleReadyz)

	mux.HandleFunc("POST /users", s.handleCreateUser)
	mux.HandleFunc("GET /users", s.handleListUsers)
	mux.HandleFunc("GET /users/{id}", s.handleGetUser)
	mux.HandleFunc("PATCH /users/{id}", s.handleUpdateUser)
	mux.HandleFunc("DELETE /users/{id}", s.handleDeleteUser)

	mux.HandleFunc("POST /items", s.handleCreateItem)
	mux.HandleFunc("GET /items", s.handleListItems)
	mux.HandleFunc("GET /items/search", s.handleSearchItems)
	mux.HandleFunc("GET /items/{id}", s.handleGetItem)
	mux.HandleFunc("PATCH /items/{id}", s.handleUpdateItem)
	mux.HandleFunc("DELETE /items/{id}", s.handleDeleteItem)
	mux.HandleFunc("POST /items/{id}/comment", s.handleAddComment)

	mux.HandleFunc("POST /bookings", s.handleCreateBooking)
	mux.HandleFunc("GET /bookings", s.handleListUserBookings)
	mux.HandleFunc("GET /bookings/owner", s.handleListOwnerBookings)
	mux.HandleFunc("GET /bookings/owner/export", s.handleExportOwnerBookings)
	mux.HandleFunc("GET /bookings/{id}", s.handleGetBooking)
	mux.HandleFunc("PATCH /bookings/{id}", s.handleApproveBooking)

	mux.HandleFunc("POST /requests", s.handleCreateRequest)
	mux.HandleFunc("GET /requests", s.handleListOwnRequests)
	mux.HandleFunc("GET /requests/all", s.handleListOtherRequests)
	mux.HandleFunc("GET /requests/{id}", s.handleGetRequest)

	return mux
}

// Handler returns the fully wrapped handler, for tests and embedding.
func (s *HTTPServer) Handler() http.Handler {
	return s.server.Handler
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return errors.New("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReadyz(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("readiness check failed")
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
