package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/internal/config"
	"shareit/internal/domain"
	"shareit/internal/gateway"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/repository"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	shutdownTimeout = 10 * time.Second
	sweepInterval   = time.Minute
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App, "gateway")
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := initLimiter(ctx, cfg, logger)

	conn, err := grpc.NewClient(cfg.Gateway.UpstreamGRPC, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("dial upstream grpc: %w", err)
	}
	defer conn.Close()

	gw, err := gateway.New(&cfg.Gateway, limiter, healthpb.NewHealthClient(conn), logger)
	if err != nil {
		return err
	}

	if cfg.Monitoring.PrometheusEnabled {
		metrics.Register()
		go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- gw.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := gw.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("gateway shutdown")
	}
	logger.Info().Msg("gateway stopped")
	return nil
}

// initLimiter prefers Redis so limits hold across gateway replicas, falling
// back to process memory while Redis is unreachable.
func initLimiter(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) domain.RateLimitRepository {
	if cfg.Gateway.RateLimitRequests <= 0 {
		return nil
	}

	memory := repository.NewMemoryRateLimiter()
	go sweep(ctx, memory)

	if cfg.Redis.Address == "" {
		return memory
	}
	client := repository.NewRedisClient(cfg.Redis)
	go func() {
		<-ctx.Done()
		_ = repository.Close(client)
	}()
	if err := repository.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("redis unreachable at startup, rate limits start in memory")
	}
	return repository.NewFailoverRateLimiter(repository.NewRedisRateLimiter(client), memory, logger)
}

func sweep(ctx context.Context, m *repository.MemoryRateLimiter) {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
