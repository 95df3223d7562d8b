package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/domain"
	"shareit/internal/events"
	"shareit/internal/google"
	"shareit/internal/logging"
	"shareit/internal/metrics"
	"shareit/internal/notify"
	"shareit/internal/repository"
	"shareit/internal/service"
	"shareit/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	shutdownTimeout     = 10 * time.Second
	ledgerCacheInterval = 10 * time.Minute
	dbWatchInterval     = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	cfg, logger, closer, err := loadConfigAndLogger()
	if err != nil {
		return err
	}
	if closer != nil {
		defer (func() { _ = closer.Close() })()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(cfg.Database.Path, logger)
	if err != nil {
		logger.Error().Err(err).Str("db_path", cfg.Database.Path).Msg("init database")
		return err
	}
	defer db.Close()

	go database.NewBackupService(db, cfg.Backup, logging.Component(logger, "backup")).Start(ctx)

	redisClient := initRedis(ctx, cfg, logger)
	if redisClient != nil {
		defer func() { _ = repository.Close(redisClient) }()
	}

	bus := events.NewEventBus()

	var outbox domain.SyncWorker
	if cfg.Worker.Enabled {
		w, err := initWorker(ctx, cfg, db, redisClient, bus, logger)
		if err != nil {
			return err
		}
		outbox = w
		go w.Start(ctx)
	}

	svc := api.Services{
		Users:    service.NewUserService(db, outbox, logger),
		Items:    service.NewItemService(db, outbox, logger),
		Bookings: service.NewBookingService(db, bus, outbox, logger),
		Requests: service.NewRequestService(db, logger),
	}

	if err := seedFromFile(ctx, cfg.SeedPath, svc, logger); err != nil {
		return err
	}

	grpcServer, err := api.NewGRPCServer(&cfg.API, db, logger)
	if err != nil {
		logger.Error().Err(err).Msg("create grpc server")
		return err
	}
	go grpcServer.WatchDatabase(ctx, dbWatchInterval)

	httpServer := api.NewHTTPServer(&cfg.API, svc, db, logger)

	startMetrics(ctx, cfg, logger)

	return startServers(ctx, grpcServer, httpServer, cfg, logger)
}

func loadConfigAndLogger() (*config.Config, *zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger, closer, err := logging.New(cfg.Logging, cfg.App, "api")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	return cfg, logger, closer, nil
}

func initRedis(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	client := repository.NewRedisClient(cfg.Redis)
	if err := repository.Ping(ctx, client); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		_ = client.Close()
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return client
}

func initWorker(
	ctx context.Context,
	cfg *config.Config,
	db *database.DB,
	redisClient *redis.Client,
	bus *events.EventBus,
	logger *zerolog.Logger,
) (*worker.OutboxWorker, error) {
	policy, opts, err := worker.FromConfig(cfg.Worker)
	if err != nil {
		return nil, err
	}

	var ledger worker.Ledger
	if l := initLedger(ctx, cfg, logger); l != nil {
		ledger = l
	}

	var notifier worker.Notifier
	if cfg.Telegram.BotToken != "" {
		n, err := notify.NewTelegramNotifier(cfg.Telegram, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("telegram init failed, continuing without notifications")
		} else {
			notifier = n
		}
	}

	w := worker.NewOutboxWorker(db, ledger, notifier, redisClient, policy, opts, logging.Component(logger, "outbox"))
	switch {
	case cfg.NotificationsEnabled() && notifier != nil:
		w.SubscribeNotifications(bus)
	case cfg.Worker.NotifyOnEvents && cfg.Telegram.BotToken == "":
		logger.Warn().Msg("worker.notify_on_events is set but telegram.bot_token is empty, notifications disabled")
	}
	return w, nil
}

func initLedger(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) *google.LedgerService {
	if cfg.Google.CredentialsFile == "" || cfg.Google.BookingsSpreadsheetID == "" {
		return nil
	}

	ledger, err := google.NewLedgerService(ctx, cfg.Google.CredentialsFile, cfg.Google.BookingsSpreadsheetID, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("google sheets init failed, continuing without ledger")
		return nil
	}
	if err := ledger.TestConnection(ctx); err != nil {
		logger.Warn().Err(err).Msg("google sheets unreachable, continuing without ledger")
		return nil
	}
	if err := ledger.EnsureHeader(ctx); err != nil {
		logger.Warn().Err(err).Msg("write ledger header")
	}
	go ledger.StartCacheRefresh(ctx, ledgerCacheInterval)

	logger.Info().Msg("google sheets connected")
	return ledger
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	go startMetricsServer(ctx, cfg.Monitoring.PrometheusPort, logger)
}

func startServers(
	ctx context.Context,
	grpcServer *api.GRPCServer,
	httpServer *api.HTTPServer,
	cfg *config.Config,
	logger *zerolog.Logger,
) error {
	go func() {
		if err := grpcServer.Serve(); err != nil {
			logger.Error().Err(err).Msg("grpc server stopped")
		}
	}()

	go func() {
		if !cfg.API.HTTP.Enabled {
			return
		}
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Str("grpc_addr", grpcServer.Addr()).Int("http_port", cfg.API.HTTP.Port).Msg("API server started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	grpcServer.Shutdown(shutdownCtx)
	_ = httpServer.Shutdown(shutdownCtx)

	logger.Info().Msg("API server stopped")
	return nil
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
