package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dormgate/internal/api"
	"dormgate/internal/cache"
	"dormgate/internal/config"
	"dormgate/internal/domain"
	"dormgate/internal/events"
	"dormgate/internal/export"
	"dormgate/internal/journal"
	"dormgate/internal/logging"
	"dormgate/internal/metrics"
	"dormgate/internal/service"
	"dormgate/internal/session"
	"dormgate/internal/upload"
	"dormgate/internal/upstream"
	"dormgate/internal/worker"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
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

	j, err := journal.New(cfg.Journal.Path, &logger)
	if err != nil {
		logger.Error().Err(err).Str("path", cfg.Journal.Path).Msg("init journal")
		return err
	}
	defer j.Close()

	redisClient := initRedis(cfg, &logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	respCache := buildCache(cfg, redisClient, &logger)
	sessions := buildSessions(cfg, redisClient)

	client := upstream.NewClient(cfg.Upstream, &logger)
	bus := events.NewEventBus()
	subscribeJournal(bus, j, &logger)

	validator := upload.NewValidator(cfg.Uploads.MaxFileBytes, cfg.Uploads.AllowedTypes)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var watcher domain.VerificationWorker
	if cfg.Watcher.Enabled {
		w := worker.NewWatcher(client, client, respCache, bus, worker.RetryPolicy{
			MaxAttempts:  cfg.Watcher.MaxAttempts,
			InitialDelay: time.Duration(cfg.Watcher.PollIntervalSeconds) * time.Second,
		}, &logger)
		go w.Start(ctx)
		watcher = w
	}

	svcs := api.Services{
		Auth:      service.NewAuthService(client, sessions, bus, &logger),
		Bookings:  service.NewBookingService(client, client, respCache, j, bus, &logger),
		Payments:  service.NewPaymentService(client, respCache, j, bus, watcher, validator, &logger),
		Documents: service.NewDocumentService(client, respCache, j, bus, watcher, validator, &logger),
		Issues:    service.NewIssueService(client, respCache, j, bus, validator, cfg.Uploads.MaxFiles, &logger),
	}

	httpServer := api.NewHTTPServer(cfg.Server, svcs, sessions, j, export.NewExporter(), &logger)

	startMetrics(ctx, cfg, &logger)

	return startServer(ctx, httpServer, &logger)
}

func loadConfigAndLogger() (*config.Config, zerolog.Logger, io.Closer, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "configs/config.yaml"
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("load config: %w", err)
	}

	baseLogger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, zerolog.Logger{}, nil, fmt.Errorf("init logger: %w", err)
	}
	logger := logging.Component(baseLogger, "portal-main")

	return cfg, logger, closer, nil
}

func initRedis(cfg *config.Config, logger *zerolog.Logger) *redis.Client {
	if cfg.Redis.Address == "" {
		return nil
	}

	redisClient := cache.NewRedisClient(cfg.Redis)
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logger.Warn().Err(err).Msg("redis connection failed, continuing without redis")
		return nil
	}

	logger.Info().Str("addr", cfg.Redis.Address).Msg("redis connected")
	return redisClient
}

// buildCache prefers redis with in-memory failover; without redis the memory
// cache serves alone.
func buildCache(cfg *config.Config, redisClient *redis.Client, logger *zerolog.Logger) *cache.ResponseCache {
	memory := cache.NewMemoryCache()
	if redisClient == nil {
		return cache.NewResponseCache(memory, cfg.Cache)
	}
	failover := cache.NewFailoverCache(cache.NewRedisCache(redisClient), memory, logger)
	return cache.NewResponseCache(failover, cfg.Cache)
}

func buildSessions(cfg *config.Config, redisClient *redis.Client) session.Store {
	if redisClient != nil {
		return session.NewRedisStore(redisClient, cfg.Session.TTL())
	}
	return session.NewMemoryStore(cfg.Session.TTL())
}

// subscribeJournal mirrors watcher outcomes into the local activity journal.
// Submissions are journaled by the services themselves; here we only pick up
// review results that arrive asynchronously.
func subscribeJournal(bus *events.EventBus, j *journal.Journal, logger *zerolog.Logger) {
	record := func(entry journal.Entry) {
		if err := j.Record(context.Background(), entry); err != nil {
			logger.Warn().Err(err).Str("entity", entry.Entity).Msg("failed to journal review outcome")
		}
	}

	bus.Subscribe(events.EventPaymentVerified, func(e *events.Event) error {
		var payload events.PaymentEventPayload
		if err := json.Unmarshal(e.Payload, &payload); err != nil {
			return err
		}
		record(journal.Entry{
			TenantID: payload.TenantID,
			Entity:   "payment",
			EntityID: payload.PaymentID,
			Action:   "reviewed",
			Outcome:  payload.Status,
		})
		return nil
	})
	bus.Subscribe(events.EventDocumentReviewed, func(e *events.Event) error {
		var payload events.DocumentEventPayload
		if err := json.Unmarshal(e.Payload, &payload); err != nil {
			return err
		}
		record(journal.Entry{
			TenantID: payload.TenantID,
			Entity:   "document",
			EntityID: payload.DocumentID,
			Action:   "reviewed",
			Outcome:  payload.Status,
		})
		return nil
	})
}

func startMetrics(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) {
	if !cfg.Monitoring.PrometheusEnabled {
		return
	}

	metrics.Register()
	port := cfg.Monitoring.PrometheusPort
	if port == 0 {
		port = 9090
	}
	go startMetricsServer(ctx, port, logger)
}

func startServer(ctx context.Context, httpServer *api.HTTPServer, logger *zerolog.Logger) error {
	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Error().Err(err).Msg("http server stopped")
		}
	}()

	logger.Info().Msg("portal gateway started")

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http server shutdown")
	}

	logger.Info().Msg("portal gateway stopped")
	return nil
}

func startMetricsServer(ctx context.Context, port int, logger *zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{Addr: fmt.Sprintf(":%d", port), Handler: mux}
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctxShutdown)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error().Err(err).Msg("metrics server error")
	}
}
