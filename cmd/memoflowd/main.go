// Package main implements the entry point for the memoflow daemon, which
// turns captured memos into reviewable task drafts through a serialized
// AI classification pipeline.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"memoflow/internal/classify"
	"memoflow/internal/config"
	"memoflow/internal/events"
	"memoflow/internal/persist"
	"memoflow/internal/platform/gemini"
	"memoflow/internal/platform/logger"
	"memoflow/internal/platform/openai"
	"memoflow/internal/platform/postgres"
	"memoflow/internal/queue"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("memoflowd failed: %v", err)
	}
}

// run wires up configuration, storage, the classifier, and the pipeline, then
// blocks until a termination signal arrives.
func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("configuration loaded",
		"log_level", cfg.Server.LogLevel,
		"metrics_port", cfg.Server.MetricsPort,
		"provider", cfg.LLM.Provider,
		"database_configured", cfg.Database.URL != "")

	store, closeStore, err := setupStore(cfg, appLogger)
	if err != nil {
		return err
	}
	defer closeStore()

	agent, err := setupAgent(ctx, cfg, appLogger)
	if err != nil {
		return err
	}

	emitter := events.NewInMemoryEmitter(appLogger)

	registry := prometheus.NewRegistry()
	metrics := queue.NewMetrics(registry)

	pipeline, err := queue.New(queue.Config{
		Agent:     agent,
		Persister: store,
		Tags:      store,
		Audit:     store,
		Emitter:   emitter,
		Logger:    appLogger,
		Metrics:   metrics,
	})
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}
	pipeline.Start()
	appLogger.Info("pipeline started")

	metricsServer := startMetricsServer(cfg.Server.MetricsPort, registry, appLogger)

	// Block until SIGINT or SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	appLogger.Info("shutdown signal received", "signal", sig.String())

	shutdownCtx, cancel := context.WithTimeout(ctx,
		time.Duration(cfg.Queue.ShutdownTimeoutSeconds)*time.Second)
	defer cancel()

	if err := pipeline.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("pipeline shutdown failed", "error", err)
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("metrics server shutdown failed", "error", err)
	}

	appLogger.Info("memoflowd stopped")
	return nil
}

// pipelineStore is the storage surface the pipeline needs from a backend.
type pipelineStore interface {
	persist.Persister
	persist.TagSource
	persist.AuditLog
}

// setupStore returns the persistence backend: PostgreSQL when a database URL
// is configured, otherwise the in-memory store.
func setupStore(cfg *config.Config, appLogger *slog.Logger) (pipelineStore, func(), error) {
	if cfg.Database.URL == "" {
		appLogger.Warn("no database configured, drafts are held in memory only")
		return persist.NewMemoryStore(), func() {}, nil
	}

	db, err := postgres.NewDB(cfg.Database.URL, appLogger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := postgres.RunMigrations(db, appLogger); err != nil {
		_ = db.Close()
		return nil, nil, err
	}

	closeDB := func() {
		if err := db.Close(); err != nil {
			appLogger.Error("failed to close database", "error", err)
		}
	}
	return postgres.NewStore(db, appLogger), closeDB, nil
}

// setupAgent builds the classifier for the configured provider.
func setupAgent(ctx context.Context, cfg *config.Config, appLogger *slog.Logger) (classify.Agent, error) {
	switch cfg.LLM.Provider {
	case "gemini":
		return gemini.NewGeminiAgent(ctx, appLogger, cfg.LLM)
	case "openai":
		return openai.NewOpenAIAgent(appLogger, cfg.LLM)
	case "rulebased":
		return classify.NewRuleBasedAgent(appLogger), nil
	default:
		// config.Load validates the provider; this is a safety net for
		// callers constructing Config by hand.
		return nil, fmt.Errorf("unknown classifier provider %q", cfg.LLM.Provider)
	}
}

// startMetricsServer exposes the Prometheus metrics endpoint in the
// background and returns the server for shutdown.
func startMetricsServer(port int, registry *prometheus.Registry, appLogger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		appLogger.Info("metrics server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error("metrics server failed", "error", err)
		}
	}()

	return server
}
