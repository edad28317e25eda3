package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariel-research/budget-survey-sub001/internal/api"
	"github.com/ariel-research/budget-survey-sub001/internal/config"
	"github.com/ariel-research/budget-survey-sub001/internal/events"
	"github.com/ariel-research/budget-survey-sub001/internal/simplex"
	"github.com/ariel-research/budget-survey-sub001/internal/store"
	"github.com/ariel-research/budget-survey-sub001/internal/strategy"
	"github.com/ariel-research/budget-survey-sub001/internal/utility"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logging.NewLogger(os.Stdout)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Store
	var db store.Store
	if cfg.Database.URL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.Database.URL)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		if err := pg.EnsureSchema(ctx); err != nil {
			logger.Error("failed to prepare schema", "error", err)
			os.Exit(1)
		}
		db = pg
		logger.Info("connected to database")
	} else {
		db = store.NewMemoryStore()
		logger.Warn("no database configured, batches are kept in memory")
	}
	defer db.Close()

	// Events (optional)
	var eventsClient events.Client = events.Nop{}
	if cfg.Events.URL != "" {
		ec, err := events.NewNATSClient(ctx, cfg.Events.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to nats, running without events", "error", err)
		} else {
			eventsClient = ec
			defer ec.Close()
			logger.Info("connected to nats", "stream", events.StreamName)
		}
	}

	// Strategies
	cache := simplex.NewCache()
	opts := append(cfg.StrategyOptions(), strategy.WithLogger(logger))
	strategies, err := strategy.BuildRegistry(cfg.Strategies, utility.DefaultRegistry(), cache, opts...)
	if err != nil {
		logger.Error("failed to build strategies", "error", err)
		os.Exit(1)
	}
	for _, s := range strategies.List() {
		c := s.Config()
		logger.Info("strategy registered",
			"strategy", c.Name,
			"engine", c.Engine,
			"metric_a", c.MetricA,
			"metric_b", c.MetricB,
			"floor", c.Floor,
		)
	}

	// API server
	router := api.NewRouter(api.Deps{
		Strategies:   strategies,
		Store:        db,
		Events:       eventsClient,
		Cache:        cache,
		DefaultPairs: cfg.Survey.DefaultPairs,
		MaxPairs:     cfg.Survey.MaxPairs,
		MaxDimension: cfg.Survey.MaxDimension,
		AdminToken:   cfg.Server.AdminToken,
		Logger:       logger,
	})
	apiServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler:           api.NewMetricsRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}
