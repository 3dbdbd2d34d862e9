package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mindforge/focusd/internal/api"
	"github.com/mindforge/focusd/internal/cache"
	"github.com/mindforge/focusd/internal/config"
	"github.com/mindforge/focusd/internal/engine"
	"github.com/mindforge/focusd/internal/pattern"
	"github.com/mindforge/focusd/internal/scoring"
	"github.com/mindforge/focusd/internal/storage"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(os.Getenv("FOCUSD_CONFIG"))
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	// Scoring backend: classifier when an artifact is configured and loads
	// cleanly, heuristic otherwise. A broken artifact is never fatal.
	var backend scoring.Backend = scoring.NewHeuristic(logger)
	if cfg.Model.ArtifactPath != "" {
		classifier, err := scoring.LoadClassifier(cfg.Model.ArtifactPath, logger)
		if err != nil {
			logger.Warn("classifier unavailable, using heuristic scoring",
				zap.String("path", cfg.Model.ArtifactPath), zap.Error(err))
		} else {
			backend = classifier
		}
	}

	analyzer := pattern.NewAnalyzer(backend, logger)

	conn := cache.Connect(cfg.Cache.SweepInterval(), logger)
	cacheStore, _ := conn.Available()

	eng := engine.New(backend, analyzer, cacheStore, cfg.Cache.TTL(), logger)

	// The sample store is optional: without it the service still scores and
	// analyzes caller-supplied data.
	var store api.SampleStore
	pg, err := storage.NewPostgres(storage.Config{
		Host:     cfg.Database.Host,
		Port:     cfg.Database.Port,
		Database: cfg.Database.Database,
		User:     cfg.Database.User,
		Password: cfg.Database.Password,
		SSLMode:  cfg.Database.SSLMode,
	})
	if err != nil {
		logger.Warn("sample store unavailable, running degraded", zap.Error(err))
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := pg.Ping(ctx); err != nil {
			logger.Warn("sample store unreachable, running degraded", zap.Error(err))
		} else if err := pg.CreateTables(ctx); err != nil {
			logger.Warn("sample store schema setup failed, running degraded", zap.Error(err))
		} else {
			store = pg
			logger.Info("sample store connected",
				zap.String("host", cfg.Database.Host),
				zap.String("database", cfg.Database.Database))
		}
		cancel()
		defer func() { _ = pg.Close() }()
	}

	server := api.NewServer(cfg, logger, eng, store, conn)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
		os.Exit(0)
	}()

	if err := server.Start(); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
