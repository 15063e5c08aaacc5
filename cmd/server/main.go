// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/calmverse/internal/api"
	"github.com/tomtom215/calmverse/internal/config"
	"github.com/tomtom215/calmverse/internal/database"
	"github.com/tomtom215/calmverse/internal/logging"
	"github.com/tomtom215/calmverse/internal/metrics"
	"github.com/tomtom215/calmverse/internal/supervisor"
	"github.com/tomtom215/calmverse/internal/supervisor/services"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Msg("Starting CalmVerse")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Open(database.Config{
		Path:     cfg.Storage.Path,
		InMemory: cfg.Storage.InMemory,
	})
	if err != nil {
		logging.Fatal().Err(err).Str("path", cfg.Storage.Path).Msg("Failed to open document store")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing document store")
		}
	}()

	feats, err := initFeatures(ctx, cfg, db)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize features")
	}
	defer feats.Close()

	// === CREATE SUPERVISOR TREE ===
	slogLogger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(slogLogger, supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	checks := []api.ReadinessCheck{
		{Name: "storage", Check: func(context.Context) error { return db.Ping() }},
	}
	if feats.bookStore != nil {
		checks = append(checks, api.ReadinessCheck{Name: "books", Check: feats.bookStore.Ping})
	}

	handler := api.NewHandler(feats.services, api.HandlerConfig{
		RequestTimeout: cfg.Server.Timeout,
		// Each tool round trip may take a full provider timeout.
		ChatTimeout: cfg.Chat.Timeout * time.Duration(cfg.Chat.MaxToolCalls+1),
		Location:    cfg.Therapy.Location(),
		Version:     version,
	}, checks...)
	router := api.NewRouter(handler, api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(cfg.Security)))

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		// Chat requests outlive the general request timeout.
		WriteTimeout: cfg.Server.Timeout + cfg.Chat.Timeout*time.Duration(cfg.Chat.MaxToolCalls+1),
		IdleTimeout:  60 * time.Second,
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	// Data layer services
	if !cfg.Storage.InMemory && cfg.Storage.GCInterval > 0 {
		tree.AddDataService(services.NewPeriodicService("badger-gc", cfg.Storage.GCInterval, func(context.Context) error {
			if err := db.RunGC(); err != nil {
				metrics.StoreGCRuns.WithLabelValues("error").Inc()
				return err
			}
			metrics.StoreGCRuns.WithLabelValues("ok").Inc()
			return nil
		}))
		logging.Info().Dur("interval", cfg.Storage.GCInterval).Msg("Value log GC added to supervisor tree")
	}

	// Background layer services
	if feats.therapy != nil {
		therapySvc := feats.therapy
		tree.AddBackgroundService(services.NewPeriodicService("availability-refresh", time.Hour, func(ctx context.Context) error {
			_, err := therapySvc.RefreshAvailability(ctx)
			return err
		}, services.WithRunAtStart()))
		logging.Info().Msg("Availability refresh added to supervisor tree")
	}

	// API layer services
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
