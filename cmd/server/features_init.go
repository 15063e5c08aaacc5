// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/tomtom215/calmverse/internal/api"
	"github.com/tomtom215/calmverse/internal/books"
	"github.com/tomtom215/calmverse/internal/chat"
	"github.com/tomtom215/calmverse/internal/config"
	"github.com/tomtom215/calmverse/internal/database"
	"github.com/tomtom215/calmverse/internal/journal"
	"github.com/tomtom215/calmverse/internal/llm"
	"github.com/tomtom215/calmverse/internal/logging"
	"github.com/tomtom215/calmverse/internal/music"
	"github.com/tomtom215/calmverse/internal/therapy"
)

// features holds the constructed feature services and the resources that
// must be released on shutdown.
type features struct {
	services  api.Services
	therapy   *therapy.Service
	bookStore *books.Store
}

// Close releases resources owned by the features.
func (f *features) Close() {
	if f.bookStore != nil {
		if err := f.bookStore.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing book store")
		}
	}
}

// initFeatures builds every feature service. Only storage failures are
// fatal; missing datasets and providers leave the feature in a degraded mode.
func initFeatures(ctx context.Context, cfg *config.Config, db *database.DB) (*features, error) {
	f := &features{}

	f.services.Music = initMusic(cfg)

	booksSvc, store, err := initBooks(ctx, cfg)
	if err != nil {
		return nil, err
	}
	f.services.Books = booksSvc
	f.bookStore = store

	f.services.Chat = initChat(cfg, db)

	loc := cfg.Therapy.Location()
	f.services.Journal = journal.NewService(journal.NewBadgerStore(db), loc)

	therapySvc, err := initTherapy(ctx, cfg, db)
	if err != nil {
		f.Close()
		return nil, err
	}
	f.services.Therapy = therapySvc
	f.therapy = therapySvc

	return f, nil
}

func initMusic(cfg *config.Config) *music.Service {
	var catalog music.Catalog = music.NoCatalog{}
	if cfg.Spotify.Enabled {
		catalog = music.NewSpotifyClient(cfg.Spotify, nil)
		logging.Info().Msg("Spotify album art lookup enabled")
	}

	dataset, err := music.LoadDataset(cfg.Music.DatasetPath)
	if err != nil {
		// The service answers 503 until a dataset is deployed.
		logging.Warn().Err(err).Str("path", cfg.Music.DatasetPath).Msg("Song dataset not loaded, music recommendations unavailable")
		dataset = nil
	} else {
		logging.Info().Int("songs", dataset.Len()).Msg("Song dataset loaded")
	}

	return music.NewService(dataset, catalog, cfg.Music.RecommendCount, cfg.Music.PlaceholderImage)
}

func initBooks(ctx context.Context, cfg *config.Config) (*books.Service, *books.Store, error) {
	store, err := books.OpenStore(ctx, cfg.Books.DBPath, cfg.Books.SeedSampleData)
	if err != nil {
		return nil, nil, fmt.Errorf("open book store: %w", err)
	}

	index, err := books.LoadIndex(ctx, store, cfg.Books.SimilarityPath)
	if err != nil {
		logging.Warn().Err(err).Str("path", cfg.Books.SimilarityPath).Msg("Book similarity index invalid, serving fallback recommendations")
		index = nil
	}
	svc := books.NewService(store, index, cfg.Books.DefaultLimit, cfg.Books.MaxLimit)
	logging.Info().Bool("indexed", svc.HasIndex()).Str("db", cfg.Books.DBPath).Msg("Book store opened")
	return svc, store, nil
}

func initChat(cfg *config.Config, db *database.DB) *chat.Service {
	var completer llm.Completer
	if cfg.ChatConfigured() {
		c, err := llm.New(cfg.Chat)
		switch {
		case errors.Is(err, llm.ErrNotConfigured):
		case err != nil:
			logging.Warn().Err(err).Str("provider", cfg.Chat.Provider).Msg("Chat provider rejected, only crisis responses available")
		default:
			completer = c
			logging.Info().Str("provider", c.Provider()).Str("model", cfg.Chat.Model).Msg("Chat provider configured")
		}
	}
	if completer == nil {
		logging.Warn().Msg("No chat provider configured, only crisis responses available")
	}

	var sessions chat.SessionStore
	if cfg.Chat.SessionStore == "badger" {
		sessions = chat.NewBadgerSessionStore(db, cfg.Chat.SessionTTL)
	} else {
		sessions = chat.NewMemorySessionStore(cfg.Chat.SessionTTL)
	}

	return chat.NewService(completer, sessions, chat.Config{
		Temperature:    cfg.Chat.Temperature,
		MaxToolCalls:   cfg.Chat.MaxToolCalls,
		MaxHistory:     cfg.Chat.MaxHistory,
		CrisisKeywords: cfg.Chat.CrisisKeywords,
	})
}

func initTherapy(ctx context.Context, cfg *config.Config, db *database.DB) (*therapy.Service, error) {
	svc := therapy.NewService(therapy.NewBadgerStore(db), therapy.ServiceConfig{
		AvailabilityDays: cfg.Therapy.AvailabilityDays,
		Hours: therapy.WorkingHours{
			StartHour:    cfg.Therapy.WorkdayStart,
			EndHour:      cfg.Therapy.WorkdayEnd,
			SlotDuration: cfg.Therapy.SlotDuration,
			Location:     cfg.Therapy.Location(),
		},
	})

	if !cfg.Therapy.SeedOnStartup {
		return svc, nil
	}

	seeds := therapy.DefaultSeed()
	if cfg.Therapy.SeedFile != "" {
		loaded, err := therapy.LoadSeedFile(cfg.Therapy.SeedFile)
		switch {
		case errors.Is(err, os.ErrNotExist):
			logging.Warn().Str("path", cfg.Therapy.SeedFile).Msg("Therapist seed file not found, using built-in directory")
		case err != nil:
			return nil, fmt.Errorf("load therapist seed: %w", err)
		default:
			seeds = loaded
		}
	}

	if _, err := svc.Seed(ctx, seeds); err != nil {
		return nil, fmt.Errorf("seed therapists: %w", err)
	}
	return svc, nil
}
