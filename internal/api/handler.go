// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package api

import (
	"context"
	"time"

	"github.com/tomtom215/calmverse/internal/books"
	"github.com/tomtom215/calmverse/internal/chat"
	"github.com/tomtom215/calmverse/internal/journal"
	"github.com/tomtom215/calmverse/internal/music"
	"github.com/tomtom215/calmverse/internal/therapy"
)

const (
	defaultRequestTimeout = 10 * time.Second
	defaultChatTimeout    = 60 * time.Second
)

// ReadinessCheck is one dependency probed by /api/v1/health/ready.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Services are the feature services served over HTTP. Any of them may be
// nil, in which case its routes are not registered.
type Services struct {
	Music   *music.Service
	Books   *books.Service
	Chat    *chat.Service
	Journal *journal.Service
	Therapy *therapy.Service
}

// HandlerConfig tunes per-request deadlines.
type HandlerConfig struct {
	RequestTimeout time.Duration
	// ChatTimeout covers the whole tool loop, which may call the LLM
	// several times.
	ChatTimeout time.Duration
	// Location interprets booking times sent without a UTC offset.
	Location *time.Location
	Version  string
}

// Handler contains dependencies for API handlers.
//
// Handler methods are split across files by feature:
//   - handlers_root.go: feature listing
//   - handlers_health.go: liveness and readiness
//   - handlers_music.go, handlers_books.go: recommendations
//   - handlers_chat.go: assistant conversations
//   - handlers_journal.go: journal CRUD, prompts and insights
//   - handlers_therapy.go: therapist directory and appointments
type Handler struct {
	music   *music.Service
	books   *books.Service
	chat    *chat.Service
	journal *journal.Service
	therapy *therapy.Service

	checks    []ReadinessCheck
	cfg       HandlerConfig
	startTime time.Time
}

// NewHandler creates a Handler. checks are run by the readiness probe.
func NewHandler(svc Services, cfg HandlerConfig, checks ...ReadinessCheck) *Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if cfg.ChatTimeout <= 0 {
		cfg.ChatTimeout = defaultChatTimeout
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	return &Handler{
		music:     svc.Music,
		books:     svc.Books,
		chat:      svc.Chat,
		journal:   svc.Journal,
		therapy:   svc.Therapy,
		checks:    checks,
		cfg:       cfg,
		startTime: time.Now(),
	}
}
