// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package api

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/tomtom215/calmverse/internal/config"
	"github.com/tomtom215/calmverse/internal/models"
)

func TestRoot_ListsConfiguredFeatures(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, Services{Music: newMusicService(t), Journal: newJournalService(t)})

	var info RootInfo
	env := decodeEnvelope(t, doRequest(t, router, http.MethodGet, "/", nil), http.StatusOK, &info)
	if env.Status != models.StatusSuccess {
		t.Fatalf("status = %q", env.Status)
	}
	if info.Message != "Welcome to the CalmVerse API" || info.Version != "test" {
		t.Errorf("info = %+v", info)
	}
	if len(info.Features) != 2 {
		t.Errorf("features = %v, want music and journal only", info.Features)
	}
	if _, ok := info.Endpoints["therapists"]; ok {
		t.Error("therapists endpoint listed without a therapy service")
	}
}

func TestRouter_UnregisteredFeatureIs404(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, Services{})

	for _, path := range []string{"/songs", "/therapists/", "/journal/entries", "/does-not-exist"} {
		env := decodeEnvelope(t, doRequest(t, router, http.MethodGet, path, nil), http.StatusNotFound, nil)
		assertErrorCode(t, env, models.ErrCodeNotFound)
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, Services{Journal: newJournalService(t)})

	env := decodeEnvelope(t, doRequest(t, router, http.MethodPatch, "/journal/prompts", nil), http.StatusMethodNotAllowed, nil)
	assertErrorCode(t, env, models.ErrCodeMethodNotAllowed)
}

func TestRouter_RequestIDAndSecurityHeaders(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, Services{})
	w := doRequest(t, router, http.MethodGet, "/", nil)

	id := w.Header().Get("X-Request-ID")
	if id == "" {
		t.Fatal("missing X-Request-ID header")
	}
	env := decodeEnvelope(t, w, http.StatusOK, nil)
	if env.Metadata.RequestID != id {
		t.Errorf("metadata request_id = %q, want %q", env.Metadata.RequestID, id)
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("missing security headers")
	}
	if w.Header().Get("ETag") == "" {
		t.Error("missing ETag")
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	ok := ReadinessCheck{Name: "badger", Check: func(context.Context) error { return nil }}
	failing := ReadinessCheck{Name: "sqlite", Check: func(context.Context) error { return errors.New("disk gone") }}

	t.Run("live", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(t, Services{}, failing)
		decodeEnvelope(t, doRequest(t, router, http.MethodGet, "/api/v1/health/live", nil), http.StatusOK, nil)
	})

	t.Run("ready", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(t, Services{Music: newMusicService(t)}, ok)
		var status HealthStatus
		decodeEnvelope(t, doRequest(t, router, http.MethodGet, "/api/v1/health/ready", nil), http.StatusOK, &status)
		if status.Checks["badger"] != "ok" {
			t.Errorf("checks = %v", status.Checks)
		}
		if !status.Features["music_dataset"] || status.Features["chat_assistant"] {
			t.Errorf("features = %v", status.Features)
		}
	})

	t.Run("not ready", func(t *testing.T) {
		t.Parallel()
		router := newTestRouter(t, Services{}, ok, failing)
		var status HealthStatus
		env := decodeEnvelope(t, doRequest(t, router, http.MethodGet, "/api/v1/health/ready", nil), http.StatusServiceUnavailable, &status)
		assertErrorCode(t, env, models.ErrCodeServiceUnavailable)
		if !strings.Contains(status.Checks["sqlite"], "disk gone") {
			t.Errorf("checks = %v", status.Checks)
		}
	})
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, Services{})
	w := doRequest(t, router, http.MethodGet, "/metrics", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "go_goroutines") {
		t.Error("expected default Go collectors in exposition")
	}
}

func TestRouter_ChatRateLimit(t *testing.T) {
	t.Parallel()

	cfg := DefaultChiMiddlewareConfig()
	cfg.ChatRateLimitRequests = 1
	h := NewHandler(Services{Chat: newChatService(nil)}, HandlerConfig{})
	router := NewRouter(h, NewChiMiddleware(cfg)).SetupChi()

	body := ChatRequest{Message: "I need urgent help", UserID: "u1"}
	decodeEnvelope(t, doRequest(t, router, http.MethodPost, "/mental-health/chat", body), http.StatusOK, nil)

	env := decodeEnvelope(t, doRequest(t, router, http.MethodPost, "/mental-health/chat", body), http.StatusTooManyRequests, nil)
	assertErrorCode(t, env, models.ErrCodeTooManyRequests)
}

func TestChiMiddlewareConfigFrom(t *testing.T) {
	t.Parallel()

	cfg := ChiMiddlewareConfigFrom(configSecurity())
	if cfg.RateLimitRequests != 50 || cfg.ChatRateLimitRequests != 5 {
		t.Errorf("limits = %d/%d", cfg.RateLimitRequests, cfg.ChatRateLimitRequests)
	}
	if len(cfg.CORSAllowedOrigins) != 1 || cfg.CORSAllowedOrigins[0] != "https://calmverse.app" {
		t.Errorf("origins = %v", cfg.CORSAllowedOrigins)
	}
	if cfg.RateLimitWindow <= 0 {
		t.Error("window should keep its default")
	}
}

func configSecurity() config.SecurityConfig {
	return config.SecurityConfig{
		CORSOrigins:       []string{"https://calmverse.app"},
		RateLimitReqs:     50,
		ChatRateLimitReqs: 5,
	}
}
