// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/calmverse/internal/logging"
	"github.com/tomtom215/calmverse/internal/models"
)

// HealthStatus is the readiness payload.
type HealthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
	// Features reports optional subsystems that run degraded.
	Features map[string]bool `json:"features"`
	Uptime   float64         `json:"uptime_seconds"`
	Version  string          `json:"version"`
}

// HealthLive reports that the process is serving requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, map[string]string{"status": "alive"}, time.Now())
}

// HealthReady runs every readiness check. A failing check makes the probe
// return 503; optional features that run degraded do not.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := HealthStatus{
		Status:   "healthy",
		Checks:   make(map[string]string, len(h.checks)),
		Features: h.features(),
		Uptime:   time.Since(h.startTime).Seconds(),
		Version:  h.cfg.Version,
	}
	for _, c := range h.checks {
		if err := c.Check(ctx); err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("check", c.Name).Msg("Readiness check failed")
			status.Checks[c.Name] = "error: " + err.Error()
			status.Status = "unhealthy"
			continue
		}
		status.Checks[c.Name] = "ok"
	}

	if status.Status != "healthy" {
		resp := models.NewError(models.ErrCodeServiceUnavailable, "One or more dependencies are unavailable")
		resp.Data = status
		respondJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	respondSuccess(w, r, http.StatusOK, status, start)
}

func (h *Handler) features() map[string]bool {
	return map[string]bool{
		"music_dataset":  h.music != nil && h.music.Ready(),
		"book_index":     h.books != nil && h.books.HasIndex(),
		"chat_assistant": h.chat != nil && h.chat.Available(),
		"journal":        h.journal != nil,
		"therapy":        h.therapy != nil,
	}
}
