// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package api

import (
	"net/http"
	"time"
)

// RootInfo is the payload of GET /.
type RootInfo struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Features  []string          `json:"features"`
	Endpoints map[string]string `json:"endpoints"`
}

// Root lists the features this instance serves.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	info := RootInfo{
		Message:   "Welcome to the CalmVerse API",
		Version:   h.cfg.Version,
		Features:  []string{},
		Endpoints: map[string]string{},
	}
	if h.music != nil {
		info.Features = append(info.Features, "Music Recommendations - Get personalized music suggestions based on your preferences")
		info.Endpoints["music"] = "/songs, /recommend, /song_details"
	}
	if h.books != nil {
		info.Features = append(info.Features, "Book Recommendations - Discover books similar to the ones you love")
		info.Endpoints["books"] = "/api/books/, /api/books/recommend/{title}"
	}
	if h.chat != nil {
		info.Features = append(info.Features, "Mental Health Support - Chat with our AI assistant for mental wellness guidance")
		info.Endpoints["mental_health"] = "/mental-health/chat"
	}
	if h.journal != nil {
		info.Features = append(info.Features, "Journaling - Express thoughts, track moods, and receive guided prompts for reflection")
		info.Endpoints["journal"] = "/journal/entries, /journal/prompts, /journal/insights"
	}
	if h.therapy != nil {
		info.Features = append(info.Features, "Therapist Appointments - Book sessions with mental health professionals")
		info.Endpoints["therapists"] = "/therapists, /therapists/appointments"
	}

	respondSuccess(w, r, http.StatusOK, info, start)
}
