// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/calmverse/internal/journal"
	"github.com/tomtom215/calmverse/internal/models"
)

// JournalEntryRequest is the body of POST and PUT /journal/entries.
// user_id is only honoured on create.
type JournalEntryRequest struct {
	UserID  string   `json:"user_id,omitempty" validate:"omitempty,max=200"`
	Title   string   `json:"title" validate:"required,min=1,max=100"`
	Content string   `json:"content" validate:"required,min=1"`
	Mood    string   `json:"mood,omitempty" validate:"omitempty,notblank_opt,max=50"`
	Tags    []string `json:"tags,omitempty" validate:"omitempty,max=20,dive,max=50"`
}

func (req *JournalEntryRequest) draft() journal.Draft {
	return journal.Draft{
		UserID:  req.UserID,
		Title:   req.Title,
		Content: req.Content,
		Mood:    req.Mood,
		Tags:    req.Tags,
	}
}

// decodeEntry reads and validates an entry body, writing the error
// response itself. It reports whether the handler should continue.
func decodeEntry(w http.ResponseWriter, r *http.Request) (*JournalEntryRequest, bool) {
	var req JournalEntryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeBadRequest, "Invalid request body", nil)
		return nil, false
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return nil, false
	}
	return &req, true
}

// CreateJournalEntry stores a new entry.
func (h *Handler) CreateJournalEntry(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, ok := decodeEntry(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	entry, err := h.journal.Create(ctx, req.draft())
	if err != nil {
		respondServiceError(w, err, "Error creating journal entry")
		return
	}
	respondSuccess(w, r, http.StatusCreated, entry, start)
}

// ListJournalEntries returns entries newest first, optionally for ?user_id=.
func (h *Handler) ListJournalEntries(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	entries, err := h.journal.List(ctx, r.URL.Query().Get("user_id"))
	if err != nil {
		respondServiceError(w, err, "Error listing journal entries")
		return
	}
	respondSuccess(w, r, http.StatusOK, entries, start)
}

// GetJournalEntry returns one entry.
func (h *Handler) GetJournalEntry(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	entry, err := h.journal.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "Error loading journal entry")
		return
	}
	respondSuccess(w, r, http.StatusOK, entry, start)
}

// UpdateJournalEntry replaces the writable fields of an entry.
func (h *Handler) UpdateJournalEntry(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req, ok := decodeEntry(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	entry, err := h.journal.Update(ctx, chi.URLParam(r, "id"), req.draft())
	if err != nil {
		respondServiceError(w, err, "Error updating journal entry")
		return
	}
	respondSuccess(w, r, http.StatusOK, entry, start)
}

// DeleteJournalEntry removes an entry.
func (h *Handler) DeleteJournalEntry(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	id := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	if err := h.journal.Delete(ctx, id); err != nil {
		respondServiceError(w, err, "Error deleting journal entry")
		return
	}
	respondSuccess(w, r, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Journal entry with ID %s deleted successfully", id),
	}, start)
}

// JournalPrompts returns the full prompt table.
func (h *Handler) JournalPrompts(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, journal.Prompts(), time.Now())
}

// RandomJournalPrompt picks one prompt, optionally from ?category=.
func (h *Handler) RandomJournalPrompt(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	prompt, err := journal.RandomPrompt(r.URL.Query().Get("category"))
	if err != nil {
		respondServiceError(w, err, "Error selecting prompt")
		return
	}
	respondSuccess(w, r, http.StatusOK, prompt, start)
}

// JournalInsights aggregates moods, tags and weekly activity.
func (h *Handler) JournalInsights(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	insights, err := h.journal.Insights(ctx, r.URL.Query().Get("user_id"))
	if err != nil {
		respondServiceError(w, err, "Error computing insights")
		return
	}
	respondSuccess(w, r, http.StatusOK, insights, start)
}
