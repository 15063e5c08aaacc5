// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/calmverse/internal/books"
	"github.com/tomtom215/calmverse/internal/models"
)

// BookList is the payload of GET /api/books/.
type BookList struct {
	Books []books.Summary `json:"books"`
}

// BookRecommendations is the payload of GET /api/books/recommend/{title}.
type BookRecommendations struct {
	RecommendedBooks []books.Recommendation `json:"recommended_books"`
}

// Books lists every book.
func (h *Handler) Books(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	list, err := h.books.List(ctx)
	if err != nil {
		respondServiceError(w, err, "Error retrieving books")
		return
	}
	respondSuccess(w, r, http.StatusOK, BookList{Books: list}, start)
}

// RecommendBooks returns titles similar to {title}. ?limit defaults to the
// configured value and is capped by the service.
func (h *Handler) RecommendBooks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	title := chi.URLParam(r, "title")
	if unescaped, err := url.PathUnescape(title); err == nil {
		title = unescaped
	}
	title = strings.TrimSpace(title)
	if title == "" {
		respondError(w, http.StatusBadRequest, models.ErrCodeBadRequest, "title is required", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	recs, err := h.books.Recommend(ctx, title, getIntParam(r, "limit", 0))
	if err != nil {
		respondServiceError(w, err, "Error generating recommendations")
		return
	}
	respondSuccess(w, r, http.StatusOK, BookRecommendations{RecommendedBooks: recs}, start)
}
