// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/calmverse/internal/models"
	"github.com/tomtom215/calmverse/internal/music"
)

// SongList is the payload of GET /songs.
type SongList struct {
	Songs []string `json:"songs"`
}

type recommendSongQuery struct {
	Song string `json:"song" validate:"required,max=500"`
}

type songDetailsQuery struct {
	Song   string `json:"song" validate:"required,max=500"`
	Artist string `json:"artist" validate:"required,max=500"`
}

// Songs lists every song in the dataset.
func (h *Handler) Songs(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	songs, err := h.music.Songs()
	if err != nil {
		respondServiceError(w, err, "Error listing songs")
		return
	}
	respondSuccess(w, r, http.StatusOK, SongList{Songs: songs}, start)
}

// RecommendSongs returns the songs most similar to ?song=.
func (h *Handler) RecommendSongs(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	q := recommendSongQuery{Song: r.URL.Query().Get("song")}
	if apiErr := validateRequest(&q); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	rec, err := h.music.Recommend(ctx, q.Song)
	if errors.Is(err, music.ErrSongNotFound) {
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, fmt.Sprintf("Song '%s' not found in database", q.Song), nil)
		return
	}
	if err != nil {
		respondServiceError(w, err, "Error generating recommendations")
		return
	}
	respondSuccess(w, r, http.StatusOK, rec, start)
}

// SongDetails resolves cover art and Spotify URI for one song.
func (h *Handler) SongDetails(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	q := songDetailsQuery{
		Song:   r.URL.Query().Get("song"),
		Artist: r.URL.Query().Get("artist"),
	}
	if apiErr := validateRequest(&q); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	respondSuccess(w, r, http.StatusOK, h.music.Details(ctx, q.Song, q.Artist), start)
}
