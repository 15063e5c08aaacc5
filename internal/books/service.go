// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

// Package books serves the book catalog from SQLite and recommends similar
// titles from a precomputed similarity matrix.
//
// Without a usable matrix for a book the service degrades to a fixed list
// of wellbeing titles instead of failing.
package books

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/tomtom215/calmverse/internal/logging"
	"github.com/tomtom215/calmverse/internal/metrics"
	"github.com/tomtom215/calmverse/internal/similarity"
)

// Recommendation is one recommended title.
type Recommendation struct {
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
}

// Service answers book queries.
type Service struct {
	store        *Store
	index        *similarity.Index // nil when no matrix is loaded
	defaultLimit int
	maxLimit     int
}

// NewService creates a book service. index may be nil.
func NewService(store *Store, index *similarity.Index, defaultLimit, maxLimit int) *Service {
	if defaultLimit <= 0 {
		defaultLimit = 8
	}
	if maxLimit < defaultLimit {
		maxLimit = defaultLimit
	}
	return &Service{store: store, index: index, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

// LoadIndex reads the matrix at path. Its rows follow ascending book id;
// when the artifact carries no keys they are taken from the table. A
// missing artifact yields (nil, nil).
func LoadIndex(ctx context.Context, store *Store, path string) (*similarity.Index, error) {
	var m similarity.Matrix
	if err := similarity.ReadJSON(path, &m); err != nil {
		if errors.Is(err, similarity.ErrMissing) {
			return nil, nil
		}
		return nil, err
	}

	keys := m.Keys
	if len(keys) == 0 {
		ids, err := store.IDs(ctx)
		if err != nil {
			return nil, err
		}
		keys = make([]string, len(ids))
		for i, id := range ids {
			keys[i] = strconv.FormatInt(id, 10)
		}
	}
	ix, err := similarity.New(keys, m.Similarity)
	if err != nil {
		return nil, fmt.Errorf("book similarity %s: %w", path, err)
	}
	return ix, nil
}

// HasIndex reports whether similarity data is loaded.
func (s *Service) HasIndex() bool {
	return s.index != nil
}

// List returns every book.
func (s *Service) List(ctx context.Context) ([]Summary, error) {
	return s.store.List(ctx)
}

// Recommend returns up to limit titles similar to title. limit <= 0 means
// the default; larger values are capped.
func (s *Service) Recommend(ctx context.Context, title string, limit int) ([]Recommendation, error) {
	if limit <= 0 {
		limit = s.defaultLimit
	}
	if limit > s.maxLimit {
		limit = s.maxLimit
	}

	book, err := s.store.FindByTitle(ctx, title)
	if err != nil {
		if errors.Is(err, ErrBookNotFound) {
			metrics.RecommendationRequests.WithLabelValues("books", "not_found").Inc()
		}
		return nil, err
	}

	if s.index == nil {
		return s.fallback(limit, "no_index"), nil
	}
	neighbors, err := s.index.TopK(strconv.FormatInt(book.ID, 10), limit)
	if err != nil {
		logging.Ctx(ctx).Debug().Int64("book_id", book.ID).Msg("Book missing from similarity index")
		return s.fallback(limit, "not_indexed"), nil
	}

	ids := make([]int64, 0, len(neighbors))
	for _, n := range neighbors {
		id, err := strconv.ParseInt(n.Key, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	found, err := s.store.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]Recommendation, 0, len(ids))
	for _, id := range ids {
		b, ok := found[id]
		if !ok {
			continue
		}
		image := b.ImageURL
		if image == "" {
			image = generatedImageURL(b.Title)
		}
		out = append(out, Recommendation{Title: b.Title, ImageURL: image})
	}
	if len(out) == 0 {
		return s.fallback(limit, "empty"), nil
	}

	metrics.RecommendationRequests.WithLabelValues("books", "success").Inc()
	return out, nil
}

func (s *Service) fallback(limit int, reason string) []Recommendation {
	metrics.RecommendationRequests.WithLabelValues("books", "fallback_"+reason).Inc()
	n := min(limit, len(fallbackTitles))
	out := make([]Recommendation, n)
	for i := 0; i < n; i++ {
		out[i] = Recommendation{Title: fallbackTitles[i], ImageURL: placeholderCover}
	}
	return out
}
