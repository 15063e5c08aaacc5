// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package journal

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/lo"

	"github.com/tomtom215/calmverse/internal/logging"
)

// Service is the journal API over a Store.
type Service struct {
	store Store
	now   func() time.Time
	loc   *time.Location
}

// NewService creates a journal service. Insight weeks are computed in loc.
func NewService(store Store, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: store, now: time.Now, loc: loc}
}

// SetClock replaces the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

func checkID(id string) error {
	if _, err := ulid.ParseStrict(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// normalizeTags trims tags, drops empties and keeps the first occurrence.
func normalizeTags(tags []string) []string {
	out := lo.Uniq(lo.FilterMap(tags, func(t string, _ int) (string, bool) {
		t = strings.TrimSpace(t)
		return t, t != ""
	}))
	if out == nil {
		return []string{}
	}
	return out
}

// Create stores a new entry.
func (s *Service) Create(ctx context.Context, d Draft) (*Entry, error) {
	now := s.now().UTC()
	e := &Entry{
		ID:        ulid.Make().String(),
		UserID:    d.UserID,
		Title:     d.Title,
		Content:   d.Content,
		Mood:      d.Mood,
		Tags:      normalizeTags(d.Tags),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Put(ctx, e); err != nil {
		return nil, fmt.Errorf("create journal entry: %w", err)
	}
	logging.Ctx(ctx).Debug().Str("entry_id", e.ID).Msg("Journal entry created")
	return e, nil
}

// Get returns one entry.
func (s *Service) Get(ctx context.Context, id string) (*Entry, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, id)
}

// List returns entries newest first, optionally for one user.
func (s *Service) List(ctx context.Context, userID string) ([]Entry, error) {
	entries, err := s.store.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	if entries == nil {
		entries = []Entry{}
	}
	return entries, nil
}

// Update replaces title, content, mood and tags. Ownership and creation
// time are kept.
func (s *Service) Update(ctx context.Context, id string, d Draft) (*Entry, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	return s.store.Replace(ctx, id, func(e *Entry) {
		e.Title = d.Title
		e.Content = d.Content
		e.Mood = d.Mood
		e.Tags = normalizeTags(d.Tags)
		e.UpdatedAt = s.now().UTC()
	})
}

// Delete removes an entry.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	return s.store.Delete(ctx, id)
}

// Insights aggregates all entries, or one user's.
func (s *Service) Insights(ctx context.Context, userID string) (Insights, error) {
	entries, err := s.store.List(ctx, userID)
	if err != nil {
		return Insights{}, err
	}
	return ComputeInsights(entries, s.loc), nil
}
