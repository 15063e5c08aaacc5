// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package books

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/tomtom215/calmverse/internal/similarity"
)

func newTestStore(t *testing.T, seed bool) *Store {
	t.Helper()
	s, err := OpenStore(context.Background(), filepath.Join(t.TempDir(), "db", "books.db"), seed)
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenStore_SeedsOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "books.db")

	s, err := OpenStore(ctx, path, true)
	if err != nil {
		t.Fatalf("OpenStore() error = %v", err)
	}
	list, err := s.List(ctx)
	if err != nil || len(list) != 8 {
		t.Fatalf("List() = %d books, %v; want 8", len(list), err)
	}
	if list[0].ID != 1 || list[0].Title != "The Alchemist" || list[7].Title != "The Body Keeps the Score" {
		t.Errorf("List() order = %+v", list)
	}
	if err := s.Upsert(ctx, &Book{ID: 9, Title: "Extra"}); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	// Reopening keeps the existing table untouched.
	s2, err := OpenStore(ctx, path, true)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer s2.Close()
	if list, _ := s2.List(ctx); len(list) != 9 {
		t.Errorf("after reopen List() = %d books, want 9", len(list))
	}
	if err := s2.Ping(ctx); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestStore_Queries(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t, false)

	if list, err := s.List(ctx); err != nil || len(list) != 0 || list == nil {
		t.Fatalf("empty List() = %#v, %v; want empty non-nil", list, err)
	}

	b := &Book{Title: "Quiet", Author: "Susan Cain"}
	if err := s.Upsert(ctx, b); err != nil {
		t.Fatal(err)
	}
	if b.ID == 0 {
		t.Fatal("Upsert should assign an id")
	}

	got, err := s.FindByTitle(ctx, "Quiet")
	if err != nil || got.ID != b.ID || got.Author != "Susan Cain" || got.ImageURL != "" {
		t.Errorf("FindByTitle() = %+v, %v", got, err)
	}
	if _, err := s.FindByTitle(ctx, "quiet"); !errors.Is(err, ErrBookNotFound) {
		t.Errorf("title match must be exact, got %v", err)
	}

	byID, err := s.GetByIDs(ctx, []int64{b.ID, 999})
	if err != nil || len(byID) != 1 || byID[b.ID].Title != "Quiet" {
		t.Errorf("GetByIDs() = %v, %v", byID, err)
	}
	if empty, err := s.GetByIDs(ctx, nil); err != nil || len(empty) != 0 {
		t.Errorf("GetByIDs(nil) = %v, %v", empty, err)
	}
}

// matrixFor builds a similarity index over the eight sample books where
// book 1 is closest to 5, then 6, then 7.
func matrixFor(t *testing.T) *similarity.Index {
	t.Helper()
	keys := []string{"1", "2", "3", "4", "5", "6", "7", "8"}
	rows := make([][]float64, 8)
	for i := range rows {
		rows[i] = make([]float64, 8)
		rows[i][i] = 1
	}
	rows[0][4], rows[0][5], rows[0][6] = 0.9, 0.8, 0.7
	ix, err := similarity.New(keys, rows)
	if err != nil {
		t.Fatal(err)
	}
	return ix
}

func TestRecommend(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t, true)
	svc := NewService(s, matrixFor(t), 8, 50)

	recs, err := svc.Recommend(ctx, "The Alchemist", 3)
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	want := []string{"Mindfulness in Plain English", "The Power of Now", "Feeling Good"}
	if len(recs) != len(want) {
		t.Fatalf("got %d recommendations, want %d", len(recs), len(want))
	}
	for i, w := range want {
		if recs[i].Title != w {
			t.Errorf("recs[%d] = %q, want %q", i, recs[i].Title, w)
		}
	}
	if recs[0].ImageURL != "https://via.placeholder.com/300x450?text=Mindfulness+in+Plain+English" {
		t.Errorf("image = %q", recs[0].ImageURL)
	}

	if recs, _ := svc.Recommend(ctx, "The Alchemist", 0); len(recs) != 7 {
		t.Errorf("default limit returned %d, want 7 (all but self)", len(recs))
	}

	if _, err := svc.Recommend(ctx, "Unknown Title", 3); !errors.Is(err, ErrBookNotFound) {
		t.Errorf("unknown title error = %v", err)
	}
}

func TestRecommend_GeneratedImage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t, false)
	for _, b := range []*Book{{ID: 1, Title: "Calm Mind"}, {ID: 2, Title: "Deep Rest"}} {
		if err := s.Upsert(ctx, b); err != nil {
			t.Fatal(err)
		}
	}
	ix, _ := similarity.New([]string{"1", "2"}, [][]float64{{1, 0.5}, {0.5, 1}})
	svc := NewService(s, ix, 8, 50)

	recs, err := svc.Recommend(ctx, "Calm Mind", 5)
	if err != nil || len(recs) != 1 {
		t.Fatalf("Recommend() = %v, %v", recs, err)
	}
	if recs[0].ImageURL != "https://via.placeholder.com/300x450?text=Deep+Rest" {
		t.Errorf("image = %q", recs[0].ImageURL)
	}
}

func TestRecommend_Fallbacks(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t, true)

	noIndex := NewService(s, nil, 8, 50)
	if noIndex.HasIndex() {
		t.Error("HasIndex() should be false")
	}
	recs, err := noIndex.Recommend(ctx, "Atomic Habits", 0)
	if err != nil || len(recs) != 8 {
		t.Fatalf("fallback = %d, %v; want 8", len(recs), err)
	}
	if recs[0].Title != "The Four Agreements" || recs[0].ImageURL != placeholderCover {
		t.Errorf("fallback[0] = %+v", recs[0])
	}
	if recs, _ := noIndex.Recommend(ctx, "Atomic Habits", 2); len(recs) != 2 {
		t.Errorf("fallback respects limit, got %d", len(recs))
	}

	// Book 8 is not covered by a two-row matrix.
	partial, _ := similarity.New([]string{"1", "2"}, [][]float64{{1, 0}, {0, 1}})
	svc := NewService(s, partial, 8, 50)
	if recs, err := svc.Recommend(ctx, "The Body Keeps the Score", 3); err != nil || recs[0].Title != "The Four Agreements" {
		t.Errorf("unindexed book = %v, %v; want fallback", recs, err)
	}
}

func TestLoadIndex(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t, true)
	dir := t.TempDir()

	ix, err := LoadIndex(ctx, s, filepath.Join(dir, "missing.json"))
	if err != nil || ix != nil {
		t.Errorf("missing artifact = %v, %v; want nil, nil", ix, err)
	}

	rows := `[[1,0,0,0,0,0,0,0],[0,1,0,0,0,0,0,0],[0,0,1,0,0,0,0,0],[0,0,0,1,0,0,0,0],[0,0,0,0,1,0,0,0],[0,0,0,0,0,1,0,0],[0,0,0,0,0,0,1,0],[0,0,0,0,0,0,0,1]]`
	implicit := filepath.Join(dir, "implicit.json")
	if err := os.WriteFile(implicit, []byte(`{"similarity":`+rows+`}`), 0o600); err != nil {
		t.Fatal(err)
	}
	ix, err = LoadIndex(ctx, s, implicit)
	if err != nil || ix.Len() != 8 || ix.Keys()[7] != "8" {
		t.Fatalf("implicit keys = %v, %v", ix, err)
	}

	mismatched := filepath.Join(dir, "bad.json")
	_ = os.WriteFile(mismatched, []byte(`{"similarity":[[1,0],[0,1]]}`), 0o600)
	if _, err := LoadIndex(ctx, s, mismatched); !errors.Is(err, similarity.ErrMalformed) {
		t.Errorf("mismatched matrix error = %v", err)
	}
}
