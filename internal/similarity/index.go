// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

// Package similarity serves top-K neighbour lookups over a precomputed,
// square item-item similarity matrix. Row i of the matrix belongs to Keys[i].
//
// An Index is built once at startup and never mutated, so it is safe for
// concurrent readers without locking.
package similarity

import (
	"errors"
	"fmt"
	"slices"
	"sort"
)

var (
	// ErrNotFound is returned when the key has no row in the index.
	ErrNotFound = errors.New("item not found in similarity index")

	// ErrMalformed is returned when the matrix is not square or does not
	// match the key count.
	ErrMalformed = errors.New("malformed similarity matrix")
)

// Neighbor is one ranked result of TopK.
type Neighbor struct {
	Index int
	Key   string
	Score float64
}

// Index is an immutable similarity matrix with a key lookup table.
type Index struct {
	keys     []string
	rows     [][]float64
	position map[string]int
}

// New validates the matrix shape and builds the key lookup. Duplicate keys
// resolve to their first row.
func New(keys []string, rows [][]float64) (*Index, error) {
	if len(rows) != len(keys) {
		return nil, fmt.Errorf("%w: %d keys but %d rows", ErrMalformed, len(keys), len(rows))
	}
	for i, row := range rows {
		if len(row) != len(keys) {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrMalformed, i, len(row), len(keys))
		}
	}

	position := make(map[string]int, len(keys))
	for i, k := range keys {
		if _, dup := position[k]; !dup {
			position[k] = i
		}
	}
	return &Index{keys: keys, rows: rows, position: position}, nil
}

// Len returns the number of items.
func (ix *Index) Len() int {
	return len(ix.keys)
}

// Keys returns the item keys in row order. The slice must not be modified.
func (ix *Index) Keys() []string {
	return ix.keys
}

// Position returns the row of key.
func (ix *Index) Position(key string) (int, bool) {
	i, ok := ix.position[key]
	return i, ok
}

// TopK returns up to k neighbours of key ranked by descending similarity.
// Ties keep row order. The item itself is never returned, even when another
// row ties with its self similarity.
func (ix *Index) TopK(key string, k int) ([]Neighbor, error) {
	row, ok := ix.position[key]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, key)
	}
	return ix.TopKByPosition(row, k), nil
}

// TopKByPosition is TopK for a known row. An out of range row yields nil.
func (ix *Index) TopKByPosition(row, k int) []Neighbor {
	if k <= 0 || row < 0 || row >= len(ix.rows) {
		return []Neighbor{}
	}

	scores := ix.rows[row]
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	order = slices.DeleteFunc(order, func(idx int) bool { return idx == row })
	if len(order) > k {
		order = order[:k]
	}

	out := make([]Neighbor, len(order))
	for i, idx := range order {
		out[i] = Neighbor{Index: idx, Key: ix.keys[idx], Score: scores[idx]}
	}
	return out
}
