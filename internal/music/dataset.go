// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package music

import (
	"fmt"

	"github.com/tomtom215/calmverse/internal/similarity"
)

// Track is one row of the song table.
type Track struct {
	Name   string `json:"name"`
	Artist string `json:"artist"`
}

// datasetFile is the on-disk artifact: the song table and its similarity
// matrix, rows in the same order.
type datasetFile struct {
	Songs      []Track     `json:"songs"`
	Similarity [][]float64 `json:"similarity"`
}

// Dataset is the loaded song table with its similarity index. Song names
// are the index keys; a duplicated name resolves to its first row.
type Dataset struct {
	tracks []Track
	index  *similarity.Index
}

// NewDataset validates that the matrix matches the song table.
func NewDataset(tracks []Track, matrix [][]float64) (*Dataset, error) {
	keys := make([]string, len(tracks))
	for i, t := range tracks {
		keys[i] = t.Name
	}
	ix, err := similarity.New(keys, matrix)
	if err != nil {
		return nil, err
	}
	return &Dataset{tracks: tracks, index: ix}, nil
}

// LoadDataset reads a JSON (optionally .gz) song artifact. A missing file
// returns an error wrapping similarity.ErrMissing.
func LoadDataset(path string) (*Dataset, error) {
	var f datasetFile
	if err := similarity.ReadJSON(path, &f); err != nil {
		return nil, err
	}
	ds, err := NewDataset(f.Songs, f.Similarity)
	if err != nil {
		return nil, fmt.Errorf("song dataset %s: %w", path, err)
	}
	return ds, nil
}

// Names returns every song name in table order.
func (d *Dataset) Names() []string {
	return d.index.Keys()
}

// Len returns the number of songs.
func (d *Dataset) Len() int {
	return len(d.tracks)
}
