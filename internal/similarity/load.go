// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package similarity

import (
	"bufio"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
)

// ErrMissing is returned by ReadJSON when the artifact file does not exist.
// Callers treat it as "feature unavailable" rather than a startup failure.
var ErrMissing = errors.New("similarity artifact not found")

// Matrix is the on-disk layout shared by the music and book artifacts.
// Keys may be empty when the owner derives them elsewhere (the book table).
type Matrix struct {
	Keys       []string    `json:"keys,omitempty"`
	Similarity [][]float64 `json:"similarity"`
}

// ReadJSON decodes the JSON artifact at path into v. Files ending in .gz
// are decompressed transparently.
func ReadJSON(path string, v interface{}) error {
	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrMissing, path)
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return fmt.Errorf("gzip %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}

	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// LoadFile reads a Matrix artifact with embedded keys and builds an Index.
func LoadFile(path string) (*Index, error) {
	var m Matrix
	if err := ReadJSON(path, &m); err != nil {
		return nil, err
	}
	return New(m.Keys, m.Similarity)
}
