// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package music

import (
	"context"
	"errors"
)

// ErrTrackNotFound is returned by a Catalog that has no match.
var ErrTrackNotFound = errors.New("track not found in catalog")

// Details is the display metadata a catalog resolves for a song.
type Details struct {
	AlbumCoverURL string
	SpotifyURI    *string
}

// Catalog resolves album art and a playable URI for a song.
type Catalog interface {
	Lookup(ctx context.Context, name, artist string) (Details, error)
}

// NoCatalog is used when no catalog is configured; every lookup misses.
type NoCatalog struct{}

// Lookup implements Catalog.
func (NoCatalog) Lookup(context.Context, string, string) (Details, error) {
	return Details{}, ErrTrackNotFound
}
