// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

// Package music recommends songs from a precomputed similarity matrix and
// decorates each result with album art from a catalog (Spotify).
//
// A catalog failure never fails a recommendation: the song is returned
// with the placeholder image and a null spotify_uri.
package music

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/calmverse/internal/logging"
	"github.com/tomtom215/calmverse/internal/metrics"
	"github.com/tomtom215/calmverse/internal/similarity"
)

var (
	// ErrUnavailable means the song dataset was not loaded.
	ErrUnavailable = errors.New("song database not loaded")

	// ErrSongNotFound means the requested song is not in the dataset.
	ErrSongNotFound = errors.New("song not found")
)

// DefaultPlaceholderImage is shown when the catalog has no album art.
const DefaultPlaceholderImage = "https://i.postimg.cc/0QNxYz4V/social.png"

// Song is a resolved recommendation.
type Song struct {
	Name          string  `json:"name"`
	Artist        string  `json:"artist"`
	AlbumCoverURL string  `json:"album_cover_url"`
	SpotifyURI    *string `json:"spotify_uri"`
}

// Recommendation is the response for one input song.
type Recommendation struct {
	InputSong       string `json:"input_song"`
	Recommendations []Song `json:"recommendations"`
}

// Service answers music queries. dataset may be nil.
type Service struct {
	dataset     *Dataset
	catalog     Catalog
	count       int
	placeholder string
}

// NewService creates a music service. A nil catalog disables lookups.
func NewService(dataset *Dataset, catalog Catalog, count int, placeholder string) *Service {
	if catalog == nil {
		catalog = NoCatalog{}
	}
	if count <= 0 {
		count = 5
	}
	if placeholder == "" {
		placeholder = DefaultPlaceholderImage
	}
	return &Service{dataset: dataset, catalog: catalog, count: count, placeholder: placeholder}
}

// Ready reports whether the dataset is loaded.
func (s *Service) Ready() bool {
	return s.dataset != nil
}

// Songs lists every song name.
func (s *Service) Songs() ([]string, error) {
	if s.dataset == nil {
		return nil, ErrUnavailable
	}
	return s.dataset.Names(), nil
}

// Recommend returns the most similar songs to song, excluding itself.
func (s *Service) Recommend(ctx context.Context, song string) (*Recommendation, error) {
	if s.dataset == nil {
		metrics.RecommendationRequests.WithLabelValues("music", "unavailable").Inc()
		return nil, ErrUnavailable
	}

	neighbors, err := s.dataset.index.TopK(song, s.count)
	if errors.Is(err, similarity.ErrNotFound) {
		metrics.RecommendationRequests.WithLabelValues("music", "not_found").Inc()
		return nil, fmt.Errorf("%w: %q", ErrSongNotFound, song)
	}
	if err != nil {
		return nil, err
	}

	songs := make([]Song, len(neighbors))
	g, gctx := errgroup.WithContext(ctx)
	for i, n := range neighbors {
		track := s.dataset.tracks[n.Index]
		g.Go(func() error {
			songs[i] = s.resolve(gctx, track.Name, track.Artist)
			return nil
		})
	}
	_ = g.Wait() // resolve never fails

	metrics.RecommendationRequests.WithLabelValues("music", "success").Inc()
	return &Recommendation{InputSong: song, Recommendations: songs}, nil
}

// Details resolves one song by name and artist. It does not require the
// song to be in the dataset.
func (s *Service) Details(ctx context.Context, name, artist string) Song {
	return s.resolve(ctx, name, artist)
}

func (s *Service) resolve(ctx context.Context, name, artist string) Song {
	song := Song{Name: name, Artist: artist, AlbumCoverURL: s.placeholder}

	d, err := s.catalog.Lookup(ctx, name, artist)
	if err != nil {
		metrics.CatalogLookups.WithLabelValues("spotify", "fallback").Inc()
		if !errors.Is(err, ErrTrackNotFound) {
			logging.Ctx(ctx).Warn().Err(err).Str("song", name).Msg("Catalog lookup failed, using placeholder")
		}
		return song
	}

	metrics.CatalogLookups.WithLabelValues("spotify", "hit").Inc()
	if d.AlbumCoverURL != "" {
		song.AlbumCoverURL = d.AlbumCoverURL
	}
	song.SpotifyURI = d.SpotifyURI
	return song
}
