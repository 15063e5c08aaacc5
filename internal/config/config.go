// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

// Package config loads CalmVerse configuration from built-in defaults, an
// optional YAML file and environment variables, in increasing priority.
//
// Every setting has an environment variable; the mapping lives in
// envTransformFunc. Unmapped variables are ignored so the process
// environment never leaks into the configuration.
package config

import (
	"net"
	"strconv"
	"time"
	_ "time/tzdata" // therapy timezones must resolve in minimal containers
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
	Security SecurityConfig `koanf:"security"`
	Storage  StorageConfig  `koanf:"storage"`
	Music    MusicConfig    `koanf:"music"`
	Spotify  SpotifyConfig  `koanf:"spotify"`
	Books    BooksConfig    `koanf:"books"`
	Chat     ChatConfig     `koanf:"chat"`
	Therapy  TherapyConfig  `koanf:"therapy"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// SecurityConfig holds CORS and rate limit settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	// ChatRateLimitReqs applies to the LLM-backed chat routes only.
	ChatRateLimitReqs int `koanf:"chat_rate_limit_reqs"`
}

// StorageConfig configures the embedded BadgerDB document store shared by
// therapy, journal and chat sessions.
type StorageConfig struct {
	Path       string        `koanf:"path"`
	InMemory   bool          `koanf:"in_memory"`
	GCInterval time.Duration `koanf:"gc_interval"`
}

// MusicConfig configures the song similarity dataset.
type MusicConfig struct {
	DatasetPath      string `koanf:"dataset_path"`
	RecommendCount   int    `koanf:"recommend_count"`
	PlaceholderImage string `koanf:"placeholder_image"`
}

// SpotifyConfig configures the album-art catalog lookup.
type SpotifyConfig struct {
	Enabled           bool          `koanf:"enabled"`
	ClientID          string        `koanf:"client_id"`
	ClientSecret      string        `koanf:"client_secret"`
	APIURL            string        `koanf:"api_url"`
	AuthURL           string        `koanf:"auth_url"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
}

// BooksConfig configures the SQLite book table and its similarity index.
type BooksConfig struct {
	DBPath         string `koanf:"db_path"`
	SimilarityPath string `koanf:"similarity_path"`
	DefaultLimit   int    `koanf:"default_limit"`
	MaxLimit       int    `koanf:"max_limit"`
	SeedSampleData bool   `koanf:"seed_sample_data"`
}

// ChatConfig configures the mental-health assistant.
type ChatConfig struct {
	// Provider is "groq" (any OpenAI-compatible endpoint) or "ollama".
	Provider       string        `koanf:"provider"`
	BaseURL        string        `koanf:"base_url"`
	APIKey         string        `koanf:"api_key"`
	Model          string        `koanf:"model"`
	Temperature    float64       `koanf:"temperature"`
	MaxToolCalls   int           `koanf:"max_tool_calls"`
	Timeout        time.Duration `koanf:"timeout"`
	SessionStore   string        `koanf:"session_store"`
	SessionTTL     time.Duration `koanf:"session_ttl"`
	MaxHistory     int           `koanf:"max_history"`
	CrisisKeywords []string      `koanf:"crisis_keywords"`
}

// TherapyConfig configures the therapist directory and slot generation.
type TherapyConfig struct {
	SeedOnStartup    bool          `koanf:"seed_on_startup"`
	SeedFile         string        `koanf:"seed_file"`
	AvailabilityDays int           `koanf:"availability_days"`
	WorkdayStart     int           `koanf:"workday_start"`
	WorkdayEnd       int           `koanf:"workday_end"`
	SlotDuration     time.Duration `koanf:"slot_duration"`
	Timezone         string        `koanf:"timezone"`
}

// Load is the entry point used by main.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// IsProduction reports whether ENVIRONMENT=production.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// ChatConfigured reports whether an LLM provider can be reached. Ollama
// needs no key; every other provider does.
func (c *Config) ChatConfigured() bool {
	if c.Chat.Provider == "ollama" {
		return c.Chat.BaseURL != ""
	}
	return c.Chat.APIKey != ""
}

// Location resolves the therapy timezone, falling back to UTC.
func (t TherapyConfig) Location() *time.Location {
	if t.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(t.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
