// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists config file locations in priority order.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/calmverse/config.yaml",
	"/etc/calmverse/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultCrisisKeywords trigger the safety response before any LLM call.
var DefaultCrisisKeywords = []string{
	"suicide",
	"kill myself",
	"end my life",
	"want to die",
	"harm myself",
	"hurt myself",
	"emergency",
	"crisis",
	"urgent help",
	"immediate danger",
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8000,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			ChatRateLimitReqs: 20,
		},
		Storage: StorageConfig{
			Path:       "/data/calmverse",
			GCInterval: 10 * time.Minute,
		},
		Music: MusicConfig{
			DatasetPath:      "/data/music/songs.json",
			RecommendCount:   5,
			PlaceholderImage: "https://i.postimg.cc/0QNxYz4V/social.png",
		},
		Spotify: SpotifyConfig{
			APIURL:            "https://api.spotify.com/v1",
			AuthURL:           "https://accounts.spotify.com/api/token",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 5,
		},
		Books: BooksConfig{
			DBPath:         "/data/books.db",
			SimilarityPath: "/data/books_similarity.json",
			DefaultLimit:   8,
			MaxLimit:       50,
			SeedSampleData: true,
		},
		Chat: ChatConfig{
			Provider:       "groq",
			BaseURL:        "https://api.groq.com/openai/v1",
			Model:          "llama3-70b-8192",
			Temperature:    0.3,
			MaxToolCalls:   3,
			Timeout:        60 * time.Second,
			SessionStore:   "badger",
			SessionTTL:     0,
			MaxHistory:     20,
			CrisisKeywords: append([]string(nil), DefaultCrisisKeywords...),
		},
		Therapy: TherapyConfig{
			SeedOnStartup:    true,
			AvailabilityDays: 14,
			WorkdayStart:     9,
			WorkdayEnd:       17,
			SlotDuration:     time.Hour,
			Timezone:         "UTC",
		},
	}
}

// LoadWithKoanf loads configuration in three layers: struct defaults, an
// optional YAML file, then environment variables. The result is validated
// before it is returned.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths are split on commas when they arrive as env strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"chat.crisis_keywords",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":        "server.port",
	"http_host":        "server.host",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Security
	"cors_origins":         "security.cors_origins",
	"rate_limit_requests":  "security.rate_limit_reqs",
	"rate_limit_window":    "security.rate_limit_window",
	"disable_rate_limit":   "security.rate_limit_disabled",
	"chat_rate_limit_reqs": "security.chat_rate_limit_reqs",

	// Storage
	"badger_path":        "storage.path",
	"badger_in_memory":   "storage.in_memory",
	"badger_gc_interval": "storage.gc_interval",

	// Music
	"music_dataset_path":      "music.dataset_path",
	"music_recommend_count":   "music.recommend_count",
	"music_placeholder_image": "music.placeholder_image",

	// Spotify
	"spotify_enabled":             "spotify.enabled",
	"spotify_client_id":           "spotify.client_id",
	"spotify_client_secret":       "spotify.client_secret",
	"spotify_api_url":             "spotify.api_url",
	"spotify_auth_url":            "spotify.auth_url",
	"spotify_timeout":             "spotify.timeout",
	"spotify_requests_per_second": "spotify.requests_per_second",

	// Books
	"books_db_path":          "books.db_path",
	"books_similarity_path":  "books.similarity_path",
	"books_default_limit":    "books.default_limit",
	"books_max_limit":        "books.max_limit",
	"books_seed_sample_data": "books.seed_sample_data",

	// Chat
	"llm_provider":        "chat.provider",
	"llm_base_url":        "chat.base_url",
	"groq_api_key":        "chat.api_key",
	"llm_api_key":         "chat.api_key",
	"llm_model":           "chat.model",
	"llm_temperature":     "chat.temperature",
	"chat_max_tool_calls": "chat.max_tool_calls",
	"llm_timeout":         "chat.timeout",
	"chat_session_store":  "chat.session_store",
	"chat_session_ttl":    "chat.session_ttl",
	"chat_max_history":    "chat.max_history",
	"crisis_keywords":     "chat.crisis_keywords",

	// Therapy
	"therapy_seed_on_startup":   "therapy.seed_on_startup",
	"therapy_seed_file":         "therapy.seed_file",
	"therapy_availability_days": "therapy.availability_days",
	"therapy_workday_start":     "therapy.workday_start",
	"therapy_workday_end":       "therapy.workday_end",
	"therapy_slot_duration":     "therapy.slot_duration",
	"therapy_timezone":          "therapy.timezone",
}

// envTransformFunc maps an environment variable to its koanf path. Unmapped
// variables return "" and are skipped by the env provider.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
