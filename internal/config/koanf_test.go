// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()

	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Music.RecommendCount != 5 {
		t.Errorf("Music.RecommendCount = %d, want 5", cfg.Music.RecommendCount)
	}
	if cfg.Books.DefaultLimit != 8 {
		t.Errorf("Books.DefaultLimit = %d, want 8", cfg.Books.DefaultLimit)
	}
	if cfg.Chat.Model != "llama3-70b-8192" {
		t.Errorf("Chat.Model = %q, want llama3-70b-8192", cfg.Chat.Model)
	}
	if cfg.Chat.MaxToolCalls != 3 {
		t.Errorf("Chat.MaxToolCalls = %d, want 3", cfg.Chat.MaxToolCalls)
	}
	if len(cfg.Chat.CrisisKeywords) != len(DefaultCrisisKeywords) {
		t.Errorf("Chat.CrisisKeywords has %d entries, want %d", len(cfg.Chat.CrisisKeywords), len(DefaultCrisisKeywords))
	}
	if cfg.Therapy.AvailabilityDays != 14 || cfg.Therapy.WorkdayStart != 9 || cfg.Therapy.WorkdayEnd != 17 {
		t.Errorf("Therapy window = %d days %d-%d, want 14 days 9-17",
			cfg.Therapy.AvailabilityDays, cfg.Therapy.WorkdayStart, cfg.Therapy.WorkdayEnd)
	}
	if cfg.Therapy.SlotDuration != time.Hour {
		t.Errorf("Therapy.SlotDuration = %v, want 1h", cfg.Therapy.SlotDuration)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate, got %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"HTTP_PORT", "server.port"},
		{"LOG_LEVEL", "logging.level"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"BADGER_IN_MEMORY", "storage.in_memory"},
		{"SPOTIFY_CLIENT_ID", "spotify.client_id"},
		{"BOOKS_DB_PATH", "books.db_path"},
		{"GROQ_API_KEY", "chat.api_key"},
		{"LLM_PROVIDER", "chat.provider"},
		{"CHAT_SESSION_TTL", "chat.session_ttl"},
		{"THERAPY_TIMEZONE", "therapy.timezone"},
		{"PATH", ""},
		{"HOME", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := envTransformFunc(tt.input); got != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func chdirTemp(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	origDir, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("Failed to change to temp directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(origDir); err != nil {
			t.Errorf("Failed to restore working directory: %v", err)
		}
	})
	return tmpDir
}

func TestFindConfigFile(t *testing.T) {
	tmpDir := chdirTemp(t)
	t.Setenv(ConfigPathEnvVar, "")

	if got := findConfigFile(); got != "" {
		t.Errorf("findConfigFile() = %q, want empty string", got)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "config.yml"), []byte("server: {}"), 0o600); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
	if got := findConfigFile(); got != "config.yml" {
		t.Errorf("findConfigFile() = %q, want config.yml", got)
	}

	custom := filepath.Join(tmpDir, "custom.yaml")
	if err := os.WriteFile(custom, []byte("server: {}"), 0o600); err != nil {
		t.Fatalf("Failed to create config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, custom)
	if got := findConfigFile(); got != custom {
		t.Errorf("findConfigFile() = %q, want %q", got, custom)
	}
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	chdirTemp(t)
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CRISIS_KEYWORDS", "help me,panic")
	t.Setenv("CHAT_SESSION_TTL", "2h")
	t.Setenv("BADGER_IN_MEMORY", "true")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("Security.CORSOrigins = %v, want two trimmed origins", cfg.Security.CORSOrigins)
	}
	if strings.Join(cfg.Chat.CrisisKeywords, "|") != "help me|panic" {
		t.Errorf("Chat.CrisisKeywords = %v", cfg.Chat.CrisisKeywords)
	}
	if cfg.Chat.SessionTTL != 2*time.Hour {
		t.Errorf("Chat.SessionTTL = %v, want 2h", cfg.Chat.SessionTTL)
	}
	if !cfg.Storage.InMemory {
		t.Error("Storage.InMemory should be true")
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 (default)", cfg.Server.Host)
	}
}

func TestLoadWithKoanfConfigFile(t *testing.T) {
	tmpDir := chdirTemp(t)

	content := `
server:
  port: 8888
  host: "127.0.0.1"
therapy:
  availability_days: 7
  timezone: "America/New_York"
logging:
  level: "warn"
`
	path := filepath.Join(tmpDir, "calmverse.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 8888 || cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server = %s, want 127.0.0.1:8888", cfg.Server.Addr())
	}
	if cfg.Therapy.AvailabilityDays != 7 {
		t.Errorf("Therapy.AvailabilityDays = %d, want 7", cfg.Therapy.AvailabilityDays)
	}
	if cfg.Therapy.Location().String() != "America/New_York" {
		t.Errorf("Therapy.Location() = %v", cfg.Therapy.Location())
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want env override error", cfg.Logging.Level)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"bad rate limit", func(c *Config) { c.Security.RateLimitReqs = 0 }, "RATE_LIMIT_REQUESTS"},
		{"rate limit disabled skips bounds", func(c *Config) {
			c.Security.RateLimitDisabled = true
			c.Security.RateLimitReqs = 0
		}, ""},
		{"spotify without credentials", func(c *Config) { c.Spotify.Enabled = true }, "SPOTIFY_CLIENT_ID"},
		{"unknown provider", func(c *Config) { c.Chat.Provider = "acme" }, "LLM_PROVIDER"},
		{"unknown session store", func(c *Config) { c.Chat.SessionStore = "redis" }, "CHAT_SESSION_STORE"},
		{"no crisis keywords", func(c *Config) { c.Chat.CrisisKeywords = nil }, "CRISIS_KEYWORDS"},
		{"inverted workday", func(c *Config) { c.Therapy.WorkdayStart = 18 }, "THERAPY_WORKDAY_START"},
		{"bad timezone", func(c *Config) { c.Therapy.Timezone = "Mars/Olympus" }, "THERAPY_TIMEZONE"},
		{"books limit above max", func(c *Config) { c.Books.DefaultLimit = 500 }, "BOOKS_DEFAULT_LIMIT"},
		{"in-memory storage needs no path", func(c *Config) {
			c.Storage.InMemory = true
			c.Storage.Path = ""
		}, ""},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }, "LOG_LEVEL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestChatConfigured(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if cfg.ChatConfigured() {
		t.Error("groq without API key should not be configured")
	}
	cfg.Chat.APIKey = "gsk_test"
	if !cfg.ChatConfigured() {
		t.Error("groq with API key should be configured")
	}
	cfg.Chat.Provider = "ollama"
	cfg.Chat.APIKey = ""
	cfg.Chat.BaseURL = "http://localhost:11434"
	if !cfg.ChatConfigured() {
		t.Error("ollama with base URL should be configured")
	}
}
