// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package config

import (
	"fmt"
	"time"
)

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateSecurity,
		c.validateStorage,
		c.validateMusic,
		c.validateSpotify,
		c.validateBooks,
		c.validateChat,
		c.validateTherapy,
		c.validateLogging,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.ChatRateLimitReqs < minRateLimitRequests || c.Security.ChatRateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("CHAT_RATE_LIMIT_REQS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

func (c *Config) validateStorage() error {
	if !c.Storage.InMemory && c.Storage.Path == "" {
		return fmt.Errorf("BADGER_PATH is required when BADGER_IN_MEMORY=false")
	}
	return nil
}

func (c *Config) validateMusic() error {
	if c.Music.RecommendCount < 1 {
		return fmt.Errorf("MUSIC_RECOMMEND_COUNT must be at least 1")
	}
	return nil
}

func (c *Config) validateSpotify() error {
	if !c.Spotify.Enabled {
		return nil
	}
	if c.Spotify.ClientID == "" || c.Spotify.ClientSecret == "" {
		return fmt.Errorf("SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET are required when SPOTIFY_ENABLED=true")
	}
	if c.Spotify.RequestsPerSecond <= 0 {
		return fmt.Errorf("SPOTIFY_REQUESTS_PER_SECOND must be positive")
	}
	return nil
}

func (c *Config) validateBooks() error {
	if c.Books.DBPath == "" {
		return fmt.Errorf("BOOKS_DB_PATH is required")
	}
	if c.Books.DefaultLimit < 1 || c.Books.DefaultLimit > c.Books.MaxLimit {
		return fmt.Errorf("BOOKS_DEFAULT_LIMIT must be between 1 and BOOKS_MAX_LIMIT (%d)", c.Books.MaxLimit)
	}
	return nil
}

var validLLMProviders = map[string]bool{
	"groq":   true,
	"openai": true,
	"ollama": true,
}

var validSessionStores = map[string]bool{
	"badger": true,
	"memory": true,
}

func (c *Config) validateChat() error {
	if !validLLMProviders[c.Chat.Provider] {
		return fmt.Errorf("LLM_PROVIDER must be one of: groq, openai, ollama")
	}
	if !validSessionStores[c.Chat.SessionStore] {
		return fmt.Errorf("CHAT_SESSION_STORE must be one of: badger, memory")
	}
	if c.Chat.MaxToolCalls < 0 {
		return fmt.Errorf("CHAT_MAX_TOOL_CALLS must not be negative")
	}
	if c.Chat.Temperature < 0 || c.Chat.Temperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2")
	}
	if c.Chat.SessionTTL < 0 {
		return fmt.Errorf("CHAT_SESSION_TTL must not be negative")
	}
	if len(c.Chat.CrisisKeywords) == 0 {
		return fmt.Errorf("CRISIS_KEYWORDS must contain at least one keyword")
	}
	return nil
}

func (c *Config) validateTherapy() error {
	t := c.Therapy
	if t.AvailabilityDays < 1 || t.AvailabilityDays > 90 {
		return fmt.Errorf("THERAPY_AVAILABILITY_DAYS must be between 1 and 90")
	}
	if t.WorkdayStart < 0 || t.WorkdayEnd > 24 || t.WorkdayStart >= t.WorkdayEnd {
		return fmt.Errorf("THERAPY_WORKDAY_START must be before THERAPY_WORKDAY_END within 0-24")
	}
	if t.SlotDuration < time.Minute {
		return fmt.Errorf("THERAPY_SLOT_DURATION must be at least 1m")
	}
	if t.Timezone != "" {
		if _, err := time.LoadLocation(t.Timezone); err != nil {
			return fmt.Errorf("THERAPY_TIMEZONE %q is not a valid IANA zone: %w", t.Timezone, err)
		}
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
