// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

// Package llm provides chat-completion clients for the mental-health
// assistant. Two wire protocols are supported: the OpenAI-compatible
// /chat/completions API (Groq, OpenAI) and Ollama's native /api/chat.
//
// Both clients speak the same provider-neutral types so the conversation
// loop in package chat never sees wire formats. Tool calling is modelled
// on the OpenAI shape: the assistant returns ToolCalls, the caller answers
// each with a RoleTool message carrying the matching ToolCallID.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/calmverse/internal/breaker"
	"github.com/tomtom215/calmverse/internal/config"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

var (
	// ErrNotConfigured means no provider credentials or endpoint are set.
	ErrNotConfigured = errors.New("llm provider not configured")

	// ErrUnavailable means the provider is temporarily rejected by the
	// circuit breaker.
	ErrUnavailable = errors.New("llm provider unavailable")

	// ErrEmptyResponse is returned when the provider answers without a message.
	ErrEmptyResponse = errors.New("llm returned no choices")
)

// Message is one turn of a conversation.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Name       string     `json:"name,omitempty"`
}

// ToolCall is a function invocation requested by the model. Arguments is
// the raw JSON object the model produced.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Tool describes a function the model may call.
type Tool struct {
	Name        string
	Description string
	// Parameters is a JSON Schema object.
	Parameters map[string]interface{}
}

// Request is a single completion call.
type Request struct {
	Messages    []Message
	Tools       []Tool
	Temperature float64
}

// Response is the assistant's reply.
type Response struct {
	Message      Message
	FinishReason string
}

// Completer produces one assistant message for a conversation.
type Completer interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	// Provider names the backend for logs and metrics.
	Provider() string
}

// APIError is a non-2xx answer from the provider.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error: %d - %s", e.Provider, e.StatusCode, e.Body)
}

// New builds the completer selected by cfg.Provider, guarded by a circuit
// breaker. It returns ErrNotConfigured when the provider cannot be reached.
func New(cfg config.ChatConfig) (Completer, error) {
	httpClient := &http.Client{Timeout: cfg.Timeout}

	var c Completer
	switch cfg.Provider {
	case "ollama":
		if cfg.BaseURL == "" {
			return nil, ErrNotConfigured
		}
		c = NewOllamaClient(cfg.BaseURL, cfg.Model, httpClient)
	case "groq", "openai":
		if cfg.APIKey == "" {
			return nil, ErrNotConfigured
		}
		c = NewOpenAIClient(cfg.Provider, cfg.BaseURL, cfg.APIKey, cfg.Model, httpClient)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}

	return NewGuarded(c, breaker.DefaultSettings()), nil
}

// defaultTimeout applies when the caller passes a nil http.Client.
const defaultTimeout = 60 * time.Second

func orDefaultClient(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{Timeout: defaultTimeout}
}
