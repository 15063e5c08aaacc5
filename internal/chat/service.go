// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

// Package chat implements the mental-health assistant: crisis screening,
// the tool-calling completion loop and per-session transcripts.
//
// Crisis screening runs before anything else and never reaches the LLM.
// Every other message is answered by a llm.Completer with at most
// MaxToolCalls tool invocations per turn.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/calmverse/internal/llm"
	"github.com/tomtom215/calmverse/internal/logging"
	"github.com/tomtom215/calmverse/internal/metrics"
)

var (
	// ErrUnavailable means no completion can be produced right now, either
	// because no provider is configured or because its breaker is open.
	ErrUnavailable = errors.New("chat assistant unavailable")

	// ErrEmptyMessage is returned for a blank message.
	ErrEmptyMessage = errors.New("message is required")

	// ErrUserRequired is returned when user_id is missing.
	ErrUserRequired = errors.New("user_id is required")
)

// Config tunes the conversation loop.
type Config struct {
	Temperature    float64
	MaxToolCalls   int
	MaxHistory     int
	CrisisKeywords []string
}

// SendRequest is one user message.
type SendRequest struct {
	Message   string
	UserID    string
	SessionID string
}

// Reply is the assistant's answer. Resources is nil when none apply.
type Reply struct {
	Response         string     `json:"response"`
	Resources        []Resource `json:"resources"`
	EmergencyContact bool       `json:"emergency_contact"`
	SessionID        string     `json:"session_id"`
}

// Service runs conversations.
type Service struct {
	completer llm.Completer
	sessions  SessionStore
	detector  *CrisisDetector
	cfg       Config
	now       func() time.Time
}

// NewService creates a chat service. completer may be nil, in which case
// only crisis screening works and other messages fail with ErrUnavailable.
func NewService(completer llm.Completer, sessions SessionStore, cfg Config) *Service {
	return &Service{
		completer: completer,
		sessions:  sessions,
		detector:  NewCrisisDetector(cfg.CrisisKeywords),
		cfg:       cfg,
		now:       time.Now,
	}
}

// Available reports whether an LLM provider is wired.
func (s *Service) Available() bool {
	return s.completer != nil
}

// Send answers one message. session_id defaults to user_id.
func (s *Service) Send(ctx context.Context, req SendRequest) (*Reply, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, ErrEmptyMessage
	}
	if req.UserID == "" {
		return nil, ErrUserRequired
	}
	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = req.UserID
	}
	logger := logging.Ctx(ctx).With().Str("session_id", sessionID).Logger()

	if keyword, ok := s.detector.Detect(message); ok {
		metrics.CrisisDetections.Inc()
		// The keyword is logged, never the message.
		logger.Warn().Str("keyword", keyword).Msg("Crisis language detected, returning emergency resources")

		if err := s.record(ctx, sessionID, req.UserID, message, CrisisMessage); err != nil {
			return nil, err
		}
		return &Reply{
			Response:         CrisisMessage,
			Resources:        CrisisResources(),
			EmergencyContact: true,
			SessionID:        sessionID,
		}, nil
	}

	if s.completer == nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, llm.ErrNotConfigured)
	}

	history, err := s.history(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	answer, err := s.complete(ctx, history, message)
	if err != nil {
		if errors.Is(err, llm.ErrUnavailable) {
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
		}
		return nil, err
	}

	if err := s.record(ctx, sessionID, req.UserID, message, answer); err != nil {
		return nil, err
	}

	logger.Debug().Int("reply_length", len(answer)).Msg("Chat reply generated")
	return &Reply{
		Response:  answer,
		Resources: SuggestResources(answer),
		SessionID: sessionID,
	}, nil
}

// history returns the last MaxHistory turns of the session as LLM messages.
func (s *Service) history(ctx context.Context, sessionID string) ([]llm.Message, error) {
	sess, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	turns := sess.Messages
	if s.cfg.MaxHistory > 0 && len(turns) > s.cfg.MaxHistory {
		turns = turns[len(turns)-s.cfg.MaxHistory:]
	}
	out := make([]llm.Message, 0, len(turns))
	for _, t := range turns {
		out = append(out, llm.Message{Role: t.Role, Content: t.Content})
	}
	return out, nil
}

// complete runs the tool loop. Tools are offered until the budget is
// spent; the next completion is then requested without tools and its
// content is the answer.
func (s *Service) complete(ctx context.Context, history []llm.Message, message string) (string, error) {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: SystemPrompt})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: message})

	tools := toolSpecs()
	used := 0
	for {
		req := llm.Request{Messages: messages, Temperature: s.cfg.Temperature}
		if used < s.cfg.MaxToolCalls {
			req.Tools = tools
		}

		resp, err := s.completer.Complete(ctx, req)
		if err != nil {
			return "", fmt.Errorf("completion failed: %w", err)
		}

		if len(resp.Message.ToolCalls) == 0 || used >= s.cfg.MaxToolCalls {
			answer := strings.TrimSpace(resp.Message.Content)
			if answer == "" {
				return "", fmt.Errorf("completion failed: %w", llm.ErrEmptyResponse)
			}
			return answer, nil
		}

		messages = append(messages, resp.Message)
		for _, call := range resp.Message.ToolCalls {
			result := budgetExhausted
			if used < s.cfg.MaxToolCalls {
				result = s.runTool(call)
				used++
			}
			messages = append(messages, llm.Message{
				Role:       llm.RoleTool,
				Content:    result,
				ToolCallID: call.ID,
				Name:       call.Name,
			})
		}
	}
}

func (s *Service) record(ctx context.Context, sessionID, userID, message, answer string) error {
	now := s.now()
	_, err := s.sessions.Append(ctx, sessionID, userID,
		Turn{Role: llm.RoleUser, Content: message, CreatedAt: now},
		Turn{Role: llm.RoleAssistant, Content: answer, CreatedAt: now},
	)
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Transcript returns the stored session.
func (s *Service) Transcript(ctx context.Context, sessionID string) (*Session, error) {
	return s.sessions.Get(ctx, sessionID)
}

// End deletes the session.
func (s *Service) End(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return err
	}
	logging.Ctx(ctx).Info().Str("session_id", sessionID).Msg("Chat session ended")
	return nil
}
