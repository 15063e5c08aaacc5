// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package api

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/tomtom215/calmverse/internal/chat"
	"github.com/tomtom215/calmverse/internal/models"
)

func TestChat_CrisisWithoutProvider(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, Services{Chat: newChatService(nil)})

	var reply chat.Reply
	decodeEnvelope(t, doRequest(t, router, http.MethodPost, "/mental-health/chat",
		ChatRequest{Message: "I want to die", UserID: "u1"}), http.StatusOK, &reply)
	if !reply.EmergencyContact || reply.Response != chat.CrisisMessage {
		t.Errorf("reply = %+v", reply)
	}
	if len(reply.Resources) != 2 || reply.SessionID != "u1" {
		t.Errorf("resources = %v, session = %q", reply.Resources, reply.SessionID)
	}

	env := decodeEnvelope(t, doRequest(t, router, http.MethodPost, "/mental-health/chat",
		ChatRequest{Message: "hello", UserID: "u1"}), http.StatusServiceUnavailable, nil)
	assertErrorCode(t, env, models.ErrCodeServiceUnavailable)
}

func TestChat_ConversationLifecycle(t *testing.T) {
	t.Parallel()

	fake := &fakeCompleter{reply: "Try a short breathing exercise. Here are some resources you might like."}
	router := newTestRouter(t, Services{Chat: newChatService(fake)})

	var reply chat.Reply
	decodeEnvelope(t, doRequest(t, router, http.MethodPost, "/mental-health/chat",
		ChatRequest{Message: "I feel stressed", UserID: "u1", SessionID: "s1"}), http.StatusOK, &reply)
	if reply.EmergencyContact || reply.SessionID != "s1" {
		t.Errorf("reply = %+v", reply)
	}
	if len(reply.Resources) == 0 {
		t.Error("reply mentioning resources should attach in-app resources")
	}

	var session chat.Session
	decodeEnvelope(t, doRequest(t, router, http.MethodGet, "/mental-health/chat/s1", nil), http.StatusOK, &session)
	if len(session.Messages) != 2 || session.Messages[0].Content != "I feel stressed" {
		t.Errorf("transcript = %+v", session.Messages)
	}

	var msg MessageResponse
	decodeEnvelope(t, doRequest(t, router, http.MethodDelete, "/mental-health/chat/s1", nil), http.StatusOK, &msg)
	if msg.Message != "Session s1 ended successfully" {
		t.Errorf("message = %q", msg.Message)
	}

	env := decodeEnvelope(t, doRequest(t, router, http.MethodDelete, "/mental-health/chat/s1", nil), http.StatusNotFound, nil)
	assertErrorCode(t, env, models.ErrCodeNotFound)
}

func TestChat_BadRequests(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, Services{Chat: newChatService(&fakeCompleter{reply: "ok"})})

	tests := []struct {
		name     string
		body     interface{}
		wantCode string
	}{
		{"empty body", "", models.ErrCodeBadRequest},
		{"malformed json", `{"message":`, models.ErrCodeBadRequest},
		{"missing user", ChatRequest{Message: "hi"}, models.ErrCodeValidation},
		{"blank message", ChatRequest{Message: "   ", UserID: "u1"}, models.ErrCodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := decodeEnvelope(t, doRequest(t, router, http.MethodPost, "/mental-health/chat", tt.body), http.StatusBadRequest, nil)
			assertErrorCode(t, env, tt.wantCode)
		})
	}
}

func TestChat_ProviderFailureIs500WithMessage(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, Services{Chat: newChatService(&fakeCompleter{err: errors.New("upstream exploded")})})

	env := decodeEnvelope(t, doRequest(t, router, http.MethodPost, "/mental-health/chat",
		ChatRequest{Message: "hello", UserID: "u1"}), http.StatusInternalServerError, nil)
	assertErrorCode(t, env, models.ErrCodeInternal)
	if !strings.HasPrefix(env.Error.Message, "Error processing chat: ") || !strings.Contains(env.Error.Message, "upstream exploded") {
		t.Errorf("message = %q", env.Error.Message)
	}
}
