// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/calmverse/internal/chat"
	"github.com/tomtom215/calmverse/internal/models"
)

// ChatRequest is the body of POST /mental-health/chat.
type ChatRequest struct {
	Message   string `json:"message" validate:"required,max=4000"`
	UserID    string `json:"user_id" validate:"required,max=200"`
	SessionID string `json:"session_id,omitempty" validate:"omitempty,max=200"`
}

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// Chat answers one message. Crisis language is answered with emergency
// resources even when no LLM provider is configured.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req ChatRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeBadRequest, "Invalid request body", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.ChatTimeout)
	defer cancel()

	reply, err := h.chat.Send(ctx, chat.SendRequest{
		Message:   req.Message,
		UserID:    req.UserID,
		SessionID: req.SessionID,
	})
	if err != nil {
		respondServiceError(w, err, "Error processing chat")
		return
	}
	respondSuccess(w, r, http.StatusOK, reply, start)
}

// ChatTranscript returns the stored conversation.
func (h *Handler) ChatTranscript(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	session, err := h.chat.Transcript(ctx, chi.URLParam(r, "session_id"))
	if err != nil {
		respondServiceError(w, err, "Error loading session")
		return
	}
	respondSuccess(w, r, http.StatusOK, session, start)
}

// EndChat deletes a conversation.
func (h *Handler) EndChat(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sessionID := chi.URLParam(r, "session_id")

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	if err := h.chat.End(ctx, sessionID); err != nil {
		respondServiceError(w, err, "Error ending session")
		return
	}
	respondSuccess(w, r, http.StatusOK, MessageResponse{
		Message: fmt.Sprintf("Session %s ended successfully", sessionID),
	}, start)
}
