// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/calmverse/internal/books"
	"github.com/tomtom215/calmverse/internal/chat"
	"github.com/tomtom215/calmverse/internal/database"
	"github.com/tomtom215/calmverse/internal/journal"
	"github.com/tomtom215/calmverse/internal/llm"
	"github.com/tomtom215/calmverse/internal/models"
	"github.com/tomtom215/calmverse/internal/music"
	"github.com/tomtom215/calmverse/internal/therapy"
)

// errorMapping translates one sentinel to a response. An empty message
// uses the error text after the sentinel, so wrapped detail such as the
// offending status reaches the client.
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

var errorMappings = []errorMapping{
	// NotFound
	{therapy.ErrTherapistNotFound, http.StatusNotFound, models.ErrCodeNotFound, "Therapist not found"},
	{therapy.ErrAppointmentNotFound, http.StatusNotFound, models.ErrCodeNotFound, "Appointment not found"},
	{journal.ErrEntryNotFound, http.StatusNotFound, models.ErrCodeNotFound, "Journal entry not found"},
	{journal.ErrUnknownCategory, http.StatusNotFound, models.ErrCodeNotFound, "No prompts found for this category"},
	{chat.ErrSessionNotFound, http.StatusNotFound, models.ErrCodeNotFound, "Session not found"},
	{books.ErrBookNotFound, http.StatusNotFound, models.ErrCodeNotFound, "Book not found"},
	{music.ErrSongNotFound, http.StatusNotFound, models.ErrCodeNotFound, "Song not found in database"},

	// Conflict
	{therapy.ErrSlotUnavailable, http.StatusConflict, models.ErrCodeConflict, "This time slot is not available"},
	{therapy.ErrInvalidTransition, http.StatusConflict, models.ErrCodeConflict, ""},

	// InvalidArgument
	{therapy.ErrInvalidID, http.StatusBadRequest, models.ErrCodeBadRequest, "Invalid therapist ID format"},
	{journal.ErrInvalidID, http.StatusBadRequest, models.ErrCodeBadRequest, "Invalid ID format"},
	{therapy.ErrEmptyUpdate, http.StatusBadRequest, models.ErrCodeBadRequest, "No valid update data provided"},
	{therapy.ErrInvalidStatus, http.StatusBadRequest, models.ErrCodeBadRequest, "Invalid status. Must be one of: scheduled, completed, cancelled"},
	{therapy.ErrInvalidSlot, http.StatusBadRequest, models.ErrCodeBadRequest, "start_time must be before end_time"},
	{therapy.ErrInvalidDate, http.StatusBadRequest, models.ErrCodeBadRequest, "date must be formatted as YYYY-MM-DD"},
	{therapy.ErrUserRequired, http.StatusBadRequest, models.ErrCodeBadRequest, "user_id is required"},
	{chat.ErrEmptyMessage, http.StatusBadRequest, models.ErrCodeBadRequest, "message is required"},
	{chat.ErrUserRequired, http.StatusBadRequest, models.ErrCodeBadRequest, "user_id is required"},

	// ServiceUnavailable
	{music.ErrUnavailable, http.StatusServiceUnavailable, models.ErrCodeServiceUnavailable, "Song database not loaded properly"},
	{chat.ErrUnavailable, http.StatusServiceUnavailable, models.ErrCodeServiceUnavailable, "The assistant is temporarily unavailable, please try again later"},
	{llm.ErrUnavailable, http.StatusServiceUnavailable, models.ErrCodeServiceUnavailable, "The assistant is temporarily unavailable, please try again later"},
	{database.ErrContention, http.StatusServiceUnavailable, models.ErrCodeServiceUnavailable, "Too many concurrent changes, please try again"},
}

// classifyError returns the status, code and client message for err.
// Unmapped errors are 500s that embed the error text after prefix.
func classifyError(err error, prefix string) (int, string, string) {
	for _, m := range errorMappings {
		if !errors.Is(err, m.target) {
			continue
		}
		msg := m.message
		if msg == "" {
			msg = detailAfter(err, m.target)
		}
		return m.status, m.code, msg
	}
	return http.StatusInternalServerError, models.ErrCodeInternal, prefix + ": " + err.Error()
}

// detailAfter returns the text that follows target in err, capitalised.
func detailAfter(err, target error) string {
	text := err.Error()
	if i := strings.Index(text, target.Error()+": "); i >= 0 {
		text = text[i+len(target.Error())+2:]
	}
	if text == "" {
		return text
	}
	return strings.ToUpper(text[:1]) + text[1:]
}

// respondServiceError maps a service error to an error envelope. Server
// errors are logged; client errors are not.
func respondServiceError(w http.ResponseWriter, err error, prefix string) {
	status, code, msg := classifyError(err, prefix)
	var logErr error
	if status >= http.StatusInternalServerError {
		logErr = err
	}
	respondError(w, status, code, msg, logErr)
}
