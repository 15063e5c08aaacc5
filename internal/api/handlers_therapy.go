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

	"github.com/tomtom215/calmverse/internal/models"
	"github.com/tomtom215/calmverse/internal/therapy"
)

// naiveLayouts are accepted for booking times without an offset; they are
// read in the therapy timezone.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// BookAppointmentRequest is the body of POST /therapists/appointments.
type BookAppointmentRequest struct {
	UserID      string `json:"user_id" validate:"required,max=200"`
	TherapistID string `json:"therapist_id" validate:"required"`
	Date        string `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	StartTime   string `json:"start_time" validate:"required"`
	EndTime     string `json:"end_time" validate:"required"`
	Notes       string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// UpdateAppointmentRequest is the body of PUT /therapists/appointments/{id}.
type UpdateAppointmentRequest struct {
	Status *string `json:"status,omitempty"`
	Notes  *string `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

// parseBookingTime accepts RFC 3339 or a naive timestamp in loc.
func parseBookingTime(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", value)
}

// ListTherapists returns summaries filtered by ?specialization= and ?language=.
func (h *Handler) ListTherapists(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	list, err := h.therapy.ListTherapists(ctx, therapy.TherapistFilter{
		Specialization: r.URL.Query().Get("specialization"),
		Language:       r.URL.Query().Get("language"),
	})
	if err != nil {
		respondServiceError(w, err, "Error listing therapists")
		return
	}
	respondSuccess(w, r, http.StatusOK, list, start)
}

// TherapistSpecializations returns every distinct specialization.
func (h *Handler) TherapistSpecializations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	specs, err := h.therapy.Specializations(ctx)
	if err != nil {
		respondServiceError(w, err, "Error listing specializations")
		return
	}
	respondSuccess(w, r, http.StatusOK, specs, start)
}

// GetTherapist returns one therapist with their bookable slots.
func (h *Handler) GetTherapist(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	detail, err := h.therapy.GetTherapist(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, err, "Error loading therapist")
		return
	}
	respondSuccess(w, r, http.StatusOK, detail, start)
}

// BookAppointment reserves a slot.
func (h *Handler) BookAppointment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req BookAppointmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeBadRequest, "Invalid request body", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	startTime, err := parseBookingTime(req.StartTime, h.cfg.Location)
	if err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeBadRequest, "start_time must be an ISO-8601 timestamp", nil)
		return
	}
	endTime, err := parseBookingTime(req.EndTime, h.cfg.Location)
	if err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeBadRequest, "end_time must be an ISO-8601 timestamp", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	appt, err := h.therapy.Book(ctx, therapy.BookRequest{
		UserID:      req.UserID,
		TherapistID: req.TherapistID,
		Date:        req.Date,
		StartTime:   startTime,
		EndTime:     endTime,
		Notes:       req.Notes,
	})
	if err != nil {
		respondServiceError(w, err, "Error booking appointment")
		return
	}
	respondSuccess(w, r, http.StatusCreated, appt, start)
}

// GetAppointment returns one appointment by its public appointment_id.
func (h *Handler) GetAppointment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	appt, err := h.therapy.GetAppointment(ctx, chi.URLParam(r, "appointment_id"))
	if err != nil {
		respondServiceError(w, err, "Error loading appointment")
		return
	}
	respondSuccess(w, r, http.StatusOK, appt, start)
}

// ListUserAppointments returns a user's appointments, optionally by ?status=.
func (h *Handler) ListUserAppointments(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	list, err := h.therapy.ListUserAppointments(ctx, chi.URLParam(r, "user_id"), r.URL.Query().Get("status"))
	if err != nil {
		respondServiceError(w, err, "Error listing appointments")
		return
	}
	respondSuccess(w, r, http.StatusOK, list, start)
}

// UpdateAppointment changes status and/or notes.
func (h *Handler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req UpdateAppointmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, models.ErrCodeBadRequest, "Invalid request body", nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidation(w, apiErr)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	appt, err := h.therapy.UpdateAppointment(ctx, chi.URLParam(r, "appointment_id"), therapy.AppointmentUpdate{
		Status: req.Status,
		Notes:  req.Notes,
	})
	if err != nil {
		respondServiceError(w, err, "Error updating appointment")
		return
	}
	respondSuccess(w, r, http.StatusOK, appt, start)
}

// CancelAppointment cancels a scheduled appointment and frees its slot.
func (h *Handler) CancelAppointment(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	ctx, cancel := context.WithTimeout(r.Context(), h.cfg.RequestTimeout)
	defer cancel()

	if _, err := h.therapy.CancelAppointment(ctx, chi.URLParam(r, "appointment_id")); err != nil {
		respondServiceError(w, err, "Error cancelling appointment")
		return
	}
	respondSuccess(w, r, http.StatusOK, MessageResponse{Message: "Appointment cancelled successfully"}, start)
}
