// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/tomtom215/calmverse/internal/models"
	"github.com/tomtom215/calmverse/internal/therapy"
)

// putFutureTherapist stores a therapist with one slot two days from now.
func putFutureTherapist(t *testing.T, store *therapy.BadgerStore, name string, specs, langs []string) (*therapy.Therapist, therapy.TimeSlot) {
	t.Helper()
	start := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Hour)
	slot := therapy.TimeSlot{StartTime: start, EndTime: start.Add(time.Hour)}
	th := &therapy.Therapist{
		ID:              ulid.Make().String(),
		Name:            name,
		Specializations: specs,
		Languages:       langs,
		HourlyRate:      120,
		Availability:    []therapy.TimeSlot{slot},
	}
	if err := store.PutTherapist(context.Background(), th); err != nil {
		t.Fatalf("PutTherapist() error = %v", err)
	}
	return th, slot
}

func TestTherapists_Directory(t *testing.T) {
	t.Parallel()

	svc, store := newTherapyService(t)
	router := newTestRouter(t, Services{Therapy: svc})
	anxiety, _ := putFutureTherapist(t, store, "Dr. Sarah Johnson", []string{"Anxiety", "Depression"}, []string{"English", "Spanish"})
	putFutureTherapist(t, store, "Dr. Michael Chen", []string{"Trauma"}, []string{"English", "Mandarin"})

	tests := []struct {
		target string
		want   int
	}{
		{"/therapists/", 2},
		{"/therapists", 2},
		{"/therapists/?specialization=anx", 1},
		{"/therapists/?language=mandarin", 1},
		{"/therapists/?specialization=trauma&language=spanish", 0},
	}
	for _, tt := range tests {
		var list []therapy.TherapistSummary
		decodeEnvelope(t, doRequest(t, router, http.MethodGet, tt.target, nil), http.StatusOK, &list)
		if len(list) != tt.want {
			t.Errorf("%s: got %d therapists, want %d", tt.target, len(list), tt.want)
		}
	}

	var specs []string
	decodeEnvelope(t, doRequest(t, router, http.MethodGet, "/therapists/specializations", nil), http.StatusOK, &specs)
	if len(specs) != 3 {
		t.Errorf("specializations = %v", specs)
	}

	var detail therapy.TherapistDetail
	decodeEnvelope(t, doRequest(t, router, http.MethodGet, "/therapists/"+anxiety.ID, nil), http.StatusOK, &detail)
	if detail.Name != "Dr. Sarah Johnson" || len(detail.AvailableSlots) != 1 {
		t.Errorf("detail = %+v", detail)
	}

	env := decodeEnvelope(t, doRequest(t, router, http.MethodGet, "/therapists/bogus", nil), http.StatusBadRequest, nil)
	assertErrorCode(t, env, models.ErrCodeBadRequest)
	env = decodeEnvelope(t, doRequest(t, router, http.MethodGet, "/therapists/"+ulid.Make().String(), nil), http.StatusNotFound, nil)
	assertErrorCode(t, env, models.ErrCodeNotFound)
}

func TestAppointments_Lifecycle(t *testing.T) {
	t.Parallel()

	svc, store := newTherapyService(t)
	router := newTestRouter(t, Services{Therapy: svc})
	th, slot := putFutureTherapist(t, store, "Dr. Emily Rodriguez", []string{"Stress"}, []string{"English"})

	book := BookAppointmentRequest{
		UserID:      "u1",
		TherapistID: th.ID,
		StartTime:   slot.StartTime.Format(time.RFC3339),
		EndTime:     slot.EndTime.Format(time.RFC3339),
		Notes:       "first session",
	}

	var appt therapy.Appointment
	decodeEnvelope(t, doRequest(t, router, http.MethodPost, "/therapists/appointments", book), http.StatusCreated, &appt)
	if appt.Status != therapy.StatusScheduled || appt.TherapistName != th.Name || appt.AppointmentID == "" {
		t.Fatalf("appointment = %+v", appt)
	}

	// The slot is gone from the detail view and cannot be booked twice.
	var detail therapy.TherapistDetail
	decodeEnvelope(t, doRequest(t, router, http.MethodGet, "/therapists/"+th.ID, nil), http.StatusOK, &detail)
	if len(detail.AvailableSlots) != 0 {
		t.Errorf("available slots = %v, want none", detail.AvailableSlots)
	}
	book.UserID = "u2"
	env := decodeEnvelope(t, doRequest(t, router, http.MethodPost, "/therapists/appointments", book), http.StatusConflict, nil)
	assertErrorCode(t, env, models.ErrCodeConflict)
	if env.Error.Message != "This time slot is not available" {
		t.Errorf("message = %q", env.Error.Message)
	}

	path := "/therapists/appointments/" + appt.AppointmentID
	var got therapy.Appointment
	decodeEnvelope(t, doRequest(t, router, http.MethodGet, path, nil), http.StatusOK, &got)
	if got.ID != appt.ID {
		t.Errorf("get = %+v", got)
	}

	var list []therapy.Appointment
	decodeEnvelope(t, doRequest(t, router, http.MethodGet, "/therapists/appointments/user/u1?status=scheduled", nil), http.StatusOK, &list)
	if len(list) != 1 {
		t.Errorf("user appointments = %d, want 1", len(list))
	}

	notes := "bring journal"
	var updated therapy.Appointment
	decodeEnvelope(t, doRequest(t, router, http.MethodPut, path, UpdateAppointmentRequest{Notes: &notes}), http.StatusOK, &updated)
	if updated.Notes != notes || updated.Status != therapy.StatusScheduled {
		t.Errorf("updated = %+v", updated)
	}

	env = decodeEnvelope(t, doRequest(t, router, http.MethodPut, path, map[string]string{}), http.StatusBadRequest, nil)
	assertErrorCode(t, env, models.ErrCodeBadRequest)

	var msg MessageResponse
	decodeEnvelope(t, doRequest(t, router, http.MethodDelete, path, nil), http.StatusOK, &msg)
	if msg.Message != "Appointment cancelled successfully" {
		t.Errorf("cancel message = %q", msg.Message)
	}

	env = decodeEnvelope(t, doRequest(t, router, http.MethodDelete, path, nil), http.StatusConflict, nil)
	if env.Error == nil || env.Error.Message != "Cannot cancel appointment with status: cancelled" {
		t.Errorf("second cancel = %+v", env.Error)
	}

	// Cancelling freed the slot.
	decodeEnvelope(t, doRequest(t, router, http.MethodPost, "/therapists/appointments", book), http.StatusCreated, nil)
}

func TestBookAppointment_BadRequests(t *testing.T) {
	t.Parallel()

	svc, store := newTherapyService(t)
	router := newTestRouter(t, Services{Therapy: svc})
	th, slot := putFutureTherapist(t, store, "Dr. James Wilson", []string{"Grief"}, []string{"English"})
	startStr := slot.StartTime.Format(time.RFC3339)
	endStr := slot.EndTime.Format(time.RFC3339)

	tests := []struct {
		name       string
		body       interface{}
		wantStatus int
		wantCode   string
	}{
		{"missing user", BookAppointmentRequest{TherapistID: th.ID, StartTime: startStr, EndTime: endStr}, http.StatusBadRequest, models.ErrCodeValidation},
		{"malformed therapist id", BookAppointmentRequest{UserID: "u", TherapistID: "abc", StartTime: startStr, EndTime: endStr}, http.StatusBadRequest, models.ErrCodeBadRequest},
		{"unknown therapist", BookAppointmentRequest{UserID: "u", TherapistID: ulid.Make().String(), StartTime: startStr, EndTime: endStr}, http.StatusNotFound, models.ErrCodeNotFound},
		{"end before start", BookAppointmentRequest{UserID: "u", TherapistID: th.ID, StartTime: endStr, EndTime: startStr}, http.StatusBadRequest, models.ErrCodeBadRequest},
		{"bad time", BookAppointmentRequest{UserID: "u", TherapistID: th.ID, StartTime: "tomorrow", EndTime: endStr}, http.StatusBadRequest, models.ErrCodeBadRequest},
		{"bad date", BookAppointmentRequest{UserID: "u", TherapistID: th.ID, Date: "01/02/2026", StartTime: startStr, EndTime: endStr}, http.StatusBadRequest, models.ErrCodeValidation},
		{"slot not offered", BookAppointmentRequest{UserID: "u", TherapistID: th.ID, StartTime: endStr, EndTime: slot.EndTime.Add(time.Hour).Format(time.RFC3339)}, http.StatusConflict, models.ErrCodeConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := decodeEnvelope(t, doRequest(t, router, http.MethodPost, "/therapists/appointments", tt.body), tt.wantStatus, nil)
			assertErrorCode(t, env, tt.wantCode)
		})
	}
}

func TestAppointments_UnknownAndInvalid(t *testing.T) {
	t.Parallel()

	svc, _ := newTherapyService(t)
	router := newTestRouter(t, Services{Therapy: svc})

	env := decodeEnvelope(t, doRequest(t, router, http.MethodGet, "/therapists/appointments/missing", nil), http.StatusNotFound, nil)
	assertErrorCode(t, env, models.ErrCodeNotFound)

	env = decodeEnvelope(t, doRequest(t, router, http.MethodGet, "/therapists/appointments/user/u1?status=pending", nil), http.StatusBadRequest, nil)
	assertErrorCode(t, env, models.ErrCodeBadRequest)

	status := "done"
	env = decodeEnvelope(t, doRequest(t, router, http.MethodPut, "/therapists/appointments/missing", UpdateAppointmentRequest{Status: &status}), http.StatusBadRequest, nil)
	assertErrorCode(t, env, models.ErrCodeBadRequest)
}

func TestParseBookingTime(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	want := time.Date(2026, 3, 2, 9, 0, 0, 0, loc)

	tests := []struct {
		in      string
		wantErr bool
	}{
		{"2026-03-02T09:00:00-05:00", false},
		{"2026-03-02T14:00:00Z", false},
		{"2026-03-02T09:00:00", false},
		{"2026-03-02T09:00", false},
		{"2026-03-02 09:00:00", false},
		{"9am", true},
	}
	for _, tt := range tests {
		got, err := parseBookingTime(tt.in, loc)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseBookingTime(%q) error = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && !got.Equal(want) {
			t.Errorf("parseBookingTime(%q) = %v, want %v", tt.in, got, want)
		}
	}
}
