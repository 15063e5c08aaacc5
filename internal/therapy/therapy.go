// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

// Package therapy implements the therapist directory and slot-based
// appointment booking.
//
// A Therapist owns an ordered list of TimeSlots. Booking reserves exactly
// one slot and records an Appointment; cancelling releases it again. The
// slot flip and the appointment write always commit in the same store
// transaction, so a slot is never booked without a scheduled appointment
// pointing at it, and two concurrent bookings of one slot yield exactly one
// success.
//
// Appointment status moves scheduled -> completed or scheduled -> cancelled.
// Both targets are terminal.
package therapy

import (
	"errors"
	"fmt"
	"time"
)

// Status is an appointment lifecycle state.
type Status string

// Appointment states.
const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ParseStatus accepts the three lifecycle values.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusScheduled, StatusCompleted, StatusCancelled:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// Terminal reports whether no transition leaves s.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransition reports whether from -> to is a legal lifecycle step.
// Staying in the same state is always allowed and changes nothing.
func CanTransition(from, to Status) bool {
	if from == to {
		return true
	}
	return from == StatusScheduled && to.Terminal()
}

var (
	// ErrTherapistNotFound is returned for an unknown therapist id.
	ErrTherapistNotFound = errors.New("therapist not found")

	// ErrAppointmentNotFound is returned for an unknown appointment_id.
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrSlotUnavailable is returned when the requested slot does not exist
	// or is already booked.
	ErrSlotUnavailable = errors.New("this time slot is not available")

	// ErrInvalidTransition is returned when a status change would leave a
	// terminal state.
	ErrInvalidTransition = errors.New("invalid appointment status transition")

	// ErrInvalidID is returned for malformed therapist ids.
	ErrInvalidID = errors.New("invalid therapist ID format")

	// ErrInvalidStatus is returned for unknown status values.
	ErrInvalidStatus = errors.New("invalid appointment status")

	// ErrEmptyUpdate is returned when an update carries no recognised field.
	ErrEmptyUpdate = errors.New("no valid update data provided")

	// ErrInvalidSlot is returned when start is not before end.
	ErrInvalidSlot = errors.New("start_time must be before end_time")
)

// Therapist is a directory entry with its slot list.
type Therapist struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Specializations []string   `json:"specializations"`
	ExperienceYears int        `json:"experience_years"`
	Education       string     `json:"education"`
	Bio             string     `json:"bio"`
	PhotoURL        string     `json:"photo_url,omitempty"`
	HourlyRate      float64    `json:"hourly_rate"`
	Languages       []string   `json:"languages"`
	Availability    []TimeSlot `json:"availability"`
}

// TherapistSummary is the list view; it omits availability.
type TherapistSummary struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Specializations []string `json:"specializations"`
	ExperienceYears int      `json:"experience_years"`
	Education       string   `json:"education"`
	Bio             string   `json:"bio"`
	PhotoURL        string   `json:"photo_url,omitempty"`
	HourlyRate      float64  `json:"hourly_rate"`
	Languages       []string `json:"languages"`
}

// TherapistDetail adds the slots a client can still book.
type TherapistDetail struct {
	TherapistSummary
	AvailableSlots []TimeSlot `json:"available_slots"`
}

// Summary strips availability.
func (t *Therapist) Summary() TherapistSummary {
	return TherapistSummary{
		ID:              t.ID,
		Name:            t.Name,
		Specializations: t.Specializations,
		ExperienceYears: t.ExperienceYears,
		Education:       t.Education,
		Bio:             t.Bio,
		PhotoURL:        t.PhotoURL,
		HourlyRate:      t.HourlyRate,
		Languages:       t.Languages,
	}
}

// Detail returns the summary plus future unbooked slots.
func (t *Therapist) Detail(now time.Time) TherapistDetail {
	return TherapistDetail{
		TherapistSummary: t.Summary(),
		AvailableSlots:   AvailableSlots(t.Availability, now),
	}
}

// Appointment is a user's reservation of one slot.
type Appointment struct {
	ID            string    `json:"id"`
	AppointmentID string    `json:"appointment_id"`
	UserID        string    `json:"user_id"`
	TherapistID   string    `json:"therapist_id"`
	TherapistName string    `json:"therapist_name"`
	Date          string    `json:"date"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	Status        Status    `json:"status"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
