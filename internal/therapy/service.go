// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package therapy

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	"github.com/samber/lo"

	"github.com/tomtom215/calmverse/internal/logging"
	"github.com/tomtom215/calmverse/internal/metrics"
)

const (
	maxTherapistResults   = 100
	maxAppointmentResults = 50
	dateLayout            = "2006-01-02"
)

var (
	// ErrUserRequired is returned when a booking has no user_id.
	ErrUserRequired = errors.New("user_id is required")

	// ErrInvalidDate is returned when the booking date is not YYYY-MM-DD.
	ErrInvalidDate = errors.New("date must be formatted as YYYY-MM-DD")
)

// ServiceConfig controls slot generation.
type ServiceConfig struct {
	AvailabilityDays int
	Hours            WorkingHours
}

// Service is the therapist directory and appointment lifecycle.
type Service struct {
	store  Store
	cfg    ServiceConfig
	now    func() time.Time
	logger zerolog.Logger
}

// NewService creates a Service over store.
func NewService(store Store, cfg ServiceConfig) *Service {
	if cfg.AvailabilityDays <= 0 {
		cfg.AvailabilityDays = 14
	}
	if cfg.Hours.SlotDuration <= 0 {
		cfg.Hours = DefaultWorkingHours()
	}
	return &Service{
		store:  store,
		cfg:    cfg,
		now:    time.Now,
		logger: logging.WithComponent("therapy"),
	}
}

// SetClock replaces the time source; tests use it to pin "now".
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// TherapistFilter narrows ListTherapists. Empty fields match everything.
type TherapistFilter struct {
	Specialization string
	Language       string
}

func containsFold(values []string, query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return lo.SomeBy(values, func(v string) bool {
		return strings.Contains(strings.ToLower(v), q)
	})
}

// ListTherapists returns summaries matching every non-empty filter by
// case-insensitive substring against any element.
func (s *Service) ListTherapists(ctx context.Context, f TherapistFilter) ([]TherapistSummary, error) {
	all, err := s.store.ListTherapists(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]TherapistSummary, 0, len(all))
	for i := range all {
		t := &all[i]
		if !containsFold(t.Specializations, f.Specialization) || !containsFold(t.Languages, f.Language) {
			continue
		}
		out = append(out, t.Summary())
		if len(out) == maxTherapistResults {
			break
		}
	}
	return out, nil
}

// Specializations returns the distinct specializations, sorted.
func (s *Service) Specializations(ctx context.Context) ([]string, error) {
	all, err := s.store.ListTherapists(ctx)
	if err != nil {
		return nil, err
	}
	specs := lo.Uniq(lo.FlatMap(all, func(t Therapist, _ int) []string {
		return t.Specializations
	}))
	sort.Strings(specs)
	return specs, nil
}

func parseTherapistID(id string) error {
	if _, err := ulid.ParseStrict(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// GetTherapist returns the therapist with its future unbooked slots.
func (s *Service) GetTherapist(ctx context.Context, id string) (*TherapistDetail, error) {
	if err := parseTherapistID(id); err != nil {
		return nil, err
	}
	t, err := s.store.GetTherapist(ctx, id)
	if err != nil {
		return nil, err
	}
	d := t.Detail(s.now())
	return &d, nil
}

// BookRequest is a request to reserve one slot.
type BookRequest struct {
	UserID      string
	TherapistID string
	// Date is optional; when empty it is derived from StartTime.
	Date      string
	StartTime time.Time
	EndTime   time.Time
	Notes     string
}

// Book reserves the requested slot and records a scheduled appointment.
func (s *Service) Book(ctx context.Context, req BookRequest) (*Appointment, error) {
	appt, err := s.book(ctx, req)
	result := "success"
	switch {
	case err == nil:
	case errors.Is(err, ErrSlotUnavailable):
		result = "conflict"
	case errors.Is(err, ErrTherapistNotFound):
		result = "not_found"
	default:
		result = "error"
	}
	metrics.AppointmentBookings.WithLabelValues(result).Inc()
	return appt, err
}

func (s *Service) book(ctx context.Context, req BookRequest) (*Appointment, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return nil, ErrUserRequired
	}
	if err := parseTherapistID(req.TherapistID); err != nil {
		return nil, err
	}
	if !req.StartTime.Before(req.EndTime) {
		return nil, ErrInvalidSlot
	}
	date := req.Date
	if date == "" {
		date = req.StartTime.In(s.cfg.Hours.location()).Format(dateLayout)
	} else if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, ErrInvalidDate
	}

	now := s.now().UTC()
	appt, err := s.store.Reserve(ctx, req.TherapistID, req.StartTime, req.EndTime, func(t *Therapist) *Appointment {
		return &Appointment{
			ID:            ulid.Make().String(),
			AppointmentID: uuid.NewString(),
			UserID:        req.UserID,
			TherapistID:   t.ID,
			TherapistName: t.Name,
			Date:          date,
			StartTime:     req.StartTime.UTC(),
			EndTime:       req.EndTime.UTC(),
			Status:        StatusScheduled,
			Notes:         req.Notes,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
	})
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Str("appointment_id", appt.AppointmentID).
		Str("therapist_id", appt.TherapistID).
		Time("start_time", appt.StartTime).
		Msg("Appointment booked")
	return appt, nil
}

// GetAppointment looks an appointment up by its external id.
func (s *Service) GetAppointment(ctx context.Context, appointmentID string) (*Appointment, error) {
	return s.store.GetAppointment(ctx, appointmentID)
}

// ListUserAppointments returns the user's appointments by ascending start
// time, optionally restricted to one status.
func (s *Service) ListUserAppointments(ctx context.Context, userID, status string) ([]Appointment, error) {
	var want Status
	if status != "" {
		st, err := ParseStatus(status)
		if err != nil {
			return nil, err
		}
		want = st
	}

	all, err := s.store.ListAppointmentsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := lo.Filter(all, func(a Appointment, _ int) bool {
		return want == "" || a.Status == want
	})
	if len(out) > maxAppointmentResults {
		out = out[:maxAppointmentResults]
	}
	return out, nil
}

// AppointmentUpdate is a partial update; nil fields are left unchanged.
type AppointmentUpdate struct {
	Status *string
	Notes  *string
}

// UpdateAppointment applies a partial update. Moving to cancelled frees the
// slot in the same transaction. Leaving a terminal state is a conflict.
func (s *Service) UpdateAppointment(ctx context.Context, appointmentID string, upd AppointmentUpdate) (*Appointment, error) {
	if upd.Status == nil && upd.Notes == nil {
		return nil, ErrEmptyUpdate
	}
	var target Status
	if upd.Status != nil {
		st, err := ParseStatus(*upd.Status)
		if err != nil {
			return nil, err
		}
		target = st
	}

	appt, err := s.store.Transition(ctx, appointmentID, func(a *Appointment) (bool, error) {
		release := false
		if target != "" {
			if !CanTransition(a.Status, target) {
				return false, fmt.Errorf("%w: cannot change appointment status from %s to %s", ErrInvalidTransition, a.Status, target)
			}
			release = a.Status != StatusCancelled && target == StatusCancelled
			a.Status = target
		}
		if upd.Notes != nil {
			a.Notes = *upd.Notes
		}
		a.UpdatedAt = s.now().UTC()
		return release, nil
	})
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().
		Str("appointment_id", appointmentID).
		Str("status", string(appt.Status)).
		Msg("Appointment updated")
	return appt, nil
}

// CancelAppointment cancels a scheduled appointment and frees its slot.
func (s *Service) CancelAppointment(ctx context.Context, appointmentID string) (*Appointment, error) {
	appt, err := s.store.Transition(ctx, appointmentID, func(a *Appointment) (bool, error) {
		if a.Status != StatusScheduled {
			return false, fmt.Errorf("%w: cannot cancel appointment with status: %s", ErrInvalidTransition, a.Status)
		}
		a.Status = StatusCancelled
		a.UpdatedAt = s.now().UTC()
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	metrics.AppointmentCancellations.Inc()
	logging.Ctx(ctx).Info().Str("appointment_id", appointmentID).Msg("Appointment cancelled")
	return appt, nil
}

// RefreshAvailability rolls every therapist's slot window forward: slots
// that ended more than a day ago are dropped and missing slots for the
// configured horizon are added. Booked slots keep their state.
func (s *Service) RefreshAvailability(ctx context.Context) (int, error) {
	all, err := s.store.ListTherapists(ctx)
	if err != nil {
		return 0, err
	}

	now := s.now()
	generated := GenerateSlots(now, s.cfg.AvailabilityDays, s.cfg.Hours)
	cutoff := now.Add(-24 * time.Hour)
	updated := 0
	for i := range all {
		id := all[i].ID
		err := s.store.UpdateTherapist(ctx, id, func(t *Therapist) error {
			t.Availability = MergeSlots(t.Availability, generated, cutoff)
			return nil
		})
		if err != nil {
			return updated, fmt.Errorf("refresh availability for %s: %w", id, err)
		}
		updated++
	}
	s.logger.Debug().Int("therapists", updated).Msg("Availability refreshed")
	return updated, nil
}
