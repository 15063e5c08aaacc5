// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/calmverse/internal/logging"
)

// Task is one run of a periodic job.
type Task func(ctx context.Context) error

// PeriodicService runs a Task on a fixed interval. Task errors are logged
// and the loop continues; only a panic ends Serve, and suture restarts it.
//
//	gc := services.NewPeriodicService("badger-gc", 10*time.Minute, func(context.Context) error {
//	    return db.RunGC()
//	})
//	tree.AddDataService(gc)
type PeriodicService struct {
	name       string
	interval   time.Duration
	task       Task
	runAtStart bool
	logger     zerolog.Logger
}

// PeriodicOption configures a PeriodicService.
type PeriodicOption func(*PeriodicService)

// WithRunAtStart runs the task once before the first tick.
func WithRunAtStart() PeriodicOption {
	return func(p *PeriodicService) { p.runAtStart = true }
}

// NewPeriodicService creates a periodic job. A non-positive interval
// becomes one minute.
func NewPeriodicService(name string, interval time.Duration, task Task, opts ...PeriodicOption) *PeriodicService {
	if interval <= 0 {
		interval = time.Minute
	}
	p := &PeriodicService{
		name:     name,
		interval: interval,
		task:     task,
		logger:   logging.WithComponent(name),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Serve implements suture.Service.
func (p *PeriodicService) Serve(ctx context.Context) error {
	if p.runAtStart {
		p.run(ctx)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.run(ctx)
		}
	}
}

func (p *PeriodicService) run(ctx context.Context) {
	start := time.Now()
	if err := p.task(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Warn().Err(err).Dur("took", time.Since(start)).Msg("Periodic task failed")
		return
	}
	p.logger.Debug().Dur("took", time.Since(start)).Msg("Periodic task finished")
}

// String implements fmt.Stringer for suture's logs.
func (p *PeriodicService) String() string {
	return p.name
}
