// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/calmverse/internal/breaker"
	"github.com/tomtom215/calmverse/internal/logging"
	"github.com/tomtom215/calmverse/internal/metrics"
)

// Guarded wraps a Completer with a circuit breaker and latency metrics.
// Calls are never retried.
type Guarded struct {
	next Completer
	cb   *breaker.Breaker
}

// NewGuarded wraps next. The breaker is named "llm-<provider>".
func NewGuarded(next Completer, s breaker.Settings) *Guarded {
	return &Guarded{
		next: next,
		cb:   breaker.New("llm-"+next.Provider(), s),
	}
}

// Provider implements Completer.
func (g *Guarded) Provider() string {
	return g.next.Provider()
}

// Complete implements Completer. A rejected call returns ErrUnavailable.
func (g *Guarded) Complete(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := breaker.Execute(g.cb, func() (*Response, error) {
		return g.next.Complete(ctx, req)
	})
	metrics.RecordLLMRequest(g.next.Provider(), time.Since(start), err)

	if errors.Is(err, breaker.ErrOpen) {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("provider", g.next.Provider()).Msg("LLM completion failed")
		return nil, err
	}
	return resp, nil
}
