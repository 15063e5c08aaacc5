// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current consecutive failures seen by the circuit breaker",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Therapy
	AppointmentBookings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calmverse_appointment_bookings_total",
			Help: "Booking attempts by result",
		},
		[]string{"result"}, // success, conflict, not_found, error
	)

	AppointmentCancellations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "calmverse_appointment_cancellations_total",
			Help: "Appointments cancelled through the cancel endpoint",
		},
	)

	// Chat
	CrisisDetections = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "calmverse_chat_crisis_detections_total",
			Help: "Messages answered with the safety response",
		},
	)

	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "calmverse_llm_request_duration_seconds",
			Help:    "Duration of completion requests to the LLM provider",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
		},
		[]string{"provider", "result"},
	)

	LLMToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calmverse_llm_tool_calls_total",
			Help: "Tool invocations requested by the model",
		},
		[]string{"tool"},
	)

	// Recommendations
	CatalogLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calmverse_catalog_lookups_total",
			Help: "External catalog metadata lookups by result",
		},
		[]string{"catalog", "result"}, // hit, fallback
	)

	RecommendationRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calmverse_recommendation_requests_total",
			Help: "Similarity recommendation requests by kind and result",
		},
		[]string{"kind", "result"},
	)

	// Storage
	StoreGCRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "calmverse_store_gc_runs_total",
			Help: "Value log garbage collection passes by result",
		},
		[]string{"result"},
	)
)

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordLLMRequest records one completion round trip.
func RecordLLMRequest(provider string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	LLMRequestDuration.WithLabelValues(provider, result).Observe(duration.Seconds())
}
