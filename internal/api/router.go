// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/calmverse/internal/middleware"
	"github.com/tomtom215/calmverse/internal/models"
)

// Router wires handlers to routes.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter creates a Router. A nil mw uses DefaultChiMiddlewareConfig.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// chiMiddleware adapts http.HandlerFunc middleware to Chi's func(http.Handler) http.Handler.
func chiMiddleware(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// SetupChi configures all HTTP routes. Feature groups whose service is nil
// are not registered and answer 404.
func (router *Router) SetupChi() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(chiMiddleware(middleware.RequestID))
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // must be global to answer OPTIONS preflight
	r.Use(chiMiddleware(middleware.AccessLog(middleware.DefaultSlowRequestThreshold)))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, models.ErrCodeNotFound, "Resource not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, models.ErrCodeMethodNotAllowed, "Method not allowed", nil)
	})

	// ========================
	// Health and Metrics
	// ========================
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(chiMiddleware(middleware.SecurityHeaders))
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})
	r.Handle("/metrics", promhttp.Handler())

	// ========================
	// Feature Endpoints
	// ========================
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(chiMiddleware(middleware.SecurityHeaders))
		r.Use(chiMiddleware(middleware.PrometheusMetrics))

		r.Get("/", h.Root)

		if h.music != nil {
			r.Get("/songs", h.Songs)
			r.Get("/recommend", h.RecommendSongs)
			r.Get("/song_details", h.SongDetails)
		}

		if h.books != nil {
			r.Route("/api/books", func(r chi.Router) {
				r.Get("/", h.Books)
				r.Get("/recommend/{title}", h.RecommendBooks)
			})
		}

		if h.journal != nil {
			r.Route("/journal", func(r chi.Router) {
				r.Post("/entries", h.CreateJournalEntry)
				r.Get("/entries", h.ListJournalEntries)
				r.Get("/entries/{id}", h.GetJournalEntry)
				r.Put("/entries/{id}", h.UpdateJournalEntry)
				r.Delete("/entries/{id}", h.DeleteJournalEntry)
				r.Get("/prompts", h.JournalPrompts)
				r.Get("/prompts/random", h.RandomJournalPrompt)
				r.Get("/insights", h.JournalInsights)
			})
		}

		if h.therapy != nil {
			r.Route("/therapists", func(r chi.Router) {
				r.Get("/", h.ListTherapists)
				r.Get("/specializations", h.TherapistSpecializations)
				r.Post("/appointments", h.BookAppointment)
				r.Get("/appointments/user/{user_id}", h.ListUserAppointments)
				r.Get("/appointments/{appointment_id}", h.GetAppointment)
				r.Put("/appointments/{appointment_id}", h.UpdateAppointment)
				r.Delete("/appointments/{appointment_id}", h.CancelAppointment)
				r.Get("/{id}", h.GetTherapist)
			})
		}
	})

	// LLM-backed routes get their own, stricter budget.
	if h.chat != nil {
		r.Route("/mental-health/chat", func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitChat())
			r.Use(chiMiddleware(middleware.SecurityHeaders))
			r.Use(chiMiddleware(middleware.PrometheusMetrics))

			r.Post("/", h.Chat)
			r.Get("/{session_id}", h.ChatTranscript)
			r.Delete("/{session_id}", h.EndChat)
		})
	}

	return r
}
