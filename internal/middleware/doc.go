// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

/*
Package middleware provides HTTP middleware shared by every CalmVerse route.

Key Components:

  - RequestID: X-Request-ID propagation plus logging context
  - PrometheusMetrics: request count, latency and in-flight gauge
  - AccessLog: one structured log line per request, slow requests at warn
  - SecurityHeaders: nosniff, frame denial, referrer policy and HSTS

All middleware uses the func(http.HandlerFunc) http.HandlerFunc shape. The
api package adapts them to chi's r.Use signature:

	r.Use(chiMiddleware(middleware.PrometheusMetrics))

Metrics are labelled with the chi route pattern ("/therapists/{therapist_id}")
rather than the raw path, so per-resource URLs do not explode label
cardinality.
*/
package middleware
