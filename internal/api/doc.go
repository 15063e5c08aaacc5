// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

/*
Package api is the HTTP surface of CalmVerse.

Routing uses go-chi/chi. Every response, success or failure, is wrapped in
models.APIResponse:

	{"status": "success", "data": {...}, "metadata": {"timestamp": "..."}}

Route groups:

	/                         feature listing
	/songs, /recommend        music recommendations
	/song_details             one resolved song
	/api/books/               book list and recommendations
	/mental-health/chat       assistant conversations (stricter rate limit)
	/journal/...              journal CRUD, prompts and insights
	/therapists/...           directory and appointment booking
	/api/v1/health/...        liveness and readiness probes
	/metrics                  Prometheus exposition

Handlers translate service sentinel errors to HTTP status codes in one
place (errors.go). Unmapped errors become 500 INTERNAL_ERROR with the
underlying message embedded.
*/
package api
