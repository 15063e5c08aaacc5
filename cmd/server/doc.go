// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

/*
Package main is the entry point for the CalmVerse server.

CalmVerse serves five wellness features behind one HTTP API: song
recommendations from a precomputed similarity matrix, book recommendations
backed by SQLite, a mental-health chat assistant with crisis detection,
private journaling with prompts and insights, and a therapist directory with
slot-based appointment booking.

# Application Architecture

Long-running components run under a Suture v4 supervisor tree:

	RootSupervisor ("calmverse")
	├── DataSupervisor ("data-layer")
	│   └── Badger value-log GC (periodic)
	├── BackgroundSupervisor ("background-layer")
	│   └── Therapist availability refresh (periodic)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog, JSON or console output
 3. Storage: BadgerDB for therapy, journal and chat sessions
 4. Features: music dataset, book store, chat provider, journal, therapy
 5. HTTP Server: Chi router with CORS, rate limiting and Prometheus metrics

A feature whose backing data is unavailable is still started where it can
degrade gracefully: a missing song dataset answers 503, a missing book index
falls back to the first books in the table, and chat without a provider still
answers crisis messages with emergency resources.

# Configuration

Configuration is loaded via Koanf v2 (highest priority wins):
  - Environment variables (SERVER_PORT, CHAT_API_KEY, THERAPY_TIMEZONE, ...)
  - Config file (config.yaml, or the path in CONFIG_PATH)
  - Built-in defaults

# Signal Handling

SIGINT and SIGTERM cancel the root context. The supervisor stops the HTTP
server first, waits for in-flight requests, then stops the background and
data layers. Services that miss the shutdown timeout are logged.
*/
package main
