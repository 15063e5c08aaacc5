// CalmVerse - Wellness Backend for Music, Books, Chat, Journaling and Therapy
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/calmverse

/*
Package cache provides in-memory data structures shared by the feature
packages.

  - Matcher: an Aho-Corasick automaton for multi-keyword search. The chat
    service uses it for crisis-keyword detection, one pass over the message
    regardless of how many keywords are configured.
  - LRU: a bounded, TTL-aware least-recently-used cache. The Spotify
    catalog uses it so repeated recommendations do not re-query the API.

Both types are safe for concurrent use.
*/
package cache
