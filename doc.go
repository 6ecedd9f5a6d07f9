// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the secret ballot server.

The server runs short secret YES/NO votes for a group sitting in a chat
room. Every voter gets a private ballot with two buttons; the room sees a
live status that shows who has voted but never how. When everyone has
voted, or the window runs out, the outcome is judged against a fixed rule
table and non-voters count as YES.

# Starting the Server

The server reads environment variables, an optional .env file, or CLI flags:

	INTERACTION_SECRET=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -window 2m

# Configuration

Required settings:

  - INTERACTION_SECRET (-secret): HMAC key for signed button presses

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DATABASE_URL (-d): Archive location (default: secretballot.db)
  - VOTE_WINDOW (-window): Time until non-voters default (default: 2m)
  - FANOUT_LIMIT (-fanout): Concurrent private sends (default: 10)
  - RENDER_INTERVAL (-render-interval): Public edit spacing, 0 disables (default: 1s)
  - LOG_LEVEL (-log-level): debug, info, warn or error (default: info)

# Architecture

  - ballot: Vote coordinator (start, record, finalize)
  - rules: Rule table evaluation
  - scope: One active vote per room
  - fanout: Bounded private ballot delivery with rollback
  - render: Paced public status edits and countdown ticks
  - messaging: Transport interfaces and the in-memory transport
  - format: Message content and ballot tokens
  - handlers, router, middleware: HTTP API
  - auth: Interaction signatures
  - db: Outcome archive (SQLite or PostgreSQL)
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
