// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db archives finalized votes.

# Connecting

Open picks the driver from the database type, pings and creates the schema:

	conn, err := db.Open(ctx, "sqlite", "secretballot.db")     // modernc.org/sqlite
	conn, err := db.Open(ctx, "postgres", "postgres://...")    // github.com/lib/pq

SQLite connections are limited to one open connection so ":memory:" works
in tests.

# Schema Creation

CreateSchema is safe to call multiple times - uses IF NOT EXISTS. There is
one table:

  - vote_outcome: one row per finalized vote, keyed by vote id

Times are stored as unix milliseconds (BIGINT) and the non-voter and note
lists as JSON text, so the same DDL and queries run on both drivers.

# Archive

Archive satisfies ballot.Archiver:

	archive := db.NewArchive(conn)
	err := archive.SaveOutcome(ctx, record)          // duplicate ids ignored
	recs, err := archive.ListOutcomes(ctx, scope, 20) // newest first

An empty scope lists every room. A limit of 0 means DefaultListLimit.
*/
package db
