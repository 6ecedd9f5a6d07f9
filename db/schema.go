// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Times are unix milliseconds and lists are JSON arrays so the same DDL
// runs on SQLite and PostgreSQL.
const schema = `
-- Finalized votes
CREATE TABLE IF NOT EXISTS vote_outcome (
    vote_id TEXT PRIMARY KEY,
    scope_key TEXT NOT NULL,
    action TEXT NOT NULL CHECK (action IN ('CC', 'Scrap', 'Irrel', 'Remap')),
    turn INTEGER NOT NULL,
    details TEXT NOT NULL,
    host_id TEXT NOT NULL,
    started_at BIGINT NOT NULL,
    ended_at BIGINT NOT NULL,
    reason TEXT NOT NULL CHECK (reason IN ('timeout', 'complete')),
    yes_count INTEGER NOT NULL,
    no_count INTEGER NOT NULL,
    result TEXT NOT NULL CHECK (result IN ('PASSED', 'FAILED')),
    rule TEXT NOT NULL,
    non_voter_ids TEXT NOT NULL DEFAULT '[]',
    notes TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_vote_outcome_scope ON vote_outcome(scope_key, ended_at);
CREATE INDEX IF NOT EXISTS idx_vote_outcome_ended ON vote_outcome(ended_at);
`
