// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielhkuo/secretballot/models"
)

// DefaultListLimit caps ListOutcomes when no limit is given.
const DefaultListLimit = 50

// Archive stores finalized vote outcomes.
type Archive struct {
	db *sql.DB
}

func NewArchive(db *sql.DB) *Archive {
	return &Archive{db: db}
}

// SaveOutcome inserts rec. Saving the same vote twice is a no-op.
func (a *Archive) SaveOutcome(ctx context.Context, rec models.Record) error {
	nonVoters, err := json.Marshal(nonNil(rec.NonVoterIDs))
	if err != nil {
		return fmt.Errorf("encode non voters: %w", err)
	}
	notes, err := json.Marshal(nonNil(rec.Notes))
	if err != nil {
		return fmt.Errorf("encode notes: %w", err)
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO vote_outcome (vote_id, scope_key, action, turn, details, host_id,
			started_at, ended_at, reason, yes_count, no_count, result, rule, non_voter_ids, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (vote_id) DO NOTHING
	`, rec.VoteID, rec.ScopeKey, string(rec.Action), rec.Turn, rec.Details, rec.HostID,
		rec.StartedAt.UnixMilli(), rec.EndedAt.UnixMilli(), string(rec.Reason),
		rec.Yes, rec.No, string(rec.Result), rec.Rule, string(nonVoters), string(notes))
	if err != nil {
		return fmt.Errorf("failed to save outcome %s: %w", rec.VoteID, err)
	}
	return nil
}

// ListOutcomes returns the most recent outcomes, newest first. An empty
// scopeKey lists every room.
func (a *Archive) ListOutcomes(ctx context.Context, scopeKey string, limit int) ([]models.Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	const cols = `vote_id, scope_key, action, turn, details, host_id, started_at, ended_at,
		reason, yes_count, no_count, result, rule, non_voter_ids, notes`

	var (
		rows *sql.Rows
		err  error
	)
	if scopeKey == "" {
		rows, err = a.db.QueryContext(ctx, `
			SELECT `+cols+` FROM vote_outcome
			ORDER BY ended_at DESC, vote_id
			LIMIT $1
		`, limit)
	} else {
		rows, err = a.db.QueryContext(ctx, `
			SELECT `+cols+` FROM vote_outcome
			WHERE scope_key = $1
			ORDER BY ended_at DESC, vote_id
			LIMIT $2
		`, scopeKey, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}
	defer rows.Close()

	records := []models.Record{}
	for rows.Next() {
		var (
			rec                    models.Record
			action, reason, result string
			started, ended         int64
			nonVoters, notes       string
		)
		if err := rows.Scan(&rec.VoteID, &rec.ScopeKey, &action, &rec.Turn, &rec.Details, &rec.HostID,
			&started, &ended, &reason, &rec.Yes, &rec.No, &result, &rec.Rule, &nonVoters, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		rec.Action = models.ActionKind(action)
		rec.Reason = models.FinalizeReason(reason)
		rec.Result = models.Result(result)
		rec.StartedAt = time.UnixMilli(started).UTC()
		rec.EndedAt = time.UnixMilli(ended).UTC()
		if err := json.Unmarshal([]byte(nonVoters), &rec.NonVoterIDs); err != nil {
			return nil, fmt.Errorf("decode non voters of %s: %w", rec.VoteID, err)
		}
		if err := json.Unmarshal([]byte(notes), &rec.Notes); err != nil {
			return nil, fmt.Errorf("decode notes of %s: %w", rec.VoteID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list outcomes: %w", err)
	}
	return records, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
