// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"slices"
	"testing"
	"time"

	"github.com/danielhkuo/secretballot/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := Open(context.Background(), TypeSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func testRecord(id, scope string, ended time.Time) models.Record {
	return models.Record{
		VoteID:      id,
		ScopeKey:    scope,
		Action:      models.ActionIrrel,
		Turn:        30,
		Details:     "nominate the ferry",
		HostID:      "u1",
		StartedAt:   ended.Add(-2 * time.Minute),
		EndedAt:     ended,
		Reason:      models.ReasonTimeout,
		Yes:         3,
		No:          1,
		Result:      models.ResultPassed,
		Rule:        "Irrel: Simple majority (need 3/4 YES)",
		NonVoterIDs: []string{"u3"},
		Notes:       []string{"Eligible nominees only"},
	}
}

func TestOpen_UnsupportedType(t *testing.T) {
	if _, err := Open(context.Background(), "mysql", "x"); err == nil {
		t.Error("Open(mysql) should fail")
	}
}

func TestCreateSchema_Idempotent(t *testing.T) {
	conn := openTestDB(t)
	if err := CreateSchema(conn); err != nil {
		t.Errorf("second CreateSchema() error = %v", err)
	}
}

func TestArchive_SaveAndList(t *testing.T) {
	conn := openTestDB(t)
	a := NewArchive(conn)
	ctx := context.Background()

	base := time.Date(2025, 5, 1, 18, 0, 0, 0, time.UTC)
	for i, rec := range []models.Record{
		testRecord("v1", "g:r1", base),
		testRecord("v2", "g:r2", base.Add(time.Minute)),
		testRecord("v3", "g:r1", base.Add(2*time.Minute)),
	} {
		if err := a.SaveOutcome(ctx, rec); err != nil {
			t.Fatalf("SaveOutcome(%d) error = %v", i, err)
		}
	}

	all, err := a.ListOutcomes(ctx, "", 0)
	if err != nil {
		t.Fatalf("ListOutcomes() error = %v", err)
	}
	var ids []string
	for _, r := range all {
		ids = append(ids, r.VoteID)
	}
	if !slices.Equal(ids, []string{"v3", "v2", "v1"}) {
		t.Errorf("ListOutcomes() order = %v, want newest first", ids)
	}

	room, err := a.ListOutcomes(ctx, "g:r1", 1)
	if err != nil {
		t.Fatalf("ListOutcomes(g:r1) error = %v", err)
	}
	if len(room) != 1 || room[0].VoteID != "v3" {
		t.Fatalf("ListOutcomes(g:r1, 1) = %+v, want only v3", room)
	}

	got := room[0]
	want := testRecord("v3", "g:r1", base.Add(2*time.Minute))
	if !got.EndedAt.Equal(want.EndedAt) || !got.StartedAt.Equal(want.StartedAt) {
		t.Errorf("times = %v..%v, want %v..%v", got.StartedAt, got.EndedAt, want.StartedAt, want.EndedAt)
	}
	if got.Action != want.Action || got.Reason != want.Reason || got.Result != want.Result {
		t.Errorf("enums = %s/%s/%s", got.Action, got.Reason, got.Result)
	}
	if got.Yes != 3 || got.No != 1 || got.Rule != want.Rule {
		t.Errorf("tally = %d/%d %q", got.Yes, got.No, got.Rule)
	}
	if !slices.Equal(got.NonVoterIDs, want.NonVoterIDs) || !slices.Equal(got.Notes, want.Notes) {
		t.Errorf("lists = %v %v", got.NonVoterIDs, got.Notes)
	}
}

func TestArchive_SaveTwiceIsNoop(t *testing.T) {
	a := NewArchive(openTestDB(t))
	ctx := context.Background()
	rec := testRecord("v1", "g:r1", time.Now())

	if err := a.SaveOutcome(ctx, rec); err != nil {
		t.Fatalf("SaveOutcome() error = %v", err)
	}
	rec.Yes = 99
	if err := a.SaveOutcome(ctx, rec); err != nil {
		t.Fatalf("second SaveOutcome() error = %v", err)
	}

	all, _ := a.ListOutcomes(ctx, "", 10)
	if len(all) != 1 || all[0].Yes != 3 {
		t.Errorf("archive = %+v, want the first save only", all)
	}
}

func TestArchive_NilLists(t *testing.T) {
	a := NewArchive(openTestDB(t))
	ctx := context.Background()
	rec := testRecord("v1", "g:r1", time.Now())
	rec.NonVoterIDs = nil
	rec.Notes = nil

	if err := a.SaveOutcome(ctx, rec); err != nil {
		t.Fatalf("SaveOutcome() error = %v", err)
	}
	all, err := a.ListOutcomes(ctx, "g:r1", 10)
	if err != nil || len(all) != 1 {
		t.Fatalf("ListOutcomes() = %v, %v", all, err)
	}
	if len(all[0].NonVoterIDs) != 0 || len(all[0].Notes) != 0 {
		t.Errorf("lists = %v %v, want empty", all[0].NonVoterIDs, all[0].Notes)
	}
}

func TestArchive_RejectsBadEnum(t *testing.T) {
	a := NewArchive(openTestDB(t))
	rec := testRecord("v1", "g:r1", time.Now())
	rec.Result = "MAYBE"

	if err := a.SaveOutcome(context.Background(), rec); err == nil {
		t.Error("SaveOutcome() with an unknown result should violate the schema")
	}
}

func TestArchive_EmptyList(t *testing.T) {
	a := NewArchive(openTestDB(t))
	all, err := a.ListOutcomes(context.Background(), "nowhere", 5)
	if err != nil {
		t.Fatalf("ListOutcomes() error = %v", err)
	}
	if all == nil || len(all) != 0 {
		t.Errorf("ListOutcomes() = %#v, want empty non-nil slice", all)
	}
}
