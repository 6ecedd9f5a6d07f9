// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/goleak"

	"github.com/danielhkuo/secretballot/format"
	"github.com/danielhkuo/secretballot/messaging"
	"github.com/danielhkuo/secretballot/models"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// memArchive records every saved outcome.
type memArchive struct {
	mu      sync.Mutex
	records []models.Record
}

func (a *memArchive) SaveOutcome(_ context.Context, rec models.Record) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.records = append(a.records, rec)
	return nil
}

func (a *memArchive) saved() []models.Record {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]models.Record(nil), a.records...)
}

type harness struct {
	c       *Coordinator
	mem     *messaging.Memory
	archive *memArchive
}

func newHarness(t *testing.T, cfg Config, opts ...Option) *harness {
	t.Helper()

	if cfg.Window == 0 {
		cfg.Window = time.Hour
	}
	if cfg.RenderInterval == 0 {
		cfg.RenderInterval = -1
	}

	h := &harness{mem: messaging.NewMemory(), archive: &memArchive{}}
	opts = append([]Option{
		WithArchive(h.archive),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)

	c, err := New(cfg, h.mem, format.Builder{}, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(c.Close)
	h.c = c
	return h
}

func participants(ids ...string) []models.Participant {
	out := make([]models.Participant, len(ids))
	for i, id := range ids {
		out[i] = models.Participant{ID: id, DisplayName: strings.ToUpper(id), Address: "dm/" + id}
	}
	return out
}

func (h *harness) start(t *testing.T, room string, ids ...string) StartResult {
	t.Helper()
	res, err := h.c.StartVote(context.Background(), h.request(room, ids...))
	if err != nil {
		t.Fatalf("StartVote(%s) error = %v", room, err)
	}
	return res
}

func (h *harness) request(room string, ids ...string) StartRequest {
	return StartRequest{
		CommunityID:  "guild",
		RoomID:       room,
		HostID:       "u1",
		Action:       models.ActionScrap,
		Turn:         12,
		Details:      "test vote",
		Participants: participants(ids...),
		Public:       h.mem.Channel("room/" + room),
	}
}

// waitInactive polls until voteID has been finalized.
func (h *harness) waitInactive(t *testing.T, voteID string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for h.c.Active(voteID) {
		if time.Now().After(deadline) {
			t.Fatalf("vote %s still active", voteID)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// waitArchived polls until n outcomes have been archived. Archiving is the
// last finalize step, so private edits are done by then too.
func (h *harness) waitArchived(t *testing.T, n int) []models.Record {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		saved := h.archive.saved()
		if len(saved) >= n {
			return saved
		}
		if time.Now().After(deadline) {
			t.Fatalf("archived %d outcomes, want %d", len(saved), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestStartVote_DeliversBallots(t *testing.T) {
	h := newHarness(t, Config{})
	res := h.start(t, "r1", "u1", "u2", "u3")

	if res.VoteID == "" {
		t.Fatal("StartVote returned an empty vote id")
	}
	for _, id := range []string{"u1", "u2", "u3"} {
		inbox := h.mem.Inbox("dm/" + id)
		if len(inbox) != 1 {
			t.Fatalf("inbox of %s has %d messages, want 1", id, len(inbox))
		}
		comps := inbox[0].Content.Components
		if len(comps) != 2 || comps[0].CustomID != format.FormatToken(res.VoteID, id, models.ChoiceYes) {
			t.Errorf("ballot for %s has components %+v", id, comps)
		}
	}

	public, ok := h.mem.Lookup(res.PublicLocator)
	if !ok {
		t.Fatalf("public message %s not found", res.PublicLocator)
	}
	if !strings.Contains(public.Content.Text, "Awaiting vote") {
		t.Errorf("public status = %q, want awaiting voters", public.Content.Text)
	}

	status, ok := h.c.Status(res.VoteID)
	if !ok {
		t.Fatal("Status() reports vote not active")
	}
	if len(status.AwaitingIDs) != 3 || len(status.VotedIDs) != 0 {
		t.Errorf("status awaiting=%d voted=%d, want 3/0", len(status.AwaitingIDs), len(status.VotedIDs))
	}
	if got := status.EndsAt.Sub(status.StartedAt); got != time.Hour {
		t.Errorf("window = %v, want 1h", got)
	}
}

func TestStartVote_Rejections(t *testing.T) {
	h := newHarness(t, Config{})

	tests := []struct {
		name    string
		modify  func(*StartRequest)
		wantErr error
	}{
		{
			name:    "no participants",
			modify:  func(r *StartRequest) { r.Participants = nil },
			wantErr: ErrTooFewVoters,
		},
		{
			name:    "one participant",
			modify:  func(r *StartRequest) { r.Participants = participants("u1") },
			wantErr: ErrTooFewVoters,
		},
		{
			name:    "duplicates collapse to one",
			modify:  func(r *StartRequest) { r.Participants = participants("u1", "u1", "u1") },
			wantErr: ErrTooFewVoters,
		},
		{
			name:    "unknown action",
			modify:  func(r *StartRequest) { r.Action = "E" },
			wantErr: ErrUnknownAction,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := h.request("r1", "u1", "u2")
			tt.modify(&req)

			_, err := h.c.StartVote(context.Background(), req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("StartVote() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	// None of the rejections may leave the room reserved
	h.start(t, "r1", "u1", "u2")
}

func TestStartVote_ActiveVote(t *testing.T) {
	h := newHarness(t, Config{})
	first := h.start(t, "r1", "u1", "u2")

	_, err := h.c.StartVote(context.Background(), h.request("r1", "u3", "u4"))
	if !errors.Is(err, ErrActiveVote) {
		t.Fatalf("second StartVote() error = %v, want ErrActiveVote", err)
	}
	if len(h.mem.Inbox("dm/u3")) != 0 {
		t.Error("rejected vote still sent a ballot")
	}

	// Other rooms are independent
	h.start(t, "r2", "u3", "u4")

	// Finishing the first vote frees the room immediately
	for _, id := range []string{"u1", "u2"} {
		if _, err := h.c.RecordChoice(context.Background(), first.VoteID, id, models.ChoiceYes); err != nil {
			t.Fatalf("RecordChoice(%s) error = %v", id, err)
		}
	}
	h.start(t, "r1", "u1", "u2")
}

func TestStartVote_DMBlockedRollsBack(t *testing.T) {
	h := newHarness(t, Config{FanoutLimit: 1})
	h.mem.FailOpen("dm/u2", messaging.ErrChannelClosed)

	_, err := h.c.StartVote(context.Background(), h.request("r1", "u1", "u2", "u3"))
	if !errors.Is(err, ErrDMBlocked) {
		t.Fatalf("StartVote() error = %v, want ErrDMBlocked", err)
	}
	var dm *DMBlockedError
	if !errors.As(err, &dm) {
		t.Fatalf("error %T is not *DMBlockedError", err)
	}
	if dm.VoterID != "u2" || dm.DisplayName != "U2" {
		t.Errorf("blocked voter = %s (%s), want u2 (U2)", dm.VoterID, dm.DisplayName)
	}
	if !errors.Is(err, messaging.ErrChannelClosed) {
		t.Errorf("error does not wrap the transport failure: %v", err)
	}

	inbox := h.mem.Inbox("dm/u1")
	if len(inbox) != 1 || !inbox[0].Deleted {
		t.Errorf("first ballot not deleted: %+v", inbox)
	}
	if n := len(h.mem.Inbox("room/r1")); n != 0 {
		t.Errorf("public status posted %d times, want 0", n)
	}

	h.mem.FailOpen("dm/u2", nil)
	h.start(t, "r1", "u1", "u2", "u3")
}

func TestStartVote_SendFailedRollsBack(t *testing.T) {
	h := newHarness(t, Config{})
	h.mem.FailSend("room/r1", errors.New("missing permissions"))

	_, err := h.c.StartVote(context.Background(), h.request("r1", "u1", "u2"))
	if !errors.Is(err, ErrSendFailed) {
		t.Fatalf("StartVote() error = %v, want ErrSendFailed", err)
	}
	for _, id := range []string{"u1", "u2"} {
		inbox := h.mem.Inbox("dm/" + id)
		if len(inbox) != 1 || !inbox[0].Deleted {
			t.Errorf("ballot for %s not deleted: %+v", id, inbox)
		}
	}

	h.mem.FailSend("room/r1", nil)
	h.start(t, "r1", "u1", "u2")
}

func TestRecordChoice_Rejections(t *testing.T) {
	h := newHarness(t, Config{})
	res := h.start(t, "r1", "u1", "u2", "u3")
	ctx := context.Background()

	if _, err := h.c.RecordChoice(ctx, "missing", "u1", models.ChoiceYes); !errors.Is(err, ErrNotActive) {
		t.Errorf("unknown vote error = %v, want ErrNotActive", err)
	}
	if _, err := h.c.RecordChoice(ctx, res.VoteID, "u9", models.ChoiceYes); !errors.Is(err, ErrNotEligible) {
		t.Errorf("outsider error = %v, want ErrNotEligible", err)
	}
	if _, err := h.c.RecordChoice(ctx, res.VoteID, "u1", "MAYBE"); !errors.Is(err, ErrInvalidChoice) {
		t.Errorf("bad choice error = %v, want ErrInvalidChoice", err)
	}

	got, err := h.c.RecordChoice(ctx, res.VoteID, "u1", models.ChoiceNo)
	if err != nil {
		t.Fatalf("first RecordChoice() error = %v", err)
	}
	if got.Complete || got.Choice != models.ChoiceNo {
		t.Errorf("RecordChoice() = %+v, want NO and not complete", got)
	}

	if _, err := h.c.RecordChoice(ctx, res.VoteID, "u1", models.ChoiceYes); !errors.Is(err, ErrAlreadyVoted) {
		t.Errorf("second RecordChoice() error = %v, want ErrAlreadyVoted", err)
	}

	status, _ := h.c.Status(res.VoteID)
	if !status.HasVoted("u1") || status.IsAwaiting("u1") {
		t.Error("u1 should be voted and not awaiting")
	}
}

func TestRecordChoice_CompleteFinalizes(t *testing.T) {
	h := newHarness(t, Config{})
	res := h.start(t, "r1", "u1", "u2", "u3")
	ctx := context.Background()

	choices := map[string]models.Choice{"u1": models.ChoiceYes, "u2": models.ChoiceYes, "u3": models.ChoiceNo}
	var last RecordResult
	for _, id := range []string{"u1", "u2", "u3"} {
		var err error
		if last, err = h.c.RecordChoice(ctx, res.VoteID, id, choices[id]); err != nil {
			t.Fatalf("RecordChoice(%s) error = %v", id, err)
		}
	}
	if !last.Complete {
		t.Fatal("last RecordChoice() should report complete")
	}
	if h.c.Active(res.VoteID) {
		t.Error("vote still active after the last choice")
	}
	if _, err := h.c.RecordChoice(ctx, res.VoteID, "u1", models.ChoiceYes); !errors.Is(err, ErrNotActive) {
		t.Errorf("RecordChoice after finalize error = %v, want ErrNotActive", err)
	}

	saved := h.archive.saved()
	if len(saved) != 1 {
		t.Fatalf("archived %d outcomes, want 1", len(saved))
	}
	rec := saved[0]
	if rec.Reason != models.ReasonComplete || rec.Yes != 2 || rec.No != 1 || rec.Result != models.ResultPassed {
		t.Errorf("archived %+v, want complete 2/1 PASSED", rec)
	}
	if len(rec.NonVoterIDs) != 0 {
		t.Errorf("non voters = %v, want none", rec.NonVoterIDs)
	}

	public, _ := h.mem.Lookup(res.PublicLocator)
	if !strings.Contains(public.Content.Text, "Outcome: **PASSED**") {
		t.Errorf("final public status = %q", public.Content.Text)
	}
	// Everyone answered, so no ballot is touched
	for _, id := range []string{"u1", "u2", "u3"} {
		ballot := h.mem.Inbox("dm/" + id)[0]
		if ballot.Edits != 0 || len(ballot.Content.Components) != 2 {
			t.Errorf("ballot for %s was overwritten: %+v", id, ballot)
		}
	}
}

func TestTimeout_DefaultsNonVotersToYes(t *testing.T) {
	h := newHarness(t, Config{Window: 50 * time.Millisecond})
	res := h.start(t, "r1", "u1", "u2", "u3")

	if _, err := h.c.RecordChoice(context.Background(), res.VoteID, "u1", models.ChoiceNo); err != nil {
		t.Fatalf("RecordChoice() error = %v", err)
	}
	h.waitInactive(t, res.VoteID)

	saved := h.waitArchived(t, 1)
	if len(saved) != 1 {
		t.Fatalf("archived %d outcomes, want 1", len(saved))
	}
	rec := saved[0]
	if rec.Reason != models.ReasonTimeout {
		t.Errorf("reason = %s, want timeout", rec.Reason)
	}
	if rec.Yes != 2 || rec.No != 1 {
		t.Errorf("tally = %d/%d, want 2 YES 1 NO", rec.Yes, rec.No)
	}
	if fmt.Sprint(rec.NonVoterIDs) != "[u2 u3]" {
		t.Errorf("non voters = %v, want [u2 u3]", rec.NonVoterIDs)
	}
	if !rec.EndedAt.Before(rec.StartedAt.Add(time.Hour)) {
		t.Errorf("ended at %v should be the finalize time", rec.EndedAt)
	}

	if voted := h.mem.Inbox("dm/u1")[0]; voted.Edits != 0 {
		t.Errorf("ballot of voter u1 was overwritten: %+v", voted)
	}
	for _, id := range []string{"u2", "u3"} {
		ballot := h.mem.Inbox("dm/" + id)[0]
		if ballot.Content.Text != format.DefaultedNotice || len(ballot.Content.Components) != 0 {
			t.Errorf("ballot for %s = %+v, want the defaulted notice without controls", id, ballot.Content)
		}
	}
}

func TestTimeout_CountsFromStart(t *testing.T) {
	// Delivery appears to take almost the whole window
	base := time.Now()
	var (
		mu    sync.Mutex
		calls int
	)
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		calls++
		if calls == 1 {
			return base
		}
		return base.Add(time.Hour - 20*time.Millisecond)
	}

	h := newHarness(t, Config{Window: time.Hour}, WithClock(clock))
	res := h.start(t, "r1", "u1", "u2")
	h.waitInactive(t, res.VoteID)

	saved := h.waitArchived(t, 1)
	if len(saved) != 1 || saved[0].Reason != models.ReasonTimeout {
		t.Fatalf("archived %+v, want one timeout outcome", saved)
	}
}

func TestFinalize_BestEffortCleanup(t *testing.T) {
	h := newHarness(t, Config{Window: 50 * time.Millisecond})
	res := h.start(t, "r1", "u1", "u2", "u3")
	h.mem.FailEdits("dm/u2", errors.New("dm closed"))
	h.mem.FailEdits("room/r1", errors.New("message gone"))

	if _, err := h.c.RecordChoice(context.Background(), res.VoteID, "u1", models.ChoiceYes); err != nil {
		t.Fatalf("RecordChoice() error = %v", err)
	}
	h.waitInactive(t, res.VoteID)
	h.waitArchived(t, 1)
	if got := h.mem.Inbox("dm/u3")[0].Content.Text; got != format.DefaultedNotice {
		t.Errorf("u3 ballot = %q, want defaulted notice", got)
	}
	h.start(t, "r1", "u1", "u2")
}

func TestFinalize_FreesRoomBeforeFinalRender(t *testing.T) {
	// The final public edit waits on the limiter long after the vote ends
	h := newHarness(t, Config{Window: 50 * time.Millisecond, RenderInterval: time.Hour})
	res := h.start(t, "r1", "u1", "u2")

	if _, err := h.c.RecordChoice(context.Background(), res.VoteID, "u1", models.ChoiceYes); err != nil {
		t.Fatalf("RecordChoice() error = %v", err)
	}
	h.waitInactive(t, res.VoteID)

	if n := h.c.OpenVotes(); n != 0 {
		t.Fatalf("OpenVotes() = %d, want 0", n)
	}
	if _, err := h.c.StartVote(context.Background(), h.request("r1", "u1", "u2")); err != nil {
		t.Fatalf("StartVote in a room whose vote just ended: %v", err)
	}
}

func TestRecordChoice_ConcurrentVoters(t *testing.T) {
	h := newHarness(t, Config{})

	ids := make([]string, 40)
	for i := range ids {
		ids[i] = fmt.Sprintf("u%d", i)
	}
	res := h.start(t, "r1", ids...)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
		complete int
	)
	for _, id := range ids {
		// Every voter presses twice at once
		for range 2 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got, err := h.c.RecordChoice(context.Background(), res.VoteID, id, models.ChoiceYes)
				mu.Lock()
				defer mu.Unlock()
				if err == nil {
					accepted++
					if got.Complete {
						complete++
					}
				} else if !errors.Is(err, ErrAlreadyVoted) && !errors.Is(err, ErrNotActive) {
					t.Errorf("RecordChoice(%s) error = %v", id, err)
				}
			}()
		}
	}
	wg.Wait()

	if accepted != len(ids) {
		t.Errorf("accepted %d choices, want %d", accepted, len(ids))
	}
	if complete != 1 {
		t.Errorf("%d calls reported complete, want 1", complete)
	}
	saved := h.archive.saved()
	if len(saved) != 1 || saved[0].Yes != len(ids) {
		t.Errorf("archive = %+v, want one unanimous outcome", saved)
	}
}

func TestFinalize_RacesTimeoutAndLastChoice(t *testing.T) {
	for i := range 20 {
		h := newHarness(t, Config{Window: 2 * time.Millisecond})
		res := h.start(t, fmt.Sprintf("r%d", i), "u1", "u2")

		_, _ = h.c.RecordChoice(context.Background(), res.VoteID, "u1", models.ChoiceYes)
		_, _ = h.c.RecordChoice(context.Background(), res.VoteID, "u2", models.ChoiceNo)
		h.waitInactive(t, res.VoteID)
		h.c.Close()

		if n := len(h.archive.saved()); n != 1 {
			t.Fatalf("iteration %d archived %d outcomes, want 1", i, n)
		}
	}
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := newHarness(t, Config{}, WithRegisterer(reg))

	res := h.start(t, "r1", "u1", "u2")
	if _, err := h.c.StartVote(context.Background(), h.request("r1", "u1", "u2")); !errors.Is(err, ErrActiveVote) {
		t.Fatalf("StartVote() error = %v, want ErrActiveVote", err)
	}
	if got := promtest.ToFloat64(h.c.metrics.active); got != 1 {
		t.Errorf("active votes = %v, want 1", got)
	}

	for _, id := range []string{"u1", "u2"} {
		if _, err := h.c.RecordChoice(context.Background(), res.VoteID, id, models.ChoiceNo); err != nil {
			t.Fatalf("RecordChoice(%s) error = %v", id, err)
		}
	}

	checks := []struct {
		name string
		c    prometheus.Collector
		want float64
	}{
		{"started", h.c.metrics.started, 1},
		{"active", h.c.metrics.active, 0},
		{"choices", h.c.metrics.choices, 2},
		{"rejected active_vote", h.c.metrics.rejected.WithLabelValues("active_vote"), 1},
		{"finalized complete FAILED", h.c.metrics.finalized.WithLabelValues("complete", "FAILED"), 1},
	}
	for _, tt := range checks {
		if got := promtest.ToFloat64(tt.c); got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, got, tt.want)
		}
	}

	// A second coordinator on the same registry must fail to register
	if _, err := New(Config{}, h.mem, format.Builder{}, WithRegisterer(reg)); err == nil {
		t.Error("New() with a used registerer should fail")
	}
}

func TestClose_StopsOpenVotes(t *testing.T) {
	h := newHarness(t, Config{Window: 20 * time.Millisecond})
	res := h.start(t, "r1", "u1", "u2")

	h.c.Close()
	time.Sleep(40 * time.Millisecond)

	// The deadline never fired, so nothing was finalized
	if !h.c.Active(res.VoteID) {
		t.Error("Close() finalized the vote")
	}
	if n := len(h.archive.saved()); n != 0 {
		t.Errorf("archived %d outcomes after Close, want 0", n)
	}
}
