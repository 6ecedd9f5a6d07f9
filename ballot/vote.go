// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"context"
	"sync"
	"time"

	"github.com/danielhkuo/secretballot/messaging"
	"github.com/danielhkuo/secretballot/models"
	"github.com/danielhkuo/secretballot/render"
	"github.com/danielhkuo/secretballot/rules"
)

// Vote is one secret ballot. Identity fields are fixed at creation; the
// choice bookkeeping is guarded by mu.
type Vote struct {
	id        string
	scopeKey  string
	action    models.ActionKind
	turn      int
	details   string
	hostID    string
	voters    []models.Voter
	eligible  map[string]bool
	startedAt time.Time

	mu        sync.Mutex
	endsAt    time.Time
	votes     map[string]models.Choice
	awaiting  map[string]struct{}
	finalized bool
	reason    models.FinalizeReason
	outcome   *models.Outcome

	// Set once before the vote is registered, read-only afterwards
	ballots   map[string]messaging.Message
	publisher *render.Publisher
	halt      context.CancelFunc
}

func newVote(id, scopeKey string, req StartRequest, voters []models.Voter, startedAt, endsAt time.Time) *Vote {
	v := &Vote{
		id:        id,
		scopeKey:  scopeKey,
		action:    req.Action,
		turn:      req.Turn,
		details:   req.Details,
		hostID:    req.HostID,
		voters:    voters,
		eligible:  make(map[string]bool, len(voters)),
		startedAt: startedAt,
		endsAt:    endsAt,
		votes:     make(map[string]models.Choice, len(voters)),
		awaiting:  make(map[string]struct{}, len(voters)),
	}
	for _, voter := range voters {
		v.eligible[voter.ID] = true
		v.awaiting[voter.ID] = struct{}{}
	}
	return v
}

func (v *Vote) ID() string { return v.id }

func (v *Vote) ScopeKey() string { return v.scopeKey }

// record moves voterID from awaiting to votes. complete is true when this
// choice was the last one outstanding.
func (v *Vote) record(voterID string, choice models.Choice) (complete bool, err error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.finalized {
		return false, ErrNotActive
	}
	if !v.eligible[voterID] {
		return false, ErrNotEligible
	}
	if _, waiting := v.awaiting[voterID]; !waiting {
		return false, ErrAlreadyVoted
	}

	v.votes[voterID] = choice
	delete(v.awaiting, voterID)
	return len(v.awaiting) == 0, nil
}

// finalize closes the vote and computes its outcome. Only the first caller
// gets ok == true; every later call is a no-op. defaulted lists the voters
// still awaiting at that moment, in voter order.
func (v *Vote) finalize(now time.Time, reason models.FinalizeReason) (outcome models.Outcome, defaulted []string, ok bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.finalized {
		return models.Outcome{}, nil, false
	}
	v.finalized = true
	v.reason = reason
	v.endsAt = now

	ids := make([]string, len(v.voters))
	for i, voter := range v.voters {
		ids[i] = voter.ID
	}
	out := rules.Evaluate(v.action, v.turn, ids, v.votes)
	v.outcome = &out

	return out, out.NonVoterIDs, true
}

// Finalized reports whether the vote has closed.
func (v *Vote) Finalized() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.finalized
}

// Snapshot copies the vote's current state for renderers.
func (v *Vote) Snapshot(now time.Time) models.Status {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked(now)
}

// openSnapshot is Snapshot for votes that are still open.
func (v *Vote) openSnapshot(now time.Time) (models.Status, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.finalized {
		return models.Status{}, false
	}
	return v.snapshotLocked(now), true
}

func (v *Vote) snapshotLocked(now time.Time) models.Status {
	s := models.Status{
		VoteID:      v.id,
		Action:      v.action,
		Turn:        v.turn,
		Details:     v.details,
		HostID:      v.hostID,
		StartedAt:   v.startedAt,
		EndsAt:      v.endsAt,
		Now:         now,
		Voters:      append([]models.Voter(nil), v.voters...),
		VotedIDs:    make(map[string]struct{}, len(v.votes)),
		AwaitingIDs: make(map[string]struct{}, len(v.awaiting)),
		IsFinal:     v.finalized,
	}
	for id := range v.votes {
		s.VotedIDs[id] = struct{}{}
	}
	for id := range v.awaiting {
		s.AwaitingIDs[id] = struct{}{}
	}
	if v.outcome != nil {
		out := *v.outcome
		s.Outcome = &out
	}
	return s
}

// archiveRecord is the archive row for a finalized vote.
func (v *Vote) archiveRecord() models.Record {
	v.mu.Lock()
	defer v.mu.Unlock()

	r := models.Record{
		VoteID:    v.id,
		ScopeKey:  v.scopeKey,
		Action:    v.action,
		Turn:      v.turn,
		Details:   v.details,
		HostID:    v.hostID,
		StartedAt: v.startedAt,
		EndedAt:   v.endsAt,
		Reason:    v.reason,
	}
	if v.outcome != nil {
		r.Yes = v.outcome.Yes
		r.No = v.outcome.No
		r.Result = v.outcome.Result
		r.Rule = v.outcome.Rule
		r.NonVoterIDs = v.outcome.NonVoterIDs
		r.Notes = v.outcome.Notes
	}
	return r
}
