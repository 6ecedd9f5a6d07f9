// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"fmt"
	"strings"
	"time"
)

// ActionKind selects the row of the rule table used to decide a vote.
type ActionKind string

// Action kinds
const (
	ActionCC    ActionKind = "CC"    // A
	ActionScrap ActionKind = "Scrap" // B
	ActionIrrel ActionKind = "Irrel" // C
	ActionRemap ActionKind = "Remap" // D
)

// RemapMaxTurn is the last turn on which a Remap vote may be called.
const RemapMaxTurn = 10

// ParseActionKind accepts either the rule-table letter or the action name.
func ParseActionKind(s string) (ActionKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A", "CC":
		return ActionCC, nil
	case "B", "SCRAP":
		return ActionScrap, nil
	case "C", "IRREL":
		return ActionIrrel, nil
	case "D", "REMAP":
		return ActionRemap, nil
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Valid reports whether a is one of the fixed action kinds.
func (a ActionKind) Valid() bool {
	switch a {
	case ActionCC, ActionScrap, ActionIrrel, ActionRemap:
		return true
	}
	return false
}

// Choice is a single voter's answer.
type Choice string

// Choices
const (
	ChoiceYes Choice = "YES"
	ChoiceNo  Choice = "NO"
)

// Valid reports whether c is YES or NO.
func (c Choice) Valid() bool {
	return c == ChoiceYes || c == ChoiceNo
}

// Result is the pass/fail verdict of a finalized vote.
type Result string

// Results
const (
	ResultPassed Result = "PASSED"
	ResultFailed Result = "FAILED"
)

// FinalizeReason records which trigger closed a vote.
type FinalizeReason string

// Finalize reasons
const (
	ReasonTimeout  FinalizeReason = "timeout"
	ReasonComplete FinalizeReason = "complete"
)

// Domain types

// Voter is an eligible participant as stored on a vote.
type Voter struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Participant is a voter plus the identity used to open a private channel.
type Participant struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Address     string `json:"address"`
}

// Voter strips the delivery address.
func (p Participant) Voter() Voter {
	return Voter{ID: p.ID, DisplayName: p.DisplayName}
}

// Outcome is computed once, when a vote finalizes.
type Outcome struct {
	Yes         int      `json:"yes"`
	No          int      `json:"no"`
	Result      Result   `json:"result"`
	NonVoterIDs []string `json:"non_voter_ids"`
	Rule        string   `json:"rule"`
	Notes       []string `json:"notes,omitempty"`
}

// Passed reports whether the vote passed.
func (o Outcome) Passed() bool {
	return o.Result == ResultPassed
}

// Status is a point-in-time snapshot of a vote handed to renderers.
type Status struct {
	VoteID      string              `json:"vote_id"`
	Action      ActionKind          `json:"action"`
	Turn        int                 `json:"turn"`
	Details     string              `json:"details"`
	HostID      string              `json:"host_id"`
	StartedAt   time.Time           `json:"started_at"`
	EndsAt      time.Time           `json:"ends_at"`
	Now         time.Time           `json:"now"`
	Voters      []Voter             `json:"voters"`
	VotedIDs    map[string]struct{} `json:"-"`
	AwaitingIDs map[string]struct{} `json:"-"`
	IsFinal     bool                `json:"is_final"`
	Outcome     *Outcome            `json:"outcome,omitempty"`
}

// HasVoted reports whether voterID has a recorded choice in the snapshot.
func (s Status) HasVoted(voterID string) bool {
	_, ok := s.VotedIDs[voterID]
	return ok
}

// IsAwaiting reports whether voterID had not voted when the snapshot was taken.
func (s Status) IsAwaiting(voterID string) bool {
	_, ok := s.AwaitingIDs[voterID]
	return ok
}

// Record is the archived summary of a finalized vote.
type Record struct {
	VoteID      string         `json:"vote_id"`
	ScopeKey    string         `json:"scope_key"`
	Action      ActionKind     `json:"action"`
	Turn        int            `json:"turn"`
	Details     string         `json:"details"`
	HostID      string         `json:"host_id"`
	StartedAt   time.Time      `json:"started_at"`
	EndedAt     time.Time      `json:"ended_at"`
	Reason      FinalizeReason `json:"reason"`
	Yes         int            `json:"yes"`
	No          int            `json:"no"`
	Result      Result         `json:"result"`
	Rule        string         `json:"rule"`
	NonVoterIDs []string       `json:"non_voter_ids"`
	Notes       []string       `json:"notes,omitempty"`
}

// Request types

type StartVoteRequest struct {
	CommunityID  string        `json:"community_id"`
	RoomID       string        `json:"room_id"`
	HostID       string        `json:"host_id"`
	Action       string        `json:"action"`
	Turn         int           `json:"turn"`
	Details      string        `json:"details"`
	Participants []Participant `json:"participants"`
	// Mentions toggles room members: members listed here are removed,
	// anyone else listed is added.
	Mentions []Participant `json:"mentions,omitempty"`
}

type InteractionRequest struct {
	ActorID string `json:"actor_id"`
	Token   string `json:"token"`
}

// Response types

type StartVoteResponse struct {
	VoteID        string `json:"vote_id"`
	PublicMessage string `json:"public_message"`
}

// StatusResponse is an open vote's snapshot with its voted and awaiting
// voter ids listed in voter order. Choices are never exposed.
type StatusResponse struct {
	Status
	Voted    []string `json:"voted"`
	Awaiting []string `json:"awaiting"`
}

type InteractionResponse struct {
	Content  string `json:"content"`
	Complete bool   `json:"complete"`
	Choice   Choice `json:"choice,omitempty"`
}

type HistoryResponse struct {
	Records []Record `json:"records"`
}

type InboxMessage struct {
	Locator    string   `json:"locator"`
	Text       string   `json:"text"`
	Components []string `json:"components,omitempty"`
	Deleted    bool     `json:"deleted"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
