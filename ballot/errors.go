// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"errors"
	"fmt"
)

// StartVote rejections
var (
	ErrTooFewVoters  = errors.New("a secret vote requires at least 2 eligible voters")
	ErrActiveVote    = errors.New("a secret vote is already running for that room")
	ErrDMBlocked     = errors.New("participant cannot receive private messages")
	ErrSendFailed    = errors.New("could not post the public vote status")
	ErrUnknownAction = errors.New("unknown vote action")
)

// RecordChoice rejections
var (
	ErrNotActive     = errors.New("this vote is no longer active")
	ErrNotEligible   = errors.New("not eligible to vote in this poll")
	ErrAlreadyVoted  = errors.New("vote already recorded")
	ErrInvalidChoice = errors.New("choice must be YES or NO")
)

// DMBlockedError names the participant whose private ballot could not be
// delivered. It matches ErrDMBlocked with errors.Is.
type DMBlockedError struct {
	VoterID     string
	DisplayName string
	Err         error
}

func (e *DMBlockedError) Error() string {
	name := e.DisplayName
	if name == "" {
		name = e.VoterID
	}
	return fmt.Sprintf("cannot start vote: could not DM %s: %v", name, e.Err)
}

func (e *DMBlockedError) Is(target error) bool { return target == ErrDMBlocked }

func (e *DMBlockedError) Unwrap() error { return e.Err }

// kind is the metrics label for a rejection.
func kind(err error) string {
	var dm *DMBlockedError
	switch {
	case errors.As(err, &dm):
		return "dm_blocked"
	case errors.Is(err, ErrTooFewVoters):
		return "too_few_voters"
	case errors.Is(err, ErrActiveVote):
		return "active_vote"
	case errors.Is(err, ErrSendFailed):
		return "send_failed"
	case errors.Is(err, ErrUnknownAction):
		return "unknown_action"
	case errors.Is(err, ErrNotActive):
		return "not_active"
	case errors.Is(err, ErrNotEligible):
		return "not_eligible"
	case errors.Is(err, ErrAlreadyVoted):
		return "already_voted"
	case errors.Is(err, ErrInvalidChoice):
		return "invalid_choice"
	}
	return "other"
}
