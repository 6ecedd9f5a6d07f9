// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package ballot runs secret YES/NO votes among the members of a room.

# Lifecycle

A vote moves RESERVING -> OPEN -> FINALIZED. StartVote reserves the room
(scope.Lock), sends every participant a private ballot (fanout), posts the
public status and only then opens the vote. Any failure along the way deletes
what was already sent and frees the room:

	ErrTooFewVoters    fewer than MinVoters distinct participants
	ErrUnknownAction   action outside CC, Scrap, Irrel, Remap
	ErrActiveVote      the room already has a vote running
	*DMBlockedError    a ballot could not be delivered (matches ErrDMBlocked)
	ErrSendFailed      the public status could not be posted

RecordChoice moves a voter from awaiting to voted exactly once. The first
choice is final; a repeat returns ErrAlreadyVoted.

# Finalize

A vote ends when its window (Config.Window, default two minutes) expires or
when the last awaiting voter answers, whichever comes first. Both triggers
call the same test-and-set on the vote, so the outcome is computed once.
Voters who never answered count as YES. Finalizing:

  - fixes the end time to now and evaluates the outcome (rules.Evaluate)
  - stops the deadline timer and countdown ticks
  - drops the vote from the registry and frees the room for the next vote
  - publishes the final status
  - tells defaulted voters, on their ballot, that they counted as YES
  - archives the outcome, if an Archiver is configured

Ballots of voters who answered are left as they are.

Cleanup failures after the outcome is known are logged and ignored.

# Concurrency

Each vote has its own mutex. The registry and the scope lock each have one
more. Public status edits go through a render.Publisher per vote, so at most
one edit per vote is in flight. Timers and ticks run under the coordinator's
context; Close cancels them and waits.
*/
package ballot
