// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the secret ballot API.

# Handler Types

Each handler is a struct built by a constructor around its dependency:

  - VoteHandler: Starting votes and reading open vote status
  - InteractionHandler: Ballot button presses
  - HistoryHandler: Archived outcomes
  - InboxHandler: Messages delivered by the in-memory transport

	votes := handlers.NewVoteHandler(coord, handlers.MemoryRooms(mem))

# Starting a Vote

	POST /votes     → StartVote (returns vote_id and public_message)
	GET  /votes/{id} → GetVote (open votes only)

StartVote validates the room, host, action, turn and details before the
coordinator sees the request. Remap votes are only allowed up to turn 10.
Mentions adjust the voter list: a mentioned member is removed, a mentioned
outsider with an address is added.

Coordinator rejections map to status codes:

	ErrTooFewVoters, ErrUnknownAction → 400
	ErrActiveVote                     → 409
	ErrDMBlocked                      → 422 (names the voter)
	ErrSendFailed                     → 502

# Button Presses

	POST /interactions → Interact

The request carries the pressing actor and the ballot token
(sv:voteId:voterId:YES|NO). A press by anyone other than the ballot's voter
is rejected with 403 before the coordinator is called, so another member
cannot vote on someone else's behalf. Replies never repeat the choice to
anyone but the voter.

The router wraps this route in middleware.VerifySignature.

# History and Inboxes

	GET /history?scope=&limit=   → HistoryHandler.List
	GET /inbox/{address...}      → InboxHandler.Get
*/
package handlers
