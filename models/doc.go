// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines the plain data shared by the ballot core, its
renderers, and the HTTP harness.

# Domain Types

  - Voter: id and display name fixed when a vote starts
  - Participant: a Voter plus the address used to open a private channel
  - Outcome: yes/no tally, verdict, defaulted voters, rule text, notes
  - Status: snapshot of a vote handed to renderers (never display strings)
  - Record: archived summary of a finalized vote

# Constants

Action kinds (rule table rows):

	ActionCC    = "CC"    // A
	ActionScrap = "Scrap" // B
	ActionIrrel = "Irrel" // C
	ActionRemap = "Remap" // D

Choices:

	ChoiceYes = "YES"
	ChoiceNo  = "NO"

Results:

	ResultPassed = "PASSED"
	ResultFailed = "FAILED"

Finalize reasons:

	ReasonTimeout  = "timeout"
	ReasonComplete = "complete"

# Request and Response Types

  - StartVoteRequest / StartVoteResponse: POST /votes
  - InteractionRequest / InteractionResponse: POST /interactions
  - HistoryResponse: GET /history
  - InboxMessage: GET /inbox/{address}
  - ErrorResponse: error, message
*/
package models
