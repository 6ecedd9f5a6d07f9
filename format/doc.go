// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package format renders votes as message content and encodes ballot buttons.

# Tokens

Every ballot button carries a token naming the vote, the voter the ballot
was sent to and the choice:

	sv:<voteId>:<voterId>:YES
	sv:<voteId>:<voterId>:NO

ParseToken rejects other schemes, the wrong number of fields, empty ids and
any choice other than YES or NO.

# Content

Builder satisfies ballot.ContentBuilder. Open votes show a relative
countdown ("Voting ends 2 minutes from now") rendered with go-humanize;
finished votes show a fixed end time, the tally, the rule that decided it
and which voters were counted as YES for not answering. Long sections are
clamped to MaxField runes.
*/
package format
