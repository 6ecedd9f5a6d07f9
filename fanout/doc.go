// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package fanout delivers one private ballot per participant.

Delivery is all-or-nothing. Sends run with bounded concurrency
(DefaultLimit = 10); if any participant cannot be reached, every ballot that
did go out is deleted and a *DeliveryError names the failing participant
with the lowest position in the input list:

	msgs, err := fanout.NewSender(direct, fanout.DefaultLimit, nil).Send(ctx, targets)
	var de *fanout.DeliveryError
	if errors.As(err, &de) {
		// de.VoterID could not be reached
	}
*/
package fanout
