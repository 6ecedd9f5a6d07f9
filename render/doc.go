// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package render publishes a vote's public status without flooding the
display endpoint.

# Coalescing

A Publisher keeps one edit in flight and at most one pending. Requests that
arrive while an edit is running overwrite the pending slot, so only the
latest status is ever published:

	p := render.NewPublisher(ctx, editPublicMessage, render.Options{})
	p.Request(status)      // any number of times, never blocks
	p.RequestFinal(final)  // always published, nothing after it
	p.Flush(ctx)           // wait for idle

Edits are paced by a token bucket (golang.org/x/time/rate), one edit per
Options.Interval (DefaultInterval = 1s). A negative interval disables pacing.
Render errors are logged and dropped; the next request retries.

# Ticks

Schedule drives countdown refreshes independent of vote activity:

	go render.DefaultSchedule.Run(ctx, startedAt, func() { p.Request(snapshot()) })

DefaultSchedule ticks every second for ten seconds, then every two seconds.
Ticks are anchored on the start time so they do not drift.
*/
package render
