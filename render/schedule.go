// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package render

import (
	"context"
	"time"
)

// Schedule is a two-speed tick cadence: every Fast for the first FastFor
// after start, then every Slow.
type Schedule struct {
	Fast    time.Duration
	Slow    time.Duration
	FastFor time.Duration
}

// DefaultSchedule ticks every second for ten seconds, then every two.
var DefaultSchedule = Schedule{
	Fast:    time.Second,
	Slow:    2 * time.Second,
	FastFor: 10 * time.Second,
}

// Next returns the first tick strictly after now. Ticks are anchored on
// start, so a late tick never shifts the ones after it; ticks that were
// missed entirely are skipped.
func (s Schedule) Next(start, now time.Time) time.Time {
	elapsed := now.Sub(start)
	if elapsed < 0 {
		elapsed = -1
	}

	if elapsed < s.FastFor {
		k := elapsed/s.Fast + 1
		if k*s.Fast <= s.FastFor {
			return start.Add(k * s.Fast)
		}
	}

	fastEnd := start.Add(s.FastFor)
	since := elapsed - s.FastFor
	k := since/s.Slow + 1
	if since < 0 {
		k = 1
	}
	return fastEnd.Add(k * s.Slow)
}

// Run calls tick on the schedule until ctx is done.
func (s Schedule) Run(ctx context.Context, start time.Time, tick func()) {
	timer := time.NewTimer(time.Until(s.Next(start, time.Now())))
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			tick()
			timer.Reset(time.Until(s.Next(start, time.Now())))
		}
	}
}
