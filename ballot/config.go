// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import (
	"time"

	"github.com/danielhkuo/secretballot/fanout"
	"github.com/danielhkuo/secretballot/render"
)

// DefaultWindow is how long a vote stays open.
const DefaultWindow = 2 * time.Minute

// MinVoters is the smallest electorate a vote may start with.
const MinVoters = 2

// Config holds coordinator settings.
type Config struct {
	// Window is the time from start until non-voters default to YES.
	Window time.Duration
	// FanoutLimit bounds concurrent private sends and edits.
	FanoutLimit int
	// RenderInterval is the minimum spacing between public status edits.
	// Negative disables pacing.
	RenderInterval time.Duration
	// Ticks refresh the public countdown without vote activity.
	Ticks render.Schedule
}

func DefaultConfig() Config {
	return Config{
		Window:         DefaultWindow,
		FanoutLimit:    fanout.DefaultLimit,
		RenderInterval: render.DefaultInterval,
		Ticks:          render.DefaultSchedule,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Window <= 0 {
		c.Window = d.Window
	}
	if c.FanoutLimit <= 0 {
		c.FanoutLimit = d.FanoutLimit
	}
	if c.RenderInterval == 0 {
		c.RenderInterval = d.RenderInterval
	}
	if c.Ticks.Fast <= 0 || c.Ticks.Slow <= 0 {
		c.Ticks = d.Ticks
	}
	return c
}
