// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package format

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/secretballot/messaging"
	"github.com/danielhkuo/secretballot/models"
)

// MaxField is the longest block of text a display section may hold.
const MaxField = 1024

// Fixed message texts
const (
	DefaultedNotice = "⏱️ You didn’t vote in time. Your vote was counted as YES."
	DefaultPolicy   = "Voting is by DM. If you don’t vote before the timer ends, you’ll be counted as YES."
)

// Component styles
const (
	StyleSuccess = "success"
	StyleDanger  = "danger"
)

// Builder renders vote snapshots as plain-text messages with button
// components. The zero value is ready to use.
type Builder struct {
	// TimeLayout formats the fixed end time of a finished vote.
	// Empty means time.RFC1123.
	TimeLayout string
}

// Ballot is the private message sent to voterID.
func (b Builder) Ballot(s models.Status, voterID string) messaging.Content {
	lines := []string{
		fmt.Sprintf("🔒 Secret vote started by **%s**.", hostName(s)),
		fmt.Sprintf("Action: **%s** • Turn: **%d**", s.Action, s.Turn),
		"Details: " + orDash(s.Details),
		"",
		DefaultPolicy,
	}
	return messaging.Content{
		Text: strings.Join(lines, "\n"),
		Components: []messaging.Component{
			{Label: "YES", CustomID: FormatToken(s.VoteID, voterID, models.ChoiceYes), Style: StyleSuccess},
			{Label: "NO", CustomID: FormatToken(s.VoteID, voterID, models.ChoiceNo), Style: StyleDanger},
		},
	}
}

// Defaulted replaces the ballot of a voter who never answered.
func (b Builder) Defaulted(models.Status, string) messaging.Content {
	return messaging.Content{Text: DefaultedNotice}
}

// PublicStatus is the room-visible display. Open votes show a countdown;
// finished votes show a fixed end time and the result.
func (b Builder) PublicStatus(s models.Status) messaging.Content {
	var sb strings.Builder
	sb.WriteString("🔒 Secret Vote\n")
	fmt.Fprintf(&sb, "**Action:** %s\n**Turn:** %d\n\n", s.Action, s.Turn)
	fmt.Fprintf(&sb, "**Details:** %s\n\n", Clamp(orDash(strings.TrimSpace(s.Details)), 900))
	fmt.Fprintf(&sb, "Started by %s\n", hostName(s))

	if s.IsFinal {
		// No relative times once ended, they would read "ended 3 hours ago"
		fmt.Fprintf(&sb, "Vote ended • Ended at %s\n", s.EndsAt.Format(b.layout()))
	} else {
		fmt.Fprintf(&sb, "Voting ends %s (started %s)\n", Countdown(s.EndsAt, s.Now), humanize.RelTime(s.StartedAt, s.Now, "ago", "from now"))
	}

	section(&sb, "Voters", voterLines(s))

	if s.IsFinal && s.Outcome != nil {
		o := s.Outcome
		section(&sb, "Results", fmt.Sprintf("YES: **%d**\nNO: **%d**\nOutcome: **%s**\nRule: %s", o.Yes, o.No, o.Result, o.Rule))
		section(&sb, "No response (counted as YES)", nonVoterLines(s, o.NonVoterIDs))
		if len(o.Notes) > 0 {
			section(&sb, "Notes", Clamp(strings.Join(o.Notes, "\n"), MaxField))
		}
	} else {
		sb.WriteString("\n" + DefaultPolicy)
	}

	return messaging.Content{Text: strings.TrimRight(sb.String(), "\n")}
}

func (b Builder) layout() string {
	if b.TimeLayout == "" {
		return time.RFC1123
	}
	return b.TimeLayout
}

// Countdown renders the time left until end, e.g. "2 minutes from now".
func Countdown(end, now time.Time) string {
	if !end.After(now) {
		return "now"
	}
	return humanize.RelTime(end, now, "ago", "from now")
}

// Clamp cuts text to max runes, ending it with an ellipsis when cut.
func Clamp(text string, max int) string {
	r := []rune(text)
	if len(r) <= max {
		return text
	}
	return string(r[:max-1]) + "…"
}

func section(sb *strings.Builder, name, body string) {
	fmt.Fprintf(sb, "\n__%s__\n%s\n", name, body)
}

func voterLines(s models.Status) string {
	lines := make([]string, 0, len(s.Voters))
	for _, v := range s.Voters {
		var label string
		switch {
		case s.IsFinal && s.IsAwaiting(v.ID):
			label = "No response (counted as YES)"
		case s.IsFinal, s.HasVoted(v.ID):
			label = "Voted"
		default:
			label = "Awaiting vote"
		}
		lines = append(lines, fmt.Sprintf("• %s — %s", displayName(v), label))
	}
	return Clamp(orDash(strings.Join(lines, "\n")), MaxField)
}

func nonVoterLines(s models.Status, ids []string) string {
	if len(ids) == 0 {
		return "—"
	}
	names := make(map[string]string, len(s.Voters))
	for _, v := range s.Voters {
		names[v.ID] = displayName(v)
	}
	lines := make([]string, len(ids))
	for i, id := range ids {
		name, ok := names[id]
		if !ok {
			name = id
		}
		lines[i] = "• " + name
	}
	return Clamp(strings.Join(lines, "\n"), MaxField)
}

func hostName(s models.Status) string {
	for _, v := range s.Voters {
		if v.ID == s.HostID {
			return displayName(v)
		}
	}
	return orDash(s.HostID)
}

func displayName(v models.Voter) string {
	if v.DisplayName != "" {
		return v.DisplayName
	}
	return v.ID
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
