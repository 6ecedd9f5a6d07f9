// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package rules

import (
	"fmt"

	"github.com/danielhkuo/secretballot/models"
)

// Tally is the raw count behind an outcome.
type Tally struct {
	Yes         int
	No          int
	NonVoterIDs []string
}

// Count tallies explicit choices and defaults every non-voter to YES.
// Choices from ids that are not voters are ignored.
func Count(voterIDs []string, votes map[string]models.Choice) Tally {
	eligible := make(map[string]bool, len(voterIDs))
	for _, id := range voterIDs {
		eligible[id] = true
	}

	var t Tally
	for id, choice := range votes {
		if !eligible[id] {
			continue
		}
		if choice == models.ChoiceNo {
			t.No++
		} else {
			t.Yes++
		}
	}

	// Keep voter order so the display is stable
	t.NonVoterIDs = []string{}
	for _, id := range voterIDs {
		if _, voted := votes[id]; !voted {
			t.NonVoterIDs = append(t.NonVoterIDs, id)
		}
	}
	t.Yes += len(t.NonVoterIDs)

	return t
}

// CeilFrac returns ceil(total*num/denom) using integer arithmetic only.
func CeilFrac(total, num, denom int) int {
	return (total*num + denom - 1) / denom
}

// Evaluate decides a vote. It is pure: the same inputs always produce the
// same outcome.
func Evaluate(action models.ActionKind, turn int, voterIDs []string, votes map[string]models.Choice) models.Outcome {
	total := len(voterIDs)
	t := Count(voterIDs, votes)

	var (
		passed bool
		rule   string
		notes  []string
	)

	switch action {
	case models.ActionCC:
		switch {
		case turn <= 80:
			rule = "CC: Unanimous (turn 1–80)"
			passed = t.No == 0
		case turn <= 100:
			rule = "CC: All but 1 (turn 81–100)"
			passed = t.No <= 1
		default:
			rule = "CC: All but 2 (turn 101+)"
			passed = t.No <= 2
		}
		if passed {
			notes = append(notes, "If this CC passes: any player who wants to use a veto must DM the host in game chat. If no veto is used, the CC passes.")
		}

	case models.ActionScrap:
		switch {
		case turn <= 20:
			needed := CeilFrac(total, 2, 3)
			rule = fmt.Sprintf("Scrap: 2/3 majority (need %d/%d YES)", needed, total)
			passed = t.Yes >= needed
		case turn <= 50:
			needed := CeilFrac(total, 3, 4)
			rule = fmt.Sprintf("Scrap: 3/4 majority (need %d/%d YES)", needed, total)
			passed = t.Yes >= needed
		case turn <= 70:
			rule = "Scrap: All but 1 (turn 51–70)"
			passed = t.No <= 1
		default:
			rule = "Scrap: Unanimous (turn 71+)"
			passed = t.No == 0
		}

	case models.ActionIrrel:
		if turn < 50 {
			rule = "Irrel: Unanimous (turn 1–49)"
			passed = t.No == 0
		} else {
			rule = "Irrel: All but 2 (turn 50+)"
			passed = t.No <= 2
		}
		notes = append(notes,
			"Irrel eligibility (host verify):",
			"• bottom two players by score (including AI)",
			"• not currently holding a veto",
			"• not involved in an ongoing emergency",
		)

	default:
		// Remap; the caller checks turn <= RemapMaxTurn before starting
		rule = fmt.Sprintf("Remap: Unanimous (turn ≤%d)", models.RemapMaxTurn)
		passed = t.No == 0
	}

	result := models.ResultFailed
	if passed {
		result = models.ResultPassed
	}

	return models.Outcome{
		Yes:         t.Yes,
		No:          t.No,
		Result:      result,
		NonVoterIDs: t.NonVoterIDs,
		Rule:        rule,
		Notes:       notes,
	}
}
