// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package ballot

import "github.com/danielhkuo/secretballot/models"

// AdjustVoters toggles room members by mention. A mentioned member is
// removed; a mentioned non-member is appended if it has an address to send
// to. Base order is kept and duplicates are dropped.
func AdjustVoters(base, mentions []models.Participant) []models.Participant {
	out := uniqueParticipants(base)

	members := make(map[string]bool, len(out))
	for _, p := range out {
		members[p.ID] = true
	}

	toggled := make(map[string]bool, len(mentions))
	var added []models.Participant
	for _, m := range mentions {
		if m.ID == "" || toggled[m.ID] {
			continue
		}
		toggled[m.ID] = true
		if !members[m.ID] && m.Address != "" {
			added = append(added, m)
		}
	}

	kept := out[:0]
	for _, p := range out {
		if !toggled[p.ID] {
			kept = append(kept, p)
		}
	}
	return append(kept, added...)
}

// uniqueParticipants drops empty ids and repeats; the first occurrence wins.
func uniqueParticipants(in []models.Participant) []models.Participant {
	seen := make(map[string]bool, len(in))
	out := make([]models.Participant, 0, len(in))
	for _, p := range in {
		if p.ID == "" || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		out = append(out, p)
	}
	return out
}
