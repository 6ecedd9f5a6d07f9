// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package rules decides secret votes.

# Tally

Every voter without a recorded choice counts as YES:

	yes = explicit YES + non-voters
	no  = explicit NO

# Rule Table

	CC     turn ≤80      no == 0
	CC     turn 81–100   no ≤ 1
	CC     turn >100     no ≤ 2
	Scrap  turn ≤20      yes ≥ ceil(total·2/3)
	Scrap  turn 21–50    yes ≥ ceil(total·3/4)
	Scrap  turn 51–70    no ≤ 1
	Scrap  turn >70      no == 0
	Irrel  turn <50      no == 0
	Irrel  turn ≥50      no ≤ 2
	Remap  any           no == 0

Majorities use CeilFrac, which avoids floating point:

	needed := rules.CeilFrac(6, 2, 3) // 4

# Usage

	outcome := rules.Evaluate(models.ActionCC, 90, voterIDs, votes)

Evaluate has no side effects and is called once, when a vote finalizes.
*/
package rules
