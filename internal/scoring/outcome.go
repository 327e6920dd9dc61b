// Package scoring resolves team scores into match outcomes and converts raw
// scores into competitive rating deltas. All functions are pure; persistence
// and orchestration live elsewhere.
package scoring

import "math"

// Kind classifies the resolution of a fully-scored meeting.
type Kind string

const (
	// KindDecided means exactly one team holds the strictly highest score.
	KindDecided Kind = "DECIDED"
	// KindDraw means every team scored the same value.
	KindDraw Kind = "DRAW"
	// KindContested means the top score is shared but not by everyone:
	// no winner, no draw, no rating movement.
	KindContested Kind = "CONTESTED"
)

// Resolution is the single tagged result consumed by every downstream
// component; win/loss/draw checks are never re-derived from raw scores.
type Resolution struct {
	Kind        Kind `json:"kind"`
	WinningTeam int  `json:"winning_team,omitempty"`
}

// Outcome is a team's classification within a resolution.
type Outcome string

const (
	OutcomeWin       Outcome = "WIN"
	OutcomeLoss      Outcome = "LOSS"
	OutcomeDraw      Outcome = "DRAW"
	OutcomeContested Outcome = "CONTESTED"
)

// IsDraw reports whether all scores are equal. Trivially true for a
// single-team meeting.
func IsDraw(scores map[int]int) bool {
	first := true
	var v int
	for _, raw := range scores {
		if first {
			v = raw
			first = false
			continue
		}
		if raw != v {
			return false
		}
	}
	return true
}

// Resolve classifies a complete score set. IsDraw is the source of truth;
// the winner check only runs on non-draws, so the two can never disagree at
// the boundary where the maximum is shared.
func Resolve(scores map[int]int) Resolution {
	if len(scores) == 0 {
		return Resolution{Kind: KindContested}
	}
	if IsDraw(scores) {
		return Resolution{Kind: KindDraw}
	}

	maxRaw := math.MinInt
	winners := 0
	winningTeam := 0
	for team, raw := range scores {
		if raw > maxRaw {
			maxRaw = raw
			winners = 1
			winningTeam = team
		} else if raw == maxRaw {
			winners++
		}
	}
	if winners > 1 {
		return Resolution{Kind: KindContested}
	}
	return Resolution{Kind: KindDecided, WinningTeam: winningTeam}
}

// TeamOutcome classifies one team within a resolution.
func (r Resolution) TeamOutcome(teamNumber int) Outcome {
	switch r.Kind {
	case KindDraw:
		return OutcomeDraw
	case KindContested:
		return OutcomeContested
	default:
		if teamNumber == r.WinningTeam {
			return OutcomeWin
		}
		return OutcomeLoss
	}
}

// Delta converts a raw team score into a competitive rating delta, rounded
// to one decimal. The multiplier must already be resolved via
// meeting.SportSettings, so it is never zero or negative here.
func Delta(rawValue int, multiplier float64) float64 {
	return math.Round(float64(rawValue)*multiplier*10) / 10
}

// Round1 rounds to one decimal, the precision used for all user-facing
// derived values (win rate, rating deltas).
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}
