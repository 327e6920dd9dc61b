// Package stats derives per-user historical match statistics. It is a pure
// read-side projection over persisted scores and memberships: no mutation,
// no hidden state, recomputable at any time.
package stats

import (
	"fmt"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/mkarlsen/courtside/internal/meeting"
	"github.com/mkarlsen/courtside/internal/scoring"
	"github.com/mkarlsen/courtside/internal/users"
)

// MatchRecord is one resolved competitive meeting from the user's point of
// view.
type MatchRecord struct {
	MeetingID    string          `json:"meeting_id"`
	SportName    string          `json:"sport_name"`
	TeamNumber   int             `json:"team_number"`
	Outcome      scoring.Outcome `json:"outcome"`
	ScoreFor     int             `json:"score_for"`
	ScoreAgainst int             `json:"score_against"`
	Date         int64           `json:"date"`
}

// UserStats aggregates a user's competitive history.
type UserStats struct {
	UserID            string        `json:"user_id"`
	Name              string        `json:"name"`
	Victories         int           `json:"victories"`
	Losses            int           `json:"losses"`
	Draws             int           `json:"draws"`
	MatchesPlayed     int           `json:"matches_played"`
	WinRate           float64       `json:"win_rate"`
	CompetitivePoints float64       `json:"competitive_points"`
	MatchHistory      []MatchRecord `json:"match_history"`
}

// Compiler joins memberships against resolved outcomes on demand.
type Compiler struct {
	meetings meeting.MeetingStore
	users    users.UserStore
}

// New creates a new Compiler.
func New(meetings meeting.MeetingStore, userStore users.UserStore) *Compiler {
	return &Compiler{
		meetings: meetings,
		users:    userStore,
	}
}

// UserStats compiles the statistics for a single user. Only closed,
// competitive, fully-scored meetings count; contested resolutions appear in
// the history but do not move the aggregates, matching how they leave
// ratings untouched.
func (c *Compiler) UserStats(userID string) (*UserStats, error) {
	u, err := c.users.GetUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	memberships, err := c.meetings.ListMembershipsForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	result := &UserStats{
		UserID:            u.ID,
		Name:              u.Name,
		CompetitivePoints: u.CompetitivePoints,
		MatchHistory:      []MatchRecord{},
	}

	for _, mem := range memberships {
		m, err := c.meetings.GetMeeting(mem.MeetingID)
		if err != nil {
			log.Error("Failed to load meeting for stats", "error", err, "meetingID", mem.MeetingID)
			continue
		}
		if m.Open || !m.Competitive {
			continue
		}

		settings := m.Sport.Settings()
		scores, err := c.meetings.ListScores(m.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to list scores: %w", err)
		}
		if !meeting.AllTeamsScored(scores, settings.TeamCount) {
			continue
		}

		scoreByTeam := make(map[int]int, len(scores))
		for _, sc := range scores {
			scoreByTeam[sc.TeamNumber] = sc.RawValue
		}
		res := scoring.Resolve(scoreByTeam)
		outcome := res.TeamOutcome(mem.TeamNumber)

		switch outcome {
		case scoring.OutcomeWin:
			result.Victories++
		case scoring.OutcomeLoss:
			result.Losses++
		case scoring.OutcomeDraw:
			result.Draws++
		}

		result.MatchHistory = append(result.MatchHistory, MatchRecord{
			MeetingID:    m.ID,
			SportName:    m.Sport.Name,
			TeamNumber:   mem.TeamNumber,
			Outcome:      outcome,
			ScoreFor:     scoreByTeam[mem.TeamNumber],
			ScoreAgainst: bestOpposing(scoreByTeam, mem.TeamNumber),
			Date:         m.StartsAt,
		})
	}

	result.MatchesPlayed = result.Victories + result.Losses + result.Draws
	if result.MatchesPlayed > 0 {
		result.WinRate = scoring.Round1(float64(result.Victories) / float64(result.MatchesPlayed) * 100)
	}

	// Most recent first.
	sort.Slice(result.MatchHistory, func(i, j int) bool {
		return result.MatchHistory[i].Date > result.MatchHistory[j].Date
	})

	return result, nil
}

// bestOpposing returns the highest score among the other teams. For a
// single-team meeting there is no opponent and the result is 0.
func bestOpposing(scoreByTeam map[int]int, ownTeam int) int {
	best := 0
	for team, raw := range scoreByTeam {
		if team != ownTeam && raw > best {
			best = raw
		}
	}
	return best
}
