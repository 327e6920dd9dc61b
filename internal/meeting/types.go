package meeting

import (
	"database/sql"
	"sync"
	"time"
)

// store handles all database operations for meetings.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Sport describes a sport as stored in the catalog. Rows may carry
// zero/negative values from misconfiguration; Settings() normalizes them.
type Sport struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	TeamCount       int     `json:"team_count"`
	CapacityPerTeam int     `json:"capacity_per_team"`
	Multiplier      float64 `json:"multiplier"`
}

// SportSettings is a fully-defaulted view of a sport's configuration.
// All components read the multiplier and capacities through this struct,
// never from the raw Sport row.
type SportSettings struct {
	TeamCount       int
	CapacityPerTeam int
	Multiplier      float64
}

// Settings resolves the sport configuration, applying defaults for
// missing or invalid values.
func (s Sport) Settings() SportSettings {
	settings := SportSettings{
		TeamCount:       s.TeamCount,
		CapacityPerTeam: s.CapacityPerTeam,
		Multiplier:      s.Multiplier,
	}
	if settings.TeamCount <= 0 {
		settings.TeamCount = 2
	}
	if settings.CapacityPerTeam <= 0 {
		settings.CapacityPerTeam = 1
	}
	if settings.Multiplier <= 0 {
		settings.Multiplier = 1
	}
	return settings
}

// Meeting is a scheduled sports gathering with teams and a time window.
type Meeting struct {
	ID             string           `json:"id"`
	SportID        string           `json:"sport_id"`
	CreatorID      string           `json:"creator_id"`
	Competitive    bool             `json:"competitive"`
	Open           bool             `json:"open"`
	StartsAt       int64            `json:"starts_at"`
	EndsAt         int64            `json:"ends_at"`
	OutcomeApplied bool             `json:"outcome_applied"`
	CreatedAt      int64            `json:"created_at"`
	Sport          Sport            `json:"sport"`
	Memberships    []TeamMembership `json:"memberships"`
}

// StartTime returns the meeting's start as a single UTC instant.
// This is the only place the stored timestamp becomes a time.Time.
func (m *Meeting) StartTime() time.Time {
	return time.Unix(m.StartsAt, 0).UTC()
}

// TotalCapacity is the maximum number of participants across all teams.
func (m *Meeting) TotalCapacity() int {
	s := m.Sport.Settings()
	return s.TeamCount * s.CapacityPerTeam
}

// TeamSize returns the current number of members on the given team.
func (m *Meeting) TeamSize(teamNumber int) int {
	count := 0
	for _, mem := range m.Memberships {
		if mem.TeamNumber == teamNumber {
			count++
		}
	}
	return count
}

// MembershipOf returns the user's membership in this meeting, if any.
func (m *Meeting) MembershipOf(userID string) (TeamMembership, bool) {
	for _, mem := range m.Memberships {
		if mem.UserID == userID {
			return mem, true
		}
	}
	return TeamMembership{}, false
}

// FirstAvailableTeam scans teams 1..teamCount in ascending order and
// returns the first one with a free slot. The second return value is
// false when every team is full.
func (m *Meeting) FirstAvailableTeam() (int, bool) {
	s := m.Sport.Settings()
	for team := 1; team <= s.TeamCount; team++ {
		if m.TeamSize(team) < s.CapacityPerTeam {
			return team, true
		}
	}
	return 0, false
}

// TeamMembership is a user's assignment to one team within one meeting.
type TeamMembership struct {
	MeetingID  string `json:"meeting_id"`
	UserID     string `json:"user_id"`
	TeamNumber int    `json:"team_number"`
	JoinedAt   int64  `json:"joined_at"`
}

// Score is a 1-10 rating submitted once per team after a meeting closes.
type Score struct {
	MeetingID   string `json:"meeting_id"`
	TeamNumber  int    `json:"team_number"`
	RawValue    int    `json:"raw_value"`
	SubmittedAt int64  `json:"submitted_at"`
}

// AllTeamsScored reports whether every team in [1, teamCount] has a score.
// Outcome resolution is gated on this becoming true.
func AllTeamsScored(scores []Score, teamCount int) bool {
	seen := make(map[int]bool, len(scores))
	for _, sc := range scores {
		seen[sc.TeamNumber] = true
	}
	for team := 1; team <= teamCount; team++ {
		if !seen[team] {
			return false
		}
	}
	return true
}

// Instant combines a date (2006-01-02) and a clock time (15:04) into a
// single UTC instant. All meeting timestamps go through this constructor
// so the calendar convention lives in exactly one place.
func Instant(date, clock string) (time.Time, error) {
	return time.Parse("2006-01-02 15:04", date+" "+clock)
}
