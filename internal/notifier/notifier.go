package notifier

import (
	"github.com/mkarlsen/courtside/internal/meeting"
	"github.com/mkarlsen/courtside/internal/scoring"
	"github.com/mkarlsen/courtside/internal/users"
)

// Notifier defines a high-level interface for announcing business events.
// This decouples the rest of the application from the specific notification
// provider (e.g., Slack).
type Notifier interface {
	// SendMeetingClosed announces that a meeting was closed by its creator.
	SendMeetingClosed(m *meeting.Meeting, dryRun bool) (string, error)
	// SendResultNotification announces a resolved outcome with per-team scores.
	SendResultNotification(m *meeting.Meeting, res scoring.Resolution, scores []meeting.Score, dryRun bool) (string, error)
	// SendLeaderboard posts the competitive-points leaderboard.
	SendLeaderboard(leaderboard []users.User, dryRun bool) error
}
