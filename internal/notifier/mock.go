package notifier

import (
	"sync"

	"github.com/mkarlsen/courtside/internal/meeting"
	"github.com/mkarlsen/courtside/internal/scoring"
	"github.com/mkarlsen/courtside/internal/users"
)

var _ Notifier = (*Mock)(nil)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for method calls
	SendMeetingClosedFunc      func(m *meeting.Meeting, dryRun bool) (string, error)
	SendResultNotificationFunc func(m *meeting.Meeting, res scoring.Resolution, scores []meeting.Score, dryRun bool) (string, error)
	SendLeaderboardFunc        func(leaderboard []users.User, dryRun bool) error

	// Call records
	SendMeetingClosedCalls []struct{ Meeting *meeting.Meeting }
	SendResultCalls        []struct {
		Meeting    *meeting.Meeting
		Resolution scoring.Resolution
	}
	SendLeaderboardCalls [][]users.User
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SendMeetingClosedCalls = nil
	m.SendResultCalls = nil
	m.SendLeaderboardCalls = nil
}

func (m *Mock) SendMeetingClosed(mt *meeting.Meeting, dryRun bool) (string, error) {
	m.mu.Lock()
	m.SendMeetingClosedCalls = append(m.SendMeetingClosedCalls, struct{ Meeting *meeting.Meeting }{mt})
	m.mu.Unlock()
	if m.SendMeetingClosedFunc != nil {
		return m.SendMeetingClosedFunc(mt, dryRun)
	}
	return "", nil
}

func (m *Mock) SendResultNotification(mt *meeting.Meeting, res scoring.Resolution, scores []meeting.Score, dryRun bool) (string, error) {
	m.mu.Lock()
	m.SendResultCalls = append(m.SendResultCalls, struct {
		Meeting    *meeting.Meeting
		Resolution scoring.Resolution
	}{mt, res})
	m.mu.Unlock()
	if m.SendResultNotificationFunc != nil {
		return m.SendResultNotificationFunc(mt, res, scores, dryRun)
	}
	return "", nil
}

func (m *Mock) SendLeaderboard(leaderboard []users.User, dryRun bool) error {
	m.mu.Lock()
	m.SendLeaderboardCalls = append(m.SendLeaderboardCalls, leaderboard)
	m.mu.Unlock()
	if m.SendLeaderboardFunc != nil {
		return m.SendLeaderboardFunc(leaderboard, dryRun)
	}
	return nil
}
