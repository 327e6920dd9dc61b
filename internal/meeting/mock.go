package meeting

import (
	"sync"
)

// MockStore is a mock implementation of the MeetingStore interface for
// testing. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	CreateSportFunc            func(sport Sport) error
	GetSportFunc               func(sportID string) (Sport, error)
	CreateMeetingFunc          func(m *Meeting) error
	GetMeetingFunc             func(meetingID string) (*Meeting, error)
	ListMeetingsFunc           func() ([]*Meeting, error)
	ListMembershipsFunc        func(meetingID string) ([]TeamMembership, error)
	ListMembershipsForUserFunc func(userID string) ([]TeamMembership, error)
	AddMembershipFunc          func(meetingID, userID string, teamNumber int) error
	RemoveMembershipFunc       func(meetingID, userID string) error
	MoveMembershipFunc         func(meetingID, userID string, newTeam int) error
	CloseMeetingFunc           func(meetingID string) error
	InsertScoreFunc            func(meetingID string, teamNumber, rawValue int) error
	ListScoresFunc             func(meetingID string) ([]Score, error)
	MarkOutcomeAppliedFunc     func(meetingID string) error
	UnmarkOutcomeAppliedFunc   func(meetingID string) error

	// Call records
	AddMembershipCalls []struct {
		MeetingID  string
		UserID     string
		TeamNumber int
	}
	RemoveMembershipCalls []struct {
		MeetingID string
		UserID    string
	}
	MoveMembershipCalls []struct {
		MeetingID string
		UserID    string
		NewTeam   int
	}
	CloseMeetingCalls         []string
	InsertScoreCalls          []struct {
		MeetingID  string
		TeamNumber int
		RawValue   int
	}
	MarkOutcomeAppliedCalls   []string
	UnmarkOutcomeAppliedCalls []string
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddMembershipCalls = nil
	m.RemoveMembershipCalls = nil
	m.MoveMembershipCalls = nil
	m.CloseMeetingCalls = nil
	m.InsertScoreCalls = nil
	m.MarkOutcomeAppliedCalls = nil
	m.UnmarkOutcomeAppliedCalls = nil
}

func (m *MockStore) CreateSport(sport Sport) error {
	if m.CreateSportFunc != nil {
		return m.CreateSportFunc(sport)
	}
	return nil
}

func (m *MockStore) GetSport(sportID string) (Sport, error) {
	if m.GetSportFunc != nil {
		return m.GetSportFunc(sportID)
	}
	return Sport{}, nil
}

func (m *MockStore) CreateMeeting(meeting *Meeting) error {
	if m.CreateMeetingFunc != nil {
		return m.CreateMeetingFunc(meeting)
	}
	return nil
}

func (m *MockStore) GetMeeting(meetingID string) (*Meeting, error) {
	if m.GetMeetingFunc != nil {
		return m.GetMeetingFunc(meetingID)
	}
	return nil, ErrNotFound
}

func (m *MockStore) ListMeetings() ([]*Meeting, error) {
	if m.ListMeetingsFunc != nil {
		return m.ListMeetingsFunc()
	}
	return nil, nil
}

func (m *MockStore) ListMemberships(meetingID string) ([]TeamMembership, error) {
	if m.ListMembershipsFunc != nil {
		return m.ListMembershipsFunc(meetingID)
	}
	return nil, nil
}

func (m *MockStore) ListMembershipsForUser(userID string) ([]TeamMembership, error) {
	if m.ListMembershipsForUserFunc != nil {
		return m.ListMembershipsForUserFunc(userID)
	}
	return nil, nil
}

func (m *MockStore) AddMembership(meetingID, userID string, teamNumber int) error {
	m.mu.Lock()
	m.AddMembershipCalls = append(m.AddMembershipCalls, struct {
		MeetingID  string
		UserID     string
		TeamNumber int
	}{meetingID, userID, teamNumber})
	m.mu.Unlock()
	if m.AddMembershipFunc != nil {
		return m.AddMembershipFunc(meetingID, userID, teamNumber)
	}
	return nil
}

func (m *MockStore) RemoveMembership(meetingID, userID string) error {
	m.mu.Lock()
	m.RemoveMembershipCalls = append(m.RemoveMembershipCalls, struct {
		MeetingID string
		UserID    string
	}{meetingID, userID})
	m.mu.Unlock()
	if m.RemoveMembershipFunc != nil {
		return m.RemoveMembershipFunc(meetingID, userID)
	}
	return nil
}

func (m *MockStore) MoveMembership(meetingID, userID string, newTeam int) error {
	m.mu.Lock()
	m.MoveMembershipCalls = append(m.MoveMembershipCalls, struct {
		MeetingID string
		UserID    string
		NewTeam   int
	}{meetingID, userID, newTeam})
	m.mu.Unlock()
	if m.MoveMembershipFunc != nil {
		return m.MoveMembershipFunc(meetingID, userID, newTeam)
	}
	return nil
}

func (m *MockStore) CloseMeeting(meetingID string) error {
	m.mu.Lock()
	m.CloseMeetingCalls = append(m.CloseMeetingCalls, meetingID)
	m.mu.Unlock()
	if m.CloseMeetingFunc != nil {
		return m.CloseMeetingFunc(meetingID)
	}
	return nil
}

func (m *MockStore) InsertScore(meetingID string, teamNumber, rawValue int) error {
	m.mu.Lock()
	m.InsertScoreCalls = append(m.InsertScoreCalls, struct {
		MeetingID  string
		TeamNumber int
		RawValue   int
	}{meetingID, teamNumber, rawValue})
	m.mu.Unlock()
	if m.InsertScoreFunc != nil {
		return m.InsertScoreFunc(meetingID, teamNumber, rawValue)
	}
	return nil
}

func (m *MockStore) ListScores(meetingID string) ([]Score, error) {
	if m.ListScoresFunc != nil {
		return m.ListScoresFunc(meetingID)
	}
	return nil, nil
}

func (m *MockStore) MarkOutcomeApplied(meetingID string) error {
	m.mu.Lock()
	m.MarkOutcomeAppliedCalls = append(m.MarkOutcomeAppliedCalls, meetingID)
	m.mu.Unlock()
	if m.MarkOutcomeAppliedFunc != nil {
		return m.MarkOutcomeAppliedFunc(meetingID)
	}
	return nil
}

func (m *MockStore) UnmarkOutcomeApplied(meetingID string) error {
	m.mu.Lock()
	m.UnmarkOutcomeAppliedCalls = append(m.UnmarkOutcomeAppliedCalls, meetingID)
	m.mu.Unlock()
	if m.UnmarkOutcomeAppliedFunc != nil {
		return m.UnmarkOutcomeAppliedFunc(meetingID)
	}
	return nil
}
