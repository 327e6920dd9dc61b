package users

import (
	"sync"
)

// MockStore is a mock implementation of the UserStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	UpsertUserFunc    func(userID, name string) error
	GetUserFunc       func(userID string) (*User, error)
	IsKnownUserFunc   func(userID string) bool
	GetRatingFunc     func(userID string) (float64, error)
	AdjustRatingFunc  func(userID string, delta float64) error
	AdjustRatingsFunc func(deltas map[string]float64) error
	LeaderboardFunc   func() ([]User, error)

	// Call records
	AdjustRatingCalls []struct {
		UserID string
		Delta  float64
	}
	AdjustRatingsCalls []map[string]float64
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AdjustRatingCalls = nil
	m.AdjustRatingsCalls = nil
}

func (m *MockStore) UpsertUser(userID, name string) error {
	if m.UpsertUserFunc != nil {
		return m.UpsertUserFunc(userID, name)
	}
	return nil
}

func (m *MockStore) GetUser(userID string) (*User, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(userID)
	}
	return &User{ID: userID}, nil
}

func (m *MockStore) IsKnownUser(userID string) bool {
	if m.IsKnownUserFunc != nil {
		return m.IsKnownUserFunc(userID)
	}
	return true
}

func (m *MockStore) GetRating(userID string) (float64, error) {
	if m.GetRatingFunc != nil {
		return m.GetRatingFunc(userID)
	}
	return 0, nil
}

func (m *MockStore) AdjustRating(userID string, delta float64) error {
	m.mu.Lock()
	m.AdjustRatingCalls = append(m.AdjustRatingCalls, struct {
		UserID string
		Delta  float64
	}{userID, delta})
	m.mu.Unlock()
	if m.AdjustRatingFunc != nil {
		return m.AdjustRatingFunc(userID, delta)
	}
	return nil
}

func (m *MockStore) AdjustRatings(deltas map[string]float64) error {
	m.mu.Lock()
	m.AdjustRatingsCalls = append(m.AdjustRatingsCalls, deltas)
	m.mu.Unlock()
	if m.AdjustRatingsFunc != nil {
		return m.AdjustRatingsFunc(deltas)
	}
	return nil
}

func (m *MockStore) Leaderboard() ([]User, error) {
	if m.LeaderboardFunc != nil {
		return m.LeaderboardFunc()
	}
	return nil, nil
}
