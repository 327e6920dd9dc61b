package users

// UserStore defines the interface for interacting with user data. The
// competitive rating is owned here; other components only issue signed
// adjustments and never write the scalar directly.
type UserStore interface {
	UpsertUser(userID, name string) error
	GetUser(userID string) (*User, error)
	IsKnownUser(userID string) bool
	GetRating(userID string) (float64, error)
	AdjustRating(userID string, delta float64) error
	AdjustRatings(deltas map[string]float64) error
	Leaderboard() ([]User, error)
}
