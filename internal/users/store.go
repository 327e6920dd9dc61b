package users

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

// User represents a registered user with a persistent competitive rating.
type User struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	CompetitivePoints float64 `json:"competitive_points"`
}

// store handles all database operations for users.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new UserStore.
func New(db *sql.DB) UserStore {
	return &store{
		db: db,
	}
}

func (s *store) UpsertUser(userID, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO users (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name;
	`, userID, name)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (s *store) GetUser(userID string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var u User
	err := s.db.QueryRow("SELECT id, name, competitive_points FROM users WHERE id = ?", userID).
		Scan(&u.ID, &u.Name, &u.CompetitivePoints)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s not found", userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}

func (s *store) IsKnownUser(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var exists bool
	err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM users WHERE id = ?)", userID).Scan(&exists)
	if err != nil {
		log.Error("Failed to check if user exists", "error", err, "userID", userID)
		return false
	}
	return exists
}

func (s *store) GetRating(userID string) (float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rating float64
	err := s.db.QueryRow("SELECT competitive_points FROM users WHERE id = ?", userID).Scan(&rating)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("user %s not found", userID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get rating: %w", err)
	}
	return rating, nil
}

// AdjustRating applies a single signed delta as an atomic increment.
func (s *store) AdjustRating(userID string, delta float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("UPDATE users SET competitive_points = competitive_points + ? WHERE id = ?", delta, userID)
	if err != nil {
		return fmt.Errorf("failed to adjust rating for %s: %w", userID, err)
	}
	return nil
}

// AdjustRatings applies a batch of signed deltas in one transaction, so a
// meeting's outcome never leaves some participants adjusted and others not.
func (s *store) AdjustRatings(deltas map[string]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("UPDATE users SET competitive_points = competitive_points + ? WHERE id = ?")
	if err != nil {
		return fmt.Errorf("failed to prepare rating update: %w", err)
	}
	defer stmt.Close()

	for userID, delta := range deltas {
		if _, err := stmt.Exec(delta, userID); err != nil {
			return fmt.Errorf("failed to adjust rating for %s: %w", userID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rating adjustments: %w", err)
	}
	return nil
}

// Leaderboard returns all users ordered by competitive points, best first.
func (s *store) Leaderboard() ([]User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id, name, competitive_points FROM users ORDER BY competitive_points DESC, name")
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var leaderboard []User
	for rows.Next() {
		var u User
		var name sql.NullString
		if err := rows.Scan(&u.ID, &name, &u.CompetitivePoints); err != nil {
			log.Error("Failed to scan user row", "error", err)
			continue
		}
		u.Name = name.String
		leaderboard = append(leaderboard, u)
	}
	return leaderboard, rows.Err()
}
