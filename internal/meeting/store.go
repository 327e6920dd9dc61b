package meeting

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a new MeetingStore backed by the given database.
func New(db *sql.DB) MeetingStore {
	return &store{
		db: db,
	}
}

func (s *store) CreateSport(sport Sport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO sports (id, name, team_count, capacity_per_team, multiplier)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			team_count = excluded.team_count,
			capacity_per_team = excluded.capacity_per_team,
			multiplier = excluded.multiplier;
	`, sport.ID, sport.Name, sport.TeamCount, sport.CapacityPerTeam, sport.Multiplier)
	if err != nil {
		return fmt.Errorf("failed to upsert sport: %w", err)
	}
	return nil
}

func (s *store) GetSport(sportID string) (Sport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sport Sport
	err := s.db.QueryRow(
		"SELECT id, name, team_count, capacity_per_team, multiplier FROM sports WHERE id = ?",
		sportID,
	).Scan(&sport.ID, &sport.Name, &sport.TeamCount, &sport.CapacityPerTeam, &sport.Multiplier)
	if err == sql.ErrNoRows {
		return Sport{}, fmt.Errorf("sport %s: %w", sportID, ErrNotFound)
	}
	if err != nil {
		return Sport{}, fmt.Errorf("failed to get sport: %w", err)
	}
	return sport, nil
}

func (s *store) CreateMeeting(m *Meeting) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m.CreatedAt == 0 {
		m.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.Exec(`
		INSERT INTO meetings (id, sport_id, creator_id, competitive, open, starts_at, ends_at, outcome_applied, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)
	`, m.ID, m.SportID, m.CreatorID, m.Competitive, m.Open, m.StartsAt, m.EndsAt, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create meeting: %w", err)
	}
	return nil
}

func (s *store) GetMeeting(meetingID string) (*Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getMeetingLocked(s.db, meetingID)
}

// querier lets meeting loads run either on the pool or inside a transaction.
type querier interface {
	QueryRow(query string, args ...any) *sql.Row
	Query(query string, args ...any) (*sql.Rows, error)
}

func (s *store) getMeetingLocked(q querier, meetingID string) (*Meeting, error) {
	var m Meeting
	err := q.QueryRow(`
		SELECT m.id, m.sport_id, m.creator_id, m.competitive, m.open, m.starts_at, m.ends_at, m.outcome_applied, m.created_at,
		       sp.id, sp.name, sp.team_count, sp.capacity_per_team, sp.multiplier
		FROM meetings m
		JOIN sports sp ON m.sport_id = sp.id
		WHERE m.id = ?
	`, meetingID).Scan(
		&m.ID, &m.SportID, &m.CreatorID, &m.Competitive, &m.Open, &m.StartsAt, &m.EndsAt, &m.OutcomeApplied, &m.CreatedAt,
		&m.Sport.ID, &m.Sport.Name, &m.Sport.TeamCount, &m.Sport.CapacityPerTeam, &m.Sport.Multiplier,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("meeting %s: %w", meetingID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meeting: %w", err)
	}

	memberships, err := scanMemberships(q, "SELECT meeting_id, user_id, team_number, joined_at FROM memberships WHERE meeting_id = ? ORDER BY team_number, joined_at", meetingID)
	if err != nil {
		return nil, err
	}
	m.Memberships = memberships
	return &m, nil
}

func (s *store) ListMeetings() ([]*Meeting, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id FROM meetings ORDER BY starts_at DESC")
	if err != nil {
		return nil, fmt.Errorf("failed to list meetings: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var meetings []*Meeting
	for _, id := range ids {
		m, err := s.getMeetingLocked(s.db, id)
		if err != nil {
			log.Error("Failed to load meeting", "error", err, "meetingID", id)
			continue
		}
		meetings = append(meetings, m)
	}
	return meetings, nil
}

func (s *store) ListMemberships(meetingID string) ([]TeamMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return scanMemberships(s.db, "SELECT meeting_id, user_id, team_number, joined_at FROM memberships WHERE meeting_id = ? ORDER BY team_number, joined_at", meetingID)
}

func (s *store) ListMembershipsForUser(userID string) ([]TeamMembership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return scanMemberships(s.db, "SELECT meeting_id, user_id, team_number, joined_at FROM memberships WHERE user_id = ? ORDER BY joined_at DESC", userID)
}

func scanMemberships(q querier, query string, args ...any) ([]TeamMembership, error) {
	rows, err := q.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query memberships: %w", err)
	}
	defer rows.Close()

	var memberships []TeamMembership
	for rows.Next() {
		var mem TeamMembership
		if err := rows.Scan(&mem.MeetingID, &mem.UserID, &mem.TeamNumber, &mem.JoinedAt); err != nil {
			return nil, err
		}
		memberships = append(memberships, mem)
	}
	return memberships, rows.Err()
}

// AddMembership writes a membership iff the team has a free slot, the
// meeting has a free slot, and the user is not already a member. The
// capacity checks and the write are a single statement, so a racing join
// for the last slot loses with ErrTeamFull instead of over-filling.
func (s *store) AddMembership(meetingID, userID string, teamNumber int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	m, err := s.getMeetingLocked(tx, meetingID)
	if err != nil {
		return err
	}
	settings := m.Sport.Settings()
	if teamNumber < 1 || teamNumber > settings.TeamCount {
		return ErrInvalidTeam
	}

	res, err := tx.Exec(`
		INSERT INTO memberships (meeting_id, user_id, team_number, joined_at)
		SELECT ?, ?, ?, ?
		WHERE (SELECT COUNT(*) FROM memberships WHERE meeting_id = ? AND team_number = ?) < ?
		  AND (SELECT COUNT(*) FROM memberships WHERE meeting_id = ?) < ?
	`, meetingID, userID, teamNumber, time.Now().Unix(),
		meetingID, teamNumber, settings.CapacityPerTeam,
		meetingID, settings.TeamCount*settings.CapacityPerTeam)
	if err != nil {
		if isConstraintErr(err) {
			return ErrAlreadyJoined
		}
		return fmt.Errorf("failed to add membership: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		var total int
		if err := tx.QueryRow("SELECT COUNT(*) FROM memberships WHERE meeting_id = ?", meetingID).Scan(&total); err != nil {
			return fmt.Errorf("failed to count memberships: %w", err)
		}
		if total >= settings.TeamCount*settings.CapacityPerTeam {
			return ErrMeetingFull
		}
		return ErrTeamFull
	}

	return tx.Commit()
}

func (s *store) RemoveMembership(meetingID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("DELETE FROM memberships WHERE meeting_id = ? AND user_id = ?", meetingID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove membership: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotJoined
	}
	return nil
}

// MoveMembership changes a user's team as an atomic remove-then-add. If the
// target team is full the transaction rolls back and the original
// membership is untouched.
func (s *store) MoveMembership(meetingID, userID string, newTeam int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	m, err := s.getMeetingLocked(tx, meetingID)
	if err != nil {
		return err
	}
	settings := m.Sport.Settings()
	if newTeam < 1 || newTeam > settings.TeamCount {
		return ErrInvalidTeam
	}

	current, ok := m.MembershipOf(userID)
	if !ok {
		return ErrNotJoined
	}
	if current.TeamNumber == newTeam {
		return ErrSameTeam
	}

	if _, err := tx.Exec("DELETE FROM memberships WHERE meeting_id = ? AND user_id = ?", meetingID, userID); err != nil {
		return fmt.Errorf("failed to remove membership: %w", err)
	}

	res, err := tx.Exec(`
		INSERT INTO memberships (meeting_id, user_id, team_number, joined_at)
		SELECT ?, ?, ?, ?
		WHERE (SELECT COUNT(*) FROM memberships WHERE meeting_id = ? AND team_number = ?) < ?
	`, meetingID, userID, newTeam, current.JoinedAt,
		meetingID, newTeam, settings.CapacityPerTeam)
	if err != nil {
		return fmt.Errorf("failed to move membership: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		// Rollback restores the original membership.
		return ErrTeamFull
	}

	return tx.Commit()
}

// CloseMeeting flips the open flag. The conditional update makes the
// transition race-safe: only one closer observes success, later attempts
// get ErrAlreadyClosed.
func (s *store) CloseMeeting(meetingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("UPDATE meetings SET open = 0 WHERE id = ? AND open = 1", meetingID)
	if err != nil {
		return fmt.Errorf("failed to close meeting: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		var exists bool
		if err := s.db.QueryRow("SELECT EXISTS(SELECT 1 FROM meetings WHERE id = ?)", meetingID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check meeting existence: %w", err)
		}
		if !exists {
			return fmt.Errorf("meeting %s: %w", meetingID, ErrNotFound)
		}
		return ErrAlreadyClosed
	}
	return nil
}

// InsertScore appends a score for a team. Scores are write-once facts: the
// primary key on (meeting_id, team_number) rejects a second submission.
func (s *store) InsertScore(meetingID string, teamNumber, rawValue int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(
		"INSERT INTO scores (meeting_id, team_number, raw_value, submitted_at) VALUES (?, ?, ?, ?)",
		meetingID, teamNumber, rawValue, time.Now().Unix(),
	)
	if err != nil {
		if isConstraintErr(err) {
			return ErrAlreadyScored
		}
		return fmt.Errorf("failed to insert score: %w", err)
	}
	return nil
}

func (s *store) ListScores(meetingID string) ([]Score, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		"SELECT meeting_id, team_number, raw_value, submitted_at FROM scores WHERE meeting_id = ? ORDER BY team_number",
		meetingID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	var scores []Score
	for rows.Next() {
		var sc Score
		if err := rows.Scan(&sc.MeetingID, &sc.TeamNumber, &sc.RawValue, &sc.SubmittedAt); err != nil {
			return nil, err
		}
		scores = append(scores, sc)
	}
	return scores, rows.Err()
}

// MarkOutcomeApplied claims the outcome application for a meeting. Exactly
// one caller succeeds; the rest get ErrOutcomeApplied. This is the
// idempotence guard for rating application under retries.
func (s *store) MarkOutcomeApplied(meetingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec("UPDATE meetings SET outcome_applied = 1 WHERE id = ? AND outcome_applied = 0", meetingID)
	if err != nil {
		return fmt.Errorf("failed to mark outcome applied: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rows == 0 {
		return ErrOutcomeApplied
	}
	return nil
}

// UnmarkOutcomeApplied releases the claim when rating application failed,
// so a retry can run the whole step again.
func (s *store) UnmarkOutcomeApplied(meetingID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("UPDATE meetings SET outcome_applied = 0 WHERE id = ?", meetingID)
	if err != nil {
		return fmt.Errorf("failed to unmark outcome applied: %w", err)
	}
	return nil
}

// isConstraintErr detects primary-key/unique violations across both the
// sqlite3 and libsql drivers, which only agree on the message text.
func isConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint") || strings.Contains(msg, "PRIMARY KEY constraint")
}
