// Package engine orchestrates the meeting lifecycle: team allocation, the
// open/in-progress/closed state machine, the score ledger, and rating
// application. It owns no state of its own; every mutation goes through the
// store boundaries.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mkarlsen/courtside/internal/meeting"
	"github.com/mkarlsen/courtside/internal/metrics"
	"github.com/mkarlsen/courtside/internal/notifier"
	"github.com/mkarlsen/courtside/internal/pubsub"
	"github.com/mkarlsen/courtside/internal/scoring"
	"github.com/mkarlsen/courtside/internal/users"
)

// Engine wires the stores and collaborators together.
type Engine struct {
	meetings meeting.MeetingStore
	users    users.UserStore
	notifier notifier.Notifier
	metrics  metrics.Metrics
	pubsub   pubsub.PubSubClient
	now      func() time.Time
}

// New creates a new Engine.
func New(meetings meeting.MeetingStore, userStore users.UserStore, notifier notifier.Notifier, metrics metrics.Metrics, pubsub pubsub.PubSubClient) *Engine {
	return &Engine{
		meetings: meetings,
		users:    userStore,
		notifier: notifier,
		metrics:  metrics,
		pubsub:   pubsub,
		now:      time.Now,
	}
}

// WithClock overrides the engine's clock. Tests use this to pin "now".
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Join adds the user to the first team with a free slot and returns the
// assigned team number.
func (e *Engine) Join(meetingID, userID string) (int, error) {
	defer e.observe(time.Now())

	m, err := e.meetings.GetMeeting(meetingID)
	if err != nil {
		return 0, err
	}
	if err := m.CanJoin(e.now()); err != nil {
		return 0, err
	}
	if _, ok := m.MembershipOf(userID); ok {
		return 0, meeting.ErrAlreadyJoined
	}
	team, ok := m.FirstAvailableTeam()
	if !ok {
		return 0, meeting.ErrMeetingFull
	}

	// The store re-checks capacity atomically; a racing join for the last
	// slot loses there even though this read saw it free.
	if err := e.meetings.AddMembership(meetingID, userID, team); err != nil {
		return 0, err
	}

	e.metrics.IncJoins()
	log.Info("User joined meeting", "meetingID", meetingID, "userID", userID, "team", team)
	return team, nil
}

// JoinTeam adds the user to a specific team.
func (e *Engine) JoinTeam(meetingID, userID string, teamNumber int) error {
	defer e.observe(time.Now())

	m, err := e.meetings.GetMeeting(meetingID)
	if err != nil {
		return err
	}
	if err := m.CanJoin(e.now()); err != nil {
		return err
	}
	if _, ok := m.MembershipOf(userID); ok {
		return meeting.ErrAlreadyJoined
	}

	if err := e.meetings.AddMembership(meetingID, userID, teamNumber); err != nil {
		return err
	}

	e.metrics.IncJoins()
	log.Info("User joined team", "meetingID", meetingID, "userID", userID, "team", teamNumber)
	return nil
}

// ChangeTeam moves the user to a different team. The move is atomic: if the
// target team is full, the original membership survives untouched.
func (e *Engine) ChangeTeam(meetingID, userID string, newTeam int) error {
	defer e.observe(time.Now())

	m, err := e.meetings.GetMeeting(meetingID)
	if err != nil {
		return err
	}
	if err := m.CanJoin(e.now()); err != nil {
		return err
	}

	if err := e.meetings.MoveMembership(meetingID, userID, newTeam); err != nil {
		return err
	}

	log.Info("User changed team", "meetingID", meetingID, "userID", userID, "team", newTeam)
	return nil
}

// Leave removes the user's membership.
func (e *Engine) Leave(meetingID, userID string) error {
	defer e.observe(time.Now())

	m, err := e.meetings.GetMeeting(meetingID)
	if err != nil {
		return err
	}
	if err := m.CanLeave(e.now()); err != nil {
		return err
	}

	if err := e.meetings.RemoveMembership(meetingID, userID); err != nil {
		return err
	}

	e.metrics.IncLeaves()
	log.Info("User left meeting", "meetingID", meetingID, "userID", userID)
	return nil
}

// Close transitions the meeting to its terminal state. Only the creator may
// close, and only at or after the scheduled start.
func (e *Engine) Close(meetingID, requesterID string, dryRun bool) error {
	defer e.observe(time.Now())

	m, err := e.meetings.GetMeeting(meetingID)
	if err != nil {
		return err
	}
	if err := m.CanClose(e.now(), requesterID); err != nil {
		return err
	}

	if dryRun {
		log.Info("[Dry Run] Would close meeting", "meetingID", meetingID)
		return nil
	}

	if err := e.meetings.CloseMeeting(meetingID); err != nil {
		return err
	}
	m.Open = false

	e.metrics.IncMeetingsClosed()
	log.Info("Meeting closed", "meetingID", meetingID, "closedBy", requesterID)

	if _, err := e.notifier.SendMeetingClosed(m, dryRun); err != nil {
		log.Error("Failed to send meeting-closed notification", "error", err, "meetingID", meetingID)
	}
	if err := e.pubsub.SendMessage(pubsub.EventMeetingClosed, pubsub.MeetingEvent{MeetingID: meetingID}); err != nil {
		log.Error("Failed to publish meeting-closed event", "error", err, "meetingID", meetingID)
	}
	return nil
}

// SubmitScore records a team's score for a closed meeting. When the last
// team's score lands, the outcome is resolved and competitive ratings are
// adjusted as a side effect.
func (e *Engine) SubmitScore(meetingID string, teamNumber, rawValue int, dryRun bool) error {
	defer e.observe(time.Now())

	m, err := e.meetings.GetMeeting(meetingID)
	if err != nil {
		return err
	}
	if m.Open {
		return meeting.ErrMeetingNotClosed
	}
	if m.OutcomeApplied {
		return meeting.ErrOutcomeApplied
	}
	settings := m.Sport.Settings()
	if teamNumber < 1 || teamNumber > settings.TeamCount {
		return meeting.ErrInvalidTeam
	}
	if rawValue < 1 || rawValue > 10 {
		return meeting.ErrInvalidScore
	}

	if dryRun {
		log.Info("[Dry Run] Would submit score", "meetingID", meetingID, "team", teamNumber, "raw", rawValue)
		return nil
	}

	if err := e.meetings.InsertScore(meetingID, teamNumber, rawValue); err != nil {
		return err
	}
	e.metrics.IncScoresSubmitted()
	log.Info("Score submitted", "meetingID", meetingID, "team", teamNumber, "raw", rawValue)

	scores, err := e.meetings.ListScores(meetingID)
	if err != nil {
		return fmt.Errorf("score recorded but completeness check failed: %w", err)
	}
	if !meeting.AllTeamsScored(scores, settings.TeamCount) {
		return nil
	}

	return e.applyOutcome(m, scores, dryRun)
}

// applyOutcome resolves the complete score set and applies rating deltas to
// every participant. It runs at most once per meeting: the outcome_applied
// marker is claimed first, and released again if rating application fails
// so a retry can redo the whole step.
func (e *Engine) applyOutcome(m *meeting.Meeting, scores []meeting.Score, dryRun bool) error {
	scoreByTeam := make(map[int]int, len(scores))
	for _, sc := range scores {
		scoreByTeam[sc.TeamNumber] = sc.RawValue
	}

	res := scoring.Resolve(scoreByTeam)

	if err := e.meetings.MarkOutcomeApplied(m.ID); err != nil {
		if errors.Is(err, meeting.ErrOutcomeApplied) {
			log.Info("Outcome already applied, skipping", "meetingID", m.ID)
			return nil
		}
		return err
	}
	e.metrics.IncOutcomesResolved(string(res.Kind))
	log.Info("Outcome resolved", "meetingID", m.ID, "kind", res.Kind, "winningTeam", res.WinningTeam)

	if m.Competitive && res.Kind != scoring.KindContested {
		settings := m.Sport.Settings()
		deltas := make(map[string]float64, len(m.Memberships))
		for _, mem := range m.Memberships {
			delta := scoring.Delta(scoreByTeam[mem.TeamNumber], settings.Multiplier)
			switch res.TeamOutcome(mem.TeamNumber) {
			case scoring.OutcomeWin, scoring.OutcomeDraw:
				deltas[mem.UserID] = delta
			case scoring.OutcomeLoss:
				deltas[mem.UserID] = -delta
			}
		}

		if err := e.users.AdjustRatings(deltas); err != nil {
			// Release the claim so the whole step can be retried; a partial
			// batch never committed thanks to the store's transaction.
			if unmarkErr := e.meetings.UnmarkOutcomeApplied(m.ID); unmarkErr != nil {
				log.Error("Failed to release outcome claim after rating failure", "error", unmarkErr, "meetingID", m.ID)
			}
			return fmt.Errorf("failed to apply rating deltas: %w", err)
		}
		log.Info("Rating deltas applied", "meetingID", m.ID, "participants", len(deltas))
	}

	if _, err := e.notifier.SendResultNotification(m, res, scores, dryRun); err != nil {
		log.Error("Failed to send result notification", "error", err, "meetingID", m.ID)
	}
	if err := e.pubsub.SendMessage(pubsub.EventOutcomeApplied, pubsub.MeetingEvent{MeetingID: m.ID}); err != nil {
		log.Error("Failed to publish outcome-applied event", "error", err, "meetingID", m.ID)
	}
	return nil
}

// NotifyResult re-sends the result notification for a resolved meeting.
// Used by the pubsub push endpoint.
func (e *Engine) NotifyResult(meetingID string, dryRun bool) error {
	m, err := e.meetings.GetMeeting(meetingID)
	if err != nil {
		return err
	}
	scores, err := e.meetings.ListScores(meetingID)
	if err != nil {
		return err
	}
	scoreByTeam := make(map[int]int, len(scores))
	for _, sc := range scores {
		scoreByTeam[sc.TeamNumber] = sc.RawValue
	}

	res := scoring.Resolve(scoreByTeam)
	if _, err := e.notifier.SendResultNotification(m, res, scores, dryRun); err != nil {
		return fmt.Errorf("failed to send result notification: %w", err)
	}
	return nil
}

func (e *Engine) observe(start time.Time) {
	e.metrics.ObserveProcessingDuration(time.Since(start).Seconds())
}
