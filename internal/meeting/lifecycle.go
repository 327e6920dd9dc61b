package meeting

import "time"

// State is the lifecycle state of a meeting. InProgress is derived from the
// clock on every check, never stored.
type State string

const (
	StateOpen       State = "OPEN"
	StateInProgress State = "IN_PROGRESS"
	StateClosed     State = "CLOSED"
)

// State reports the meeting's lifecycle state at the given instant.
func (m *Meeting) State(now time.Time) State {
	if !m.Open {
		return StateClosed
	}
	if !now.Before(m.StartTime()) {
		return StateInProgress
	}
	return StateOpen
}

// CanJoin reports whether a user may join at the given instant. A meeting is
// joinable only while it is open and has not started.
func (m *Meeting) CanJoin(now time.Time) error {
	if !m.Open {
		return ErrMeetingClosed
	}
	if !now.Before(m.StartTime()) {
		return ErrMeetingAlreadyStarted
	}
	return nil
}

// CanLeave uses the same predicate as CanJoin: membership changes are
// allowed only before the meeting starts.
func (m *Meeting) CanLeave(now time.Time) error {
	return m.CanJoin(now)
}

// CanClose reports whether the requester may close the meeting at the given
// instant. Only the creator may close, only once, and only at or after the
// scheduled start.
func (m *Meeting) CanClose(now time.Time, requesterID string) error {
	if requesterID != m.CreatorID {
		return ErrNotCreator
	}
	if !m.Open {
		return ErrAlreadyClosed
	}
	if now.Before(m.StartTime()) {
		return ErrNotYetStarted
	}
	return nil
}
