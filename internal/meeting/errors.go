package meeting

import "errors"

// Precondition violations. These are expected, user-facing outcomes and are
// never retried; callers distinguish them from store I/O failures with
// errors.Is.
var (
	ErrNotFound              = errors.New("meeting not found")
	ErrMeetingClosed         = errors.New("meeting is closed")
	ErrMeetingAlreadyStarted = errors.New("meeting has already started")
	ErrNotYetStarted         = errors.New("meeting has not started yet")
	ErrAlreadyClosed         = errors.New("meeting is already closed")
	ErrNotCreator            = errors.New("only the creator can close the meeting")
	ErrTeamFull              = errors.New("team is full")
	ErrMeetingFull           = errors.New("meeting is full")
	ErrAlreadyJoined         = errors.New("user already joined this meeting")
	ErrNotJoined             = errors.New("user has not joined this meeting")
	ErrInvalidTeam           = errors.New("team number out of range")
	ErrSameTeam              = errors.New("user is already on that team")
	ErrInvalidScore          = errors.New("score must be between 1 and 10")
	ErrAlreadyScored         = errors.New("team has already been scored")
	ErrMeetingNotClosed      = errors.New("meeting is not closed yet")
	ErrOutcomeApplied        = errors.New("outcome already applied for this meeting")
)
