package meeting

// MeetingStore defines the interface for interacting with meeting data.
// Mutating methods are atomic read-check-write units: capacity checks and
// the matching writes happen in a single statement or transaction so two
// racing requests cannot both win the last slot.
type MeetingStore interface {
	CreateSport(sport Sport) error
	GetSport(sportID string) (Sport, error)
	CreateMeeting(m *Meeting) error
	GetMeeting(meetingID string) (*Meeting, error)
	ListMeetings() ([]*Meeting, error)
	ListMemberships(meetingID string) ([]TeamMembership, error)
	ListMembershipsForUser(userID string) ([]TeamMembership, error)
	AddMembership(meetingID, userID string, teamNumber int) error
	RemoveMembership(meetingID, userID string) error
	MoveMembership(meetingID, userID string, newTeam int) error
	CloseMeeting(meetingID string) error
	InsertScore(meetingID string, teamNumber, rawValue int) error
	ListScores(meetingID string) ([]Score, error)
	MarkOutcomeApplied(meetingID string) error
	UnmarkOutcomeApplied(meetingID string) error
}
