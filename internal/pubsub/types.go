package pubsub

import "cloud.google.com/go/pubsub"

type client struct {
	client   *pubsub.Client
	teardown func()
}

// EventType represents the type of event/message sent via pubsub.
type EventType string

const (
	EventMeetingClosed  EventType = "meeting-closed"
	EventOutcomeApplied EventType = "outcome-applied"
	EventNotifyResult   EventType = "notify-result"
)

// MeetingEvent is the payload for meeting lifecycle events. Consumers
// re-fetch the meeting by ID rather than trusting a stale snapshot.
type MeetingEvent struct {
	MeetingID string `msgpack:"meeting_id"`
}
