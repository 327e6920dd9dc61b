package metrics

// Metrics defines the instrumentation points used across the application.
type Metrics interface {
	IncJoins()
	IncLeaves()
	IncMeetingsClosed()
	IncScoresSubmitted()
	IncOutcomesResolved(kind string)
	ObserveProcessingDuration(duration float64)
	IncSlackNotifSent()
	IncSlackNotifFailed()
	SetStartupTime(duration float64)
}
