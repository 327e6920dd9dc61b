package metrics

import "sync"

var _ Metrics = (*Mock)(nil)

// Mock is a no-op Metrics implementation that counts calls for assertions.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	JoinsCount            int
	LeavesCount           int
	MeetingsClosedCount   int
	ScoresSubmittedCount  int
	OutcomesResolvedCalls []string
	DurationObservations  []float64
	SlackSentCount        int
	SlackFailedCount      int
	StartupTime           float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) IncJoins() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.JoinsCount++
}

func (m *Mock) IncLeaves() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LeavesCount++
}

func (m *Mock) IncMeetingsClosed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MeetingsClosedCount++
}

func (m *Mock) IncScoresSubmitted() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ScoresSubmittedCount++
}

func (m *Mock) IncOutcomesResolved(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.OutcomesResolvedCalls = append(m.OutcomesResolvedCalls, kind)
}

func (m *Mock) ObserveProcessingDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DurationObservations = append(m.DurationObservations, duration)
}

func (m *Mock) IncSlackNotifSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SlackSentCount++
}

func (m *Mock) IncSlackNotifFailed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SlackFailedCount++
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartupTime = duration
}
