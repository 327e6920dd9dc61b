package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// Service holds the registered Prometheus collectors.
type Service struct {
	Joins              prometheus.Counter
	Leaves             prometheus.Counter
	MeetingsClosed     prometheus.Counter
	ScoresSubmitted    prometheus.Counter
	OutcomesResolved   *prometheus.CounterVec
	ProcessingDuration prometheus.Histogram
	SlackNotifSent     prometheus.Counter
	SlackNotifFailed   prometheus.Counter
	StartupTimeSeconds prometheus.Gauge
}

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		Joins: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_joins_total",
			Help: "The total number of successful meeting joins.",
		}),
		Leaves: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_leaves_total",
			Help: "The total number of successful meeting leaves.",
		}),
		MeetingsClosed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_meetings_closed_total",
			Help: "The total number of meetings closed by their creators.",
		}),
		ScoresSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_scores_submitted_total",
			Help: "The total number of team scores accepted by the ledger.",
		}),
		OutcomesResolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "courtside_outcomes_resolved_total",
			Help: "The total number of meeting outcomes resolved, by resolution kind.",
		}, []string{"kind"}),
		ProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "courtside_operation_duration_seconds",
			Help:    "The duration of individual engine operations.",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		SlackNotifSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_slack_notifications_sent_total",
			Help: "The total number of Slack notifications successfully sent.",
		}),
		SlackNotifFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "courtside_slack_notifications_failed_total",
			Help: "The total number of Slack notifications that failed to send.",
		}),
		StartupTimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "courtside_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.Joins,
		s.Leaves,
		s.MeetingsClosed,
		s.ScoresSubmitted,
		s.OutcomesResolved,
		s.ProcessingDuration,
		s.SlackNotifSent,
		s.SlackNotifFailed,
		s.StartupTimeSeconds,
	)

	return s
}

func (s *Service) IncJoins() {
	s.Joins.Inc()
}

func (s *Service) IncLeaves() {
	s.Leaves.Inc()
}

func (s *Service) IncMeetingsClosed() {
	s.MeetingsClosed.Inc()
}

func (s *Service) IncScoresSubmitted() {
	s.ScoresSubmitted.Inc()
}

func (s *Service) IncOutcomesResolved(kind string) {
	s.OutcomesResolved.WithLabelValues(kind).Inc()
}

func (s *Service) ObserveProcessingDuration(duration float64) {
	s.ProcessingDuration.Observe(duration)
}

func (s *Service) IncSlackNotifSent() {
	s.SlackNotifSent.Inc()
}

func (s *Service) IncSlackNotifFailed() {
	s.SlackNotifFailed.Inc()
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTimeSeconds.Set(duration)
}
