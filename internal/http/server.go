package http

import (
	"net/http"

	"github.com/mkarlsen/courtside/internal/config"
	"github.com/mkarlsen/courtside/internal/engine"
	"github.com/mkarlsen/courtside/internal/meeting"
	"github.com/mkarlsen/courtside/internal/metrics"
	"github.com/mkarlsen/courtside/internal/notifier"
	"github.com/mkarlsen/courtside/internal/pubsub"
	"github.com/mkarlsen/courtside/internal/stats"
	"github.com/mkarlsen/courtside/internal/users"
)

func NewServer(meetings meeting.MeetingStore, userStore users.UserStore, eng *engine.Engine, statsCompiler *stats.Compiler, metricsSvc metrics.Metrics, metricsHandler http.Handler, notifier notifier.Notifier, cfg config.Config, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Meetings:       meetings,
		Users:          userStore,
		Engine:         eng,
		Stats:          statsCompiler,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Notifier:       notifier,
		Cfg:            cfg,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/meetings", Chain(s.ListMeetingsHandler(), paramsMiddleware))
	s.Router.Handle("/leaderboard", Chain(s.LeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/join", Chain(s.JoinHandler(), paramsMiddleware))
	s.Router.Handle("/join-team", Chain(s.JoinTeamHandler(), paramsMiddleware))
	s.Router.Handle("/change-team", Chain(s.ChangeTeamHandler(), paramsMiddleware))
	s.Router.Handle("/leave", Chain(s.LeaveHandler(), paramsMiddleware))
	s.Router.Handle("/close", Chain(s.CloseHandler(), paramsMiddleware))
	s.Router.Handle("/submit-score", Chain(s.SubmitScoreHandler(), paramsMiddleware))
	s.Router.Handle("/stats", Chain(s.UserStatsHandler(), paramsMiddleware))
	s.Router.Handle("/notify-result", Chain(s.NotifyResultHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
