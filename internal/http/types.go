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

type Server struct {
	Meetings       meeting.MeetingStore
	Users          users.UserStore
	Engine         *engine.Engine
	Stats          *stats.Compiler
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Notifier       notifier.Notifier
	Cfg            config.Config
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
