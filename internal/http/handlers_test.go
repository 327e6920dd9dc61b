package http

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mkarlsen/courtside/internal/config"
	"github.com/mkarlsen/courtside/internal/database"
	"github.com/mkarlsen/courtside/internal/engine"
	"github.com/mkarlsen/courtside/internal/meeting"
	"github.com/mkarlsen/courtside/internal/metrics"
	"github.com/mkarlsen/courtside/internal/notifier"
	"github.com/mkarlsen/courtside/internal/pubsub"
	"github.com/mkarlsen/courtside/internal/stats"
	"github.com/mkarlsen/courtside/internal/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type serverFixture struct {
	server   *Server
	meetings meeting.MeetingStore
	users    users.UserStore
	notifier *notifier.Mock
	pubsub   *pubsub.MockPubSubClient
	start    time.Time
}

func newServerFixture(t *testing.T) *serverFixture {
	t.Helper()

	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	t.Cleanup(teardown)

	f := &serverFixture{
		meetings: meeting.New(db),
		users:    users.New(db),
		notifier: notifier.NewMock(),
		pubsub:   pubsub.NewMock("test-project"),
		start:    time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC),
	}
	metricsMock := metrics.NewMock()
	eng := engine.New(f.meetings, f.users, f.notifier, metricsMock, f.pubsub).
		WithClock(func() time.Time { return f.start.Add(-time.Hour) })
	compiler := stats.New(f.meetings, f.users)

	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	f.server = NewServer(f.meetings, f.users, eng, compiler, metricsMock, metricsHandler, f.notifier, config.Config{}, f.pubsub)
	return f
}

func (f *serverFixture) afterStart() {
	f.server.Engine.WithClock(func() time.Time { return f.start.Add(time.Minute) })
}

func (f *serverFixture) seedMeeting(t *testing.T) *meeting.Meeting {
	t.Helper()
	require.NoError(t, f.meetings.CreateSport(meeting.Sport{
		ID: "padel", Name: "Padel", TeamCount: 2, CapacityPerTeam: 2, Multiplier: 1.5,
	}))
	m := &meeting.Meeting{
		ID:        "m1",
		SportID:   "padel",
		CreatorID: "creator",
		Open:      true,
		StartsAt:  f.start.Unix(),
		EndsAt:    f.start.Add(90 * time.Minute).Unix(),
	}
	require.NoError(t, f.meetings.CreateMeeting(m))
	return m
}

func (f *serverFixture) get(t *testing.T, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rr := httptest.NewRecorder()
	f.server.ServeHTTP(rr, req)
	return rr
}

func TestHealthCheckHandler(t *testing.T) {
	f := newServerFixture(t)

	rr := f.get(t, "/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "OK!", rr.Body.String())
}

func TestJoinHandler(t *testing.T) {
	t.Run("assigns a team", func(t *testing.T) {
		f := newServerFixture(t)
		f.seedMeeting(t)

		rr := f.get(t, "/join?meetingID=m1&userID=p1")
		require.Equal(t, http.StatusOK, rr.Code)

		var body map[string]int
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
		assert.Equal(t, 1, body["team"])
	})

	t.Run("missing params", func(t *testing.T) {
		f := newServerFixture(t)
		rr := f.get(t, "/join?meetingID=m1")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown meeting", func(t *testing.T) {
		f := newServerFixture(t)
		rr := f.get(t, "/join?meetingID=nope&userID=p1")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("duplicate join conflicts", func(t *testing.T) {
		f := newServerFixture(t)
		f.seedMeeting(t)

		require.Equal(t, http.StatusOK, f.get(t, "/join?meetingID=m1&userID=p1").Code)
		rr := f.get(t, "/join?meetingID=m1&userID=p1")
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("full meeting conflicts", func(t *testing.T) {
		f := newServerFixture(t)
		f.seedMeeting(t)

		for _, u := range []string{"p1", "p2", "p3", "p4"} {
			require.Equal(t, http.StatusOK, f.get(t, "/join?meetingID=m1&userID="+u).Code)
		}
		rr := f.get(t, "/join?meetingID=m1&userID=p5")
		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestJoinTeamHandler(t *testing.T) {
	f := newServerFixture(t)
	f.seedMeeting(t)

	rr := f.get(t, "/join-team?meetingID=m1&userID=p1&team=2")
	assert.Equal(t, http.StatusOK, rr.Code)

	t.Run("invalid team is a bad request", func(t *testing.T) {
		rr := f.get(t, "/join-team?meetingID=m1&userID=p2&team=9")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("non-numeric team is a bad request", func(t *testing.T) {
		rr := f.get(t, "/join-team?meetingID=m1&userID=p2&team=red")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestCloseHandler(t *testing.T) {
	t.Run("creator closes after start", func(t *testing.T) {
		f := newServerFixture(t)
		f.seedMeeting(t)
		f.afterStart()

		rr := f.get(t, "/close?meetingID=m1&requesterID=creator")
		require.Equal(t, http.StatusOK, rr.Code)

		got, err := f.meetings.GetMeeting("m1")
		require.NoError(t, err)
		assert.False(t, got.Open)

		// Closing again reports the conflict.
		rr = f.get(t, "/close?meetingID=m1&requesterID=creator")
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("non-creator is forbidden", func(t *testing.T) {
		f := newServerFixture(t)
		f.seedMeeting(t)
		f.afterStart()

		rr := f.get(t, "/close?meetingID=m1&requesterID=p1")
		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("before start conflicts", func(t *testing.T) {
		f := newServerFixture(t)
		f.seedMeeting(t)

		rr := f.get(t, "/close?meetingID=m1&requesterID=creator")
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("dry run leaves the meeting open", func(t *testing.T) {
		f := newServerFixture(t)
		f.seedMeeting(t)
		f.afterStart()

		rr := f.get(t, "/close?meetingID=m1&requesterID=creator&dry_run=true")
		require.Equal(t, http.StatusOK, rr.Code)

		got, err := f.meetings.GetMeeting("m1")
		require.NoError(t, err)
		assert.True(t, got.Open)
	})
}

func TestSubmitScoreHandler(t *testing.T) {
	f := newServerFixture(t)
	f.seedMeeting(t)
	f.afterStart()

	t.Run("open meeting conflicts", func(t *testing.T) {
		rr := f.get(t, "/submit-score?meetingID=m1&team=1&value=8")
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	require.Equal(t, http.StatusOK, f.get(t, "/close?meetingID=m1&requesterID=creator").Code)

	t.Run("out-of-range value is a bad request", func(t *testing.T) {
		rr := f.get(t, "/submit-score?meetingID=m1&team=1&value=11")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("records a valid score", func(t *testing.T) {
		rr := f.get(t, "/submit-score?meetingID=m1&team=1&value=8")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "recorded")
	})

	t.Run("second submission for the same team conflicts", func(t *testing.T) {
		rr := f.get(t, "/submit-score?meetingID=m1&team=1&value=9")
		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func TestLeaderboardHandler(t *testing.T) {
	f := newServerFixture(t)
	require.NoError(t, f.users.UpsertUser("u1", "Alice"))
	require.NoError(t, f.users.UpsertUser("u2", "Bob"))
	require.NoError(t, f.users.AdjustRating("u2", 12.0))

	rr := f.get(t, "/leaderboard")
	require.Equal(t, http.StatusOK, rr.Code)

	var board []users.User
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &board))
	require.Len(t, board, 2)
	assert.Equal(t, "Bob", board[0].Name)
	assert.Empty(t, f.notifier.SendLeaderboardCalls)

	t.Run("announce pushes to the notifier", func(t *testing.T) {
		rr := f.get(t, "/leaderboard?announce=true")
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, f.notifier.SendLeaderboardCalls, 1)
	})
}

func TestUserStatsHandler(t *testing.T) {
	f := newServerFixture(t)
	require.NoError(t, f.users.UpsertUser("u1", "Alice"))

	rr := f.get(t, "/stats?userID=u1")
	require.Equal(t, http.StatusOK, rr.Code)

	var got stats.UserStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Alice", got.Name)
	assert.Equal(t, 0, got.MatchesPlayed)

	t.Run("missing userID", func(t *testing.T) {
		rr := f.get(t, "/stats")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestNotifyResultHandler(t *testing.T) {
	f := newServerFixture(t)
	m := f.seedMeeting(t)
	require.NoError(t, f.meetings.CloseMeeting(m.ID))
	require.NoError(t, f.meetings.InsertScore(m.ID, 1, 8))
	require.NoError(t, f.meetings.InsertScore(m.ID, 2, 5))

	f.pubsub.ProcessMessageFunc = func(data []byte, returnValue any) error {
		event, ok := returnValue.(*pubsub.MeetingEvent)
		require.True(t, ok)
		event.MeetingID = m.ID
		return nil
	}

	payload := base64.StdEncoding.EncodeToString([]byte("msgpack-payload"))
	body := fmt.Sprintf(`{"subscription":"notify-result","message":{"data":"%s"}}`, payload)

	req := httptest.NewRequest(http.MethodPost, "/notify-result", strings.NewReader(body))
	rr := httptest.NewRecorder()
	f.server.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, f.notifier.SendResultCalls, 1)

	t.Run("invalid wrapper JSON", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/notify-result", strings.NewReader("not json"))
		rr := httptest.NewRecorder()
		f.server.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
