package slack

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mkarlsen/courtside/internal/meeting"
	"github.com/mkarlsen/courtside/internal/metrics"
	"github.com/mkarlsen/courtside/internal/scoring"
	"github.com/mkarlsen/courtside/internal/users"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClient records posted messages without talking to Slack.
type fakeClient struct {
	calls []string
	err   error
}

func (f *fakeClient) PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error) {
	f.calls = append(f.calls, channelID)
	if f.err != nil {
		return "", "", f.err
	}
	return channelID, "1234.5678", nil
}

func testMeeting() *meeting.Meeting {
	start := time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)
	return &meeting.Meeting{
		ID:        "m1",
		CreatorID: "creator",
		StartsAt:  start.Unix(),
		EndsAt:    start.Add(time.Hour).Unix(),
		Sport:     meeting.Sport{Name: "Padel", TeamCount: 2, CapacityPerTeam: 2, Multiplier: 1.5},
		Memberships: []meeting.TeamMembership{
			{UserID: "p1", TeamNumber: 1},
			{UserID: "p2", TeamNumber: 2},
		},
	}
}

func TestSendMeetingClosed(t *testing.T) {
	api := &fakeClient{}
	m := metrics.NewMock()
	n := NewNotifierWithAPI(api, "C123", m)

	ts, err := n.SendMeetingClosed(testMeeting(), false)
	require.NoError(t, err)
	assert.Equal(t, "1234.5678", ts)
	require.Len(t, api.calls, 1)
	assert.Equal(t, "C123", api.calls[0])
	assert.Equal(t, 1, m.SlackSentCount)
}

func TestSendMeetingClosedDryRun(t *testing.T) {
	api := &fakeClient{}
	n := NewNotifierWithAPI(api, "C123", metrics.NewMock())

	ts, err := n.SendMeetingClosed(testMeeting(), true)
	require.NoError(t, err)
	assert.Equal(t, "dry-run-ts", ts)
	assert.Empty(t, api.calls)
}

func TestSendMeetingClosedError(t *testing.T) {
	api := &fakeClient{err: errors.New("channel_not_found")}
	m := metrics.NewMock()
	n := NewNotifierWithAPI(api, "C123", m)

	_, err := n.SendMeetingClosed(testMeeting(), false)
	assert.Error(t, err)
	assert.Equal(t, 1, m.SlackFailedCount)
	assert.Equal(t, 0, m.SlackSentCount)
}

func TestSendResultNotification(t *testing.T) {
	api := &fakeClient{}
	n := NewNotifierWithAPI(api, "C123", metrics.NewMock())

	scores := []meeting.Score{
		{MeetingID: "m1", TeamNumber: 1, RawValue: 8},
		{MeetingID: "m1", TeamNumber: 2, RawValue: 5},
	}
	_, err := n.SendResultNotification(testMeeting(), scoring.Resolution{Kind: scoring.KindDecided, WinningTeam: 1}, scores, false)
	require.NoError(t, err)
	assert.Len(t, api.calls, 1)
}

func TestSendLeaderboard(t *testing.T) {
	api := &fakeClient{}
	n := NewNotifierWithAPI(api, "C123", metrics.NewMock())

	board := []users.User{
		{ID: "u1", Name: "Alice", CompetitivePoints: 24},
		{ID: "u2", Name: "Bob", CompetitivePoints: 12},
	}
	require.NoError(t, n.SendLeaderboard(board, false))
	assert.Len(t, api.calls, 1)

	t.Run("empty leaderboard still sends", func(t *testing.T) {
		require.NoError(t, n.SendLeaderboard(nil, false))
		assert.Len(t, api.calls, 2)
	})
}
