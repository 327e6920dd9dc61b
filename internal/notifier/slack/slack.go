package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mkarlsen/courtside/internal/meeting"
	"github.com/mkarlsen/courtside/internal/metrics"
	"github.com/mkarlsen/courtside/internal/notifier"
	"github.com/mkarlsen/courtside/internal/scoring"
	"github.com/mkarlsen/courtside/internal/users"
	"github.com/slack-go/slack"
)

// slackClient is an interface that contains the methods from the slack.Client
// that we use. This allows for easy mocking in tests.
type slackClient interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

var _ notifier.Notifier = &Notifier{}

// Notifier handles sending notifications to Slack.
type Notifier struct {
	api       slackClient
	channelID string
	metrics   metrics.Metrics
}

// NewNotifier creates a new Notifier.
func NewNotifier(token, channelID string, metrics metrics.Metrics) *Notifier {
	api := slack.New(token)
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

// NewNotifierWithAPI creates a new Notifier with a specific client instance.
// Useful for tests that need to intercept API calls.
func NewNotifierWithAPI(api slackClient, channelID string, metrics metrics.Metrics) *Notifier {
	return &Notifier{
		api:       api,
		channelID: channelID,
		metrics:   metrics,
	}
}

func (s *Notifier) sendMessage(message slack.Message, dryRun bool) (string, error) {
	if dryRun {
		jsonMsg, _ := json.MarshalIndent(message, "", "  ")
		log.Info("[Dry Run] Would send Slack message", "channel", s.channelID, "message", string(jsonMsg))
		return "dry-run-ts", nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	channelID, timestamp, err := s.api.PostMessageContext(
		ctx,
		s.channelID,
		slack.MsgOptionBlocks(message.Blocks.BlockSet...),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		s.metrics.IncSlackNotifFailed()
		log.Error("Failed to send Slack message", "error", err, "channel", channelID)
		return "", fmt.Errorf("failed to post message: %w", err)
	}

	s.metrics.IncSlackNotifSent()
	log.Info("Successfully sent Slack message", "channel", channelID, "timestamp", timestamp)
	return timestamp, nil
}

func (s *Notifier) SendMeetingClosed(m *meeting.Meeting, dryRun bool) (string, error) {
	return s.sendMessage(s.formatMeetingClosed(m), dryRun)
}

func (s *Notifier) SendResultNotification(m *meeting.Meeting, res scoring.Resolution, scores []meeting.Score, dryRun bool) (string, error) {
	return s.sendMessage(s.formatResult(m, res, scores), dryRun)
}

func (s *Notifier) SendLeaderboard(leaderboard []users.User, dryRun bool) error {
	_, err := s.sendMessage(s.formatLeaderboard(leaderboard), dryRun)
	return err
}

func (s *Notifier) formatMeetingClosed(m *meeting.Meeting) slack.Message {
	var blocks []slack.Block

	headerText := slack.NewTextBlockObject("plain_text", "🏁 Meeting closed!", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	detailsText := fmt.Sprintf("%s on %s with %d participant(s). Scores can now be submitted.",
		m.Sport.Name,
		m.StartTime().Format("Mon, Jan 2 15:04"),
		len(m.Memberships),
	)
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", detailsText, true, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}

func (s *Notifier) formatResult(m *meeting.Meeting, res scoring.Resolution, scores []meeting.Score) slack.Message {
	var blocks []slack.Block

	headerText := slack.NewTextBlockObject("plain_text", "🏆 Match finished!", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	var scoreParts []string
	for _, sc := range scores {
		scoreParts = append(scoreParts, fmt.Sprintf("Team %d: %d", sc.TeamNumber, sc.RawValue))
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", strings.Join(scoreParts, " | "), true, false), nil, nil))

	var verdict string
	switch res.Kind {
	case scoring.KindDraw:
		verdict = "It's a draw, everyone shares the points."
	case scoring.KindContested:
		verdict = "Contested result, no points awarded."
	default:
		verdict = fmt.Sprintf("Team %d takes the win!", res.WinningTeam)
	}
	blocks = append(blocks, slack.NewContextBlock("", slack.NewTextBlockObject("plain_text", verdict, true, false)))

	return slack.NewBlockMessage(blocks...)
}

func (s *Notifier) formatLeaderboard(leaderboard []users.User) slack.Message {
	var blocks []slack.Block

	headerText := slack.NewTextBlockObject("plain_text", "📊 Competitive leaderboard", true, false)
	blocks = append(blocks, slack.NewHeaderBlock(headerText))

	var lines []string
	for i, u := range leaderboard {
		lines = append(lines, fmt.Sprintf("%d. %s — %.1f pts", i+1, u.Name, u.CompetitivePoints))
	}
	if len(lines) == 0 {
		lines = append(lines, "No rated users yet.")
	}
	blocks = append(blocks, slack.NewSectionBlock(slack.NewTextBlockObject("plain_text", strings.Join(lines, "\n"), true, false), nil, nil))

	return slack.NewBlockMessage(blocks...)
}
