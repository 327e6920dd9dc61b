package http

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/mkarlsen/courtside/internal/meeting"
	"github.com/mkarlsen/courtside/internal/pubsub"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ListMeetingsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meetings, err := s.Meetings.ListMeetings()
		if err != nil {
			log.Error("Failed to list meetings", "error", err)
			http.Error(w, "Failed to list meetings", http.StatusInternalServerError)
			return
		}
		writeJSON(w, meetings)
	}
}

func (s *Server) LeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		leaderboard, err := s.Users.Leaderboard()
		if err != nil {
			log.Error("Failed to get leaderboard", "error", err)
			http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
			return
		}
		if r.URL.Query().Get("announce") == "true" {
			if err := s.Notifier.SendLeaderboard(leaderboard, isDryRunFromContext(r)); err != nil {
				log.Error("Failed to announce leaderboard", "error", err)
			}
		}
		writeJSON(w, leaderboard)
	}
}

func (s *Server) JoinHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meetingID := r.URL.Query().Get("meetingID")
		userID := r.URL.Query().Get("userID")
		if meetingID == "" || userID == "" {
			http.Error(w, "meetingID and userID are required", http.StatusBadRequest)
			return
		}

		team, err := s.Engine.Join(meetingID, userID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]int{"team": team})
	}
}

func (s *Server) JoinTeamHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meetingID := r.URL.Query().Get("meetingID")
		userID := r.URL.Query().Get("userID")
		team, err := strconv.Atoi(r.URL.Query().Get("team"))
		if meetingID == "" || userID == "" || err != nil {
			http.Error(w, "meetingID, userID and team are required", http.StatusBadRequest)
			return
		}

		if err := s.Engine.JoinTeam(meetingID, userID, team); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]string{"status": "ok"})
	}
}

func (s *Server) ChangeTeamHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meetingID := r.URL.Query().Get("meetingID")
		userID := r.URL.Query().Get("userID")
		team, err := strconv.Atoi(r.URL.Query().Get("team"))
		if meetingID == "" || userID == "" || err != nil {
			http.Error(w, "meetingID, userID and team are required", http.StatusBadRequest)
			return
		}

		if err := s.Engine.ChangeTeam(meetingID, userID, team); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]string{"status": "ok"})
	}
}

func (s *Server) LeaveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meetingID := r.URL.Query().Get("meetingID")
		userID := r.URL.Query().Get("userID")
		if meetingID == "" || userID == "" {
			http.Error(w, "meetingID and userID are required", http.StatusBadRequest)
			return
		}

		if err := s.Engine.Leave(meetingID, userID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]string{"status": "ok"})
	}
}

func (s *Server) CloseHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meetingID := r.URL.Query().Get("meetingID")
		requesterID := r.URL.Query().Get("requesterID")
		if meetingID == "" || requesterID == "" {
			http.Error(w, "meetingID and requesterID are required", http.StatusBadRequest)
			return
		}

		if err := s.Engine.Close(meetingID, requesterID, isDryRunFromContext(r)); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]string{"status": "closed"})
	}
}

func (s *Server) SubmitScoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		meetingID := r.URL.Query().Get("meetingID")
		team, teamErr := strconv.Atoi(r.URL.Query().Get("team"))
		value, valueErr := strconv.Atoi(r.URL.Query().Get("value"))
		if meetingID == "" || teamErr != nil || valueErr != nil {
			http.Error(w, "meetingID, team and value are required", http.StatusBadRequest)
			return
		}

		if err := s.Engine.SubmitScore(meetingID, team, value, isDryRunFromContext(r)); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, map[string]string{"status": "recorded"})
	}
}

func (s *Server) UserStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID := r.URL.Query().Get("userID")
		if userID == "" {
			http.Error(w, "userID is required", http.StatusBadRequest)
			return
		}

		userStats, err := s.Stats.UserStats(userID)
		if err != nil {
			log.Error("Failed to compile user stats", "error", err, "userID", userID)
			http.Error(w, "Failed to compile user stats", http.StatusInternalServerError)
			return
		}
		writeJSON(w, userStats)
	}
}

// NotifyResultHandler consumes pubsub push messages for the notify-result
// subscription and re-sends the result announcement.
func (s *Server) NotifyResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bodyBytes, err := io.ReadAll(r.Body)
		if err != nil {
			log.Error("Failed to read request body", "error", err)
			http.Error(w, "Failed to read request body", http.StatusInternalServerError)
			return
		}
		log.Debug("Received notify-result message", "body", string(bodyBytes))

		var pubsubMsg struct {
			Subscription string `json:"subscription"`
			Message      struct {
				Data string `json:"data"`
			} `json:"message"`
		}
		if err := json.Unmarshal(bodyBytes, &pubsubMsg); err != nil {
			log.Error("Failed to unmarshal wrapper JSON", "error", err)
			http.Error(w, "Invalid JSON", http.StatusBadRequest)
			return
		}

		rawData, err := base64.StdEncoding.DecodeString(pubsubMsg.Message.Data)
		if err != nil {
			log.Error("Failed to decode base64 data", "error", err)
			http.Error(w, "Invalid base64 data", http.StatusBadRequest)
			return
		}

		var event pubsub.MeetingEvent
		if err := s.pubsub.ProcessMessage(rawData, &event); err != nil {
			http.Error(w, "Invalid message payload", http.StatusBadRequest)
			return
		}
		if err := s.Engine.NotifyResult(event.MeetingID, isDryRunFromContext(r)); err != nil {
			log.Error("Failed to notify result", "error", err, "meetingID", event.MeetingID)
		}
		w.Write([]byte("OK"))
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to write response", "error", err)
	}
}

// writeError maps domain errors onto HTTP statuses. Precondition violations
// carry their message to the caller; anything else is a store/internal
// failure and surfaces as a generic retry prompt without leaking internals.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, meeting.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, meeting.ErrNotCreator):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, meeting.ErrInvalidScore),
		errors.Is(err, meeting.ErrInvalidTeam):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, meeting.ErrTeamFull),
		errors.Is(err, meeting.ErrMeetingFull),
		errors.Is(err, meeting.ErrAlreadyJoined),
		errors.Is(err, meeting.ErrNotJoined),
		errors.Is(err, meeting.ErrSameTeam),
		errors.Is(err, meeting.ErrMeetingClosed),
		errors.Is(err, meeting.ErrMeetingAlreadyStarted),
		errors.Is(err, meeting.ErrNotYetStarted),
		errors.Is(err, meeting.ErrAlreadyClosed),
		errors.Is(err, meeting.ErrAlreadyScored),
		errors.Is(err, meeting.ErrMeetingNotClosed),
		errors.Is(err, meeting.ErrOutcomeApplied):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		log.Error("Unexpected error", "error", err)
		http.Error(w, "Something went wrong, please try again", http.StatusInternalServerError)
	}
}
