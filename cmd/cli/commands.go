package main

import (
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(meetingsCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(joinCmd)
	rootCmd.AddCommand(leaveCmd)
	rootCmd.AddCommand(closeCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(metricsCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the health of the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/health")
	},
}

var meetingsCmd = &cobra.Command{
	Use:   "meetings",
	Short: "List all meetings",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/meetings")
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the competitive-points leaderboard",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/leaderboard")
	},
}

var joinCmd = &cobra.Command{
	Use:   "join <meetingID> <userID>",
	Short: "Join a meeting on the first available team",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{"meetingID": {args[0]}, "userID": {args[1]}}
		return performGetRequest("/join?" + q.Encode())
	},
}

var leaveCmd = &cobra.Command{
	Use:   "leave <meetingID> <userID>",
	Short: "Leave a meeting",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{"meetingID": {args[0]}, "userID": {args[1]}}
		return performGetRequest("/leave?" + q.Encode())
	},
}

var closeCmd = &cobra.Command{
	Use:   "close <meetingID> <requesterID>",
	Short: "Close a started meeting (creator only)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{"meetingID": {args[0]}, "requesterID": {args[1]}}
		return performGetRequest("/close?" + q.Encode())
	},
}

var scoreCmd = &cobra.Command{
	Use:   "score <meetingID> <team> <value>",
	Short: "Submit a team's score for a closed meeting",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{"meetingID": {args[0]}, "team": {args[1]}, "value": {args[2]}}
		return performGetRequest("/submit-score?" + q.Encode())
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats <userID>",
	Short: "Show a user's competitive statistics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		q := url.Values{"userID": {args[0]}}
		return performGetRequest("/stats?" + q.Encode())
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Get application metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		return performGetRequest("/metrics")
	},
}

func performGetRequest(endpoint string) error {
	url := host + endpoint
	fmt.Printf("Making request to %s\n", url)

	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	fmt.Printf("Status Code: %d\n", resp.StatusCode)
	fmt.Println("Response Body:")
	fmt.Println(string(body))

	return nil
}
