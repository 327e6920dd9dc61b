package main

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/mkarlsen/courtside/internal/database"
	"github.com/mkarlsen/courtside/internal/meeting"
	"github.com/mkarlsen/courtside/internal/users"
)

// Simplified config loading for the script.
func loadConfig() map[string]string {
	err := godotenv.Load()
	if err != nil {
		log.Warn("No .env file found, reading from environment variables")
	}

	config := map[string]string{
		"DB_NAME":        "courtside.db",
		"MIGRATIONS_DIR": "./migrations",
	}
	for key := range config {
		if value, ok := os.LookupEnv(key); ok {
			config[key] = value
		}
	}
	config["TURSO_PRIMARY_URL"] = os.Getenv("TURSO_PRIMARY_URL")
	config["TURSO_AUTH_TOKEN"] = os.Getenv("TURSO_AUTH_TOKEN")
	return config
}

func main() {
	log.Info("Starting database seeder...")
	cfg := loadConfig()

	db, teardown, err := database.InitDB(cfg["DB_NAME"], cfg["TURSO_PRIMARY_URL"], cfg["TURSO_AUTH_TOKEN"], cfg["MIGRATIONS_DIR"])
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	defer teardown()

	meetingStore := meeting.New(db)
	userStore := users.New(db)

	sports := []meeting.Sport{
		{ID: "padel", Name: "Padel", TeamCount: 2, CapacityPerTeam: 2, Multiplier: 1.5},
		{ID: "football", Name: "Football", TeamCount: 2, CapacityPerTeam: 5, Multiplier: 1},
		{ID: "volleyball", Name: "Volleyball", TeamCount: 2, CapacityPerTeam: 6, Multiplier: 1.2},
	}
	for _, sp := range sports {
		if err := meetingStore.CreateSport(sp); err != nil {
			log.Fatalf("Failed to seed sport %s: %s", sp.ID, err)
		}
	}

	seedUsers := []struct{ ID, Name string }{
		{"user-1", "Seeder Player A"},
		{"user-2", "Seeder Player B"},
		{"user-3", "Seeder Player C"},
		{"user-4", "Seeder Player D"},
	}
	for _, u := range seedUsers {
		if err := userStore.UpsertUser(u.ID, u.Name); err != nil {
			log.Fatalf("Failed to seed user %s: %s", u.ID, err)
		}
	}

	// One upcoming competitive padel meeting, open for joins.
	starts := time.Now().Add(48 * time.Hour).Truncate(time.Hour)
	m := &meeting.Meeting{
		ID:          uuid.New().String(),
		SportID:     "padel",
		CreatorID:   "user-1",
		Competitive: true,
		Open:        true,
		StartsAt:    starts.Unix(),
		EndsAt:      starts.Add(90 * time.Minute).Unix(),
	}
	if err := meetingStore.CreateMeeting(m); err != nil {
		log.Fatalf("Failed to seed meeting: %s", err)
	}
	for _, userID := range []string{"user-1", "user-2", "user-3"} {
		team := 1
		if userID == "user-3" {
			team = 2
		}
		if err := meetingStore.AddMembership(m.ID, userID, team); err != nil {
			log.Fatalf("Failed to seed membership for %s: %s", userID, err)
		}
	}

	log.Info("Seeding complete", "meetingID", m.ID, "startsAt", starts)
}
