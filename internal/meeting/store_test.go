package meeting_test

import (
	"testing"
	"time"

	"github.com/mkarlsen/courtside/internal/database"
	"github.com/mkarlsen/courtside/internal/meeting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) meeting.MeetingStore {
	t.Helper()
	db, teardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)
	t.Cleanup(teardown)
	return meeting.New(db)
}

func seedMeeting(t *testing.T, store meeting.MeetingStore, sport meeting.Sport) *meeting.Meeting {
	t.Helper()
	require.NoError(t, store.CreateSport(sport))

	now := time.Now().UTC()
	m := &meeting.Meeting{
		ID:        "meeting-" + sport.ID,
		SportID:   sport.ID,
		CreatorID: "creator",
		Open:      true,
		StartsAt:  now.Add(time.Hour).Unix(),
		EndsAt:    now.Add(2 * time.Hour).Unix(),
	}
	require.NoError(t, store.CreateMeeting(m))
	return m
}

var padel = meeting.Sport{ID: "padel", Name: "Padel", TeamCount: 2, CapacityPerTeam: 2, Multiplier: 1.5}

func TestSportCatalog(t *testing.T) {
	store := setupTestStore(t)

	require.NoError(t, store.CreateSport(padel))

	got, err := store.GetSport("padel")
	require.NoError(t, err)
	assert.Equal(t, padel, got)

	t.Run("upsert overwrites settings", func(t *testing.T) {
		updated := padel
		updated.Multiplier = 2.0
		require.NoError(t, store.CreateSport(updated))

		got, err := store.GetSport("padel")
		require.NoError(t, err)
		assert.Equal(t, 2.0, got.Multiplier)
	})

	t.Run("unknown sport", func(t *testing.T) {
		_, err := store.GetSport("cricket")
		assert.ErrorIs(t, err, meeting.ErrNotFound)
	})
}

func TestGetMeeting(t *testing.T) {
	store := setupTestStore(t)
	m := seedMeeting(t, store, padel)

	got, err := store.GetMeeting(m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)
	assert.True(t, got.Open)
	assert.False(t, got.OutcomeApplied)
	assert.Equal(t, "Padel", got.Sport.Name)
	assert.Empty(t, got.Memberships)

	_, err = store.GetMeeting("nope")
	assert.ErrorIs(t, err, meeting.ErrNotFound)
}

func TestAddMembership(t *testing.T) {
	t.Run("fills teams up to capacity", func(t *testing.T) {
		store := setupTestStore(t)
		m := seedMeeting(t, store, padel)

		require.NoError(t, store.AddMembership(m.ID, "p1", 1))
		require.NoError(t, store.AddMembership(m.ID, "p2", 1))
		require.NoError(t, store.AddMembership(m.ID, "p3", 2))
		require.NoError(t, store.AddMembership(m.ID, "p4", 2))

		got, err := store.GetMeeting(m.ID)
		require.NoError(t, err)
		assert.Len(t, got.Memberships, 4)
		assert.Equal(t, 2, got.TeamSize(1))
		assert.Equal(t, 2, got.TeamSize(2))
	})

	t.Run("rejects a full team", func(t *testing.T) {
		store := setupTestStore(t)
		m := seedMeeting(t, store, padel)

		require.NoError(t, store.AddMembership(m.ID, "p1", 1))
		require.NoError(t, store.AddMembership(m.ID, "p2", 1))

		err := store.AddMembership(m.ID, "p3", 1)
		assert.ErrorIs(t, err, meeting.ErrTeamFull)

		got, err := store.GetMeeting(m.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.TeamSize(1))
	})

	t.Run("rejects a full meeting", func(t *testing.T) {
		solo := meeting.Sport{ID: "chess", Name: "Chess", TeamCount: 2, CapacityPerTeam: 1, Multiplier: 1}
		store := setupTestStore(t)
		m := seedMeeting(t, store, solo)

		require.NoError(t, store.AddMembership(m.ID, "p1", 1))
		require.NoError(t, store.AddMembership(m.ID, "p2", 2))

		err := store.AddMembership(m.ID, "p3", 1)
		assert.ErrorIs(t, err, meeting.ErrMeetingFull)
	})

	t.Run("rejects a duplicate join regardless of team", func(t *testing.T) {
		store := setupTestStore(t)
		m := seedMeeting(t, store, padel)

		require.NoError(t, store.AddMembership(m.ID, "p1", 1))
		assert.ErrorIs(t, store.AddMembership(m.ID, "p1", 1), meeting.ErrAlreadyJoined)
		assert.ErrorIs(t, store.AddMembership(m.ID, "p1", 2), meeting.ErrAlreadyJoined)
	})

	t.Run("rejects an out-of-range team", func(t *testing.T) {
		store := setupTestStore(t)
		m := seedMeeting(t, store, padel)

		assert.ErrorIs(t, store.AddMembership(m.ID, "p1", 0), meeting.ErrInvalidTeam)
		assert.ErrorIs(t, store.AddMembership(m.ID, "p1", 3), meeting.ErrInvalidTeam)
	})

	t.Run("unknown meeting", func(t *testing.T) {
		store := setupTestStore(t)
		assert.ErrorIs(t, store.AddMembership("nope", "p1", 1), meeting.ErrNotFound)
	})
}

func TestRemoveMembership(t *testing.T) {
	store := setupTestStore(t)
	m := seedMeeting(t, store, padel)

	require.NoError(t, store.AddMembership(m.ID, "p1", 1))
	require.NoError(t, store.RemoveMembership(m.ID, "p1"))

	got, err := store.GetMeeting(m.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Memberships)

	assert.ErrorIs(t, store.RemoveMembership(m.ID, "p1"), meeting.ErrNotJoined)
}

func TestMoveMembership(t *testing.T) {
	t.Run("moves to a team with room", func(t *testing.T) {
		store := setupTestStore(t)
		m := seedMeeting(t, store, padel)

		require.NoError(t, store.AddMembership(m.ID, "p1", 1))
		require.NoError(t, store.MoveMembership(m.ID, "p1", 2))

		got, err := store.GetMeeting(m.ID)
		require.NoError(t, err)
		mem, ok := got.MembershipOf("p1")
		require.True(t, ok)
		assert.Equal(t, 2, mem.TeamNumber)
	})

	t.Run("rolls back when the target team is full", func(t *testing.T) {
		store := setupTestStore(t)
		m := seedMeeting(t, store, padel)

		require.NoError(t, store.AddMembership(m.ID, "p1", 1))
		require.NoError(t, store.AddMembership(m.ID, "p2", 2))
		require.NoError(t, store.AddMembership(m.ID, "p3", 2))

		err := store.MoveMembership(m.ID, "p1", 2)
		assert.ErrorIs(t, err, meeting.ErrTeamFull)

		// Original membership survives the failed move.
		got, err := store.GetMeeting(m.ID)
		require.NoError(t, err)
		mem, ok := got.MembershipOf("p1")
		require.True(t, ok)
		assert.Equal(t, 1, mem.TeamNumber)
	})

	t.Run("rejects a no-op move", func(t *testing.T) {
		store := setupTestStore(t)
		m := seedMeeting(t, store, padel)

		require.NoError(t, store.AddMembership(m.ID, "p1", 1))
		assert.ErrorIs(t, store.MoveMembership(m.ID, "p1", 1), meeting.ErrSameTeam)
	})

	t.Run("rejects a non-member", func(t *testing.T) {
		store := setupTestStore(t)
		m := seedMeeting(t, store, padel)

		assert.ErrorIs(t, store.MoveMembership(m.ID, "ghost", 2), meeting.ErrNotJoined)
	})
}

func TestCloseMeeting(t *testing.T) {
	store := setupTestStore(t)
	m := seedMeeting(t, store, padel)

	require.NoError(t, store.CloseMeeting(m.ID))

	got, err := store.GetMeeting(m.ID)
	require.NoError(t, err)
	assert.False(t, got.Open)

	// Second close is detected, not silently absorbed.
	assert.ErrorIs(t, store.CloseMeeting(m.ID), meeting.ErrAlreadyClosed)

	assert.ErrorIs(t, store.CloseMeeting("nope"), meeting.ErrNotFound)
}

func TestInsertScore(t *testing.T) {
	store := setupTestStore(t)
	m := seedMeeting(t, store, padel)

	require.NoError(t, store.InsertScore(m.ID, 1, 8))
	require.NoError(t, store.InsertScore(m.ID, 2, 5))

	scores, err := store.ListScores(m.ID)
	require.NoError(t, err)
	require.Len(t, scores, 2)
	assert.Equal(t, 8, scores[0].RawValue)
	assert.Equal(t, 5, scores[1].RawValue)

	t.Run("scores are write-once", func(t *testing.T) {
		err := store.InsertScore(m.ID, 1, 9)
		assert.ErrorIs(t, err, meeting.ErrAlreadyScored)

		scores, err := store.ListScores(m.ID)
		require.NoError(t, err)
		require.Len(t, scores, 2)
		assert.Equal(t, 8, scores[0].RawValue)
	})
}

func TestMarkOutcomeApplied(t *testing.T) {
	store := setupTestStore(t)
	m := seedMeeting(t, store, padel)

	require.NoError(t, store.MarkOutcomeApplied(m.ID))

	// Only one claim succeeds.
	assert.ErrorIs(t, store.MarkOutcomeApplied(m.ID), meeting.ErrOutcomeApplied)

	// Releasing the claim lets a retry run again.
	require.NoError(t, store.UnmarkOutcomeApplied(m.ID))
	assert.NoError(t, store.MarkOutcomeApplied(m.ID))
}

func TestListMembershipsForUser(t *testing.T) {
	store := setupTestStore(t)
	m1 := seedMeeting(t, store, padel)
	m2 := seedMeeting(t, store, meeting.Sport{ID: "football", Name: "Football", TeamCount: 2, CapacityPerTeam: 5, Multiplier: 1})

	require.NoError(t, store.AddMembership(m1.ID, "p1", 1))
	require.NoError(t, store.AddMembership(m2.ID, "p1", 2))
	require.NoError(t, store.AddMembership(m2.ID, "p2", 1))

	mems, err := store.ListMembershipsForUser("p1")
	require.NoError(t, err)
	assert.Len(t, mems, 2)

	mems, err = store.ListMembershipsForUser("p2")
	require.NoError(t, err)
	require.Len(t, mems, 1)
	assert.Equal(t, m2.ID, mems[0].MeetingID)
}
