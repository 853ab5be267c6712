package games

import (
	"testing"

	"game-session-engine/models"

	"github.com/stretchr/testify/require"
)

// playingSession builds a two-seat session mid-play for rule-level tests.
func playingSession(t *testing.T, r Rules, seed string) *models.Session {
	t.Helper()
	occA, occB := "alice", "bob"
	sess := &models.Session{
		ID:       "test-session",
		GameType: r.Key(),
		Status:   models.SessionPlaying,
		Seed:     seed,
		Seats: []models.Seat{
			{No: 0, Occupant: &occA},
			{No: 1, Occupant: &occB},
		},
		Round: &models.RoundState{Number: 1, ActionCounts: map[int]int{}},
	}
	r.Deal(seed, sess.Seats)
	r.StartRound(sess)
	sess.Turn = &models.TurnState{Occupant: occA, SeatNo: 0, MaxActions: r.MaxActionsPerTurn()}
	return sess
}

func TestRegistryHasAllGames(t *testing.T) {
	require.Equal(t, []string{"ludo", "solitaire", "tactical"}, Keys())
	for _, key := range Keys() {
		r, ok := Get(key)
		require.True(t, ok)
		require.Equal(t, key, r.Key())
		require.Equal(t, 2, r.Seats())
		require.Greater(t, r.MaxActionsPerTurn(), 0)
	}
}

func TestKnownKind(t *testing.T) {
	r, _ := Get("ludo")
	require.True(t, KnownKind(r, EndTurn))
	require.True(t, KnownKind(r, "roll"))
	require.True(t, KnownKind(r, "move"))
	require.False(t, KnownKind(r, "teleport"))
}
