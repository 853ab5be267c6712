package services

import (
	"testing"
	"time"

	"game-session-engine/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func queueEntry(id, occupant string, rating int, waited time.Duration, now int64) models.MatchQueueEntry {
	return models.MatchQueueEntry{
		ID:          id,
		Occupant:    occupant,
		SkillRating: rating,
		GameType:    "ludo",
		Status:      models.QueueRequested,
		EnqueuedAt:  now - waited.Milliseconds(),
	}
}

func TestToleranceWidensWithWaitAndCaps(t *testing.T) {
	assert.InDelta(t, 100.0, toleranceAt(0, 100, 25, 800), 0.001)
	assert.InDelta(t, 200.0, toleranceAt(4000, 100, 25, 800), 0.001)
	assert.InDelta(t, 350.0, toleranceAt(10000, 100, 25, 800), 0.001)
	// capped no matter how long the wait
	assert.InDelta(t, 800.0, toleranceAt(3600000, 100, 25, 800), 0.001)
}

func TestPairEntriesWithinTolerance(t *testing.T) {
	now := time.Now().UnixMilli()
	entries := []models.MatchQueueEntry{
		queueEntry("e1", "alice", 1000, 0, now),
		queueEntry("e2", "bob", 1050, 0, now),
		queueEntry("e3", "carol", 2000, 0, now),
	}

	pairs := pairEntries(entries, now, 100, 25, 800)
	require.Len(t, pairs, 1)
	assert.Equal(t, "alice", pairs[0][0].Occupant)
	assert.Equal(t, "bob", pairs[0][1].Occupant)
}

func TestPairEntriesGapBlockedByFreshWindow(t *testing.T) {
	now := time.Now().UnixMilli()
	// 300 apart: too far for fresh entries, fine once both waited 10s
	fresh := []models.MatchQueueEntry{
		queueEntry("e1", "alice", 1000, 0, now),
		queueEntry("e2", "bob", 1300, 0, now),
	}
	assert.Empty(t, pairEntries(fresh, now, 100, 25, 800))

	waited := []models.MatchQueueEntry{
		queueEntry("e1", "alice", 1000, 10*time.Second, now),
		queueEntry("e2", "bob", 1300, 10*time.Second, now),
	}
	assert.Len(t, pairEntries(waited, now, 100, 25, 800), 1)
}

func TestPairEntriesCapBoundsLongWaits(t *testing.T) {
	now := time.Now().UnixMilli()
	// an hour of waiting widens the window far past the cap; the cap must
	// still hold at the pairing site
	entries := []models.MatchQueueEntry{
		queueEntry("e1", "alice", 1000, time.Hour, now),
		queueEntry("e2", "bob", 1900, time.Hour, now),
	}
	assert.Empty(t, pairEntries(entries, now, 100, 25, 800))

	within := []models.MatchQueueEntry{
		queueEntry("e1", "alice", 1000, time.Hour, now),
		queueEntry("e2", "bob", 1700, time.Hour, now),
	}
	assert.Len(t, pairEntries(within, now, 100, 25, 800), 1)
}

func TestPairEntriesUsesNarrowerWindow(t *testing.T) {
	now := time.Now().UnixMilli()
	// alice has waited long enough for a 300 gap, fresh bob has not: the
	// gap must fit inside both windows
	entries := []models.MatchQueueEntry{
		queueEntry("e1", "alice", 1000, time.Minute, now),
		queueEntry("e2", "bob", 1300, 0, now),
	}
	assert.Empty(t, pairEntries(entries, now, 100, 25, 800))
}

func TestPairEntriesGreedyOverSortedRatings(t *testing.T) {
	now := time.Now().UnixMilli()
	entries := []models.MatchQueueEntry{
		queueEntry("e4", "dave", 1510, 0, now),
		queueEntry("e1", "alice", 1000, 0, now),
		queueEntry("e3", "carol", 1500, 0, now),
		queueEntry("e2", "bob", 1040, 0, now),
	}

	pairs := pairEntries(entries, now, 100, 25, 800)
	require.Len(t, pairs, 2)
	assert.Equal(t, "alice", pairs[0][0].Occupant)
	assert.Equal(t, "bob", pairs[0][1].Occupant)
	assert.Equal(t, "carol", pairs[1][0].Occupant)
	assert.Equal(t, "dave", pairs[1][1].Occupant)
}

func TestPairEntriesOddOneWaits(t *testing.T) {
	now := time.Now().UnixMilli()
	entries := []models.MatchQueueEntry{
		queueEntry("e1", "alice", 1000, 0, now),
		queueEntry("e2", "bob", 1010, 0, now),
		queueEntry("e3", "carol", 1020, 0, now),
	}
	pairs := pairEntries(entries, now, 100, 25, 800)
	require.Len(t, pairs, 1)
}

func TestGroupEntriesSplitsByTypeAndLevel(t *testing.T) {
	now := time.Now().UnixMilli()
	a := queueEntry("e1", "alice", 1000, 0, now)
	b := queueEntry("e2", "bob", 1000, 0, now)
	b.GameType = "tactical"
	c := queueEntry("e3", "carol", 1000, 0, now)
	c.Level = 3

	groups := groupEntries([]models.MatchQueueEntry{a, b, c})
	assert.Len(t, groups, 3)
	assert.Len(t, groups["ludo/0"], 1)
	assert.Len(t, groups["tactical/0"], 1)
	assert.Len(t, groups["ludo/3"], 1)
}
