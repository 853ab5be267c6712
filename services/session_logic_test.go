package services

import (
	"testing"
	"time"

	"game-session-engine/games"
	"game-session-engine/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartDealsAndHandsFirstTurn(t *testing.T) {
	sess, _ := playingSession(t, "solitaire", "seed-start")

	assert.Equal(t, models.SessionPlaying, sess.Status)
	require.NotNil(t, sess.Round)
	assert.Equal(t, 1, sess.Round.Number)
	require.NotNil(t, sess.Turn)
	assert.Equal(t, 0, sess.Turn.SeatNo)
	assert.Equal(t, "alice", sess.Turn.Occupant)
	assert.Equal(t, sess.Turn.ActDue, sess.ActDue)
	assert.Greater(t, sess.ActDue, time.Now().UnixMilli())
	assert.NotEmpty(t, sess.Seats[0].Entities)
}

func TestAdvanceTurnRotatesThenWraps(t *testing.T) {
	svc := testService()
	sess, rules := playingSession(t, "ludo", "seed-rotate")
	now := time.Now().UnixMilli()

	// alice yields
	markEnded(sess.Round, 0)
	evs := svc.advanceTurn(sess, rules, now)
	require.Len(t, evs, 1)
	assert.Equal(t, models.EventTurnStarted, evs[0].Name)
	assert.Equal(t, "bob", sess.Turn.Occupant)
	assert.Equal(t, 1, sess.Round.Number)

	// bob yields too: ownership wraps to the first seat and the round ticks
	markEnded(sess.Round, 1)
	evs = svc.advanceTurn(sess, rules, now)
	require.Len(t, evs, 2)
	assert.Equal(t, models.EventRoundStarted, evs[0].Name)
	assert.Equal(t, models.EventTurnStarted, evs[1].Name)
	assert.Equal(t, 2, sess.Round.Number)
	assert.Equal(t, "alice", sess.Turn.Occupant)
	assert.Empty(t, sess.Round.EndedSeats)
	assert.Empty(t, sess.Round.ActionCounts)
}

func TestAdvanceTurnSkipsDeadSeats(t *testing.T) {
	svc := testService()
	sess, rules := playingSession(t, "tactical", "seed-skip")
	now := time.Now().UnixMilli()

	// bob's squad is wiped out mid-round with three seats' worth of state;
	// advancing from alice must not hand the turn to a dead seat
	for _, ch := range sess.SeatByNo(1).Entities {
		ch["hp"] = 0
	}
	markEnded(sess.Round, 0)
	svc.advanceTurn(sess, rules, now)

	// only alice remains actionable, so the wrap comes straight back to her
	assert.Equal(t, "alice", sess.Turn.Occupant)
	assert.Equal(t, 2, sess.Round.Number)
}

func TestAdvanceTurnFinishesWhenNobodyCanAct(t *testing.T) {
	svc := testService()
	sess, rules := playingSession(t, "tactical", "seed-finish")
	now := time.Now().UnixMilli()

	for seatNo := 0; seatNo < 2; seatNo++ {
		for _, ch := range sess.SeatByNo(seatNo).Entities {
			ch["hp"] = 0
		}
	}
	evs := svc.advanceTurn(sess, rules, now)

	assert.Equal(t, models.SessionOver, sess.Status)
	assert.Zero(t, sess.ActDue)
	require.NotEmpty(t, evs)
	last := evs[len(evs)-1]
	assert.Equal(t, models.EventGameOver, last.Name)
	assert.Equal(t, -1, last.Payload["winnerSeat"])
}

func TestRoundScopedAdvanceWrapsOnExhaustedBudgets(t *testing.T) {
	svc := testService()
	sess, rules := playingSession(t, "tactical", "seed-budget")
	now := time.Now().UnixMilli()
	budget := rules.MaxActionsPerTurn()

	// both seats spend their full allowance without an explicit endTurn
	sess.Round.ActionCounts[0] = budget
	sess.Round.ActionCounts[1] = budget
	svc.advanceTurn(sess, rules, now)

	assert.Equal(t, 2, sess.Round.Number)
	assert.Equal(t, 0, sess.Turn.SeatNo)
}

func TestFinishRecordsWinnerAndScores(t *testing.T) {
	svc := testService()
	sess, _ := playingSession(t, "solitaire", "seed-win")
	sess.Seats[0].Score = 12
	sess.Seats[1].Score = 40

	ev := svc.finish(sess, 1, time.Now().UnixMilli())
	assert.Equal(t, models.SessionOver, sess.Status)
	assert.Equal(t, models.EventGameOver, ev.Name)
	assert.Equal(t, "bob", ev.Payload["winner"])
	scores := ev.Payload["scores"].(map[string]int64)
	assert.EqualValues(t, 40, scores["bob"])
}

func TestRankSeatsSharesRankOnTies(t *testing.T) {
	a, b, c := "a", "b", "c"
	seats := []models.Seat{
		{No: 0, Occupant: &a, Score: 10},
		{No: 1, Occupant: &b, Score: 25},
		{No: 2, Occupant: &c, Score: 10},
	}
	ranked := rankSeats(seats)
	require.Len(t, ranked, 3)
	assert.Equal(t, "b", ranked[0].Occupant)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, 2, ranked[1].Rank)
	assert.Equal(t, 2, ranked[2].Rank)
}

func TestBudgetPrefersConfigOverride(t *testing.T) {
	svc := testService()
	rules, _ := games.Get("ludo")
	assert.Equal(t, rules.MaxActionsPerTurn(), svc.budget(rules))

	svc.Cfg.MaxActionsPerTurn = 2
	assert.Equal(t, 2, svc.budget(rules))
}
