package games

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTacticalDealRollsStatsFromSeed(t *testing.T) {
	r, _ := Get("tactical")

	a := playingSession(t, r, "combat-seed")
	b := playingSession(t, r, "combat-seed")
	assert.Equal(t, a.Seats[0].Entities, b.Seats[0].Entities)
	assert.Equal(t, a.Seats[1].Entities, b.Seats[1].Entities)

	for seatNo := 0; seatNo < 2; seatNo++ {
		seat := a.SeatByNo(seatNo)
		require.Len(t, seat.Entities, tacticalChars)
		for i := 0; i < tacticalChars; i++ {
			ch := seat.Entities[fmt.Sprintf("ch%d", i)]
			hp := entInt(ch, "hp")
			atk := entInt(ch, "atk")
			assert.GreaterOrEqual(t, hp, 20)
			assert.Less(t, hp, 30)
			assert.GreaterOrEqual(t, atk, 3)
			assert.Less(t, atk, 7)
		}
	}
}

func TestTacticalWalkOncePerRound(t *testing.T) {
	r, _ := Get("tactical")
	sess := playingSession(t, r, "combat-seed")

	walk := Action{Kind: "walk", Entity: "ch0", Args: map[string]any{"q": 1, "r": 1}}
	require.NoError(t, r.LegalMove(sess, 0, walk))
	_, err := r.Apply(sess, 0, walk)
	require.NoError(t, err)

	// moved flag blocks a second walk until the round resets it
	again := Action{Kind: "walk", Entity: "ch0", Args: map[string]any{"q": 2, "r": 1}}
	assert.ErrorIs(t, r.LegalMove(sess, 0, again), ErrIllegalTarget)

	r.StartRound(sess)
	require.NoError(t, r.LegalMove(sess, 0, again))
}

func TestTacticalWalkRangeIsBounded(t *testing.T) {
	r, _ := Get("tactical")
	sess := playingSession(t, r, "combat-seed")

	tooFar := Action{Kind: "walk", Entity: "ch0", Args: map[string]any{"q": 3, "r": 0}}
	assert.ErrorIs(t, r.LegalMove(sess, 0, tooFar), ErrIllegalTarget)
}

func TestTacticalStrikeAndSkill(t *testing.T) {
	r, _ := Get("tactical")
	sess := playingSession(t, r, "combat-seed")

	// pull an enemy adjacent to ch0 at (0,0)
	target := sess.SeatByNo(1).Entities["ch0"]
	target["q"], target["r"] = 1, 0
	targetHp := entInt(target, "hp")
	atk := entInt(sess.SeatByNo(0).Entities["ch0"], "atk")

	strike := Action{Kind: "strike", Entity: "ch0", Args: map[string]any{"target": "ch0"}}
	require.NoError(t, r.LegalMove(sess, 0, strike))
	payload, err := r.Apply(sess, 0, strike)
	require.NoError(t, err)
	assert.Equal(t, atk, payload["damage"])
	assert.Equal(t, targetHp-atk, entInt(target, "hp"))
	assert.EqualValues(t, atk, sess.SeatByNo(0).Score)

	// skill hits double and goes on cooldown
	skill := Action{Kind: "skill", Entity: "ch0", Args: map[string]any{"target": "ch0"}}
	require.NoError(t, r.LegalMove(sess, 0, skill))
	payload, err = r.Apply(sess, 0, skill)
	require.NoError(t, err)
	assert.Equal(t, 2*atk, payload["damage"])
	assert.ErrorIs(t, r.LegalMove(sess, 0, skill), ErrIllegalTarget)

	// cooldown ticks down per round
	r.StartRound(sess)
	r.StartRound(sess)
	ch := sess.SeatByNo(0).Entities["ch0"]
	assert.Equal(t, 0, entInt(ch, "cooldown"))
}

func TestTacticalStrikeOutOfRangeIsIllegal(t *testing.T) {
	r, _ := Get("tactical")
	sess := playingSession(t, r, "combat-seed")

	// enemies spawn across the board
	strike := Action{Kind: "strike", Entity: "ch0", Args: map[string]any{"target": "ch0"}}
	assert.ErrorIs(t, r.LegalMove(sess, 0, strike), ErrIllegalTarget)
}

func TestTacticalWinner(t *testing.T) {
	r, _ := Get("tactical")
	sess := playingSession(t, r, "combat-seed")

	_, decided := r.Winner(sess)
	require.False(t, decided)

	for _, ch := range sess.SeatByNo(1).Entities {
		ch["hp"] = 0
	}
	no, decided := r.Winner(sess)
	require.True(t, decided)
	assert.Equal(t, 0, no)
	assert.True(t, r.SkipSeat(sess, 1))

	// mutual wipeout is a draw
	for _, ch := range sess.SeatByNo(0).Entities {
		ch["hp"] = 0
	}
	no, decided = r.Winner(sess)
	require.True(t, decided)
	assert.Equal(t, -1, no)
}

func TestHexDistance(t *testing.T) {
	assert.Equal(t, 0, hexDistance(2, 3, 2, 3))
	assert.Equal(t, 1, hexDistance(0, 0, 1, 0))
	assert.Equal(t, 2, hexDistance(0, 0, 1, 1))
	assert.Equal(t, 6, hexDistance(0, 0, 6, 0))
}
