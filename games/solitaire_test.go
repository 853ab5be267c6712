package games

import (
	"testing"

	"game-session-engine/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSolitaireDealIsSeedDeterministic(t *testing.T) {
	r, _ := Get("solitaire")

	a := playingSession(t, r, "deck-seed")
	b := playingSession(t, r, "deck-seed")

	require.Len(t, a.Seats[0].Entities, solitaireDeckSize)
	assert.Equal(t, a.Seats[0].Entities, b.Seats[0].Entities)

	// both seats race the identical order
	assert.Equal(t, a.Seats[0].Entities, a.Seats[1].Entities)

	c := playingSession(t, r, "another-seed")
	assert.NotEqual(t, a.Seats[0].Entities, c.Seats[0].Entities)
}

func TestSolitaireDrawThenPlay(t *testing.T) {
	r, _ := Get("solitaire")
	sess := playingSession(t, r, "deck-seed")
	seat := sess.SeatByNo(0)

	top := topOfPile(seat, "stock")
	require.NotEmpty(t, top)

	require.NoError(t, r.LegalMove(sess, 0, Action{Kind: "draw"}))
	payload, err := r.Apply(sess, 0, Action{Kind: "draw"})
	require.NoError(t, err)
	assert.Equal(t, top, payload["entity"])
	assert.Equal(t, "waste", entString(seat.Entities[top], "pile"))

	// only the top of the waste is playable
	require.NoError(t, r.LegalMove(sess, 0, Action{Kind: "play", Entity: top}))
	payload, err = r.Apply(sess, 0, Action{Kind: "play", Entity: top})
	require.NoError(t, err)
	assert.Equal(t, "foundation", entString(seat.Entities[top], "pile"))
	assert.EqualValues(t, 1, seat.Score)
	assert.EqualValues(t, 1, payload["score"])
}

func TestSolitairePlayFromStockIsIllegal(t *testing.T) {
	r, _ := Get("solitaire")
	sess := playingSession(t, r, "deck-seed")
	top := topOfPile(sess.SeatByNo(0), "stock")

	err := r.LegalMove(sess, 0, Action{Kind: "play", Entity: top})
	assert.ErrorIs(t, err, ErrIllegalTarget)
}

func TestSolitaireStalledWinnerByScore(t *testing.T) {
	r, _ := Get("solitaire")
	sess := playingSession(t, r, "deck-seed")

	// empty both decks onto the foundation/waste boundary manually
	for seatNo := 0; seatNo < 2; seatNo++ {
		seat := sess.SeatByNo(seatNo)
		for _, ent := range seat.Entities {
			ent["pile"] = "foundation"
		}
	}
	sess.Seats[0].Score = 30
	sess.Seats[1].Score = 22

	// seat 0 cleared the full deck
	no, decided := r.Winner(sess)
	require.True(t, decided)
	assert.Equal(t, 0, no)
}

func TestSolitaireStalledDrawOnEqualScore(t *testing.T) {
	sess := &models.Session{Seats: []models.Seat{
		{No: 0, Score: 5},
		{No: 1, Score: 5},
	}}
	assert.Equal(t, -1, bestScoreSeat(sess.Seats))
}

func TestSolitaireForfeitDrawsWhileStockRemains(t *testing.T) {
	r, _ := Get("solitaire")
	sess := playingSession(t, r, "deck-seed")

	f := r.Forfeit(sess, 0)
	require.NotNil(t, f)
	assert.Equal(t, "draw", f.Kind)

	// fully drawn seat just loses the turn
	for _, ent := range sess.SeatByNo(0).Entities {
		ent["pile"] = "foundation"
	}
	assert.Nil(t, r.Forfeit(sess, 0))
}
