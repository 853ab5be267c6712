package games

import (
	"fmt"

	"game-session-engine/models"
	"game-session-engine/seeded"
)

// Solitaire is the card-race game: both seats receive the identical deck
// order from the session seed and race to clear it. Round-scoped — seats act
// within the same round rather than waiting on strict turn ownership.
type Solitaire struct{}

func init() { Register(Solitaire{}) }

const solitaireDeckSize = 52

func (Solitaire) Key() string            { return "solitaire" }
func (Solitaire) Seats() int             { return 2 }
func (Solitaire) MaxActionsPerTurn() int { return 5 }
func (Solitaire) RoundScoped() bool      { return true }
func (Solitaire) Kinds() []string        { return []string{"draw", "play"} }

// Deal shuffles one 52-card order from the hash-expanded stream and gives
// every seat the same order. Draw order: a single Perm(52), nothing else —
// identical layouts are what make the race fair and seed-auditable.
func (Solitaire) Deal(seed string, seats []models.Seat) {
	order := seeded.NewStringStream(seed).Perm(solitaireDeckSize)
	for i := range seats {
		entities := make(map[string]map[string]any, solitaireDeckSize)
		for pos, card := range order {
			entities[fmt.Sprintf("c%d", card)] = map[string]any{
				"card":  card,
				"pile":  "stock",
				"order": pos,
			}
		}
		seats[i].Entities = entities
	}
}

func (Solitaire) LegalMove(sess *models.Session, seatNo int, act Action) error {
	seat := sess.SeatByNo(seatNo)
	switch act.Kind {
	case "draw":
		if topOfPile(seat, "stock") == "" {
			return ErrIllegalTarget
		}
		return nil
	case "play":
		ent, ok := seat.Entities[act.Entity]
		if !ok {
			return ErrIllegalTarget
		}
		if entString(ent, "pile") != "waste" || act.Entity != topOfPile(seat, "waste") {
			return ErrIllegalTarget
		}
		return nil
	}
	return ErrUnknownKind
}

func (Solitaire) Apply(sess *models.Session, seatNo int, act Action) (map[string]any, error) {
	seat := sess.SeatByNo(seatNo)
	switch act.Kind {
	case "draw":
		id := topOfPile(seat, "stock")
		ent := seat.Entities[id]
		ent["pile"] = "waste"
		ent["order"] = nextOrder(seat, "waste")
		return map[string]any{"entity": id, "pile": "waste"}, nil
	case "play":
		ent := seat.Entities[act.Entity]
		ent["pile"] = "foundation"
		ent["order"] = nextOrder(seat, "foundation")
		seat.Score++
		return map[string]any{"entity": act.Entity, "pile": "foundation", "score": seat.Score}, nil
	}
	return nil, ErrUnknownKind
}

// Winner: first seat to move the whole deck to its foundation; if both decks
// stall (stock and waste empty), highest score takes it.
func (s Solitaire) Winner(sess *models.Session) (int, bool) {
	stalled := true
	for i := range sess.Seats {
		seat := &sess.Seats[i]
		if pileCount(seat, "foundation") == solitaireDeckSize {
			return seat.No, true
		}
		if !s.SkipSeat(sess, seat.No) {
			stalled = false
		}
	}
	if !stalled {
		return 0, false
	}
	return bestScoreSeat(sess.Seats), true
}

func (Solitaire) SkipSeat(sess *models.Session, seatNo int) bool {
	seat := sess.SeatByNo(seatNo)
	return topOfPile(seat, "stock") == "" && topOfPile(seat, "waste") == ""
}

func (Solitaire) StartRound(sess *models.Session) {}

// Forfeit auto-plays a draw when the stock still has cards; a fully drawn
// seat just loses the turn.
func (Solitaire) Forfeit(sess *models.Session, seatNo int) *Action {
	if topOfPile(sess.SeatByNo(seatNo), "stock") != "" {
		return &Action{Kind: "draw"}
	}
	return nil
}

func topOfPile(seat *models.Seat, pile string) string {
	top, topOrder := "", -1
	for id, ent := range seat.Entities {
		if entString(ent, "pile") == pile && entInt(ent, "order") > topOrder {
			top, topOrder = id, entInt(ent, "order")
		}
	}
	return top
}

func nextOrder(seat *models.Seat, pile string) int {
	n := 0
	for _, ent := range seat.Entities {
		if entString(ent, "pile") == pile {
			n++
		}
	}
	return n
}

func pileCount(seat *models.Seat, pile string) int {
	return nextOrder(seat, pile)
}

func bestScoreSeat(seats []models.Seat) int {
	best, bestNo, tied := int64(-1), -1, false
	for i := range seats {
		switch {
		case seats[i].Score > best:
			best, bestNo, tied = seats[i].Score, seats[i].No, false
		case seats[i].Score == best:
			tied = true
		}
	}
	if tied {
		return -1 // draw
	}
	return bestNo
}
