package games

import (
	"fmt"

	"game-session-engine/models"
)

// Ludo is the board/token game: four tokens per seat walk a 56-cell shared
// track. Strictly turn-scoped — only the turn owner may roll and move. Dice
// come from the in-play draw sequence, so the whole match replays from the
// seed and the draw counter alone.
type Ludo struct{}

func init() { Register(Ludo{}) }

const (
	ludoTokens    = 4
	ludoTrackLen  = 56
	ludoGoal      = 57 // one past the last track cell
	ludoSeatShift = 28 // opposite entries on a two-seat board
)

func (Ludo) Key() string            { return "ludo" }
func (Ludo) Seats() int             { return 2 }
func (Ludo) MaxActionsPerTurn() int { return 4 }
func (Ludo) RoundScoped() bool      { return false }
func (Ludo) Kinds() []string        { return []string{"roll", "move"} }

// Deal places all tokens at home. Ludo consumes no deal draws; its
// randomness is entirely the in-play dice sequence.
func (Ludo) Deal(seed string, seats []models.Seat) {
	for i := range seats {
		entities := make(map[string]map[string]any, ludoTokens+1)
		for t := 0; t < ludoTokens; t++ {
			entities[fmt.Sprintf("t%d", t)] = map[string]any{"pos": -1}
		}
		entities["dice"] = map[string]any{"value": 0}
		seats[i].Entities = entities
	}
}

func (l Ludo) LegalMove(sess *models.Session, seatNo int, act Action) error {
	seat := sess.SeatByNo(seatNo)
	dice := seat.Entities["dice"]
	switch act.Kind {
	case "roll":
		// A pending roll must be spent first — unless no token can use it,
		// in which case it is dead and re-rolling is the only way forward.
		if roll := entInt(dice, "value"); roll != 0 && l.anyMovable(seat, roll) {
			return ErrIllegalTarget
		}
		return nil
	case "move":
		token, ok := seat.Entities[act.Entity]
		if !ok || act.Entity == "dice" {
			return ErrIllegalTarget
		}
		roll := entInt(dice, "value")
		if roll == 0 || !tokenCanMove(token, roll) {
			return ErrIllegalTarget
		}
		return nil
	}
	return ErrUnknownKind
}

func (l Ludo) Apply(sess *models.Session, seatNo int, act Action) (map[string]any, error) {
	seat := sess.SeatByNo(seatNo)
	dice := seat.Entities["dice"]
	switch act.Kind {
	case "roll":
		sess.Draws++
		roll := 1 + int(drawAt(sess.Seed, sess.Draws)*6)
		dice["value"] = roll
		return map[string]any{"roll": roll, "draw": sess.Draws}, nil
	case "move":
		token := seat.Entities[act.Entity]
		roll := entInt(dice, "value")
		dice["value"] = 0

		pos := entInt(token, "pos")
		if pos == -1 {
			pos = 0 // a six brings the token onto the track
		} else {
			pos += roll
		}
		token["pos"] = pos
		payload := map[string]any{"entity": act.Entity, "pos": pos, "roll": roll}

		if pos >= ludoGoal {
			token["pos"] = ludoGoal
			seat.Score++
			payload["finished"] = true
			payload["score"] = seat.Score
			return payload, nil
		}
		if victim, victimSeat := l.capture(sess, seatNo, pos); victim != "" {
			payload["captured"] = victim
			payload["capturedSeat"] = victimSeat
		}
		return payload, nil
	}
	return nil, ErrUnknownKind
}

// capture sends an opponent token on the same shared cell back home.
func (Ludo) capture(sess *models.Session, seatNo, pos int) (string, int) {
	cell := trackCell(seatNo, pos)
	for i := range sess.Seats {
		seat := &sess.Seats[i]
		if seat.No == seatNo {
			continue
		}
		for id, ent := range seat.Entities {
			if id == "dice" {
				continue
			}
			p := entInt(ent, "pos")
			if p >= 0 && p < ludoGoal && trackCell(seat.No, p) == cell {
				ent["pos"] = -1
				return id, seat.No
			}
		}
	}
	return "", -1
}

func (Ludo) Winner(sess *models.Session) (int, bool) {
	for i := range sess.Seats {
		if sess.Seats[i].Score >= ludoTokens {
			return sess.Seats[i].No, true
		}
	}
	return 0, false
}

func (Ludo) SkipSeat(sess *models.Session, seatNo int) bool {
	seat := sess.SeatByNo(seatNo)
	for id, ent := range seat.Entities {
		if id != "dice" && entInt(ent, "pos") < ludoGoal {
			return false
		}
	}
	return true
}

func (Ludo) StartRound(sess *models.Session) {}

// Forfeit auto-plays: spend a pending roll on the first movable token, else
// just lose the turn.
func (Ludo) Forfeit(sess *models.Session, seatNo int) *Action {
	seat := sess.SeatByNo(seatNo)
	roll := entInt(seat.Entities["dice"], "value")
	if roll == 0 {
		return nil
	}
	for t := 0; t < ludoTokens; t++ {
		id := fmt.Sprintf("t%d", t)
		if tokenCanMove(seat.Entities[id], roll) {
			return &Action{Kind: "move", Entity: id}
		}
	}
	return nil
}

func (Ludo) anyMovable(seat *models.Seat, roll int) bool {
	for t := 0; t < ludoTokens; t++ {
		if tokenCanMove(seat.Entities[fmt.Sprintf("t%d", t)], roll) {
			return true
		}
	}
	return false
}

func tokenCanMove(token map[string]any, roll int) bool {
	pos := entInt(token, "pos")
	if pos >= ludoGoal {
		return false
	}
	if pos == -1 {
		return roll == 6
	}
	return pos+roll <= ludoGoal
}

func trackCell(seatNo, pos int) int {
	return (seatNo*ludoSeatShift + pos) % ludoTrackLen
}
