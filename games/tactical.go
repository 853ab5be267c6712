package games

import (
	"fmt"

	"game-session-engine/models"
	"game-session-engine/seeded"
)

// Tactical is the hex-grid combat game: three characters per seat, spawned
// from the seed with rolled stats. Round-scoped — within a round every seat
// fights with its outstanding characters, bounded by the per-turn budget.
type Tactical struct{}

func init() { Register(Tactical{}) }

const (
	tacticalChars     = 3
	tacticalMoveRange = 2
	tacticalAtkRange  = 1
	tacticalSkillCool = 2
	tacticalCols      = 7
)

func (Tactical) Key() string            { return "tactical" }
func (Tactical) Seats() int             { return 2 }
func (Tactical) MaxActionsPerTurn() int { return 2 }
func (Tactical) RoundScoped() bool      { return true }
func (Tactical) Kinds() []string        { return []string{"walk", "strike", "skill"} }

// Deal spawns characters with seeded stats. Draw order is fixed: for each
// seat in order, for each character in order, one hp draw then one atk draw.
func (Tactical) Deal(seed string, seats []models.Seat) {
	rng := seeded.NewStringStream(seed)
	for i := range seats {
		entities := make(map[string]map[string]any, tacticalChars)
		for c := 0; c < tacticalChars; c++ {
			hp := 20 + rng.Intn(10)
			atk := 3 + rng.Intn(4)
			col := 0
			if i%2 == 1 {
				col = tacticalCols - 1
			}
			entities[fmt.Sprintf("ch%d", c)] = map[string]any{
				"hp": hp, "maxHp": hp, "atk": atk,
				"q": col, "r": c,
				"moved": false, "cooldown": 0,
			}
		}
		seats[i].Entities = entities
	}
}

func (t Tactical) LegalMove(sess *models.Session, seatNo int, act Action) error {
	seat := sess.SeatByNo(seatNo)
	ch, ok := seat.Entities[act.Entity]
	if !ok || entInt(ch, "hp") <= 0 {
		return ErrIllegalTarget
	}
	switch act.Kind {
	case "walk":
		q, qok := intArg(act.Args, "q")
		r, rok := intArg(act.Args, "r")
		if !qok || !rok {
			return ErrIllegalTarget
		}
		if entBool(ch, "moved") || hexDistance(entInt(ch, "q"), entInt(ch, "r"), q, r) > tacticalMoveRange {
			return ErrIllegalTarget
		}
		return nil
	case "strike", "skill":
		if act.Kind == "skill" && entInt(ch, "cooldown") > 0 {
			return ErrIllegalTarget
		}
		target := t.enemy(sess, seatNo, argString(act.Args, "target"))
		if target == nil || entInt(target, "hp") <= 0 {
			return ErrIllegalTarget
		}
		if hexDistance(entInt(ch, "q"), entInt(ch, "r"), entInt(target, "q"), entInt(target, "r")) > tacticalAtkRange {
			return ErrIllegalTarget
		}
		return nil
	}
	return ErrUnknownKind
}

func (t Tactical) Apply(sess *models.Session, seatNo int, act Action) (map[string]any, error) {
	seat := sess.SeatByNo(seatNo)
	ch := seat.Entities[act.Entity]
	switch act.Kind {
	case "walk":
		q, _ := intArg(act.Args, "q")
		r, _ := intArg(act.Args, "r")
		ch["q"], ch["r"] = q, r
		ch["moved"] = true
		return map[string]any{"entity": act.Entity, "q": q, "r": r}, nil
	case "strike", "skill":
		targetID := argString(act.Args, "target")
		target := t.enemy(sess, seatNo, targetID)
		dmg := entInt(ch, "atk")
		if act.Kind == "skill" {
			dmg *= 2
			ch["cooldown"] = tacticalSkillCool
		}
		hp := entInt(target, "hp") - dmg
		if hp < 0 {
			hp = 0
		}
		target["hp"] = hp
		seat.Score += int64(dmg)
		return map[string]any{
			"entity": act.Entity, "target": targetID,
			"damage": dmg, "targetHp": hp, "score": seat.Score,
		}, nil
	}
	return nil, ErrUnknownKind
}

// Winner: last seat with a living character. Mutual wipeout is a draw.
func (t Tactical) Winner(sess *models.Session) (int, bool) {
	alive, aliveNo := 0, -1
	for i := range sess.Seats {
		if !t.SkipSeat(sess, sess.Seats[i].No) {
			alive++
			aliveNo = sess.Seats[i].No
		}
	}
	switch alive {
	case 0:
		return -1, true
	case 1:
		return aliveNo, true
	}
	return 0, false
}

func (Tactical) SkipSeat(sess *models.Session, seatNo int) bool {
	seat := sess.SeatByNo(seatNo)
	for _, ch := range seat.Entities {
		if entInt(ch, "hp") > 0 {
			return false
		}
	}
	return true
}

// StartRound refreshes spent moves and ticks cooldowns down.
func (Tactical) StartRound(sess *models.Session) {
	for i := range sess.Seats {
		for _, ch := range sess.Seats[i].Entities {
			ch["moved"] = false
			if cd := entInt(ch, "cooldown"); cd > 0 {
				ch["cooldown"] = cd - 1
			}
		}
	}
}

// Forfeit skips: a stalled combat turn is simply lost.
func (Tactical) Forfeit(sess *models.Session, seatNo int) *Action {
	return nil
}

func (Tactical) enemy(sess *models.Session, seatNo int, entityID string) map[string]any {
	for i := range sess.Seats {
		if sess.Seats[i].No == seatNo {
			continue
		}
		if ent, ok := sess.Seats[i].Entities[entityID]; ok {
			return ent
		}
	}
	return nil
}

// hexDistance is the axial-coordinate distance.
func hexDistance(q1, r1, q2, r2 int) int {
	dq, dr := q1-q2, r1-r2
	ds := dq + dr
	return (abs(dq) + abs(dr) + abs(ds)) / 2
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
