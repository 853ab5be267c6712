// services/validator.go
package services

import (
	"errors"
	"fmt"

	"game-session-engine/games"
	"game-session-engine/models"
)

// Rejection reason codes. These are part of the API contract: clients switch
// and localize on the code, so the strings never change.
const (
	ReasonSessionNotPlaying    = "SESSION_NOT_PLAYING"
	ReasonWrongTurn            = "WRONG_TURN"
	ReasonActionBudgetExceeded = "ACTION_BUDGET_EXCEEDED"
	ReasonIllegalTarget        = "ILLEGAL_TARGET"
	ReasonMalformedPayload     = "MALFORMED_PAYLOAD"
)

// ValidationError is a rejected action. It is a response, not a fault: the
// session is left untouched and the submitter gets the code plus detail.
type ValidationError struct {
	Reason string `json:"reason"`
	Detail string `json:"detail,omitempty"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Detail)
}

// ValidateAction runs the fixed check order against a session snapshot and
// returns nil when the action may be applied. Checks short-circuit, so a
// rejection always carries the first failing code:
//
//  1. session status must be PLAYING
//  2. the submitter must hold an actionable seat (turn owner for turn-scoped
//     games; any seat with an outstanding round turn for round-scoped ones)
//  3. the seat's action budget must not be exhausted
//  4. the game rules must accept the move (targets exist, state permits)
//  5. the payload must reference a known action kind
//
// Pure function: reads the snapshot, mutates nothing.
func ValidateAction(sess *models.Session, rules games.Rules, occupant string, act games.Action) *ValidationError {
	if sess.Status != models.SessionPlaying {
		return &ValidationError{
			Reason: ReasonSessionNotPlaying,
			Detail: fmt.Sprintf("session is %s", sess.Status),
		}
	}

	seat := sess.SeatByOccupant(occupant)
	if seat == nil {
		return &ValidationError{Reason: ReasonWrongTurn, Detail: "occupant holds no seat in this session"}
	}
	if rules.RoundScoped() {
		if seatEnded(sess.Round, seat.No) {
			return &ValidationError{Reason: ReasonWrongTurn, Detail: "seat already ended its turn this round"}
		}
	} else if sess.Turn == nil || sess.Turn.Occupant != occupant {
		return &ValidationError{Reason: ReasonWrongTurn, Detail: "another seat owns the turn"}
	}

	// endTurn consumes no budget; it is how a seat yields what remains.
	if act.Kind != games.EndTurn {
		if rules.RoundScoped() {
			if sess.Round != nil && sess.Round.ActionCounts[seat.No] >= turnBudget(sess, rules) {
				return &ValidationError{Reason: ReasonActionBudgetExceeded, Detail: "no actions left this round"}
			}
		} else if sess.Turn != nil && len(sess.Turn.Actions) >= turnBudget(sess, rules) {
			return &ValidationError{Reason: ReasonActionBudgetExceeded, Detail: "no actions left this turn"}
		}

		if err := rules.LegalMove(sess, seat.No, act); err != nil {
			if errors.Is(err, games.ErrUnknownKind) {
				return &ValidationError{
					Reason: ReasonMalformedPayload,
					Detail: fmt.Sprintf("unknown action kind %q for game %s", act.Kind, rules.Key()),
				}
			}
			return &ValidationError{Reason: ReasonIllegalTarget, Detail: err.Error()}
		}
	}

	if !games.KnownKind(rules, act.Kind) {
		return &ValidationError{
			Reason: ReasonMalformedPayload,
			Detail: fmt.Sprintf("unknown action kind %q for game %s", act.Kind, rules.Key()),
		}
	}
	return nil
}

func seatEnded(round *models.RoundState, seatNo int) bool {
	if round == nil {
		return false
	}
	for _, no := range round.EndedSeats {
		if no == seatNo {
			return true
		}
	}
	return false
}

// turnBudget is the per-turn action cap: the turn carries it once started,
// the rules provide the game default otherwise.
func turnBudget(sess *models.Session, rules games.Rules) int {
	if sess.Turn != nil && sess.Turn.MaxActions > 0 {
		return sess.Turn.MaxActions
	}
	return rules.MaxActionsPerTurn()
}
