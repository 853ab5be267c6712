package models

import (
	"time"
)

// Session lifecycle statuses. The enumeration is fixed; no other values are
// ever written to the status column.
const (
	SessionInit      = "INIT"
	SessionPlaying   = "PLAYING"
	SessionOver      = "OVER"
	SessionSettled   = "SETTLED"
	SessionCancelled = "CANCELLED"
)

// Seat is one slot in a session. Occupant is nil until the seat fills.
// Entities holds the game-specific mutable sub-state keyed by entity id
// (cards, tokens, characters — opaque to the state machine).
type Seat struct {
	No       int                       `json:"no"`
	Occupant *string                   `json:"occupant,omitempty"`
	Bot      bool                      `json:"bot,omitempty"`
	Score    int64                     `json:"score"`
	Entities map[string]map[string]any `json:"entities,omitempty"`
}

// TurnState tracks the seat currently allowed to act and its action budget.
type TurnState struct {
	Occupant   string   `json:"occupant"`
	SeatNo     int      `json:"seat_no"`
	Actions    []string `json:"actions,omitempty"` // action kinds taken this turn
	MaxActions int      `json:"max_actions"`
	ActDue     int64    `json:"act_due"` // unix millis deadline
}

// RoundState is the per-round bookkeeping: which seats ended their turn and
// how many actions each seat has taken in the current round.
type RoundState struct {
	Number       int         `json:"number"`
	EndedSeats   []int       `json:"ended_seats,omitempty"`
	ActionCounts map[int]int `json:"action_counts,omitempty"`
}

// Session is the root aggregate for one in-progress game. Seats, Round and
// Turn are stored as JSON documents; everything the sweeps query on (status,
// deadline) is a plain indexed column.
type Session struct {
	ID       string `json:"id" gorm:"primaryKey"`
	GameType string `json:"game_type" gorm:"index;not null"`
	Status   string `json:"status" gorm:"index:idx_sessions_status_due;default:'INIT'"`

	Seats []Seat      `json:"seats" gorm:"serializer:json"`
	Round *RoundState `json:"round,omitempty" gorm:"serializer:json"`
	Turn  *TurnState  `json:"turn,omitempty" gorm:"serializer:json"`

	// ActDue mirrors Turn.ActDue so the timeout sweep can range-scan it.
	// Zero outside PLAYING.
	ActDue int64 `json:"act_due" gorm:"index:idx_sessions_status_due"`

	// Seed fixes all reproducible generation for this session. Immutable
	// once set.
	Seed string `json:"seed" gorm:"index;not null"`

	// Draws counts in-play seed draws consumed so far (dice rolls, free
	// spawns). The n-th draw is addressable directly, so replays can jump
	// to any step.
	Draws uint64 `json:"draws"`

	MatchID *string `json:"match_id,omitempty" gorm:"index"`

	// LastEventCursor is the creation time of the most recent appended
	// event; pollers compare against it to skip redundant reads.
	LastEventCursor int64 `json:"last_event_cursor"`

	// Version is the optimistic patch token. Every mutation goes through
	// WHERE version = ? so concurrent writers lose cleanly.
	Version int64 `json:"version" gorm:"default:0"`

	Archived bool `json:"archived" gorm:"default:false;index"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// SeatByNo returns the seat with the given number, or nil.
func (s *Session) SeatByNo(no int) *Seat {
	for i := range s.Seats {
		if s.Seats[i].No == no {
			return &s.Seats[i]
		}
	}
	return nil
}

// SeatByOccupant returns the seat held by the occupant, or nil.
func (s *Session) SeatByOccupant(occupant string) *Seat {
	for i := range s.Seats {
		if s.Seats[i].Occupant != nil && *s.Seats[i].Occupant == occupant {
			return &s.Seats[i]
		}
	}
	return nil
}

// Occupied reports whether every seat has an occupant.
func (s *Session) Occupied() bool {
	for i := range s.Seats {
		if s.Seats[i].Occupant == nil {
			return false
		}
	}
	return true
}

// SeedStat aggregates final scores per seed — the fairness-audit companion
// to deterministic shuffles (same seed, same layout, comparable outcomes).
type SeedStat struct {
	Seed    string  `json:"seed" gorm:"primaryKey"`
	Top     int64   `json:"top"`
	Bottom  int64   `json:"bottom"`
	Average float64 `json:"average"`
	Counts  int64   `json:"counts"`
}
