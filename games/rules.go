// Package games holds the per-game-type hooks consumed by the session state
// machine: deal/spawn from seed, legal-move and win predicates, and the
// deadline forfeit policy. One state machine, three rule sets.
package games

import (
	"errors"
	"sort"

	"game-session-engine/models"
	"game-session-engine/seeded"
)

// Action is a proposed move from a seat occupant. Entity references a key in
// the seat's entity table; Args carry kind-specific parameters.
type Action struct {
	Kind   string         `json:"kind"`
	Entity string         `json:"entity,omitempty"`
	Args   map[string]any `json:"args,omitempty"`
}

// EndTurn is the kind every game accepts to yield the turn early.
const EndTurn = "endTurn"

// Hook errors. LegalMove distinguishes a bad entity reference or state from
// anything else so the validator can map to its reason codes.
var (
	ErrIllegalTarget = errors.New("target entity missing or in a state that forbids the action")
	ErrUnknownKind   = errors.New("unknown action kind")
)

// Rules are the game-specific hooks the state machine is generic over.
type Rules interface {
	Key() string
	Seats() int
	MaxActionsPerTurn() int

	// RoundScoped games let every seat with an outstanding turn act within
	// the current round; otherwise only the turn owner may act.
	RoundScoped() bool

	// Kinds lists the action kinds this game accepts, besides EndTurn.
	Kinds() []string

	// Deal populates every seat's entity table from the session seed. Draw
	// order is fixed per game so a seed always yields the same layout.
	Deal(seed string, seats []models.Seat)

	// LegalMove checks that the action references existing entities in a
	// state that permits it. Returns ErrIllegalTarget on failure.
	LegalMove(sess *models.Session, seatNo int, act Action) error

	// Apply mutates the seat sub-state for an already-validated action and
	// returns the event payload describing what changed.
	Apply(sess *models.Session, seatNo int, act Action) (map[string]any, error)

	// Winner reports the winning seat once the session is decided. A
	// decided session with seatNo -1 is a draw.
	Winner(sess *models.Session) (seatNo int, decided bool)

	// SkipSeat reports a seat with no legal move; turn order passes over it.
	SkipSeat(sess *models.Session, seatNo int) bool

	// StartRound resets per-round entity state (spent moves, cooldowns).
	// Called after Deal and on every round increment.
	StartRound(sess *models.Session)

	// Forfeit is the deadline policy for a stalled seat: nil skips the
	// turn, non-nil is auto-played before advancing.
	Forfeit(sess *models.Session, seatNo int) *Action
}

var registry = map[string]Rules{}

// Register adds a rule set; called from init in each game file.
func Register(r Rules) {
	registry[r.Key()] = r
}

// Get looks up the rules for a game-type key.
func Get(key string) (Rules, bool) {
	r, ok := registry[key]
	return r, ok
}

// Keys returns the registered game types, sorted.
func Keys() []string {
	keys := make([]string, 0, len(registry))
	for k := range registry {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// KnownKind reports whether kind is EndTurn or one of the game's kinds.
func KnownKind(r Rules, kind string) bool {
	if kind == EndTurn {
		return true
	}
	for _, k := range r.Kinds() {
		if k == kind {
			return true
		}
	}
	return false
}

// drawAt returns the n-th in-play draw for a seed. In-play randomness (dice,
// free spawns) uses the linear-congruential family addressed by draw index,
// so a replay can jump straight to any step; deals use the hash-expanded
// stream (see Deal implementations).
func drawAt(seed string, n uint64) float64 {
	return seeded.NewLCG(seeded.HashSeed(seed)).Nth(n)
}

func intArg(args map[string]any, key string) (int, bool) {
	v, ok := args[key]
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	}
	return 0, false
}

func argString(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// Entity tables round-trip through JSON, so numbers come back as float64.
func entInt(e map[string]any, key string) int {
	switch n := e[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return 0
}

func entBool(e map[string]any, key string) bool {
	b, _ := e[key].(bool)
	return b
}

func entString(e map[string]any, key string) string {
	s, _ := e[key].(string)
	return s
}
