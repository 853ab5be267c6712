package models

// Event is an immutable record of something that happened in or to a
// session/actor. Rows are append-only: nothing but the Synced flag is ever
// updated, and nothing is deleted while a client cursor may still need it.
//
// ID is assigned on insert and breaks creation-time ties, so
// (creation_time, id) is the total order exposed to pollers.
type Event struct {
	ID uint64 `json:"id" gorm:"primaryKey;autoIncrement"`

	SessionID *string `json:"session_id,omitempty" gorm:"index:idx_events_session_time,priority:1"`
	Actor     *string `json:"actor,omitempty" gorm:"index:idx_events_actor_time,priority:1"`

	Name    string         `json:"name" gorm:"not null"`
	Payload map[string]any `json:"payload,omitempty" gorm:"serializer:json"`

	// CreationTime is unix millis at append. Both lookup axes share it as
	// the range component.
	CreationTime int64 `json:"creation_time" gorm:"index:idx_events_session_time,priority:2;index:idx_events_actor_time,priority:2"`

	// Synced marks events already forwarded to the external mirror.
	// Forwarding failures leave it false so the worker retries.
	Synced bool `json:"synced" gorm:"default:false;index"`
}

// Event kinds appended by the state machine and the sweeps. The name column
// is an open string; these are just the ones this engine emits itself.
const (
	EventSessionCreated = "sessionCreated"
	EventSeatJoined     = "seatJoined"
	EventSessionStarted = "sessionStarted"
	EventActionApplied  = "actionApplied"
	EventTurnStarted    = "turnStarted"
	EventTurnTimeout    = "turnTimeout"
	EventRoundStarted   = "roundStarted"
	EventGameOver       = "gameOver"
	EventSettled        = "settled"
	EventCancelled      = "cancelled"
	EventMatchCreated   = "matchCreated"
	EventMatchCancelled = "matchCancelled"
)
