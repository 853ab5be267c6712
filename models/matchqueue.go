package models

import (
	"time"
)

// MatchQueueEntry statuses.
const (
	QueueRequested = "REQUESTED"
	QueueCharged   = "CHARGED"
	QueueMatched   = "MATCHED"
	QueueCancelled = "CANCELLED"
)

// MatchQueueEntry is one waiting player in the matchmaking queue. Entries are
// short-lived: created on enqueue, transitioned on match or cancellation, and
// bounded by the queue timeout horizon.
type MatchQueueEntry struct {
	ID          string `json:"id" gorm:"primaryKey"`
	Occupant    string `json:"occupant" gorm:"index;not null"`
	SkillRating int    `json:"skill_rating"` // ELO-like scalar
	GameType    string `json:"game_type" gorm:"index:idx_queue_type_status,priority:1;not null"`
	Level       int    `json:"level"` // level bracket
	Status      string `json:"status" gorm:"index:idx_queue_type_status,priority:2;default:'REQUESTED'"`

	// EnqueuedAt (unix millis) drives both the widening tolerance window
	// and the timeout horizon.
	EnqueuedAt int64 `json:"enqueued_at"`

	// MatchID stamps the claim that moved the entry to MATCHED. A failed
	// pairing rolls back only rows carrying its own stamp, never a
	// concurrent sweep's claim.
	MatchID *string `json:"match_id,omitempty" gorm:"index"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
