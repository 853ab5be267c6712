package models

import (
	"time"
)

// Match statuses. COMPLETED, DROPPED and CANCELLED are terminal and the row
// is immutable once one of them is written.
const (
	MatchStarted   = "STARTED"
	MatchCompleted = "COMPLETED"
	MatchDropped   = "DROPPED"
	MatchCancelled = "CANCELLED"
)

// MatchParticipant is one occupant's final line in a match.
type MatchParticipant struct {
	Occupant string `json:"occupant"`
	Score    int64  `json:"score"`
	Rank     int    `json:"rank"`
}

// Match records a pairing produced by the matchmaking sweep and, once the
// session settles, its final scores and ranks.
type Match struct {
	ID      string `json:"id" gorm:"primaryKey"`
	QueueID string `json:"queue_id" gorm:"index"` // tournament/queue grouping id

	SessionID string `json:"session_id" gorm:"index;not null"`
	GameType  string `json:"game_type" gorm:"index"`

	Participants []MatchParticipant `json:"participants" gorm:"serializer:json"`

	StartTime time.Time  `json:"start_time"`
	EndTime   *time.Time `json:"end_time,omitempty"`
	Status    string     `json:"status" gorm:"index;default:'STARTED'"`

	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
