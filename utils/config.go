// utils/config.go
package utils

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is the engine's environment surface. Every tunable the sweeps and
// the state machine depend on lives here, never as a hardcoded constant.
type Config struct {
	DatabaseURL  string `env:"DATABASE_URL,required"`
	Port         int    `env:"PORT" envDefault:"5300"`
	ServiceToken string `env:"ENGINE_SERVICE_TOKEN"`

	// Session state machine
	TurnTimeLimit     time.Duration `env:"TURN_TIME_LIMIT" envDefault:"15s"`
	MaxActionsPerTurn int           `env:"MAX_ACTIONS_PER_TURN" envDefault:"0"` // 0 = per-game default
	SeatWaitTimeout   time.Duration `env:"SEAT_WAIT_TIMEOUT" envDefault:"30s"`

	// Matchmaking tolerance schedule: the acceptable rating gap starts at
	// Base and widens per second waited, up to Cap.
	MatchToleranceBase     float64       `env:"MATCH_TOLERANCE_BASE" envDefault:"100"`
	MatchToleranceWidenSec float64       `env:"MATCH_TOLERANCE_WIDEN_PER_SEC" envDefault:"25"`
	MatchToleranceCap      float64       `env:"MATCH_TOLERANCE_CAP" envDefault:"800"`
	QueueTimeout           time.Duration `env:"QUEUE_TIMEOUT" envDefault:"90s"`
	MatchBotFill           bool          `env:"MATCH_BOT_FILL" envDefault:"false"`

	// Event mirroring
	SyncServiceURL string   `env:"SYNC_SERVICE_URL"`
	SyncEventKinds []string `env:"SYNC_EVENT_KINDS" envDefault:"gameOver,settled,matchCreated"`

	// Audit archival
	ArchiveEnabled   bool          `env:"ARCHIVE_ENABLED" envDefault:"false"`
	ArchiveRetention time.Duration `env:"ARCHIVE_RETENTION" envDefault:"24h"`
}

// LoadConfig parses the environment into a Config.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config from env: %w", err)
	}
	return cfg, nil
}
