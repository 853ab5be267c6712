// services/archive_service.go
package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"game-session-engine/models"
	"game-session-engine/utils"

	"gorm.io/gorm"
)

// ArchiveService moves terminal sessions past the retention window into cold
// storage: one JSON object per session holding the final snapshot and its
// full event log, then the row is flagged so sweeps skip it.
type ArchiveService struct {
	DB  *gorm.DB
	Cfg *utils.Config
}

func NewArchiveService(db *gorm.DB, cfg *utils.Config) *ArchiveService {
	return &ArchiveService{DB: db, Cfg: cfg}
}

type sessionArchive struct {
	Session models.Session `json:"session"`
	Events  []models.Event `json:"events"`
}

// SweepArchives uploads settled/cancelled sessions whose last update is older
// than the retention window. Returns how many were archived.
func (as *ArchiveService) SweepArchives(ctx context.Context) (int, error) {
	if !as.Cfg.ArchiveEnabled {
		return 0, nil
	}
	cutoff := time.Now().Add(-as.Cfg.ArchiveRetention)

	var sessions []models.Session
	err := as.DB.Where("status IN ? AND archived = ? AND updated_at <= ?",
		[]string{models.SessionSettled, models.SessionCancelled}, false, cutoff).
		Limit(50).Find(&sessions).Error
	if err != nil {
		return 0, err
	}

	archived := 0
	for i := range sessions {
		if err := as.archiveOne(ctx, &sessions[i]); err != nil {
			log.Printf("[Archive] session %s failed: %v", sessions[i].ID, err)
			continue
		}
		archived++
	}
	return archived, nil
}

func (as *ArchiveService) archiveOne(ctx context.Context, sess *models.Session) error {
	var events []models.Event
	err := as.DB.Where("session_id = ?", sess.ID).
		Order("creation_time ASC, id ASC").
		Find(&events).Error
	if err != nil {
		return err
	}

	body, err := json.Marshal(sessionArchive{Session: *sess, Events: events})
	if err != nil {
		return err
	}

	key := "sessions/" + sess.CreatedAt.Format("2006/01/") + sess.ID + ".json"
	if err := utils.UploadArchive(ctx, key, body); err != nil {
		return err
	}

	res := as.DB.Model(&models.Session{}).
		Where("id = ? AND archived = ?", sess.ID, false).
		Update("archived", true)
	if res.Error != nil {
		return res.Error
	}
	log.Printf("📦 Archived session %s to %s (%d events)", sess.ID, key, len(events))
	return nil
}
