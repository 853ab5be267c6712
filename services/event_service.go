// services/event_service.go
package services

import (
	"errors"
	"log"
	"strconv"
	"time"

	"game-session-engine/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const defaultEventPageSize = 100

// EventService owns the append-only event log and its two polling axes
// (session and actor). Append happens inside the caller's transaction so an
// event and the state change it describes commit or roll back together.
type EventService struct {
	DB *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{DB: db}
}

// Append inserts events in order within tx, stamping creation time in unix
// millis. The autoincrement id breaks same-millisecond ties, so pollers see
// one total order per axis.
func (es *EventService) Append(tx *gorm.DB, events ...*models.Event) error {
	now := time.Now().UnixMilli()
	for _, ev := range events {
		if ev.CreationTime == 0 {
			ev.CreationTime = now
		}
		if err := tx.Create(ev).Error; err != nil {
			return err
		}
	}
	return nil
}

// pollSession returns events for a session strictly after the cursor, oldest
// first, plus the cursor to resume from. At-least-once: a client that crashes
// before persisting its cursor re-reads the same page.
func (es *EventService) pollSession(sessionID string, cursor int64, limit int) ([]models.Event, int64, error) {
	return es.poll("session_id = ?", sessionID, cursor, limit)
}

// pollActor is the same contract over the actor axis.
func (es *EventService) pollActor(actor string, cursor int64, limit int) ([]models.Event, int64, error) {
	return es.poll("actor = ?", actor, cursor, limit)
}

func (es *EventService) poll(cond, key string, cursor int64, limit int) ([]models.Event, int64, error) {
	if limit <= 0 || limit > defaultEventPageSize {
		limit = defaultEventPageSize
	}
	var events []models.Event
	err := es.DB.Where(cond, key).
		Where("creation_time > ?", cursor).
		Order("creation_time ASC, id ASC").
		Limit(limit).
		Find(&events).Error
	if err != nil {
		return nil, cursor, err
	}
	next := cursor
	if len(events) > 0 {
		next = events[len(events)-1].CreationTime
	}
	return events, next, nil
}

// UnsyncedByKinds returns unmirrored events of the given kinds, oldest first.
func (es *EventService) UnsyncedByKinds(kinds []string, limit int) ([]models.Event, error) {
	var events []models.Event
	err := es.DB.Where("synced = ? AND name IN ?", false, kinds).
		Order("creation_time ASC, id ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

// MarkSynced flips the mirror flag. The only update events ever receive.
func (es *EventService) MarkSynced(ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return es.DB.Model(&models.Event{}).Where("id IN ?", ids).
		Update("synced", true).Error
}

// GetSessionEvents handles GET /sessions/:id/events?cursor=&limit=
func (es *EventService) GetSessionEvents(c *fiber.Ctx) error {
	sessionID := c.Params("id")

	var sess models.Session
	if err := es.DB.Select("id").First(&sess, "id = ?", sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "session not found"})
		}
		log.Printf("DB Error fetching session %s: %v", sessionID, err)
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}

	cursor, err := parseCursor(c.Query("cursor", "0"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid cursor", "details": err.Error()})
	}

	events, next, err := es.pollSession(sessionID, cursor, c.QueryInt("limit", defaultEventPageSize))
	if err != nil {
		log.Printf("DB Error polling session %s events: %v", sessionID, err)
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(fiber.Map{
		"events": events,
		"cursor": next,
		"count":  len(events),
	})
}

// GetActorEvents handles GET /actors/:id/events?cursor=&limit=
func (es *EventService) GetActorEvents(c *fiber.Ctx) error {
	actor := c.Params("id")

	cursor, err := parseCursor(c.Query("cursor", "0"))
	if err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid cursor", "details": err.Error()})
	}

	events, next, err := es.pollActor(actor, cursor, c.QueryInt("limit", defaultEventPageSize))
	if err != nil {
		log.Printf("DB Error polling actor %s events: %v", actor, err)
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(fiber.Map{
		"events": events,
		"cursor": next,
		"count":  len(events),
	})
}

func parseCursor(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}
