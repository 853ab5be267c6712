// services/matchqueue_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"game-session-engine/models"
	"game-session-engine/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// MatchQueueService pairs waiting players by skill rating. The acceptable
// rating gap widens the longer an entry waits, bounded by a cap; entries past
// the timeout horizon are bot-filled or cancelled by the sweep.
type MatchQueueService struct {
	DB       *gorm.DB
	Cfg      *utils.Config
	Events   *EventService
	Sessions *SessionService
}

func NewMatchQueueService(db *gorm.DB, cfg *utils.Config, events *EventService, sessions *SessionService) *MatchQueueService {
	return &MatchQueueService{DB: db, Cfg: cfg, Events: events, Sessions: sessions}
}

// enqueue adds an occupant to the queue. Idempotent: an occupant with a live
// entry for the same game type gets that entry back instead of a duplicate.
func (mq *MatchQueueService) enqueue(occupant, gameType string, rating, level int) (*models.MatchQueueEntry, error) {
	key := slug.Make(gameType)

	var existing models.MatchQueueEntry
	err := mq.DB.Where("occupant = ? AND game_type = ? AND status = ?",
		occupant, key, models.QueueRequested).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	entry := &models.MatchQueueEntry{
		ID:          uuid.NewString(),
		Occupant:    occupant,
		SkillRating: rating,
		GameType:    key,
		Level:       level,
		Status:      models.QueueRequested,
		EnqueuedAt:  time.Now().UnixMilli(),
	}
	if err := mq.DB.Create(entry).Error; err != nil {
		return nil, err
	}
	log.Printf("🎯 Queued %s for %s (rating %d)", occupant, key, rating)
	return entry, nil
}

// cancel withdraws an occupant's live queue entries. Idempotent: cancelling
// with nothing queued succeeds and reports zero.
func (mq *MatchQueueService) cancel(occupant string) (int64, error) {
	res := mq.DB.Model(&models.MatchQueueEntry{}).
		Where("occupant = ? AND status = ?", occupant, models.QueueRequested).
		Update("status", models.QueueCancelled)
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		ev := &models.Event{
			Actor:   &occupant,
			Name:    models.EventMatchCancelled,
			Payload: map[string]any{"reason": "withdrawn"},
		}
		if err := mq.Events.Append(mq.DB, ev); err != nil {
			return res.RowsAffected, err
		}
	}
	return res.RowsAffected, nil
}

// SweepMatchmaking is the periodic pairing pass. Returns matches created and
// entries expired.
func (mq *MatchQueueService) SweepMatchmaking() (int, int, error) {
	now := time.Now().UnixMilli()

	var waiting []models.MatchQueueEntry
	err := mq.DB.Where("status = ?", models.QueueRequested).
		Order("game_type ASC, level ASC, skill_rating ASC").
		Find(&waiting).Error
	if err != nil {
		return 0, 0, err
	}

	matched := 0
	for _, group := range groupEntries(waiting) {
		pairs := pairEntries(group, now, mq.Cfg.MatchToleranceBase, mq.Cfg.MatchToleranceWidenSec, mq.Cfg.MatchToleranceCap)
		for _, pair := range pairs {
			if err := mq.createMatch(pair[0], pair[1]); err != nil {
				log.Printf("[Matchmaking] pairing %s/%s failed: %v", pair[0].Occupant, pair[1].Occupant, err)
				continue
			}
			matched++
		}
	}

	expired, err := mq.expireStale(now)
	if err != nil {
		return matched, expired, err
	}
	return matched, expired, nil
}

// createMatch claims both entries, spins up the session and records the
// match. The claim is the atomicity point: it stamps both rows with the
// prospective match id, so a concurrent sweep that already claimed either
// entry makes this a no-op and a failed pairing only ever releases its own
// stamp.
func (mq *MatchQueueService) createMatch(a, b models.MatchQueueEntry) error {
	matchID := uuid.NewString()

	res := mq.DB.Model(&models.MatchQueueEntry{}).
		Where("id IN ? AND status = ?", []string{a.ID, b.ID}, models.QueueRequested).
		Updates(map[string]any{"status": models.QueueMatched, "match_id": matchID})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected != 2 {
		// release the partial claim and let a later sweep retry
		mq.releaseClaim(matchID)
		return nil
	}

	sess, err := mq.Sessions.create(a.GameType, []string{a.Occupant, b.Occupant}, "", &matchID)
	if err != nil {
		mq.releaseClaim(matchID)
		return err
	}

	match := &models.Match{
		ID:        matchID,
		QueueID:   a.ID,
		SessionID: sess.ID,
		GameType:  a.GameType,
		Participants: []models.MatchParticipant{
			{Occupant: a.Occupant},
			{Occupant: b.Occupant},
		},
		StartTime: time.Now(),
		Status:    models.MatchStarted,
	}
	return mq.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(match).Error; err != nil {
			return err
		}
		for _, occ := range []string{a.Occupant, b.Occupant} {
			o := occ
			ev := &models.Event{
				SessionID: &sess.ID,
				Actor:     &o,
				Name:      models.EventMatchCreated,
				Payload:   map[string]any{"matchId": matchID, "sessionId": sess.ID, "gameType": a.GameType},
			}
			if err := mq.Events.Append(tx, ev); err != nil {
				return err
			}
		}
		log.Printf("🤝 Matched %s vs %s in %s (session %s)", a.Occupant, b.Occupant, a.GameType, sess.ID)
		return nil
	})
}

// releaseClaim reverts only the rows this claim stamped back to REQUESTED.
func (mq *MatchQueueService) releaseClaim(matchID string) {
	err := mq.DB.Model(&models.MatchQueueEntry{}).
		Where("match_id = ? AND status = ?", matchID, models.QueueMatched).
		Updates(map[string]any{"status": models.QueueRequested, "match_id": nil}).Error
	if err != nil {
		log.Printf("[Matchmaking] releasing claim %s failed: %v", matchID, err)
	}
}

// expireStale resolves entries past the queue horizon: bot-fill into a match
// when enabled, cancel otherwise.
func (mq *MatchQueueService) expireStale(now int64) (int, error) {
	horizon := now - mq.Cfg.QueueTimeout.Milliseconds()
	var stale []models.MatchQueueEntry
	err := mq.DB.Where("status = ? AND enqueued_at <= ?", models.QueueRequested, horizon).
		Limit(200).Find(&stale).Error
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, entry := range stale {
		if mq.Cfg.MatchBotFill {
			bot := models.MatchQueueEntry{
				ID:          uuid.NewString(),
				Occupant:    "bot:" + uuid.NewString()[:8],
				SkillRating: entry.SkillRating,
				GameType:    entry.GameType,
				Level:       entry.Level,
				Status:      models.QueueRequested,
				EnqueuedAt:  now,
			}
			if err := mq.DB.Create(&bot).Error; err != nil {
				log.Printf("[Matchmaking] bot fill for %s failed: %v", entry.Occupant, err)
				continue
			}
			if err := mq.createMatch(entry, bot); err != nil {
				log.Printf("[Matchmaking] bot match for %s failed: %v", entry.Occupant, err)
				continue
			}
			expired++
			continue
		}

		res := mq.DB.Model(&models.MatchQueueEntry{}).
			Where("id = ? AND status = ?", entry.ID, models.QueueRequested).
			Update("status", models.QueueCancelled)
		if res.Error != nil || res.RowsAffected == 0 {
			continue
		}
		occ := entry.Occupant
		ev := &models.Event{
			Actor:   &occ,
			Name:    models.EventMatchCancelled,
			Payload: map[string]any{"reason": "queue timeout", "waitedMs": now - entry.EnqueuedAt},
		}
		if err := mq.Events.Append(mq.DB, ev); err != nil {
			log.Printf("[Matchmaking] cancel event for %s failed: %v", entry.Occupant, err)
		}
		expired++
	}
	return expired, nil
}

// groupEntries splits queue entries into (gameType, level) buckets.
func groupEntries(entries []models.MatchQueueEntry) map[string][]models.MatchQueueEntry {
	groups := make(map[string][]models.MatchQueueEntry)
	for _, e := range entries {
		key := fmt.Sprintf("%s/%d", e.GameType, e.Level)
		groups[key] = append(groups[key], e)
	}
	return groups
}

// toleranceAt is the acceptable rating gap for an entry that has waited the
// given milliseconds: base + widenPerSec per second, capped at capTol.
func toleranceAt(waitedMillis int64, base, widenPerSec, capTol float64) float64 {
	tol := base + widenPerSec*float64(waitedMillis)/1000.0
	if tol > capTol {
		tol = capTol
	}
	return tol
}

// pairEntries greedily pairs rating-adjacent entries whose gap fits inside
// both entries' current tolerance windows. Input order does not matter; the
// result is deterministic for a given set and clock.
func pairEntries(entries []models.MatchQueueEntry, now int64, base, widenPerSec, capTol float64) [][2]models.MatchQueueEntry {
	sorted := make([]models.MatchQueueEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].SkillRating != sorted[j].SkillRating {
			return sorted[i].SkillRating < sorted[j].SkillRating
		}
		return sorted[i].EnqueuedAt < sorted[j].EnqueuedAt
	})

	var pairs [][2]models.MatchQueueEntry
	for i := 0; i+1 < len(sorted); {
		a, b := sorted[i], sorted[i+1]
		gap := float64(b.SkillRating - a.SkillRating)
		tol := toleranceAt(now-a.EnqueuedAt, base, widenPerSec, capTol)
		if t := toleranceAt(now-b.EnqueuedAt, base, widenPerSec, capTol); t < tol {
			tol = t
		}
		if gap <= tol {
			pairs = append(pairs, [2]models.MatchQueueEntry{a, b})
			i += 2
		} else {
			i++
		}
	}
	return pairs
}

// ---- fiber handlers ----

// EnqueueRequest is the POST /matchqueue body.
type EnqueueRequest struct {
	Occupant    string `json:"occupant" validate:"required"`
	GameType    string `json:"game_type" validate:"required"`
	SkillRating int    `json:"skill_rating"`
	Level       int    `json:"level"`
}

// EnqueueMatch handles POST /matchqueue
func (mq *MatchQueueService) EnqueueMatch(c *fiber.Ctx) error {
	var req EnqueueRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.Occupant == "" || req.GameType == "" {
		return c.Status(400).JSON(fiber.Map{"error": "occupant and game_type are required"})
	}
	entry, err := mq.enqueue(req.Occupant, req.GameType, req.SkillRating, req.Level)
	if err != nil {
		log.Printf("DB Error enqueueing %s: %v", req.Occupant, err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to enqueue"})
	}
	return c.Status(201).JSON(entry)
}

// CancelQueueEntry handles DELETE /matchqueue/:occupant
func (mq *MatchQueueService) CancelQueueEntry(c *fiber.Ctx) error {
	n, err := mq.cancel(c.Params("occupant"))
	if err != nil {
		log.Printf("DB Error cancelling queue entry for %s: %v", c.Params("occupant"), err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to cancel"})
	}
	return c.JSON(fiber.Map{"cancelled": n})
}

// RunMatchmakingSweep handles POST /admin/sweeps/matchmaking
func (mq *MatchQueueService) RunMatchmakingSweep(c *fiber.Ctx) error {
	matched, expired, err := mq.SweepMatchmaking()
	if err != nil {
		log.Printf("[Matchmaking] sweep failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "sweep failed", "details": err.Error()})
	}
	return c.JSON(fiber.Map{"matched": matched, "expired": expired})
}
