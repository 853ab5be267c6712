// services/session_service.go
package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"game-session-engine/games"
	"game-session-engine/models"
	"game-session-engine/seeded"
	"game-session-engine/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

var (
	errVersionConflict = errors.New("session changed concurrently, retry with a fresh snapshot")
	errUnknownGameType = errors.New("unknown game type")
	errNotSettleable   = errors.New("only a finished session can be settled")
)

const defaultSeedLength = 10

// SessionService drives the session lifecycle: creation, the turn/round state
// machine, deadline sweeps and settlement. Every mutation appends its events
// in the same transaction and goes through the version guard, so concurrent
// writers lose cleanly instead of interleaving.
type SessionService struct {
	DB     *gorm.DB
	Cfg    *utils.Config
	Events *EventService
}

func NewSessionService(db *gorm.DB, cfg *utils.Config, events *EventService) *SessionService {
	return &SessionService{DB: db, Cfg: cfg, Events: events}
}

// create builds a session for the game type, fills seats with the given
// occupants and starts play immediately when every seat is taken. An empty
// seed is replaced with a fresh random one; the seed never changes afterward.
func (s *SessionService) create(gameType string, occupants []string, seed string, matchID *string) (*models.Session, error) {
	key := slug.Make(gameType)
	rules, ok := games.Get(key)
	if !ok {
		return nil, errUnknownGameType
	}
	if len(occupants) > rules.Seats() {
		return nil, fmt.Errorf("%s takes at most %d occupants", key, rules.Seats())
	}
	if seed == "" {
		var err error
		if seed, err = seeded.RandomSeed(defaultSeedLength); err != nil {
			return nil, err
		}
	}

	seats := make([]models.Seat, rules.Seats())
	for i := range seats {
		seats[i] = models.Seat{No: i}
	}
	for i, occ := range occupants {
		o := occ
		seats[i].Occupant = &o
		seats[i].Bot = strings.HasPrefix(occ, "bot:")
	}

	sess := &models.Session{
		ID:       uuid.NewString(),
		GameType: key,
		Status:   models.SessionInit,
		Seats:    seats,
		Seed:     seed,
		MatchID:  matchID,
	}

	now := time.Now().UnixMilli()
	evs := []*models.Event{{
		SessionID:    &sess.ID,
		Name:         models.EventSessionCreated,
		Payload:      map[string]any{"gameType": key, "seed": seed, "seats": len(seats)},
		CreationTime: now,
	}}
	if sess.Occupied() {
		evs = append(evs, s.start(sess, rules, now)...)
	}
	sess.LastEventCursor = now

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(sess).Error; err != nil {
			return err
		}
		return s.Events.Append(tx, evs...)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("🎮 Created %s session %s (status=%s)", key, sess.ID, sess.Status)
	return sess, nil
}

// join seats an occupant in a waiting session. Idempotent for an occupant
// already seated. When the last seat fills, the session starts.
func (s *SessionService) join(sessionID, occupant string) (*models.Session, error) {
	var sess models.Session
	if err := s.DB.First(&sess, "id = ?", sessionID).Error; err != nil {
		return nil, err
	}
	if sess.SeatByOccupant(occupant) != nil {
		return &sess, nil
	}
	if sess.Status != models.SessionInit {
		return nil, fmt.Errorf("session is %s, not joinable", sess.Status)
	}
	rules, ok := games.Get(sess.GameType)
	if !ok {
		return nil, errUnknownGameType
	}

	seated := false
	for i := range sess.Seats {
		if sess.Seats[i].Occupant == nil {
			o := occupant
			sess.Seats[i].Occupant = &o
			sess.Seats[i].Bot = strings.HasPrefix(occupant, "bot:")
			seated = true
			break
		}
	}
	if !seated {
		return nil, errors.New("session is full")
	}

	now := time.Now().UnixMilli()
	evs := []*models.Event{{
		SessionID:    &sess.ID,
		Actor:        &occupant,
		Name:         models.EventSeatJoined,
		Payload:      map[string]any{"occupant": occupant},
		CreationTime: now,
	}}
	if sess.Occupied() {
		evs = append(evs, s.start(&sess, rules, now)...)
	}
	sess.LastEventCursor = now

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.persist(tx, &sess); err != nil {
			return err
		}
		return s.Events.Append(tx, evs...)
	})
	if err != nil {
		return nil, err
	}
	return &sess, nil
}

// start deals, opens round 1 and hands the first turn out. Caller persists.
func (s *SessionService) start(sess *models.Session, rules games.Rules, now int64) []*models.Event {
	rules.Deal(sess.Seed, sess.Seats)
	sess.Round = &models.RoundState{Number: 1, ActionCounts: map[int]int{}}
	rules.StartRound(sess)
	sess.Status = models.SessionPlaying

	evs := []*models.Event{{
		SessionID:    &sess.ID,
		Name:         models.EventSessionStarted,
		Payload:      map[string]any{"seed": sess.Seed},
		CreationTime: now,
	}, {
		SessionID:    &sess.ID,
		Name:         models.EventRoundStarted,
		Payload:      map[string]any{"round": 1},
		CreationTime: now,
	}}
	evs = append(evs, s.handTurn(sess, rules, s.firstOutstanding(sess, rules, 0), now))
	return evs
}

// submit runs one action through validate → apply → advance. A rejected
// action returns a ValidationError and leaves the session untouched; an
// accepted one commits its events and the new state together.
func (s *SessionService) submit(sessionID, occupant string, act games.Action) (*models.Session, *ValidationError, error) {
	var sess models.Session
	if err := s.DB.First(&sess, "id = ?", sessionID).Error; err != nil {
		return nil, nil, err
	}
	rules, ok := games.Get(sess.GameType)
	if !ok {
		return nil, nil, errUnknownGameType
	}
	if verr := ValidateAction(&sess, rules, occupant, act); verr != nil {
		return &sess, verr, nil
	}

	now := time.Now().UnixMilli()
	seat := sess.SeatByOccupant(occupant)
	var evs []*models.Event

	payload := map[string]any{"kind": act.Kind, "seat": seat.No}
	if act.Kind != games.EndTurn {
		applied, err := rules.Apply(&sess, seat.No, act)
		if err != nil {
			return &sess, &ValidationError{Reason: ReasonIllegalTarget, Detail: err.Error()}, nil
		}
		for k, v := range applied {
			payload[k] = v
		}
		if sess.Turn != nil && sess.Turn.SeatNo == seat.No {
			sess.Turn.Actions = append(sess.Turn.Actions, act.Kind)
		}
		if sess.Round.ActionCounts == nil {
			sess.Round.ActionCounts = map[int]int{}
		}
		sess.Round.ActionCounts[seat.No]++
	}
	evs = append(evs, &models.Event{
		SessionID:    &sess.ID,
		Actor:        &occupant,
		Name:         models.EventActionApplied,
		Payload:      payload,
		CreationTime: now,
	})

	// every accepted action refreshes the deadline
	s.refreshDeadline(&sess, now)

	budget := turnBudget(&sess, rules)
	advance := false
	switch {
	case act.Kind == games.EndTurn:
		markEnded(sess.Round, seat.No)
		advance = true
	case rules.RoundScoped():
		// an exhausted seat hands ownership on but is not "ended": further
		// submissions from it report the budget, not a wrong turn
		advance = sess.Round.ActionCounts[seat.No] >= budget
	default:
		if len(sess.Turn.Actions) >= budget {
			markEnded(sess.Round, seat.No)
			advance = true
		}
	}

	if no, decided := rules.Winner(&sess); decided {
		evs = append(evs, s.finish(&sess, no, now))
	} else if advance {
		evs = append(evs, s.advanceTurn(&sess, rules, now)...)
	}
	sess.LastEventCursor = now

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.persist(tx, &sess); err != nil {
			return err
		}
		return s.Events.Append(tx, evs...)
	})
	if err != nil {
		return nil, nil, err
	}
	return &sess, nil, nil
}

// advanceTurn passes ownership to the next actionable seat, wrapping into a
// new round when none remains. If no seat can act even after the wrap the
// session is finished on the spot.
func (s *SessionService) advanceTurn(sess *models.Session, rules games.Rules, now int64) []*models.Event {
	var evs []*models.Event
	cur := 0
	if sess.Turn != nil {
		cur = sess.Turn.SeatNo
	}

	next := s.firstOutstanding(sess, rules, cur+1)
	if next == -1 {
		sess.Round.Number++
		sess.Round.EndedSeats = nil
		sess.Round.ActionCounts = map[int]int{}
		rules.StartRound(sess)
		evs = append(evs, &models.Event{
			SessionID:    &sess.ID,
			Name:         models.EventRoundStarted,
			Payload:      map[string]any{"round": sess.Round.Number},
			CreationTime: now,
		})
		next = s.firstOutstanding(sess, rules, 0)
	}
	if next == -1 {
		// nobody left to act: decide by the rules, draw otherwise
		winner := -1
		if no, decided := rules.Winner(sess); decided {
			winner = no
		}
		return append(evs, s.finish(sess, winner, now))
	}
	return append(evs, s.handTurn(sess, rules, next, now))
}

// firstOutstanding scans seats in order from `from` (wrapping once) for a
// seat that may still act this round.
func (s *SessionService) firstOutstanding(sess *models.Session, rules games.Rules, from int) int {
	n := len(sess.Seats)
	budget := turnBudget(sess, rules)
	for i := 0; i < n; i++ {
		seat := sess.SeatByNo((from + i) % n)
		if seat == nil || seat.Occupant == nil {
			continue
		}
		if rules.SkipSeat(sess, seat.No) || seatEnded(sess.Round, seat.No) {
			continue
		}
		if rules.RoundScoped() && sess.Round != nil && sess.Round.ActionCounts[seat.No] >= budget {
			continue
		}
		return seat.No
	}
	return -1
}

func (s *SessionService) handTurn(sess *models.Session, rules games.Rules, seatNo int, now int64) *models.Event {
	seat := sess.SeatByNo(seatNo)
	sess.Turn = &models.TurnState{
		Occupant:   *seat.Occupant,
		SeatNo:     seatNo,
		MaxActions: s.budget(rules),
	}
	s.refreshDeadline(sess, now)
	return &models.Event{
		SessionID:    &sess.ID,
		Actor:        seat.Occupant,
		Name:         models.EventTurnStarted,
		Payload:      map[string]any{"seat": seatNo, "occupant": *seat.Occupant, "round": sess.Round.Number},
		CreationTime: now,
	}
}

func (s *SessionService) refreshDeadline(sess *models.Session, now int64) {
	due := now + s.Cfg.TurnTimeLimit.Milliseconds()
	sess.ActDue = due
	if sess.Turn != nil {
		sess.Turn.ActDue = due
	}
}

// budget is the configured per-turn cap, falling back to the game default.
func (s *SessionService) budget(rules games.Rules) int {
	if s.Cfg.MaxActionsPerTurn > 0 {
		return s.Cfg.MaxActionsPerTurn
	}
	return rules.MaxActionsPerTurn()
}

// finish moves the session to OVER. winnerSeat -1 records a draw. The turn
// document stays as it was for audit; only the deadline mirror is cleared.
func (s *SessionService) finish(sess *models.Session, winnerSeat int, now int64) *models.Event {
	sess.Status = models.SessionOver
	sess.ActDue = 0

	payload := map[string]any{"winnerSeat": winnerSeat, "scores": seatScores(sess)}
	if seat := sess.SeatByNo(winnerSeat); seat != nil && seat.Occupant != nil {
		payload["winner"] = *seat.Occupant
	}
	log.Printf("🏁 Session %s over (winner seat %d)", sess.ID, winnerSeat)
	return &models.Event{
		SessionID:    &sess.ID,
		Name:         models.EventGameOver,
		Payload:      payload,
		CreationTime: now,
	}
}

// settle finalizes a finished session: ranks, match completion, seed stats.
// Idempotent — settling a SETTLED session is a no-op that returns it as-is.
func (s *SessionService) settle(sessionID string) (*models.Session, error) {
	var sess models.Session
	if err := s.DB.First(&sess, "id = ?", sessionID).Error; err != nil {
		return nil, err
	}
	switch sess.Status {
	case models.SessionSettled:
		return &sess, nil
	case models.SessionOver:
	default:
		return nil, errNotSettleable
	}

	now := time.Now().UnixMilli()
	participants := rankSeats(sess.Seats)
	sess.Status = models.SessionSettled
	sess.LastEventCursor = now

	evs := []*models.Event{{
		SessionID:    &sess.ID,
		Name:         models.EventSettled,
		Payload:      map[string]any{"participants": participants},
		CreationTime: now,
	}}
	for _, p := range participants {
		occ := p.Occupant
		evs = append(evs, &models.Event{
			SessionID:    &sess.ID,
			Actor:        &occ,
			Name:         models.EventSettled,
			Payload:      map[string]any{"rank": p.Rank, "score": p.Score},
			CreationTime: now,
		})
	}

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.persist(tx, &sess); err != nil {
			return err
		}
		if sess.MatchID != nil {
			end := time.Now()
			res := tx.Model(&models.Match{}).
				Where("id = ? AND status = ?", *sess.MatchID, models.MatchStarted).
				Select("participants", "status", "end_time").
				Updates(models.Match{Participants: participants, Status: models.MatchCompleted, EndTime: &end})
			if res.Error != nil {
				return res.Error
			}
		}
		if err := s.recordSeedStat(tx, &sess); err != nil {
			return err
		}
		return s.Events.Append(tx, evs...)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("✅ Settled session %s", sess.ID)
	return &sess, nil
}

// recordSeedStat folds the session's final scores into the per-seed fairness
// aggregate.
func (s *SessionService) recordSeedStat(tx *gorm.DB, sess *models.Session) error {
	var stat models.SeedStat
	err := tx.First(&stat, "seed = ?", sess.Seed).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stat = models.SeedStat{Seed: sess.Seed, Bottom: int64(1) << 62}
	} else if err != nil {
		return err
	}
	for i := range sess.Seats {
		score := sess.Seats[i].Score
		if score > stat.Top {
			stat.Top = score
		}
		if score < stat.Bottom {
			stat.Bottom = score
		}
		stat.Average = (stat.Average*float64(stat.Counts) + float64(score)) / float64(stat.Counts+1)
		stat.Counts++
	}
	return tx.Save(&stat).Error
}

// SweepTimeouts is the periodic deadline pass: expired PLAYING turns are
// forfeited and advanced, stale INIT sessions are cancelled or bot-filled,
// and finished sessions get settled. Returns how many sessions were touched.
func (s *SessionService) SweepTimeouts() (int, error) {
	now := time.Now().UnixMilli()
	touched := 0

	var due []models.Session
	err := s.DB.Select("id").
		Where("status = ? AND act_due > 0 AND act_due <= ?", models.SessionPlaying, now).
		Limit(200).Find(&due).Error
	if err != nil {
		return 0, err
	}
	for i := range due {
		ok, err := s.timeoutOne(due[i].ID)
		if err != nil {
			log.Printf("[Sweep] timeout for session %s failed: %v", due[i].ID, err)
			continue
		}
		if ok {
			touched++
		}
	}

	waitCutoff := time.Now().Add(-s.Cfg.SeatWaitTimeout)
	var waiting []models.Session
	err = s.DB.Select("id").
		Where("status = ? AND created_at <= ?", models.SessionInit, waitCutoff).
		Limit(200).Find(&waiting).Error
	if err != nil {
		return touched, err
	}
	for i := range waiting {
		if err := s.resolveWaiting(waiting[i].ID); err != nil {
			log.Printf("[Sweep] resolve waiting session %s failed: %v", waiting[i].ID, err)
			continue
		}
		touched++
	}

	var over []models.Session
	err = s.DB.Select("id").
		Where("status = ?", models.SessionOver).
		Limit(200).Find(&over).Error
	if err != nil {
		return touched, err
	}
	for i := range over {
		if _, err := s.settle(over[i].ID); err != nil {
			log.Printf("[Sweep] settle session %s failed: %v", over[i].ID, err)
			continue
		}
		touched++
	}
	return touched, nil
}

// timeoutOne re-reads the session and forfeits the stalled turn if the
// deadline is still expired. A concurrent action that beat the sweep makes
// this a clean no-op.
func (s *SessionService) timeoutOne(sessionID string) (bool, error) {
	var sess models.Session
	if err := s.DB.First(&sess, "id = ?", sessionID).Error; err != nil {
		return false, err
	}
	now := time.Now().UnixMilli()
	if sess.Status != models.SessionPlaying || sess.ActDue == 0 || sess.ActDue > now {
		return false, nil
	}
	rules, ok := games.Get(sess.GameType)
	if !ok {
		return false, errUnknownGameType
	}

	seatNo := sess.Turn.SeatNo
	payload := map[string]any{"seat": seatNo, "occupant": sess.Turn.Occupant}
	if f := rules.Forfeit(&sess, seatNo); f != nil && rules.LegalMove(&sess, seatNo, *f) == nil {
		if applied, err := rules.Apply(&sess, seatNo, *f); err == nil {
			payload["forfeit"] = applied
			payload["kind"] = f.Kind
			if sess.Round.ActionCounts == nil {
				sess.Round.ActionCounts = map[int]int{}
			}
			sess.Round.ActionCounts[seatNo]++
		}
	}

	evs := []*models.Event{{
		SessionID:    &sess.ID,
		Actor:        &sess.Turn.Occupant,
		Name:         models.EventTurnTimeout,
		Payload:      payload,
		CreationTime: now,
	}}

	// a timeout ends the seat's turn regardless of remaining budget
	markEnded(sess.Round, seatNo)
	if no, decided := rules.Winner(&sess); decided {
		evs = append(evs, s.finish(&sess, no, now))
	} else {
		evs = append(evs, s.advanceTurn(&sess, rules, now)...)
	}
	sess.LastEventCursor = now

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.persist(tx, &sess); err != nil {
			return err
		}
		return s.Events.Append(tx, evs...)
	})
	if errors.Is(err, errVersionConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// resolveWaiting handles an INIT session past the seat-wait horizon: bot-fill
// and start when enabled, cancel otherwise.
func (s *SessionService) resolveWaiting(sessionID string) error {
	var sess models.Session
	if err := s.DB.First(&sess, "id = ?", sessionID).Error; err != nil {
		return err
	}
	if sess.Status != models.SessionInit {
		return nil
	}
	rules, ok := games.Get(sess.GameType)
	if !ok {
		return errUnknownGameType
	}
	now := time.Now().UnixMilli()

	var evs []*models.Event
	if s.Cfg.MatchBotFill {
		for i := range sess.Seats {
			if sess.Seats[i].Occupant == nil {
				bot := "bot:" + uuid.NewString()[:8]
				sess.Seats[i].Occupant = &bot
				sess.Seats[i].Bot = true
			}
		}
		evs = s.start(&sess, rules, now)
		log.Printf("🤖 Bot-filled waiting session %s", sess.ID)
	} else {
		sess.Status = models.SessionCancelled
		evs = append(evs, &models.Event{
			SessionID:    &sess.ID,
			Name:         models.EventCancelled,
			Payload:      map[string]any{"reason": "seat wait timeout"},
			CreationTime: now,
		})
		for i := range sess.Seats {
			if occ := sess.Seats[i].Occupant; occ != nil {
				evs = append(evs, &models.Event{
					SessionID:    &sess.ID,
					Actor:        occ,
					Name:         models.EventCancelled,
					Payload:      map[string]any{"reason": "seat wait timeout"},
					CreationTime: now,
				})
			}
		}
		log.Printf("🛑 Cancelled waiting session %s", sess.ID)
	}
	sess.LastEventCursor = now

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := s.persist(tx, &sess); err != nil {
			return err
		}
		return s.Events.Append(tx, evs...)
	})
	if errors.Is(err, errVersionConflict) {
		return nil
	}
	return err
}

// persist writes the mutable session columns guarded by the version token.
func (s *SessionService) persist(tx *gorm.DB, sess *models.Session) error {
	old := sess.Version
	sess.Version = old + 1
	res := tx.Model(&models.Session{}).
		Where("id = ? AND version = ?", sess.ID, old).
		Select("status", "seats", "round", "turn", "act_due", "draws", "last_event_cursor", "version").
		Updates(*sess)
	if res.Error != nil {
		sess.Version = old
		return res.Error
	}
	if res.RowsAffected == 0 {
		sess.Version = old
		return errVersionConflict
	}
	return nil
}

func markEnded(round *models.RoundState, seatNo int) {
	if round == nil || seatEnded(round, seatNo) {
		return
	}
	round.EndedSeats = append(round.EndedSeats, seatNo)
}

func seatScores(sess *models.Session) map[string]int64 {
	scores := make(map[string]int64, len(sess.Seats))
	for i := range sess.Seats {
		if occ := sess.Seats[i].Occupant; occ != nil {
			scores[*occ] = sess.Seats[i].Score
		}
	}
	return scores
}

// rankSeats orders occupants by score, highest first. Equal scores share a
// rank.
func rankSeats(seats []models.Seat) []models.MatchParticipant {
	participants := make([]models.MatchParticipant, 0, len(seats))
	for i := range seats {
		if seats[i].Occupant == nil {
			continue
		}
		participants = append(participants, models.MatchParticipant{
			Occupant: *seats[i].Occupant,
			Score:    seats[i].Score,
		})
	}
	for i := 0; i < len(participants); i++ {
		for j := i + 1; j < len(participants); j++ {
			if participants[j].Score > participants[i].Score {
				participants[i], participants[j] = participants[j], participants[i]
			}
		}
	}
	rank := 0
	var prev int64
	for i := range participants {
		if i == 0 || participants[i].Score != prev {
			rank = i + 1
		}
		participants[i].Rank = rank
		prev = participants[i].Score
	}
	return participants
}

// ---- fiber handlers ----

// CreateSessionRequest is the POST /sessions body.
type CreateSessionRequest struct {
	GameType  string   `json:"game_type" validate:"required"`
	Occupants []string `json:"occupants"`
	Seed      string   `json:"seed,omitempty"`
}

// CreateSession handles POST /sessions
func (s *SessionService) CreateSession(c *fiber.Ctx) error {
	var req CreateSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.GameType == "" {
		return c.Status(400).JSON(fiber.Map{"error": "game_type is required", "known": games.Keys()})
	}
	sess, err := s.create(req.GameType, req.Occupants, req.Seed, nil)
	if err != nil {
		if errors.Is(err, errUnknownGameType) {
			return c.Status(400).JSON(fiber.Map{"error": "unknown game type", "known": games.Keys()})
		}
		log.Printf("DB Error creating session: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to create session"})
	}
	return c.Status(201).JSON(sess)
}

// GetSession handles GET /sessions/:id — a plain snapshot read.
func (s *SessionService) GetSession(c *fiber.Ctx) error {
	var sess models.Session
	if err := s.DB.First(&sess, "id = ?", c.Params("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "session not found"})
		}
		log.Printf("DB Error fetching session %s: %v", c.Params("id"), err)
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(sess)
}

// JoinSession handles POST /sessions/:id/join
func (s *SessionService) JoinSession(c *fiber.Ctx) error {
	var req struct {
		Occupant string `json:"occupant" validate:"required"`
	}
	if err := c.BodyParser(&req); err != nil || req.Occupant == "" {
		return c.Status(400).JSON(fiber.Map{"error": "occupant is required"})
	}
	sess, err := s.join(c.Params("id"), req.Occupant)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "session not found"})
		}
		if errors.Is(err, errVersionConflict) {
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(400).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(sess)
}

// SubmitActionRequest is the POST /sessions/:id/actions body.
type SubmitActionRequest struct {
	Occupant string       `json:"occupant" validate:"required"`
	Action   games.Action `json:"action" validate:"required"`
}

// SubmitAction handles POST /sessions/:id/actions. A rejection is a normal
// 200 response carrying the reason code; only infrastructure failures error.
func (s *SessionService) SubmitAction(c *fiber.Ctx) error {
	var req SubmitActionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
	}
	if req.Occupant == "" {
		return c.Status(400).JSON(fiber.Map{"error": "occupant is required"})
	}

	sess, verr, err := s.submit(c.Params("id"), req.Occupant, req.Action)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "session not found"})
		}
		if errors.Is(err, errVersionConflict) {
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		log.Printf("DB Error submitting action to %s: %v", c.Params("id"), err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to apply action"})
	}
	if verr != nil {
		return c.JSON(fiber.Map{"accepted": false, "reason": verr.Reason, "details": verr.Detail})
	}
	return c.JSON(fiber.Map{"accepted": true, "session": sess})
}

// SettleSession handles POST /sessions/:id/settle
func (s *SessionService) SettleSession(c *fiber.Ctx) error {
	sess, err := s.settle(c.Params("id"))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "session not found"})
		}
		if errors.Is(err, errNotSettleable) {
			return c.Status(400).JSON(fiber.Map{"error": err.Error()})
		}
		if errors.Is(err, errVersionConflict) {
			return c.Status(409).JSON(fiber.Map{"error": err.Error()})
		}
		log.Printf("DB Error settling session %s: %v", c.Params("id"), err)
		return c.Status(500).JSON(fiber.Map{"error": "failed to settle session"})
	}
	return c.JSON(sess)
}

// GetSeedStat handles GET /seeds/:seed/stats
func (s *SessionService) GetSeedStat(c *fiber.Ctx) error {
	var stat models.SeedStat
	if err := s.DB.First(&stat, "seed = ?", c.Params("seed")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(404).JSON(fiber.Map{"error": "no stats for seed"})
		}
		return c.Status(500).JSON(fiber.Map{"error": "database error"})
	}
	return c.JSON(stat)
}

// RunTimeoutSweep handles POST /admin/sweeps/timeouts
func (s *SessionService) RunTimeoutSweep(c *fiber.Ctx) error {
	n, err := s.SweepTimeouts()
	if err != nil {
		log.Printf("[Sweep] timeout sweep failed: %v", err)
		return c.Status(500).JSON(fiber.Map{"error": "sweep failed", "details": err.Error()})
	}
	return c.JSON(fiber.Map{"swept": n})
}
