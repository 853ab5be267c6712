// services/scheduler.go
package services

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

// StartSweepScheduler wires the periodic passes: turn deadlines every second,
// matchmaking every two, archival every minute.
func StartSweepScheduler(sessions *SessionService, queue *MatchQueueService, archives *ArchiveService) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Second),
		gocron.NewTask(func() {
			n, err := sessions.SweepTimeouts()
			if err != nil {
				log.Printf("[Scheduler] timeout sweep error: %v", err)
				return
			}
			if n > 0 {
				log.Printf("⏰ Timeout sweep touched %d session(s)", n)
			}
		}),
	)

	_, _ = sched.NewJob(
		gocron.DurationJob(2*time.Second),
		gocron.NewTask(func() {
			matched, expired, err := queue.SweepMatchmaking()
			if err != nil {
				log.Printf("[Scheduler] matchmaking sweep error: %v", err)
				return
			}
			if matched > 0 || expired > 0 {
				log.Printf("🤝 Matchmaking sweep: %d matched, %d expired", matched, expired)
			}
		}),
	)

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			n, err := archives.SweepArchives(context.Background())
			if err != nil {
				log.Printf("[Scheduler] archive sweep error: %v", err)
				return
			}
			if n > 0 {
				log.Printf("📦 Archived %d session(s)", n)
			}
		}),
	)
}
