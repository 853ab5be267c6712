// handlers/matchqueue.go
package handlers

import (
	"game-session-engine/services"

	"github.com/gofiber/fiber/v2"
)

func SetupMatchQueueRoutes(app *fiber.App, queue *services.MatchQueueService, sessions *services.SessionService) {
	app.Post("/matchqueue", queue.EnqueueMatch)
	app.Delete("/matchqueue/:occupant", queue.CancelQueueEntry)

	// manual sweep triggers for operators; the scheduler runs the same passes
	admin := app.Group("/admin")
	admin.Post("/sweeps/timeouts", sessions.RunTimeoutSweep)
	admin.Post("/sweeps/matchmaking", queue.RunMatchmakingSweep)
}
