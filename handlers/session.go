// handlers/session.go
package handlers

import (
	"game-session-engine/services"

	"github.com/gofiber/fiber/v2"
)

func SetupSessionRoutes(app *fiber.App, sessions *services.SessionService, events *services.EventService) {
	app.Post("/sessions", sessions.CreateSession)
	app.Get("/sessions/:id", sessions.GetSession)
	app.Post("/sessions/:id/join", sessions.JoinSession)
	app.Post("/sessions/:id/actions", sessions.SubmitAction)
	app.Post("/sessions/:id/settle", sessions.SettleSession)

	// event polling — both axes share the cursor contract
	app.Get("/sessions/:id/events", events.GetSessionEvents)
	app.Get("/actors/:id/events", events.GetActorEvents)

	app.Get("/seeds/:seed/stats", sessions.GetSeedStat)
}
