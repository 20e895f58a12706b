// handlers/admin.go
package handlers

import (
	"race-challenge-system/middleware"
	"race-challenge-system/services"

	"github.com/gofiber/fiber/v2"
)

type AdminDeps struct {
	Sessions       *services.SessionManager
	Auth           *services.AuthService
	Completions    *services.CompletionService
	Challenges     *services.ChallengeService
	LoginRateLimit int
}

func SetupAdminRoutes(app *fiber.App, d AdminDeps) {
	// 🔓 Session endpoints
	app.Post("/api/admin/login",
		middleware.RateLimit(d.LoginRateLimit, "Muitas tentativas. Aguarde um minuto."),
		d.Auth.Login)
	app.Post("/api/admin/logout", d.Auth.Logout)

	// 🔐 Everything else under /api/admin needs a valid session token
	admin := app.Group("/api/admin", middleware.AdminAPIAuth(d.Sessions))

	admin.Get("/stats", d.Completions.GetStats)

	admin.Get("/challenge-completions", d.Completions.ListCompletions)
	admin.Patch("/challenge-completions/:id", d.Completions.UpdateConfirmation)
	admin.Delete("/challenge-completions/:id", d.Completions.DeleteCompletion)
	admin.Post("/challenge-completions/:id/restore", d.Completions.RestoreCompletion)

	// Archive screen: active rows only, id in the body
	admin.Get("/conclusoes", d.Completions.ListActiveConclusoes)
	admin.Patch("/conclusoes", d.Completions.ArchiveConclusao)
	admin.Delete("/conclusoes", d.Completions.DeleteConclusao)

	admin.Get("/challenges", d.Challenges.ListChallenges)
	admin.Post("/challenges", d.Challenges.CreateChallenge)
	admin.Patch("/challenges/:id", d.Challenges.UpdateChallenge)
	admin.Delete("/challenges/:id", d.Challenges.DeleteChallenge)
}
