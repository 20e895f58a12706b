// handlers/public.go
package handlers

import (
	"race-challenge-system/middleware"
	"race-challenge-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupPublicRoutes(app *fiber.App, challenges *services.ChallengeService, submissions *services.SubmissionService, submitRateLimit int) {
	app.Get("/api/submission-settings", submissions.GetSubmissionSettings)
	app.Get("/api/challenges", challenges.ListActiveChallenges)
	app.Get("/api/challenges/:slug", challenges.GetChallengeBySlug)
	app.Post("/api/challenges/:slug/completions",
		middleware.RateLimit(submitRateLimit, "Muitos envios. Aguarde um minuto e tente novamente."),
		submissions.SubmitCompletion)
}
