// handlers/pages.go
package handlers

import (
	"io/fs"
	"net/http"

	"race-challenge-system/middleware"
	"race-challenge-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
)

// SetupPages serves the embedded HTML pages. The admin gate runs before every
// /admin page, so only /admin/login renders without a session.
func SetupPages(app *fiber.App, pages fs.FS, sessions *services.SessionManager) {
	root := http.FS(pages)
	page := func(name string) fiber.Handler {
		return func(c *fiber.Ctx) error {
			c.Set(fiber.HeaderCacheControl, "no-store")
			return filesystem.SendFile(c, root, name)
		}
	}

	app.Use(middleware.AdminPageGate(sessions))

	app.Get("/", page("index.html"))
	app.Get("/conclusao/:slug", page("conclusao.html"))

	app.Get("/admin/login", page("admin/login.html"))
	app.Get("/admin", page("admin/index.html"))
	app.Get("/admin/conclusoes", page("admin/index.html"))
	app.Get("/admin/config", page("admin/config.html"))

	app.Use("/assets", filesystem.New(filesystem.Config{
		Root:       root,
		PathPrefix: "assets",
		MaxAge:     3600,
	}))
}
