package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"race-challenge-system/models"
	"race-challenge-system/services"
	"race-challenge-system/utils"
	"race-challenge-system/web"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestApp(t *testing.T) (*fiber.App, *services.SessionManager) {
	t.Helper()

	db, err := gorm.Open(gormsqlite.Open(filepath.Join(t.TempDir(), "routes.sqlite")), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&models.Challenge{}, &models.ChallengeCompletion{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	store, err := utils.NewLocalStore(t.TempDir(), "/uploads")
	if err != nil {
		t.Fatalf("local store: %v", err)
	}
	sessions, err := services.NewSessionManager("senha", "", "routes-secret", time.Hour)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	pages, err := web.Pages()
	if err != nil {
		t.Fatalf("pages: %v", err)
	}

	challenges := services.NewChallengeService(db)
	if _, err := challenges.SeedDefaults(context.Background()); err != nil {
		t.Fatalf("seed: %v", err)
	}

	app := fiber.New(fiber.Config{ErrorHandler: services.ErrorHandler})
	SetupPublicRoutes(app, challenges, services.NewSubmissionService(db, store, challenges, 1024*1024), 0)
	SetupAdminRoutes(app, AdminDeps{
		Sessions:    sessions,
		Auth:        services.NewAuthService(sessions, false),
		Completions: services.NewCompletionService(db, store),
		Challenges:  challenges,
	})
	SetupPages(app, pages, sessions)
	return app, sessions
}

func get(t *testing.T, app *fiber.App, path string, cookie string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: services.SessionCookieName, Value: cookie})
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestPublicPagesAndAPI(t *testing.T) {
	app, _ := newTestApp(t)

	for _, path := range []string{"/", "/conclusao/hulk-desafio", "/admin/login", "/assets/app.css", "/assets/conclusao.js"} {
		if resp := get(t, app, path, ""); resp.StatusCode != fiber.StatusOK {
			t.Errorf("GET %s = %d", path, resp.StatusCode)
		}
	}

	resp := get(t, app, "/api/challenges", "")
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != fiber.StatusOK || !strings.Contains(string(body), "hulk-desafio") {
		t.Fatalf("GET /api/challenges = %d %s", resp.StatusCode, body)
	}
}

func TestAdminPagesRequireSession(t *testing.T) {
	app, sessions := newTestApp(t)

	for _, path := range []string{"/admin", "/admin/conclusoes", "/admin/config", "/Admin/conclusoes", "/ADMIN", "/admin/Config"} {
		resp := get(t, app, path, "")
		if resp.StatusCode != fiber.StatusFound || resp.Header.Get("Location") != "/admin/login" {
			t.Errorf("GET %s without session = %d %q", path, resp.StatusCode, resp.Header.Get("Location"))
		}
	}

	if resp := get(t, app, "/admin/conclusoes", "ok"); resp.StatusCode != fiber.StatusFound {
		t.Fatalf("static cookie value let the request through: %d", resp.StatusCode)
	}

	token, _, err := sessions.Login("senha")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp := get(t, app, "/admin/conclusoes", token); resp.StatusCode != fiber.StatusOK {
		t.Fatalf("GET /admin/conclusoes with session = %d", resp.StatusCode)
	}
}

func TestAdminAPIRequiresSession(t *testing.T) {
	app, sessions := newTestApp(t)

	for _, path := range []string{"/api/admin/challenge-completions", "/api/admin/conclusoes", "/api/admin/stats", "/api/admin/challenges"} {
		if resp := get(t, app, path, ""); resp.StatusCode != fiber.StatusUnauthorized {
			t.Errorf("GET %s without session = %d", path, resp.StatusCode)
		}
	}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", strings.NewReader(`{"password":"senha"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	resp.Body.Close()
	var token string
	for _, c := range resp.Cookies() {
		if c.Name == services.SessionCookieName {
			token = c.Value
		}
	}
	if sessions.Verify(token) != nil {
		t.Fatalf("login did not issue a valid session")
	}

	resp = get(t, app, "/api/admin/challenge-completions", token)
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != fiber.StatusOK || !strings.Contains(string(body), `"total":0`) {
		t.Fatalf("list with session = %d %s", resp.StatusCode, body)
	}
}
