// services/completion_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"strings"

	"race-challenge-system/models"
	"race-challenge-system/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const DefaultPerPage = 20

// PerPageOptions are the page sizes the admin table offers.
var PerPageOptions = []int{10, 20, 50, 100, 200}

// CompletionFilter narrows the admin listing. PerPage 0 means no limit.
type CompletionFilter struct {
	Search    string
	Status    string
	Confirmed *bool
	Challenge string
	Page      int
	PerPage   int
}

type CompletionPage struct {
	Data       []models.ChallengeCompletion `json:"data"`
	Page       int                          `json:"page"`
	PerPage    int                          `json:"per_page"`
	Total      int64                        `json:"total"`
	TotalPages int                          `json:"total_pages"`
}

type CompletionStats struct {
	Total     int64 `json:"total"`
	Confirmed int64 `json:"confirmed"`
	Pending   int64 `json:"pending"`
	Archived  int64 `json:"archived"`
}

// CompletionService is the admin-side management API over challenge_completions.
type CompletionService struct {
	DB    *gorm.DB
	Store utils.ObjectStore
}

func NewCompletionService(db *gorm.DB, store utils.ObjectStore) *CompletionService {
	return &CompletionService{DB: db, Store: store}
}

// ParseCompletionFilter reads q, status, confirmed, challenge, page and per_page.
func ParseCompletionFilter(c *fiber.Ctx) (CompletionFilter, error) {
	f := CompletionFilter{
		Search:    strings.TrimSpace(c.Query("q")),
		Challenge: strings.TrimSpace(c.Query("challenge")),
		Page:      1,
		PerPage:   DefaultPerPage,
	}

	switch status := strings.ToLower(strings.TrimSpace(c.Query("status"))); status {
	case "", "all":
	case models.CompletionStatusActive, models.CompletionStatusArchived:
		f.Status = status
	default:
		return f, badRequest("Status invalido (use: active, archived, all).")
	}

	if raw := strings.TrimSpace(c.Query("confirmed")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return f, badRequest("O filtro confirmed precisa ser booleano.")
		}
		f.Confirmed = &v
	}

	if page, err := strconv.Atoi(c.Query("page")); err == nil && page > 0 {
		f.Page = page
	}
	if raw := c.Query("per_page"); raw != "" {
		if raw == "all" {
			f.PerPage = 0
		} else if n, err := strconv.Atoi(raw); err == nil && isPerPageOption(n) {
			f.PerPage = n
		}
	}
	return f, nil
}

func isPerPageOption(n int) bool {
	for _, opt := range PerPageOptions {
		if opt == n {
			return true
		}
	}
	return false
}

func (s *CompletionService) filtered(ctx context.Context, f CompletionFilter) *gorm.DB {
	q := s.DB.WithContext(ctx).Model(&models.ChallengeCompletion{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Confirmed != nil {
		q = q.Where("is_confirmed = ?", *f.Confirmed)
	}
	if f.Challenge != "" {
		q = q.Where("challenge_slug = ?", f.Challenge)
	}
	for _, term := range strings.Fields(utils.FoldForSearch(f.Search)) {
		q = q.Where(`search_text LIKE ? ESCAPE '\'`, "%"+escapeLike(term)+"%")
	}
	return q
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// List returns one page of completions, newest first.
func (s *CompletionService) List(ctx context.Context, f CompletionFilter) (*CompletionPage, error) {
	var total int64
	if err := s.filtered(ctx, f).Count(&total).Error; err != nil {
		return nil, upstream("Erro ao carregar registros", err)
	}

	page := &CompletionPage{
		Data:       []models.ChallengeCompletion{},
		Page:       1,
		PerPage:    f.PerPage,
		Total:      total,
		TotalPages: 1,
	}

	q := s.filtered(ctx, f).Order("created_at DESC").Order("id DESC")
	if f.PerPage > 0 {
		page.TotalPages = int((total + int64(f.PerPage) - 1) / int64(f.PerPage))
		if page.TotalPages < 1 {
			page.TotalPages = 1
		}
		page.Page = f.Page
		if page.Page < 1 {
			page.Page = 1
		}
		if page.Page > page.TotalPages {
			page.Page = page.TotalPages
		}
		q = q.Limit(f.PerPage).Offset((page.Page - 1) * f.PerPage)
	}

	if err := q.Find(&page.Data).Error; err != nil {
		return nil, upstream("Erro ao carregar registros", err)
	}
	return page, nil
}

// ListAll returns every matching completion, ignoring pagination.
func (s *CompletionService) ListAll(ctx context.Context, f CompletionFilter) ([]models.ChallengeCompletion, error) {
	f.PerPage = 0
	page, err := s.List(ctx, f)
	if err != nil {
		return nil, err
	}
	return page.Data, nil
}

func (s *CompletionService) Get(ctx context.Context, id string) (*models.ChallengeCompletion, error) {
	var completion models.ChallengeCompletion
	err := s.DB.WithContext(ctx).First(&completion, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Registro nao encontrado.")
	}
	if err != nil {
		return nil, upstream("Nao foi possivel carregar o registro.", err)
	}
	return &completion, nil
}

// SetConfirmed is idempotent: repeating a value leaves the record unchanged.
func (s *CompletionService) SetConfirmed(ctx context.Context, id string, confirmed bool) (*models.ChallengeCompletion, error) {
	return s.update(ctx, id, "is_confirmed", confirmed, "Nao foi possivel atualizar o registro.")
}

// SetStatus archives or restores a completion.
func (s *CompletionService) SetStatus(ctx context.Context, id, status string) (*models.ChallengeCompletion, error) {
	if !models.IsValidCompletionStatus(status) {
		return nil, badRequest("Status invalido.")
	}
	msg := "Nao foi possivel arquivar a conclusao."
	if status == models.CompletionStatusActive {
		msg = "Nao foi possivel restaurar a conclusao."
	}
	return s.update(ctx, id, "status", status, msg)
}

func (s *CompletionService) update(ctx context.Context, id, column string, value interface{}, failMsg string) (*models.ChallengeCompletion, error) {
	completion, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(completion).Update(column, value).Error; err != nil {
		return nil, upstream(failMsg, err)
	}
	return s.Get(ctx, id)
}

// Delete hard-deletes a completion, then removes its screenshot on a best-effort basis.
func (s *CompletionService) Delete(ctx context.Context, id string) error {
	completion, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.ChallengeCompletion{})
	if res.Error != nil {
		return upstream("Nao foi possivel excluir o registro.", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("Registro nao encontrado.")
	}

	if s.Store != nil {
		if key, ok := s.Store.KeyFromURL(completion.StravaScreenshotURL); ok {
			if err := s.Store.Delete(ctx, key); err != nil {
				log.Printf("⚠️  [Completions] Deleted %s but could not remove %s: %v", id, key, err)
			}
		}
	}
	return nil
}

func (s *CompletionService) Stats(ctx context.Context) (*CompletionStats, error) {
	var stats CompletionStats
	base := func() *gorm.DB { return s.DB.WithContext(ctx).Model(&models.ChallengeCompletion{}) }
	if err := base().Count(&stats.Total).Error; err != nil {
		return nil, upstream("Erro ao carregar registros", err)
	}
	if err := base().Where("is_confirmed = ?", true).Count(&stats.Confirmed).Error; err != nil {
		return nil, upstream("Erro ao carregar registros", err)
	}
	if err := base().Where("is_confirmed = ? AND status = ?", false, models.CompletionStatusActive).Count(&stats.Pending).Error; err != nil {
		return nil, upstream("Erro ao carregar registros", err)
	}
	if err := base().Where("status = ?", models.CompletionStatusArchived).Count(&stats.Archived).Error; err != nil {
		return nil, upstream("Erro ao carregar registros", err)
	}
	return &stats, nil
}

// --- HTTP handlers ---

// ListCompletions serves GET /api/admin/challenge-completions (JSON page or ?format=csv).
func (s *CompletionService) ListCompletions(c *fiber.Ctx) error {
	f, err := ParseCompletionFilter(c)
	if err != nil {
		return respondError(c, err)
	}
	return s.respondList(c, f)
}

// ListActiveConclusoes serves the archive screen, which only shows active rows.
func (s *CompletionService) ListActiveConclusoes(c *fiber.Ctx) error {
	f, err := ParseCompletionFilter(c)
	if err != nil {
		return respondError(c, err)
	}
	f.Status = models.CompletionStatusActive
	return s.respondList(c, f)
}

func (s *CompletionService) respondList(c *fiber.Ctx, f CompletionFilter) error {
	if strings.Contains(strings.ToLower(c.Query("format")), "csv") {
		return s.respondCSV(c, f)
	}
	page, err := s.List(c.UserContext(), f)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

func (s *CompletionService) respondCSV(c *fiber.Ctx, f CompletionFilter) error {
	rows, err := s.ListAll(c.UserContext(), f)
	if err != nil {
		return respondError(c, err)
	}
	var buf bytes.Buffer
	if err := WriteCompletionsCSV(&buf, rows); err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, "attachment; filename=conclusoes.csv")
	return c.Send(buf.Bytes())
}

// UpdateConfirmation serves PATCH /api/admin/challenge-completions/:id.
func (s *CompletionService) UpdateConfirmation(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return respondError(c, badRequest("ID do registro nao informado."))
	}

	var body struct {
		IsConfirmed json.RawMessage `json:"is_confirmed"`
	}
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return respondError(c, badRequest("Formato do corpo invalido."))
	}
	var confirmed bool
	raw := bytes.TrimSpace(body.IsConfirmed)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || json.Unmarshal(raw, &confirmed) != nil {
		return respondError(c, badRequest("O campo is_confirmed precisa ser booleano."))
	}

	completion, err := s.SetConfirmed(c.UserContext(), id, confirmed)
	if err != nil {
		return respondError(c, err)
	}
	log.Printf("✅ [Completions] %s is_confirmed=%t", id, confirmed)
	return c.JSON(fiber.Map{"data": completion})
}

// DeleteCompletion serves DELETE /api/admin/challenge-completions/:id.
func (s *CompletionService) DeleteCompletion(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return respondError(c, badRequest("ID do registro nao informado."))
	}
	if err := s.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	log.Printf("🗑️  [Completions] Deleted %s", id)
	return c.JSON(fiber.Map{"success": true})
}

// RestoreCompletion flips an archived completion back to active.
func (s *CompletionService) RestoreCompletion(c *fiber.Ctx) error {
	completion, err := s.SetStatus(c.UserContext(), c.Params("id"), models.CompletionStatusActive)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": completion})
}

type idRequest struct {
	ID string `json:"id"`
}

func parseIDBody(c *fiber.Ctx) (string, error) {
	var body idRequest
	if err := json.Unmarshal(c.Body(), &body); err != nil {
		return "", badRequest("Formato do corpo invalido.")
	}
	if id := strings.TrimSpace(body.ID); id != "" {
		return id, nil
	}
	return "", badRequest("O campo id eh obrigatorio.")
}

// ArchiveConclusao serves PATCH /api/admin/conclusoes with body {id}.
func (s *CompletionService) ArchiveConclusao(c *fiber.Ctx) error {
	id, err := parseIDBody(c)
	if err != nil {
		return respondError(c, err)
	}
	completion, err := s.SetStatus(c.UserContext(), id, models.CompletionStatusArchived)
	if err != nil {
		return respondError(c, err)
	}
	log.Printf("📦 [Completions] Archived %s", id)
	return c.JSON(fiber.Map{"data": completion})
}

// DeleteConclusao serves DELETE /api/admin/conclusoes with body {id}.
func (s *CompletionService) DeleteConclusao(c *fiber.Ctx) error {
	id, err := parseIDBody(c)
	if err != nil {
		return respondError(c, err)
	}
	if err := s.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	log.Printf("🗑️  [Completions] Deleted %s", id)
	return c.JSON(fiber.Map{"success": true})
}

func (s *CompletionService) GetStats(c *fiber.Ctx) error {
	stats, err := s.Stats(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": stats})
}
