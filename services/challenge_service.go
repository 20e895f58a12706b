// services/challenge_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"race-challenge-system/models"
	"race-challenge-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChallengeService is the challenge registry backed by the admin_challenges table.
type ChallengeService struct {
	DB *gorm.DB
}

func NewChallengeService(db *gorm.DB) *ChallengeService {
	return &ChallengeService{DB: db}
}

type ChallengeInput struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Badge       string `json:"badge"`
	Highlight   string `json:"highlight"`
}

type ChallengePatch struct {
	Name        *string `json:"name"`
	Slug        *string `json:"slug"`
	IsActive    *bool   `json:"is_active"`
	Description *string `json:"description"`
	Badge       *string `json:"badge"`
	Highlight   *string `json:"highlight"`
}

// List returns challenges newest first.
func (s *ChallengeService) List(ctx context.Context, activeOnly bool) ([]models.Challenge, error) {
	challenges := []models.Challenge{}
	q := s.DB.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	if err := q.Find(&challenges).Error; err != nil {
		return nil, upstream("Nao foi possivel carregar os desafios.", err)
	}
	return challenges, nil
}

// GetActiveBySlug resolves a public slug. Unknown and inactive challenges are both not found.
func (s *ChallengeService) GetActiveBySlug(ctx context.Context, slug string) (*models.Challenge, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, notFound("Desafio nao encontrado")
	}
	var challenge models.Challenge
	err := s.DB.WithContext(ctx).Where("slug = ? AND is_active = ?", slug, true).First(&challenge).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("Desafio nao encontrado")
	}
	if err != nil {
		return nil, upstream("Nao foi possivel carregar o desafio.", err)
	}
	return &challenge, nil
}

func (s *ChallengeService) Create(ctx context.Context, in ChallengeInput) (*models.Challenge, error) {
	name := utils.NormalizeText(in.Name)
	rawSlug := strings.TrimSpace(in.Slug)
	if name == "" || rawSlug == "" {
		return nil, badRequest("Nome e slug sao obrigatorios.")
	}
	slug := utils.Slugify(rawSlug)
	if err := s.ensureSlugFree(ctx, slug, ""); err != nil {
		return nil, err
	}

	challenge := &models.Challenge{
		ID:          uuid.NewString(),
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(in.Description),
		Badge:       strings.TrimSpace(in.Badge),
		Highlight:   strings.TrimSpace(in.Highlight),
		IsActive:    true,
	}
	if err := s.DB.WithContext(ctx).Create(challenge).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, slugTaken(slug)
		}
		return nil, upstream("Nao foi possivel criar o desafio.", err)
	}
	return challenge, nil
}

// Update applies a partial patch. An empty patch is rejected with ErrNoFieldsProvided.
func (s *ChallengeService) Update(ctx context.Context, id string, patch ChallengePatch) (*models.Challenge, error) {
	updates := map[string]interface{}{}
	if patch.Name != nil {
		name := utils.NormalizeText(*patch.Name)
		if name == "" {
			return nil, badRequest("O nome do desafio nao pode ficar vazio.")
		}
		updates["name"] = name
	}
	if patch.Slug != nil {
		if strings.TrimSpace(*patch.Slug) == "" {
			return nil, badRequest("O slug do desafio nao pode ficar vazio.")
		}
		updates["slug"] = utils.Slugify(*patch.Slug)
	}
	if patch.IsActive != nil {
		updates["is_active"] = *patch.IsActive
	}
	if patch.Description != nil {
		updates["description"] = strings.TrimSpace(*patch.Description)
	}
	if patch.Badge != nil {
		updates["badge"] = strings.TrimSpace(*patch.Badge)
	}
	if patch.Highlight != nil {
		updates["highlight"] = strings.TrimSpace(*patch.Highlight)
	}
	if len(updates) == 0 {
		return nil, newAPIError(fiber.StatusBadRequest, "Nenhum campo valido informado para atualizacao.", ErrNoFieldsProvided)
	}

	var challenge models.Challenge
	if err := s.findByID(ctx, id, &challenge); err != nil {
		return nil, err
	}
	if slug, ok := updates["slug"].(string); ok && slug != challenge.Slug {
		if err := s.ensureSlugFree(ctx, slug, challenge.ID); err != nil {
			return nil, err
		}
	}

	if err := s.DB.WithContext(ctx).Model(&challenge).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, slugTaken(fmt.Sprint(updates["slug"]))
		}
		return nil, upstream("Nao foi possivel atualizar o desafio.", err)
	}
	if err := s.findByID(ctx, id, &challenge); err != nil {
		return nil, err
	}
	return &challenge, nil
}

// Delete removes a challenge. Completions keep their copied name and slug.
func (s *ChallengeService) Delete(ctx context.Context, id string) error {
	res := s.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Challenge{})
	if res.Error != nil {
		return upstream("Nao foi possivel excluir o desafio.", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("Desafio nao encontrado.")
	}
	return nil
}

// SeedDefaults inserts the launch catalogue when the table is empty, keeping
// declaration order as newest-first.
func (s *ChallengeService) SeedDefaults(ctx context.Context) (int, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Challenge{}).Count(&count).Error; err != nil {
		return 0, err
	}
	if count > 0 {
		return 0, nil
	}

	now := time.Now()
	seed := make([]models.Challenge, len(models.SeedChallenges))
	for i, ch := range models.SeedChallenges {
		ch.ID = uuid.NewString()
		ch.IsActive = true
		ch.CreatedAt = now.Add(-time.Duration(i) * time.Second)
		seed[i] = ch
	}
	if err := s.DB.WithContext(ctx).Create(&seed).Error; err != nil {
		return 0, err
	}
	log.Printf("🌱 [Registry] Seeded %d challenges", len(seed))
	return len(seed), nil
}

func (s *ChallengeService) findByID(ctx context.Context, id string, out *models.Challenge) error {
	err := s.DB.WithContext(ctx).First(out, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("Desafio nao encontrado.")
	}
	if err != nil {
		return upstream("Nao foi possivel carregar o desafio.", err)
	}
	return nil
}

func (s *ChallengeService) ensureSlugFree(ctx context.Context, slug, exceptID string) error {
	var count int64
	q := s.DB.WithContext(ctx).Model(&models.Challenge{}).Where("slug = ?", slug)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&count).Error; err != nil {
		return upstream("Nao foi possivel verificar o slug.", err)
	}
	if count > 0 {
		return slugTaken(slug)
	}
	return nil
}

func slugTaken(slug string) *APIError {
	return newAPIError(fiber.StatusConflict, fmt.Sprintf("Ja existe um desafio com o slug %q.", slug), ErrConflict)
}

// --- HTTP handlers ---

// ListChallenges returns every challenge for the admin config screen.
func (s *ChallengeService) ListChallenges(c *fiber.Ctx) error {
	challenges, err := s.List(c.UserContext(), false)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": challenges})
}

// ListActiveChallenges feeds the public landing page.
func (s *ChallengeService) ListActiveChallenges(c *fiber.Ctx) error {
	challenges, err := s.List(c.UserContext(), true)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": challenges})
}

func (s *ChallengeService) GetChallengeBySlug(c *fiber.Ctx) error {
	challenge, err := s.GetActiveBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": challenge})
}

func (s *ChallengeService) CreateChallenge(c *fiber.Ctx) error {
	var in ChallengeInput
	if err := c.BodyParser(&in); err != nil {
		return respondError(c, badRequest("Formato do corpo invalido."))
	}
	challenge, err := s.Create(c.UserContext(), in)
	if err != nil {
		return respondError(c, err)
	}
	log.Printf("✅ [Registry] Created challenge %s (%s)", challenge.Slug, challenge.ID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": challenge})
}

func (s *ChallengeService) UpdateChallenge(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return respondError(c, badRequest("ID do desafio nao informado."))
	}
	var patch ChallengePatch
	if err := c.BodyParser(&patch); err != nil {
		return respondError(c, badRequest("Formato do corpo invalido."))
	}
	challenge, err := s.Update(c.UserContext(), id, patch)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"data": challenge})
}

func (s *ChallengeService) DeleteChallenge(c *fiber.Ctx) error {
	id := c.Params("id")
	if id == "" {
		return respondError(c, badRequest("ID do desafio nao informado."))
	}
	if err := s.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}
