// services/submission_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"unicode/utf8"

	"race-challenge-system/models"
	"race-challenge-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StagingPrefix holds uploads whose completion row is not committed yet.
const StagingPrefix = "staging/"

// SubmissionService accepts public completion submissions.
type SubmissionService struct {
	DB             *gorm.DB
	Store          utils.ObjectStore
	Challenges     *ChallengeService
	MaxUploadBytes int64
}

func NewSubmissionService(db *gorm.DB, store utils.ObjectStore, challenges *ChallengeService, maxUploadBytes int64) *SubmissionService {
	return &SubmissionService{
		DB:             db,
		Store:          store,
		Challenges:     challenges,
		MaxUploadBytes: maxUploadBytes,
	}
}

type SubmissionInput struct {
	FullName    string
	State       string
	City        string
	Whatsapp    string
	OrderNumber string
	Screenshot  *multipart.FileHeader
}

// Validate normalizes the text fields in place and reads the screenshot.
// Every problem is reported at once in a *ValidationError.
func (in *SubmissionInput) Validate(maxUploadBytes int64) (*utils.Upload, error) {
	verr := &ValidationError{}

	in.FullName = utils.NormalizeText(in.FullName)
	switch {
	case in.FullName == "":
		verr.add("full_name", "Informe seu nome completo.")
	case utf8.RuneCountInString(in.FullName) < 3:
		verr.add("full_name", "Digite pelo menos 3 caracteres.")
	}

	in.State = utils.SanitizeState(in.State)
	switch {
	case in.State == "":
		verr.add("state", "Informe o estado (UF).")
	case len(in.State) != 2:
		verr.add("state", "Use a sigla com 2 letras.")
	}

	in.City = utils.NormalizeText(in.City)
	if in.City == "" {
		verr.add("city", "Informe a cidade.")
	}

	in.Whatsapp = utils.FormatWhatsapp(in.Whatsapp)
	switch {
	case in.Whatsapp == "":
		verr.add("whatsapp", "Informe seu contato de WhatsApp.")
	case !utils.IsValidWhatsapp(in.Whatsapp):
		verr.add("whatsapp", "Use o formato (99) 99999-9999.")
	}

	in.OrderNumber = utils.NormalizeText(in.OrderNumber)
	if in.OrderNumber == "" {
		verr.add("order_number", "Informe o numero do pedido.")
	}

	var upload *utils.Upload
	if in.Screenshot == nil {
		verr.add("screenshot", "Envie o print do Strava.")
	} else {
		var err error
		upload, err = utils.ReadImageUpload(in.Screenshot, maxUploadBytes)
		switch {
		case errors.Is(err, utils.ErrFileTooLarge):
			verr.add("screenshot", fmt.Sprintf("A imagem deve ter no maximo %dMB.", maxUploadBytes/(1024*1024)))
		case errors.Is(err, utils.ErrNotImage):
			verr.add("screenshot", "Envie um arquivo de imagem.")
		case err != nil:
			verr.add("screenshot", "Nao foi possivel ler a imagem enviada.")
		}
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}
	return upload, nil
}

// Submit resolves the challenge, stages the screenshot, inserts the row and
// then promotes the screenshot to its public key. Any failure after the
// upload removes what was written so no orphaned objects or rows remain.
func (s *SubmissionService) Submit(ctx context.Context, challengeSlug string, in SubmissionInput) (*models.ChallengeCompletion, error) {
	challenge, err := s.Challenges.GetActiveBySlug(ctx, challengeSlug)
	if err != nil {
		return nil, err
	}

	upload, err := in.Validate(s.MaxUploadBytes)
	if err != nil {
		return nil, err
	}

	folder := utils.Slugify(challenge.Slug)
	objectKey := utils.NewObjectName(folder, utils.ResolveExtension(upload.Filename, upload.ContentType))
	stagingKey := StagingPrefix + objectKey

	if err := s.Store.Put(ctx, stagingKey, upload.Data, upload.ContentType); err != nil {
		return nil, upstream("Nao foi possivel enviar sua imagem.", err)
	}

	// Cleanup must finish even if the client went away.
	cleanupCtx := context.WithoutCancel(ctx)

	completion := &models.ChallengeCompletion{
		ID:                  uuid.NewString(),
		ChallengeSlug:       challenge.Slug,
		ChallengeName:       challenge.Name,
		FullName:            in.FullName,
		State:               in.State,
		City:                in.City,
		Whatsapp:            in.Whatsapp,
		OrderNumber:         in.OrderNumber,
		StravaScreenshotURL: s.Store.PublicURL(objectKey),
		Status:              models.CompletionStatusActive,
	}
	if err := s.DB.WithContext(ctx).Create(completion).Error; err != nil {
		s.discard(cleanupCtx, stagingKey)
		return nil, upstream("Nao foi possivel salvar suas informacoes.", err)
	}

	if err := s.Store.Copy(cleanupCtx, stagingKey, objectKey); err != nil {
		if delErr := s.DB.WithContext(cleanupCtx).Delete(&models.ChallengeCompletion{}, "id = ?", completion.ID).Error; delErr != nil {
			log.Printf("❌ [INTAKE] Could not roll back completion %s: %v", completion.ID, delErr)
		}
		s.discard(cleanupCtx, stagingKey)
		return nil, upstream("Nao foi possivel enviar sua imagem.", err)
	}
	s.discard(cleanupCtx, stagingKey)

	log.Printf("✅ [INTAKE] Completion %s for %s stored at %s", completion.ID, challenge.Slug, objectKey)
	return completion, nil
}

// discard removes a staged object; leftovers are caught by the staging sweeper.
func (s *SubmissionService) discard(ctx context.Context, key string) {
	if err := s.Store.Delete(ctx, key); err != nil {
		log.Printf("⚠️  [INTAKE] Could not remove staged object %s: %v", key, err)
	}
}

// GetSubmissionSettings tells the form which limits the server enforces.
func (s *SubmissionService) GetSubmissionSettings(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": fiber.Map{"max_upload_bytes": s.MaxUploadBytes}})
}

// SubmitCompletion serves POST /api/challenges/:slug/completions (multipart form).
func (s *SubmissionService) SubmitCompletion(c *fiber.Ctx) error {
	in := SubmissionInput{
		FullName:    c.FormValue("full_name"),
		State:       c.FormValue("state"),
		City:        c.FormValue("city"),
		Whatsapp:    c.FormValue("whatsapp"),
		OrderNumber: c.FormValue("order_number"),
	}
	if fh, err := c.FormFile("screenshot"); err == nil && fh.Size > 0 {
		in.Screenshot = fh
	}

	completion, err := s.Submit(c.UserContext(), c.Params("slug"), in)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": completion})
}
