// services/errors.go
package services

import (
	"errors"
	"log"
	"sort"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

var (
	ErrBadRequest       = errors.New("bad request")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrNoFieldsProvided = errors.New("no fields provided")
	ErrUpstream         = errors.New("upstream error")
)

// APIError carries the user-facing message and status for a failure.
// Messages are shown verbatim in the admin and submission banners.
type APIError struct {
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *APIError) Unwrap() error { return e.Err }

func newAPIError(status int, message string, err error) *APIError {
	return &APIError{Status: status, Message: message, Err: err}
}

func badRequest(message string) *APIError {
	return newAPIError(fiber.StatusBadRequest, message, ErrBadRequest)
}

func notFound(message string) *APIError {
	return newAPIError(fiber.StatusNotFound, message, ErrNotFound)
}

// upstream wraps a datastore/object-store failure, appending the service message.
func upstream(message string, err error) *APIError {
	return newAPIError(fiber.StatusBadGateway, message+" ("+err.Error()+")", errors.Join(ErrUpstream, err))
}

// ValidationError lists per-field problems found before any network call.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// respondError is the single place failures become {"error": ...} bodies.
func respondError(c *fiber.Ctx, err error) error {
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":  "Verifique os campos destacados.",
			"fields": validationErr.Fields,
		})
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status >= fiber.StatusInternalServerError {
			log.Printf("❌ [API] %s %s: %v", c.Method(), c.Path(), err)
		}
		return c.Status(apiErr.Status).JSON(fiber.Map{"error": apiErr.Message})
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Registro nao encontrado."})
	case errors.Is(err, ErrUnauthorized):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Nao autorizado."})
	case errors.Is(err, ErrBadRequest):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Requisicao invalida."})
	}

	log.Printf("❌ [API] %s %s: %v", c.Method(), c.Path(), err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Erro interno."})
}

// ErrorHandler renders errors that escape a handler in the same JSON shape.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		if fiberErr.Code == fiber.StatusRequestEntityTooLarge {
			return c.Status(fiberErr.Code).JSON(fiber.Map{
				"error":  "Arquivo muito grande.",
				"fields": fiber.Map{"screenshot": "A imagem enviada excede o limite permitido."},
			})
		}
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}
	return respondError(c, err)
}
