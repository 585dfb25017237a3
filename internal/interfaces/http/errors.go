package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/Rentabodega-api/internal/application/dto"
	"github.com/jhoicas/Rentabodega-api/internal/domain"
)

// errorStatus traduce errores de dominio a código HTTP y código de error de la API.
func errorStatus(err error) (int, string) {
	var supply *domain.InsufficientSupplyError
	switch {
	case errors.As(err, &supply):
		return fiber.StatusUnprocessableEntity, "INSUFFICIENT_SUPPLY"
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, "VALIDATION"
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, domain.ErrDuplicateSettlement):
		return fiber.StatusConflict, "DUPLICATE_SETTLEMENT"
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, "DUPLICATE"
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return fiber.StatusConflict, "CONCURRENCY_CONFLICT"
	case errors.Is(err, domain.ErrLotClosed), errors.Is(err, domain.ErrConflict):
		return fiber.StatusConflict, "CONFLICT"
	case errors.Is(err, domain.ErrRateScheduleMissing):
		return fiber.StatusUnprocessableEntity, "RATE_SCHEDULE_MISSING"
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, "UNAUTHORIZED"
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, "FORBIDDEN"
	case errors.Is(err, domain.ErrAIUnavailable):
		return fiber.StatusServiceUnavailable, "AI_UNAVAILABLE"
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusRequestTimeout, "TIMEOUT"
	default:
		return fiber.StatusInternalServerError, "INTERNAL"
	}
}

// writeError responde con dto.ErrorResponse según el error de dominio.
func writeError(c *fiber.Ctx, err error) error {
	status, code := errorStatus(err)
	msg := err.Error()
	if status == fiber.StatusInternalServerError {
		msg = "error interno"
	}
	return c.Status(status).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func badRequest(c *fiber.Ctx, code, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: code, Message: msg})
}

func invalidBody(c *fiber.Ctx) error {
	return badRequest(c, "INVALID_BODY", "cuerpo inválido")
}
