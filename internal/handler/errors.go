package handler

import (
	"errors"
	"log/slog"

	"ali-plastic-pos/internal/middleware"
	"ali-plastic-pos/internal/service"
	"ali-plastic-pos/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// respondError maps service errors onto HTTP status codes. Anything unknown is
// logged and answered with a generic message.
func respondError(c *fiber.Ctx, logger *slog.Logger, err error) error {
	var status int
	switch {
	case service.IsValidation(err),
		errors.Is(err, service.ErrEmptyCheckout):
		status = fiber.StatusBadRequest
	case errors.Is(err, service.ErrProductExists),
		errors.Is(err, service.ErrUsernameExists),
		errors.Is(err, service.ErrInsufficientStock):
		status = fiber.StatusConflict
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrSaleNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrRoleNotFound):
		status = fiber.StatusNotFound
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrSessionReplaced),
		errors.Is(err, jwt.ErrInvalidToken),
		errors.Is(err, jwt.ErrMissingToken):
		status = fiber.StatusUnauthorized
	case errors.Is(err, service.ErrWrongPassword):
		status = fiber.StatusBadRequest
	case errors.Is(err, service.ErrSelfModification):
		status = fiber.StatusForbidden
	default:
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Any("error", err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Internal Server Error"})
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

// actor reads the identity RequireAuth stored on the request.
func actor(c *fiber.Ctx) service.Actor {
	a := service.Actor{ID: "system", Username: "Unknown"}
	if id, ok := c.Locals(middleware.LocalUserID).(string); ok && id != "" {
		a.ID = id
	}
	if name, ok := c.Locals(middleware.LocalUsername).(string); ok && name != "" {
		a.Username = name
	}
	return a
}

func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}
