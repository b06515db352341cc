package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/viewvault/viewvault/internal/models"
)

// userID reads the acting user from the X-User-ID header. Authentication
// itself happens upstream; this layer only scopes ownership.
func userID(c *fiber.Ctx) (uint64, error) {
	raw := c.Get("X-User-ID")
	if raw == "" {
		return 0, fmt.Errorf("%w: missing X-User-ID header", models.ErrValidation)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid X-User-ID header", models.ErrValidation)
	}
	return id, nil
}

// respondError maps domain errors to HTTP status codes
func respondError(c *fiber.Ctx, logger *logrus.Logger, err error) error {
	switch {
	case errors.Is(err, models.ErrValidation), errors.Is(err, models.ErrInvalidItemType):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, models.ErrListNotFound), errors.Is(err, models.ErrItemNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, models.ErrDefaultList):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		logger.WithError(err).Error("Request failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}
