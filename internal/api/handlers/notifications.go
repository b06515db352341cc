package handlers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/viewvault/viewvault/internal/models"
)

// NotificationsHandler handles release notifications
type NotificationsHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewNotificationsHandler creates a new notifications handler
func NewNotificationsHandler(db *models.Database, logger *logrus.Logger) *NotificationsHandler {
	return &NotificationsHandler{
		db:     db,
		logger: logger,
	}
}

// List handles GET /api/notifications
func (h *NotificationsHandler) List(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	notifications, err := h.db.GetNotificationsByUser(c.Context(), uid)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"notifications": notifications})
}

// MarkRead handles POST /api/notifications/:id/read
func (h *NotificationsHandler) MarkRead(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return respondError(c, h.logger, fmt.Errorf("%w: invalid notification id", models.ErrValidation))
	}

	if err := h.db.MarkNotificationRead(c.Context(), uid, id); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
