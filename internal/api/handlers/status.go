package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/viewvault/viewvault/internal/models"
)

// StatusHandler handles status requests
type StatusHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(db *models.Database, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{
		db:     db,
		logger: logger,
	}
}

// StatusResponse represents the status response
type StatusResponse struct {
	TotalLists  int64            `json:"total_lists"`
	TotalItems  int64            `json:"total_items"`
	ItemsByType map[string]int64 `json:"items_by_type"`
}

// Status handles the status endpoint
func (h *StatusHandler) Status(c *fiber.Ctx) error {
	totalLists, err := h.db.CountLists(c.Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}

	byType, err := h.db.CountListItemsByType(c.Context())
	if err != nil {
		return respondError(c, h.logger, err)
	}

	response := StatusResponse{
		TotalLists:  totalLists,
		ItemsByType: make(map[string]int64),
	}
	for _, row := range byType {
		response.ItemsByType[string(row.ItemType)] = row.Count
		response.TotalItems += row.Count
	}

	return c.JSON(response)
}
