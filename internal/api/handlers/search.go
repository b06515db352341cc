package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/viewvault/viewvault/internal/controllers"
)

// SearchHandler handles fuzzy title search
type SearchHandler struct {
	searchCtrl *controllers.SearchController
	logger     *logrus.Logger
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchCtrl *controllers.SearchController, logger *logrus.Logger) *SearchHandler {
	return &SearchHandler{
		searchCtrl: searchCtrl,
		logger:     logger,
	}
}

// Search handles GET /api/search?q=&limit=
func (h *SearchHandler) Search(c *fiber.Ctx) error {
	results, err := h.searchCtrl.Search(c.Context(), c.Query("q"), c.QueryInt("limit", 20))
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"results": results})
}
