package handlers

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/viewvault/viewvault/internal/controllers"
	"github.com/viewvault/viewvault/internal/models"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ItemsHandler handles list membership: paging, adding, removing, marking
// watched
type ItemsHandler struct {
	db         *models.Database
	lists      *ListsHandler
	duplicates *controllers.DuplicateController
	logger     *logrus.Logger
}

// NewItemsHandler creates a new items handler
func NewItemsHandler(db *models.Database, lists *ListsHandler, duplicates *controllers.DuplicateController, logger *logrus.Logger) *ItemsHandler {
	return &ItemsHandler{
		db:         db,
		lists:      lists,
		duplicates: duplicates,
		logger:     logger,
	}
}

// Pagination describes one page of results
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
	HasMore    bool  `json:"has_more"`
}

// GetItems handles GET /api/lists/:id/items
func (h *ItemsHandler) GetItems(c *fiber.Ctx) error {
	listID, err := listPath(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if _, err := h.lists.ownedList(c, listID); err != nil {
		return respondError(c, h.logger, err)
	}

	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := c.QueryInt("page_size", defaultPageSize)
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	items, total, err := h.db.GetListItems(c.Context(), listID, page, pageSize)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return c.JSON(fiber.Map{
		"items": items,
		"pagination": Pagination{
			Page:       page,
			PageSize:   pageSize,
			TotalItems: total,
			TotalPages: totalPages,
			HasMore:    page < totalPages,
		},
	})
}

// addItemRequest is the body of POST /api/lists/:id/items
type addItemRequest struct {
	ItemID   uint64 `json:"item_id"`
	ItemType string `json:"item_type"`
	Notes    string `json:"notes"`
}

// AddItem handles POST /api/lists/:id/items. A duplicate in the target list
// is signalled with status duplicate_found and nothing inserted; the caller
// decides how to proceed.
func (h *ItemsHandler) AddItem(c *fiber.Ctx) error {
	listID, err := listPath(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if _, err := h.lists.ownedList(c, listID); err != nil {
		return respondError(c, h.logger, err)
	}

	var req addItemRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, h.logger, fmt.Errorf("%w: %v", models.ErrValidation, err))
	}

	itemType, err := models.ParseItemType(req.ItemType)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if !itemType.Storable() {
		return respondError(c, h.logger, fmt.Errorf("%w: a %s cannot be stored directly, transfer it instead", models.ErrValidation, itemType))
	}
	if req.ItemID == 0 {
		return respondError(c, h.logger, fmt.Errorf("%w: item_id is required", models.ErrValidation))
	}

	exists, err := h.db.ContentExists(c.Context(), req.ItemID, itemType)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if !exists {
		return respondError(c, h.logger, fmt.Errorf("%w: %s %d", models.ErrItemNotFound, itemType, req.ItemID))
	}

	if h.duplicates.ExistsInList(c.Context(), listID, req.ItemID, itemType) {
		return c.JSON(fiber.Map{
			"status":  models.TransferStatusDuplicateFound,
			"message": fmt.Sprintf("%s %d already exists in list %d", itemType, req.ItemID, listID),
		})
	}

	item := &models.ListItem{
		ListID:   listID,
		ItemID:   req.ItemID,
		ItemType: itemType,
		Notes:    req.Notes,
	}
	if err := h.db.CreateListItem(c.Context(), item); err != nil {
		return respondError(c, h.logger, err)
	}

	h.logger.WithFields(logrus.Fields{
		"list_id":   listID,
		"item_id":   req.ItemID,
		"item_type": itemType,
	}).Info("Item added to list")

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": models.TransferStatusOK,
		"item":   item,
	})
}

// itemPath parses the :itemID path parameter (a list item row id)
func itemPath(c *fiber.Ctx) (uint64, error) {
	id, err := strconv.ParseUint(c.Params("itemID"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid item id", models.ErrValidation)
	}
	return id, nil
}

// RemoveItem handles DELETE /api/lists/:id/items/:itemID (soft delete)
func (h *ItemsHandler) RemoveItem(c *fiber.Ctx) error {
	listID, err := listPath(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if _, err := h.lists.ownedList(c, listID); err != nil {
		return respondError(c, h.logger, err)
	}
	itemID, err := itemPath(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	item, err := h.db.GetListItemByID(c.Context(), listID, itemID)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if err := h.db.SoftDeleteListItems(c.Context(), []uint64{item.ID}); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// updateItemRequest is the body of PATCH /api/lists/:id/items/:itemID
type updateItemRequest struct {
	Watched *bool   `json:"watched"`
	Notes   *string `json:"notes"`
}

// UpdateItem handles PATCH /api/lists/:id/items/:itemID
func (h *ItemsHandler) UpdateItem(c *fiber.Ctx) error {
	listID, err := listPath(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if _, err := h.lists.ownedList(c, listID); err != nil {
		return respondError(c, h.logger, err)
	}
	itemID, err := itemPath(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	item, err := h.db.GetListItemByID(c.Context(), listID, itemID)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req updateItemRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, h.logger, fmt.Errorf("%w: %v", models.ErrValidation, err))
	}

	if req.Watched != nil {
		item.Watched = *req.Watched
		if *req.Watched {
			now := time.Now()
			item.WatchedAt = &now
		} else {
			item.WatchedAt = nil
		}
	}
	if req.Notes != nil {
		item.Notes = *req.Notes
	}

	if err := h.db.UpdateListItem(c.Context(), item); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(item)
}
