package handlers

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/viewvault/viewvault/internal/models"
)

// ListsHandler handles list CRUD
type ListsHandler struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewListsHandler creates a new lists handler
func NewListsHandler(db *models.Database, logger *logrus.Logger) *ListsHandler {
	return &ListsHandler{
		db:     db,
		logger: logger,
	}
}

// listRequest is the create/update body
type listRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

// listPath parses the :id path parameter
func listPath(c *fiber.Ctx) (uint64, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid list id", models.ErrValidation)
	}
	return id, nil
}

// ownedList loads a list and verifies the acting user owns it. Lists of
// other users are reported as not found, never as forbidden.
func (h *ListsHandler) ownedList(c *fiber.Ctx, listID uint64) (*models.List, error) {
	uid, err := userID(c)
	if err != nil {
		return nil, err
	}
	list, err := h.db.GetListByID(c.Context(), listID)
	if err != nil {
		return nil, err
	}
	if list.UserID != uid {
		return nil, fmt.Errorf("%w: list %d", models.ErrListNotFound, listID)
	}
	return list, nil
}

// Create handles POST /api/lists
func (h *ListsHandler) Create(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req listRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, h.logger, fmt.Errorf("%w: %v", models.ErrValidation, err))
	}
	if req.Name == "" {
		return respondError(c, h.logger, fmt.Errorf("%w: name is required", models.ErrValidation))
	}

	listType := models.ListTypeCustom
	if req.Type != "" {
		listType, err = models.ParseListType(req.Type)
		if err != nil {
			return respondError(c, h.logger, err)
		}
	}
	if listType == models.ListTypePersonal {
		return respondError(c, h.logger, fmt.Errorf("%w: personal lists are created automatically", models.ErrValidation))
	}

	list := &models.List{
		UserID:      uid,
		Name:        req.Name,
		Description: req.Description,
		Type:        listType,
		Icon:        req.Icon,
		Color:       req.Color,
	}
	if listType == models.ListTypeShared {
		list.ShareToken = uuid.NewString()
	}

	if err := h.db.CreateList(c.Context(), list); err != nil {
		return respondError(c, h.logger, err)
	}

	h.logger.WithFields(logrus.Fields{
		"list_id": list.ID,
		"user_id": uid,
	}).Info("List created")

	return c.Status(fiber.StatusCreated).JSON(list)
}

// List handles GET /api/lists. The user's default personal list is created
// on first use.
func (h *ListsHandler) List(c *fiber.Ctx) error {
	uid, err := userID(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	if _, err := h.db.EnsureDefaultList(c.Context(), uid); err != nil {
		return respondError(c, h.logger, err)
	}

	lists, err := h.db.GetListsByUser(c.Context(), uid)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(fiber.Map{"lists": lists})
}

// Get handles GET /api/lists/:id
func (h *ListsHandler) Get(c *fiber.Ctx) error {
	id, err := listPath(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	list, err := h.ownedList(c, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(list)
}

// Update handles PUT /api/lists/:id
func (h *ListsHandler) Update(c *fiber.Ctx) error {
	id, err := listPath(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	list, err := h.ownedList(c, id)
	if err != nil {
		return respondError(c, h.logger, err)
	}

	var req listRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, h.logger, fmt.Errorf("%w: %v", models.ErrValidation, err))
	}

	if req.Name != "" {
		list.Name = req.Name
	}
	list.Description = req.Description
	list.Icon = req.Icon
	list.Color = req.Color
	if req.Type != "" && !list.IsDefault {
		listType, err := models.ParseListType(req.Type)
		if err != nil {
			return respondError(c, h.logger, err)
		}
		if listType == models.ListTypeShared && list.ShareToken == "" {
			list.ShareToken = uuid.NewString()
		}
		list.Type = listType
	}

	if err := h.db.UpdateList(c.Context(), list); err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(list)
}

// Delete handles DELETE /api/lists/:id
func (h *ListsHandler) Delete(c *fiber.Ctx) error {
	id, err := listPath(c)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	if _, err := h.ownedList(c, id); err != nil {
		return respondError(c, h.logger, err)
	}

	if err := h.db.DeleteList(c.Context(), id); err != nil {
		return respondError(c, h.logger, err)
	}

	h.logger.WithField("list_id", id).Info("List deleted")
	return c.SendStatus(fiber.StatusNoContent)
}
