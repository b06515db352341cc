package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/viewvault/viewvault/internal/controllers"
	"github.com/viewvault/viewvault/internal/models"
)

// TransferHandler exposes single-item and bulk transfers
type TransferHandler struct {
	db           *models.Database
	transferCtrl *controllers.TransferController
	bulkCtrl     *controllers.BulkController
	logger       *logrus.Logger
}

// NewTransferHandler creates a new transfer handler
func NewTransferHandler(db *models.Database, transferCtrl *controllers.TransferController, bulkCtrl *controllers.BulkController, logger *logrus.Logger) *TransferHandler {
	return &TransferHandler{
		db:           db,
		transferCtrl: transferCtrl,
		bulkCtrl:     bulkCtrl,
		logger:       logger,
	}
}

// ownsBoth verifies the acting user owns source and target list. Failures
// surface as not-found, consistent with the list handlers.
func (h *TransferHandler) ownsBoth(c *fiber.Ctx, sourceID, targetID uint64) error {
	uid, err := userID(c)
	if err != nil {
		return err
	}
	for _, id := range []uint64{sourceID, targetID} {
		list, err := h.db.GetListByID(c.Context(), id)
		if err != nil {
			return err
		}
		if list.UserID != uid {
			return fmt.Errorf("%w: list %d", models.ErrListNotFound, id)
		}
	}
	return nil
}

// Transfer handles POST /api/lists/transfer
func (h *TransferHandler) Transfer(c *fiber.Ctx) error {
	var req controllers.TransferRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, h.logger, fmt.Errorf("%w: %v", models.ErrValidation, err))
	}

	if err := h.ownsBoth(c, req.SourceListID, req.TargetListID); err != nil {
		return respondError(c, h.logger, err)
	}

	result, err := h.transferCtrl.Transfer(c.Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(result)
}

// BulkTransfer handles POST /api/lists/bulk-transfer
func (h *TransferHandler) BulkTransfer(c *fiber.Ctx) error {
	var req controllers.BulkTransferRequest
	if err := c.BodyParser(&req); err != nil {
		return respondError(c, h.logger, fmt.Errorf("%w: %v", models.ErrValidation, err))
	}

	if err := h.ownsBoth(c, req.SourceListID, req.TargetListID); err != nil {
		return respondError(c, h.logger, err)
	}

	result, err := h.bulkCtrl.BulkTransfer(c.Context(), &req)
	if err != nil {
		return respondError(c, h.logger, err)
	}
	return c.JSON(result)
}
