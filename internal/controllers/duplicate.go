package controllers

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/viewvault/viewvault/internal/models"
)

// DuplicateController answers whether an equivalent item already exists in
// a target list, excluding soft-deleted rows
type DuplicateController struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewDuplicateController creates a new duplicate controller
func NewDuplicateController(db *models.Database, logger *logrus.Logger) *DuplicateController {
	return &DuplicateController{
		db:     db,
		logger: logger,
	}
}

// ExistsInList reports whether the target list already holds a non-deleted
// entry for (itemID, itemType). On a storage error the check fails open:
// the condition is logged and the caller proceeds as if no duplicate exists,
// so a broken check never blocks the primary operation.
func (c *DuplicateController) ExistsInList(ctx context.Context, targetListID, itemID uint64, itemType models.ItemType) bool {
	_, err := c.db.FindListItem(ctx, targetListID, itemID, itemType)
	if err == nil {
		return true
	}
	if errors.Is(err, models.ErrItemNotFound) {
		return false
	}

	c.logger.WithError(err).WithFields(logrus.Fields{
		"list_id":   targetListID,
		"item_id":   itemID,
		"item_type": itemType,
	}).Warn("Duplicate check failed, allowing operation")
	return false
}
