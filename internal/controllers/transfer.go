package controllers

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/viewvault/viewvault/internal/metrics"
	"github.com/viewvault/viewvault/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// TransferRequest describes one copy or move between two lists
type TransferRequest struct {
	ItemID          uint64                 `json:"item_id"`
	ItemType        models.ItemType        `json:"item_type"`
	SourceListID    uint64                 `json:"source_list_id"`
	TargetListID    uint64                 `json:"target_list_id"`
	Operation       models.Operation       `json:"operation"`
	DuplicatePolicy models.DuplicatePolicy `json:"duplicate_policy"`
}

// TransferResult is the structured outcome of a transfer call
type TransferResult struct {
	Status  models.TransferStatus `json:"status"`
	Message string                `json:"message,omitempty"`
	Copied  int                   `json:"copied_count"`
	Moved   int                   `json:"moved_count"`
	Skipped int                   `json:"skipped_count"`
}

// errDuplicateBlocked aborts the transaction when the block policy finds a
// duplicate during execution. It never escapes Transfer.
var errDuplicateBlocked = errors.New("duplicate blocked")

// TransferController performs single-item copies and moves between lists.
// One Transfer call is one storage transaction: all rows commit or none do.
type TransferController struct {
	db         *models.Database
	duplicates *DuplicateController
	expander   *ExpanderController
	logger     *logrus.Logger
	tracer     trace.Tracer
}

// NewTransferController creates a new transfer controller
func NewTransferController(db *models.Database, duplicates *DuplicateController, expander *ExpanderController, logger *logrus.Logger) *TransferController {
	return &TransferController{
		db:         db,
		duplicates: duplicates,
		expander:   expander,
		logger:     logger,
		tracer:     otel.Tracer("viewvault/transfer"),
	}
}

// validate rejects malformed requests before any storage access
func (c *TransferController) validate(req *TransferRequest) error {
	if _, err := models.ParseItemType(string(req.ItemType)); err != nil {
		return err
	}
	if _, err := models.ParseOperation(string(req.Operation)); err != nil {
		return err
	}
	if _, err := models.ParseDuplicatePolicy(string(req.DuplicatePolicy)); err != nil {
		return err
	}
	if req.DuplicatePolicy == models.PolicyRemoveSourceOnly && req.Operation != models.OperationMove {
		return fmt.Errorf("%w: remove_source_only only applies to move", models.ErrValidation)
	}
	if req.SourceListID == req.TargetListID {
		return fmt.Errorf("%w: source and target list are the same", models.ErrValidation)
	}
	return nil
}

// Transfer copies or moves one item (expanding collections and series into
// their leaves) from the source list to the target list, honoring the
// duplicate policy. Block-policy duplicates return a duplicate_found status
// with nothing mutated; the caller re-invokes with a resolved policy.
func (c *TransferController) Transfer(ctx context.Context, req *TransferRequest) (*TransferResult, error) {
	ctx, span := c.tracer.Start(ctx, "transfer", trace.WithAttributes(
		attribute.String("operation", string(req.Operation)),
		attribute.String("item_type", string(req.ItemType)),
		attribute.String("duplicate_policy", string(req.DuplicatePolicy)),
	))
	defer span.End()

	if err := c.validate(req); err != nil {
		return nil, err
	}

	if _, err := c.db.GetListByID(ctx, req.SourceListID); err != nil {
		return nil, err
	}
	if _, err := c.db.GetListByID(ctx, req.TargetListID); err != nil {
		return nil, err
	}

	leaves, err := c.expander.Expand(ctx, req.ItemID, req.ItemType)
	if err != nil {
		return nil, err
	}
	if len(leaves) == 0 {
		return nil, fmt.Errorf("%w: %s %d has no members", models.ErrItemNotFound, req.ItemType, req.ItemID)
	}

	singleton := req.ItemType != models.ItemTypeCollection && req.ItemType != models.ItemTypeSeries

	// Explicit user-facing duplicate check ahead of execution. Fails open on
	// storage errors; the in-transaction check below is authoritative.
	if singleton && req.DuplicatePolicy == models.PolicyBlock {
		leaf := leaves[0]
		if c.duplicates.ExistsInList(ctx, req.TargetListID, leaf.ItemID, leaf.ItemType) {
			return &TransferResult{
				Status:  models.TransferStatusDuplicateFound,
				Message: fmt.Sprintf("%s %d already exists in list %d", leaf.ItemType, leaf.ItemID, req.TargetListID),
			}, nil
		}
	}

	result := &TransferResult{Status: models.TransferStatusOK}

	err = c.db.WithTx(ctx, func(tx *models.Database) error {
		matched := 0
		for _, leaf := range leaves {
			src, err := tx.FindListItem(ctx, req.SourceListID, leaf.ItemID, leaf.ItemType)
			if err != nil {
				if errors.Is(err, models.ErrItemNotFound) {
					if singleton {
						return err
					}
					// Expanded member not present in the source list
					continue
				}
				return err
			}
			matched++

			if err := c.transferLeaf(ctx, tx, req, src, singleton, result); err != nil {
				return err
			}
		}

		if matched == 0 {
			return fmt.Errorf("%w: no entries of %s %d in list %d", models.ErrItemNotFound, req.ItemType, req.ItemID, req.SourceListID)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errDuplicateBlocked) {
			metrics.TransfersTotal.WithLabelValues(string(req.Operation), string(models.TransferStatusDuplicateFound)).Inc()
			return &TransferResult{
				Status:  models.TransferStatusDuplicateFound,
				Message: fmt.Sprintf("%s %d already exists in list %d", req.ItemType, req.ItemID, req.TargetListID),
			}, nil
		}
		metrics.TransfersTotal.WithLabelValues(string(req.Operation), "failed").Inc()
		return nil, err
	}

	span.SetAttributes(
		attribute.Int("copied", result.Copied),
		attribute.Int("moved", result.Moved),
		attribute.Int("skipped", result.Skipped),
	)
	metrics.TransfersTotal.WithLabelValues(string(req.Operation), string(result.Status)).Inc()
	metrics.ItemsTransferred.WithLabelValues("copied").Add(float64(result.Copied))
	metrics.ItemsTransferred.WithLabelValues("moved").Add(float64(result.Moved))
	metrics.ItemsTransferred.WithLabelValues("skipped").Add(float64(result.Skipped))

	c.logger.WithFields(logrus.Fields{
		"operation": req.Operation,
		"item_id":   req.ItemID,
		"item_type": req.ItemType,
		"source":    req.SourceListID,
		"target":    req.TargetListID,
		"copied":    result.Copied,
		"moved":     result.Moved,
		"skipped":   result.Skipped,
	}).Info("Transfer completed")

	return result, nil
}

// transferLeaf applies the operation and duplicate policy to one leaf entry
// inside the transaction. The membership re-check here closes the
// check-then-act window of the pre-transaction duplicate check.
func (c *TransferController) transferLeaf(ctx context.Context, tx *models.Database, req *TransferRequest, src *models.ListItem, singleton bool, result *TransferResult) error {
	_, err := tx.FindListItem(ctx, req.TargetListID, src.ItemID, src.ItemType)
	duplicate := err == nil
	if err != nil && !errors.Is(err, models.ErrItemNotFound) {
		return err
	}

	if duplicate {
		switch req.DuplicatePolicy {
		case models.PolicyBlock:
			if singleton {
				return errDuplicateBlocked
			}
			// No per-item prompting for expanded members; leave them in place
			result.Skipped++
			return nil
		case models.PolicySkip:
			result.Skipped++
			return nil
		case models.PolicyRemoveSourceOnly:
			if err := tx.SoftDeleteListItems(ctx, []uint64{src.ID}); err != nil {
				return err
			}
			result.Moved++
			return nil
		case models.PolicyProceed:
			// Insert anyway; two rows for the same content are accepted
		}
	}

	inserted := &models.ListItem{
		ListID:   req.TargetListID,
		ItemID:   src.ItemID,
		ItemType: src.ItemType,
		Watched:  src.Watched,
		Notes:    src.Notes,
	}
	if err := tx.CreateListItem(ctx, inserted); err != nil {
		return err
	}

	if req.Operation == models.OperationMove {
		if err := tx.SoftDeleteListItems(ctx, []uint64{src.ID}); err != nil {
			return err
		}
		result.Moved++
		return nil
	}
	result.Copied++
	return nil
}
