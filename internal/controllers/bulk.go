package controllers

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/viewvault/viewvault/internal/metrics"
	"github.com/viewvault/viewvault/internal/models"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// BulkTransferRequest describes a transfer of many items at once. The
// duplicate policy must already be resolved by the caller; block is not
// accepted in bulk mode.
type BulkTransferRequest struct {
	Items           []models.ItemRef       `json:"items"`
	SourceListID    uint64                 `json:"source_list_id"`
	TargetListID    uint64                 `json:"target_list_id"`
	Operation       models.Operation       `json:"operation"`
	DuplicatePolicy models.DuplicatePolicy `json:"duplicate_policy"`
}

// ItemError records one item that failed to resolve and was excluded from
// the batch
type ItemError struct {
	ItemID   uint64          `json:"item_id"`
	ItemType models.ItemType `json:"item_type"`
	Error    string          `json:"error"`
}

// BulkResult is the aggregate outcome of a bulk transfer
type BulkResult struct {
	CopiedCount  int         `json:"copied_count"`
	MovedCount   int         `json:"moved_count"`
	SkippedCount int         `json:"skipped_count"`
	Errors       []ItemError `json:"errors"`
}

// BulkController orchestrates batched transfers: one source fetch, one
// target fetch, in-memory set computation, then one batched insert and one
// batched soft-delete. Items that fail to resolve are excluded and reported;
// the rest of the batch still commits.
type BulkController struct {
	db       *models.Database
	expander *ExpanderController
	logger   *logrus.Logger
	tracer   trace.Tracer
}

// NewBulkController creates a new bulk controller
func NewBulkController(db *models.Database, expander *ExpanderController, logger *logrus.Logger) *BulkController {
	return &BulkController{
		db:       db,
		expander: expander,
		logger:   logger,
		tracer:   otel.Tracer("viewvault/bulk"),
	}
}

// validate rejects malformed bulk requests before any storage access
func (c *BulkController) validate(req *BulkTransferRequest) error {
	if len(req.Items) == 0 {
		return fmt.Errorf("%w: items must not be empty", models.ErrValidation)
	}
	if _, err := models.ParseOperation(string(req.Operation)); err != nil {
		return err
	}
	if _, err := models.ParseDuplicatePolicy(string(req.DuplicatePolicy)); err != nil {
		return err
	}
	if req.DuplicatePolicy == models.PolicyBlock {
		return fmt.Errorf("%w: duplicate policy must be resolved before bulk mode, block is not accepted", models.ErrValidation)
	}
	if req.DuplicatePolicy == models.PolicyRemoveSourceOnly && req.Operation != models.OperationMove {
		return fmt.Errorf("%w: remove_source_only only applies to move", models.ErrValidation)
	}
	if req.SourceListID == req.TargetListID {
		return fmt.Errorf("%w: source and target list are the same", models.ErrValidation)
	}
	return nil
}

// BulkTransfer executes the batch. Per-item resolution failures (unknown
// type, dangling id, not in the source list) land in Errors; a storage
// failure while applying the batch rolls back the whole mutation.
func (c *BulkController) BulkTransfer(ctx context.Context, req *BulkTransferRequest) (*BulkResult, error) {
	ctx, span := c.tracer.Start(ctx, "bulk_transfer", trace.WithAttributes(
		attribute.String("operation", string(req.Operation)),
		attribute.String("duplicate_policy", string(req.DuplicatePolicy)),
		attribute.Int("items", len(req.Items)),
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

	result := &BulkResult{Errors: []ItemError{}}

	// Expand composites into leaves, deduplicated across inputs
	leaves := make([]models.ItemRef, 0, len(req.Items))
	seen := make(map[models.ItemRef]bool)
	for _, item := range req.Items {
		if _, err := models.ParseItemType(string(item.ItemType)); err != nil {
			result.Errors = append(result.Errors, ItemError{
				ItemID:   item.ItemID,
				ItemType: item.ItemType,
				Error:    "unknown item type",
			})
			continue
		}
		expanded, err := c.expander.Expand(ctx, item.ItemID, item.ItemType)
		if err != nil {
			// Transient storage error before any mutation; abort the call
			return nil, err
		}
		for _, leaf := range expanded {
			if !seen[leaf] {
				seen[leaf] = true
				leaves = append(leaves, leaf)
			}
		}
	}

	// Drop leaves with no content row (dangling ids), one query per type
	resolved, err := c.resolveContent(ctx, leaves, result)
	if err != nil {
		return nil, err
	}

	// One fetch of all candidate source rows
	sourceByRef, err := c.fetchMembers(ctx, req.SourceListID, resolved)
	if err != nil {
		return nil, err
	}

	// One fetch of all existing target rows
	targetByRef, err := c.fetchMembers(ctx, req.TargetListID, resolved)
	if err != nil {
		return nil, err
	}

	// In-memory set difference: decide inserts and soft-deletes
	var inserts []*models.ListItem
	var deletes []uint64
	for _, ref := range resolved {
		src, ok := sourceByRef[ref]
		if !ok {
			result.Errors = append(result.Errors, ItemError{
				ItemID:   ref.ItemID,
				ItemType: ref.ItemType,
				Error:    "not in source list",
			})
			continue
		}

		if _, duplicate := targetByRef[ref]; duplicate {
			switch req.DuplicatePolicy {
			case models.PolicySkip:
				result.SkippedCount++
				continue
			case models.PolicyRemoveSourceOnly:
				deletes = append(deletes, src.ID)
				result.MovedCount++
				continue
			}
			// proceed falls through to insert
		}

		inserts = append(inserts, &models.ListItem{
			ListID:   req.TargetListID,
			ItemID:   ref.ItemID,
			ItemType: ref.ItemType,
			Watched:  src.Watched,
			Notes:    src.Notes,
		})
		if req.Operation == models.OperationMove {
			deletes = append(deletes, src.ID)
			result.MovedCount++
		} else {
			result.CopiedCount++
		}
	}

	// Apply the batch: one batched insert, one batched soft-delete
	err = c.db.WithTx(ctx, func(tx *models.Database) error {
		if err := tx.CreateListItems(ctx, inserts); err != nil {
			return err
		}
		return tx.SoftDeleteListItems(ctx, deletes)
	})
	if err != nil {
		metrics.BulkTransfersTotal.WithLabelValues(string(req.Operation), "failed").Inc()
		return nil, fmt.Errorf("bulk transfer failed: %w", err)
	}

	span.SetAttributes(
		attribute.Int("copied", result.CopiedCount),
		attribute.Int("moved", result.MovedCount),
		attribute.Int("skipped", result.SkippedCount),
		attribute.Int("errors", len(result.Errors)),
	)
	metrics.BulkTransfersTotal.WithLabelValues(string(req.Operation), "ok").Inc()
	metrics.ItemsTransferred.WithLabelValues("copied").Add(float64(result.CopiedCount))
	metrics.ItemsTransferred.WithLabelValues("moved").Add(float64(result.MovedCount))
	metrics.ItemsTransferred.WithLabelValues("skipped").Add(float64(result.SkippedCount))

	c.logger.WithFields(logrus.Fields{
		"operation": req.Operation,
		"source":    req.SourceListID,
		"target":    req.TargetListID,
		"copied":    result.CopiedCount,
		"moved":     result.MovedCount,
		"skipped":   result.SkippedCount,
		"errors":    len(result.Errors),
	}).Info("Bulk transfer completed")

	return result, nil
}

// resolveContent keeps the leaves that have a content row, recording the
// dangling ones as item errors. One existence query per item type.
func (c *BulkController) resolveContent(ctx context.Context, leaves []models.ItemRef, result *BulkResult) ([]models.ItemRef, error) {
	byType := make(map[models.ItemType][]uint64)
	for _, leaf := range leaves {
		byType[leaf.ItemType] = append(byType[leaf.ItemType], leaf.ItemID)
	}

	existing := make(map[models.ItemRef]bool)
	for itemType, ids := range byType {
		found, err := c.db.ExistingContentIDs(ctx, itemType, ids)
		if err != nil {
			return nil, err
		}
		for _, id := range found {
			existing[models.ItemRef{ItemID: id, ItemType: itemType}] = true
		}
	}

	resolved := make([]models.ItemRef, 0, len(leaves))
	for _, leaf := range leaves {
		if existing[leaf] {
			resolved = append(resolved, leaf)
			continue
		}
		result.Errors = append(result.Errors, ItemError{
			ItemID:   leaf.ItemID,
			ItemType: leaf.ItemType,
			Error:    fmt.Sprintf("unknown %s", leaf.ItemType),
		})
	}
	return resolved, nil
}

// fetchMembers loads the non-deleted entries of one list matching any of
// the given refs in a single query, keyed by item identity
func (c *BulkController) fetchMembers(ctx context.Context, listID uint64, refs []models.ItemRef) (map[models.ItemRef]*models.ListItem, error) {
	ids := make([]uint64, 0, len(refs))
	want := make(map[models.ItemRef]bool, len(refs))
	for _, ref := range refs {
		ids = append(ids, ref.ItemID)
		want[ref] = true
	}

	rows, err := c.db.GetListItemsByItemIDs(ctx, listID, ids)
	if err != nil {
		return nil, err
	}

	members := make(map[models.ItemRef]*models.ListItem)
	for _, row := range rows {
		ref := row.Ref()
		// The id query can match rows of another type; keep requested pairs only
		if want[ref] {
			if _, ok := members[ref]; !ok {
				members[ref] = row
			}
		}
	}
	return members, nil
}
