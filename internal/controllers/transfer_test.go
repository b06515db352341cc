package controllers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viewvault/viewvault/internal/models"
)

func TestCopyThenDuplicateBlocked(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ctrl := newTransferController(db)

	listA := seedList(t, db, 1, "A")
	listB := seedList(t, db, 1, "B")
	movie := seedMovie(t, db, "Inception")
	addToList(t, db, listA.ID, movie.ID, models.ItemTypeMovie)

	req := &TransferRequest{
		ItemID:          movie.ID,
		ItemType:        models.ItemTypeMovie,
		SourceListID:    listA.ID,
		TargetListID:    listB.ID,
		Operation:       models.OperationCopy,
		DuplicatePolicy: models.PolicyBlock,
	}

	result, err := ctrl.Transfer(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusOK, result.Status)
	assert.Equal(t, 1, result.Copied)
	assert.Equal(t, []models.ItemRef{{ItemID: movie.ID, ItemType: models.ItemTypeMovie}}, listRefs(t, db, listB.ID))

	// Second copy is blocked, target unchanged
	result, err = ctrl.Transfer(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, models.TransferStatusDuplicateFound, result.Status)
	assert.Zero(t, result.Copied)
	assert.Len(t, listRefs(t, db, listB.ID), 1)
}

func TestCopyIsNonDestructive(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ctrl := newTransferController(db)

	listA := seedList(t, db, 1, "A")
	listB := seedList(t, db, 1, "B")
	movie := seedMovie(t, db, "Inception")
	other := seedMovie(t, db, "Memento")
	addToList(t, db, listA.ID, movie.ID, models.ItemTypeMovie)
	addToList(t, db, listA.ID, other.ID, models.ItemTypeMovie)

	before := listRefs(t, db, listA.ID)

	_, err := ctrl.Transfer(ctx, &TransferRequest{
		ItemID:          movie.ID,
		ItemType:        models.ItemTypeMovie,
		SourceListID:    listA.ID,
		TargetListID:    listB.ID,
		Operation:       models.OperationCopy,
		DuplicatePolicy: models.PolicyBlock,
	})
	require.NoError(t, err)

	assert.Equal(t, before, listRefs(t, db, listA.ID))
}

func TestMoveSeries(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ctrl := newTransferController(db)

	listA := seedList(t, db, 1, "A")
	listB := seedList(t, db, 1, "B")
	series, episodeIDs := seedSeries(t, db, "Lost", 5)
	for _, id := range episodeIDs {
		addToList(t, db, listA.ID, id, models.ItemTypeEpisode)
	}

	result, err := ctrl.Transfer(ctx, &TransferRequest{
		ItemID:          series.ID,
		ItemType:        models.ItemTypeSeries,
		SourceListID:    listA.ID,
		TargetListID:    listB.ID,
		Operation:       models.OperationMove,
		DuplicatePolicy: models.PolicySkip,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, result.Moved)
	assert.Zero(t, result.Copied)

	// Target holds the five episodes, source rows are soft-deleted
	assert.Len(t, listRefs(t, db, listB.ID), 5)
	assert.Empty(t, listRefs(t, db, listA.ID))
}

func TestMovePreservesMultiset(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ctrl := newTransferController(db)

	listA := seedList(t, db, 1, "A")
	listB := seedList(t, db, 1, "B")
	movie := seedMovie(t, db, "Inception")
	addToList(t, db, listA.ID, movie.ID, models.ItemTypeMovie)
	addToList(t, db, listB.ID, seedMovie(t, db, "Memento").ID, models.ItemTypeMovie)

	sizeBefore := len(listRefs(t, db, listA.ID)) + len(listRefs(t, db, listB.ID))

	_, err := ctrl.Transfer(ctx, &TransferRequest{
		ItemID:          movie.ID,
		ItemType:        models.ItemTypeMovie,
		SourceListID:    listA.ID,
		TargetListID:    listB.ID,
		Operation:       models.OperationMove,
		DuplicatePolicy: models.PolicyBlock,
	})
	require.NoError(t, err)

	sizeAfter := len(listRefs(t, db, listA.ID)) + len(listRefs(t, db, listB.ID))
	assert.Equal(t, sizeBefore, sizeAfter)
}

func TestMoveSkipLeavesSourceIntact(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ctrl := newTransferController(db)

	listA := seedList(t, db, 1, "A")
	listB := seedList(t, db, 1, "B")
	movie := seedMovie(t, db, "Inception")
	addToList(t, db, listA.ID, movie.ID, models.ItemTypeMovie)
	addToList(t, db, listB.ID, movie.ID, models.ItemTypeMovie)

	result, err := ctrl.Transfer(ctx, &TransferRequest{
		ItemID:          movie.ID,
		ItemType:        models.ItemTypeMovie,
		SourceListID:    listA.ID,
		TargetListID:    listB.ID,
		Operation:       models.OperationMove,
		DuplicatePolicy: models.PolicySkip,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Zero(t, result.Moved)

	// Skipped item remains in the source list
	assert.Len(t, listRefs(t, db, listA.ID), 1)
	assert.Len(t, listRefs(t, db, listB.ID), 1)
}

func TestCopyProceedAllowsDuplicateRows(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ctrl := newTransferController(db)

	listA := seedList(t, db, 1, "A")
	listB := seedList(t, db, 1, "B")
	movie := seedMovie(t, db, "Inception")
	addToList(t, db, listA.ID, movie.ID, models.ItemTypeMovie)
	addToList(t, db, listB.ID, movie.ID, models.ItemTypeMovie)

	result, err := ctrl.Transfer(ctx, &TransferRequest{
		ItemID:          movie.ID,
		ItemType:        models.ItemTypeMovie,
		SourceListID:    listA.ID,
		TargetListID:    listB.ID,
		Operation:       models.OperationCopy,
		DuplicatePolicy: models.PolicyProceed,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Copied)

	// Two rows for the same content are accepted under proceed
	assert.Len(t, listRefs(t, db, listB.ID), 2)
}

func TestMoveRemoveSourceOnly(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ctrl := newTransferController(db)

	listA := seedList(t, db, 1, "A")
	listB := seedList(t, db, 1, "B")
	movie := seedMovie(t, db, "Inception")
	addToList(t, db, listA.ID, movie.ID, models.ItemTypeMovie)
	addToList(t, db, listB.ID, movie.ID, models.ItemTypeMovie)

	result, err := ctrl.Transfer(ctx, &TransferRequest{
		ItemID:          movie.ID,
		ItemType:        models.ItemTypeMovie,
		SourceListID:    listA.ID,
		TargetListID:    listB.ID,
		Operation:       models.OperationMove,
		DuplicatePolicy: models.PolicyRemoveSourceOnly,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Moved)

	// Nothing inserted in target, source row gone
	assert.Empty(t, listRefs(t, db, listA.ID))
	assert.Len(t, listRefs(t, db, listB.ID), 1)
}

func TestTransferValidation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ctrl := newTransferController(db)

	listA := seedList(t, db, 1, "A")
	listB := seedList(t, db, 1, "B")

	cases := []struct {
		name string
		req  TransferRequest
	}{
		{"unknown item type", TransferRequest{ItemID: 1, ItemType: "album", SourceListID: listA.ID, TargetListID: listB.ID, Operation: models.OperationCopy, DuplicatePolicy: models.PolicySkip}},
		{"unknown operation", TransferRequest{ItemID: 1, ItemType: models.ItemTypeMovie, SourceListID: listA.ID, TargetListID: listB.ID, Operation: "merge", DuplicatePolicy: models.PolicySkip}},
		{"unknown policy", TransferRequest{ItemID: 1, ItemType: models.ItemTypeMovie, SourceListID: listA.ID, TargetListID: listB.ID, Operation: models.OperationCopy, DuplicatePolicy: "ask"}},
		{"remove_source_only with copy", TransferRequest{ItemID: 1, ItemType: models.ItemTypeMovie, SourceListID: listA.ID, TargetListID: listB.ID, Operation: models.OperationCopy, DuplicatePolicy: models.PolicyRemoveSourceOnly}},
		{"same source and target", TransferRequest{ItemID: 1, ItemType: models.ItemTypeMovie, SourceListID: listA.ID, TargetListID: listA.ID, Operation: models.OperationCopy, DuplicatePolicy: models.PolicySkip}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ctrl.Transfer(ctx, &tc.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, models.ErrValidation)
		})
	}
}

func TestTransferNotFound(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ctrl := newTransferController(db)

	listA := seedList(t, db, 1, "A")
	listB := seedList(t, db, 1, "B")
	movie := seedMovie(t, db, "Inception")

	// Missing target list
	_, err := ctrl.Transfer(ctx, &TransferRequest{
		ItemID: movie.ID, ItemType: models.ItemTypeMovie,
		SourceListID: listA.ID, TargetListID: 999,
		Operation: models.OperationCopy, DuplicatePolicy: models.PolicySkip,
	})
	assert.ErrorIs(t, err, models.ErrListNotFound)

	// Item not present in the source list
	_, err = ctrl.Transfer(ctx, &TransferRequest{
		ItemID: movie.ID, ItemType: models.ItemTypeMovie,
		SourceListID: listA.ID, TargetListID: listB.ID,
		Operation: models.OperationCopy, DuplicatePolicy: models.PolicySkip,
	})
	assert.ErrorIs(t, err, models.ErrItemNotFound)
}

func TestNoDuplicatesAfterMixedTransfers(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	ctrl := newTransferController(db)

	listA := seedList(t, db, 1, "A")
	listB := seedList(t, db, 1, "B")
	movies := []*models.Movie{
		seedMovie(t, db, "One"),
		seedMovie(t, db, "Two"),
		seedMovie(t, db, "Three"),
	}
	for _, m := range movies {
		addToList(t, db, listA.ID, m.ID, models.ItemTypeMovie)
	}

	// Copy everything twice with skip; no list may end up with duplicates
	for round := 0; round < 2; round++ {
		for _, m := range movies {
			_, err := ctrl.Transfer(ctx, &TransferRequest{
				ItemID: m.ID, ItemType: models.ItemTypeMovie,
				SourceListID: listA.ID, TargetListID: listB.ID,
				Operation: models.OperationCopy, DuplicatePolicy: models.PolicySkip,
			})
			require.NoError(t, err)
		}
	}

	for _, listID := range []uint64{listA.ID, listB.ID} {
		seen := make(map[models.ItemRef]bool)
		for _, ref := range listRefs(t, db, listID) {
			assert.False(t, seen[ref], "duplicate %v in list %d", ref, listID)
			seen[ref] = true
		}
	}
}
