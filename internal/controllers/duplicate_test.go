package controllers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viewvault/viewvault/internal/models"
)

func TestExistsInList(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	detector := NewDuplicateController(db, testLogger())

	list := seedList(t, db, 1, "A")
	movie := seedMovie(t, db, "Inception")
	item := addToList(t, db, list.ID, movie.ID, models.ItemTypeMovie)

	assert.True(t, detector.ExistsInList(ctx, list.ID, movie.ID, models.ItemTypeMovie))
	assert.False(t, detector.ExistsInList(ctx, list.ID, movie.ID, models.ItemTypeSeries))
	assert.False(t, detector.ExistsInList(ctx, list.ID, 999, models.ItemTypeMovie))

	// Soft-deleted rows are not duplicates
	require.NoError(t, db.SoftDeleteListItems(ctx, []uint64{item.ID}))
	assert.False(t, detector.ExistsInList(ctx, list.ID, movie.ID, models.ItemTypeMovie))
}

func TestExistsInListFailsOpen(t *testing.T) {
	db := newTestDB(t)
	detector := NewDuplicateController(db, testLogger())

	list := seedList(t, db, 1, "A")
	movie := seedMovie(t, db, "Inception")
	addToList(t, db, list.ID, movie.ID, models.ItemTypeMovie)

	// A broken storage backend must not block the primary operation
	require.NoError(t, db.Close())
	assert.False(t, detector.ExistsInList(context.Background(), list.ID, movie.ID, models.ItemTypeMovie))
}
