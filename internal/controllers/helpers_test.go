package controllers

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/viewvault/viewvault/internal/models"
)

func newTestDB(t *testing.T) *models.Database {
	t.Helper()
	db, err := models.NewDatabase(filepath.Join(t.TempDir(), "viewvault.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func seedList(t *testing.T, db *models.Database, userID uint64, name string) *models.List {
	t.Helper()
	list := &models.List{UserID: userID, Name: name, Type: models.ListTypeCustom}
	require.NoError(t, db.CreateList(context.Background(), list))
	return list
}

func seedMovie(t *testing.T, db *models.Database, title string) *models.Movie {
	t.Helper()
	movie := &models.Movie{Title: title}
	require.NoError(t, db.CreateMovie(context.Background(), movie))
	return movie
}

func seedCollection(t *testing.T, db *models.Database, collectionID uint64, titles ...string) []uint64 {
	t.Helper()
	ids := make([]uint64, 0, len(titles))
	for _, title := range titles {
		cid := collectionID
		movie := &models.Movie{Title: title, CollectionID: &cid}
		require.NoError(t, db.CreateMovie(context.Background(), movie))
		ids = append(ids, movie.ID)
	}
	return ids
}

func seedSeries(t *testing.T, db *models.Database, title string, episodes int) (*models.Series, []uint64) {
	t.Helper()
	series := &models.Series{Title: title}
	require.NoError(t, db.CreateSeries(context.Background(), series))
	ids := make([]uint64, 0, episodes)
	for i := 1; i <= episodes; i++ {
		episode := &models.Episode{SeriesID: series.ID, SeasonNumber: 1, EpisodeNumber: i}
		require.NoError(t, db.CreateEpisode(context.Background(), episode))
		ids = append(ids, episode.ID)
	}
	return series, ids
}

func addToList(t *testing.T, db *models.Database, listID, itemID uint64, itemType models.ItemType) *models.ListItem {
	t.Helper()
	item := &models.ListItem{ListID: listID, ItemID: itemID, ItemType: itemType}
	require.NoError(t, db.CreateListItem(context.Background(), item))
	return item
}

// listRefs returns the non-deleted item identities of a list
func listRefs(t *testing.T, db *models.Database, listID uint64) []models.ItemRef {
	t.Helper()
	items, _, err := db.GetListItems(context.Background(), listID, 1, 100)
	require.NoError(t, err)
	refs := make([]models.ItemRef, 0, len(items))
	for _, item := range items {
		refs = append(refs, item.Ref())
	}
	return refs
}

func newTransferController(db *models.Database) *TransferController {
	logger := testLogger()
	duplicates := NewDuplicateController(db, logger)
	expander := NewExpanderController(db, 0, logger)
	return NewTransferController(db, duplicates, expander, logger)
}

func newBulkController(db *models.Database) *BulkController {
	logger := testLogger()
	expander := NewExpanderController(db, 0, logger)
	return NewBulkController(db, expander, logger)
}
