package controllers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viewvault/viewvault/internal/models"
)

func TestSearchSubstringRanksFirst(t *testing.T) {
	db := newTestDB(t)
	ctrl := NewSearchController(db, testLogger())

	seedMovie(t, db, "Inception")
	seedMovie(t, db, "Incursion")

	results, err := ctrl.Search(context.Background(), "inception", 10)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, "Inception", results[0].Title)
	assert.Zero(t, results[0].Distance)
}

func TestSearchFuzzyMatch(t *testing.T) {
	db := newTestDB(t)
	ctrl := NewSearchController(db, testLogger())

	seedMovie(t, db, "Inception")
	seedMovie(t, db, "Completely Different")

	// One transposition away still matches
	results, err := ctrl.Search(context.Background(), "incpetion", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Inception", results[0].Title)
	assert.Positive(t, results[0].Distance)
}

func TestSearchNormalizesDiacritics(t *testing.T) {
	db := newTestDB(t)
	ctrl := NewSearchController(db, testLogger())

	seedMovie(t, db, "Amélie")

	results, err := ctrl.Search(context.Background(), "amelie", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Amélie", results[0].Title)
	assert.Zero(t, results[0].Distance)
}

func TestSearchEmptyQuery(t *testing.T) {
	db := newTestDB(t)
	ctrl := NewSearchController(db, testLogger())

	_, err := ctrl.Search(context.Background(), "   ", 10)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestSearchMixesMoviesAndSeries(t *testing.T) {
	db := newTestDB(t)
	ctrl := NewSearchController(db, testLogger())

	movie := seedMovie(t, db, "Lost in Translation")
	series, _ := seedSeries(t, db, "Lost", 1)

	results, err := ctrl.Search(context.Background(), "lost", 10)
	require.NoError(t, err)
	require.Len(t, results, 2)

	types := map[models.ItemType]uint64{}
	for _, r := range results {
		types[r.ItemType] = r.ItemID
	}
	assert.Equal(t, movie.ID, types[models.ItemTypeMovie])
	assert.Equal(t, series.ID, types[models.ItemTypeSeries])
}

func TestSearchLimit(t *testing.T) {
	db := newTestDB(t)
	ctrl := NewSearchController(db, testLogger())

	seedMovie(t, db, "Alien")
	seedMovie(t, db, "Aliens")
	seedMovie(t, db, "Alien 3")

	results, err := ctrl.Search(context.Background(), "alien", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}
