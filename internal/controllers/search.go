package controllers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/sirupsen/logrus"
	"github.com/viewvault/viewvault/internal/models"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// SearchResult is one ranked title match
type SearchResult struct {
	ItemID   uint64          `json:"item_id"`
	ItemType models.ItemType `json:"item_type"`
	Title    string          `json:"title"`
	Distance int             `json:"distance"`
}

// SearchController performs fuzzy title search over movies and series
type SearchController struct {
	db     *models.Database
	logger *logrus.Logger
}

// NewSearchController creates a new search controller
func NewSearchController(db *models.Database, logger *logrus.Logger) *SearchController {
	return &SearchController{
		db:     db,
		logger: logger,
	}
}

// normalizeTitle lowercases and strips diacritics so "Amélie" matches "amelie"
func normalizeTitle(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// Search returns up to limit movies and series ranked by edit distance to
// the query. Substring matches rank first, then closest titles; matches
// further than half the query length away are dropped.
func (c *SearchController) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	q := normalizeTitle(query)
	if q == "" {
		return nil, fmt.Errorf("%w: empty search query", models.ErrValidation)
	}
	if limit <= 0 {
		limit = 20
	}

	movies, err := c.db.MovieTitles(ctx)
	if err != nil {
		return nil, err
	}
	series, err := c.db.SeriesTitles(ctx)
	if err != nil {
		return nil, err
	}

	maxDistance := len(q)/2 + 1

	var results []SearchResult
	score := func(records []models.TitleRecord, itemType models.ItemType) {
		for _, rec := range records {
			title := normalizeTitle(rec.Title)
			var distance int
			if strings.Contains(title, q) {
				distance = 0
			} else {
				distance = levenshtein.ComputeDistance(q, title)
				if distance > maxDistance {
					continue
				}
			}
			results = append(results, SearchResult{
				ItemID:   rec.ID,
				ItemType: itemType,
				Title:    rec.Title,
				Distance: distance,
			})
		}
	}
	score(movies, models.ItemTypeMovie)
	score(series, models.ItemTypeSeries)

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Distance != results[j].Distance {
			return results[i].Distance < results[j].Distance
		}
		return results[i].Title < results[j].Title
	})

	if len(results) > limit {
		results = results[:limit]
	}

	c.logger.WithFields(logrus.Fields{
		"query":   query,
		"matches": len(results),
	}).Debug("Search completed")

	return results, nil
}
