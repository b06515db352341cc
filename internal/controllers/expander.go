package controllers

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
	"github.com/viewvault/viewvault/internal/models"
)

// ExpanderController flattens composite items into the leaf entries a
// transfer operates on: a collection becomes its member movies, a series
// becomes its episodes. Pure read, no side effects.
type ExpanderController struct {
	db     *models.Database
	cache  *gocache.Cache
	logger *logrus.Logger
}

// NewExpanderController creates a new expander. Expansion results are
// cached with the given TTL; a zero TTL disables caching.
func NewExpanderController(db *models.Database, cacheTTL time.Duration, logger *logrus.Logger) *ExpanderController {
	var c *gocache.Cache
	if cacheTTL > 0 {
		c = gocache.New(cacheTTL, 2*cacheTTL)
	}
	return &ExpanderController{
		db:     db,
		cache:  c,
		logger: logger,
	}
}

// Expand returns the flat set of (item_id, item_type) leaves for a parent.
// A collection with zero members expands to an empty set, not an error.
// Storage errors propagate; nothing has been mutated at this stage.
func (c *ExpanderController) Expand(ctx context.Context, parentID uint64, parentType models.ItemType) ([]models.ItemRef, error) {
	switch parentType {
	case models.ItemTypeCollection, models.ItemTypeSeries:
	default:
		// Already atomic
		return []models.ItemRef{{ItemID: parentID, ItemType: parentType}}, nil
	}

	key := fmt.Sprintf("%s:%d", parentType, parentID)
	if c.cache != nil {
		if cached, ok := c.cache.Get(key); ok {
			return cached.([]models.ItemRef), nil
		}
	}

	var (
		ids      []uint64
		leafType models.ItemType
		err      error
	)
	if parentType == models.ItemTypeCollection {
		ids, err = c.db.MovieIDsByCollection(ctx, parentID)
		leafType = models.ItemTypeMovie
	} else {
		ids, err = c.db.EpisodeIDsBySeries(ctx, parentID)
		leafType = models.ItemTypeEpisode
	}
	if err != nil {
		return nil, fmt.Errorf("failed to expand %s %d: %w", parentType, parentID, err)
	}

	refs := make([]models.ItemRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, models.ItemRef{ItemID: id, ItemType: leafType})
	}

	c.logger.WithFields(logrus.Fields{
		"parent_id":   parentID,
		"parent_type": parentType,
		"leaves":      len(refs),
	}).Debug("Expanded composite item")

	if c.cache != nil {
		c.cache.Set(key, refs, gocache.DefaultExpiration)
	}
	return refs, nil
}

// Invalidate drops the cached expansion for a parent, for callers that just
// changed collection or series membership
func (c *ExpanderController) Invalidate(parentID uint64, parentType models.ItemType) {
	if c.cache != nil {
		c.cache.Delete(fmt.Sprintf("%s:%d", parentType, parentID))
	}
}
