package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database wraps the gorm connection and owns every query in the system.
// All membership queries filter deleted = false explicitly so the
// soft-delete invariant stays auditable in one place.
type Database struct {
	conn *gorm.DB
}

// NewDatabase opens the sqlite database and migrates the schema
func NewDatabase(path string) (*Database, error) {
	conn, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := conn.AutoMigrate(&List{}, &ListItem{}, &Movie{}, &Series{}, &Episode{}, &Notification{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return &Database{conn: conn}, nil
}

// Close closes the underlying connection
func (db *Database) Close() error {
	sqlDB, err := db.conn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// WithTx runs fn inside a single storage transaction. Every query issued
// through the Database passed to fn joins that transaction.
func (db *Database) WithTx(ctx context.Context, fn func(tx *Database) error) error {
	return db.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Database{conn: tx})
	})
}

// List operations

// CreateList creates a new list
func (db *Database) CreateList(ctx context.Context, list *List) error {
	list.CreatedAt = time.Now()
	list.UpdatedAt = time.Now()
	return db.conn.WithContext(ctx).Create(list).Error
}

// GetListByID retrieves a list by id
func (db *Database) GetListByID(ctx context.Context, id uint64) (*List, error) {
	var list List
	err := db.conn.WithContext(ctx).First(&list, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: list %d", ErrListNotFound, id)
		}
		return nil, err
	}
	return &list, nil
}

// GetListsByUser retrieves all lists owned by a user
func (db *Database) GetListsByUser(ctx context.Context, userID uint64) ([]*List, error) {
	var lists []*List
	err := db.conn.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&lists).Error
	return lists, err
}

// UpdateList updates an existing list
func (db *Database) UpdateList(ctx context.Context, list *List) error {
	list.UpdatedAt = time.Now()
	return db.conn.WithContext(ctx).Save(list).Error
}

// DeleteList deletes a list and its items. The user's default personal
// list is never deleted.
func (db *Database) DeleteList(ctx context.Context, id uint64) error {
	list, err := db.GetListByID(ctx, id)
	if err != nil {
		return err
	}
	if list.IsDefault {
		return ErrDefaultList
	}
	return db.conn.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("list_id = ?", id).Delete(&ListItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&List{}, id).Error
	})
}

// EnsureDefaultList returns the user's default personal list, creating it
// on first use
func (db *Database) EnsureDefaultList(ctx context.Context, userID uint64) (*List, error) {
	var list List
	err := db.conn.WithContext(ctx).
		Where("user_id = ? AND is_default = ?", userID, true).
		First(&list).Error
	if err == nil {
		return &list, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	list = List{
		UserID:    userID,
		Name:      "Watchlist",
		Type:      ListTypePersonal,
		IsDefault: true,
	}
	if err := db.CreateList(ctx, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ListItem operations

// FindListItem retrieves the non-deleted entry matching (item_id, item_type)
// in a list. Served by the composite index (list_id, item_id, item_type,
// deleted).
func (db *Database) FindListItem(ctx context.Context, listID, itemID uint64, itemType ItemType) (*ListItem, error) {
	var item ListItem
	err := db.conn.WithContext(ctx).
		Where("list_id = ? AND item_id = ? AND item_type = ? AND deleted = ?", listID, itemID, itemType, false).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: item %d (%s) in list %d", ErrItemNotFound, itemID, itemType, listID)
		}
		return nil, err
	}
	return &item, nil
}

// GetListItemByID retrieves a non-deleted list item row by its row id,
// scoped to a list
func (db *Database) GetListItemByID(ctx context.Context, listID, id uint64) (*ListItem, error) {
	var item ListItem
	err := db.conn.WithContext(ctx).
		Where("id = ? AND list_id = ? AND deleted = ?", id, listID, false).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: list item %d", ErrItemNotFound, id)
		}
		return nil, err
	}
	return &item, nil
}

// GetListItems retrieves one page of non-deleted items in a list plus the
// total count
func (db *Database) GetListItems(ctx context.Context, listID uint64, page, pageSize int) ([]*ListItem, int64, error) {
	var total int64
	base := db.conn.WithContext(ctx).Model(&ListItem{}).
		Where("list_id = ? AND deleted = ?", listID, false)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var items []*ListItem
	err := db.conn.WithContext(ctx).
		Where("list_id = ? AND deleted = ?", listID, false).
		Order("id").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&items).Error
	return items, total, err
}

// GetListItemsByItemIDs retrieves all non-deleted items of a list whose
// item id is in the given set, in one query. Callers filter by (id, type)
// pair in memory.
func (db *Database) GetListItemsByItemIDs(ctx context.Context, listID uint64, itemIDs []uint64) ([]*ListItem, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	var items []*ListItem
	err := db.conn.WithContext(ctx).
		Where("list_id = ? AND item_id IN ? AND deleted = ?", listID, itemIDs, false).
		Find(&items).Error
	return items, err
}

// CreateListItem inserts one list entry
func (db *Database) CreateListItem(ctx context.Context, item *ListItem) error {
	item.CreatedAt = time.Now()
	item.UpdatedAt = time.Now()
	return db.conn.WithContext(ctx).Create(item).Error
}

// CreateListItems inserts list entries as a single batched insert
func (db *Database) CreateListItems(ctx context.Context, items []*ListItem) error {
	if len(items) == 0 {
		return nil
	}
	now := time.Now()
	for _, item := range items {
		item.CreatedAt = now
		item.UpdatedAt = now
	}
	return db.conn.WithContext(ctx).CreateInBatches(items, 200).Error
}

// UpdateListItem updates an existing list entry
func (db *Database) UpdateListItem(ctx context.Context, item *ListItem) error {
	item.UpdatedAt = time.Now()
	return db.conn.WithContext(ctx).Save(item).Error
}

// SoftDeleteListItems marks the given rows deleted as one batched update
func (db *Database) SoftDeleteListItems(ctx context.Context, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return db.conn.WithContext(ctx).Model(&ListItem{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{"deleted": true, "updated_at": time.Now()}).Error
}

// Content operations

// CreateMovie inserts a movie content record
func (db *Database) CreateMovie(ctx context.Context, movie *Movie) error {
	movie.CreatedAt = time.Now()
	movie.UpdatedAt = time.Now()
	return db.conn.WithContext(ctx).Create(movie).Error
}

// CreateSeries inserts a series content record
func (db *Database) CreateSeries(ctx context.Context, series *Series) error {
	series.CreatedAt = time.Now()
	series.UpdatedAt = time.Now()
	return db.conn.WithContext(ctx).Create(series).Error
}

// CreateEpisode inserts an episode content record
func (db *Database) CreateEpisode(ctx context.Context, episode *Episode) error {
	episode.CreatedAt = time.Now()
	episode.UpdatedAt = time.Now()
	return db.conn.WithContext(ctx).Create(episode).Error
}

// GetMovieByID retrieves a movie by id
func (db *Database) GetMovieByID(ctx context.Context, id uint64) (*Movie, error) {
	var movie Movie
	err := db.conn.WithContext(ctx).First(&movie, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: movie %d", ErrItemNotFound, id)
		}
		return nil, err
	}
	return &movie, nil
}

// MovieIDsByCollection returns the ids of all movies whose collection
// reference equals collectionID. Id-only projection, no content rows are
// materialized.
func (db *Database) MovieIDsByCollection(ctx context.Context, collectionID uint64) ([]uint64, error) {
	var ids []uint64
	err := db.conn.WithContext(ctx).Model(&Movie{}).
		Where("collection_id = ?", collectionID).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

// EpisodeIDsBySeries returns the ids of all episodes of a series
func (db *Database) EpisodeIDsBySeries(ctx context.Context, seriesID uint64) ([]uint64, error) {
	var ids []uint64
	err := db.conn.WithContext(ctx).Model(&Episode{}).
		Where("series_id = ?", seriesID).
		Order("season_number, episode_number").
		Pluck("id", &ids).Error
	return ids, err
}

// ExistingContentIDs returns which of the given ids have a content row of
// the given type, in one query per call
func (db *Database) ExistingContentIDs(ctx context.Context, itemType ItemType, ids []uint64) ([]uint64, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []uint64
	q := db.conn.WithContext(ctx)
	switch itemType {
	case ItemTypeMovie:
		q = q.Model(&Movie{})
	case ItemTypeSeries:
		q = q.Model(&Series{})
	case ItemTypeEpisode:
		q = q.Model(&Episode{})
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidItemType, itemType)
	}
	err := q.Where("id IN ?", ids).Pluck("id", &found).Error
	return found, err
}

// ContentExists reports whether a content row of the given identity exists
func (db *Database) ContentExists(ctx context.Context, itemID uint64, itemType ItemType) (bool, error) {
	found, err := db.ExistingContentIDs(ctx, itemType, []uint64{itemID})
	if err != nil {
		return false, err
	}
	return len(found) == 1, nil
}

// MovieTitles returns an id+title projection of all movies
func (db *Database) MovieTitles(ctx context.Context) ([]TitleRecord, error) {
	var rows []TitleRecord
	err := db.conn.WithContext(ctx).Model(&Movie{}).
		Select("id, title").
		Scan(&rows).Error
	return rows, err
}

// SeriesTitles returns an id+title projection of all series
func (db *Database) SeriesTitles(ctx context.Context) ([]TitleRecord, error) {
	var rows []TitleRecord
	err := db.conn.WithContext(ctx).Model(&Series{}).
		Select("id, title").
		Scan(&rows).Error
	return rows, err
}

// Release queries

// MoviesReleasedBetween returns movies whose release date falls in (from, to]
func (db *Database) MoviesReleasedBetween(ctx context.Context, from, to time.Time) ([]*Movie, error) {
	var movies []*Movie
	err := db.conn.WithContext(ctx).
		Where("release_date > ? AND release_date <= ?", from, to).
		Find(&movies).Error
	return movies, err
}

// EpisodesAiredBetween returns episodes whose air date falls in (from, to]
func (db *Database) EpisodesAiredBetween(ctx context.Context, from, to time.Time) ([]*Episode, error) {
	var episodes []*Episode
	err := db.conn.WithContext(ctx).
		Where("air_date > ? AND air_date <= ?", from, to).
		Find(&episodes).Error
	return episodes, err
}

// WatcherRef identifies a list (and its owner) holding a given item
type WatcherRef struct {
	ListID   uint64
	UserID   uint64
	ItemID   uint64
	ItemType ItemType
}

// FindWatchers returns the lists (with owners) that hold any of the given
// items of one type among their non-deleted entries
func (db *Database) FindWatchers(ctx context.Context, itemType ItemType, itemIDs []uint64) ([]WatcherRef, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	var refs []WatcherRef
	err := db.conn.WithContext(ctx).
		Table("list_items").
		Select("list_items.list_id AS list_id, lists.user_id AS user_id, list_items.item_id AS item_id, list_items.item_type AS item_type").
		Joins("JOIN lists ON lists.id = list_items.list_id").
		Where("list_items.item_type = ? AND list_items.item_id IN ? AND list_items.deleted = ?", itemType, itemIDs, false).
		Scan(&refs).Error
	return refs, err
}

// Notification operations

// CreateNotification inserts a notification
func (db *Database) CreateNotification(ctx context.Context, n *Notification) error {
	n.CreatedAt = time.Now()
	return db.conn.WithContext(ctx).Create(n).Error
}

// HasNotification reports whether the user was already notified about an item
func (db *Database) HasNotification(ctx context.Context, userID, itemID uint64, itemType ItemType) (bool, error) {
	var count int64
	err := db.conn.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ? AND item_id = ? AND item_type = ?", userID, itemID, itemType).
		Count(&count).Error
	return count > 0, err
}

// GetNotificationsByUser retrieves a user's notifications, newest first
func (db *Database) GetNotificationsByUser(ctx context.Context, userID uint64) ([]*Notification, error) {
	var notifications []*Notification
	err := db.conn.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id DESC").
		Find(&notifications).Error
	return notifications, err
}

// MarkNotificationRead marks one notification read
func (db *Database) MarkNotificationRead(ctx context.Context, userID, id uint64) error {
	res := db.conn.WithContext(ctx).Model(&Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("read", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: notification %d", ErrItemNotFound, id)
	}
	return nil
}

// Status queries

// CountLists returns the total number of lists
func (db *Database) CountLists(ctx context.Context) (int64, error) {
	var count int64
	err := db.conn.WithContext(ctx).Model(&List{}).Count(&count).Error
	return count, err
}

// TypeCount is one row of the items-by-type aggregate
type TypeCount struct {
	ItemType ItemType
	Count    int64
}

// CountListItemsByType aggregates non-deleted list entries by item type
func (db *Database) CountListItemsByType(ctx context.Context) ([]TypeCount, error) {
	var rows []TypeCount
	err := db.conn.WithContext(ctx).Model(&ListItem{}).
		Select("item_type, count(*) AS count").
		Where("deleted = ?", false).
		Group("item_type").
		Scan(&rows).Error
	return rows, err
}
