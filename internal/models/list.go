package models

import "time"

// List is a named, user-owned collection of watchlist entries
type List struct {
	ID          uint64   `gorm:"primaryKey" json:"id"`
	UserID      uint64   `gorm:"not null;index" json:"user_id"`
	Name        string   `gorm:"not null" json:"name"`
	Description string   `json:"description,omitempty"`
	Type        ListType `gorm:"not null;default:custom" json:"type"`

	// Display-only attributes
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color,omitempty"`

	// A user's default personal list is created on first use and never deleted
	IsDefault bool `gorm:"not null;default:false" json:"is_default"`

	// Share token for lists of type shared
	ShareToken string `gorm:"index" json:"share_token,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListItem is one entry in a List, referencing a Movie, Series or Episode
// by id and type. The composite lookup index backs the duplicate-detection
// invariant: among non-deleted rows of one list, (item_id, item_type) is
// unique for every policy except proceed.
type ListItem struct {
	ID       uint64   `gorm:"primaryKey" json:"id"`
	ListID   uint64   `gorm:"not null;index:idx_list_items_lookup,priority:1" json:"list_id"`
	ItemID   uint64   `gorm:"not null;index:idx_list_items_lookup,priority:2" json:"item_id"`
	ItemType ItemType `gorm:"not null;index:idx_list_items_lookup,priority:3" json:"item_type"`

	Watched   bool       `gorm:"not null;default:false" json:"watched"`
	WatchedAt *time.Time `json:"watched_at,omitempty"`
	Notes     string     `json:"notes,omitempty"`

	// Soft delete. Every membership query filters deleted = false explicitly.
	Deleted bool `gorm:"not null;default:false;index:idx_list_items_lookup,priority:4" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ref returns the item identity of this row
func (i *ListItem) Ref() ItemRef {
	return ItemRef{ItemID: i.ItemID, ItemType: i.ItemType}
}
