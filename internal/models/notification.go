package models

import "time"

// Notification records a release event for a user: a movie in one of their
// lists was released, or an episode of a tracked series aired.
type Notification struct {
	ID       uint64   `gorm:"primaryKey" json:"id"`
	UserID   uint64   `gorm:"not null;index" json:"user_id"`
	ListID   uint64   `json:"list_id"`
	ItemID   uint64   `gorm:"index" json:"item_id"`
	ItemType ItemType `json:"item_type"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
	Read     bool     `gorm:"not null;default:false" json:"read"`

	CreatedAt time.Time `json:"created_at"`
}
