package models

import "fmt"

// ItemType represents the kind of content a list entry points at
type ItemType string

const (
	ItemTypeMovie      ItemType = "movie"
	ItemTypeSeries     ItemType = "series"
	ItemTypeEpisode    ItemType = "episode"
	ItemTypeCollection ItemType = "collection"
)

// ParseItemType validates an item type received at the API boundary.
// Anything outside the closed set is rejected before storage is touched.
func ParseItemType(s string) (ItemType, error) {
	switch ItemType(s) {
	case ItemTypeMovie, ItemTypeSeries, ItemTypeEpisode, ItemTypeCollection:
		return ItemType(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidItemType, s)
	}
}

// Storable reports whether rows of this type can live in a list.
// Collections are a grouping, they expand to their member movies.
func (t ItemType) Storable() bool {
	switch t {
	case ItemTypeMovie, ItemTypeSeries, ItemTypeEpisode:
		return true
	default:
		return false
	}
}

// ListType represents the kind of list
type ListType string

const (
	ListTypePersonal ListType = "personal"
	ListTypeCustom   ListType = "custom"
	ListTypeShared   ListType = "shared"
)

// ParseListType validates a list type received at the API boundary
func ParseListType(s string) (ListType, error) {
	switch ListType(s) {
	case ListTypePersonal, ListTypeCustom, ListTypeShared:
		return ListType(s), nil
	default:
		return "", fmt.Errorf("%w: invalid list type %q", ErrValidation, s)
	}
}

// Operation represents the transfer operation
type Operation string

const (
	OperationCopy Operation = "copy"
	OperationMove Operation = "move"
)

// ParseOperation validates a transfer operation
func ParseOperation(s string) (Operation, error) {
	switch Operation(s) {
	case OperationCopy, OperationMove:
		return Operation(s), nil
	default:
		return "", fmt.Errorf("%w: invalid operation %q", ErrValidation, s)
	}
}

// DuplicatePolicy is the caller-selected strategy for items that already
// exist in the target list
type DuplicatePolicy string

const (
	PolicyBlock            DuplicatePolicy = "block"
	PolicySkip             DuplicatePolicy = "skip"
	PolicyProceed          DuplicatePolicy = "proceed"
	PolicyRemoveSourceOnly DuplicatePolicy = "remove_source_only"
)

// ParseDuplicatePolicy validates a duplicate policy
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch DuplicatePolicy(s) {
	case PolicyBlock, PolicySkip, PolicyProceed, PolicyRemoveSourceOnly:
		return DuplicatePolicy(s), nil
	default:
		return "", fmt.Errorf("%w: invalid duplicate policy %q", ErrValidation, s)
	}
}

// TransferStatus is the outcome of a single-item transfer
type TransferStatus string

const (
	TransferStatusOK             TransferStatus = "ok"
	TransferStatusDuplicateFound TransferStatus = "duplicate_found"
)

// ItemRef identifies one item by id and type
type ItemRef struct {
	ItemID   uint64   `json:"item_id"`
	ItemType ItemType `json:"item_type"`
}
