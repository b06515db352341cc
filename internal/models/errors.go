package models

import "errors"

// Sentinel errors for the storage and transfer layers. Handlers map these to
// HTTP status codes; controllers wrap them with context via fmt.Errorf and %w.
var (
	// ErrListNotFound means the referenced list does not exist
	ErrListNotFound = errors.New("list not found")

	// ErrItemNotFound means the referenced list item or content row does not exist
	ErrItemNotFound = errors.New("item not found")

	// ErrInvalidItemType means the item type is outside the closed enum
	ErrInvalidItemType = errors.New("invalid item type")

	// ErrValidation covers malformed requests rejected before any storage access
	ErrValidation = errors.New("validation failed")

	// ErrDefaultList means the operation is not allowed on a user's default list
	ErrDefaultList = errors.New("default list cannot be deleted")
)
