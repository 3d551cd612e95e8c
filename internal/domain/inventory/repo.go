package inventory

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no stock record exists for an item id.
	ErrNotFound = errors.New("inventory item not found")

	// ErrConflict is returned when a record already exists for the same
	// name and expiry date.
	ErrConflict = errors.New("inventory item already exists")
)

// StoredItem pairs an item with the document id it lives under.
type StoredItem struct {
	ID string
	Item
}

// Repository is the persistence contract for stock records.
type Repository interface {
	Get(ctx context.Context, doctorEmail, itemID string) (*Item, error)
	Put(ctx context.Context, doctorEmail, itemID string, item *Item, merge bool) error
	Delete(ctx context.Context, doctorEmail, itemID string) error
	List(ctx context.Context, doctorEmail string) ([]StoredItem, error)

	// Rekey writes the item under newID and removes oldID in one atomic
	// commit, used when an edit changes the expiry date.
	Rekey(ctx context.Context, doctorEmail, oldID, newID string, item *Item) error

	// UpsertMany merge-writes a set of records, chunked to respect the
	// store's batch limit.
	UpsertMany(ctx context.Context, doctorEmail string, items []StoredItem) error
}
