package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dentalos/clinic/internal/platform/docstore"
)

// DocRepository stores stock records at doctors/{email}/stock/{item_id}.
type DocRepository struct {
	store docstore.Store
}

func NewDocRepository(store docstore.Store) *DocRepository {
	return &DocRepository{store: store}
}

func stockCollection(doctorEmail string) string {
	return fmt.Sprintf("doctors/%s/stock", doctorEmail)
}

func stockPath(doctorEmail, itemID string) string {
	return stockCollection(doctorEmail) + "/" + itemID
}

func (r *DocRepository) Get(ctx context.Context, doctorEmail, itemID string) (*Item, error) {
	doc, err := r.store.Get(ctx, stockPath(doctorEmail, itemID))
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading stock item: %w", err)
	}
	var item Item
	if err := docstore.Decode(doc, &item); err != nil {
		return nil, fmt.Errorf("loading stock item: %w", err)
	}
	return &item, nil
}

func (r *DocRepository) Put(ctx context.Context, doctorEmail, itemID string, item *Item, merge bool) error {
	doc, err := docstore.Encode(item)
	if err != nil {
		return fmt.Errorf("saving stock item: %w", err)
	}
	if err := r.store.Set(ctx, stockPath(doctorEmail, itemID), doc, merge); err != nil {
		return fmt.Errorf("saving stock item: %w", err)
	}
	return nil
}

func (r *DocRepository) Delete(ctx context.Context, doctorEmail, itemID string) error {
	if err := r.store.Delete(ctx, stockPath(doctorEmail, itemID)); err != nil {
		return fmt.Errorf("deleting stock item: %w", err)
	}
	return nil
}

func (r *DocRepository) List(ctx context.Context, doctorEmail string) ([]StoredItem, error) {
	docs, err := r.store.Stream(ctx, stockCollection(doctorEmail))
	if err != nil {
		return nil, fmt.Errorf("listing stock: %w", err)
	}
	items := make([]StoredItem, 0, len(docs))
	for _, doc := range docs {
		var item Item
		if err := docstore.Decode(doc.Data, &item); err != nil {
			return nil, fmt.Errorf("listing stock: decoding %s: %w", doc.ID, err)
		}
		items = append(items, StoredItem{ID: doc.ID, Item: item})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

// Rekey moves an item to a new document id atomically so a crash can never
// leave both the old and the new record behind.
func (r *DocRepository) Rekey(ctx context.Context, doctorEmail, oldID, newID string, item *Item) error {
	doc, err := docstore.Encode(item)
	if err != nil {
		return fmt.Errorf("rekeying stock item: %w", err)
	}
	batch := r.store.Batch()
	if err := batch.Set(stockPath(doctorEmail, newID), doc, true); err != nil {
		return fmt.Errorf("rekeying stock item: %w", err)
	}
	if err := batch.Delete(stockPath(doctorEmail, oldID)); err != nil {
		return fmt.Errorf("rekeying stock item: %w", err)
	}
	if err := batch.Commit(ctx); err != nil {
		return fmt.Errorf("rekeying stock item: %w", err)
	}
	return nil
}

func (r *DocRepository) UpsertMany(ctx context.Context, doctorEmail string, items []StoredItem) error {
	batch := r.store.Batch()
	for _, stored := range items {
		doc, err := docstore.Encode(&stored.Item)
		if err != nil {
			return fmt.Errorf("importing stock: %w", err)
		}
		if err := batch.Set(stockPath(doctorEmail, stored.ID), doc, true); err != nil {
			return fmt.Errorf("importing stock: %w", err)
		}
		if batch.Len() >= docstore.MaxBatchWrites {
			if err := batch.Commit(ctx); err != nil {
				return fmt.Errorf("importing stock: %w", err)
			}
			batch = r.store.Batch()
		}
	}
	if batch.Len() > 0 {
		if err := batch.Commit(ctx); err != nil {
			return fmt.Errorf("importing stock: %w", err)
		}
	}
	return nil
}
