package docstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestSplitPath(t *testing.T) {
	collection, id, err := SplitPath("doctors/a@b.com/patients/F-100")
	if err != nil {
		t.Fatalf("SplitPath error: %v", err)
	}
	if collection != "doctors/a@b.com/patients" || id != "F-100" {
		t.Errorf("SplitPath = (%q, %q)", collection, id)
	}

	if _, _, err := SplitPath("doctors"); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("SplitPath(single segment) err = %v, want ErrInvalidPath", err)
	}
	if _, _, err := SplitPath("doctors/"); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("SplitPath(trailing slash) err = %v, want ErrInvalidPath", err)
	}
}

func TestMemorySetGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	if err := s.Set(ctx, "doctors/a@b.com", map[string]interface{}{"name": "Noor"}, false); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	doc, err := s.Get(ctx, "doctors/a@b.com")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if doc["name"] != "Noor" {
		t.Errorf("name = %v", doc["name"])
	}

	if _, err := s.Get(ctx, "doctors/missing@b.com"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) err = %v, want ErrNotFound", err)
	}
}

func TestMemorySetMerge(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	s.Set(ctx, "doctors/a@b.com", map[string]interface{}{"name": "Noor", "uid": "u1"}, false)
	s.Set(ctx, "doctors/a@b.com", map[string]interface{}{"alert_email": "x@y.com"}, true)

	doc, _ := s.Get(ctx, "doctors/a@b.com")
	if doc["name"] != "Noor" || doc["alert_email"] != "x@y.com" {
		t.Errorf("merged doc = %v", doc)
	}

	// Non-merge set replaces the whole document.
	s.Set(ctx, "doctors/a@b.com", map[string]interface{}{"name": "Sara"}, false)
	doc, _ = s.Get(ctx, "doctors/a@b.com")
	if _, ok := doc["alert_email"]; ok {
		t.Error("replace set kept old fields")
	}
}

func TestMemoryUpdateDeletesNilFields(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	s.Set(ctx, "doctors/a@b.com", map[string]interface{}{"name": "Noor", "alert_email": "x@y.com"}, false)
	if err := s.Update(ctx, "doctors/a@b.com", map[string]interface{}{"alert_email": nil}); err != nil {
		t.Fatalf("Update error: %v", err)
	}
	doc, _ := s.Get(ctx, "doctors/a@b.com")
	if _, ok := doc["alert_email"]; ok {
		t.Error("nil value did not delete field")
	}
	if doc["name"] != "Noor" {
		t.Error("update touched unrelated field")
	}

	if err := s.Update(ctx, "doctors/missing@b.com", map[string]interface{}{"x": 1}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(missing) err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStreamExcludesSubcollections(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	s.Set(ctx, "doctors/a@b.com/stock/gauze_2026-01-01", map[string]interface{}{"quantity": 3}, false)
	s.Set(ctx, "doctors/a@b.com/stock/floss_2026-02-01", map[string]interface{}{"quantity": 9}, false)
	s.Set(ctx, "doctors/a@b.com/patients/F-1", map[string]interface{}{"name": "P"}, false)

	docs, err := s.Stream(ctx, "doctors/a@b.com/stock")
	if err != nil {
		t.Fatalf("Stream error: %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("Stream returned %d docs, want 2", len(docs))
	}
	// Ordered by id.
	if docs[0].ID != "floss_2026-02-01" || docs[1].ID != "gauze_2026-01-01" {
		t.Errorf("Stream order = %s, %s", docs[0].ID, docs[1].ID)
	}
}

func TestMemoryGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	s.Set(ctx, "doctors/a@b.com", map[string]interface{}{"name": "Noor"}, false)
	doc, _ := s.Get(ctx, "doctors/a@b.com")
	doc["name"] = "Mutated"

	again, _ := s.Get(ctx, "doctors/a@b.com")
	if again["name"] != "Noor" {
		t.Error("Get returned a live reference to stored data")
	}
}

func TestMemoryBatchCommit(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	s.Set(ctx, "doctors/a@b.com/stock/old_2025-01-01", map[string]interface{}{"quantity": 1}, false)

	b := s.Batch()
	if err := b.Set("doctors/a@b.com/stock/new_2026-01-01", map[string]interface{}{"quantity": 1}, true); err != nil {
		t.Fatalf("batch Set error: %v", err)
	}
	if err := b.Delete("doctors/a@b.com/stock/old_2025-01-01"); err != nil {
		t.Fatalf("batch Delete error: %v", err)
	}
	if b.Len() != 2 {
		t.Errorf("Len = %d, want 2", b.Len())
	}
	if err := b.Commit(ctx); err != nil {
		t.Fatalf("Commit error: %v", err)
	}

	if _, err := s.Get(ctx, "doctors/a@b.com/stock/old_2025-01-01"); !errors.Is(err, ErrNotFound) {
		t.Error("batch delete did not apply")
	}
	if _, err := s.Get(ctx, "doctors/a@b.com/stock/new_2026-01-01"); err != nil {
		t.Error("batch set did not apply")
	}
}

func TestMemoryBatchLimit(t *testing.T) {
	s := NewMemory()
	b := s.Batch()
	for i := 0; i < MaxBatchWrites; i++ {
		if err := b.Set(fmt.Sprintf("c/doc-%d", i), map[string]interface{}{}, false); err != nil {
			t.Fatalf("Set #%d error: %v", i, err)
		}
	}
	if err := b.Set("c/overflow", map[string]interface{}{}, false); !errors.Is(err, ErrBatchLimit) {
		t.Errorf("overflow err = %v, want ErrBatchLimit", err)
	}
}

func TestCodecRoundTrip(t *testing.T) {
	type item struct {
		Quantity    int    `json:"quantity"`
		ExpiryDate  string `json:"expiry_date"`
		DisplayName string `json:"display_name"`
	}

	doc, err := Encode(item{Quantity: 4, ExpiryDate: "2026-03-01", DisplayName: "Dental Floss"})
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if doc["quantity"].(float64) != 4 {
		t.Errorf("quantity = %v", doc["quantity"])
	}

	var back item
	if err := Decode(doc, &back); err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if back.Quantity != 4 || back.DisplayName != "Dental Floss" {
		t.Errorf("round trip = %+v", back)
	}
}
