package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ChangeListener is notified after any stock mutation. The alert notifier
// uses it to re-arm the expiry email for the doctor.
type ChangeListener interface {
	StockChanged(doctorEmail string)
}

type noopListener struct{}

func (noopListener) StockChanged(string) {}

type Service struct {
	repo     Repository
	listener ChangeListener
	now      func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, listener: noopListener{}, now: time.Now}
}

// SetChangeListener registers the mutation listener. Call before serving.
func (s *Service) SetChangeListener(l ChangeListener) {
	if l != nil {
		s.listener = l
	}
}

// AddRequest carries the fields for a new stock record.
type AddRequest struct {
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	ExpiryDate   string `json:"expiry_date"`
	LowThreshold int    `json:"low_threshold"`
}

// Add creates a stock record. The name is normalized, the id is derived from
// the name and expiry date, and an existing record for the same pair is a
// conflict rather than a silent overwrite.
func (s *Service) Add(ctx context.Context, doctorEmail string, req AddRequest) (*StoredItem, error) {
	name := NormalizeName(strings.TrimSpace(req.Name))
	if name == "" {
		return nil, fmt.Errorf("item name is required")
	}
	if req.Quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1")
	}
	if _, err := time.Parse(DateLayout, req.ExpiryDate); err != nil {
		return nil, fmt.Errorf("expiry date must be YYYY-MM-DD")
	}
	threshold := req.LowThreshold
	if threshold == 0 {
		threshold = DefaultLowThreshold
	}
	if threshold < 1 {
		return nil, fmt.Errorf("low stock threshold must be at least 1")
	}

	id := KeyFor(name, req.ExpiryDate)
	if _, err := s.repo.Get(ctx, doctorEmail, id); err == nil {
		return nil, fmt.Errorf("%w: %q with expiry %s, edit the existing item instead", ErrConflict, name, req.ExpiryDate)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	item := &Item{
		Quantity:     req.Quantity,
		ExpiryDate:   req.ExpiryDate,
		LowThreshold: threshold,
		DisplayName:  name,
	}
	if err := s.repo.Put(ctx, doctorEmail, id, item, false); err != nil {
		return nil, err
	}
	s.listener.StockChanged(doctorEmail)
	return &StoredItem{ID: id, Item: *item}, nil
}

// EditRequest carries the mutable fields of an existing record. The display
// name is kept verbatim; only quantity, expiry and threshold change.
type EditRequest struct {
	Quantity     int    `json:"quantity"`
	ExpiryDate   string `json:"expiry_date"`
	LowThreshold int    `json:"low_threshold"`
}

// Edit updates a record in place, or moves it to a new id when the expiry
// date changes. Moving onto an id that already exists is a conflict.
func (s *Service) Edit(ctx context.Context, doctorEmail, itemID string, req EditRequest) (*StoredItem, error) {
	current, err := s.repo.Get(ctx, doctorEmail, itemID)
	if err != nil {
		return nil, err
	}
	if req.Quantity < 0 {
		return nil, fmt.Errorf("quantity must not be negative")
	}
	if _, err := time.Parse(DateLayout, req.ExpiryDate); err != nil {
		return nil, fmt.Errorf("expiry date must be YYYY-MM-DD")
	}
	if req.LowThreshold < 1 {
		return nil, fmt.Errorf("low stock threshold must be at least 1")
	}

	updated := &Item{
		Quantity:     req.Quantity,
		ExpiryDate:   req.ExpiryDate,
		LowThreshold: req.LowThreshold,
		DisplayName:  current.DisplayName,
	}
	newID := KeyFor(current.DisplayName, req.ExpiryDate)
	if newID == itemID {
		if err := s.repo.Put(ctx, doctorEmail, itemID, updated, true); err != nil {
			return nil, err
		}
	} else {
		if _, err := s.repo.Get(ctx, doctorEmail, newID); err == nil {
			return nil, fmt.Errorf("%w: %q with expiry %s", ErrConflict, current.DisplayName, req.ExpiryDate)
		} else if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if err := s.repo.Rekey(ctx, doctorEmail, itemID, newID, updated); err != nil {
			return nil, err
		}
	}
	s.listener.StockChanged(doctorEmail)
	return &StoredItem{ID: newID, Item: *updated}, nil
}

// Decrement subtracts consumed units from a record's quantity. The result is
// not clamped at zero here; callers are expected to pass sane amounts.
func (s *Service) Decrement(ctx context.Context, doctorEmail, itemID string, amount int) (*StoredItem, error) {
	if amount < 1 {
		return nil, fmt.Errorf("amount must be at least 1")
	}
	current, err := s.repo.Get(ctx, doctorEmail, itemID)
	if err != nil {
		return nil, err
	}

	updated := *current
	updated.Quantity = current.Quantity - amount
	if err := s.repo.Put(ctx, doctorEmail, itemID, &updated, true); err != nil {
		return nil, err
	}
	s.listener.StockChanged(doctorEmail)
	return &StoredItem{ID: itemID, Item: updated}, nil
}

// Remove deletes a stock record.
func (s *Service) Remove(ctx context.Context, doctorEmail, itemID string) error {
	if _, err := s.repo.Get(ctx, doctorEmail, itemID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, doctorEmail, itemID); err != nil {
		return err
	}
	s.listener.StockChanged(doctorEmail)
	return nil
}

// Search returns items whose display name contains the query,
// case-insensitively.
func (s *Service) Search(ctx context.Context, doctorEmail, query string) ([]StoredItem, error) {
	items, err := s.repo.List(ctx, doctorEmail)
	if err != nil {
		return nil, err
	}
	needle := strings.ToLower(strings.TrimSpace(query))
	matched := make([]StoredItem, 0)
	for _, stored := range items {
		if strings.Contains(strings.ToLower(stored.DisplayName), needle) {
			matched = append(matched, stored)
		}
	}
	return matched, nil
}

// StatusRow is one line of the stock dashboard.
type StatusRow struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Quantity        int    `json:"quantity"`
	ExpiryDate      string `json:"expiry_date"`
	ExpiryDisplay   string `json:"expiry_display"`
	DaysUntilExpiry int    `json:"days_until_expiry"`
	LowThreshold    int    `json:"low_threshold"`
	Status          Status `json:"status"`
}

// Overview classifies every item and returns the rows sorted most urgent
// first. An empty filter returns everything.
func (s *Service) Overview(ctx context.Context, doctorEmail string, filter Status) ([]StatusRow, error) {
	items, err := s.repo.List(ctx, doctorEmail)
	if err != nil {
		return nil, err
	}
	today := s.now()
	rows := make([]StatusRow, 0, len(items))
	for _, stored := range items {
		days, err := stored.DaysUntilExpiry(today)
		if err != nil {
			return nil, err
		}
		status := stored.Classify(today)
		if filter != "" && status != filter {
			continue
		}
		rows = append(rows, StatusRow{
			ID:              stored.ID,
			Name:            stored.DisplayName,
			Quantity:        stored.Quantity,
			ExpiryDate:      stored.ExpiryDate,
			ExpiryDisplay:   FormatDate(stored.ExpiryDate),
			DaysUntilExpiry: days,
			LowThreshold:    stored.LowThreshold,
			Status:          status,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return SortPriority(rows[i].Status) < SortPriority(rows[j].Status)
	})
	return rows, nil
}

// ImportRecord is one row of an uploaded CSV or JSON file.
type ImportRecord struct {
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	ExpiryDate   string `json:"expiry_date"`
	LowThreshold int    `json:"low_threshold"`
}

// Import merge-upserts the uploaded records. Existing records for the same
// name and expiry date are updated, new ones created.
func (s *Service) Import(ctx context.Context, doctorEmail string, records []ImportRecord) (int, error) {
	stored := make([]StoredItem, 0, len(records))
	for i, rec := range records {
		name := NormalizeName(strings.TrimSpace(rec.Name))
		if name == "" || rec.ExpiryDate == "" {
			return 0, fmt.Errorf("record %d: name, quantity and expiry_date are required", i+1)
		}
		if _, err := time.Parse(DateLayout, rec.ExpiryDate); err != nil {
			return 0, fmt.Errorf("record %d: expiry date must be YYYY-MM-DD", i+1)
		}
		threshold := rec.LowThreshold
		if threshold <= 0 {
			threshold = DefaultLowThreshold
		}
		stored = append(stored, StoredItem{
			ID: KeyFor(name, rec.ExpiryDate),
			Item: Item{
				Quantity:     rec.Quantity,
				ExpiryDate:   rec.ExpiryDate,
				LowThreshold: threshold,
				DisplayName:  name,
			},
		})
	}
	if err := s.repo.UpsertMany(ctx, doctorEmail, stored); err != nil {
		return 0, err
	}
	s.listener.StockChanged(doctorEmail)
	return len(stored), nil
}

// ExportRecord is one row of a downloaded report, matching the import shape
// so an export can be re-imported as-is.
type ExportRecord struct {
	Name         string `json:"name"`
	Quantity     int    `json:"quantity"`
	ExpiryDate   string `json:"expiry_date"`
	LowThreshold int    `json:"low_threshold"`
}

// Export returns every record in the import-compatible shape.
func (s *Service) Export(ctx context.Context, doctorEmail string) ([]ExportRecord, error) {
	items, err := s.repo.List(ctx, doctorEmail)
	if err != nil {
		return nil, err
	}
	records := make([]ExportRecord, 0, len(items))
	for _, stored := range items {
		records = append(records, ExportRecord{
			Name:         stored.DisplayName,
			Quantity:     stored.Quantity,
			ExpiryDate:   stored.ExpiryDate,
			LowThreshold: stored.LowThreshold,
		})
	}
	return records, nil
}

// Stats summarizes the doctor's stock.
type Stats struct {
	TotalItems    int `json:"total_items"`
	TotalUnits    int `json:"total_units"`
	ExpiringItems int `json:"expiring_items"`
}

// Summary counts items, units and records expiring within the soon window.
func (s *Service) Summary(ctx context.Context, doctorEmail string) (*Stats, error) {
	items, err := s.repo.List(ctx, doctorEmail)
	if err != nil {
		return nil, err
	}
	today := s.now()
	stats := &Stats{TotalItems: len(items)}
	for _, stored := range items {
		stats.TotalUnits += stored.Quantity
		if days, err := stored.DaysUntilExpiry(today); err == nil && days <= ExpiringSoonWindow {
			stats.ExpiringItems++
		}
	}
	return stats, nil
}

// List returns the raw stock records for a doctor.
func (s *Service) List(ctx context.Context, doctorEmail string) ([]StoredItem, error) {
	return s.repo.List(ctx, doctorEmail)
}
