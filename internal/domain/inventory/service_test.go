package inventory

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dentalos/clinic/internal/platform/docstore"
)

type recordingListener struct {
	changed int
}

func (l *recordingListener) StockChanged(string) { l.changed++ }

func newTestService(t *testing.T) (*Service, *recordingListener) {
	t.Helper()
	svc := NewService(NewDocRepository(docstore.NewMemory()))
	listener := &recordingListener{}
	svc.SetChangeListener(listener)
	svc.now = func() time.Time { return time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC) }
	return svc, listener
}

func TestAdd(t *testing.T) {
	svc, listener := newTestService(t)
	ctx := context.Background()

	item, err := svc.Add(ctx, "doc@example.com", AddRequest{Name: "dental floss", Quantity: 10, ExpiryDate: "2026-12-31"})
	if err != nil {
		t.Fatalf("Add error: %v", err)
	}
	if item.ID != "dental_floss_2026-12-31" {
		t.Errorf("id = %q", item.ID)
	}
	if item.DisplayName != "Dental Floss" {
		t.Errorf("display name = %q", item.DisplayName)
	}
	if item.LowThreshold != DefaultLowThreshold {
		t.Errorf("threshold defaulted to %d", item.LowThreshold)
	}
	if listener.changed != 1 {
		t.Errorf("listener notified %d times", listener.changed)
	}

	// Same name, different expiry is a separate record.
	if _, err := svc.Add(ctx, "doc@example.com", AddRequest{Name: "Dental Floss", Quantity: 5, ExpiryDate: "2027-06-30"}); err != nil {
		t.Fatalf("second expiry Add error: %v", err)
	}

	// Same name and expiry is a conflict, never an overwrite.
	_, err = svc.Add(ctx, "doc@example.com", AddRequest{Name: "DENTAL FLOSS", Quantity: 1, ExpiryDate: "2027-06-30"})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate Add err = %v, want ErrConflict", err)
	}
	stored, _ := svc.repo.Get(ctx, "doc@example.com", "dental_floss_2027-06-30")
	if stored.Quantity != 5 {
		t.Errorf("conflicting add must not touch the stored record, quantity = %d", stored.Quantity)
	}
}

func TestAdd_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	cases := []AddRequest{
		{Name: "", Quantity: 1, ExpiryDate: "2026-12-31"},
		{Name: "Gauze", Quantity: 0, ExpiryDate: "2026-12-31"},
		{Name: "Gauze", Quantity: 1, ExpiryDate: "31-12-2026"},
		{Name: "Gauze", Quantity: 1, ExpiryDate: "2026-12-31", LowThreshold: -1},
	}
	for _, req := range cases {
		if _, err := svc.Add(ctx, "doc@example.com", req); err == nil {
			t.Errorf("expected validation error for %+v", req)
		}
	}
}

func TestEdit_SameExpiry(t *testing.T) {
	svc, listener := newTestService(t)
	ctx := context.Background()
	svc.Add(ctx, "doc@example.com", AddRequest{Name: "dental FLOSS", Quantity: 10, ExpiryDate: "2026-12-31"})

	item, err := svc.Edit(ctx, "doc@example.com", "dental_floss_2026-12-31", EditRequest{Quantity: 0, ExpiryDate: "2026-12-31", LowThreshold: 3})
	if err != nil {
		t.Fatalf("Edit error: %v", err)
	}
	if item.ID != "dental_floss_2026-12-31" {
		t.Errorf("id changed to %q", item.ID)
	}
	if item.Quantity != 0 {
		t.Errorf("quantity = %d, zero must be allowed on edit", item.Quantity)
	}
	if item.DisplayName != "Dental FLOSS" {
		t.Errorf("display name not preserved verbatim: %q", item.DisplayName)
	}
	if listener.changed != 2 {
		t.Errorf("listener notified %d times", listener.changed)
	}
}

func TestDecrement(t *testing.T) {
	svc, listener := newTestService(t)
	ctx := context.Background()
	svc.Add(ctx, "doc@example.com", AddRequest{Name: "Gauze", Quantity: 10, ExpiryDate: "2026-12-31", LowThreshold: 3})

	item, err := svc.Decrement(ctx, "doc@example.com", "gauze_2026-12-31", 4)
	if err != nil {
		t.Fatalf("Decrement error: %v", err)
	}
	if item.Quantity != 6 {
		t.Errorf("quantity = %d, want 6", item.Quantity)
	}
	if item.DisplayName != "Gauze" || item.ExpiryDate != "2026-12-31" || item.LowThreshold != 3 {
		t.Errorf("non-quantity fields changed: %+v", item.Item)
	}
	if listener.changed != 2 {
		t.Errorf("listener notified %d times", listener.changed)
	}

	stored, _ := svc.repo.Get(ctx, "doc@example.com", "gauze_2026-12-31")
	if stored.Quantity != 6 {
		t.Errorf("stored quantity = %d", stored.Quantity)
	}

	// Consumption beyond the stored quantity is recorded as-is, not clamped.
	item, err = svc.Decrement(ctx, "doc@example.com", "gauze_2026-12-31", 9)
	if err != nil {
		t.Fatalf("Decrement error: %v", err)
	}
	if item.Quantity != -3 {
		t.Errorf("quantity = %d, want -3", item.Quantity)
	}
}

func TestDecrement_Validation(t *testing.T) {
	svc, listener := newTestService(t)
	ctx := context.Background()
	svc.Add(ctx, "doc@example.com", AddRequest{Name: "Gauze", Quantity: 10, ExpiryDate: "2026-12-31"})

	if _, err := svc.Decrement(ctx, "doc@example.com", "gauze_2026-12-31", 0); err == nil {
		t.Error("expected error for zero amount")
	}
	if _, err := svc.Decrement(ctx, "doc@example.com", "gauze_2026-12-31", -2); err == nil {
		t.Error("expected error for negative amount")
	}
	if _, err := svc.Decrement(ctx, "doc@example.com", "missing_2026-12-31", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing item err = %v, want ErrNotFound", err)
	}
	if listener.changed != 1 {
		t.Errorf("failed decrements must not notify, listener count = %d", listener.changed)
	}
}

func TestEdit_RekeysOnNewExpiry(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	svc.Add(ctx, "doc@example.com", AddRequest{Name: "Gauze", Quantity: 10, ExpiryDate: "2026-12-31"})

	item, err := svc.Edit(ctx, "doc@example.com", "gauze_2026-12-31", EditRequest{Quantity: 8, ExpiryDate: "2027-03-01", LowThreshold: 5})
	if err != nil {
		t.Fatalf("Edit error: %v", err)
	}
	if item.ID != "gauze_2027-03-01" {
		t.Errorf("new id = %q", item.ID)
	}
	if _, err := svc.repo.Get(ctx, "doc@example.com", "gauze_2026-12-31"); !errors.Is(err, ErrNotFound) {
		t.Error("old record must be removed by the rekey")
	}
	if _, err := svc.repo.Get(ctx, "doc@example.com", "gauze_2027-03-01"); err != nil {
		t.Errorf("new record missing: %v", err)
	}
}

func TestEdit_RekeyConflict(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	svc.Add(ctx, "doc@example.com", AddRequest{Name: "Gauze", Quantity: 10, ExpiryDate: "2026-12-31"})
	svc.Add(ctx, "doc@example.com", AddRequest{Name: "Gauze", Quantity: 4, ExpiryDate: "2027-03-01"})

	_, err := svc.Edit(ctx, "doc@example.com", "gauze_2026-12-31", EditRequest{Quantity: 10, ExpiryDate: "2027-03-01", LowThreshold: 5})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("err = %v, want ErrConflict", err)
	}
	// Both originals survive a rejected move.
	if _, err := svc.repo.Get(ctx, "doc@example.com", "gauze_2026-12-31"); err != nil {
		t.Errorf("source record lost: %v", err)
	}
	target, err := svc.repo.Get(ctx, "doc@example.com", "gauze_2027-03-01")
	if err != nil || target.Quantity != 4 {
		t.Errorf("target record changed: %+v, %v", target, err)
	}
}

func TestRemove(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	svc.Add(ctx, "doc@example.com", AddRequest{Name: "Gauze", Quantity: 10, ExpiryDate: "2026-12-31"})

	if err := svc.Remove(ctx, "doc@example.com", "gauze_2026-12-31"); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if err := svc.Remove(ctx, "doc@example.com", "gauze_2026-12-31"); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Remove err = %v, want ErrNotFound", err)
	}
}

func TestSearch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	svc.Add(ctx, "doc@example.com", AddRequest{Name: "Dental Floss", Quantity: 10, ExpiryDate: "2026-12-31"})
	svc.Add(ctx, "doc@example.com", AddRequest{Name: "Dental Mirror", Quantity: 3, ExpiryDate: "2027-01-15"})
	svc.Add(ctx, "doc@example.com", AddRequest{Name: "Gauze", Quantity: 7, ExpiryDate: "2026-10-01"})

	matches, err := svc.Search(ctx, "doc@example.com", "DENTAL")
	if err != nil {
		t.Fatalf("Search error: %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("matches = %d, want 2", len(matches))
	}
	for _, m := range matches {
		if !strings.HasPrefix(m.DisplayName, "Dental") {
			t.Errorf("unexpected match %q", m.DisplayName)
		}
	}
}

func TestOverview_SortsByUrgency(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	// now is fixed at 2026-08-31 in newTestService.
	svc.Add(ctx, "doc@example.com", AddRequest{Name: "Fresh", Quantity: 50, ExpiryDate: "2027-08-01"})
	svc.Add(ctx, "doc@example.com", AddRequest{Name: "Closing", Quantity: 50, ExpiryDate: "2026-09-15"})
	svc.Add(ctx, "doc@example.com", AddRequest{Name: "Scarce", Quantity: 2, ExpiryDate: "2027-08-01"})
	svc.Add(ctx, "doc@example.com", AddRequest{Name: "Old", Quantity: 9, ExpiryDate: "2026-01-01"})
	svc.Edit(ctx, "doc@example.com", "old_2026-01-01", EditRequest{Quantity: 0, ExpiryDate: "2026-01-01", LowThreshold: 5})

	rows, err := svc.Overview(ctx, "doc@example.com", "")
	if err != nil {
		t.Fatalf("Overview error: %v", err)
	}
	var got []Status
	for _, row := range rows {
		got = append(got, row.Status)
	}
	want := []Status{StatusOutOfStock, StatusLowStock, StatusExpiringSoon, StatusNormal}
	if len(got) != len(want) {
		t.Fatalf("rows = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("statuses = %v, want %v", got, want)
		}
	}

	filtered, err := svc.Overview(ctx, "doc@example.com", StatusLowStock)
	if err != nil {
		t.Fatalf("filtered Overview error: %v", err)
	}
	if len(filtered) != 1 || filtered[0].Name != "Scarce" {
		t.Errorf("filtered = %+v", filtered)
	}
}

func TestSummary(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	svc.Add(ctx, "doc@example.com", AddRequest{Name: "Fresh", Quantity: 50, ExpiryDate: "2027-08-01"})
	svc.Add(ctx, "doc@example.com", AddRequest{Name: "Closing", Quantity: 8, ExpiryDate: "2026-09-15"})

	stats, err := svc.Summary(ctx, "doc@example.com")
	if err != nil {
		t.Fatalf("Summary error: %v", err)
	}
	if stats.TotalItems != 2 || stats.TotalUnits != 58 || stats.ExpiringItems != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestImportMergesExisting(t *testing.T) {
	svc, listener := newTestService(t)
	ctx := context.Background()
	svc.Add(ctx, "doc@example.com", AddRequest{Name: "Gauze", Quantity: 10, ExpiryDate: "2026-12-31"})

	count, err := svc.Import(ctx, "doc@example.com", []ImportRecord{
		{Name: "gauze", Quantity: 25, ExpiryDate: "2026-12-31"},
		{Name: "latex gloves", Quantity: 100, ExpiryDate: "2027-05-01", LowThreshold: 20},
	})
	if err != nil {
		t.Fatalf("Import error: %v", err)
	}
	if count != 2 {
		t.Errorf("imported = %d", count)
	}
	if listener.changed != 2 {
		t.Errorf("listener notified %d times", listener.changed)
	}

	gauze, err := svc.repo.Get(ctx, "doc@example.com", "gauze_2026-12-31")
	if err != nil || gauze.Quantity != 25 {
		t.Errorf("existing record not updated: %+v, %v", gauze, err)
	}
	gloves, err := svc.repo.Get(ctx, "doc@example.com", "latex_gloves_2027-05-01")
	if err != nil || gloves.LowThreshold != 20 || gloves.DisplayName != "Latex Gloves" {
		t.Errorf("imported record = %+v, %v", gloves, err)
	}
}

func TestImport_RejectsIncompleteRecords(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.Import(context.Background(), "doc@example.com", []ImportRecord{{Name: "Gauze", Quantity: 5}}); err == nil {
		t.Error("expected error for record without expiry date")
	}
}

func TestExportRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	svc.Add(ctx, "doc@example.com", AddRequest{Name: "Dental Floss", Quantity: 10, ExpiryDate: "2026-12-31", LowThreshold: 3})

	records, err := svc.Export(ctx, "doc@example.com")
	if err != nil {
		t.Fatalf("Export error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d", len(records))
	}
	want := ExportRecord{Name: "Dental Floss", Quantity: 10, ExpiryDate: "2026-12-31", LowThreshold: 3}
	if records[0] != want {
		t.Errorf("record = %+v, want %+v", records[0], want)
	}

	var buf strings.Builder
	if err := WriteCSV(&buf, records); err != nil {
		t.Fatalf("WriteCSV error: %v", err)
	}
	parsed, err := ParseCSV(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("ParseCSV error: %v", err)
	}
	if len(parsed) != 1 || parsed[0].Name != "Dental Floss" || parsed[0].Quantity != 10 {
		t.Errorf("parsed = %+v", parsed)
	}
}

func TestParseCSV_RequiresHeader(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("name,quantity\nGauze,5\n"))
	if err == nil || !strings.Contains(err.Error(), "expiry_date") {
		t.Errorf("err = %v", err)
	}
}
