package alert

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dentalos/clinic/internal/domain/inventory"
	"github.com/dentalos/clinic/internal/platform/mailer"
)

type stubItems struct {
	items []inventory.StoredItem
}

func (s *stubItems) List(context.Context, string) ([]inventory.StoredItem, error) {
	return s.items, nil
}

type stubEmails struct {
	addresses map[string]string
}

func (s *stubEmails) GetAlertEmail(_ context.Context, doctorEmail string) (string, error) {
	if _, ok := s.addresses[doctorEmail]; !ok {
		return "", nil
	}
	return s.addresses[doctorEmail], nil
}

func (s *stubEmails) SetAlertEmail(_ context.Context, doctorEmail, alertEmail string) error {
	s.addresses[doctorEmail] = alertEmail
	return nil
}

func (s *stubEmails) ClearAlertEmail(_ context.Context, doctorEmail string) error {
	if _, ok := s.addresses[doctorEmail]; !ok {
		return ErrDoctorNotFound
	}
	delete(s.addresses, doctorEmail)
	return nil
}

func newTestService(items *stubItems) (*Service, *mailer.Mock, *stubEmails) {
	sender := &mailer.Mock{}
	emails := &stubEmails{addresses: map[string]string{"doc@example.com": "alerts@example.com"}}
	svc := NewService(items, emails, NewNotifier(sender))
	svc.now = func() time.Time { return today }
	return svc, sender, emails
}

func TestExpiring_SendsOncePerArmedPeriod(t *testing.T) {
	items := &stubItems{items: []inventory.StoredItem{
		stockItem("Gauze", 10, "2026-09-10", 5),
	}}
	svc, sender, _ := newTestService(items)
	ctx := context.Background()

	result, err := svc.Expiring(ctx, "doc@example.com", 0, true)
	if err != nil {
		t.Fatalf("Expiring error: %v", err)
	}
	if result.DaysThreshold != DefaultDaysThreshold {
		t.Errorf("threshold defaulted to %d", result.DaysThreshold)
	}
	if result.Action != ActionSent {
		t.Errorf("first action = %q", result.Action)
	}

	result, _ = svc.Expiring(ctx, "doc@example.com", 0, true)
	if result.Action != ActionAlreadySent {
		t.Errorf("second action = %q", result.Action)
	}
	if calls := sender.Calls(); len(calls) != 1 {
		t.Fatalf("sends = %d, want exactly 1", len(calls))
	}
	if got := sender.Calls()[0].To; got != "alerts@example.com" {
		t.Errorf("recipient = %q", got)
	}
}

func TestExpiring_RearmsWhenSetDrains(t *testing.T) {
	items := &stubItems{items: []inventory.StoredItem{
		stockItem("Gauze", 10, "2026-09-10", 5),
	}}
	svc, sender, _ := newTestService(items)
	ctx := context.Background()

	svc.Expiring(ctx, "doc@example.com", 0, true)

	// Everything fresh again: the empty expiring set reopens the gate.
	items.items = []inventory.StoredItem{stockItem("Gauze", 10, "2027-08-01", 5)}
	result, err := svc.Expiring(ctx, "doc@example.com", 0, true)
	if err != nil {
		t.Fatalf("Expiring error: %v", err)
	}
	if result.Action != ActionRearmed {
		t.Errorf("drained action = %q", result.Action)
	}

	// A new expiring item triggers exactly one more send.
	items.items = append(items.items, stockItem("New Batch", 5, "2026-09-05", 5))
	result, _ = svc.Expiring(ctx, "doc@example.com", 0, true)
	if result.Action != ActionSent {
		t.Errorf("post-rearm action = %q", result.Action)
	}
	if calls := sender.Calls(); len(calls) != 2 {
		t.Errorf("sends = %d, want 2", len(calls))
	}
}

func TestExpiring_StockMutationRearms(t *testing.T) {
	items := &stubItems{items: []inventory.StoredItem{
		stockItem("Gauze", 10, "2026-09-10", 5),
	}}
	svc, sender, _ := newTestService(items)
	ctx := context.Background()

	svc.Expiring(ctx, "doc@example.com", 0, true)
	svc.StockChanged("doc@example.com")
	result, _ := svc.Expiring(ctx, "doc@example.com", 0, true)
	if result.Action != ActionSent {
		t.Errorf("action after mutation = %q", result.Action)
	}
	if calls := sender.Calls(); len(calls) != 2 {
		t.Errorf("sends = %d, want 2", len(calls))
	}
}

func TestExpiring_NoEmailConfigured(t *testing.T) {
	items := &stubItems{items: []inventory.StoredItem{
		stockItem("Gauze", 10, "2026-09-10", 5),
	}}
	svc, sender, emails := newTestService(items)
	delete(emails.addresses, "doc@example.com")
	emails.addresses["doc@example.com"] = ""

	result, err := svc.Expiring(context.Background(), "doc@example.com", 0, true)
	if err != nil {
		t.Fatalf("Expiring error: %v", err)
	}
	if result.Action != ActionNoEmail {
		t.Errorf("action = %q", result.Action)
	}
	if len(sender.Calls()) != 0 {
		t.Error("nothing should be sent without an address")
	}
}

func TestExpiring_SendFailureKeepsGateOpen(t *testing.T) {
	items := &stubItems{items: []inventory.StoredItem{
		stockItem("Gauze", 10, "2026-09-10", 5),
	}}
	svc, sender, _ := newTestService(items)
	ctx := context.Background()

	sender.ShouldFail = true
	if _, err := svc.Expiring(ctx, "doc@example.com", 0, true); err == nil {
		t.Fatal("expected send failure")
	}

	sender.ShouldFail = false
	result, err := svc.Expiring(ctx, "doc@example.com", 0, true)
	if err != nil {
		t.Fatalf("retry error: %v", err)
	}
	if result.Action != ActionSent {
		t.Errorf("retry action = %q, a failed send must not close the gate", result.Action)
	}
}

func TestExpiring_ThresholdValidation(t *testing.T) {
	svc, _, _ := newTestService(&stubItems{})
	for _, days := range []int{-1, 181} {
		if _, err := svc.Expiring(context.Background(), "doc@example.com", days, false); err == nil {
			t.Errorf("expected error for days=%d", days)
		}
	}
}

func TestSendTest_BypassesGate(t *testing.T) {
	items := &stubItems{items: []inventory.StoredItem{
		stockItem("Gauze", 10, "2026-09-10", 5),
	}}
	svc, sender, _ := newTestService(items)
	ctx := context.Background()

	svc.Expiring(ctx, "doc@example.com", 0, true)
	if _, err := svc.SendTest(ctx, "doc@example.com", 30); err != nil {
		t.Fatalf("SendTest error: %v", err)
	}
	if calls := sender.Calls(); len(calls) != 2 {
		t.Errorf("sends = %d, test send must skip the gate", len(calls))
	}

	// The test send does not close the regular gate either.
	result, _ := svc.Expiring(ctx, "doc@example.com", 0, true)
	if result.Action != ActionAlreadySent {
		t.Errorf("action = %q", result.Action)
	}
}

func TestSendTest_RequiresExpiringItems(t *testing.T) {
	svc, _, _ := newTestService(&stubItems{items: []inventory.StoredItem{
		stockItem("Fresh", 10, "2027-08-01", 5),
	}})
	if _, err := svc.SendTest(context.Background(), "doc@example.com", 30); err == nil {
		t.Error("expected error for empty expiring set")
	}
}

func TestAlertEmailLifecycle(t *testing.T) {
	svc, _, emails := newTestService(&stubItems{})
	ctx := context.Background()

	if err := svc.SetAlertEmail(ctx, "doc@example.com", "new@example.com"); err != nil {
		t.Fatalf("SetAlertEmail error: %v", err)
	}
	if emails.addresses["doc@example.com"] != "new@example.com" {
		t.Errorf("stored = %q", emails.addresses["doc@example.com"])
	}

	if err := svc.SetAlertEmail(ctx, "doc@example.com", "not-an-email"); err == nil {
		t.Error("expected validation error")
	}

	if err := svc.ClearAlertEmail(ctx, "doc@example.com"); err != nil {
		t.Fatalf("ClearAlertEmail error: %v", err)
	}
	if err := svc.ClearAlertEmail(ctx, "doc@example.com"); !errors.Is(err, ErrDoctorNotFound) {
		t.Errorf("second clear err = %v", err)
	}
}

func TestLowStockService(t *testing.T) {
	svc, _, _ := newTestService(&stubItems{items: []inventory.StoredItem{
		stockItem("Scarce", 1, "2027-08-01", 5),
		stockItem("Plenty", 50, "2027-08-01", 5),
	}})
	low, err := svc.LowStock(context.Background(), "doc@example.com", 0)
	if err != nil {
		t.Fatalf("LowStock error: %v", err)
	}
	if len(low) != 1 || low[0].Name != "Scarce" {
		t.Errorf("low = %+v", low)
	}
	if _, err := svc.LowStock(context.Background(), "doc@example.com", 51); err == nil {
		t.Error("expected threshold validation error")
	}
}
