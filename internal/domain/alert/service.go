package alert

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dentalos/clinic/internal/domain/inventory"
)

// ItemSource lists the stock records the alert rules run over.
type ItemSource interface {
	List(ctx context.Context, doctorEmail string) ([]inventory.StoredItem, error)
}

type Service struct {
	items    ItemSource
	emails   EmailStore
	notifier *Notifier
	now      func() time.Time
}

func NewService(items ItemSource, emails EmailStore, notifier *Notifier) *Service {
	return &Service{items: items, emails: emails, notifier: notifier, now: time.Now}
}

// StockChanged re-arms the doctor's alert gate after any inventory mutation.
func (s *Service) StockChanged(doctorEmail string) {
	s.notifier.Reset(doctorEmail)
}

func normalizeDays(days int) (int, error) {
	if days == 0 {
		return DefaultDaysThreshold, nil
	}
	if days < 1 || days > MaxDaysThreshold {
		return 0, fmt.Errorf("days threshold must be between 1 and %d", MaxDaysThreshold)
	}
	return days, nil
}

// ExpiringResult bundles the expiry rows with the notification outcome.
type ExpiringResult struct {
	DaysThreshold int            `json:"days_threshold"`
	Items         []ExpiringItem `json:"items"`
	Action        Action         `json:"action,omitempty"`
}

// Expiring evaluates the expiry window and, when notify is set, runs the
// email state machine against the configured alert address.
func (s *Service) Expiring(ctx context.Context, doctorEmail string, days int, notify bool) (*ExpiringResult, error) {
	threshold, err := normalizeDays(days)
	if err != nil {
		return nil, err
	}
	items, err := s.items.List(ctx, doctorEmail)
	if err != nil {
		return nil, err
	}
	expiring := Evaluate(items, s.now(), threshold)
	result := &ExpiringResult{DaysThreshold: threshold, Items: expiring}

	if len(expiring) == 0 {
		// Draining the expiring set re-arms the gate even without notify.
		s.notifier.Reset(doctorEmail)
		result.Action = ActionRearmed
		return result, nil
	}
	if !notify {
		return result, nil
	}

	recipient, err := s.emails.GetAlertEmail(ctx, doctorEmail)
	if err != nil {
		return nil, err
	}
	action, err := s.notifier.MaybeNotify(ctx, doctorEmail, recipient, true, threshold, expiring)
	if err != nil {
		return nil, fmt.Errorf("sending alert email: %w", err)
	}
	result.Action = action
	return result, nil
}

// LowStock returns items at or below their threshold. The global threshold
// backfills items without one and must be between 1 and 50.
func (s *Service) LowStock(ctx context.Context, doctorEmail string, globalThreshold int) ([]LowStockItem, error) {
	if globalThreshold == 0 {
		globalThreshold = 1
	}
	if globalThreshold < 1 || globalThreshold > 50 {
		return nil, fmt.Errorf("global threshold must be between 1 and 50")
	}
	items, err := s.items.List(ctx, doctorEmail)
	if err != nil {
		return nil, err
	}
	return LowStock(items, globalThreshold), nil
}

// SetAlertEmail stores the alert address and re-arms the gate.
func (s *Service) SetAlertEmail(ctx context.Context, doctorEmail, alertEmail string) error {
	alertEmail = strings.TrimSpace(alertEmail)
	if alertEmail == "" || !strings.Contains(alertEmail, "@") {
		return fmt.Errorf("a valid alert email address is required")
	}
	if err := s.emails.SetAlertEmail(ctx, doctorEmail, alertEmail); err != nil {
		return err
	}
	s.notifier.Reset(doctorEmail)
	return nil
}

// ClearAlertEmail removes the alert address and re-arms the gate.
func (s *Service) ClearAlertEmail(ctx context.Context, doctorEmail string) error {
	if err := s.emails.ClearAlertEmail(ctx, doctorEmail); err != nil {
		return err
	}
	s.notifier.Reset(doctorEmail)
	return nil
}

// SendTest sends the alert email immediately, skipping the sent gate. It
// still needs a configured address and a non-empty expiring set.
func (s *Service) SendTest(ctx context.Context, doctorEmail string, days int) (*ExpiringResult, error) {
	threshold, err := normalizeDays(days)
	if err != nil {
		return nil, err
	}
	recipient, err := s.emails.GetAlertEmail(ctx, doctorEmail)
	if err != nil {
		return nil, err
	}
	if recipient == "" {
		return nil, fmt.Errorf("no alert email is configured")
	}
	items, err := s.items.List(ctx, doctorEmail)
	if err != nil {
		return nil, err
	}
	expiring := Evaluate(items, s.now(), threshold)
	if len(expiring) == 0 {
		return nil, fmt.Errorf("no items expire within %d days", threshold)
	}
	if err := s.notifier.SendDirect(ctx, recipient, threshold, expiring); err != nil {
		return nil, fmt.Errorf("sending test alert: %w", err)
	}
	return &ExpiringResult{DaysThreshold: threshold, Items: expiring, Action: ActionSent}, nil
}
