package alert

import (
	"context"
	"errors"
	"fmt"

	"github.com/dentalos/clinic/internal/platform/docstore"
)

// ErrDoctorNotFound is returned when the doctor profile document is missing.
var ErrDoctorNotFound = errors.New("doctor not found")

// EmailStore persists the doctor's alert address.
type EmailStore interface {
	GetAlertEmail(ctx context.Context, doctorEmail string) (string, error)
	SetAlertEmail(ctx context.Context, doctorEmail, alertEmail string) error
	ClearAlertEmail(ctx context.Context, doctorEmail string) error
}

// DocEmailStore keeps the alert address as an optional alert_email field on
// the doctor profile document.
type DocEmailStore struct {
	store docstore.Store
}

func NewDocEmailStore(store docstore.Store) *DocEmailStore {
	return &DocEmailStore{store: store}
}

func doctorPath(doctorEmail string) string {
	return fmt.Sprintf("doctors/%s", doctorEmail)
}

func (r *DocEmailStore) GetAlertEmail(ctx context.Context, doctorEmail string) (string, error) {
	doc, err := r.store.Get(ctx, doctorPath(doctorEmail))
	if errors.Is(err, docstore.ErrNotFound) {
		return "", ErrDoctorNotFound
	}
	if err != nil {
		return "", fmt.Errorf("loading alert email: %w", err)
	}
	email, _ := doc["alert_email"].(string)
	return email, nil
}

func (r *DocEmailStore) SetAlertEmail(ctx context.Context, doctorEmail, alertEmail string) error {
	err := r.store.Set(ctx, doctorPath(doctorEmail), map[string]interface{}{
		"alert_email": alertEmail,
	}, true)
	if err != nil {
		return fmt.Errorf("saving alert email: %w", err)
	}
	return nil
}

func (r *DocEmailStore) ClearAlertEmail(ctx context.Context, doctorEmail string) error {
	// A nil field value is the delete-field sentinel.
	err := r.store.Update(ctx, doctorPath(doctorEmail), map[string]interface{}{
		"alert_email": nil,
	})
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrDoctorNotFound
	}
	if err != nil {
		return fmt.Errorf("clearing alert email: %w", err)
	}
	return nil
}
