package patient

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no patient exists with the given file id.
	ErrNotFound = errors.New("patient not found")

	// ErrConflict is returned when registering a file id that already exists.
	ErrConflict = errors.New("patient file id already exists")
)

// Repository persists patient documents under a doctor's account.
type Repository interface {
	Create(ctx context.Context, doctorEmail string, p *Patient) error
	Get(ctx context.Context, doctorEmail, fileID string) (*Patient, error)
	List(ctx context.Context, doctorEmail string) ([]*Patient, error)
	// UpdateFields applies a partial update to the patient document.
	UpdateFields(ctx context.Context, doctorEmail, fileID string, fields map[string]interface{}) error
}
