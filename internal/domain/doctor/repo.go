package doctor

import "context"

// Repository is the persistence contract for doctor accounts.
type Repository interface {
	Create(ctx context.Context, d *Doctor) error
	Get(ctx context.Context, email string) (*Doctor, error)
}
