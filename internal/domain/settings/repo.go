package settings

import "context"

// Repository persists per-doctor settings documents.
type Repository interface {
	Get(ctx context.Context, doctorEmail string) (*Settings, error)
	Save(ctx context.Context, doctorEmail string, s *Settings) error
}
