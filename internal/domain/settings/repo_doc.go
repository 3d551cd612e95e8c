package settings

import (
	"context"
	"errors"
	"fmt"

	"github.com/dentalos/clinic/internal/platform/docstore"
)

// ErrNotFound is returned when a doctor has no settings document yet.
var ErrNotFound = errors.New("settings not found")

// DocRepository stores settings at doctors/{email}/settings/config.
type DocRepository struct {
	store docstore.Store
}

func NewDocRepository(store docstore.Store) *DocRepository {
	return &DocRepository{store: store}
}

func settingsPath(doctorEmail string) string {
	return fmt.Sprintf("doctors/%s/settings/config", doctorEmail)
}

func (r *DocRepository) Get(ctx context.Context, doctorEmail string) (*Settings, error) {
	doc, err := r.store.Get(ctx, settingsPath(doctorEmail))
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	var s Settings
	if err := docstore.Decode(doc, &s); err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	return &s, nil
}

func (r *DocRepository) Save(ctx context.Context, doctorEmail string, s *Settings) error {
	doc, err := docstore.Encode(s)
	if err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	if err := r.store.Set(ctx, settingsPath(doctorEmail), doc, false); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}
