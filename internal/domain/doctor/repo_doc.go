package doctor

import (
	"context"
	"errors"
	"fmt"

	"github.com/dentalos/clinic/internal/platform/docstore"
)

// DocRepository stores doctor profiles at doctors/{email}.
type DocRepository struct {
	store docstore.Store
}

func NewDocRepository(store docstore.Store) *DocRepository {
	return &DocRepository{store: store}
}

func profilePath(email string) string {
	return fmt.Sprintf("doctors/%s", email)
}

func (r *DocRepository) Create(ctx context.Context, d *Doctor) error {
	_, err := r.store.Get(ctx, profilePath(d.Email))
	if err == nil {
		return ErrEmailTaken
	}
	if !errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("creating doctor: %w", err)
	}
	doc, err := docstore.Encode(d)
	if err != nil {
		return fmt.Errorf("creating doctor: %w", err)
	}
	if err := r.store.Set(ctx, profilePath(d.Email), doc, false); err != nil {
		return fmt.Errorf("creating doctor: %w", err)
	}
	return nil
}

func (r *DocRepository) Get(ctx context.Context, email string) (*Doctor, error) {
	doc, err := r.store.Get(ctx, profilePath(email))
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading doctor: %w", err)
	}
	var d Doctor
	if err := docstore.Decode(doc, &d); err != nil {
		return nil, fmt.Errorf("loading doctor: %w", err)
	}
	return &d, nil
}
