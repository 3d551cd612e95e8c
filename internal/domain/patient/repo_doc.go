package patient

import (
	"context"
	"errors"
	"fmt"

	"github.com/dentalos/clinic/internal/platform/docstore"
)

// DocRepository stores patients at doctors/{email}/patients/{file_id}.
type DocRepository struct {
	store docstore.Store
}

func NewDocRepository(store docstore.Store) *DocRepository {
	return &DocRepository{store: store}
}

func path(doctorEmail, fileID string) string {
	return fmt.Sprintf("doctors/%s/patients/%s", doctorEmail, fileID)
}

func collection(doctorEmail string) string {
	return fmt.Sprintf("doctors/%s/patients", doctorEmail)
}

func (r *DocRepository) Create(ctx context.Context, doctorEmail string, p *Patient) error {
	if _, err := r.store.Get(ctx, path(doctorEmail, p.FileID)); err == nil {
		return ErrConflict
	} else if !errors.Is(err, docstore.ErrNotFound) {
		return fmt.Errorf("checking patient: %w", err)
	}

	doc, err := docstore.Encode(p)
	if err != nil {
		return fmt.Errorf("creating patient: %w", err)
	}
	if err := r.store.Set(ctx, path(doctorEmail, p.FileID), doc, false); err != nil {
		return fmt.Errorf("creating patient: %w", err)
	}
	return nil
}

func (r *DocRepository) Get(ctx context.Context, doctorEmail, fileID string) (*Patient, error) {
	doc, err := r.store.Get(ctx, path(doctorEmail, fileID))
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading patient: %w", err)
	}
	var p Patient
	if err := docstore.Decode(doc, &p); err != nil {
		return nil, fmt.Errorf("loading patient: %w", err)
	}
	return &p, nil
}

func (r *DocRepository) List(ctx context.Context, doctorEmail string) ([]*Patient, error) {
	docs, err := r.store.Stream(ctx, collection(doctorEmail))
	if err != nil {
		return nil, fmt.Errorf("listing patients: %w", err)
	}
	out := make([]*Patient, 0, len(docs))
	for _, doc := range docs {
		var p Patient
		if err := docstore.Decode(doc.Data, &p); err != nil {
			return nil, fmt.Errorf("listing patients: %w", err)
		}
		out = append(out, &p)
	}
	return out, nil
}

func (r *DocRepository) UpdateFields(ctx context.Context, doctorEmail, fileID string, fields map[string]interface{}) error {
	err := r.store.Update(ctx, path(doctorEmail, fileID), fields)
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("updating patient: %w", err)
	}
	return nil
}
