package treatment

import (
	"context"
	"errors"
	"fmt"

	"github.com/dentalos/clinic/internal/platform/docstore"
)

// ErrPatientNotFound is returned when the patient document does not exist.
var ErrPatientNotFound = errors.New("patient not found")

// DocPlanRepository stores the plan inside the patient document's
// treatment_plan field at doctors/{email}/patients/{file_id}.
type DocPlanRepository struct {
	store docstore.Store
}

func NewDocPlanRepository(store docstore.Store) *DocPlanRepository {
	return &DocPlanRepository{store: store}
}

func patientPath(doctorEmail, fileID string) string {
	return fmt.Sprintf("doctors/%s/patients/%s", doctorEmail, fileID)
}

func (r *DocPlanRepository) GetPlan(ctx context.Context, doctorEmail, fileID string) ([]Entry, error) {
	doc, err := r.store.Get(ctx, patientPath(doctorEmail, fileID))
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading treatment plan: %w", err)
	}

	raw, ok := doc["treatment_plan"]
	if !ok || raw == nil {
		return nil, nil
	}
	var wrapper struct {
		Plan []Entry `json:"treatment_plan"`
	}
	if err := docstore.Decode(map[string]interface{}{"treatment_plan": raw}, &wrapper); err != nil {
		return nil, fmt.Errorf("loading treatment plan: %w", err)
	}
	return wrapper.Plan, nil
}

func (r *DocPlanRepository) SavePlan(ctx context.Context, doctorEmail, fileID string, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	encoded, err := docstore.Encode(struct {
		Plan []Entry `json:"treatment_plan"`
	}{Plan: entries})
	if err != nil {
		return fmt.Errorf("saving treatment plan: %w", err)
	}
	err = r.store.Update(ctx, patientPath(doctorEmail, fileID), encoded)
	if errors.Is(err, docstore.ErrNotFound) {
		return ErrPatientNotFound
	}
	if err != nil {
		return fmt.Errorf("saving treatment plan: %w", err)
	}
	return nil
}
