package treatment

import "context"

// PlanRepository reads and writes a patient's treatment plan. Every write
// replaces the full list; the stored plan is the sole source of truth.
type PlanRepository interface {
	GetPlan(ctx context.Context, doctorEmail, fileID string) ([]Entry, error)
	SavePlan(ctx context.Context, doctorEmail, fileID string, entries []Entry) error
}

// PriceSource exposes the doctor's configured procedure prices.
type PriceSource interface {
	Prices(ctx context.Context, doctorEmail string) (map[string]float64, error)
}
