package treatment

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrDuplicateEntry is returned when a (tooth, procedure) pair already exists
// in the plan.
var ErrDuplicateEntry = errors.New("procedure already exists for this tooth")

type Service struct {
	repo   PlanRepository
	prices PriceSource
	now    func() time.Time
}

func NewService(repo PlanRepository, prices PriceSource) *Service {
	return &Service{repo: repo, prices: prices, now: time.Now}
}

// GetPlan returns a patient's current treatment plan.
func (s *Service) GetPlan(ctx context.Context, doctorEmail, fileID string) ([]Entry, error) {
	return s.repo.GetPlan(ctx, doctorEmail, fileID)
}

// AddProcedure appends a new entry to the plan. The pair (tooth, procedure)
// must not already exist; the cost snapshots the currently configured price,
// zero for procedures without one.
func (s *Service) AddProcedure(ctx context.Context, doctorEmail, fileID, tooth, procedure, condition string) (Entry, []Entry, error) {
	if tooth == "" || procedure == "" {
		return Entry{}, nil, fmt.Errorf("tooth and procedure are required")
	}

	plan, err := s.repo.GetPlan(ctx, doctorEmail, fileID)
	if err != nil {
		return Entry{}, nil, err
	}
	for _, e := range plan {
		if e.Tooth == tooth && e.Procedure == procedure {
			return Entry{}, nil, ErrDuplicateEntry
		}
	}

	prices, err := s.prices.Prices(ctx, doctorEmail)
	if err != nil {
		return Entry{}, nil, err
	}
	if condition == "" {
		condition = "Healthy"
	}

	entry := Entry{
		Tooth:     tooth,
		Condition: condition,
		Procedure: procedure,
		Cost:      prices[procedure],
		Status:    StatusPending,
		StartDate: s.now().Format("2006-01-02"),
	}
	plan = append(plan, entry)

	if err := s.repo.SavePlan(ctx, doctorEmail, fileID, plan); err != nil {
		return Entry{}, nil, err
	}
	return entry, plan, nil
}

// RowUpdate is one surviving row of the management form, addressed by its
// index in the current plan.
type RowUpdate struct {
	Index     int    `json:"index"`
	Procedure string `json:"procedure"`
	Status    string `json:"status"`
	StartDate string `json:"start_date"`
}

// BulkUpdate replaces the plan wholesale. Rows listed in deletions are
// dropped; survivors take the submitted procedure, status and start date.
// A survivor is re-priced only when its procedure changed; otherwise its cost
// snapshot is preserved. The duplicate pair guard is not re-applied here, so
// edits can produce duplicate (tooth, procedure) pairs.
func (s *Service) BulkUpdate(ctx context.Context, doctorEmail, fileID string, updates []RowUpdate, deletions []int) ([]Entry, error) {
	plan, err := s.repo.GetPlan(ctx, doctorEmail, fileID)
	if err != nil {
		return nil, err
	}

	prices, err := s.prices.Prices(ctx, doctorEmail)
	if err != nil {
		return nil, err
	}

	deleted := make(map[int]bool, len(deletions))
	for _, idx := range deletions {
		deleted[idx] = true
	}
	edits := make(map[int]RowUpdate, len(updates))
	for _, u := range updates {
		if u.Index < 0 || u.Index >= len(plan) {
			return nil, fmt.Errorf("row index %d out of range", u.Index)
		}
		edits[u.Index] = u
	}

	updated := make([]Entry, 0, len(plan))
	for i, item := range plan {
		if deleted[i] {
			continue
		}

		edit, ok := edits[i]
		if !ok {
			updated = append(updated, item)
			continue
		}

		procedure := item.Procedure
		cost := item.Cost
		if edit.Procedure != "" && edit.Procedure != item.Procedure {
			procedure = edit.Procedure
			if price, known := prices[procedure]; known {
				cost = price
			}
		}

		status := item.Status
		if edit.Status != "" {
			if !ValidStatuses[edit.Status] {
				return nil, fmt.Errorf("invalid status: %s", edit.Status)
			}
			status = edit.Status
		}

		startDate := item.StartDate
		if edit.StartDate != "" {
			if _, err := time.Parse("2006-01-02", edit.StartDate); err != nil {
				return nil, fmt.Errorf("invalid start date: %s", edit.StartDate)
			}
			startDate = edit.StartDate
		}

		updated = append(updated, Entry{
			Tooth:     item.Tooth,
			Procedure: procedure,
			Cost:      cost,
			Status:    status,
			StartDate: startDate,
		})
	}

	if err := s.repo.SavePlan(ctx, doctorEmail, fileID, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// Cost prices the patient's current plan.
func (s *Service) Cost(ctx context.Context, doctorEmail, fileID string, discount float64, vatEnabled bool) (CostSummary, error) {
	plan, err := s.repo.GetPlan(ctx, doctorEmail, fileID)
	if err != nil {
		return CostSummary{}, err
	}
	return ComputeCost(plan, discount, vatEnabled), nil
}
