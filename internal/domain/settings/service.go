package settings

import (
	"context"
	"errors"
	"fmt"
)

// ErrDuplicateProcedure is returned when adding a procedure that already exists.
var ErrDuplicateProcedure = errors.New("procedure already exists")

// ErrUnknownProcedure is returned when deleting a procedure that is not configured.
var ErrUnknownProcedure = errors.New("procedure not found")

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get loads a doctor's settings, creating and persisting the defaults on
// first access.
func (s *Service) Get(ctx context.Context, doctorEmail string) (*Settings, error) {
	cfg, err := s.repo.Get(ctx, doctorEmail)
	if errors.Is(err, ErrNotFound) {
		cfg = Defaults()
		if err := s.repo.Save(ctx, doctorEmail, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}
	if cfg.PriceEstimates == nil {
		cfg.PriceEstimates = make(map[string]float64)
	}
	return cfg, nil
}

// AddProcedure appends a new procedure with its price. The name is
// title-cased before the uniqueness check.
func (s *Service) AddProcedure(ctx context.Context, doctorEmail, name string, price float64) (*Settings, error) {
	name = TitleCase(name)
	if name == "" {
		return nil, fmt.Errorf("procedure name is required")
	}
	if price < 0 {
		return nil, fmt.Errorf("price must not be negative")
	}

	cfg, err := s.Get(ctx, doctorEmail)
	if err != nil {
		return nil, err
	}
	if cfg.HasProcedure(name) {
		return nil, ErrDuplicateProcedure
	}

	cfg.TreatmentProcedures = append(cfg.TreatmentProcedures, name)
	cfg.PriceEstimates[name] = price
	if err := s.repo.Save(ctx, doctorEmail, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ProcedureUpdate is one row of the bulk management form.
type ProcedureUpdate struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// ReplaceProcedures applies the management form wholesale: the submitted rows
// become the procedure list in order, prices follow the submitted names.
func (s *Service) ReplaceProcedures(ctx context.Context, doctorEmail string, updates []ProcedureUpdate) (*Settings, error) {
	cfg, err := s.Get(ctx, doctorEmail)
	if err != nil {
		return nil, err
	}

	procedures := make([]string, 0, len(updates))
	prices := make(map[string]float64, len(updates))
	for _, u := range updates {
		name := TitleCase(u.Name)
		if name == "" {
			return nil, fmt.Errorf("procedure name is required")
		}
		if u.Price < 0 {
			return nil, fmt.Errorf("price must not be negative")
		}
		if _, exists := prices[name]; exists {
			return nil, fmt.Errorf("duplicate procedure %q in update", name)
		}
		procedures = append(procedures, name)
		prices[name] = u.Price
	}

	cfg.TreatmentProcedures = procedures
	cfg.PriceEstimates = prices
	if err := s.repo.Save(ctx, doctorEmail, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DeleteProcedure removes a procedure and its price entry.
func (s *Service) DeleteProcedure(ctx context.Context, doctorEmail, name string) (*Settings, error) {
	cfg, err := s.Get(ctx, doctorEmail)
	if err != nil {
		return nil, err
	}
	if !cfg.HasProcedure(name) {
		return nil, ErrUnknownProcedure
	}

	kept := cfg.TreatmentProcedures[:0]
	for _, p := range cfg.TreatmentProcedures {
		if p != name {
			kept = append(kept, p)
		}
	}
	cfg.TreatmentProcedures = kept
	delete(cfg.PriceEstimates, name)

	if err := s.repo.Save(ctx, doctorEmail, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetCurrency switches the billing currency.
func (s *Service) SetCurrency(ctx context.Context, doctorEmail, currency string) (*Settings, error) {
	if !ValidCurrencies[currency] {
		return nil, fmt.Errorf("unsupported currency: %s", currency)
	}
	cfg, err := s.Get(ctx, doctorEmail)
	if err != nil {
		return nil, err
	}
	cfg.Currency = currency
	if err := s.repo.Save(ctx, doctorEmail, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
