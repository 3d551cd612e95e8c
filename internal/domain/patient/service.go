package patient

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/dentalos/clinic/internal/domain/chart"
	"github.com/dentalos/clinic/internal/domain/treatment"
	"github.com/dentalos/clinic/internal/platform/docstore"
	"github.com/dentalos/clinic/internal/platform/imaging"
	"github.com/dentalos/clinic/internal/platform/report"
)

// SettingsSource exposes the parts of the doctor's settings the patient flows
// need.
type SettingsSource interface {
	CurrencySymbol(ctx context.Context, doctorEmail string) (string, error)
}

type Service struct {
	repo     Repository
	images   imaging.Host
	reports  *report.Generator
	settings SettingsSource
	now      func() time.Time
}

func NewService(repo Repository, images imaging.Host, reports *report.Generator, settings SettingsSource) *Service {
	return &Service{repo: repo, images: images, reports: reports, settings: settings, now: time.Now}
}

// Register creates a new patient with an empty chart and plan.
func (s *Service) Register(ctx context.Context, doctorEmail string, p *Patient) error {
	if p.PatientType == "" {
		p.PatientType = "adult"
	}
	if err := p.Validate(); err != nil {
		return err
	}
	if p.DentalChart == nil {
		p.DentalChart = map[string]string{}
	}
	if p.TreatmentPlan == nil {
		p.TreatmentPlan = []treatment.Entry{}
	}
	if p.XRayImages == nil {
		p.XRayImages = []XRay{}
	}
	return s.repo.Create(ctx, doctorEmail, p)
}

// Get fetches a patient by file id.
func (s *Service) Get(ctx context.Context, doctorEmail, fileID string) (*Patient, error) {
	return s.repo.Get(ctx, doctorEmail, fileID)
}

// List returns all of the doctor's patients.
func (s *Service) List(ctx context.Context, doctorEmail string) ([]*Patient, error) {
	return s.repo.List(ctx, doctorEmail)
}

// EditRequest carries the mutable demographic fields. FileID is immutable.
type EditRequest struct {
	Name        string `json:"name"`
	Age         int    `json:"age"`
	Gender      string `json:"gender"`
	PatientType string `json:"patient_type"`
}

// Edit updates a patient's demographics.
func (s *Service) Edit(ctx context.Context, doctorEmail, fileID string, req EditRequest) (*Patient, error) {
	p, err := s.repo.Get(ctx, doctorEmail, fileID)
	if err != nil {
		return nil, err
	}

	if req.Name != "" {
		p.Name = req.Name
	}
	if req.Age != 0 {
		if req.Age < 1 || req.Age > 150 {
			return nil, fmt.Errorf("age must be between 1 and 150")
		}
		p.Age = req.Age
	}
	if req.Gender != "" {
		p.Gender = req.Gender
	}
	if req.PatientType != "" {
		if req.PatientType != "adult" && req.PatientType != "child" {
			return nil, fmt.Errorf("patient_type must be adult or child")
		}
		p.PatientType = req.PatientType
	}

	fields := map[string]interface{}{
		"name":         p.Name,
		"age":          p.Age,
		"gender":       p.Gender,
		"patient_type": p.PatientType,
	}
	if err := s.repo.UpdateFields(ctx, doctorEmail, fileID, fields); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateChart applies pending tooth edits over the stored chart and persists
// the full resolved map when anything changed.
func (s *Service) UpdateChart(ctx context.Context, doctorEmail, fileID string, pending map[string]string) (chart.Result, error) {
	for _, condition := range pending {
		if !chart.IsKnownCondition(condition) {
			return chart.Result{}, fmt.Errorf("unknown condition: %s", condition)
		}
	}

	p, err := s.repo.Get(ctx, doctorEmail, fileID)
	if err != nil {
		return chart.Result{}, err
	}
	for tooth := range pending {
		if !chart.IsValidTooth(p.PatientType, tooth) {
			return chart.Result{}, fmt.Errorf("tooth %s is not part of the %s layout", tooth, p.PatientType)
		}
	}

	res := chart.Apply(p.PatientType, p.DentalChart, pending)
	if !res.Changed {
		return res, nil
	}

	encoded := make(map[string]interface{}, len(res.Chart))
	for tooth, condition := range res.Chart {
		encoded[tooth] = condition
	}
	err = s.repo.UpdateFields(ctx, doctorEmail, fileID, map[string]interface{}{
		"dental_chart": encoded,
	})
	if err != nil {
		return chart.Result{}, err
	}
	return res, nil
}

// AddXRay uploads a photo to the image host and appends its record to the
// patient document.
func (s *Service) AddXRay(ctx context.Context, doctorEmail, fileID, fileName, contentType, caption string, content io.Reader) (*XRay, error) {
	p, err := s.repo.Get(ctx, doctorEmail, fileID)
	if err != nil {
		return nil, err
	}

	params := imaging.UploadParams{
		FileName:    fileName,
		ContentType: contentType,
		Folder:      fmt.Sprintf("clinic/%s/%s", doctorEmail, fileID),
		Tags:        []string{doctorEmail, fileID, p.Name},
	}
	img, err := s.images.Upload(ctx, params, content)
	if err != nil {
		return nil, fmt.Errorf("uploading x-ray: %w", err)
	}

	if caption == "" {
		caption = "X-Ray for " + p.Name
	}
	record := XRay{
		PublicID:  img.PublicID,
		URL:       img.URL,
		CreatedAt: s.now().UTC().Format(time.RFC3339),
		Caption:   caption,
		Format:    img.Format,
		Width:     img.Width,
		Height:    img.Height,
	}

	images := append(p.XRayImages, record)
	if err := s.saveXRays(ctx, doctorEmail, fileID, images); err != nil {
		return nil, err
	}
	return &record, nil
}

// DeleteXRay removes the record at index and asks the host to destroy the
// underlying asset.
func (s *Service) DeleteXRay(ctx context.Context, doctorEmail, fileID string, index int) error {
	p, err := s.repo.Get(ctx, doctorEmail, fileID)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(p.XRayImages) {
		return fmt.Errorf("x-ray index %d out of range", index)
	}

	removed := p.XRayImages[index]
	images := append(p.XRayImages[:index:index], p.XRayImages[index+1:]...)
	if err := s.saveXRays(ctx, doctorEmail, fileID, images); err != nil {
		return err
	}

	if err := s.images.Destroy(ctx, removed.PublicID); err != nil {
		return fmt.Errorf("destroying hosted asset: %w", err)
	}
	return nil
}

func (s *Service) saveXRays(ctx context.Context, doctorEmail, fileID string, images []XRay) error {
	encoded := make([]interface{}, len(images))
	for i, img := range images {
		m, err := docstore.Encode(img)
		if err != nil {
			return err
		}
		encoded[i] = m
	}
	return s.repo.UpdateFields(ctx, doctorEmail, fileID, map[string]interface{}{
		"xray_images": encoded,
	})
}

// Report renders the patient's treatment plan PDF.
func (s *Service) Report(ctx context.Context, doctorEmail, doctorName, fileID string, discount float64, vatEnabled bool) ([]byte, string, error) {
	p, err := s.repo.Get(ctx, doctorEmail, fileID)
	if err != nil {
		return nil, "", err
	}

	currency, err := s.settings.CurrencySymbol(ctx, doctorEmail)
	if err != nil {
		return nil, "", err
	}

	summary := treatment.ComputeCost(p.TreatmentPlan, discount, vatEnabled)

	params := report.Params{
		DoctorName:  doctorName,
		PatientName: p.Name,
		Currency:    currency,
		TotalCost:   summary.Subtotal,
		Discount:    summary.DiscountApplied,
		VAT:         summary.VATApplied,
	}
	if len(p.TreatmentPlan) > 0 {
		first := p.TreatmentPlan[0]
		params.HasCondition = first.Condition != ""
		params.HasStartDate = first.StartDate != ""
	}
	for _, e := range p.TreatmentPlan {
		params.Rows = append(params.Rows, report.PlanRow{
			Tooth:     e.Tooth,
			Condition: e.Condition,
			Procedure: e.Procedure,
			StartDate: e.StartDate,
			Cost:      e.Cost,
		})
	}
	for _, img := range p.XRayImages {
		params.XRays = append(params.XRays, report.XRay{URL: img.URL, Caption: img.Caption})
	}

	pdf, err := s.reports.Generate(ctx, params)
	if err != nil {
		return nil, "", err
	}
	return pdf, report.Filename(p.Name), nil
}
