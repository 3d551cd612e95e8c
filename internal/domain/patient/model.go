// Package patient manages patient records: registration, demographics, the
// stored dental chart, X-ray photo records, and the printable report.
package patient

import (
	"fmt"

	"github.com/dentalos/clinic/internal/domain/treatment"
)

// XRay is one hosted X-ray photo attached to a patient.
type XRay struct {
	PublicID  string `json:"public_id"`
	URL       string `json:"url"`
	CreatedAt string `json:"created_at"`
	Caption   string `json:"caption"`
	Format    string `json:"format"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
}

// Patient is the stored patient document. FileID is the doctor-scoped unique
// key and never changes after registration.
type Patient struct {
	FileID        string            `json:"file_id"`
	Name          string            `json:"name"`
	Age           int               `json:"age"`
	Gender        string            `json:"gender"`
	PatientType   string            `json:"patient_type"`
	DentalChart   map[string]string `json:"dental_chart"`
	TreatmentPlan []treatment.Entry `json:"treatment_plan"`
	XRayImages    []XRay            `json:"xray_images"`
}

// Validate checks the fields required at registration.
func (p *Patient) Validate() error {
	if p.FileID == "" {
		return fmt.Errorf("file_id is required")
	}
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Age < 1 || p.Age > 150 {
		return fmt.Errorf("age must be between 1 and 150")
	}
	if p.PatientType != "adult" && p.PatientType != "child" {
		return fmt.Errorf("patient_type must be adult or child")
	}
	return nil
}
