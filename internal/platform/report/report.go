// Package report renders the printable treatment plan PDF handed to patients.
// The document carries the clinic header, patient details, embedded X-ray
// photos, the procedure table and the cost summary.
package report

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/dentalos/clinic/internal/platform/imaging"
)

// XRay is one hosted photo to embed.
type XRay struct {
	URL     string
	Caption string
}

// PlanRow is one procedure line of the report table.
type PlanRow struct {
	Tooth     string
	Condition string
	Procedure string
	StartDate string
	Cost      float64
}

// Params carries everything the report needs.
type Params struct {
	DoctorName  string
	PatientName string
	Currency    string
	Rows        []PlanRow
	// Condition and start date columns only render when any row carries them.
	HasCondition bool
	HasStartDate bool
	TotalCost    float64
	Discount     float64
	VAT          float64
	XRays        []XRay
}

// Generator builds treatment plan PDFs, fetching X-ray photos through the
// image host.
type Generator struct {
	images imaging.Host
	now    func() time.Time
}

func NewGenerator(images imaging.Host) *Generator {
	return &Generator{images: images, now: time.Now}
}

// Filename returns the download name for a patient's report.
func Filename(patientName string) string {
	return strings.ReplaceAll(patientName, " ", "_") + "_treatment_plan.pdf"
}

// Generate renders the PDF and returns its bytes.
func (g *Generator) Generate(ctx context.Context, p Params) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.SetMargins(15, 15, 15)

	currency := p.Currency
	if currency == "₹" {
		currency = "INR"
	}

	now := g.now()
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Dental Treatment Plan", "", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(0, 6, "Date: "+now.Format("January 02, 2006"), "", 1, "R", false, 0, "")

	pdf.Ln(5)
	g.sectionHeader(pdf, "Patient Information")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(0, 7, titleCase("Dentist: "+p.DoctorName), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, titleCase("Patient Name: "+p.PatientName), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 7, "Report ID: "+now.Format("20060102150405"), "", 1, "L", false, 0, "")
	pdf.Ln(5)

	if len(p.XRays) > 0 {
		g.renderXRays(ctx, pdf, p.XRays)
	}

	g.renderPlanTable(pdf, p, currency)
	g.renderCostSummary(pdf, p, currency)

	pdf.Ln(15)
	pdf.SetFont("Arial", "I", 8)
	pdf.CellFormat(0, 5, "Generated by Dental Treatment Planner", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 5,
		fmt.Sprintf("This report was generated on %s at %s.",
			now.Format("January 02, 2006"), now.Format("15:04")),
		"", 1, "C", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (g *Generator) sectionHeader(pdf *fpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
	pdf.SetDrawColor(100, 100, 100)
	pdf.Line(15, pdf.GetY(), 195, pdf.GetY())
	pdf.Ln(5)
}

// renderXRays lays photos out two per row, captioned, with a textual fallback
// for any photo that cannot be fetched or decoded.
func (g *Generator) renderXRays(ctx context.Context, pdf *fpdf.Fpdf, xrays []XRay) {
	if pdf.GetY() > 180 {
		pdf.AddPage()
	}
	g.sectionHeader(pdf, "Dental X-Ray Images")
	pdf.Ln(5)

	const (
		perRow      = 2
		imageWidth  = 80.0
		imageHeight = 65.0
	)

	x := 15.0
	y := pdf.GetY()

	for i, xray := range xrays {
		if i > 0 && i%perRow == 0 {
			x = 15.0
			y += imageHeight + 15
			if y > 250 {
				pdf.AddPage()
				y = 25
			}
		}

		if err := g.placeImage(ctx, pdf, xray.URL, i, x, y, imageWidth); err != nil {
			pdf.SetFont("Arial", "", 10)
			pdf.SetXY(x, y)
			pdf.MultiCell(imageWidth, 10, "Error loading image", "", "C", false)
			x += imageWidth + 15
			continue
		}

		caption := xray.Caption
		if caption == "" {
			caption = "X-Ray Image"
		}
		pdf.SetXY(x, y+imageHeight-10)
		pdf.SetFont("Arial", "", 8)
		pdf.MultiCell(imageWidth, 5, caption, "", "C", false)

		x += imageWidth + 15
	}

	pdf.SetY(y + imageHeight + 10)
}

func (g *Generator) placeImage(ctx context.Context, pdf *fpdf.Fpdf, url string, idx int, x, y, w float64) error {
	data, err := g.images.Fetch(ctx, url)
	if err != nil {
		return err
	}
	imageType := sniffImageType(data)
	if imageType == "" {
		return fmt.Errorf("unsupported image data at %s", url)
	}

	name := fmt.Sprintf("xray-%d", idx)
	opts := fpdf.ImageOptions{ImageType: imageType}
	pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if pdf.Err() {
		err := pdf.Error()
		pdf.ClearError()
		return err
	}
	pdf.ImageOptions(name, x, y, w, 0, false, opts, 0, "")
	return nil
}

func (g *Generator) renderPlanTable(pdf *fpdf.Fpdf, p Params, currency string) {
	pdf.AddPage()
	g.sectionHeader(pdf, "Treatment Plan Details")

	if len(p.Rows) == 0 {
		pdf.SetFont("Arial", "", 11)
		pdf.CellFormat(0, 10, "No treatment procedures have been defined yet.", "", 1, "L", false, 0, "")
		return
	}

	type column struct {
		name  string
		width float64
	}
	columns := []column{{"Tooth", 20}}
	if p.HasCondition {
		columns = append(columns, column{"Condition", 35})
	}
	columns = append(columns, column{"Procedure", 55})
	if p.HasStartDate {
		columns = append(columns, column{"Start Date", 35})
	}
	columns = append(columns, column{"Cost", 25})

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	for _, col := range columns {
		pdf.CellFormat(col.width, 10, col.name, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for idx, row := range p.Rows {
		fill := idx%2 == 1
		if fill {
			pdf.SetFillColor(245, 245, 245)
		}
		for _, col := range columns {
			var value string
			align := "L"
			switch col.name {
			case "Tooth":
				value = row.Tooth
			case "Condition":
				value = row.Condition
			case "Procedure":
				value = row.Procedure
			case "Start Date":
				value = row.StartDate
			case "Cost":
				value = fmt.Sprintf("%s %.2f", currency, row.Cost)
				align = "R"
			}
			pdf.CellFormat(col.width, 8, value, "1", 0, align, fill, 0, "")
		}
		pdf.Ln(-1)
	}
}

func (g *Generator) renderCostSummary(pdf *fpdf.Fpdf, p Params, currency string) {
	pdf.Ln(10)
	g.sectionHeader(pdf, "Cost Summary")

	const (
		labelWidth  = 120.0
		amountWidth = 50.0
	)

	finalCost := p.TotalCost - p.Discount + p.VAT

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(245, 245, 245)

	pdf.CellFormat(labelWidth, 8, "Total Treatment Cost", "1", 0, "L", true, 0, "")
	pdf.CellFormat(amountWidth, 8, fmt.Sprintf("%s %.2f", currency, p.TotalCost), "1", 1, "R", true, 0, "")

	if p.Discount > 0 {
		pdf.CellFormat(labelWidth, 8, "Discount", "1", 0, "L", false, 0, "")
		pdf.CellFormat(amountWidth, 8, fmt.Sprintf("-%s %.2f", currency, p.Discount), "1", 1, "R", false, 0, "")
	}
	if p.VAT > 0 {
		pdf.CellFormat(labelWidth, 8, "VAT (15%)", "1", 0, "L", false, 0, "")
		pdf.CellFormat(amountWidth, 8, fmt.Sprintf("+%s %.2f", currency, p.VAT), "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(labelWidth, 8, "Final Total", "1", 0, "L", true, 0, "")
	pdf.CellFormat(amountWidth, 8, fmt.Sprintf("%s %.2f", currency, finalCost), "1", 1, "R", true, 0, "")
}

func sniffImageType(data []byte) string {
	switch {
	case len(data) > 8 && bytes.HasPrefix(data, []byte("\x89PNG\r\n\x1a\n")):
		return "PNG"
	case len(data) > 3 && bytes.HasPrefix(data, []byte{0xFF, 0xD8, 0xFF}):
		return "JPG"
	case len(data) > 6 && bytes.HasPrefix(data, []byte("GIF8")):
		return "GIF"
	default:
		return ""
	}
}

// titleCase upper-cases the first letter of every space-separated word.
func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
