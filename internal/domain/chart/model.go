// Package chart holds the dental chart domain: the condition catalog, the
// adult and child FDI tooth layouts, and the logic that applies pending edits
// over a patient's stored chart.
package chart

// HealthyCondition is the implicit state of any tooth without a recorded
// condition.
const HealthyCondition = "Healthy"

// DefaultColor is used for Healthy teeth and any unrecognized condition.
const DefaultColor = "#008000"

// conditionColors maps every catalog condition to its display color.
var conditionColors = map[string]string{
	"Healthy":       "#008000",
	"Decayed":       "#9B2226",
	"Missing":       "#ADB5BD",
	"Cavity":        "#6C757D",
	"Implant":       "#6C757D",
	"Extraction":    "#774936",
	"Fractured":     "#9B2226",
	"Filled":        "#007BFF",
	"Discolored":    "#FFD700",
	"Loose":         "#FF7F50",
	"Crowded":       "#800080",
	"Gingivitis":    "#FF69B4",
	"Periodontitis": "#FF0000",
	"Impacted":      "#6C757D",
	"Abrasion":      "#FF4500",
	"Anodontia":     "#ADB5BD",
	"Attrition":     "#FF8C00",
	"Erosion":       "#DAA520",
	"Hyperdontia":   "#4B0082",
}

// conditionOrder is the catalog's display order, Healthy first.
var conditionOrder = []string{
	"Healthy", "Decayed", "Missing", "Cavity", "Implant", "Extraction",
	"Fractured", "Filled", "Discolored", "Loose", "Crowded", "Gingivitis",
	"Periodontitis", "Impacted", "Abrasion", "Anodontia", "Attrition",
	"Erosion", "Hyperdontia",
}

// Conditions returns the catalog in display order.
func Conditions() []string {
	out := make([]string, len(conditionOrder))
	copy(out, conditionOrder)
	return out
}

// IsKnownCondition reports whether name is part of the catalog.
func IsKnownCondition(name string) bool {
	_, ok := conditionColors[name]
	return ok
}

// ConditionColor returns the display color for a condition, falling back to
// the default for anything outside the catalog.
func ConditionColor(name string) string {
	if color, ok := conditionColors[name]; ok {
		return color
	}
	return DefaultColor
}

// FDI tooth numbering, upper row then lower row, each reading left to right
// from the patient's perspective.
var (
	adultRows = [][]string{
		{"18", "17", "16", "15", "14", "13", "12", "11", "21", "22", "23", "24", "25", "26", "27", "28"},
		{"48", "47", "46", "45", "44", "43", "42", "41", "31", "32", "33", "34", "35", "36", "37", "38"},
	}
	childRows = [][]string{
		{"55", "54", "53", "52", "51", "61", "62", "63", "64", "65"},
		{"85", "84", "83", "82", "81", "71", "72", "73", "74", "75"},
	}
)

// Rows returns the layout rows for a patient type, defaulting to adult.
func Rows(patientType string) [][]string {
	if patientType == "child" {
		return childRows
	}
	return adultRows
}

// Teeth returns all tooth identifiers of a layout in row order.
func Teeth(patientType string) []string {
	rows := Rows(patientType)
	var out []string
	for _, row := range rows {
		out = append(out, row...)
	}
	return out
}

// IsValidTooth reports whether the tooth identifier belongs to the layout for
// the given patient type.
func IsValidTooth(patientType, tooth string) bool {
	for _, t := range Teeth(patientType) {
		if t == tooth {
			return true
		}
	}
	return false
}
