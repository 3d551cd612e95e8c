// Package treatment holds the treatment plan domain: plan entries, the
// duplicate guard, bulk editing, and the cost engine.
package treatment

// Entry is one procedure line of a patient's treatment plan. The JSON keys
// follow the stored document format, which uses display-style names.
type Entry struct {
	Tooth     string  `json:"Tooth"`
	Condition string  `json:"Condition,omitempty"`
	Procedure string  `json:"Procedure"`
	Cost      float64 `json:"Cost"`
	Status    string  `json:"Status"`
	StartDate string  `json:"Start Date"`
}

// StatusPending is the status assigned to newly added entries.
const StatusPending = "Pending"

// ValidStatuses enumerates the recognized entry statuses.
var ValidStatuses = map[string]bool{
	"Pending":     true,
	"In Progress": true,
	"Completed":   true,
}
