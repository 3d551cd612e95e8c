package chart

// Result is the outcome of applying edits over a stored chart.
type Result struct {
	// Chart holds every tooth of the layout with its resolved condition.
	Chart map[string]string
	// Changed is true when any tooth differs from the stored chart.
	Changed bool
	// PreSelected is the last non-Healthy tooth in layout order, used as the
	// default tooth for new treatment plan entries. Empty when all healthy.
	PreSelected string
}

// Apply resolves the condition of every tooth in the patient's layout.
// Precedence per tooth: pending edit, then stored value, then Healthy.
func Apply(patientType string, stored, pending map[string]string) Result {
	res := Result{Chart: make(map[string]string)}
	for _, tooth := range Teeth(patientType) {
		condition := HealthyCondition
		if v, ok := stored[tooth]; ok && v != "" {
			condition = v
		}
		if v, ok := pending[tooth]; ok && v != "" {
			condition = v
		}
		res.Chart[tooth] = condition

		if condition != stored[tooth] && !(condition == HealthyCondition && stored[tooth] == "") {
			res.Changed = true
		}
		if condition != HealthyCondition {
			res.PreSelected = tooth
		}
	}
	return res
}
