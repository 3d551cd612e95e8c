package chart

import "testing"

func TestLayouts(t *testing.T) {
	adult := Teeth("adult")
	if len(adult) != 32 {
		t.Errorf("adult layout has %d teeth, want 32", len(adult))
	}
	if adult[0] != "18" || adult[15] != "28" || adult[16] != "48" || adult[31] != "38" {
		t.Errorf("adult layout order wrong: %v", adult)
	}

	child := Teeth("child")
	if len(child) != 20 {
		t.Errorf("child layout has %d teeth, want 20", len(child))
	}
	if child[0] != "55" || child[9] != "65" || child[10] != "85" || child[19] != "75" {
		t.Errorf("child layout order wrong: %v", child)
	}

	// Unknown types fall back to the adult layout.
	if len(Teeth("")) != 32 || len(Teeth("unknown")) != 32 {
		t.Error("expected adult fallback for unspecified patient type")
	}
}

func TestConditionCatalog(t *testing.T) {
	if len(Conditions()) != 19 {
		t.Errorf("catalog has %d conditions, want 19", len(Conditions()))
	}
	if !IsKnownCondition("Decayed") || IsKnownCondition("Sparkling") {
		t.Error("IsKnownCondition misclassifies")
	}
	if ConditionColor("Filled") != "#007BFF" {
		t.Errorf("Filled color = %s", ConditionColor("Filled"))
	}
	if ConditionColor("Sparkling") != DefaultColor {
		t.Error("unknown condition must use the default color")
	}
}

func TestApply_Precedence(t *testing.T) {
	stored := map[string]string{"11": "Decayed", "12": "Filled"}
	pending := map[string]string{"11": "Missing"}

	res := Apply("adult", stored, pending)

	if res.Chart["11"] != "Missing" {
		t.Errorf("pending edit should win, got %s", res.Chart["11"])
	}
	if res.Chart["12"] != "Filled" {
		t.Errorf("stored value should survive, got %s", res.Chart["12"])
	}
	if res.Chart["13"] != HealthyCondition {
		t.Errorf("untouched tooth should be Healthy, got %s", res.Chart["13"])
	}
	if !res.Changed {
		t.Error("expected Changed when a pending edit differs from storage")
	}
}

func TestApply_NoChanges(t *testing.T) {
	stored := map[string]string{"11": "Decayed"}

	res := Apply("adult", stored, nil)
	if res.Changed {
		t.Error("applying with no pending edits must not report change")
	}
	if res.PreSelected != "11" {
		t.Errorf("PreSelected = %s, want 11", res.PreSelected)
	}
}

func TestApply_LastUnhealthyWins(t *testing.T) {
	pending := map[string]string{"11": "Decayed", "36": "Cavity"}

	res := Apply("adult", nil, pending)
	// 36 comes after 11 in layout order.
	if res.PreSelected != "36" {
		t.Errorf("PreSelected = %s, want 36", res.PreSelected)
	}
}

func TestApply_AllHealthy(t *testing.T) {
	res := Apply("child", nil, nil)
	if res.Changed {
		t.Error("empty chart must not report change")
	}
	if res.PreSelected != "" {
		t.Errorf("PreSelected = %q, want empty", res.PreSelected)
	}
	if len(res.Chart) != 20 {
		t.Errorf("child chart has %d teeth, want 20", len(res.Chart))
	}
}
