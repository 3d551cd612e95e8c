// Package settings manages a doctor's clinic configuration: the treatment
// procedure list, its price estimates, and the billing currency.
package settings

import "strings"

// Settings is the per-doctor configuration document.
type Settings struct {
	TreatmentProcedures []string           `json:"treatment_procedures"`
	PriceEstimates      map[string]float64 `json:"price_estimates"`
	Currency            string             `json:"currency"`
}

// Defaults returns the settings created on a doctor's first access.
func Defaults() *Settings {
	return &Settings{
		TreatmentProcedures: []string{"Cleaning"},
		PriceEstimates:      map[string]float64{"Cleaning": 100},
		Currency:            "SAR",
	}
}

// ValidCurrencies enumerates the supported billing currencies.
var ValidCurrencies = map[string]bool{"SAR": true, "INR": true}

// CurrencySymbol maps a currency code to its display symbol.
func CurrencySymbol(currency string) string {
	if currency == "INR" {
		return "₹"
	}
	return "SAR"
}

// Symbol returns the display symbol for these settings' currency.
func (s *Settings) Symbol() string {
	return CurrencySymbol(s.Currency)
}

// HasProcedure reports whether the named procedure is configured.
func (s *Settings) HasProcedure(name string) bool {
	for _, p := range s.TreatmentProcedures {
		if p == name {
			return true
		}
	}
	return false
}

// Price returns the configured price for a procedure, zero when unknown.
func (s *Settings) Price(name string) float64 {
	return s.PriceEstimates[name]
}

// TitleCase normalizes a procedure name the way the settings form does:
// every word starts upper case with the remainder lowered.
func TitleCase(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}
