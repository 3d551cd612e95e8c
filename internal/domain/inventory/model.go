// Package inventory tracks the doctor's dental supply stock. Items are keyed
// by a slug of their display name plus the expiry date, so the same supply
// with two expiry dates is two independent records.
package inventory

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for expiry dates.
const DateLayout = "2006-01-02"

// DefaultLowThreshold is applied when an item is created without one.
const DefaultLowThreshold = 5

// Item is a single stock record.
type Item struct {
	Quantity     int    `json:"quantity"`
	ExpiryDate   string `json:"expiry_date"`
	LowThreshold int    `json:"low_threshold"`
	DisplayName  string `json:"display_name"`
}

// Status classifies an item for the stock dashboard.
type Status string

const (
	StatusNormal       Status = "Normal"
	StatusExpiringSoon Status = "Expiring Soon"
	StatusLowStock     Status = "Low Stock"
	StatusExpired      Status = "Expired"
	StatusOutOfStock   Status = "Out of Stock"
)

// ExpiringSoonWindow is the number of days before expiry at which an item
// starts reporting Expiring Soon.
const ExpiringSoonWindow = 30

// NormalizeName capitalizes each fully-lowercase word of a supply name and
// leaves words with existing capitals untouched, so "dental FLOSS" becomes
// "Dental FLOSS".
func NormalizeName(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		if w == strings.ToLower(w) {
			words[i] = capitalize(w)
		}
	}
	return strings.Join(words, " ")
}

func capitalize(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
}

// Slug lowercases a display name and replaces spaces with underscores.
func Slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "_")
}

// KeyFor builds the document id for a name and expiry date pair.
func KeyFor(name, expiryDate string) string {
	return fmt.Sprintf("%s_%s", Slug(name), expiryDate)
}

// DaysUntilExpiry counts the whole days from today to the item's expiry date.
// Negative values mean the item is already past its date.
func (i *Item) DaysUntilExpiry(today time.Time) (int, error) {
	expiry, err := time.Parse(DateLayout, i.ExpiryDate)
	if err != nil {
		return 0, fmt.Errorf("item %q has malformed expiry date %q", i.DisplayName, i.ExpiryDate)
	}
	t := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	return int(expiry.Sub(t).Hours() / 24), nil
}

// Classify resolves the item's status. Out of stock wins over everything,
// then expired, then low stock, then expiring soon.
func (i *Item) Classify(today time.Time) Status {
	days, err := i.DaysUntilExpiry(today)
	if err != nil {
		days = 0
	}
	threshold := i.LowThreshold
	if threshold == 0 {
		threshold = DefaultLowThreshold
	}

	status := StatusNormal
	if days <= ExpiringSoonWindow {
		status = StatusExpiringSoon
	}
	if i.Quantity <= threshold {
		status = StatusLowStock
	}
	if days <= 0 {
		status = StatusExpired
	}
	if i.Quantity == 0 {
		status = StatusOutOfStock
	}
	return status
}

// SortPriority orders statuses for display, most urgent first.
func SortPriority(s Status) int {
	switch s {
	case StatusExpired:
		return 0
	case StatusOutOfStock:
		return 1
	case StatusLowStock:
		return 2
	case StatusExpiringSoon:
		return 3
	default:
		return 4
	}
}

// FormatDate renders a stored expiry date for humans, "January 02, 2006"
// style. Unparseable input is returned unchanged.
func FormatDate(dateStr string) string {
	t, err := time.Parse(DateLayout, dateStr)
	if err != nil {
		return dateStr
	}
	return t.Format("January 02, 2006")
}
