// Package alert holds the expiry and low-stock alerting rules for the supply
// tracker, including the once-per-armed-period email state machine.
package alert

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dentalos/clinic/internal/domain/inventory"
)

// DefaultDaysThreshold is the expiry warning window when none is given.
const DefaultDaysThreshold = 30

// MaxDaysThreshold bounds the caller-adjustable expiry window.
const MaxDaysThreshold = 180

// ExpiringItem is one row of the expiry alert list and one line of the
// alert email.
type ExpiringItem struct {
	Name          string `json:"name"`
	Quantity      int    `json:"quantity"`
	ExpiryDate    string `json:"expiry_date"`
	ExpiryDisplay string `json:"expiry_display"`
	DaysLeft      int    `json:"days_left"`
}

// Evaluate returns the items expiring within daysThreshold days, soonest
// first. Records with malformed dates are skipped.
func Evaluate(items []inventory.StoredItem, today time.Time, daysThreshold int) []ExpiringItem {
	expiring := make([]ExpiringItem, 0)
	for _, stored := range items {
		days, err := stored.DaysUntilExpiry(today)
		if err != nil {
			continue
		}
		if days <= daysThreshold {
			expiring = append(expiring, ExpiringItem{
				Name:          stored.DisplayName,
				Quantity:      stored.Quantity,
				ExpiryDate:    stored.ExpiryDate,
				ExpiryDisplay: inventory.FormatDate(stored.ExpiryDate),
				DaysLeft:      days,
			})
		}
	}
	sort.SliceStable(expiring, func(i, j int) bool { return expiring[i].DaysLeft < expiring[j].DaysLeft })
	return expiring
}

// LowStockItem is one row of the low-stock report.
type LowStockItem struct {
	Name          string `json:"name"`
	Quantity      int    `json:"quantity"`
	Threshold     int    `json:"threshold"`
	ExpiryDisplay string `json:"expiry_display"`
}

// LowStock filters items at or below their threshold. Items without a stored
// threshold fall back to the caller's global one.
func LowStock(items []inventory.StoredItem, globalThreshold int) []LowStockItem {
	low := make([]LowStockItem, 0)
	for _, stored := range items {
		threshold := stored.LowThreshold
		if threshold == 0 {
			threshold = globalThreshold
		}
		if stored.Quantity <= threshold {
			low = append(low, LowStockItem{
				Name:          stored.DisplayName,
				Quantity:      stored.Quantity,
				Threshold:     threshold,
				ExpiryDisplay: inventory.FormatDate(stored.ExpiryDate),
			})
		}
	}
	return low
}

// BuildEmail renders the alert subject and body for a set of expiring items.
func BuildEmail(daysThreshold int, items []ExpiringItem) (subject, body string) {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = fmt.Sprintf("- %s: %d units, expires in %d days (%s)",
			item.Name, item.Quantity, item.DaysLeft, item.ExpiryDisplay)
	}
	subject = fmt.Sprintf("Dental Supply Alert: Items Expiring Within %d Days", daysThreshold)
	body = fmt.Sprintf(`
Hello,

This is an automated alert from your Dental Supply Tracker.

The following items in your inventory are expiring within %d days:

%s

Please review these items and take appropriate action.

Regards,
Dental Supply Tracker
`, daysThreshold, strings.Join(lines, "\n"))
	return subject, body
}
