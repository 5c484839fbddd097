// Package status derives a domain's lifecycle state from its stored expiry
// date and raw WHOIS text. Nothing here is persisted: callers classify on
// every read so the result always reflects the current wall clock.
package status

import (
	"math"
	"strings"
	"time"
)

type Status string

const (
	Green   Status = "green"
	Yellow  Status = "yellow"
	Orange  Status = "orange"
	Red     Status = "red"
	Blue    Status = "blue"
	Unknown Status = "unknown"
)

// All lists every status in display order.
var All = []Status{Green, Yellow, Orange, Red, Blue, Unknown}

const (
	OrangeThresholdDays = 15
	YellowThresholdDays = 30
)

const msPerDay = 24 * 60 * 60 * 1000

// redemptionMarkers are matched case-insensitively against WHOIS text.
var redemptionMarkers = []string{"redemption", "pending delete"}

type Classification struct {
	Status          Status `json:"status"`
	DaysUntilExpiry *int   `json:"days_until_expiry"`
}

// Classify maps an expiry date and WHOIS text to a status as observed at now.
// A nil expiry is the only input that yields Unknown.
func Classify(expiry *time.Time, whoisData *string, now time.Time) Classification {
	if expiry == nil {
		return Classification{Status: Unknown}
	}

	days := DaysUntil(*expiry, now)
	c := Classification{DaysUntilExpiry: &days}

	switch {
	case whoisData != nil && IsRedemption(*whoisData):
		c.Status = Blue
	case days < 0:
		c.Status = Red
	case days <= OrangeThresholdDays:
		c.Status = Orange
	case days <= YellowThresholdDays:
		c.Status = Yellow
	default:
		c.Status = Green
	}
	return c
}

// DaysUntil returns the ceiling of the millisecond distance from now to
// expiry, expressed in days.
func DaysUntil(expiry, now time.Time) int {
	diffMs := expiry.UnixMilli() - now.UnixMilli()
	return int(math.Ceil(float64(diffMs) / msPerDay))
}

// IsRedemption reports whether WHOIS text signals a redemption or
// pending-delete period.
func IsRedemption(whoisData string) bool {
	lower := strings.ToLower(whoisData)
	for _, marker := range redemptionMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
