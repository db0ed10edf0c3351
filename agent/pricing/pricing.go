// Package pricing derives the night count and total charge for a stay.
// It is pure computation: no I/O, no clock, and nothing escapes as an error.
package pricing

import (
	"strings"
	"time"
)

// NightlyRate is the fixed room rate in INR. The persona script quotes the
// same figure, so the two must not drift apart.
const NightlyRate = 5000

const dateLayout = "2006-01-02"

// Quote is the derived price for a stay. Nights is always >= 1.
type Quote struct {
	Nights int
	Total  int64
}

// ForStay computes the quote for a check-in/check-out pair in YYYY-MM-DD
// form. Unparsable, equal, or inverted dates floor to a single night rather
// than failing: a date-format problem must never block a booking, and the
// confirmation message echoes the supplied dates verbatim so a human can
// catch the mistake.
func ForStay(checkIn, checkOut string) Quote {
	nights, ok := nightsBetween(checkIn, checkOut)
	if !ok || nights < 1 {
		nights = 1
	}
	return Quote{
		Nights: nights,
		Total:  int64(nights) * NightlyRate,
	}
}

// nightsBetween returns the whole-day difference between the two dates.
// ok is false when either date fails to parse; the caller owns the fallback.
func nightsBetween(checkIn, checkOut string) (int, bool) {
	start, err := time.Parse(dateLayout, strings.TrimSpace(checkIn))
	if err != nil {
		return 0, false
	}
	end, err := time.Parse(dateLayout, strings.TrimSpace(checkOut))
	if err != nil {
		return 0, false
	}
	return int(end.Sub(start) / (24 * time.Hour)), true
}
