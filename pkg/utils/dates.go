package utils

import (
	"fmt"
	"math"
	"time"

	pkgerrors "github.com/sahakari/ledger-engine/pkg/errors"
)

// DateLayout is the wire format for calendar dates.
const DateLayout = "2006-01-02"

// ParseDate parses an ISO-8601 calendar date, falling back to RFC3339 for
// callers that send full timestamps.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", pkgerrors.ErrInvalidDate, s)
}

// AddMonthsClamped adds n calendar months to t, clamping the day of month to
// the last day of the target month. Plain AddDate would roll Jan 31 + 1 month
// into March; maturity dates must land in the expected month.
func AddMonthsClamped(t time.Time, months int) time.Time {
	year, month, day := t.Date()
	target := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, t.Location())

	last := daysInMonth(target.Year(), target.Month())
	if day > last {
		day = last
	}

	return time.Date(target.Year(), target.Month(), day,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// MonthsBetween returns the number of whole calendar months elapsed from start
// to end, never negative. A month only counts once the day-of-month has been
// reached, so Jan 15 -> Feb 14 is 0 months and Jan 15 -> Feb 15 is 1.
func MonthsBetween(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}

	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	if end.Day() < start.Day() {
		months--
	}
	if months < 0 {
		return 0
	}
	return months
}

// DaysUntilCeil returns the day difference from from to to, rounded up so a
// partial day still counts. Never negative.
func DaysUntilCeil(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	return int(math.Ceil(to.Sub(from).Hours() / 24))
}

// SameDay reports whether two instants fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Today truncates an instant to its calendar day at midnight.
func Today(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
