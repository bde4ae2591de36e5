package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	pkgerrors "github.com/sahakari/ledger-engine/pkg/errors"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2024-03-15")
	assert.NoError(t, err)
	assert.Equal(t, date(2024, time.March, 15), parsed)

	parsed, err = ParseDate("2024-03-15T10:30:00Z")
	assert.NoError(t, err)
	assert.Equal(t, 2024, parsed.Year())

	_, err = ParseDate("15/03/2024")
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidDate))

	_, err = ParseDate("")
	assert.True(t, errors.Is(err, pkgerrors.ErrInvalidDate))
}

func TestAddMonthsClamped(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		months   int
		expected time.Time
	}{
		{
			name:     "plain month add",
			start:    date(2024, time.January, 15),
			months:   1,
			expected: date(2024, time.February, 15),
		},
		{
			name:     "clamps into leap February",
			start:    date(2024, time.January, 31),
			months:   1,
			expected: date(2024, time.February, 29),
		},
		{
			name:     "clamps into short February",
			start:    date(2023, time.January, 31),
			months:   1,
			expected: date(2023, time.February, 28),
		},
		{
			name:     "year rollover",
			start:    date(2024, time.November, 30),
			months:   3,
			expected: date(2025, time.February, 28),
		},
		{
			name:     "full year",
			start:    date(2024, time.June, 1),
			months:   12,
			expected: date(2025, time.June, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, AddMonthsClamped(tt.start, tt.months))
		})
	}
}

func TestMonthsBetween(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		end      time.Time
		expected int
	}{
		{name: "same day", start: date(2024, time.January, 15), end: date(2024, time.January, 15), expected: 0},
		{name: "day before anniversary", start: date(2024, time.January, 15), end: date(2024, time.February, 14), expected: 0},
		{name: "on anniversary", start: date(2024, time.January, 15), end: date(2024, time.February, 15), expected: 1},
		{name: "three months in", start: date(2024, time.January, 10), end: date(2024, time.April, 15), expected: 3},
		{name: "a full year", start: date(2024, time.January, 15), end: date(2025, time.January, 15), expected: 12},
		{name: "end before start", start: date(2024, time.June, 1), end: date(2024, time.January, 1), expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MonthsBetween(tt.start, tt.end))
		})
	}
}

func TestDaysUntilCeil(t *testing.T) {
	base := date(2024, time.January, 1)

	assert.Equal(t, 0, DaysUntilCeil(base, base))
	assert.Equal(t, 1, DaysUntilCeil(base, base.Add(24*time.Hour)))
	// A partial day still counts as a day.
	assert.Equal(t, 2, DaysUntilCeil(base, base.Add(36*time.Hour)))
	assert.Equal(t, 0, DaysUntilCeil(base, base.Add(-24*time.Hour)))
}

func TestSameDayAndToday(t *testing.T) {
	morning := time.Date(2024, time.May, 5, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2024, time.May, 5, 22, 30, 0, 0, time.UTC)

	assert.True(t, SameDay(morning, evening))
	assert.False(t, SameDay(morning, evening.Add(2*time.Hour)))
	assert.Equal(t, date(2024, time.May, 5), Today(evening))
}
