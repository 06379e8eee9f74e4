// Package dates holds calendar-day helpers shared by the roster domains.
// Roster dates are civil dates: they are carried as time.Time at midnight UTC
// so that arithmetic never crosses a DST boundary.
package dates

import (
	"time"

	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/validator"
)

// Normalize drops the clock and zone of t, keeping its calendar day.
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Parse reads a YYYY-MM-DD date.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(validator.DateLayout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Normalize(t), nil
}

// MustParse is Parse for literals in tests and fixtures.
func MustParse(s string) time.Time {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

func Format(t time.Time) string {
	return t.Format(validator.DateLayout)
}

// DaysBetween returns the number of calendar days from a to b (negative when b is before a).
func DaysBetween(a, b time.Time) int {
	return int(Normalize(b).Sub(Normalize(a)).Hours() / 24)
}

// Yesterday returns the calendar day before t.
func Yesterday(t time.Time) time.Time {
	return Normalize(t).AddDate(0, 0, -1)
}

// At returns the wall-clock instant hour:minute on the calendar day of date in loc.
func At(date time.Time, hour, minute int, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, loc)
}
