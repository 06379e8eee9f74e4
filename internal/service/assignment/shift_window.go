package assignment

import (
	"time"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/shift"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/dates"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/validator"
)

// default working hours per shift, as [start, end) wall-clock hours
var defaultShiftHours = map[shift.Type][2]int{
	shift.Day:       {6, 18},
	shift.Afternoon: {14, 22},
	shift.Night:     {18, 6},
}

// shiftWindow resolves the start and end instants of an assignment. Explicit
// HH:MM values win over the shift defaults; an end at or before the start
// falls on the next day. Rest shifts without explicit times have no window.
func shiftWindow(date time.Time, t shift.Type, start, end *string, loc *time.Location) (*time.Time, *time.Time) {
	hours, ok := defaultShiftHours[t]
	if !ok && (start == nil || end == nil) {
		return nil, nil
	}

	sh, sm := hours[0], 0
	if start != nil {
		if c, ok := validator.IsValidTime(*start); ok {
			sh, sm = c.Hour(), c.Minute()
		}
	}
	eh, em := hours[1], 0
	if end != nil {
		if c, ok := validator.IsValidTime(*end); ok {
			eh, em = c.Hour(), c.Minute()
		}
	}

	from := dates.At(date, sh, sm, loc)
	to := dates.At(date, eh, em, loc)
	if !to.After(from) {
		to = dates.At(date.AddDate(0, 0, 1), eh, em, loc)
	}
	return &from, &to
}
