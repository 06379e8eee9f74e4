package crew

import (
	"time"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/crew"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/shift"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/dates"
)

// CycleLength is the rotation period: two day shifts, two night shifts, two rest days.
const CycleLength = 6

// ResolveShift maps a crew's offset and the machine's cycle start date to
// the crew's shift on target. Dates before the cycle start are rejected.
func ResolveShift(offset int, cycleStart, target time.Time) (shift.Type, error) {
	if !crew.ValidOffset(offset) {
		return "", crew.ErrInvalidOffset
	}

	elapsed := dates.DaysBetween(cycleStart, target)
	if elapsed < 0 {
		return "", crew.ErrDateBeforeCycle
	}

	// always in [0, CycleLength)
	dayIndex := ((elapsed+offset)%CycleLength + CycleLength) % CycleLength

	switch dayIndex {
	case 0, 1:
		return shift.Day, nil
	case 2, 3:
		return shift.Night, nil
	default:
		return shift.Rest, nil
	}
}
