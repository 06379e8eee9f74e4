package daylock

import "time"

// DayLock finalises the roster of one environment for one date.
type DayLock struct {
	ID          string
	Date        time.Time
	Environment string
	LockedAt    time.Time
	LockedBy    string
}

// Status is the effective lock state of a (date, environment) pair.
type Status struct {
	Date        time.Time
	Environment string
	Explicit    *DayLock
	// Implicit is set once the date's first shift has started.
	Implicit bool
	// Unknown is set when the lock could not be read; it counts as locked.
	Unknown bool
}

func (s Status) Locked() bool {
	return s.Explicit != nil || s.Implicit || s.Unknown
}
