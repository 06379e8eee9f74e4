package assignment

import (
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/assignment"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/dates"
)

// ValidateAssignment decides whether proposed may be written given the
// assignments that exist on its date. Rules are checked in order and the
// first failure wins:
//
//  1. a locked day rejects non-admin writes (DayLocked)
//  2. the employee already works a different non-rest shift (ShiftConflict)
//  3. the employee already holds another slot in the same shift (DuplicateShiftAssignment)
//
// On accept, Replaces is the current occupant of the proposed slot, which the
// caller updates in place.
func ValidateAssignment(proposed assignment.Assignment, today []assignment.Assignment, lock assignment.LockState) assignment.Decision {
	if lock.Locked && !lock.Admin {
		return assignment.Decision{Reason: assignment.ReasonDayLocked}
	}

	slot := proposed.Slot()
	date := dates.Normalize(proposed.Date)

	for i := range today {
		existing := today[i]
		if existing.EmployeeID != proposed.EmployeeID || !dates.Normalize(existing.Date).Equal(date) {
			continue
		}
		if existing.ShiftType != proposed.ShiftType && existing.ShiftType.IsWorking() {
			return assignment.Decision{Reason: assignment.ReasonShiftConflict, Conflicting: &existing}
		}
	}

	for i := range today {
		existing := today[i]
		if existing.EmployeeID != proposed.EmployeeID || !dates.Normalize(existing.Date).Equal(date) {
			continue
		}
		if existing.ShiftType == proposed.ShiftType && !existing.Slot().Equal(slot) {
			return assignment.Decision{Reason: assignment.ReasonDuplicateShiftAssignment, Conflicting: &existing}
		}
	}

	decision := assignment.Decision{OK: true}
	for i := range today {
		if today[i].Slot().Equal(slot) {
			occupant := today[i]
			decision.Replaces = &occupant
			break
		}
	}
	return decision
}
