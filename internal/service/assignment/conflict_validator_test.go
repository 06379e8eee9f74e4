package assignment

import (
	"testing"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/assignment"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/shift"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/dates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func seat(id, employeeID, machineID int64, date string, st shift.Type, role assignment.SlotRole) assignment.Assignment {
	a := assignment.Assignment{
		ID:          id,
		EmployeeID:  employeeID,
		Environment: "production",
		Date:        dates.MustParse(date),
		ShiftType:   st,
		Role:        role,
		Position:    1,
	}
	if machineID != 0 {
		a.MachineID = ptr(machineID)
	}
	return a
}

func TestValidateAssignment_DifferentShiftSameDayConflicts(t *testing.T) {
	existing := seat(1, 7, 3, "2024-02-01", shift.Day, assignment.SlotOperator)
	proposed := seat(0, 7, 4, "2024-02-01", shift.Night, assignment.SlotPacker)

	d := ValidateAssignment(proposed, []assignment.Assignment{existing}, assignment.LockState{})

	assert.False(t, d.OK)
	assert.Equal(t, assignment.ReasonShiftConflict, d.Reason)
	require.NotNil(t, d.Conflicting)
	assert.Equal(t, int64(1), d.Conflicting.ID)
}

func TestValidateAssignment_LockIsCheckedFirst(t *testing.T) {
	existing := seat(1, 7, 3, "2024-02-01", shift.Day, assignment.SlotOperator)
	proposed := seat(0, 7, 4, "2024-02-01", shift.Night, assignment.SlotPacker)

	d := ValidateAssignment(proposed, []assignment.Assignment{existing}, assignment.LockState{Locked: true})
	assert.Equal(t, assignment.ReasonDayLocked, d.Reason)

	// admins pass the lock and meet the next rule
	d = ValidateAssignment(proposed, []assignment.Assignment{existing}, assignment.LockState{Locked: true, Admin: true})
	assert.Equal(t, assignment.ReasonShiftConflict, d.Reason)
}

func TestValidateAssignment_SameShiftOtherSlotIsDuplicate(t *testing.T) {
	existing := seat(1, 7, 3, "2024-02-01", shift.Day, assignment.SlotOperator)
	proposed := seat(0, 7, 4, "2024-02-01", shift.Day, assignment.SlotPacker)

	d := ValidateAssignment(proposed, []assignment.Assignment{existing}, assignment.LockState{})

	assert.Equal(t, assignment.ReasonDuplicateShiftAssignment, d.Reason)
}

func TestValidateAssignment_OtherPositionOnSameMachineIsDuplicate(t *testing.T) {
	existing := seat(1, 7, 3, "2024-02-01", shift.Day, assignment.SlotOperator)
	proposed := existing
	proposed.ID = 0
	proposed.Position = 2

	d := ValidateAssignment(proposed, []assignment.Assignment{existing}, assignment.LockState{})

	assert.Equal(t, assignment.ReasonDuplicateShiftAssignment, d.Reason)
}

func TestValidateAssignment_SameSlotUpdatesInPlace(t *testing.T) {
	existing := seat(1, 7, 3, "2024-02-01", shift.Day, assignment.SlotOperator)
	proposed := seat(0, 7, 3, "2024-02-01", shift.Day, assignment.SlotOperator)

	d := ValidateAssignment(proposed, []assignment.Assignment{existing}, assignment.LockState{})

	assert.True(t, d.OK)
	require.NotNil(t, d.Replaces)
	assert.Equal(t, int64(1), d.Replaces.ID)
}

func TestValidateAssignment_ReplacesOtherOccupant(t *testing.T) {
	occupant := seat(1, 8, 3, "2024-02-01", shift.Day, assignment.SlotOperator)
	proposed := seat(0, 7, 3, "2024-02-01", shift.Day, assignment.SlotOperator)

	d := ValidateAssignment(proposed, []assignment.Assignment{occupant}, assignment.LockState{})

	assert.True(t, d.OK)
	require.NotNil(t, d.Replaces)
	assert.Equal(t, int64(8), d.Replaces.EmployeeID)
}

func TestValidateAssignment_RestRecords(t *testing.T) {
	rest := seat(1, 7, 0, "2024-02-01", shift.Rest, assignment.SlotForklift)
	working := seat(2, 7, 3, "2024-02-01", shift.Day, assignment.SlotOperator)

	// a working shift over an existing rest record is allowed
	d := ValidateAssignment(seat(0, 7, 3, "2024-02-01", shift.Night, assignment.SlotOperator), []assignment.Assignment{rest}, assignment.LockState{})
	assert.True(t, d.OK)

	// resting while already working that day is not
	d = ValidateAssignment(seat(0, 7, 0, "2024-02-01", shift.Rest, assignment.SlotForklift), []assignment.Assignment{working}, assignment.LockState{})
	assert.Equal(t, assignment.ReasonShiftConflict, d.Reason)
}

func TestValidateAssignment_IgnoresOtherDaysAndEmployees(t *testing.T) {
	today := []assignment.Assignment{
		seat(1, 7, 3, "2024-01-31", shift.Night, assignment.SlotOperator),
		seat(2, 9, 4, "2024-02-01", shift.Night, assignment.SlotPacker),
	}
	proposed := seat(0, 7, 3, "2024-02-01", shift.Day, assignment.SlotOperator)

	d := ValidateAssignment(proposed, today, assignment.LockState{})

	assert.True(t, d.OK)
	assert.Nil(t, d.Replaces)
}

func TestNewConflictError_Unwraps(t *testing.T) {
	proposed := seat(0, 7, 4, "2024-02-01", shift.Night, assignment.SlotPacker)
	existing := seat(5, 7, 3, "2024-02-01", shift.Day, assignment.SlotOperator)

	err := assignment.NewConflictError(proposed, assignment.Decision{Reason: assignment.ReasonShiftConflict, Conflicting: &existing})

	assert.ErrorIs(t, err, assignment.ErrShiftConflict)
	assert.Equal(t, int64(5), err.ExistingID)
	assert.Equal(t, assignment.ReasonShiftConflict, assignment.ReasonOf(err))
	assert.Contains(t, err.Error(), "ShiftConflict")
}
