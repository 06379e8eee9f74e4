package assignment

import (
	"errors"
	"fmt"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/daylock"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/validator"
)

var (
	ErrAssignmentNotFound       = errors.New("assignment not found")
	ErrShiftConflict            = errors.New("employee already works a different shift on this date")
	ErrDuplicateShiftAssignment = errors.New("employee already holds another slot in this shift")
	ErrRoleNotEligible          = errors.New("employee role is not eligible for this slot")
	ErrMachineRequired          = errors.New("machine is required for this role")
	ErrPositionOutOfRange       = errors.New("position exceeds the machine's staffing for this role")
	ErrEnvironmentMismatch      = errors.New("environment does not match the machine's environment")
	ErrShiftNotRunning          = errors.New("machine does not run this shift")
)

// ConflictReason names the conflict rule that rejected an assignment.
type ConflictReason string

const (
	ReasonNone                     ConflictReason = ""
	ReasonDayLocked                ConflictReason = "DayLocked"
	ReasonShiftConflict            ConflictReason = "ShiftConflict"
	ReasonDuplicateShiftAssignment ConflictReason = "DuplicateShiftAssignment"
)

// ConflictError is a rejected assignment with its rule name.
type ConflictError struct {
	Reason     ConflictReason
	EmployeeID int64
	Date       string
	// ExistingID is the assignment that caused the conflict, when there is one.
	ExistingID int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s: employee %d on %s: %v", e.Reason, e.EmployeeID, e.Date, e.Unwrap())
}

func (e *ConflictError) Unwrap() error {
	switch e.Reason {
	case ReasonDayLocked:
		return daylock.ErrDayLocked
	case ReasonShiftConflict:
		return ErrShiftConflict
	case ReasonDuplicateShiftAssignment:
		return ErrDuplicateShiftAssignment
	}
	return nil
}

// NewConflictError converts a rejected decision into an error.
func NewConflictError(proposed Assignment, d Decision) *ConflictError {
	ce := &ConflictError{
		Reason:     d.Reason,
		EmployeeID: proposed.EmployeeID,
		Date:       proposed.Date.Format(validator.DateLayout),
	}
	if d.Conflicting != nil {
		ce.ExistingID = d.Conflicting.ID
	}
	return ce
}

// ReasonOf extracts the conflict rule name from err, if any.
func ReasonOf(err error) ConflictReason {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Reason
	}
	if errors.Is(err, daylock.ErrDayLocked) {
		return ReasonDayLocked
	}
	return ReasonNone
}
