package response

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/assignment"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/crew"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/daylock"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/employee"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/machine"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/user"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// Conflict rules carry their reason code to the client
	var conflict *assignment.ConflictError
	if errors.As(err, &conflict) {
		details := map[string]string{
			"reason":      string(conflict.Reason),
			"employee_id": strconv.FormatInt(conflict.EmployeeID, 10),
			"date":        conflict.Date,
		}
		if conflict.ExistingID != 0 {
			details["existing_assignment_id"] = strconv.FormatInt(conflict.ExistingID, 10)
		}
		if conflict.Reason == assignment.ReasonDayLocked {
			Locked(w, conflict.Unwrap().Error(), details)
			return
		}
		ConflictWithReason(w, string(conflict.Reason), conflict.Unwrap().Error(), details)
		return
	}

	switch {
	// Auth errors
	case errors.Is(err, user.ErrInvalidToken), errors.Is(err, user.ErrActorRequired):
		Unauthorized(w, err.Error())
	case errors.Is(err, user.ErrInsufficientPermissions),
		errors.Is(err, daylock.ErrLockPermission):
		Forbidden(w, err.Error())

	// Day lock errors
	case errors.Is(err, daylock.ErrDayLocked):
		Locked(w, err.Error(), map[string]string{"reason": string(assignment.ReasonDayLocked)})
	case errors.Is(err, daylock.ErrNothingToLock):
		Conflict(w, "Cannot lock a day without assignments")
	case errors.Is(err, daylock.ErrLockNotFound):
		NotFound(w, "Day lock not found")

	// Assignment errors
	case errors.Is(err, assignment.ErrShiftConflict):
		ConflictWithReason(w, string(assignment.ReasonShiftConflict), err.Error(), nil)
	case errors.Is(err, assignment.ErrDuplicateShiftAssignment):
		ConflictWithReason(w, string(assignment.ReasonDuplicateShiftAssignment), err.Error(), nil)
	case errors.Is(err, assignment.ErrAssignmentNotFound):
		NotFound(w, "Assignment not found")
	case errors.Is(err, assignment.ErrRoleNotEligible),
		errors.Is(err, assignment.ErrMachineRequired),
		errors.Is(err, assignment.ErrPositionOutOfRange),
		errors.Is(err, assignment.ErrEnvironmentMismatch),
		errors.Is(err, assignment.ErrShiftNotRunning):
		UnprocessableEntity(w, err.Error())

	// Employee and machine errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, employee.ErrEmployeeInactive), errors.Is(err, employee.ErrInvalidRole):
		UnprocessableEntity(w, err.Error())
	case errors.Is(err, machine.ErrMachineNotFound):
		NotFound(w, "Machine not found")
	case errors.Is(err, machine.ErrMachineInactive),
		errors.Is(err, machine.ErrCycleDisabled),
		errors.Is(err, machine.ErrNoCycleStart):
		UnprocessableEntity(w, err.Error())

	// Crew errors
	case errors.Is(err, crew.ErrCrewNotFound):
		NotFound(w, "Crew not found")
	case errors.Is(err, crew.ErrCrewLetterExists):
		Conflict(w, "Machine already has a crew with this letter")
	case errors.Is(err, crew.ErrInvalidMembers),
		errors.Is(err, crew.ErrCrewTooLarge),
		errors.Is(err, crew.ErrDateBeforeCycle),
		errors.Is(err, crew.ErrInvalidOffset):
		UnprocessableEntity(w, err.Error())

	// Default
	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}
