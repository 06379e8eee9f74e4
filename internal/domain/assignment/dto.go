package assignment

import (
	"strings"
	"time"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/shift"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/user"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/validator"
)

type UpsertAssignmentRequest struct {
	EmployeeID  int64   `json:"employee_id"`
	MachineID   *int64  `json:"machine_id,omitempty"`
	Environment string  `json:"environment"`
	Date        string  `json:"assignment_date"` // YYYY-MM-DD
	ShiftType   string  `json:"shift_type"`
	Role        string  `json:"role"`
	Position    int     `json:"position"`
	StartTime   *string `json:"start_time,omitempty"` // HH:MM
	EndTime     *string `json:"end_time,omitempty"`   // HH:MM
	IsOverride  bool    `json:"is_override"`

	AutoGenerated bool       `json:"-"`
	Actor         user.Actor `json:"-"`
}

func (r *UpsertAssignmentRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.EmployeeID <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "employee_id",
			Message: "employee_id is required",
		})
	}
	if r.MachineID != nil && *r.MachineID <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "machine_id",
			Message: "machine_id must be positive",
		})
	}
	if r.MachineID == nil && !validator.IsValidEnvironment(r.Environment) {
		errs = append(errs, validator.ValidationError{
			Field:   "environment",
			Message: "environment is required for facility-wide roles",
		})
	}
	if r.Environment != "" && !validator.IsValidEnvironment(r.Environment) {
		errs = append(errs, validator.ValidationError{
			Field:   "environment",
			Message: "environment must be a lowercase identifier",
		})
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "assignment_date",
			Message: "assignment_date must be a valid date in YYYY-MM-DD format",
		})
	}
	if !shift.Type(r.ShiftType).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "shift_type",
			Message: "shift_type must be one of: " + strings.Join(shift.TypeValues, ", "),
		})
	}
	if !SlotRole(r.Role).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of: " + strings.Join(SlotRoleValues, ", "),
		})
	} else if SlotRole(r.Role).MachineBound() && r.MachineID == nil {
		errs = append(errs, validator.ValidationError{
			Field:   "machine_id",
			Message: "machine_id is required for role " + r.Role,
		})
	}
	if r.Position < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "position",
			Message: "position must be 1 or greater",
		})
	}
	if r.StartTime != nil {
		if _, ok := validator.IsValidTime(*r.StartTime); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "start_time",
				Message: "start_time must be in HH:MM format",
			})
		}
	}
	if r.EndTime != nil {
		if _, ok := validator.IsValidTime(*r.EndTime); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "end_time",
				Message: "end_time must be in HH:MM format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	if r.Position == 0 {
		r.Position = 1
	}

	return nil
}

type ListAssignmentsFilter struct {
	Date        string  `json:"date"`
	Environment *string `json:"environment,omitempty"`
}

func (f *ListAssignmentsFilter) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(f.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be a valid date in YYYY-MM-DD format",
		})
	}
	if f.Environment != nil && !validator.IsValidEnvironment(*f.Environment) {
		errs = append(errs, validator.ValidationError{
			Field:   "environment",
			Message: "environment must be a lowercase identifier",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type RankCandidatesRequest struct {
	Environment string `json:"environment"`
	MachineID   *int64 `json:"machine_id,omitempty"`
	Date        string `json:"date"`
	ShiftType   string `json:"shift_type"`
	Role        string `json:"role"`
	Position    int    `json:"position"`
}

func (r *RankCandidatesRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.MachineID == nil && !validator.IsValidEnvironment(r.Environment) {
		errs = append(errs, validator.ValidationError{
			Field:   "environment",
			Message: "environment is required for facility-wide roles",
		})
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be a valid date in YYYY-MM-DD format",
		})
	}
	if !shift.Type(r.ShiftType).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "shift_type",
			Message: "shift_type must be one of: " + strings.Join(shift.TypeValues, ", "),
		})
	}
	if !SlotRole(r.Role).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of: " + strings.Join(SlotRoleValues, ", "),
		})
	}
	if r.Position < 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "position",
			Message: "position must be 1 or greater",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	if r.Position == 0 {
		r.Position = 1
	}

	return nil
}

type SuggestRequest struct {
	Date        string `json:"date"`
	Environment string `json:"environment"`
}

func (r *SuggestRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be a valid date in YYYY-MM-DD format",
		})
	}
	if !validator.IsValidEnvironment(r.Environment) {
		errs = append(errs, validator.ValidationError{
			Field:   "environment",
			Message: "environment must be a lowercase identifier",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AcceptSuggestionsRequest struct {
	Date        string               `json:"date"`
	Environment string               `json:"environment"`
	Suggestions []SuggestionResponse `json:"suggestions"`
	Actor       user.Actor           `json:"-"`
}

func (r *AcceptSuggestionsRequest) Validate() error {
	base := SuggestRequest{Date: r.Date, Environment: r.Environment}
	var errs validator.ValidationErrors
	if err := base.Validate(); err != nil {
		errs = append(errs, err.(validator.ValidationErrors)...)
	}
	if len(r.Suggestions) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "suggestions",
			Message: "at least one suggestion is required",
		})
	}
	for i, s := range r.Suggestions {
		if s.EmployeeID <= 0 || !SlotRole(s.Role).Valid() || !shift.Type(s.ShiftType).Valid() {
			errs = append(errs, validator.ValidationError{
				Field:   "suggestions[" + validator.Itoa(i) + "]",
				Message: "suggestion needs employee_id, a valid role and a valid shift_type",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type AssignmentResponse struct {
	ID            int64   `json:"id"`
	EmployeeID    int64   `json:"employee_id"`
	MachineID     *int64  `json:"machine_id"`
	Environment   string  `json:"environment"`
	Date          string  `json:"assignment_date"`
	ShiftType     string  `json:"shift_type"`
	Role          string  `json:"role"`
	Position      int     `json:"position"`
	StartTime     *string `json:"start_time,omitempty"`
	EndTime       *string `json:"end_time,omitempty"`
	AutoGenerated bool    `json:"auto_generated"`
	IsOverride    bool    `json:"is_override"`
	IsLocked      bool    `json:"is_locked"`
}

type CandidateResponse struct {
	EmployeeID   int64  `json:"employee_id"`
	EmployeeName string `json:"employee_name"`
	EmployeeRole string `json:"employee_role"`
	Status       string `json:"status"`
	Priority     int    `json:"priority"`
}

type SuggestionResponse struct {
	EmployeeID   int64  `json:"employee_id"`
	EmployeeName string `json:"employee_name,omitempty"`
	MachineID    *int64 `json:"machine_id"`
	MachineName  string `json:"machine_name,omitempty"`
	ShiftType    string `json:"shift_type"`
	Role         string `json:"role"`
	Position     int    `json:"position"`
	Status       string `json:"status,omitempty"`
}

type RejectedSuggestion struct {
	Suggestion SuggestionResponse `json:"suggestion"`
	Reason     string             `json:"reason"`
	Message    string             `json:"message"`
}

type AcceptSuggestionsResponse struct {
	Accepted []AssignmentResponse `json:"accepted"`
	Rejected []RejectedSuggestion `json:"rejected"`
}

func ToResponse(a Assignment) AssignmentResponse {
	return AssignmentResponse{
		ID:            a.ID,
		EmployeeID:    a.EmployeeID,
		MachineID:     a.MachineID,
		Environment:   a.Environment,
		Date:          a.Date.Format(validator.DateLayout),
		ShiftType:     string(a.ShiftType),
		Role:          string(a.Role),
		Position:      a.Position,
		StartTime:     clock(a.StartTime),
		EndTime:       clock(a.EndTime),
		AutoGenerated: a.AutoGenerated,
		IsOverride:    a.IsOverride,
		IsLocked:      a.IsLocked,
	}
}

func ToSuggestionResponse(s Suggestion) SuggestionResponse {
	return SuggestionResponse{
		EmployeeID:   s.EmployeeID,
		EmployeeName: s.EmployeeName,
		MachineID:    s.MachineID,
		MachineName:  s.MachineName,
		ShiftType:    string(s.ShiftType),
		Role:         string(s.Role),
		Position:     s.Position,
		Status:       string(s.Status),
	}
}

func ToCandidateResponse(c RankedCandidate) CandidateResponse {
	return CandidateResponse{
		EmployeeID:   c.Employee.ID,
		EmployeeName: c.Employee.Name,
		EmployeeRole: string(c.Employee.Role),
		Status:       string(c.Status),
		Priority:     c.Status.Priority(),
	}
}

func clock(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("15:04")
	return &s
}
