package crew

import (
	"strings"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/shift"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/user"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/validator"
)

type CreateCrewRequest struct {
	MachineID   int64      `json:"-"`
	Letter      string     `json:"crew_letter"`
	CycleOffset *int       `json:"cycle_offset,omitempty"`
	Members     Members    `json:"employees"`
	Actor       user.Actor `json:"-"`
}

func (r *CreateCrewRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.MachineID <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "machine_id",
			Message: "machine_id is required",
		})
	}
	if !Letter(strings.ToUpper(r.Letter)).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "crew_letter",
			Message: "crew_letter must be one of: " + strings.Join(LetterValues, ", "),
		})
	}
	if r.CycleOffset != nil && !ValidOffset(*r.CycleOffset) {
		errs = append(errs, validator.ValidationError{
			Field:   "cycle_offset",
			Message: "cycle_offset must be one of: 0, 2, 4",
		})
	}
	if err := r.Members.Validate(); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "employees",
			Message: err.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type UpdateMembersRequest struct {
	CrewID  int64      `json:"-"`
	Members Members    `json:"employees"`
	Actor   user.Actor `json:"-"`
}

func (r *UpdateMembersRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.CrewID <= 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "crew_id",
			Message: "crew_id is required",
		})
	}
	if err := r.Members.Validate(); err != nil {
		errs = append(errs, validator.ValidationError{
			Field:   "employees",
			Message: err.Error(),
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type GenerateScheduleRequest struct {
	MachineID int64      `json:"-"`
	From      string     `json:"from"` // YYYY-MM-DD
	To        string     `json:"to"`   // YYYY-MM-DD
	Actor     user.Actor `json:"-"`
}

// MaxScheduleDays bounds a single generation request.
const MaxScheduleDays = 92

func (r *GenerateScheduleRequest) Validate() error {
	var errs validator.ValidationErrors

	from, fromOK := validator.IsValidDate(r.From)
	if !fromOK {
		errs = append(errs, validator.ValidationError{
			Field:   "from",
			Message: "from must be a valid date in YYYY-MM-DD format",
		})
	}
	to, toOK := validator.IsValidDate(r.To)
	if !toOK {
		errs = append(errs, validator.ValidationError{
			Field:   "to",
			Message: "to must be a valid date in YYYY-MM-DD format",
		})
	}
	if fromOK && toOK {
		if to.Before(from) {
			errs = append(errs, validator.ValidationError{
				Field:   "to",
				Message: "to must not be before from",
			})
		} else if to.Sub(from).Hours()/24 >= MaxScheduleDays {
			errs = append(errs, validator.ValidationError{
				Field:   "to",
				Message: "range must not exceed " + validator.Itoa(MaxScheduleDays) + " days",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type OverrideShiftRequest struct {
	MachineID int64      `json:"-"`
	CrewID    int64      `json:"-"`
	Date      string     `json:"date"`
	ShiftType string     `json:"shift_type"`
	Reason    string     `json:"reason"`
	Actor     user.Actor `json:"-"`
}

func (r *OverrideShiftRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be a valid date in YYYY-MM-DD format",
		})
	}
	if !validator.IsInSlice(r.ShiftType, shift.CrewStateValues) {
		errs = append(errs, validator.ValidationError{
			Field:   "shift_type",
			Message: "shift_type must be one of: " + strings.Join(shift.CrewStateValues, ", "),
		})
	}
	errs = validator.Required(errs, "reason", r.Reason)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type CrewResponse struct {
	ID          int64   `json:"id"`
	MachineID   int64   `json:"machine_id"`
	Letter      string  `json:"crew_letter"`
	CycleOffset int     `json:"cycle_offset"`
	Members     Members `json:"employees"`
	IsActive    bool    `json:"is_active"`
}

type CrewShiftResponse struct {
	CrewID    int64   `json:"crew_id"`
	Letter    string  `json:"crew_letter"`
	Date      string  `json:"date"`
	ShiftType string  `json:"shift_type"`
	Override  bool    `json:"is_override"`
	Members   Members `json:"employees"`
}

type RotationResponse struct {
	MachineID      int64               `json:"machine_id"`
	Date           string              `json:"date"`
	CycleStartDate string              `json:"cycle_start_date"`
	Crews          []CrewShiftResponse `json:"crews"`
}

type GenerateScheduleResponse struct {
	MachineID int64    `json:"machine_id"`
	Generated int      `json:"generated"`
	Skipped   []string `json:"skipped_dates,omitempty"`
}
