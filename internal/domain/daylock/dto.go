package daylock

import (
	"time"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/user"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/validator"
)

type LockDayRequest struct {
	Date        string     `json:"date"`
	Environment string     `json:"environment"`
	Actor       user.Actor `json:"-"`
}

func (r *LockDayRequest) Validate() error {
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

type DayLockResponse struct {
	ID          string `json:"id"`
	Date        string `json:"date"`
	Environment string `json:"environment"`
	LockedAt    string `json:"locked_at"`
	LockedBy    string `json:"locked_by"`
}

type StatusResponse struct {
	Date        string           `json:"date"`
	Environment string           `json:"environment"`
	Locked      bool             `json:"locked"`
	Implicit    bool             `json:"implicit"`
	Lock        *DayLockResponse `json:"lock,omitempty"`
}

func ToResponse(l DayLock) DayLockResponse {
	return DayLockResponse{
		ID:          l.ID,
		Date:        l.Date.Format(validator.DateLayout),
		Environment: l.Environment,
		LockedAt:    l.LockedAt.Format(time.RFC3339),
		LockedBy:    l.LockedBy,
	}
}

func ToStatusResponse(s Status) StatusResponse {
	resp := StatusResponse{
		Date:        s.Date.Format(validator.DateLayout),
		Environment: s.Environment,
		Locked:      s.Locked(),
		Implicit:    s.Implicit,
	}
	if s.Explicit != nil {
		lock := ToResponse(*s.Explicit)
		resp.Lock = &lock
	}
	return resp
}
