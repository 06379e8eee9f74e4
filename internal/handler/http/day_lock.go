package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/daylock"
	"github.com/cmlabs-hris/labor-roster-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/labor-roster-go/internal/handler/http/response"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/dates"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/validator"
)

type DayLockHandler interface {
	Lock(w http.ResponseWriter, r *http.Request)
	Status(w http.ResponseWriter, r *http.Request)
}

type DayLockHandlerImpl struct {
	dayLockService daylock.DayLockService
}

func NewDayLockHandler(dayLockService daylock.DayLockService) DayLockHandler {
	return &DayLockHandlerImpl{
		dayLockService: dayLockService,
	}
}

// Lock implements DayLockHandler.
func (h *DayLockHandlerImpl) Lock(w http.ResponseWriter, r *http.Request) {
	var req daylock.LockDayRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Lock day decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	req.Actor = actor

	lock, err := h.dayLockService.Lock(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Day locked", lock)
}

// Status implements DayLockHandler.
func (h *DayLockHandlerImpl) Status(w http.ResponseWriter, r *http.Request) {
	environment := r.URL.Query().Get("environment")
	date, err := dates.Parse(r.URL.Query().Get("date"))

	var errs validator.ValidationErrors
	if err != nil {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be a valid date in YYYY-MM-DD format"})
	}
	if !validator.IsValidEnvironment(environment) {
		errs = append(errs, validator.ValidationError{Field: "environment", Message: "environment must be a lowercase identifier"})
	}
	if len(errs) > 0 {
		response.HandleError(w, errs)
		return
	}

	status, err := h.dayLockService.Status(r.Context(), date, environment)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, daylock.ToStatusResponse(status))
}
