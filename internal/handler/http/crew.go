package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/crew"
	"github.com/cmlabs-hris/labor-roster-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/labor-roster-go/internal/handler/http/response"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/dates"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/validator"
)

type CrewHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	UpdateMembers(w http.ResponseWriter, r *http.Request)
	Rotation(w http.ResponseWriter, r *http.Request)
	GenerateSchedule(w http.ResponseWriter, r *http.Request)
	OverrideShift(w http.ResponseWriter, r *http.Request)
}

type CrewHandlerImpl struct {
	crewService crew.CrewService
}

func NewCrewHandler(crewService crew.CrewService) CrewHandler {
	return &CrewHandlerImpl{
		crewService: crewService,
	}
}

// Create implements CrewHandler.
func (h *CrewHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	machineID, ok := pathID(w, r, "machineID")
	if !ok {
		return
	}

	var req crew.CreateCrewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Create crew decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.MachineID = machineID

	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	req.Actor = actor

	created, err := h.crewService.CreateCrew(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Crew created successfully", created)
}

// List implements CrewHandler.
func (h *CrewHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	machineID, ok := pathID(w, r, "machineID")
	if !ok {
		return
	}

	crews, err := h.crewService.ListCrews(r.Context(), machineID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, crews)
}

// UpdateMembers implements CrewHandler.
func (h *CrewHandlerImpl) UpdateMembers(w http.ResponseWriter, r *http.Request) {
	crewID, ok := pathID(w, r, "crewID")
	if !ok {
		return
	}

	var req crew.UpdateMembersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.HandleError(w, validator.ValidationErrors{{Field: "employees", Message: err.Error()}})
		return
	}
	req.CrewID = crewID

	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	req.Actor = actor

	if err := h.crewService.UpdateMembers(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Crew members updated successfully", nil)
}

// Rotation implements CrewHandler.
func (h *CrewHandlerImpl) Rotation(w http.ResponseWriter, r *http.Request) {
	machineID, ok := pathID(w, r, "machineID")
	if !ok {
		return
	}

	date, err := dates.Parse(r.URL.Query().Get("date"))
	if err != nil {
		response.HandleError(w, validator.ValidationErrors{{Field: "date", Message: "date must be a valid date in YYYY-MM-DD format"}})
		return
	}

	rotation, err := h.crewService.Rotation(r.Context(), machineID, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, rotation)
}

// GenerateSchedule implements CrewHandler.
func (h *CrewHandlerImpl) GenerateSchedule(w http.ResponseWriter, r *http.Request) {
	machineID, ok := pathID(w, r, "machineID")
	if !ok {
		return
	}

	var req crew.GenerateScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Generate crew schedule decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.MachineID = machineID

	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	req.Actor = actor

	result, err := h.crewService.GenerateSchedule(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Crew schedule generated", result)
}

// OverrideShift implements CrewHandler.
func (h *CrewHandlerImpl) OverrideShift(w http.ResponseWriter, r *http.Request) {
	machineID, ok := pathID(w, r, "machineID")
	if !ok {
		return
	}
	crewID, ok := pathID(w, r, "crewID")
	if !ok {
		return
	}

	var req crew.OverrideShiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Override crew shift decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.MachineID = machineID
	req.CrewID = crewID

	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	req.Actor = actor

	result, err := h.crewService.OverrideShift(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Crew shift overridden", result)
}
