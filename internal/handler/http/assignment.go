package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/assignment"
	"github.com/cmlabs-hris/labor-roster-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/labor-roster-go/internal/handler/http/response"
	"github.com/go-chi/chi/v5"
)

type AssignmentHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Upsert(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)

	Candidates(w http.ResponseWriter, r *http.Request)
	Suggest(w http.ResponseWriter, r *http.Request)
	AcceptSuggestions(w http.ResponseWriter, r *http.Request)
}

type AssignmentHandlerImpl struct {
	assignmentService assignment.AssignmentService
}

func NewAssignmentHandler(assignmentService assignment.AssignmentService) AssignmentHandler {
	return &AssignmentHandlerImpl{
		assignmentService: assignmentService,
	}
}

// List implements AssignmentHandler.
func (h *AssignmentHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := assignment.ListAssignmentsFilter{Date: r.URL.Query().Get("date")}
	if env := r.URL.Query().Get("environment"); env != "" {
		filter.Environment = &env
	}

	list, err := h.assignmentService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	meta := &response.Meta{Date: filter.Date, Total: len(list)}
	if filter.Environment != nil {
		meta.Environment = *filter.Environment
	}
	response.SuccessWithMeta(w, list, meta)
}

// Get implements AssignmentHandler.
func (h *AssignmentHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	a, err := h.assignmentService.GetByID(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, a)
}

// Upsert implements AssignmentHandler.
func (h *AssignmentHandlerImpl) Upsert(w http.ResponseWriter, r *http.Request) {
	var req assignment.UpsertAssignmentRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Upsert assignment decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	req.Actor = actor

	a, err := h.assignmentService.Upsert(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Assignment saved successfully", a)
}

// Delete implements AssignmentHandler.
func (h *AssignmentHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.assignmentService.Delete(r.Context(), id, actor); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Assignment deleted successfully", nil)
}

// Candidates implements AssignmentHandler.
func (h *AssignmentHandlerImpl) Candidates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := assignment.RankCandidatesRequest{
		Environment: q.Get("environment"),
		Date:        q.Get("date"),
		ShiftType:   q.Get("shift_type"),
		Role:        q.Get("role"),
	}
	if raw := q.Get("machine_id"); raw != "" {
		machineID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			response.BadRequest(w, "machine_id must be a number", nil)
			return
		}
		req.MachineID = &machineID
	}
	if raw := q.Get("position"); raw != "" {
		position, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "position must be a number", nil)
			return
		}
		req.Position = position
	}

	candidates, err := h.assignmentService.RankCandidates(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, candidates)
}

// Suggest implements AssignmentHandler.
func (h *AssignmentHandlerImpl) Suggest(w http.ResponseWriter, r *http.Request) {
	req := assignment.SuggestRequest{
		Date:        r.URL.Query().Get("date"),
		Environment: r.URL.Query().Get("environment"),
	}

	suggestions, err := h.assignmentService.Suggest(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, suggestions)
}

// AcceptSuggestions implements AssignmentHandler.
func (h *AssignmentHandlerImpl) AcceptSuggestions(w http.ResponseWriter, r *http.Request) {
	var req assignment.AcceptSuggestionsRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("AcceptSuggestions decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	actor, err := middleware.ActorFromContext(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	req.Actor = actor

	result, err := h.assignmentService.AcceptSuggestions(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Suggestions processed", result)
}

// pathID parses a positive integer URL parameter, writing a 400 when it is not one.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, name+" must be a positive number", nil)
		return 0, false
	}
	return id, true
}
