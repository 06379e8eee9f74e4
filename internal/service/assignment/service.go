package assignment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/assignment"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/crew"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/daylock"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/employee"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/machine"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/shift"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/user"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/database"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/dates"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/events"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/metrics"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/validator"
)

type assignmentServiceImpl struct {
	assignments assignment.AssignmentRepository
	employees   employee.EmployeeRepository
	machines    machine.MachineRepository
	crews       crew.CrewService
	dayLocks    daylock.DayLockService
	tx          database.Transactor
	metrics     metrics.Recorder
	events      events.Publisher
	location    *time.Location
}

func NewAssignmentService(
	assignments assignment.AssignmentRepository,
	employees employee.EmployeeRepository,
	machines machine.MachineRepository,
	crews crew.CrewService,
	dayLocks daylock.DayLockService,
	tx database.Transactor,
	rec metrics.Recorder,
	pub events.Publisher,
	location *time.Location,
) assignment.AssignmentService {
	if location == nil {
		location = time.Local
	}
	return &assignmentServiceImpl{
		assignments: assignments,
		employees:   employees,
		machines:    machines,
		crews:       crews,
		dayLocks:    dayLocks,
		tx:          tx,
		metrics:     rec,
		events:      pub,
		location:    location,
	}
}

// Upsert implements assignment.AssignmentService.
func (s *assignmentServiceImpl) Upsert(ctx context.Context, req assignment.UpsertAssignmentRequest) (assignment.AssignmentResponse, error) {
	started := time.Now()
	defer func() { s.metrics.ObserveOperation("upsert_assignment", time.Since(started).Seconds()) }()

	if err := req.Validate(); err != nil {
		return assignment.AssignmentResponse{}, err
	}
	if !req.Actor.CanPlan() {
		return assignment.AssignmentResponse{}, user.ErrInsufficientPermissions
	}

	proposed, err := s.buildProposed(ctx, req)
	if err != nil {
		return assignment.AssignmentResponse{}, err
	}
	slot := proposed.Slot()

	// The day key orders this write against a concurrent Lock of the same roster.
	keys := []string{
		database.DayKey(proposed.Date, proposed.Environment),
		database.EmployeeDateKey(proposed.EmployeeID, proposed.Date),
		database.SlotKey(slot.Key()),
	}

	var saved assignment.Assignment
	err = s.tx.WithinTx(ctx, keys, func(ctx context.Context) error {
		status, err := s.dayLocks.Status(ctx, proposed.Date, proposed.Environment)
		if err != nil {
			return fmt.Errorf("failed to read lock state: %w", err)
		}

		today, err := s.assignments.ListByEmployeeAndDate(ctx, proposed.EmployeeID, proposed.Date)
		if err != nil {
			return fmt.Errorf("failed to list employee assignments: %w", err)
		}
		occupant, err := s.assignments.GetBySlot(ctx, slot)
		switch {
		case err == nil:
			if occupant.EmployeeID != proposed.EmployeeID {
				today = append(today, occupant)
			}
		case errors.Is(err, assignment.ErrAssignmentNotFound):
		default:
			return fmt.Errorf("failed to read slot occupant: %w", err)
		}

		decision := ValidateAssignment(proposed, today, assignment.LockState{
			Locked: status.Locked(),
			Admin:  req.Actor.Admin(),
		})
		if !decision.OK {
			return assignment.NewConflictError(proposed, decision)
		}

		if decision.Replaces != nil {
			proposed.ID = decision.Replaces.ID
		}
		proposed.IsLocked = status.Explicit != nil

		saved, err = s.assignments.Upsert(ctx, proposed)
		if err != nil {
			return fmt.Errorf("failed to save assignment: %w", err)
		}
		return nil
	})
	if err != nil {
		if reason := assignment.ReasonOf(err); reason != assignment.ReasonNone {
			s.metrics.RecordDecision(string(reason))
			slog.Info("assignment rejected",
				"reason", reason,
				"employee_id", proposed.EmployeeID,
				"date", dates.Format(proposed.Date),
				"slot", slot.Key(),
			)
		}
		return assignment.AssignmentResponse{}, err
	}

	s.metrics.RecordDecision(metrics.OutcomeAccepted)
	resp := assignment.ToResponse(saved)
	events.Emit(ctx, s.events, events.Event{
		Type:        events.TypeAssignmentUpserted,
		Environment: saved.Environment,
		Date:        resp.Date,
		Actor:       req.Actor.UserID,
		Payload:     resp,
	})

	return resp, nil
}

// buildProposed resolves the request against the employee and machine rosters.
func (s *assignmentServiceImpl) buildProposed(ctx context.Context, req assignment.UpsertAssignmentRequest) (assignment.Assignment, error) {
	date, err := dates.Parse(req.Date)
	if err != nil {
		return assignment.Assignment{}, err
	}

	emp, err := s.employees.GetByID(ctx, req.EmployeeID)
	if err != nil {
		return assignment.Assignment{}, err
	}
	if !emp.IsActive {
		return assignment.Assignment{}, employee.ErrEmployeeInactive
	}

	role := assignment.SlotRole(req.Role)
	shiftType := shift.Type(req.ShiftType)
	if !role.Accepts(emp) {
		return assignment.Assignment{}, assignment.ErrRoleNotEligible
	}

	environment := req.Environment
	if req.MachineID != nil {
		m, err := s.machines.GetByID(ctx, *req.MachineID)
		if err != nil {
			return assignment.Assignment{}, err
		}
		if environment != "" && environment != m.Environment {
			return assignment.Assignment{}, assignment.ErrEnvironmentMismatch
		}
		environment = m.Environment
		if !m.IsActive() {
			return assignment.Assignment{}, machine.ErrMachineInactive
		}
		if !m.RunsShift(shiftType) {
			return assignment.Assignment{}, assignment.ErrShiftNotRunning
		}
		if role.MachineBound() && req.Position > m.Positions(string(role)) {
			return assignment.Assignment{}, assignment.ErrPositionOutOfRange
		}
	} else if role.MachineBound() {
		return assignment.Assignment{}, assignment.ErrMachineRequired
	}

	start, end := shiftWindow(date, shiftType, req.StartTime, req.EndTime, s.location)

	return assignment.Assignment{
		EmployeeID:    emp.ID,
		MachineID:     req.MachineID,
		Environment:   environment,
		Date:          date,
		ShiftType:     shiftType,
		Role:          role,
		Position:      req.Position,
		StartTime:     start,
		EndTime:       end,
		AutoGenerated: req.AutoGenerated,
		IsOverride:    req.IsOverride,
	}, nil
}

// Delete implements assignment.AssignmentService.
func (s *assignmentServiceImpl) Delete(ctx context.Context, id int64, actor user.Actor) error {
	if !actor.CanPlan() {
		return user.ErrInsufficientPermissions
	}

	existing, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		return err
	}

	keys := []string{
		database.DayKey(existing.Date, existing.Environment),
		database.EmployeeDateKey(existing.EmployeeID, existing.Date),
		database.SlotKey(existing.Slot().Key()),
	}
	err = s.tx.WithinTx(ctx, keys, func(ctx context.Context) error {
		current, err := s.assignments.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.dayLocks.CheckWritable(ctx, current.Date, current.Environment, actor); err != nil {
			return assignment.NewConflictError(current, assignment.Decision{Reason: assignment.ReasonDayLocked})
		}
		existing = current
		return s.assignments.Delete(ctx, id)
	})
	if err != nil {
		if reason := assignment.ReasonOf(err); reason != assignment.ReasonNone {
			s.metrics.RecordDecision(string(reason))
		}
		return err
	}

	slog.Info("assignment deleted", "id", id, "employee_id", existing.EmployeeID, "date", dates.Format(existing.Date))
	events.Emit(ctx, s.events, events.Event{
		Type:        events.TypeAssignmentDeleted,
		Environment: existing.Environment,
		Date:        dates.Format(existing.Date),
		Actor:       actor.UserID,
		Payload:     assignment.ToResponse(existing),
	})
	return nil
}

// GetByID implements assignment.AssignmentService.
func (s *assignmentServiceImpl) GetByID(ctx context.Context, id int64) (assignment.AssignmentResponse, error) {
	a, err := s.assignments.GetByID(ctx, id)
	if err != nil {
		return assignment.AssignmentResponse{}, err
	}
	return assignment.ToResponse(a), nil
}

// List implements assignment.AssignmentService.
func (s *assignmentServiceImpl) List(ctx context.Context, filter assignment.ListAssignmentsFilter) ([]assignment.AssignmentResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	date, err := dates.Parse(filter.Date)
	if err != nil {
		return nil, err
	}

	list, err := s.assignments.ListByDate(ctx, date, filter.Environment)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	sortAssignments(list)

	resp := make([]assignment.AssignmentResponse, 0, len(list))
	for _, a := range list {
		resp = append(resp, assignment.ToResponse(a))
	}
	return resp, nil
}

// RankCandidates implements assignment.AssignmentService.
func (s *assignmentServiceImpl) RankCandidates(ctx context.Context, req assignment.RankCandidatesRequest) ([]assignment.CandidateResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	date, err := dates.Parse(req.Date)
	if err != nil {
		return nil, err
	}

	environment := req.Environment
	if req.MachineID != nil {
		m, err := s.machines.GetByID(ctx, *req.MachineID)
		if err != nil {
			return nil, err
		}
		environment = m.Environment
	}

	candidates, err := s.employees.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	today, err := s.assignments.ListByDate(ctx, date, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list today's assignments: %w", err)
	}
	yesterday, err := s.assignments.ListByDate(ctx, dates.Yesterday(date), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list yesterday's assignments: %w", err)
	}

	slot := assignment.Slot{
		Environment: environment,
		MachineID:   req.MachineID,
		Date:        date,
		ShiftType:   shift.Type(req.ShiftType),
		Role:        assignment.SlotRole(req.Role),
		Position:    req.Position,
	}
	ranked := RankCandidates(candidates, slot, today, yesterday)

	resp := make([]assignment.CandidateResponse, 0, len(ranked))
	for _, rc := range ranked {
		resp = append(resp, assignment.ToCandidateResponse(rc))
	}
	return resp, nil
}

// Suggest implements assignment.AssignmentService.
func (s *assignmentServiceImpl) Suggest(ctx context.Context, req assignment.SuggestRequest) ([]assignment.SuggestionResponse, error) {
	started := time.Now()
	defer func() { s.metrics.ObserveOperation("suggest", time.Since(started).Seconds()) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	date, err := dates.Parse(req.Date)
	if err != nil {
		return nil, err
	}

	machines, err := s.machines.ListActiveForDate(ctx, req.Environment, date)
	if err != nil {
		return nil, fmt.Errorf("failed to list active machines: %w", err)
	}
	employees, err := s.employees.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	env := req.Environment
	yesterday, err := s.assignments.ListByDate(ctx, dates.Yesterday(date), &env)
	if err != nil {
		return nil, fmt.Errorf("failed to list yesterday's assignments: %w", err)
	}
	today, err := s.assignments.ListByDate(ctx, date, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list today's assignments: %w", err)
	}

	suggestions := AutoPopulate(AutoPopulateInput{
		Date:        date,
		Environment: req.Environment,
		Machines:    machines,
		Employees:   employees,
		Yesterday:   yesterday,
		Today:       today,
		CrewShifts:  s.crewShifts(ctx, machines, date),
	})

	s.metrics.RecordSuggestions(req.Environment, len(suggestions))
	slog.Debug("auto-populate suggestions", "date", req.Date, "environment", req.Environment, "count", len(suggestions))

	resp := make([]assignment.SuggestionResponse, 0, len(suggestions))
	for _, sg := range suggestions {
		resp = append(resp, assignment.ToSuggestionResponse(sg))
	}
	return resp, nil
}

// crewShifts resolves today's crews for cycle-enabled machines. A machine
// whose rotation cannot be resolved is left without crew data.
func (s *assignmentServiceImpl) crewShifts(ctx context.Context, machines []machine.Machine, date time.Time) map[int64][]crew.CrewShift {
	out := make(map[int64][]crew.CrewShift)
	for _, m := range machines {
		if !m.ShiftCycleEnabled {
			continue
		}
		rotation, err := s.crews.Rotation(ctx, m.ID, date)
		if err != nil {
			slog.Warn("crew rotation unavailable for auto-populate", "machine_id", m.ID, "error", err)
			continue
		}
		for _, c := range rotation.Crews {
			out[m.ID] = append(out[m.ID], crew.CrewShift{
				Crew:      crew.Crew{ID: c.CrewID, MachineID: m.ID, Letter: crew.Letter(c.Letter), Members: c.Members},
				Date:      date,
				ShiftType: shift.Type(c.ShiftType),
				Override:  c.Override,
			})
		}
	}
	return out
}

// AcceptSuggestions implements assignment.AssignmentService.
// Each suggestion goes through Upsert on its own; a rejected item does not
// roll back the ones accepted before it. Infrastructure failures abort.
func (s *assignmentServiceImpl) AcceptSuggestions(ctx context.Context, req assignment.AcceptSuggestionsRequest) (assignment.AcceptSuggestionsResponse, error) {
	if err := req.Validate(); err != nil {
		return assignment.AcceptSuggestionsResponse{}, err
	}
	if !req.Actor.CanPlan() {
		return assignment.AcceptSuggestionsResponse{}, user.ErrInsufficientPermissions
	}

	result := assignment.AcceptSuggestionsResponse{
		Accepted: make([]assignment.AssignmentResponse, 0, len(req.Suggestions)),
		Rejected: make([]assignment.RejectedSuggestion, 0),
	}
	for _, sg := range req.Suggestions {
		saved, err := s.Upsert(ctx, assignment.UpsertAssignmentRequest{
			EmployeeID:    sg.EmployeeID,
			MachineID:     sg.MachineID,
			Environment:   req.Environment,
			Date:          req.Date,
			ShiftType:     sg.ShiftType,
			Role:          sg.Role,
			Position:      sg.Position,
			AutoGenerated: true,
			Actor:         req.Actor,
		})
		if err == nil {
			result.Accepted = append(result.Accepted, saved)
			continue
		}

		reason, ok := rejectionReason(err)
		if !ok {
			return result, err
		}
		result.Rejected = append(result.Rejected, assignment.RejectedSuggestion{
			Suggestion: sg,
			Reason:     reason,
			Message:    err.Error(),
		})
	}

	slog.Info("suggestions accepted",
		"date", req.Date,
		"environment", req.Environment,
		"accepted", len(result.Accepted),
		"rejected", len(result.Rejected),
	)
	return result, nil
}

// rejectionReason classifies per-item failures; ok is false for errors that
// should abort the batch.
func rejectionReason(err error) (string, bool) {
	if reason := assignment.ReasonOf(err); reason != assignment.ReasonNone {
		return string(reason), true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return "ValidationError", true
	}
	switch {
	case errors.Is(err, employee.ErrEmployeeNotFound),
		errors.Is(err, machine.ErrMachineNotFound):
		return "NotFound", true
	case errors.Is(err, employee.ErrEmployeeInactive),
		errors.Is(err, machine.ErrMachineInactive),
		errors.Is(err, assignment.ErrRoleNotEligible),
		errors.Is(err, assignment.ErrPositionOutOfRange),
		errors.Is(err, assignment.ErrShiftNotRunning),
		errors.Is(err, assignment.ErrEnvironmentMismatch),
		errors.Is(err, assignment.ErrMachineRequired):
		return "ValidationError", true
	}
	return "", false
}

// sortAssignments orders a roster by environment, machine (facility-wide
// last), shift, role and position.
func sortAssignments(list []assignment.Assignment) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.Environment != b.Environment {
			return a.Environment < b.Environment
		}
		if ma, mb := machineOrder(a.MachineID), machineOrder(b.MachineID); ma != mb {
			return ma < mb
		}
		if a.ShiftType != b.ShiftType {
			return a.ShiftType.Order() < b.ShiftType.Order()
		}
		if a.Role != b.Role {
			return a.Role < b.Role
		}
		return a.Position < b.Position
	})
}
