package crew

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

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
)

type crewServiceImpl struct {
	crews           crew.CrewRepository
	crewAssignments crew.CrewAssignmentRepository
	machines        machine.MachineRepository
	employees       employee.EmployeeRepository
	dayLocks        daylock.DayLockService
	tx              database.Transactor
	metrics         metrics.Recorder
	events          events.Publisher
}

func NewCrewService(
	crews crew.CrewRepository,
	crewAssignments crew.CrewAssignmentRepository,
	machines machine.MachineRepository,
	employees employee.EmployeeRepository,
	dayLocks daylock.DayLockService,
	tx database.Transactor,
	rec metrics.Recorder,
	pub events.Publisher,
) crew.CrewService {
	return &crewServiceImpl{
		crews:           crews,
		crewAssignments: crewAssignments,
		machines:        machines,
		employees:       employees,
		dayLocks:        dayLocks,
		tx:              tx,
		metrics:         rec,
		events:          pub,
	}
}

func canManageCrews(actor user.Actor) bool {
	return actor.Admin() || user.HasPermission(actor.Role, user.PermissionCrewManage)
}

// CreateCrew implements crew.CrewService.
func (c *crewServiceImpl) CreateCrew(ctx context.Context, req crew.CreateCrewRequest) (crew.CrewResponse, error) {
	if err := req.Validate(); err != nil {
		return crew.CrewResponse{}, err
	}
	if !canManageCrews(req.Actor) {
		return crew.CrewResponse{}, user.ErrInsufficientPermissions
	}

	m, err := c.machines.GetByID(ctx, req.MachineID)
	if err != nil {
		return crew.CrewResponse{}, err
	}
	if err := c.checkMembers(ctx, m, req.Members); err != nil {
		return crew.CrewResponse{}, err
	}

	letter := crew.Letter(strings.ToUpper(req.Letter))
	offset := letter.DefaultOffset()
	if req.CycleOffset != nil {
		offset = *req.CycleOffset
	}

	created, err := c.crews.Create(ctx, crew.Crew{
		MachineID:   m.ID,
		Letter:      letter,
		CycleOffset: offset,
		Members:     req.Members,
		IsActive:    true,
	})
	if err != nil {
		return crew.CrewResponse{}, err
	}

	slog.Info("crew created", "machine_id", m.ID, "crew_letter", letter, "members", len(req.Members))
	return toCrewResponse(created), nil
}

// UpdateMembers implements crew.CrewService.
func (c *crewServiceImpl) UpdateMembers(ctx context.Context, req crew.UpdateMembersRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if !canManageCrews(req.Actor) {
		return user.ErrInsufficientPermissions
	}

	existing, err := c.crews.GetByID(ctx, req.CrewID)
	if err != nil {
		return err
	}
	m, err := c.machines.GetByID(ctx, existing.MachineID)
	if err != nil {
		return err
	}
	if err := c.checkMembers(ctx, m, req.Members); err != nil {
		return err
	}

	return c.crews.UpdateMembers(ctx, existing.ID, req.Members)
}

// checkMembers enforces the machine's crew size and that every member is an active employee.
func (c *crewServiceImpl) checkMembers(ctx context.Context, m machine.Machine, members crew.Members) error {
	if m.CrewSize > 0 && len(members) > m.CrewSize {
		return crew.ErrCrewTooLarge
	}
	for _, id := range members {
		emp, err := c.employees.GetByID(ctx, id)
		if err != nil {
			return fmt.Errorf("crew member %d: %w", id, err)
		}
		if !emp.IsActive {
			return fmt.Errorf("crew member %d: %w", id, employee.ErrEmployeeInactive)
		}
	}
	return nil
}

// ListCrews implements crew.CrewService.
func (c *crewServiceImpl) ListCrews(ctx context.Context, machineID int64) ([]crew.CrewResponse, error) {
	if _, err := c.machines.GetByID(ctx, machineID); err != nil {
		return nil, err
	}
	crews, err := c.crews.ListByMachine(ctx, machineID)
	if err != nil {
		return nil, fmt.Errorf("failed to list crews: %w", err)
	}

	resp := make([]crew.CrewResponse, 0, len(crews))
	for _, cr := range crews {
		resp = append(resp, toCrewResponse(cr))
	}
	return resp, nil
}

// Rotation implements crew.CrewService.
// Stored overrides take precedence over the calculated cycle.
func (c *crewServiceImpl) Rotation(ctx context.Context, machineID int64, date time.Time) (crew.RotationResponse, error) {
	date = dates.Normalize(date)

	m, start, err := c.cycleMachine(ctx, machineID)
	if err != nil {
		return crew.RotationResponse{}, err
	}

	crews, err := c.activeCrews(ctx, machineID)
	if err != nil {
		return crew.RotationResponse{}, err
	}

	stored, err := c.crewAssignments.ListByMachine(ctx, machineID, date, date)
	if err != nil {
		return crew.RotationResponse{}, fmt.Errorf("failed to list crew shifts: %w", err)
	}
	overrides := make(map[int64]crew.CrewAssignment)
	for _, ca := range stored {
		if ca.IsOverride {
			overrides[ca.CrewID] = ca
		}
	}

	resp := crew.RotationResponse{
		MachineID:      m.ID,
		Date:           dates.Format(date),
		CycleStartDate: dates.Format(start),
		Crews:          make([]crew.CrewShiftResponse, 0, len(crews)),
	}
	for _, cr := range crews {
		cs, err := resolveCrew(cr, start, date, overrides)
		if err != nil {
			return crew.RotationResponse{}, err
		}
		resp.Crews = append(resp.Crews, toCrewShiftResponse(cs))
	}
	return resp, nil
}

func resolveCrew(cr crew.Crew, start, date time.Time, overrides map[int64]crew.CrewAssignment) (crew.CrewShift, error) {
	if o, ok := overrides[cr.ID]; ok {
		return crew.CrewShift{Crew: cr, Date: date, ShiftType: o.ShiftType, Override: true}, nil
	}
	st, err := ResolveShift(cr.CycleOffset, start, date)
	if err != nil {
		return crew.CrewShift{}, err
	}
	return crew.CrewShift{Crew: cr, Date: date, ShiftType: st}, nil
}

// GenerateSchedule implements crew.CrewService.
// Dates before the cycle start and days the actor may no longer write are
// skipped; overrides are never replaced.
func (c *crewServiceImpl) GenerateSchedule(ctx context.Context, req crew.GenerateScheduleRequest) (crew.GenerateScheduleResponse, error) {
	if err := req.Validate(); err != nil {
		return crew.GenerateScheduleResponse{}, err
	}
	if !canManageCrews(req.Actor) {
		return crew.GenerateScheduleResponse{}, user.ErrInsufficientPermissions
	}

	from, _ := dates.Parse(req.From)
	to, _ := dates.Parse(req.To)

	m, start, err := c.cycleMachine(ctx, req.MachineID)
	if err != nil {
		return crew.GenerateScheduleResponse{}, err
	}
	crews, err := c.activeCrews(ctx, m.ID)
	if err != nil {
		return crew.GenerateScheduleResponse{}, err
	}

	resp := crew.GenerateScheduleResponse{MachineID: m.ID}
	keys := []string{scheduleKey(m.ID)}
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		keys = append(keys, database.DayKey(day, m.Environment))
	}
	err = c.tx.WithinTx(ctx, keys, func(ctx context.Context) error {
		resp.Generated = 0
		resp.Skipped = nil
		for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
			if day.Before(start) {
				resp.Skipped = append(resp.Skipped, dates.Format(day))
				continue
			}
			if err := c.dayLocks.CheckWritable(ctx, day, m.Environment, req.Actor); err != nil {
				resp.Skipped = append(resp.Skipped, dates.Format(day))
				continue
			}
			for _, cr := range crews {
				st, err := ResolveShift(cr.CycleOffset, start, day)
				if err != nil {
					return err
				}
				saved, err := c.crewAssignments.Upsert(ctx, crew.CrewAssignment{
					MachineID:     m.ID,
					CrewID:        cr.ID,
					Date:          day,
					ShiftType:     st,
					AutoGenerated: true,
				})
				if err != nil {
					return fmt.Errorf("failed to save crew shift: %w", err)
				}
				if !saved.IsOverride {
					resp.Generated++
				}
			}
		}
		return nil
	})
	if err != nil {
		return crew.GenerateScheduleResponse{}, err
	}

	c.metrics.RecordCrewShifts(resp.Generated)
	slog.Info("crew schedule generated", "machine_id", m.ID, "from", req.From, "to", req.To, "generated", resp.Generated)
	events.Emit(ctx, c.events, events.Event{
		Type:        events.TypeCrewScheduled,
		Environment: m.Environment,
		Date:        req.From,
		Actor:       req.Actor.UserID,
		Payload:     resp,
	})
	return resp, nil
}

// OverrideShift implements crew.CrewService.
func (c *crewServiceImpl) OverrideShift(ctx context.Context, req crew.OverrideShiftRequest) (crew.CrewShiftResponse, error) {
	if err := req.Validate(); err != nil {
		return crew.CrewShiftResponse{}, err
	}
	if !canManageCrews(req.Actor) {
		return crew.CrewShiftResponse{}, user.ErrInsufficientPermissions
	}
	date, _ := dates.Parse(req.Date)

	m, err := c.machines.GetByID(ctx, req.MachineID)
	if err != nil {
		return crew.CrewShiftResponse{}, err
	}
	cr, err := c.crews.GetByID(ctx, req.CrewID)
	if err != nil {
		return crew.CrewShiftResponse{}, err
	}
	if cr.MachineID != m.ID {
		return crew.CrewShiftResponse{}, crew.ErrCrewNotFound
	}

	reason := req.Reason
	var saved crew.CrewAssignment
	keys := []string{scheduleKey(m.ID), database.DayKey(date, m.Environment)}
	err = c.tx.WithinTx(ctx, keys, func(ctx context.Context) error {
		if err := c.dayLocks.CheckWritable(ctx, date, m.Environment, req.Actor); err != nil {
			return err
		}
		saved, err = c.crewAssignments.Upsert(ctx, crew.CrewAssignment{
			MachineID:      m.ID,
			CrewID:         cr.ID,
			Date:           date,
			ShiftType:      shift.Type(req.ShiftType),
			IsOverride:     true,
			OverrideReason: &reason,
		})
		if err != nil {
			return fmt.Errorf("failed to save crew override: %w", err)
		}
		return nil
	})
	if err != nil {
		return crew.CrewShiftResponse{}, err
	}

	resp := toCrewShiftResponse(crew.CrewShift{Crew: cr, Date: saved.Date, ShiftType: saved.ShiftType, Override: true})
	slog.Info("crew shift overridden", "machine_id", m.ID, "crew_id", cr.ID, "date", req.Date, "shift_type", req.ShiftType)
	events.Emit(ctx, c.events, events.Event{
		Type:        events.TypeCrewOverridden,
		Environment: m.Environment,
		Date:        req.Date,
		Actor:       req.Actor.UserID,
		Payload:     resp,
	})
	return resp, nil
}

// cycleMachine loads a machine that runs the crew cycle and returns its start date.
func (c *crewServiceImpl) cycleMachine(ctx context.Context, machineID int64) (machine.Machine, time.Time, error) {
	m, err := c.machines.GetByID(ctx, machineID)
	if err != nil {
		return machine.Machine{}, time.Time{}, err
	}
	if !m.ShiftCycleEnabled {
		return machine.Machine{}, time.Time{}, machine.ErrCycleDisabled
	}
	if m.CycleStartDate == nil {
		return machine.Machine{}, time.Time{}, machine.ErrNoCycleStart
	}
	return m, dates.Normalize(*m.CycleStartDate), nil
}

// scheduleKey serialises writes to one machine's crew_assignments rows.
func scheduleKey(machineID int64) string {
	return "crew-schedule:" + strconv.FormatInt(machineID, 10)
}

func (c *crewServiceImpl) activeCrews(ctx context.Context, machineID int64) ([]crew.Crew, error) {
	all, err := c.crews.ListByMachine(ctx, machineID)
	if err != nil {
		return nil, fmt.Errorf("failed to list crews: %w", err)
	}
	active := make([]crew.Crew, 0, len(all))
	for _, cr := range all {
		if cr.IsActive {
			active = append(active, cr)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].Letter < active[j].Letter })
	return active, nil
}

func toCrewResponse(c crew.Crew) crew.CrewResponse {
	return crew.CrewResponse{
		ID:          c.ID,
		MachineID:   c.MachineID,
		Letter:      string(c.Letter),
		CycleOffset: c.CycleOffset,
		Members:     c.Members,
		IsActive:    c.IsActive,
	}
}

func toCrewShiftResponse(cs crew.CrewShift) crew.CrewShiftResponse {
	return crew.CrewShiftResponse{
		CrewID:    cs.Crew.ID,
		Letter:    string(cs.Crew.Letter),
		Date:      dates.Format(cs.Date),
		ShiftType: string(cs.ShiftType),
		Override:  cs.Override,
		Members:   cs.Crew.Members,
	}
}
