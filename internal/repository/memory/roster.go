package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/crew"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/employee"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/machine"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/dates"
)

type employeeRepository struct {
	s *Store
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByID(_ context.Context, id int64) (employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.state.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return e, nil
}

// ListActive implements employee.EmployeeRepository.
func (r *employeeRepository) ListActive(_ context.Context) ([]employee.Employee, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]employee.Employee, 0, len(r.s.state.employees))
	for _, e := range r.s.state.employees {
		if e.IsActive {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Save implements employee.EmployeeRepository.
func (r *employeeRepository) Save(_ context.Context, e employee.Employee) (employee.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if e.ID == 0 {
		e.ID = r.s.newID()
	} else {
		r.s.reserveID(e.ID)
	}
	r.s.state.employees[e.ID] = e
	return e, nil
}

type machineRepository struct {
	s *Store
}

// GetByID implements machine.MachineRepository.
func (r *machineRepository) GetByID(_ context.Context, id int64) (machine.Machine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.state.machines[id]
	if !ok {
		return machine.Machine{}, machine.ErrMachineNotFound
	}
	return m, nil
}

// ListActiveForDate implements machine.MachineRepository.
func (r *machineRepository) ListActiveForDate(_ context.Context, environment string, _ time.Time) ([]machine.Machine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]machine.Machine, 0)
	for _, m := range r.s.state.machines {
		if m.Environment == environment && m.IsActive() {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListCycleEnabled implements machine.MachineRepository.
func (r *machineRepository) ListCycleEnabled(_ context.Context) ([]machine.Machine, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]machine.Machine, 0)
	for _, m := range r.s.state.machines {
		if m.IsActive() && m.ShiftCycleEnabled && m.CycleStartDate != nil {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Save implements machine.MachineRepository.
func (r *machineRepository) Save(_ context.Context, m machine.Machine) (machine.Machine, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m.ID == 0 {
		m.ID = r.s.newID()
	} else {
		r.s.reserveID(m.ID)
	}
	r.s.state.machines[m.ID] = m
	return m, nil
}

type crewRepository struct {
	s *Store
}

// Create implements crew.CrewRepository.
func (r *crewRepository) Create(_ context.Context, c crew.Crew) (crew.Crew, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.state.crews {
		if existing.MachineID == c.MachineID && existing.Letter == c.Letter {
			return crew.Crew{}, crew.ErrCrewLetterExists
		}
	}
	if c.ID == 0 {
		c.ID = r.s.newID()
	} else {
		r.s.reserveID(c.ID)
	}
	c.Members = append(crew.Members(nil), c.Members...)
	r.s.state.crews[c.ID] = c
	return c, nil
}

// GetByID implements crew.CrewRepository.
func (r *crewRepository) GetByID(_ context.Context, id int64) (crew.Crew, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.state.crews[id]
	if !ok {
		return crew.Crew{}, crew.ErrCrewNotFound
	}
	return c, nil
}

// ListByMachine implements crew.CrewRepository.
func (r *crewRepository) ListByMachine(_ context.Context, machineID int64) ([]crew.Crew, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]crew.Crew, 0, 3)
	for _, c := range r.s.state.crews {
		if c.MachineID == machineID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Letter < out[j].Letter })
	return out, nil
}

// UpdateMembers implements crew.CrewRepository.
func (r *crewRepository) UpdateMembers(_ context.Context, id int64, members crew.Members) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.state.crews[id]
	if !ok {
		return crew.ErrCrewNotFound
	}
	c.Members = append(crew.Members(nil), members...)
	r.s.state.crews[id] = c
	return nil
}

type crewAssignmentRepository struct {
	s *Store
}

// Upsert implements crew.CrewAssignmentRepository.
func (r *crewAssignmentRepository) Upsert(_ context.Context, ca crew.CrewAssignment) (crew.CrewAssignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ca.Date = dates.Normalize(ca.Date)
	for id, existing := range r.s.state.crewAssignments {
		if existing.CrewID != ca.CrewID || !existing.Date.Equal(ca.Date) {
			continue
		}
		if existing.IsOverride && !ca.IsOverride {
			return existing, nil
		}
		ca.ID = id
		r.s.state.crewAssignments[id] = ca
		return ca, nil
	}
	ca.ID = r.s.newID()
	r.s.state.crewAssignments[ca.ID] = ca
	return ca, nil
}

// ListByMachine implements crew.CrewAssignmentRepository.
func (r *crewAssignmentRepository) ListByMachine(_ context.Context, machineID int64, from, to time.Time) ([]crew.CrewAssignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	from, to = dates.Normalize(from), dates.Normalize(to)
	out := make([]crew.CrewAssignment, 0)
	for _, ca := range r.s.state.crewAssignments {
		if ca.MachineID == machineID && !ca.Date.Before(from) && !ca.Date.After(to) {
			out = append(out, ca)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].CrewID < out[j].CrewID
	})
	return out, nil
}
