package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/assignment"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/daylock"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/dates"
)

type assignmentRepository struct {
	s *Store
}

// Upsert implements assignment.AssignmentRepository.
func (r *assignmentRepository) Upsert(_ context.Context, a assignment.Assignment) (assignment.Assignment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	a.Date = dates.Normalize(a.Date)
	if a.Position == 0 {
		a.Position = 1
	}
	key := a.Slot().Key()
	now := time.Now().UTC()

	if id, ok := r.s.state.slots[key]; ok {
		existing := r.s.state.assignments[id]
		a.ID = id
		a.CreatedAt = existing.CreatedAt
		a.UpdatedAt = now
		r.s.state.assignments[id] = a
		return a, nil
	}

	a.ID = r.s.newID()
	a.CreatedAt = now
	a.UpdatedAt = now
	r.s.state.assignments[a.ID] = a
	r.s.state.slots[key] = a.ID
	return a, nil
}

// GetByID implements assignment.AssignmentRepository.
func (r *assignmentRepository) GetByID(_ context.Context, id int64) (assignment.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.state.assignments[id]
	if !ok {
		return assignment.Assignment{}, assignment.ErrAssignmentNotFound
	}
	return a, nil
}

// GetBySlot implements assignment.AssignmentRepository.
func (r *assignmentRepository) GetBySlot(_ context.Context, slot assignment.Slot) (assignment.Assignment, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	slot.Date = dates.Normalize(slot.Date)
	id, ok := r.s.state.slots[slot.Key()]
	if !ok {
		return assignment.Assignment{}, assignment.ErrAssignmentNotFound
	}
	return r.s.state.assignments[id], nil
}

// Delete implements assignment.AssignmentRepository.
func (r *assignmentRepository) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.state.assignments[id]
	if !ok {
		return assignment.ErrAssignmentNotFound
	}
	delete(r.s.state.slots, a.Slot().Key())
	delete(r.s.state.assignments, id)
	return nil
}

// ListByDate implements assignment.AssignmentRepository.
func (r *assignmentRepository) ListByDate(_ context.Context, date time.Time, environment *string) ([]assignment.Assignment, error) {
	date = dates.Normalize(date)
	return r.filter(func(a assignment.Assignment) bool {
		return a.Date.Equal(date) && (environment == nil || a.Environment == *environment)
	}), nil
}

// ListByEmployeeAndDate implements assignment.AssignmentRepository.
func (r *assignmentRepository) ListByEmployeeAndDate(_ context.Context, employeeID int64, date time.Time) ([]assignment.Assignment, error) {
	date = dates.Normalize(date)
	return r.filter(func(a assignment.Assignment) bool {
		return a.EmployeeID == employeeID && a.Date.Equal(date)
	}), nil
}

// CountByDate implements assignment.AssignmentRepository.
func (r *assignmentRepository) CountByDate(ctx context.Context, date time.Time, environment string) (int, error) {
	list, err := r.ListByDate(ctx, date, &environment)
	return len(list), err
}

// MarkLocked implements assignment.AssignmentRepository.
func (r *assignmentRepository) MarkLocked(_ context.Context, date time.Time, environment string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	date = dates.Normalize(date)
	var n int64
	for id, a := range r.s.state.assignments {
		if a.Date.Equal(date) && a.Environment == environment && !a.IsLocked {
			a.IsLocked = true
			r.s.state.assignments[id] = a
			n++
		}
	}
	return n, nil
}

func (r *assignmentRepository) filter(keep func(assignment.Assignment) bool) []assignment.Assignment {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]assignment.Assignment, 0)
	for _, a := range r.s.state.assignments {
		if keep(a) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type dayLockRepository struct {
	s *Store
}

func dayLockKey(date time.Time, environment string) string {
	return environment + "|" + dates.Format(date)
}

// Get implements daylock.DayLockRepository.
func (r *dayLockRepository) Get(_ context.Context, date time.Time, environment string) (daylock.DayLock, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.state.dayLocks[dayLockKey(date, environment)]
	if !ok {
		return daylock.DayLock{}, daylock.ErrLockNotFound
	}
	return l, nil
}

// Create implements daylock.DayLockRepository.
func (r *dayLockRepository) Create(_ context.Context, l daylock.DayLock) (daylock.DayLock, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := dayLockKey(l.Date, l.Environment)
	if existing, ok := r.s.state.dayLocks[key]; ok {
		return existing, nil
	}
	l.Date = dates.Normalize(l.Date)
	r.s.state.dayLocks[key] = l
	return l, nil
}
