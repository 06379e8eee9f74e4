// Package memory is an in-process roster store used by tests and by
// APP_STORE=memory. Writes apply immediately; a failed unit of work is not
// rolled back, so services validate before they write.
package memory

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/assignment"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/crew"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/daylock"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/employee"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/machine"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/database"
	"github.com/puzpuzpuz/xsync/v4"
)

type state struct {
	employees       map[int64]employee.Employee
	machines        map[int64]machine.Machine
	crews           map[int64]crew.Crew
	crewAssignments map[int64]crew.CrewAssignment
	assignments     map[int64]assignment.Assignment
	slots           map[string]int64 // slot key -> assignment id
	dayLocks        map[string]daylock.DayLock
}

// Store holds every roster table in memory.
type Store struct {
	mu     sync.RWMutex
	state  state
	nextID atomic.Int64

	// keyLocks serialise units of work on the same logical keys.
	keyLocks *xsync.Map[string, *sync.Mutex]
}

func NewStore() *Store {
	return &Store{
		state: state{
			employees:       make(map[int64]employee.Employee),
			machines:        make(map[int64]machine.Machine),
			crews:           make(map[int64]crew.Crew),
			crewAssignments: make(map[int64]crew.CrewAssignment),
			assignments:     make(map[int64]assignment.Assignment),
			slots:           make(map[string]int64),
			dayLocks:        make(map[string]daylock.DayLock),
		},
		keyLocks: xsync.NewMap[string, *sync.Mutex](),
	}
}

func (s *Store) newID() int64 {
	return s.nextID.Add(1)
}

// reserveID keeps generated ids above an explicitly supplied one.
func (s *Store) reserveID(id int64) {
	for {
		cur := s.nextID.Load()
		if id <= cur || s.nextID.CompareAndSwap(cur, id) {
			return
		}
	}
}

func (s *Store) Employees() employee.EmployeeRepository {
	return &employeeRepository{s: s}
}

func (s *Store) Machines() machine.MachineRepository {
	return &machineRepository{s: s}
}

func (s *Store) Crews() crew.CrewRepository {
	return &crewRepository{s: s}
}

func (s *Store) CrewAssignments() crew.CrewAssignmentRepository {
	return &crewAssignmentRepository{s: s}
}

func (s *Store) Assignments() assignment.AssignmentRepository {
	return &assignmentRepository{s: s}
}

func (s *Store) DayLocks() daylock.DayLockRepository {
	return &dayLockRepository{s: s}
}

func (s *Store) Transactor() database.Transactor {
	return &transactor{s: s}
}

type transactor struct {
	s *Store
}

// WithinTx implements database.Transactor.
func (t *transactor) WithinTx(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	keys = database.SortedKeys(keys)
	held := make([]*sync.Mutex, 0, len(keys))
	defer func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}()

	for _, key := range keys {
		m, _ := t.s.keyLocks.LoadOrStore(key, &sync.Mutex{})
		m.Lock()
		held = append(held, m)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}
