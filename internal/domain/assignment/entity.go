package assignment

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/employee"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/shift"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/validator"
)

type Assignment struct {
	ID            int64
	EmployeeID    int64
	MachineID     *int64 // nil for facility-wide roles
	Environment   string
	Date          time.Time
	ShiftType     shift.Type
	Role          SlotRole
	Position      int
	StartTime     *time.Time
	EndTime       *time.Time
	AutoGenerated bool
	IsOverride    bool
	IsLocked      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (a Assignment) Slot() Slot {
	return Slot{
		Environment: a.Environment,
		MachineID:   a.MachineID,
		Date:        a.Date,
		ShiftType:   a.ShiftType,
		Role:        a.Role,
		Position:    a.Position,
	}
}

type SlotRole string

const (
	SlotOperator     SlotRole = "operator"
	SlotHopperLoader SlotRole = "hopper_loader"
	SlotPacker       SlotRole = "packer"
	SlotSupervisor   SlotRole = "supervisor"
	SlotForklift     SlotRole = "forklift"
)

var SlotRoleValues = []string{
	string(SlotOperator),
	string(SlotHopperLoader),
	string(SlotPacker),
	string(SlotSupervisor),
	string(SlotForklift),
}

func (r SlotRole) Valid() bool {
	return validator.IsInSlice(string(r), SlotRoleValues)
}

// MachineBound reports whether the role only exists as a machine position.
func (r SlotRole) MachineBound() bool {
	return r == SlotOperator || r == SlotHopperLoader || r == SlotPacker
}

// Accepts applies the role-family rule: supervisor slots draw from
// supervisors only, every other slot from all non-supervisor employees.
func (r SlotRole) Accepts(e employee.Employee) bool {
	if r == SlotSupervisor {
		return e.Role == employee.RoleSupervisor
	}
	return e.Role != employee.RoleSupervisor
}

// Slot is one seat of the roster that holds at most one assignment.
type Slot struct {
	Environment string
	MachineID   *int64
	Date        time.Time
	ShiftType   shift.Type
	Role        SlotRole
	Position    int
}

func (s Slot) Key() string {
	var machine int64
	if s.MachineID != nil {
		machine = *s.MachineID
	}
	return fmt.Sprintf("%s/%d/%s/%s/%s/%d",
		s.Environment, machine, s.Date.Format(validator.DateLayout), s.ShiftType, s.Role, s.Position)
}

// Equal compares slots by key.
func (s Slot) Equal(o Slot) bool {
	return s.Key() == o.Key()
}

// SameSeat compares (machine, role, position) regardless of date and shift.
func (s Slot) SameSeat(o Slot) bool {
	return sameMachine(s.MachineID, o.MachineID) && s.Role == o.Role && s.Position == o.Position
}

// SameStation compares (machine, role), the continuity key.
func (s Slot) SameStation(o Slot) bool {
	return sameMachine(s.MachineID, o.MachineID) && s.Role == o.Role
}

func sameMachine(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// LockState is the lock information the conflict rules need.
type LockState struct {
	Locked bool
	Admin  bool
}

// Decision is the outcome of validating a proposed assignment.
type Decision struct {
	OK     bool
	Reason ConflictReason
	// Conflicting is the existing assignment that caused a rejection.
	Conflicting *Assignment
	// Replaces is the current occupant of the slot, updated in place on accept.
	Replaces *Assignment
}

type CandidateStatus string

const (
	StatusCurrent     CandidateStatus = "current"
	StatusContinuity  CandidateStatus = "continuity"
	StatusExperienced CandidateStatus = "experienced"
	StatusAvailable   CandidateStatus = "available"
	StatusAssigned    CandidateStatus = "assigned"
)

// Priority orders candidate statuses; lower is better.
func (s CandidateStatus) Priority() int {
	switch s {
	case StatusCurrent:
		return 0
	case StatusContinuity:
		return 1
	case StatusExperienced:
		return 2
	case StatusAvailable:
		return 3
	default:
		return 4
	}
}

type RankedCandidate struct {
	Employee employee.Employee
	Status   CandidateStatus
	// Today is the slot the employee already holds today, if any.
	Today *Assignment
	// Yesterday is the assignment that earned continuity or experience.
	Yesterday *Assignment
}

// Suggestion is an unpersisted proposal produced by auto-populate.
type Suggestion struct {
	EmployeeID   int64
	EmployeeName string
	MachineID    *int64
	MachineName  string
	Environment  string
	Date         time.Time
	ShiftType    shift.Type
	Role         SlotRole
	Position     int
	Status       CandidateStatus
}

func (s Suggestion) Slot() Slot {
	return Slot{
		Environment: s.Environment,
		MachineID:   s.MachineID,
		Date:        s.Date,
		ShiftType:   s.ShiftType,
		Role:        s.Role,
		Position:    s.Position,
	}
}
