package machine

import (
	"time"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/shift"
)

type Machine struct {
	ID                    int64
	Name                  string
	Environment           string
	Status                Status
	OperatorsPerShift     int
	HopperLoadersPerShift int
	PackersPerShift       int
	DayShiftActive        bool
	NightShiftActive      bool
	ShiftCycleEnabled     bool
	CycleStartDate        *time.Time
	CrewSize              int
}

type Status string

const (
	StatusActive      Status = "active"
	StatusMaintenance Status = "maintenance"
	StatusInactive    Status = "inactive"
)

// IsActive reports whether the machine is scheduled to run.
func (m Machine) IsActive() bool {
	return m.Status == StatusActive
}

// RunsShift reports whether the machine is staffed on the given shift.
// Afternoon shifts follow the day-shift flag.
func (m Machine) RunsShift(t shift.Type) bool {
	switch t {
	case shift.Day, shift.Afternoon:
		return m.DayShiftActive
	case shift.Night:
		return m.NightShiftActive
	default:
		return true
	}
}

// Positions returns how many people the machine needs per shift for a slot role.
// Roles that are not per-machine positions return 0.
func (m Machine) Positions(role string) int {
	switch role {
	case "operator":
		return m.OperatorsPerShift
	case "hopper_loader":
		return m.HopperLoadersPerShift
	case "packer":
		return m.PackersPerShift
	}
	return 0
}
