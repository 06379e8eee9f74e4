package assignment

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/assignment"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/crew"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/employee"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/machine"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/shift"
)

// AutoPopulateInput is everything auto-populate reads for one (date, environment).
type AutoPopulateInput struct {
	Date        time.Time
	Environment string
	// Machines running in the environment on Date.
	Machines []machine.Machine
	// Employees is the active roster.
	Employees []employee.Employee
	// Yesterday holds the environment's assignments on the previous day.
	Yesterday []assignment.Assignment
	// Today holds every assignment on Date, across environments.
	Today []assignment.Assignment
	// CrewShifts holds today's resolved crews for cycle-enabled machines.
	CrewShifts map[int64][]crew.CrewShift
}

// AutoPopulate carries yesterday's staffing forward to today's open slots.
// It only proposes: nothing is written.
//
// A yesterday assignment produces a continuity suggestion when its machine
// runs today, the employee is active and has no assignment today, and the
// slot is still open. On cycle-enabled machines a crew member follows the
// crew's shift for today; a resting crew produces nothing.
func AutoPopulate(in AutoPopulateInput) []assignment.Suggestion {
	machines := make(map[int64]machine.Machine, len(in.Machines))
	for _, m := range in.Machines {
		machines[m.ID] = m
	}
	employees := make(map[int64]employee.Employee, len(in.Employees))
	for _, e := range in.Employees {
		if e.IsActive {
			employees[e.ID] = e
		}
	}

	busy := make(map[int64]bool)
	filled := make(map[string]bool)
	for _, a := range in.Today {
		busy[a.EmployeeID] = true
		filled[a.Slot().Key()] = true
	}

	yesterday := append([]assignment.Assignment(nil), in.Yesterday...)
	sort.Slice(yesterday, func(i, j int) bool { return yesterday[i].ID < yesterday[j].ID })

	suggestions := make([]assignment.Suggestion, 0)
	for _, y := range yesterday {
		if y.Environment != in.Environment || !y.ShiftType.IsWorking() {
			continue
		}
		emp, ok := employees[y.EmployeeID]
		if !ok || busy[emp.ID] || !y.Role.Accepts(emp) {
			continue
		}

		shiftType := y.ShiftType
		var machineName string
		if y.MachineID != nil {
			m, ok := machines[*y.MachineID]
			if !ok {
				continue
			}
			if m.ShiftCycleEnabled {
				if crewShift, member := crewShiftFor(in.CrewShifts[m.ID], emp.ID); member {
					if !crewShift.IsWorking() {
						continue
					}
					shiftType = crewShift
				}
			}
			if !m.RunsShift(shiftType) {
				continue
			}
			if y.Role.MachineBound() && y.Position > m.Positions(string(y.Role)) {
				continue
			}
			machineName = m.Name
		}

		s := assignment.Suggestion{
			EmployeeID:   emp.ID,
			EmployeeName: emp.Name,
			MachineID:    y.MachineID,
			MachineName:  machineName,
			Environment:  in.Environment,
			Date:         in.Date,
			ShiftType:    shiftType,
			Role:         y.Role,
			Position:     y.Position,
			Status:       assignment.StatusContinuity,
		}
		key := s.Slot().Key()
		if filled[key] {
			continue
		}
		filled[key] = true
		busy[emp.ID] = true
		suggestions = append(suggestions, s)
	}

	sortSuggestions(suggestions)
	return suggestions
}

func crewShiftFor(crews []crew.CrewShift, employeeID int64) (shift.Type, bool) {
	for _, cs := range crews {
		if cs.Crew.Members.Contains(employeeID) {
			return cs.ShiftType, true
		}
	}
	return "", false
}

// sortSuggestions orders by machine (facility-wide last), shift, role, position.
func sortSuggestions(list []assignment.Suggestion) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if ma, mb := machineOrder(a.MachineID), machineOrder(b.MachineID); ma != mb {
			return ma < mb
		}
		if a.ShiftType != b.ShiftType {
			return a.ShiftType.Order() < b.ShiftType.Order()
		}
		if a.Role != b.Role {
			return a.Role < b.Role
		}
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		return a.EmployeeID < b.EmployeeID
	})
}

func machineOrder(id *int64) int64 {
	if id == nil {
		return 1<<63 - 1
	}
	return *id
}
