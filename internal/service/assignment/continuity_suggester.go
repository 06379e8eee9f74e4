package assignment

import (
	"sort"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/assignment"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/employee"
)

// RankCandidates orders the employees eligible for slot. Candidates outside
// the slot's role family, inactive employees and employees who would hit a
// ShiftConflict are left out. The result is sorted by status priority, then
// employee id, so identical inputs always give identical output.
func RankCandidates(candidates []employee.Employee, slot assignment.Slot, today, yesterday []assignment.Assignment) []assignment.RankedCandidate {
	todayByEmployee := groupByEmployee(today)
	yesterdayByEmployee := groupByEmployee(yesterday)

	ranked := make([]assignment.RankedCandidate, 0, len(candidates))
	for _, c := range candidates {
		if !c.IsActive || !slot.Role.Accepts(c) {
			continue
		}

		rc := assignment.RankedCandidate{Employee: c}
		mine := todayByEmployee[c.ID]

		if held := findSlot(mine, slot); held != nil {
			rc.Status = assignment.StatusCurrent
			rc.Today = held
			ranked = append(ranked, rc)
			continue
		}

		proposed := assignment.Assignment{
			EmployeeID:  c.ID,
			MachineID:   slot.MachineID,
			Environment: slot.Environment,
			Date:        slot.Date,
			ShiftType:   slot.ShiftType,
			Role:        slot.Role,
			Position:    slot.Position,
		}
		if d := ValidateAssignment(proposed, mine, assignment.LockState{}); d.Reason == assignment.ReasonShiftConflict {
			continue
		}

		if working := firstWorking(mine); working != nil {
			rc.Status = assignment.StatusAssigned
			rc.Today = working
			ranked = append(ranked, rc)
			continue
		}

		history := yesterdayByEmployee[c.ID]
		rc.Status = assignment.StatusAvailable
		for i := range history {
			y := history[i]
			if !y.ShiftType.IsWorking() {
				continue
			}
			if y.Slot().SameStation(slot) {
				rc.Status = assignment.StatusContinuity
				rc.Yesterday = &y
				break
			}
			if rc.Status == assignment.StatusAvailable {
				rc.Status = assignment.StatusExperienced
				rc.Yesterday = &y
			}
		}
		ranked = append(ranked, rc)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		pi, pj := ranked[i].Status.Priority(), ranked[j].Status.Priority()
		if pi != pj {
			return pi < pj
		}
		return ranked[i].Employee.ID < ranked[j].Employee.ID
	})
	return ranked
}

// groupByEmployee buckets assignments per employee, each bucket ordered by id.
func groupByEmployee(list []assignment.Assignment) map[int64][]assignment.Assignment {
	out := make(map[int64][]assignment.Assignment)
	for _, a := range list {
		out[a.EmployeeID] = append(out[a.EmployeeID], a)
	}
	for _, bucket := range out {
		sort.Slice(bucket, func(i, j int) bool { return bucket[i].ID < bucket[j].ID })
	}
	return out
}

func findSlot(list []assignment.Assignment, slot assignment.Slot) *assignment.Assignment {
	for i := range list {
		if list[i].Slot().Equal(slot) {
			a := list[i]
			return &a
		}
	}
	return nil
}

func firstWorking(list []assignment.Assignment) *assignment.Assignment {
	for i := range list {
		if list[i].ShiftType.IsWorking() {
			a := list[i]
			return &a
		}
	}
	return nil
}
