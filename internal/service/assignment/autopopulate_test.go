package assignment

import (
	"testing"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/assignment"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/crew"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/employee"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/machine"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/shift"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/dates"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func line(id int64) machine.Machine {
	return machine.Machine{
		ID:                    id,
		Name:                  "Line",
		Environment:           "production",
		Status:                machine.StatusActive,
		OperatorsPerShift:     2,
		HopperLoadersPerShift: 1,
		PackersPerShift:       1,
		DayShiftActive:        true,
		NightShiftActive:      true,
	}
}

func TestAutoPopulate_CarriesYesterdayForward(t *testing.T) {
	in := AutoPopulateInput{
		Date:        dates.MustParse("2024-02-01"),
		Environment: "production",
		Machines:    []machine.Machine{line(2)},
		Employees:   []employee.Employee{worker(4, employee.RoleOperator)},
		Yesterday:   []assignment.Assignment{seat(1, 4, 2, "2024-01-31", shift.Day, assignment.SlotOperator)},
	}

	got := AutoPopulate(in)

	require.Len(t, got, 1)
	assert.Equal(t, int64(4), got[0].EmployeeID)
	assert.Equal(t, int64(2), *got[0].MachineID)
	assert.Equal(t, assignment.SlotOperator, got[0].Role)
	assert.Equal(t, shift.Day, got[0].ShiftType)
	assert.Equal(t, assignment.StatusContinuity, got[0].Status)
	assert.Equal(t, "2024-02-01", dates.Format(got[0].Date))
}

func TestAutoPopulate_Skips(t *testing.T) {
	idle := line(3)
	idle.Status = machine.StatusMaintenance
	noNights := line(4)
	noNights.NightShiftActive = false

	in := AutoPopulateInput{
		Date:        dates.MustParse("2024-02-01"),
		Environment: "production",
		Machines:    []machine.Machine{line(2), noNights},
		Employees: []employee.Employee{
			worker(1, employee.RoleOperator),
			worker(2, employee.RoleOperator),
			worker(3, employee.RoleOperator),
			worker(4, employee.RoleOperator),
			worker(6, employee.RoleOperator),
			{ID: 7, Role: employee.RoleOperator, IsActive: false},
			worker(8, employee.RoleOperator),
		},
		Yesterday: []assignment.Assignment{
			seat(10, 1, 2, "2024-01-31", shift.Day, assignment.SlotOperator),   // already assigned today
			seat(11, 2, 3, "2024-01-31", shift.Day, assignment.SlotOperator),   // machine not running
			seat(12, 3, 4, "2024-01-31", shift.Night, assignment.SlotOperator), // shift not running
			seat(13, 4, 2, "2024-01-31", shift.Rest, assignment.SlotOperator),  // rested
			seat(14, 6, 2, "2024-01-31", shift.Night, assignment.SlotPacker),   // slot filled today
			seat(15, 7, 2, "2024-01-31", shift.Day, assignment.SlotPacker),     // inactive
			seat(16, 99, 2, "2024-01-31", shift.Day, assignment.SlotHopperLoader),
		},
		Today: []assignment.Assignment{
			seat(20, 1, 4, "2024-02-01", shift.Day, assignment.SlotOperator),
			seat(21, 8, 2, "2024-02-01", shift.Night, assignment.SlotPacker),
		},
	}

	assert.Empty(t, AutoPopulate(in))
}

func TestAutoPopulate_FacilityWideRoles(t *testing.T) {
	in := AutoPopulateInput{
		Date:        dates.MustParse("2024-02-01"),
		Environment: "production",
		Employees:   []employee.Employee{worker(5, employee.RoleSupervisor), worker(6, employee.RoleForkliftDriver)},
		Yesterday: []assignment.Assignment{
			seat(1, 5, 0, "2024-01-31", shift.Night, assignment.SlotSupervisor),
			seat(2, 6, 0, "2024-01-31", shift.Day, assignment.SlotForklift),
		},
	}

	got := AutoPopulate(in)

	require.Len(t, got, 2)
	assert.Nil(t, got[0].MachineID)
	assert.Equal(t, assignment.SlotForklift, got[0].Role) // day sorts before night
	assert.Equal(t, assignment.SlotSupervisor, got[1].Role)
}

func TestAutoPopulate_FollowsCrewRotation(t *testing.T) {
	m := line(2)
	m.ShiftCycleEnabled = true

	in := AutoPopulateInput{
		Date:        dates.MustParse("2024-02-01"),
		Environment: "production",
		Machines:    []machine.Machine{m},
		Employees: []employee.Employee{
			worker(1, employee.RoleOperator),
			worker(2, employee.RoleOperator),
			worker(3, employee.RoleOperator),
		},
		Yesterday: []assignment.Assignment{
			seat(10, 1, 2, "2024-01-31", shift.Day, assignment.SlotOperator),
			seat(11, 2, 2, "2024-01-31", shift.Night, assignment.SlotOperator),
			seat(12, 3, 2, "2024-01-31", shift.Day, assignment.SlotPacker),
		},
		CrewShifts: map[int64][]crew.CrewShift{
			2: {
				{Crew: crew.Crew{ID: 1, Letter: crew.LetterA, Members: crew.Members{1}}, ShiftType: shift.Night},
				{Crew: crew.Crew{ID: 2, Letter: crew.LetterB, Members: crew.Members{2}}, ShiftType: shift.Rest},
			},
		},
	}

	got := AutoPopulate(in)

	require.Len(t, got, 2)
	// employee 3 is not in a crew and keeps yesterday's shift
	assert.Equal(t, int64(3), got[0].EmployeeID)
	assert.Equal(t, shift.Day, got[0].ShiftType)
	assert.Equal(t, int64(1), got[1].EmployeeID)
	assert.Equal(t, shift.Night, got[1].ShiftType)
}

func TestAutoPopulate_DropsPositionsBeyondStaffing(t *testing.T) {
	m := line(2)
	m.OperatorsPerShift = 1
	y := seat(1, 4, 2, "2024-01-31", shift.Day, assignment.SlotOperator)
	y.Position = 2

	got := AutoPopulate(AutoPopulateInput{
		Date:        dates.MustParse("2024-02-01"),
		Environment: "production",
		Machines:    []machine.Machine{m},
		Employees:   []employee.Employee{worker(4, employee.RoleOperator)},
		Yesterday:   []assignment.Assignment{y},
	})

	assert.Empty(t, got)
}

func TestAutoPopulate_NothingYesterday(t *testing.T) {
	got := AutoPopulate(AutoPopulateInput{
		Date:        dates.MustParse("2024-02-01"),
		Environment: "production",
		Machines:    []machine.Machine{line(2)},
	})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
