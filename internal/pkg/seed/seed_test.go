package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/employee"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/machine"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/dates"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/validator"
	"github.com/cmlabs-hris/labor-roster-go/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const facilityYAML = `
employees:
  - {id: 1, name: Ayu, role: operator}
  - {id: 2, name: Budi, role: Operator}
  - {id: 3, name: Citra, role: supervisor, active: false}
machines:
  - id: 10
    name: Extruder 1
    environment: production
    operators_per_shift: 2
    night_shift_active: false
    cycle_start_date: 2024-01-01
    crew_size: 2
    crews:
      - {letter: a, employees: [1, 2]}
      - {letter: B, offset: 4, employees: []}
  - id: 11
    name: Packer 1
    environment: packaging
    status: maintenance
    packers_per_shift: 3
`

func TestLoadAndApply(t *testing.T) {
	ctx := context.Background()
	f, err := Load(strings.NewReader(facilityYAML))
	require.NoError(t, err)

	store := memory.NewStore()
	repos := Repositories{Employees: store.Employees(), Machines: store.Machines(), Crews: store.Crews()}

	sum, err := Apply(ctx, f, repos)
	require.NoError(t, err)
	assert.Equal(t, Summary{Employees: 3, Machines: 2, Crews: 2}, sum)

	budi, err := store.Employees().GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, employee.RoleOperator, budi.Role)
	assert.True(t, budi.IsActive)

	citra, err := store.Employees().GetByID(ctx, 3)
	require.NoError(t, err)
	assert.False(t, citra.IsActive)

	extruder, err := store.Machines().GetByID(ctx, 10)
	require.NoError(t, err)
	assert.True(t, extruder.ShiftCycleEnabled)
	assert.True(t, extruder.DayShiftActive)
	assert.False(t, extruder.NightShiftActive)
	require.NotNil(t, extruder.CycleStartDate)
	assert.Equal(t, dates.MustParse("2024-01-01"), *extruder.CycleStartDate)

	packer, err := store.Machines().GetByID(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, machine.StatusMaintenance, packer.Status)
	assert.Equal(t, 1, packer.OperatorsPerShift)

	crews, err := store.Crews().ListByMachine(ctx, 10)
	require.NoError(t, err)
	require.Len(t, crews, 2)
	assert.Equal(t, 0, crews[0].CycleOffset)
	assert.Equal(t, 4, crews[1].CycleOffset)

	// a second run leaves existing crews alone
	sum, err = Apply(ctx, f, repos)
	require.NoError(t, err)
	assert.Equal(t, 2, sum.CrewsSkipped)
	assert.Zero(t, sum.Crews)
}

func TestLoad_Invalid(t *testing.T) {
	bad := `
employees:
  - {id: 1, name: Ayu, role: welder}
  - {id: 1, name: "", role: operator}
machines:
  - id: 5
    name: Line
    environment: Production
    crews:
      - {letter: D, offset: 1, employees: [1, 9]}
`
	_, err := Load(strings.NewReader(bad))
	require.Error(t, err)

	var errs validator.ValidationErrors
	require.ErrorAs(t, err, &errs)
	fields := errs.ToMap()
	assert.Contains(t, fields, "employees[0].role")
	assert.Contains(t, fields, "employees[1].id")
	assert.Contains(t, fields, "employees[1].name")
	assert.Contains(t, fields, "machines[0].environment")
	assert.Contains(t, fields, "machines[0].cycle_start_date")
	assert.Contains(t, fields, "machines[0].crews[0].letter")
	assert.Contains(t, fields, "machines[0].crews[0].offset")
	assert.Contains(t, fields, "machines[0].crews[0].employees")
}

func TestLoad_UnknownField(t *testing.T) {
	_, err := Load(strings.NewReader("employees: []\nlines: []\n"))
	assert.Error(t, err)
}

func TestLoad_Empty(t *testing.T) {
	_, err := Load(strings.NewReader(""))
	assert.Error(t, err)
}
