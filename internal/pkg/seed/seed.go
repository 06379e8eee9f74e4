// Package seed loads a YAML facility description (employees, machines and
// their crews) into the roster store.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/labor-roster-go/internal/domain/crew"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/employee"
	"github.com/cmlabs-hris/labor-roster-go/internal/domain/machine"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/dates"
	"github.com/cmlabs-hris/labor-roster-go/internal/pkg/validator"
	"gopkg.in/yaml.v3"
)

type Facility struct {
	Employees []Employee `yaml:"employees"`
	Machines  []Machine  `yaml:"machines"`
}

type Employee struct {
	ID     int64  `yaml:"id"`
	Name   string `yaml:"name"`
	Role   string `yaml:"role"`
	Active *bool  `yaml:"active"`
}

type Machine struct {
	ID                    int64  `yaml:"id"`
	Name                  string `yaml:"name"`
	Environment           string `yaml:"environment"`
	Status                string `yaml:"status"`
	OperatorsPerShift     *int   `yaml:"operators_per_shift"`
	HopperLoadersPerShift int    `yaml:"hopper_loaders_per_shift"`
	PackersPerShift       int    `yaml:"packers_per_shift"`
	DayShift              *bool  `yaml:"day_shift_active"`
	NightShift            *bool  `yaml:"night_shift_active"`
	CycleStartDate        string `yaml:"cycle_start_date"`
	CrewSize              int    `yaml:"crew_size"`
	Crews                 []Crew `yaml:"crews"`
}

type Crew struct {
	Letter    string       `yaml:"letter"`
	Offset    *int         `yaml:"offset"`
	Employees crew.Members `yaml:"employees"`
}

// Repositories are the stores a facility is written to.
type Repositories struct {
	Employees employee.EmployeeRepository
	Machines  machine.MachineRepository
	Crews     crew.CrewRepository
}

// Summary counts what Apply wrote.
type Summary struct {
	Employees    int
	Machines     int
	Crews        int
	CrewsSkipped int
}

// Load decodes and validates a facility file. Unknown keys are rejected.
func Load(r io.Reader) (Facility, error) {
	var f Facility
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return Facility{}, fmt.Errorf("facility file is empty")
		}
		return Facility{}, fmt.Errorf("decode facility: %w", err)
	}
	if err := f.Validate(); err != nil {
		return Facility{}, err
	}
	return f, nil
}

func (f Facility) Validate() error {
	var errs validator.ValidationErrors

	employeeIDs := make(map[int64]bool, len(f.Employees))
	for i, e := range f.Employees {
		field := fmt.Sprintf("employees[%d]", i)
		if e.ID <= 0 {
			errs = append(errs, validator.ValidationError{Field: field + ".id", Message: "id must be positive"})
		} else if employeeIDs[e.ID] {
			errs = append(errs, validator.ValidationError{Field: field + ".id", Message: "duplicate employee id"})
		}
		employeeIDs[e.ID] = true
		errs = validator.Required(errs, field+".name", e.Name)
		if _, err := employee.ParseRole(e.Role); err != nil {
			errs = append(errs, validator.ValidationError{Field: field + ".role", Message: err.Error()})
		}
	}

	machineIDs := make(map[int64]bool, len(f.Machines))
	for i, m := range f.Machines {
		field := fmt.Sprintf("machines[%d]", i)
		if m.ID <= 0 {
			errs = append(errs, validator.ValidationError{Field: field + ".id", Message: "id must be positive"})
		} else if machineIDs[m.ID] {
			errs = append(errs, validator.ValidationError{Field: field + ".id", Message: "duplicate machine id"})
		}
		machineIDs[m.ID] = true
		errs = validator.Required(errs, field+".name", m.Name)
		if !validator.IsValidEnvironment(m.Environment) {
			errs = append(errs, validator.ValidationError{Field: field + ".environment", Message: "environment must be a lowercase identifier"})
		}
		if m.Status != "" && !validator.IsInSlice(m.Status, []string{
			string(machine.StatusActive), string(machine.StatusMaintenance), string(machine.StatusInactive),
		}) {
			errs = append(errs, validator.ValidationError{Field: field + ".status", Message: "status must be one of: active, maintenance, inactive"})
		}
		if m.CycleStartDate != "" {
			if _, ok := validator.IsValidDate(m.CycleStartDate); !ok {
				errs = append(errs, validator.ValidationError{Field: field + ".cycle_start_date", Message: "cycle_start_date must be YYYY-MM-DD"})
			}
		} else if len(m.Crews) > 0 {
			errs = append(errs, validator.ValidationError{Field: field + ".cycle_start_date", Message: "crews need a cycle_start_date"})
		}
		for j, c := range m.Crews {
			cf := fmt.Sprintf("%s.crews[%d]", field, j)
			if !crew.Letter(strings.ToUpper(c.Letter)).Valid() {
				errs = append(errs, validator.ValidationError{Field: cf + ".letter", Message: "letter must be one of: " + strings.Join(crew.LetterValues, ", ")})
			}
			if c.Offset != nil && !crew.ValidOffset(*c.Offset) {
				errs = append(errs, validator.ValidationError{Field: cf + ".offset", Message: "offset must be one of: 0, 2, 4"})
			}
			if err := c.Employees.Validate(); err != nil {
				errs = append(errs, validator.ValidationError{Field: cf + ".employees", Message: err.Error()})
			}
			if m.CrewSize > 0 && len(c.Employees) > m.CrewSize {
				errs = append(errs, validator.ValidationError{Field: cf + ".employees", Message: crew.ErrCrewTooLarge.Error()})
			}
			for _, id := range c.Employees {
				if !employeeIDs[id] {
					errs = append(errs, validator.ValidationError{Field: cf + ".employees", Message: fmt.Sprintf("employee %d is not in the facility", id)})
				}
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Apply writes the facility. Employees and machines are upserted by id;
// a crew whose letter already exists on its machine is left as it is.
func Apply(ctx context.Context, f Facility, repos Repositories) (Summary, error) {
	var sum Summary

	for _, e := range f.Employees {
		role, _ := employee.ParseRole(e.Role)
		if _, err := repos.Employees.Save(ctx, employee.Employee{
			ID:       e.ID,
			Name:     e.Name,
			Role:     role,
			IsActive: boolOr(e.Active, true),
		}); err != nil {
			return sum, fmt.Errorf("seed employee %d: %w", e.ID, err)
		}
		sum.Employees++
	}

	for _, m := range f.Machines {
		saved, err := repos.Machines.Save(ctx, m.toMachine())
		if err != nil {
			return sum, fmt.Errorf("seed machine %d: %w", m.ID, err)
		}
		sum.Machines++

		for _, c := range m.Crews {
			letter := crew.Letter(strings.ToUpper(c.Letter))
			offset := letter.DefaultOffset()
			if c.Offset != nil {
				offset = *c.Offset
			}
			_, err := repos.Crews.Create(ctx, crew.Crew{
				MachineID:   saved.ID,
				Letter:      letter,
				CycleOffset: offset,
				Members:     c.Employees,
				IsActive:    true,
			})
			if errors.Is(err, crew.ErrCrewLetterExists) {
				slog.Info("crew already seeded", "machine_id", saved.ID, "crew_letter", letter)
				sum.CrewsSkipped++
				continue
			}
			if err != nil {
				return sum, fmt.Errorf("seed crew %s on machine %d: %w", letter, saved.ID, err)
			}
			sum.Crews++
		}
	}

	return sum, nil
}

func (m Machine) toMachine() machine.Machine {
	out := machine.Machine{
		ID:                    m.ID,
		Name:                  m.Name,
		Environment:           m.Environment,
		Status:                machine.StatusActive,
		OperatorsPerShift:     1,
		HopperLoadersPerShift: m.HopperLoadersPerShift,
		PackersPerShift:       m.PackersPerShift,
		DayShiftActive:        boolOr(m.DayShift, true),
		NightShiftActive:      boolOr(m.NightShift, true),
		CrewSize:              m.CrewSize,
	}
	if m.Status != "" {
		out.Status = machine.Status(m.Status)
	}
	if m.OperatorsPerShift != nil {
		out.OperatorsPerShift = *m.OperatorsPerShift
	}
	if m.CycleStartDate != "" {
		start := dates.MustParse(m.CycleStartDate)
		out.CycleStartDate = &start
		out.ShiftCycleEnabled = true
	}
	return out
}

func boolOr(v *bool, fallback bool) bool {
	if v == nil {
		return fallback
	}
	return *v
}

