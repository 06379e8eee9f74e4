package validator

import (
	"testing"
)

func TestIsEmpty(t *testing.T) {
	cases := []struct {
		input string
		want  bool
	}{
		{"", true},
		{"   ", true},
		{"abc", false},
		{" abc ", false},
	}
	for _, c := range cases {
		got := IsEmpty(c.input)
		if got != c.want {
			t.Errorf("IsEmpty(%q) = %v, want %v", c.input, got, c.want)
		}
	}
}

func TestIsValidDate(t *testing.T) {
	valid := []string{"2024-01-01", "2024-02-29"}
	invalid := []string{"2023-13-01", "2023-02-29", "2023/01/01", "01-01-2023", ""}
	for _, s := range valid {
		_, ok := IsValidDate(s)
		if !ok {
			t.Errorf("IsValidDate(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		_, ok := IsValidDate(s)
		if ok {
			t.Errorf("IsValidDate(%q) = true, want false", s)
		}
	}
}

func TestIsValidTime(t *testing.T) {
	valid := []string{"00:00", "06:00", "23:59"}
	invalid := []string{"24:00", "6:00", "06:60", "0600", ""}
	for _, s := range valid {
		if _, ok := IsValidTime(s); !ok {
			t.Errorf("IsValidTime(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if _, ok := IsValidTime(s); ok {
			t.Errorf("IsValidTime(%q) = true, want false", s)
		}
	}
}

func TestIsValidEnvironment(t *testing.T) {
	valid := []string{"production", "packaging", "line_2", "cold-room"}
	invalid := []string{"", "Production", "2line", "with space"}
	for _, s := range valid {
		if !IsValidEnvironment(s) {
			t.Errorf("IsValidEnvironment(%q) = false, want true", s)
		}
	}
	for _, s := range invalid {
		if IsValidEnvironment(s) {
			t.Errorf("IsValidEnvironment(%q) = true, want false", s)
		}
	}
}

func TestIsInSlice(t *testing.T) {
	roles := []string{"operator", "packer"}
	if !IsInSlice("operator", roles) {
		t.Errorf("IsInSlice(operator) = false, want true")
	}
	if IsInSlice("supervisor", roles) {
		t.Errorf("IsInSlice(supervisor) = true, want false")
	}
	if !IsInSlice(4, []int{0, 2, 4}) {
		t.Errorf("IsInSlice(4) = false, want true")
	}
}

func TestRequired(t *testing.T) {
	var errs ValidationErrors
	errs = Required(errs, "date", "")
	errs = Required(errs, "environment", "packaging")
	if len(errs) != 1 || errs[0].Field != "date" {
		t.Errorf("Required() = %v, want single date error", errs)
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := ValidationErrors{
		{Field: "date", Message: "invalid"},
		{Field: "role", Message: "required"},
	}
	got := errs.Error()
	want := "date: invalid; role: required"
	if got != want {
		t.Errorf("ValidationErrors.Error() = %q, want %q", got, want)
	}
}

func TestValidationErrors_ToMap(t *testing.T) {
	errs := ValidationErrors{
		{Field: "date", Message: "invalid"},
		{Field: "role", Message: "required"},
		{Field: "date", Message: "before cycle start"},
	}
	m := errs.ToMap()
	if len(m) != 2 || m["date"] != "invalid" || m["role"] != "required" {
		t.Errorf("ValidationErrors.ToMap() = %v", m)
	}
}
