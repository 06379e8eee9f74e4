package employee

import "strings"

type Employee struct {
	ID       int64
	Name     string
	Role     Role
	IsActive bool
}

type Role string

const (
	RoleOperator       Role = "operator"
	RoleSupervisor     Role = "supervisor"
	RolePacker         Role = "packer"
	RoleTechnician     Role = "technician"
	RoleForkliftDriver Role = "forklift_driver"
)

var RoleValues = []string{
	string(RoleOperator),
	string(RoleSupervisor),
	string(RolePacker),
	string(RoleTechnician),
	string(RoleForkliftDriver),
}

func (r Role) Valid() bool {
	for _, v := range RoleValues {
		if string(r) == v {
			return true
		}
	}
	return false
}

// IsSupervisor checks if employee belongs to the supervisor family
func (e Employee) IsSupervisor() bool {
	return e.Role == RoleSupervisor
}

// ParseRole accepts the role case-insensitively.
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrInvalidRole
	}
	return r, nil
}
