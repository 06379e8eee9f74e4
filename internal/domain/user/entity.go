package user

type Role string

const (
	RoleAdmin      Role = "admin"      // Plant administrator - may edit locked days
	RoleSupervisor Role = "supervisor" // Shift supervisor - plans and locks rosters
	RolePlanner    Role = "planner"    // Planner - edits unlocked rosters
	RoleViewer     Role = "viewer"     // Read-only access
)

var RoleValues = []string{
	string(RoleAdmin),
	string(RoleSupervisor),
	string(RolePlanner),
	string(RoleViewer),
}

// Actor is the authenticated caller on whose behalf an engine operation runs.
type Actor struct {
	UserID  string
	Role    Role
	IsAdmin bool
}

// Admin reports whether the actor may bypass day locks.
func (a Actor) Admin() bool {
	return a.IsAdmin || a.Role == RoleAdmin
}

// CanPlan checks if the actor may create, change or delete assignments
func (a Actor) CanPlan() bool {
	return a.Admin() || HasPermission(a.Role, PermissionRosterEdit)
}
