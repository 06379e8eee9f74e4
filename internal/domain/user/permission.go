package user

type Permission string

const (
	// Roster
	PermissionRosterView Permission = "roster.view"
	PermissionRosterEdit Permission = "roster.edit"
	PermissionRosterLock Permission = "roster.lock"

	// Crews
	PermissionCrewView   Permission = "crew.view"
	PermissionCrewManage Permission = "crew.manage"
)

// RolePermissions maps roles to their permissions
var RolePermissions = map[Role][]Permission{
	RoleAdmin: {
		PermissionRosterView,
		PermissionRosterEdit,
		PermissionRosterLock,
		PermissionCrewView,
		PermissionCrewManage,
	},
	RoleSupervisor: {
		PermissionRosterView,
		PermissionRosterEdit,
		PermissionRosterLock,
		PermissionCrewView,
		PermissionCrewManage,
	},
	RolePlanner: {
		PermissionRosterView,
		PermissionRosterEdit,
		PermissionCrewView,
	},
	RoleViewer: {
		PermissionRosterView,
		PermissionCrewView,
	},
}

// HasPermission checks if a role has a specific permission
func HasPermission(role Role, permission Permission) bool {
	permissions, exists := RolePermissions[role]
	if !exists {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}

	return false
}
