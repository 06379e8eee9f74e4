package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasPermission(t *testing.T) {
	assert.True(t, HasPermission(RoleSupervisor, PermissionRosterLock))
	assert.False(t, HasPermission(RolePlanner, PermissionRosterLock))
	assert.False(t, HasPermission(RoleViewer, PermissionRosterEdit))
	assert.False(t, HasPermission(Role("unknown"), PermissionRosterView))
}

func TestActor_Admin(t *testing.T) {
	assert.True(t, Actor{Role: RoleAdmin}.Admin())
	assert.True(t, Actor{Role: RoleViewer, IsAdmin: true}.Admin())
	assert.False(t, Actor{Role: RoleSupervisor}.Admin())
}

func TestActor_CanPlan(t *testing.T) {
	assert.True(t, Actor{Role: RolePlanner}.CanPlan())
	assert.False(t, Actor{Role: RoleViewer}.CanPlan())
	assert.True(t, Actor{Role: RoleViewer, IsAdmin: true}.CanPlan())
}
