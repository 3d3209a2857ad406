package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/educ8/educ8-api/internal/models"
)

func TestTeacherCapabilities(t *testing.T) {
	caps := Resolve(models.RoleTeacher)

	assert.False(t, caps.IsAdmin())
	assert.True(t, caps.IsTeacher())
	assert.True(t, caps.CanGradeAssignments())
	assert.True(t, caps.CanManageAssignments())
	assert.False(t, caps.CanSubmitAssignments())
	assert.False(t, caps.CanViewAllAssignments())
	assert.False(t, caps.CanViewChildAssignments())
}

func TestAdminAndPrincipalAreAdmins(t *testing.T) {
	for _, role := range []models.Role{models.RoleAdmin, models.RolePrincipal} {
		caps := Resolve(role)
		assert.True(t, caps.IsAdmin(), "role %s", role)
		assert.True(t, caps.CanViewAllAssignments(), "role %s", role)
		assert.True(t, caps.CanGradeAssignments(), "role %s", role)
		assert.False(t, caps.CanSubmitAssignments(), "role %s", role)
	}
}

func TestStudentCapabilities(t *testing.T) {
	caps := Resolve(models.RoleStudent)

	assert.True(t, caps.CanSubmitAssignments())
	assert.False(t, caps.CanGradeAssignments())
	assert.False(t, caps.CanManageAssignments())
	assert.False(t, caps.IsAdmin())
}

func TestParentCapabilities(t *testing.T) {
	caps := Resolve(models.RoleParent)

	assert.True(t, caps.IsParent())
	assert.True(t, caps.CanViewChildAssignments())
	assert.False(t, caps.CanSubmitAssignments())
	assert.False(t, caps.CanGradeAssignments())
}

func TestAbsentUserHasNoCapabilities(t *testing.T) {
	caps := Anonymous()

	assert.False(t, caps.HasAnyRole(models.RoleAdmin, models.RolePrincipal, models.RoleTeacher, models.RoleStudent, models.RoleParent))
	assert.False(t, caps.IsAdmin())
	assert.False(t, caps.CanManageAssignments())
	assert.False(t, caps.CanSubmitAssignments())
}

func TestUnknownRoleResolvesToNothing(t *testing.T) {
	caps := Resolve(models.Role("janitor"))

	_, present := caps.Role()
	assert.False(t, present)
	assert.False(t, caps.HasRole(models.Role("janitor")))
}
