// Package access resolves a user's role into a fixed capability set once per
// request. Handlers and services receive the resolved set instead of
// re-deriving role checks ad hoc.
package access

import "github.com/educ8/educ8-api/internal/models"

// Capabilities is the set of permitted actions for a resolved role. The zero
// value (no user, unknown role) grants nothing.
type Capabilities struct {
	role    models.Role
	present bool
}

// Resolve builds the capability set for an authenticated role.
func Resolve(role models.Role) Capabilities {
	if !role.Valid() {
		return Capabilities{}
	}
	return Capabilities{role: role, present: true}
}

// Anonymous returns the empty capability set used for absent users.
func Anonymous() Capabilities {
	return Capabilities{}
}

// Role returns the resolved role and whether a user is present.
func (c Capabilities) Role() (models.Role, bool) {
	return c.role, c.present
}

// HasRole reports whether the user is present with exactly the given role.
func (c Capabilities) HasRole(role models.Role) bool {
	return c.present && c.role == role
}

// HasAnyRole reports whether the user is present and its role is in the set.
func (c Capabilities) HasAnyRole(roles ...models.Role) bool {
	if !c.present {
		return false
	}
	for _, role := range roles {
		if c.role == role {
			return true
		}
	}
	return false
}

// IsAdmin covers both school administrators and the principal.
func (c Capabilities) IsAdmin() bool {
	return c.HasAnyRole(models.RoleAdmin, models.RolePrincipal)
}

func (c Capabilities) IsTeacher() bool {
	return c.HasRole(models.RoleTeacher)
}

func (c Capabilities) IsStudent() bool {
	return c.HasRole(models.RoleStudent)
}

func (c Capabilities) IsParent() bool {
	return c.HasRole(models.RoleParent)
}

// CanManageAssignments allows creating, updating and deleting assignments.
func (c Capabilities) CanManageAssignments() bool {
	return c.HasAnyRole(models.RoleAdmin, models.RolePrincipal, models.RoleTeacher)
}

// CanViewAllAssignments allows unscoped assignment listings.
func (c Capabilities) CanViewAllAssignments() bool {
	return c.HasAnyRole(models.RoleAdmin, models.RolePrincipal)
}

// CanGradeAssignments allows grading student submissions.
func (c Capabilities) CanGradeAssignments() bool {
	return c.HasAnyRole(models.RoleAdmin, models.RolePrincipal, models.RoleTeacher)
}

// CanSubmitAssignments allows creating submissions.
func (c Capabilities) CanSubmitAssignments() bool {
	return c.HasRole(models.RoleStudent)
}

// CanViewChildAssignments allows parents to view their children's work.
func (c Capabilities) CanViewChildAssignments() bool {
	return c.HasRole(models.RoleParent)
}
