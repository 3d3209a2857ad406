package models

import "time"

// Role represents the available roles for access control.
type Role string

const (
	RoleAdmin     Role = "admin"
	RolePrincipal Role = "principal"
	RoleTeacher   Role = "teacher"
	RoleStudent   Role = "student"
	RoleParent    Role = "parent"
)

// Valid returns true when the role is a supported value.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePrincipal, RoleTeacher, RoleStudent, RoleParent:
		return true
	default:
		return false
	}
}

// Profile is the base identity record shared by all roles.
type Profile struct {
	ID           string     `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	FullName     string     `db:"full_name" json:"full_name"`
	Role         Role       `db:"role" json:"role"`
	AvatarURL    *string    `db:"avatar_url" json:"avatar_url,omitempty"`
	Phone        *string    `db:"phone" json:"phone,omitempty"`
	Active       bool       `db:"active" json:"active"`
	LastLogin    *time.Time `db:"last_login" json:"last_login,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}

// ProfileFilter captures filtering criteria for listing profiles.
type ProfileFilter struct {
	Role      *Role
	Active    *bool
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// ProfilePatch enumerates every updatable profile field. Nil means unchanged.
type ProfilePatch struct {
	FullName  *string `json:"full_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	AvatarURL *string `json:"avatar_url,omitempty"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
