package models

import "time"

// Teacher carries the role-specific data for a profile with role=teacher.
// The primary key equals the owning profile's ID.
type Teacher struct {
	ID             string    `db:"id" json:"id"`
	EmployeeNumber *string   `db:"employee_number" json:"employee_number,omitempty"`
	Subject        *string   `db:"subject" json:"subject,omitempty"`
	Qualifications *string   `db:"qualifications" json:"qualifications,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherDetail joins the teacher row with its profile and class count.
type TeacherDetail struct {
	Teacher
	FullName   string  `db:"full_name" json:"full_name"`
	Email      string  `db:"email" json:"email"`
	Phone      *string `db:"phone" json:"phone,omitempty"`
	AvatarURL  *string `db:"avatar_url" json:"avatar_url,omitempty"`
	Active     bool    `db:"active" json:"active"`
	ClassCount int     `db:"class_count" json:"class_count"`
}

// TeacherFilter encapsulates allowed search parameters for listing teachers.
type TeacherFilter struct {
	Search    string
	Subject   string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// TeacherPatch enumerates every updatable teacher field. Nil means unchanged.
type TeacherPatch struct {
	FullName       *string `json:"full_name,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	AvatarURL      *string `json:"avatar_url,omitempty"`
	EmployeeNumber *string `json:"employee_number,omitempty"`
	Subject        *string `json:"subject,omitempty"`
	Qualifications *string `json:"qualifications,omitempty"`
}
