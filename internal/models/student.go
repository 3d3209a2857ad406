package models

import "time"

// Student carries the role-specific data for a profile with role=student.
// The primary key equals the owning profile's ID.
type Student struct {
	ID            string     `db:"id" json:"id"`
	StudentNumber *string    `db:"student_number" json:"student_number,omitempty"`
	Address       *string    `db:"address" json:"address,omitempty"`
	DateOfBirth   *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	ClassID       *string    `db:"class_id" json:"class_id,omitempty"`
	ParentID      *string    `db:"parent_id" json:"parent_id,omitempty"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at" json:"updated_at"`
}

// StudentDetail joins the student row with its profile and display names.
type StudentDetail struct {
	Student
	FullName   string  `db:"full_name" json:"full_name"`
	Email      string  `db:"email" json:"email"`
	Phone      *string `db:"phone" json:"phone,omitempty"`
	AvatarURL  *string `db:"avatar_url" json:"avatar_url,omitempty"`
	Active     bool    `db:"active" json:"active"`
	ClassName  *string `db:"class_name" json:"class_name,omitempty"`
	ParentName *string `db:"parent_name" json:"parent_name,omitempty"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	ClassID   string
	ParentID  string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// StudentPatch enumerates every updatable student field. Nil means unchanged.
type StudentPatch struct {
	FullName      *string    `json:"full_name,omitempty"`
	Phone         *string    `json:"phone,omitempty"`
	AvatarURL     *string    `json:"avatar_url,omitempty"`
	StudentNumber *string    `json:"student_number,omitempty"`
	Address       *string    `json:"address,omitempty"`
	DateOfBirth   *time.Time `json:"date_of_birth,omitempty"`
	ClassID       *string    `json:"class_id,omitempty"`
	ParentID      *string    `json:"parent_id,omitempty"`
}
