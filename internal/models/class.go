package models

import "time"

// Class represents a class group of students, optionally led by a teacher.
type Class struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Subject    *string   `db:"subject" json:"subject,omitempty"`
	GradeLevel string    `db:"grade_level" json:"grade_level"`
	TeacherID  *string   `db:"teacher_id" json:"teacher_id,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// ClassDetail contains class information with joined display fields.
type ClassDetail struct {
	Class
	TeacherName  *string `db:"teacher_name" json:"teacher_name,omitempty"`
	StudentCount int     `db:"student_count" json:"student_count"`
}

// ClassFilter encapsulates allowed search parameters for listing classes.
type ClassFilter struct {
	Search     string
	GradeLevel string
	TeacherID  string
	Page       int
	PageSize   int
	SortBy     string
	SortOrder  string
}

// ClassPatch enumerates every updatable class field. Nil means unchanged.
type ClassPatch struct {
	Name       *string `json:"name,omitempty"`
	Subject    *string `json:"subject,omitempty"`
	GradeLevel *string `json:"grade_level,omitempty"`
	TeacherID  *string `json:"teacher_id,omitempty"`
}
