package models

import "time"

// AssignmentStatus is a display value derived from the due date and the
// viewer's submission. It is never stored.
type AssignmentStatus string

const (
	AssignmentStatusActive    AssignmentStatus = "active"
	AssignmentStatusOverdue   AssignmentStatus = "overdue"
	AssignmentStatusSubmitted AssignmentStatus = "submitted"
	AssignmentStatusGraded    AssignmentStatus = "graded"
)

// Assignment represents work set by a teacher for a class.
type Assignment struct {
	ID          string     `db:"id" json:"id"`
	Title       string     `db:"title" json:"title"`
	Description *string    `db:"description" json:"description,omitempty"`
	ClassID     string     `db:"class_id" json:"class_id"`
	TeacherID   string     `db:"teacher_id" json:"teacher_id"`
	Type        string     `db:"type" json:"type"`
	DueDate     *time.Time `db:"due_date" json:"due_date,omitempty"`
	Points      *float64   `db:"points" json:"points,omitempty"`
	FileURL     *string    `db:"file_url" json:"file_url,omitempty"`
	FileName    *string    `db:"file_name" json:"file_name,omitempty"`
	FileType    *string    `db:"file_type" json:"file_type,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// AssignmentDetail joins an assignment with display fields.
type AssignmentDetail struct {
	Assignment
	ClassName       string `db:"class_name" json:"class_name"`
	TeacherName     string `db:"teacher_name" json:"teacher_name"`
	SubmissionCount int    `db:"submission_count" json:"submission_count"`
	TotalStudents   int    `db:"total_students" json:"total_students"`
}

// AssignmentView is an assignment as seen by a specific viewer: the derived
// status and, for students, their own submission.
type AssignmentView struct {
	AssignmentDetail
	Status     AssignmentStatus `json:"status"`
	Submission *Submission      `json:"submission,omitempty"`
}

// AssignmentFilter encapsulates allowed search parameters for listing assignments.
type AssignmentFilter struct {
	ClassID   string
	TeacherID string
	Type      string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// AssignmentPatch enumerates every updatable assignment field. Nil means unchanged.
type AssignmentPatch struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	ClassID     *string    `json:"class_id,omitempty"`
	Type        *string    `json:"type,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	Points      *float64   `json:"points,omitempty"`
	FileURL     *string    `json:"file_url,omitempty"`
	FileName    *string    `json:"file_name,omitempty"`
	FileType    *string    `json:"file_type,omitempty"`
}

// AssignmentStats summarises a set of assignments by due date.
type AssignmentStats struct {
	Total       int `json:"total"`
	Active      int `json:"active"`
	Overdue     int `json:"overdue"`
	DueThisWeek int `json:"due_this_week"`
	Completed   int `json:"completed"`
}
