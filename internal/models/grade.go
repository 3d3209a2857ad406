package models

import "time"

// Grade is a gradebook entry, separate from any submission grade. Used for
// per-subject aggregation.
type Grade struct {
	ID           string    `db:"id" json:"id"`
	StudentID    string    `db:"student_id" json:"student_id"`
	ClassID      string    `db:"class_id" json:"class_id"`
	AssignmentID *string   `db:"assignment_id" json:"assignment_id,omitempty"`
	Subject      string    `db:"subject" json:"subject"`
	Grade        float64   `db:"grade" json:"grade"`
	MaxGrade     float64   `db:"max_grade" json:"max_grade"`
	DateRecorded time.Time `db:"date_recorded" json:"date_recorded"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// GradeDetail joins a grade with display fields.
type GradeDetail struct {
	Grade
	StudentName     string  `db:"student_name" json:"student_name"`
	StudentNumber   *string `db:"student_number" json:"student_number,omitempty"`
	ClassName       string  `db:"class_name" json:"class_name"`
	AssignmentTitle *string `db:"assignment_title" json:"assignment_title,omitempty"`
}

// GradeFilter scopes gradebook queries.
type GradeFilter struct {
	StudentID string
	ClassID   string
	Subject   string
	Page      int
	PageSize  int
}

// GradePatch enumerates every updatable grade field. Nil means unchanged.
type GradePatch struct {
	Subject      *string    `json:"subject,omitempty"`
	Grade        *float64   `json:"grade,omitempty"`
	MaxGrade     *float64   `json:"max_grade,omitempty"`
	DateRecorded *time.Time `json:"date_recorded,omitempty"`
	AssignmentID *string    `json:"assignment_id,omitempty"`
}

// StudentGradebook aggregates a student's grades into subject percentages.
type StudentGradebook struct {
	StudentID   string         `json:"student_id"`
	StudentName string         `json:"student_name"`
	Subjects    map[string]int `json:"subjects"`
	Average     int            `json:"average"`
}

// SubjectStatistics aggregates performance per subject across students.
type SubjectStatistics struct {
	Subject string `json:"subject"`
	Average int    `json:"average"`
	Entries int    `json:"entries"`
}
