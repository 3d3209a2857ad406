package models

import "time"

// SubmissionStatus is the stored workflow state of a submission.
type SubmissionStatus string

const (
	SubmissionStatusSubmitted SubmissionStatus = "submitted"
	SubmissionStatusGraded    SubmissionStatus = "graded"
)

// Submission is a student's attempt at an assignment. One submission exists
// per (assignment_id, student_id) pair.
type Submission struct {
	ID           string           `db:"id" json:"id"`
	AssignmentID string           `db:"assignment_id" json:"assignment_id"`
	StudentID    string           `db:"student_id" json:"student_id"`
	Content      *string          `db:"content" json:"content,omitempty"`
	FileURL      *string          `db:"file_url" json:"file_url,omitempty"`
	FileName     *string          `db:"file_name" json:"file_name,omitempty"`
	FileType     *string          `db:"file_type" json:"file_type,omitempty"`
	Status       SubmissionStatus `db:"status" json:"status"`
	Feedback     *string          `db:"feedback" json:"feedback,omitempty"`
	Grade        *float64         `db:"grade" json:"grade,omitempty"`
	SubmittedAt  *time.Time       `db:"submitted_at" json:"submitted_at,omitempty"`
	GradedAt     *time.Time       `db:"graded_at" json:"graded_at,omitempty"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// SubmissionDetail joins a submission with display fields for grading views.
type SubmissionDetail struct {
	Submission
	StudentName     string  `db:"student_name" json:"student_name"`
	StudentNumber   *string `db:"student_number" json:"student_number,omitempty"`
	AssignmentTitle string  `db:"assignment_title" json:"assignment_title"`
}

// SubmissionFilter scopes submission listings.
type SubmissionFilter struct {
	AssignmentID string
	StudentID    string
	Status       *SubmissionStatus
	Page         int
	PageSize     int
}
