package models

import "time"

// AdminDashboard summarises the whole school for admin/principal users.
type AdminDashboard struct {
	Students        int       `json:"students"`
	Teachers        int       `json:"teachers"`
	Classes         int       `json:"classes"`
	FeesOutstanding float64   `json:"fees_outstanding"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// TeacherDashboard summarises a teacher's workload.
type TeacherDashboard struct {
	Assignments    int       `json:"assignments"`
	PendingGrading int       `json:"pending_grading"`
	Classes        int       `json:"classes"`
	GeneratedAt    time.Time `json:"generated_at"`
}

// StudentDashboard summarises a student's upcoming work and recent results.
type StudentDashboard struct {
	DueSoon      int           `json:"due_soon"`
	Overdue      int           `json:"overdue"`
	RecentGrades []GradeDetail `json:"recent_grades"`
	GeneratedAt  time.Time     `json:"generated_at"`
}

// ParentDashboard summarises a parent's children.
type ParentDashboard struct {
	Children        []StudentDetail `json:"children"`
	FeesOutstanding float64         `json:"fees_outstanding"`
	UnreadMessages  int             `json:"unread_messages"`
	GeneratedAt     time.Time       `json:"generated_at"`
}
