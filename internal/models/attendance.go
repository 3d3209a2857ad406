package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusLate    AttendanceStatus = "late"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusLate, AttendanceStatusAbsent:
		return true
	default:
		return false
	}
}

// Attendance is a single attendance row for a student on a date.
type Attendance struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id"`
	ClassID   string           `db:"class_id" json:"class_id"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// AttendanceDetail joins an attendance row with display fields.
type AttendanceDetail struct {
	Attendance
	StudentName   string  `db:"student_name" json:"student_name"`
	StudentNumber *string `db:"student_number" json:"student_number,omitempty"`
	ClassName     string  `db:"class_name" json:"class_name"`
}

// AttendanceFilter scopes attendance queries.
type AttendanceFilter struct {
	ClassID   string
	StudentID string
	Date      *time.Time
	Status    *AttendanceStatus
	Page      int
	PageSize  int
}

// AttendanceStats partitions records by status. Late counts toward the rate
// numerator: rate = round((present+late)/total*100).
type AttendanceStats struct {
	Total   int `json:"total"`
	Present int `json:"present"`
	Late    int `json:"late"`
	Absent  int `json:"absent"`
	Rate    int `json:"rate"`
}
