package models

import "time"

// FeeStatus is caller-supplied, not derived from the amounts. It can drift
// from the numeric ledger and is not corrected automatically.
type FeeStatus string

const (
	FeeStatusPending FeeStatus = "pending"
	FeeStatusPartial FeeStatus = "partial"
	FeeStatusPaid    FeeStatus = "paid"
	FeeStatusOverdue FeeStatus = "overdue"
)

// Valid returns true when the status is a supported value.
func (s FeeStatus) Valid() bool {
	switch s {
	case FeeStatusPending, FeeStatusPartial, FeeStatusPaid, FeeStatusOverdue:
		return true
	default:
		return false
	}
}

// Fee is a ledger row for a student. OutstandingAmount is recomputed from
// amount_due - amount_paid on every write that touches either field.
type Fee struct {
	ID                string     `db:"id" json:"id"`
	StudentID         string     `db:"student_id" json:"student_id"`
	StudentName       string     `db:"student_name" json:"student_name"`
	ParentID          *string    `db:"parent_id" json:"parent_id,omitempty"`
	FeeType           string     `db:"fee_type" json:"fee_type"`
	AmountDue         float64    `db:"amount_due" json:"amount_due"`
	AmountPaid        float64    `db:"amount_paid" json:"amount_paid"`
	OutstandingAmount float64    `db:"outstanding_amount" json:"outstanding_amount"`
	DueDate           *time.Time `db:"due_date" json:"due_date,omitempty"`
	Status            FeeStatus  `db:"status" json:"status"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time  `db:"updated_at" json:"updated_at"`
}

// FeeFilter scopes fee queries.
type FeeFilter struct {
	StudentID string
	ParentID  string
	Status    *FeeStatus
	Page      int
	PageSize  int
}

// FeePatch enumerates every updatable fee field. Nil means unchanged.
type FeePatch struct {
	FeeType    *string    `json:"fee_type,omitempty"`
	AmountDue  *float64   `json:"amount_due,omitempty"`
	AmountPaid *float64   `json:"amount_paid,omitempty"`
	DueDate    *time.Time `json:"due_date,omitempty"`
	Status     *FeeStatus `json:"status,omitempty"`
}
