package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/educ8/educ8-api/internal/models"
)

// FeeRepository manages persistence for fee ledger rows.
type FeeRepository struct {
	db *sqlx.DB
}

// NewFeeRepository constructs a FeeRepository.
func NewFeeRepository(db *sqlx.DB) *FeeRepository {
	return &FeeRepository{db: db}
}

const feeColumns = "id, student_id, student_name, parent_id, fee_type, amount_due, amount_paid, outstanding_amount, due_date, status, created_at, updated_at"

// List returns fee rows matching the provided filters.
func (r *FeeRepository) List(ctx context.Context, filter models.FeeFilter) ([]models.Fee, int, error) {
	base := "FROM fees"
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.ParentID != "" {
		conditions = append(conditions, fmt.Sprintf("parent_id = $%d", len(args)+1))
		args = append(args, filter.ParentID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", feeColumns, base, size, offset)

	var fees []models.Fee
	if err := r.db.SelectContext(ctx, &fees, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list fees: %w", err)
	}

	countQuery := "SELECT COUNT(*) " + base
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count fees: %w", err)
	}
	return fees, total, nil
}

// FindByID fetches a fee row by ID.
func (r *FeeRepository) FindByID(ctx context.Context, id string) (*models.Fee, error) {
	query := fmt.Sprintf("SELECT %s FROM fees WHERE id = $1", feeColumns)
	var fee models.Fee
	if err := r.db.GetContext(ctx, &fee, query, id); err != nil {
		return nil, err
	}
	return &fee, nil
}

// Create inserts a new fee row.
func (r *FeeRepository) Create(ctx context.Context, fee *models.Fee) error {
	if fee.ID == "" {
		fee.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if fee.CreatedAt.IsZero() {
		fee.CreatedAt = now
	}
	fee.UpdatedAt = now
	const query = `INSERT INTO fees (id, student_id, student_name, parent_id, fee_type, amount_due, amount_paid, outstanding_amount, due_date, status, created_at, updated_at)
        VALUES (:id, :student_id, :student_name, :parent_id, :fee_type, :amount_due, :amount_paid, :outstanding_amount, :due_date, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, fee); err != nil {
		return fmt.Errorf("create fee: %w", err)
	}
	return nil
}

// Update overwrites the mutable fee fields.
func (r *FeeRepository) Update(ctx context.Context, fee *models.Fee) error {
	fee.UpdatedAt = time.Now().UTC()
	const query = `UPDATE fees SET fee_type = :fee_type, amount_due = :amount_due, amount_paid = :amount_paid,
        outstanding_amount = :outstanding_amount, due_date = :due_date, status = :status, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, fee); err != nil {
		return fmt.Errorf("update fee: %w", err)
	}
	return nil
}

// Delete removes a fee row by ID.
func (r *FeeRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM fees WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete fee: %w", err)
	}
	return nil
}

// TotalOutstanding sums outstanding amounts, optionally scoped to a parent.
func (r *FeeRepository) TotalOutstanding(ctx context.Context, parentID string) (float64, error) {
	query := "SELECT COALESCE(SUM(outstanding_amount), 0) FROM fees"
	args := []interface{}{}
	if parentID != "" {
		query += " WHERE parent_id = $1"
		args = append(args, parentID)
	}
	var total float64
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("sum outstanding fees: %w", err)
	}
	return total, nil
}
