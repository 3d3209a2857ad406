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

// AttendanceRepository manages persistence for attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// List returns attendance rows with student and class display fields.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, int, error) {
	base := `FROM attendance at
        JOIN profiles p ON p.id = at.student_id
        LEFT JOIN students st ON st.id = at.student_id
        JOIN classes c ON c.id = at.class_id`
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("at.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("at.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Date != nil {
		conditions = append(conditions, fmt.Sprintf("at.date = $%d", len(args)+1))
		args = append(args, *filter.Date)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("at.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT at.id, at.student_id, at.class_id, at.date, at.status, at.created_at,
        p.full_name AS student_name, st.student_number, c.name AS class_name
        %s ORDER BY at.date DESC LIMIT %d OFFSET %d`, base, size, offset)

	var records []models.AttendanceDetail
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}

	countQuery := "SELECT COUNT(at.id) " + base
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}
	return records, total, nil
}

// Upsert records attendance for a (student, class, date), overwriting the
// status when the row already exists.
func (r *AttendanceRepository) Upsert(ctx context.Context, record *models.Attendance) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO attendance (id, student_id, class_id, date, status, created_at)
        VALUES (:id, :student_id, :class_id, :date, :status, :created_at)
        ON CONFLICT (student_id, class_id, date) DO UPDATE SET status = EXCLUDED.status`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("upsert attendance: %w", err)
	}
	return nil
}

// Delete removes an attendance row by ID.
func (r *AttendanceRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM attendance WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	return nil
}

// ListStatuses returns just the status column for the matching rows. Used by
// the stats aggregation.
func (r *AttendanceRepository) ListStatuses(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceStatus, error) {
	query := "SELECT status FROM attendance WHERE 1=1"
	args := []interface{}{}
	if filter.ClassID != "" {
		query += fmt.Sprintf(" AND class_id = $%d", len(args)+1)
		args = append(args, filter.ClassID)
	}
	if filter.StudentID != "" {
		query += fmt.Sprintf(" AND student_id = $%d", len(args)+1)
		args = append(args, filter.StudentID)
	}
	if filter.Date != nil {
		query += fmt.Sprintf(" AND date = $%d", len(args)+1)
		args = append(args, *filter.Date)
	}
	var statuses []models.AttendanceStatus
	if err := r.db.SelectContext(ctx, &statuses, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance statuses: %w", err)
	}
	return statuses, nil
}
