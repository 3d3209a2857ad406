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

// GradeRepository manages persistence for gradebook entries.
type GradeRepository struct {
	db *sqlx.DB
}

// NewGradeRepository constructs a GradeRepository.
func NewGradeRepository(db *sqlx.DB) *GradeRepository {
	return &GradeRepository{db: db}
}

const gradeSelect = `SELECT g.id, g.student_id, g.class_id, g.assignment_id, g.subject, g.grade, g.max_grade, g.date_recorded, g.created_at,
        p.full_name AS student_name, st.student_number, c.name AS class_name, a.title AS assignment_title`

const gradeJoins = `FROM grades g
        JOIN profiles p ON p.id = g.student_id
        LEFT JOIN students st ON st.id = g.student_id
        JOIN classes c ON c.id = g.class_id
        LEFT JOIN assignments a ON a.id = g.assignment_id`

// List returns gradebook entries matching the provided filters.
func (r *GradeRepository) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("g.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("g.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.Subject != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(g.subject) = LOWER($%d)", len(args)+1))
		args = append(args, filter.Subject)
	}

	base := fmt.Sprintf("%s WHERE %s", gradeJoins, strings.Join(conditions, " AND "))

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("%s %s ORDER BY g.date_recorded DESC LIMIT %d OFFSET %d", gradeSelect, base, size, offset)

	var grades []models.GradeDetail
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list grades: %w", err)
	}

	countQuery := "SELECT COUNT(g.id) " + base
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count grades: %w", err)
	}
	return grades, total, nil
}

// FindByID fetches a gradebook entry by ID.
func (r *GradeRepository) FindByID(ctx context.Context, id string) (*models.GradeDetail, error) {
	query := fmt.Sprintf("%s %s WHERE g.id = $1", gradeSelect, gradeJoins)
	var detail models.GradeDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// ListByStudent returns every grade row for a student, newest first.
func (r *GradeRepository) ListByStudent(ctx context.Context, studentID string, limit int) ([]models.GradeDetail, error) {
	query := fmt.Sprintf("%s %s WHERE g.student_id = $1 ORDER BY g.date_recorded DESC", gradeSelect, gradeJoins)
	if limit > 0 {
		query = fmt.Sprintf("%s LIMIT %d", query, limit)
	}
	var grades []models.GradeDetail
	if err := r.db.SelectContext(ctx, &grades, query, studentID); err != nil {
		return nil, fmt.Errorf("list student grades: %w", err)
	}
	return grades, nil
}

// Create inserts a new gradebook entry.
func (r *GradeRepository) Create(ctx context.Context, grade *models.Grade) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	if grade.CreatedAt.IsZero() {
		grade.CreatedAt = time.Now().UTC()
	}
	if grade.DateRecorded.IsZero() {
		grade.DateRecorded = grade.CreatedAt
	}
	const query = `INSERT INTO grades (id, student_id, class_id, assignment_id, subject, grade, max_grade, date_recorded, created_at)
        VALUES (:id, :student_id, :class_id, :assignment_id, :subject, :grade, :max_grade, :date_recorded, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("create grade: %w", err)
	}
	return nil
}

// Update modifies an existing gradebook entry.
func (r *GradeRepository) Update(ctx context.Context, grade *models.Grade) error {
	const query = `UPDATE grades SET subject = :subject, grade = :grade, max_grade = :max_grade, date_recorded = :date_recorded, assignment_id = :assignment_id WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("update grade: %w", err)
	}
	return nil
}

// Delete removes a gradebook entry by ID.
func (r *GradeRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM grades WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete grade: %w", err)
	}
	return nil
}
