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

// ClassRepository manages persistence for class records.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a ClassRepository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns classes matching the provided filters.
func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, int, error) {
	base := `FROM classes c
        LEFT JOIN profiles t ON t.id = c.teacher_id
        LEFT JOIN students s ON s.class_id = c.id`
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(c.name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	if filter.GradeLevel != "" {
		conditions = append(conditions, fmt.Sprintf("c.grade_level = $%d", len(args)+1))
		args = append(args, filter.GradeLevel)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("c.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}

	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"name":        "c.name",
		"grade_level": "c.grade_level",
		"created_at":  "c.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "c.name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT c.id, c.name, c.subject, c.grade_level, c.teacher_id, c.created_at, c.updated_at,
        t.full_name AS teacher_name, COUNT(s.id) AS student_count
        %s GROUP BY c.id, t.full_name ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, size, offset)

	var classes []models.ClassDetail
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list classes: %w", err)
	}

	countQuery := "SELECT COUNT(DISTINCT c.id) " + base
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count classes: %w", err)
	}
	return classes, total, nil
}

// FindByID fetches a class detail by ID.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.ClassDetail, error) {
	const query = `SELECT c.id, c.name, c.subject, c.grade_level, c.teacher_id, c.created_at, c.updated_at,
        t.full_name AS teacher_name, COUNT(s.id) AS student_count
        FROM classes c
        LEFT JOIN profiles t ON t.id = c.teacher_id
        LEFT JOIN students s ON s.class_id = c.id
        WHERE c.id = $1
        GROUP BY c.id, t.full_name`
	var detail models.ClassDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Create inserts a new class record.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if class.CreatedAt.IsZero() {
		class.CreatedAt = now
	}
	class.UpdatedAt = now
	const query = `INSERT INTO classes (id, name, subject, grade_level, teacher_id, created_at, updated_at)
        VALUES (:id, :name, :subject, :grade_level, :teacher_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// Update modifies an existing class.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	class.UpdatedAt = time.Now().UTC()
	const query = `UPDATE classes SET name = :name, subject = :subject, grade_level = :grade_level, teacher_id = :teacher_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	return nil
}

// Delete removes a class by ID.
func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM classes WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	return nil
}

// Count returns the number of classes, optionally scoped to a teacher.
func (r *ClassRepository) Count(ctx context.Context, teacherID string) (int, error) {
	query := "SELECT COUNT(*) FROM classes"
	args := []interface{}{}
	if teacherID != "" {
		query += " WHERE teacher_id = $1"
		args = append(args, teacherID)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count classes: %w", err)
	}
	return total, nil
}
