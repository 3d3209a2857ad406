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

// AssignmentRepository manages persistence for assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

const assignmentSelect = `SELECT a.id, a.title, a.description, a.class_id, a.teacher_id, a.type, a.due_date, a.points,
        a.file_url, a.file_name, a.file_type, a.created_at, a.updated_at,
        c.name AS class_name, p.full_name AS teacher_name,
        (SELECT COUNT(*) FROM submissions sb WHERE sb.assignment_id = a.id) AS submission_count,
        (SELECT COUNT(*) FROM students st WHERE st.class_id = a.class_id) AS total_students`

const assignmentJoins = `FROM assignments a
        JOIN classes c ON c.id = a.class_id
        JOIN profiles p ON p.id = a.teacher_id`

// List returns assignments matching the provided filters.
func (r *AssignmentRepository) List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentDetail, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("a.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("a.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Type != "" {
		conditions = append(conditions, fmt.Sprintf("a.type = $%d", len(args)+1))
		args = append(args, filter.Type)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(a.title) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base := fmt.Sprintf("%s WHERE %s", assignmentJoins, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"title":      "a.title",
		"due_date":   "a.due_date",
		"created_at": "a.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "a.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
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

	query := fmt.Sprintf("%s %s ORDER BY %s %s LIMIT %d OFFSET %d", assignmentSelect, base, column, order, size, offset)

	var assignments []models.AssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}

	countQuery := "SELECT COUNT(a.id) " + base
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count assignments: %w", err)
	}
	return assignments, total, nil
}

// FindByID fetches an assignment detail by ID.
func (r *AssignmentRepository) FindByID(ctx context.Context, id string) (*models.AssignmentDetail, error) {
	query := fmt.Sprintf("%s %s WHERE a.id = $1", assignmentSelect, assignmentJoins)
	var detail models.AssignmentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Create inserts a new assignment.
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = now
	}
	assignment.UpdatedAt = now
	const query = `INSERT INTO assignments (id, title, description, class_id, teacher_id, type, due_date, points, file_url, file_name, file_type, created_at, updated_at)
        VALUES (:id, :title, :description, :class_id, :teacher_id, :type, :due_date, :points, :file_url, :file_name, :file_type, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// Update modifies an existing assignment.
func (r *AssignmentRepository) Update(ctx context.Context, assignment *models.Assignment) error {
	assignment.UpdatedAt = time.Now().UTC()
	const query = `UPDATE assignments SET title = :title, description = :description, class_id = :class_id, type = :type,
        due_date = :due_date, points = :points, file_url = :file_url, file_name = :file_name, file_type = :file_type, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	return nil
}

// Delete removes an assignment and its submissions.
func (r *AssignmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM assignments WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete assignment: %w", err)
	}
	return nil
}

// CountDueBetween counts assignments for a class due inside the window.
func (r *AssignmentRepository) CountDueBetween(ctx context.Context, classID string, from, to time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM assignments WHERE class_id = $1 AND due_date IS NOT NULL AND due_date > $2 AND due_date <= $3`
	var total int
	if err := r.db.GetContext(ctx, &total, query, classID, from, to); err != nil {
		return 0, fmt.Errorf("count due assignments: %w", err)
	}
	return total, nil
}
