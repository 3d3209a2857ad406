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

// TeacherRepository manages persistence for teachers and their profiles.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

const teacherSelect = `SELECT t.id, t.employee_number, t.subject, t.qualifications, t.created_at, t.updated_at,
        p.full_name, p.email, p.phone, p.avatar_url, p.active,
        COUNT(c.id) AS class_count`

const teacherJoins = `FROM teachers t
        JOIN profiles p ON p.id = t.id
        LEFT JOIN classes c ON c.teacher_id = t.id`

// List returns teachers matching the provided filters.
func (r *TeacherRepository) List(ctx context.Context, filter models.TeacherFilter) ([]models.TeacherDetail, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.Subject != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(t.subject) = LOWER($%d)", len(args)+1))
		args = append(args, filter.Subject)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("p.active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(p.full_name) LIKE $%d OR LOWER(p.email) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base := fmt.Sprintf("%s WHERE %s", teacherJoins, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"full_name":  "p.full_name",
		"subject":    "t.subject",
		"created_at": "t.created_at",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "p.full_name"
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

	query := fmt.Sprintf("%s %s GROUP BY t.id, p.full_name, p.email, p.phone, p.avatar_url, p.active ORDER BY %s %s LIMIT %d OFFSET %d",
		teacherSelect, base, column, order, size, offset)

	var teachers []models.TeacherDetail
	if err := r.db.SelectContext(ctx, &teachers, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list teachers: %w", err)
	}

	countQuery := "SELECT COUNT(DISTINCT t.id) " + base
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count teachers: %w", err)
	}
	return teachers, total, nil
}

// FindByID fetches a teacher detail by ID.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.TeacherDetail, error) {
	query := fmt.Sprintf("%s %s WHERE t.id = $1 GROUP BY t.id, p.full_name, p.email, p.phone, p.avatar_url, p.active", teacherSelect, teacherJoins)
	var detail models.TeacherDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// CreateWithProfile inserts the profile row and the teacher row in a single
// transaction so a failure between the two inserts leaves no orphan.
func (r *TeacherRepository) CreateWithProfile(ctx context.Context, profile *models.Profile, teacher *models.Teacher) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	teacher.ID = profile.ID
	now := time.Now().UTC()
	profile.CreatedAt, profile.UpdatedAt = now, now
	teacher.CreatedAt, teacher.UpdatedAt = now, now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create teacher: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const profileQuery = `INSERT INTO profiles (id, email, password_hash, full_name, role, avatar_url, phone, active, created_at, updated_at)
        VALUES (:id, :email, :password_hash, :full_name, :role, :avatar_url, :phone, :active, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, profileQuery, profile); err != nil {
		return fmt.Errorf("create teacher profile: %w", err)
	}

	const teacherQuery = `INSERT INTO teachers (id, employee_number, subject, qualifications, created_at, updated_at)
        VALUES (:id, :employee_number, :subject, :qualifications, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, teacherQuery, teacher); err != nil {
		return fmt.Errorf("create teacher row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create teacher: %w", err)
	}
	return nil
}

// UpdateWithProfile updates the profile and teacher rows together.
func (r *TeacherRepository) UpdateWithProfile(ctx context.Context, profile *models.Profile, teacher *models.Teacher) error {
	now := time.Now().UTC()
	profile.UpdatedAt = now
	teacher.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update teacher: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const profileQuery = `UPDATE profiles SET full_name = :full_name, avatar_url = :avatar_url, phone = :phone, updated_at = :updated_at WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, profileQuery, profile); err != nil {
		return fmt.Errorf("update teacher profile: %w", err)
	}

	const teacherQuery = `UPDATE teachers SET employee_number = :employee_number, subject = :subject, qualifications = :qualifications, updated_at = :updated_at WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, teacherQuery, teacher); err != nil {
		return fmt.Errorf("update teacher row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update teacher: %w", err)
	}
	return nil
}

// Count returns the number of teachers.
func (r *TeacherRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM teachers"); err != nil {
		return 0, fmt.Errorf("count teachers: %w", err)
	}
	return total, nil
}
