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

// StudentRepository manages persistence for students and their profiles.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

const studentSelect = `SELECT s.id, s.student_number, s.address, s.date_of_birth, s.class_id, s.parent_id, s.created_at, s.updated_at,
        p.full_name, p.email, p.phone, p.avatar_url, p.active,
        c.name AS class_name, pr.full_name AS parent_name`

const studentJoins = `FROM students s
        JOIN profiles p ON p.id = s.id
        LEFT JOIN classes c ON c.id = s.class_id
        LEFT JOIN profiles pr ON pr.id = s.parent_id`

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("s.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.ParentID != "" {
		conditions = append(conditions, fmt.Sprintf("s.parent_id = $%d", len(args)+1))
		args = append(args, filter.ParentID)
	}
	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("p.active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(p.full_name) LIKE $%d OR LOWER(s.student_number) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	base := fmt.Sprintf("%s WHERE %s", studentJoins, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"full_name":      "p.full_name",
		"student_number": "s.student_number",
		"created_at":     "s.created_at",
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

	query := fmt.Sprintf("%s %s ORDER BY %s %s LIMIT %d OFFSET %d", studentSelect, base, column, order, size, offset)

	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := "SELECT COUNT(s.id) " + base
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// ListByClass returns every active student enrolled in a class, unpaginated,
// ordered by name. Rosters must never be cut off by a page limit.
func (r *StudentRepository) ListByClass(ctx context.Context, classID string) ([]models.StudentDetail, error) {
	query := fmt.Sprintf("%s %s WHERE s.class_id = $1 AND p.active = TRUE ORDER BY p.full_name ASC", studentSelect, studentJoins)
	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, classID); err != nil {
		return nil, fmt.Errorf("list class students: %w", err)
	}
	return students, nil
}

// FindByID fetches a student detail by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	query := fmt.Sprintf("%s %s WHERE s.id = $1", studentSelect, studentJoins)
	var detail models.StudentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		return nil, err
	}
	return &detail, nil
}

// CreateWithProfile inserts the profile row and the student row in a single
// transaction so a failure between the two inserts leaves no orphan.
func (r *StudentRepository) CreateWithProfile(ctx context.Context, profile *models.Profile, student *models.Student) error {
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	student.ID = profile.ID
	now := time.Now().UTC()
	profile.CreatedAt, profile.UpdatedAt = now, now
	student.CreatedAt, student.UpdatedAt = now, now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create student: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const profileQuery = `INSERT INTO profiles (id, email, password_hash, full_name, role, avatar_url, phone, active, created_at, updated_at)
        VALUES (:id, :email, :password_hash, :full_name, :role, :avatar_url, :phone, :active, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, profileQuery, profile); err != nil {
		return fmt.Errorf("create student profile: %w", err)
	}

	const studentQuery = `INSERT INTO students (id, student_number, address, date_of_birth, class_id, parent_id, created_at, updated_at)
        VALUES (:id, :student_number, :address, :date_of_birth, :class_id, :parent_id, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, studentQuery, student); err != nil {
		return fmt.Errorf("create student row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create student: %w", err)
	}
	return nil
}

// UpdateWithProfile updates the profile and student rows together.
func (r *StudentRepository) UpdateWithProfile(ctx context.Context, profile *models.Profile, student *models.Student) error {
	now := time.Now().UTC()
	profile.UpdatedAt = now
	student.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update student: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const profileQuery = `UPDATE profiles SET full_name = :full_name, avatar_url = :avatar_url, phone = :phone, updated_at = :updated_at WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, profileQuery, profile); err != nil {
		return fmt.Errorf("update student profile: %w", err)
	}

	const studentQuery = `UPDATE students SET student_number = :student_number, address = :address, date_of_birth = :date_of_birth, class_id = :class_id, parent_id = :parent_id, updated_at = :updated_at WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, studentQuery, student); err != nil {
		return fmt.Errorf("update student row: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update student: %w", err)
	}
	return nil
}

// Count returns the number of students, optionally scoped to a class.
func (r *StudentRepository) Count(ctx context.Context, classID string) (int, error) {
	query := "SELECT COUNT(*) FROM students"
	args := []interface{}{}
	if classID != "" {
		query += " WHERE class_id = $1"
		args = append(args, classID)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, query, args...); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}
