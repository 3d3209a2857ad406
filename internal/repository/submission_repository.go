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

// SubmissionRepository manages persistence for assignment submissions.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs a SubmissionRepository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

const submissionColumns = `sb.id, sb.assignment_id, sb.student_id, sb.content, sb.file_url, sb.file_name, sb.file_type,
        sb.status, sb.feedback, sb.grade, sb.submitted_at, sb.graded_at, sb.created_at, sb.updated_at`

// List returns submissions with student and assignment display fields.
func (r *SubmissionRepository) List(ctx context.Context, filter models.SubmissionFilter) ([]models.SubmissionDetail, int, error) {
	base := `FROM submissions sb
        JOIN profiles p ON p.id = sb.student_id
        LEFT JOIN students st ON st.id = sb.student_id
        JOIN assignments a ON a.id = sb.assignment_id`
	args := []interface{}{}
	conditions := []string{"1=1"}

	if filter.AssignmentID != "" {
		conditions = append(conditions, fmt.Sprintf("sb.assignment_id = $%d", len(args)+1))
		args = append(args, filter.AssignmentID)
	}
	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("sb.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("sb.status = $%d", len(args)+1))
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

	query := fmt.Sprintf(`SELECT %s, p.full_name AS student_name, st.student_number, a.title AS assignment_title
        %s ORDER BY sb.created_at DESC LIMIT %d OFFSET %d`, submissionColumns, base, size, offset)

	var submissions []models.SubmissionDetail
	if err := r.db.SelectContext(ctx, &submissions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list submissions: %w", err)
	}

	countQuery := "SELECT COUNT(sb.id) " + base
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count submissions: %w", err)
	}
	return submissions, total, nil
}

// FindByID fetches a submission by ID.
func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	query := fmt.Sprintf("SELECT %s FROM submissions sb WHERE sb.id = $1", submissionColumns)
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, id); err != nil {
		return nil, err
	}
	return &submission, nil
}

// FindByAssignmentAndStudent fetches the one submission for the pair, the
// effective uniqueness key for the workflow.
func (r *SubmissionRepository) FindByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (*models.Submission, error) {
	query := fmt.Sprintf("SELECT %s FROM submissions sb WHERE sb.assignment_id = $1 AND sb.student_id = $2", submissionColumns)
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, assignmentID, studentID); err != nil {
		return nil, err
	}
	return &submission, nil
}

// ListByStudent returns all submissions owned by a student.
func (r *SubmissionRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Submission, error) {
	query := fmt.Sprintf("SELECT %s FROM submissions sb WHERE sb.student_id = $1 ORDER BY sb.created_at DESC", submissionColumns)
	var submissions []models.Submission
	if err := r.db.SelectContext(ctx, &submissions, query, studentID); err != nil {
		return nil, fmt.Errorf("list student submissions: %w", err)
	}
	return submissions, nil
}

// Create inserts a new submission.
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = now
	}
	submission.UpdatedAt = now
	const query = `INSERT INTO submissions (id, assignment_id, student_id, content, file_url, file_name, file_type, status, feedback, grade, submitted_at, graded_at, created_at, updated_at)
        VALUES (:id, :assignment_id, :student_id, :content, :file_url, :file_name, :file_type, :status, :feedback, :grade, :submitted_at, :graded_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

// Update overwrites the mutable submission fields.
func (r *SubmissionRepository) Update(ctx context.Context, submission *models.Submission) error {
	submission.UpdatedAt = time.Now().UTC()
	const query = `UPDATE submissions SET content = :content, file_url = :file_url, file_name = :file_name, file_type = :file_type,
        status = :status, feedback = :feedback, grade = :grade, submitted_at = :submitted_at, graded_at = :graded_at, updated_at = :updated_at
        WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		return fmt.Errorf("update submission: %w", err)
	}
	return nil
}

// CountPendingForTeacher counts ungraded submissions across a teacher's assignments.
func (r *SubmissionRepository) CountPendingForTeacher(ctx context.Context, teacherID string) (int, error) {
	const query = `SELECT COUNT(sb.id) FROM submissions sb
        JOIN assignments a ON a.id = sb.assignment_id
        WHERE a.teacher_id = $1 AND sb.status = $2`
	var total int
	if err := r.db.GetContext(ctx, &total, query, teacherID, models.SubmissionStatusSubmitted); err != nil {
		return 0, fmt.Errorf("count pending submissions: %w", err)
	}
	return total, nil
}
