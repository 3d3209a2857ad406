package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/educ8/educ8-api/internal/access"
	"github.com/educ8/educ8-api/internal/models"
	appErrors "github.com/educ8/educ8-api/pkg/errors"
)

type submissionRepository interface {
	List(ctx context.Context, filter models.SubmissionFilter) ([]models.SubmissionDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	FindByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (*models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	Update(ctx context.Context, submission *models.Submission) error
}

type submissionAssignmentReader interface {
	FindByID(ctx context.Context, id string) (*models.AssignmentDetail, error)
}

// SubmitRequest is the payload for handing in an assignment.
type SubmitRequest struct {
	AssignmentID string  `json:"assignment_id" validate:"required"`
	Content      *string `json:"content"`
	FileURL      *string `json:"file_url"`
	FileName     *string `json:"file_name"`
	FileType     *string `json:"file_type"`
}

// GradeSubmissionRequest is the payload for grading a submission.
type GradeSubmissionRequest struct {
	Grade    float64 `json:"grade" validate:"min=0"`
	Feedback *string `json:"feedback"`
}

// SubmissionService runs the submit and grade workflow.
type SubmissionService struct {
	repo        submissionRepository
	assignments submissionAssignmentReader
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(repo submissionRepository, assignments submissionAssignmentReader, validate *validator.Validate, logger *zap.Logger) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SubmissionService{
		repo:        repo,
		assignments: assignments,
		validator:   validate,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Submit hands in work for an assignment. A second submit before grading
// replaces the previous attempt; once graded, resubmission is rejected.
func (s *SubmissionService) Submit(ctx context.Context, caps access.Capabilities, studentID string, req SubmitRequest) (*models.Submission, error) {
	if !caps.CanSubmitAssignments() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only students can submit assignments")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}
	if (req.Content == nil || *req.Content == "") && (req.FileURL == nil || *req.FileURL == "") {
		return nil, appErrors.Clone(appErrors.ErrEmptySubmission, "")
	}

	if _, err := s.assignments.FindByID(ctx, req.AssignmentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}

	now := s.now()
	existing, err := s.repo.FindByAssignmentAndStudent(ctx, req.AssignmentID, studentID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check submission")
	}

	if existing != nil {
		if existing.Status == models.SubmissionStatusGraded {
			return nil, appErrors.Clone(appErrors.ErrAlreadyGraded, "graded submissions cannot be replaced")
		}
		existing.Content = req.Content
		existing.FileURL = req.FileURL
		existing.FileName = req.FileName
		existing.FileType = req.FileType
		existing.SubmittedAt = &now
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update submission")
		}
		return existing, nil
	}

	submission := &models.Submission{
		AssignmentID: req.AssignmentID,
		StudentID:    studentID,
		Content:      req.Content,
		FileURL:      req.FileURL,
		FileName:     req.FileName,
		FileType:     req.FileType,
		Status:       models.SubmissionStatusSubmitted,
		SubmittedAt:  &now,
	}
	if err := s.repo.Create(ctx, submission); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create submission")
	}
	s.logger.Info("submission created",
		zap.String("assignment_id", req.AssignmentID),
		zap.String("student_id", studentID))
	return submission, nil
}

// Grade records a grade and optional feedback on a submission. Teachers may
// only grade submissions for their own assignments.
func (s *SubmissionService) Grade(ctx context.Context, caps access.Capabilities, graderID, submissionID string, req GradeSubmissionRequest) (*models.Submission, error) {
	if !caps.CanGradeAssignments() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role cannot grade submissions")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	submission, err := s.repo.FindByID(ctx, submissionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}

	assignment, err := s.assignments.FindByID(ctx, submission.AssignmentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	if !caps.IsAdmin() && assignment.TeacherID != graderID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "assignment belongs to another teacher")
	}

	now := s.now()
	submission.Grade = &req.Grade
	submission.Feedback = req.Feedback
	submission.Status = models.SubmissionStatusGraded
	submission.GradedAt = &now
	if err := s.repo.Update(ctx, submission); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to grade submission")
	}
	s.logger.Info("submission graded",
		zap.String("submission_id", submission.ID),
		zap.Float64("grade", req.Grade))
	return submission, nil
}

// List returns submissions scoped to the viewer. Students only see their own.
func (s *SubmissionService) List(ctx context.Context, caps access.Capabilities, viewerID string, filter models.SubmissionFilter) ([]models.SubmissionDetail, int, error) {
	if caps.CanSubmitAssignments() {
		filter.StudentID = viewerID
	} else if !caps.CanGradeAssignments() {
		return nil, 0, appErrors.Clone(appErrors.ErrForbidden, "role cannot list submissions")
	}
	submissions, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	return submissions, total, nil
}

// Get returns a single submission, restricted to its owner and graders.
func (s *SubmissionService) Get(ctx context.Context, caps access.Capabilities, viewerID, id string) (*models.Submission, error) {
	submission, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	if !caps.CanGradeAssignments() && submission.StudentID != viewerID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "submission belongs to another student")
	}
	return submission, nil
}
