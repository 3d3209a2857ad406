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

type assignmentRepository interface {
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.AssignmentDetail, error)
	Create(ctx context.Context, assignment *models.Assignment) error
	Update(ctx context.Context, assignment *models.Assignment) error
	Delete(ctx context.Context, id string) error
}

type assignmentSubmissionReader interface {
	FindByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (*models.Submission, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Submission, error)
}

type assignmentStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
}

// CreateAssignmentRequest is the payload for creating an assignment.
type CreateAssignmentRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description *string    `json:"description"`
	ClassID     string     `json:"class_id" validate:"required"`
	Type        string     `json:"type" validate:"required"`
	DueDate     *time.Time `json:"due_date"`
	Points      *float64   `json:"points"`
	FileURL     *string    `json:"file_url"`
	FileName    *string    `json:"file_name"`
	FileType    *string    `json:"file_type"`
}

// AssignmentService provides assignment use cases with viewer-scoped listings.
type AssignmentService struct {
	repo        assignmentRepository
	submissions assignmentSubmissionReader
	students    assignmentStudentReader
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewAssignmentService constructs an AssignmentService instance.
func NewAssignmentService(repo assignmentRepository, submissions assignmentSubmissionReader, students assignmentStudentReader, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AssignmentService{
		repo:        repo,
		submissions: submissions,
		students:    students,
		validator:   validate,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// DeriveStatus computes the display status for an assignment as seen with the
// viewer's submission. A submission always wins over the due date: a graded or
// submitted assignment never shows as overdue.
func DeriveStatus(assignment *models.Assignment, submission *models.Submission, now time.Time) models.AssignmentStatus {
	if submission != nil {
		if submission.Status == models.SubmissionStatusGraded {
			return models.AssignmentStatusGraded
		}
		return models.AssignmentStatusSubmitted
	}
	if assignment.DueDate != nil && now.After(*assignment.DueDate) {
		return models.AssignmentStatusOverdue
	}
	return models.AssignmentStatusActive
}

// ListForViewer returns assignments scoped to the viewer's role. Teachers see
// their own assignments, students see their class with their submission
// attached, parents see their children's classes, admins see everything.
func (s *AssignmentService) ListForViewer(ctx context.Context, caps access.Capabilities, viewerID string, filter models.AssignmentFilter) ([]models.AssignmentView, int, error) {
	switch {
	case caps.CanViewAllAssignments():
		// admins keep the caller-supplied filter untouched
	case caps.IsTeacher():
		filter.TeacherID = viewerID
	case caps.CanSubmitAssignments():
		student, err := s.students.FindByID(ctx, viewerID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return []models.AssignmentView{}, 0, nil
			}
			return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
		}
		if student.ClassID == nil {
			return []models.AssignmentView{}, 0, nil
		}
		filter.ClassID = *student.ClassID
	case caps.CanViewChildAssignments():
		return s.listForParent(ctx, viewerID, filter)
	default:
		return nil, 0, appErrors.Clone(appErrors.ErrForbidden, "role cannot view assignments")
	}

	assignments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}

	var ownSubmissions map[string]*models.Submission
	if caps.CanSubmitAssignments() {
		ownSubmissions, err = s.submissionsByAssignment(ctx, viewerID)
		if err != nil {
			return nil, 0, err
		}
	}

	now := s.now()
	views := make([]models.AssignmentView, 0, len(assignments))
	for i := range assignments {
		var submission *models.Submission
		if ownSubmissions != nil {
			submission = ownSubmissions[assignments[i].ID]
		}
		views = append(views, models.AssignmentView{
			AssignmentDetail: assignments[i],
			Status:           DeriveStatus(&assignments[i].Assignment, submission, now),
			Submission:       submission,
		})
	}
	return views, total, nil
}

func (s *AssignmentService) listForParent(ctx context.Context, parentID string, filter models.AssignmentFilter) ([]models.AssignmentView, int, error) {
	children, _, err := s.students.List(ctx, models.StudentFilter{ParentID: parentID, PageSize: 100})
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list children")
	}

	now := s.now()
	seen := map[string]bool{}
	views := []models.AssignmentView{}
	for _, child := range children {
		if child.ClassID == nil {
			continue
		}
		childFilter := filter
		childFilter.ClassID = *child.ClassID
		assignments, _, err := s.repo.List(ctx, childFilter)
		if err != nil {
			return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
		}
		submissions, err := s.submissionsByAssignment(ctx, child.ID)
		if err != nil {
			return nil, 0, err
		}
		for i := range assignments {
			if seen[assignments[i].ID] {
				continue
			}
			seen[assignments[i].ID] = true
			submission := submissions[assignments[i].ID]
			views = append(views, models.AssignmentView{
				AssignmentDetail: assignments[i],
				Status:           DeriveStatus(&assignments[i].Assignment, submission, now),
				Submission:       submission,
			})
		}
	}
	return views, len(views), nil
}

func (s *AssignmentService) submissionsByAssignment(ctx context.Context, studentID string) (map[string]*models.Submission, error) {
	submissions, err := s.submissions.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	byAssignment := make(map[string]*models.Submission, len(submissions))
	for i := range submissions {
		byAssignment[submissions[i].AssignmentID] = &submissions[i]
	}
	return byAssignment, nil
}

// Get returns a single assignment with the viewer's derived status.
func (s *AssignmentService) Get(ctx context.Context, caps access.Capabilities, viewerID, id string) (*models.AssignmentView, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}

	var submission *models.Submission
	if caps.CanSubmitAssignments() {
		submission, err = s.submissions.FindByAssignmentAndStudent(ctx, id, viewerID)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
		}
	}

	return &models.AssignmentView{
		AssignmentDetail: *detail,
		Status:           DeriveStatus(&detail.Assignment, submission, s.now()),
		Submission:       submission,
	}, nil
}

// Create validates and persists a new assignment owned by the caller.
func (s *AssignmentService) Create(ctx context.Context, caps access.Capabilities, teacherID string, req CreateAssignmentRequest) (*models.AssignmentView, error) {
	if !caps.CanManageAssignments() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role cannot create assignments")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	assignment := &models.Assignment{
		Title:       req.Title,
		Description: req.Description,
		ClassID:     req.ClassID,
		TeacherID:   teacherID,
		Type:        req.Type,
		DueDate:     req.DueDate,
		Points:      req.Points,
		FileURL:     req.FileURL,
		FileName:    req.FileName,
		FileType:    req.FileType,
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	s.logger.Info("assignment created", zap.String("assignment_id", assignment.ID), zap.String("class_id", assignment.ClassID))
	return s.Get(ctx, caps, teacherID, assignment.ID)
}

// Update applies a patch to an assignment. Teachers may only touch their own.
func (s *AssignmentService) Update(ctx context.Context, caps access.Capabilities, viewerID, id string, patch models.AssignmentPatch) (*models.AssignmentView, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	if !caps.IsAdmin() && detail.TeacherID != viewerID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "assignment belongs to another teacher")
	}

	assignment := detail.Assignment
	if patch.Title != nil {
		assignment.Title = *patch.Title
	}
	if patch.Description != nil {
		assignment.Description = patch.Description
	}
	if patch.ClassID != nil {
		assignment.ClassID = *patch.ClassID
	}
	if patch.Type != nil {
		assignment.Type = *patch.Type
	}
	if patch.DueDate != nil {
		assignment.DueDate = patch.DueDate
	}
	if patch.Points != nil {
		assignment.Points = patch.Points
	}
	if patch.FileURL != nil {
		assignment.FileURL = patch.FileURL
	}
	if patch.FileName != nil {
		assignment.FileName = patch.FileName
	}
	if patch.FileType != nil {
		assignment.FileType = patch.FileType
	}

	if err := s.repo.Update(ctx, &assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update assignment")
	}
	return s.Get(ctx, caps, viewerID, id)
}

// Delete removes an assignment. Teachers may only delete their own.
func (s *AssignmentService) Delete(ctx context.Context, caps access.Capabilities, viewerID, id string) error {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	if !caps.IsAdmin() && detail.TeacherID != viewerID {
		return appErrors.Clone(appErrors.ErrForbidden, "assignment belongs to another teacher")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	s.logger.Info("assignment deleted", zap.String("assignment_id", id))
	return nil
}

// Stats aggregates the viewer's assignment list into summary counts. The week
// window is seven days from now.
func (s *AssignmentService) Stats(ctx context.Context, caps access.Capabilities, viewerID string, filter models.AssignmentFilter) (*models.AssignmentStats, error) {
	filter.Page = 1
	filter.PageSize = 100
	views, _, err := s.ListForViewer(ctx, caps, viewerID, filter)
	if err != nil {
		return nil, err
	}

	now := s.now()
	weekEnd := now.Add(7 * 24 * time.Hour)
	stats := &models.AssignmentStats{Total: len(views)}
	for _, view := range views {
		switch view.Status {
		case models.AssignmentStatusActive:
			stats.Active++
		case models.AssignmentStatusOverdue:
			stats.Overdue++
		case models.AssignmentStatusSubmitted, models.AssignmentStatusGraded:
			stats.Completed++
		}
		if view.DueDate != nil && view.DueDate.After(now) && view.DueDate.Before(weekEnd) {
			stats.DueThisWeek++
		}
	}
	return stats, nil
}
