package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/educ8/educ8-api/internal/access"
	"github.com/educ8/educ8-api/internal/models"
	appErrors "github.com/educ8/educ8-api/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.ClassDetail, error)
	Create(ctx context.Context, class *models.Class) error
	Update(ctx context.Context, class *models.Class) error
	Delete(ctx context.Context, id string) error
}

type classProfileReader interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
}

type classStudentLister interface {
	ListByClass(ctx context.Context, classID string) ([]models.StudentDetail, error)
}

// CreateClassRequest is the payload for creating a class.
type CreateClassRequest struct {
	Name       string  `json:"name" validate:"required"`
	Subject    *string `json:"subject"`
	GradeLevel string  `json:"grade_level" validate:"required"`
	TeacherID  *string `json:"teacher_id"`
}

// ClassService provides class roster use cases.
type ClassService struct {
	repo      classRepository
	profiles  classProfileReader
	students  classStudentLister
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClassService constructs a ClassService instance.
func NewClassService(repo classRepository, profiles classProfileReader, students classStudentLister, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ClassService{repo: repo, profiles: profiles, students: students, validator: validate, logger: logger}
}

// List returns classes matching the filter.
func (s *ClassService) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, int, error) {
	classes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list classes")
	}
	return classes, total, nil
}

// Get returns a class detail by ID.
func (s *ClassService) Get(ctx context.Context, id string) (*models.ClassDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	return detail, nil
}

// Create validates and persists a class. The assigned teacher must hold the
// teacher role.
func (s *ClassService) Create(ctx context.Context, caps access.Capabilities, req CreateClassRequest) (*models.ClassDetail, error) {
	if !caps.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can create classes")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid class payload")
	}
	if err := s.checkTeacher(ctx, req.TeacherID); err != nil {
		return nil, err
	}

	class := &models.Class{
		Name:       req.Name,
		Subject:    req.Subject,
		GradeLevel: req.GradeLevel,
		TeacherID:  req.TeacherID,
	}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create class")
	}
	s.logger.Info("class created", zap.String("class_id", class.ID), zap.String("name", class.Name))
	return s.repo.FindByID(ctx, class.ID)
}

// Update applies a patch to a class.
func (s *ClassService) Update(ctx context.Context, caps access.Capabilities, id string, patch models.ClassPatch) (*models.ClassDetail, error) {
	if !caps.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can update classes")
	}
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	class := detail.Class
	if patch.Name != nil {
		class.Name = *patch.Name
	}
	if patch.Subject != nil {
		class.Subject = patch.Subject
	}
	if patch.GradeLevel != nil {
		class.GradeLevel = *patch.GradeLevel
	}
	if patch.TeacherID != nil {
		if err := s.checkTeacher(ctx, patch.TeacherID); err != nil {
			return nil, err
		}
		class.TeacherID = patch.TeacherID
	}

	if err := s.repo.Update(ctx, &class); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update class")
	}
	return s.repo.FindByID(ctx, id)
}

// Roster lists the students enrolled in a class.
func (s *ClassService) Roster(ctx context.Context, id string) ([]models.StudentDetail, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	students, err := s.students.ListByClass(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class roster")
	}
	return students, nil
}

// Delete removes a class.
func (s *ClassService) Delete(ctx context.Context, caps access.Capabilities, id string) error {
	if !caps.IsAdmin() {
		return appErrors.Clone(appErrors.ErrForbidden, "only administrators can delete classes")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete class")
	}
	s.logger.Info("class deleted", zap.String("class_id", id))
	return nil
}

func (s *ClassService) checkTeacher(ctx context.Context, teacherID *string) error {
	if teacherID == nil || *teacherID == "" {
		return nil
	}
	profile, err := s.profiles.FindByID(ctx, *teacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "assigned teacher does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher profile")
	}
	if profile.Role != models.RoleTeacher {
		return appErrors.Clone(appErrors.ErrValidation, "assigned profile is not a teacher")
	}
	if !profile.Active {
		return appErrors.Clone(appErrors.ErrValidation, "assigned teacher is not active")
	}
	return nil
}
