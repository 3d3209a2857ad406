package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/educ8/educ8-api/internal/access"
	"github.com/educ8/educ8-api/internal/models"
	appErrors "github.com/educ8/educ8-api/pkg/errors"
)

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	CreateWithProfile(ctx context.Context, profile *models.Profile, student *models.Student) error
	UpdateWithProfile(ctx context.Context, profile *models.Profile, student *models.Student) error
}

type studentProfileReader interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Deactivate(ctx context.Context, id string) error
}

// CreateStudentRequest creates a profile and its student row together.
type CreateStudentRequest struct {
	Email         string     `json:"email" validate:"required,email"`
	Password      string     `json:"password" validate:"required,min=6"`
	FullName      string     `json:"full_name" validate:"required"`
	Phone         *string    `json:"phone"`
	StudentNumber *string    `json:"student_number"`
	Address       *string    `json:"address"`
	DateOfBirth   *time.Time `json:"date_of_birth"`
	ClassID       *string    `json:"class_id"`
	ParentID      *string    `json:"parent_id"`
}

// StudentService provides student roster use cases.
type StudentService struct {
	repo      studentRepository
	profiles  studentProfileReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs a StudentService instance.
func NewStudentService(repo studentRepository, profiles studentProfileReader, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &StudentService{repo: repo, profiles: profiles, validator: validate, logger: logger}
}

// List returns students scoped to the viewer. Parents only see their own
// children.
func (s *StudentService) List(ctx context.Context, caps access.Capabilities, viewerID string, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	if caps.IsParent() {
		filter.ParentID = viewerID
	}
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, total, nil
}

// Get returns a student. Students may fetch themselves, parents their
// children, staff anyone.
func (s *StudentService) Get(ctx context.Context, caps access.Capabilities, viewerID, id string) (*models.StudentDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	switch {
	case caps.IsAdmin() || caps.IsTeacher():
	case caps.IsStudent() && id == viewerID:
	case caps.IsParent() && detail.ParentID != nil && *detail.ParentID == viewerID:
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot view this student")
	}
	return detail, nil
}

// Create builds the profile and student rows in one transaction so a failed
// student insert never leaves an orphan profile.
func (s *StudentService) Create(ctx context.Context, caps access.Capabilities, req CreateStudentRequest) (*models.StudentDetail, error) {
	if !caps.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can enrol students")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	exists, err := s.profiles.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	profile := &models.Profile{
		Email:        req.Email,
		PasswordHash: string(hash),
		FullName:     req.FullName,
		Role:         models.RoleStudent,
		Phone:        req.Phone,
		Active:       true,
	}
	student := &models.Student{
		StudentNumber: req.StudentNumber,
		Address:       req.Address,
		DateOfBirth:   req.DateOfBirth,
		ClassID:       req.ClassID,
		ParentID:      req.ParentID,
	}
	if err := s.repo.CreateWithProfile(ctx, profile, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.logger.Info("student created", zap.String("student_id", student.ID))
	return s.repo.FindByID(ctx, student.ID)
}

// Update applies a patch across the profile and student rows in one
// transaction.
func (s *StudentService) Update(ctx context.Context, caps access.Capabilities, id string, patch models.StudentPatch) (*models.StudentDetail, error) {
	if !caps.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can update students")
	}

	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	if patch.FullName != nil {
		profile.FullName = *patch.FullName
	}
	if patch.Phone != nil {
		profile.Phone = patch.Phone
	}
	if patch.AvatarURL != nil {
		profile.AvatarURL = patch.AvatarURL
	}

	student := detail.Student
	if patch.StudentNumber != nil {
		student.StudentNumber = patch.StudentNumber
	}
	if patch.Address != nil {
		student.Address = patch.Address
	}
	if patch.DateOfBirth != nil {
		student.DateOfBirth = patch.DateOfBirth
	}
	if patch.ClassID != nil {
		student.ClassID = patch.ClassID
	}
	if patch.ParentID != nil {
		student.ParentID = patch.ParentID
	}

	if err := s.repo.UpdateWithProfile(ctx, profile, &student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	return s.repo.FindByID(ctx, id)
}

// Deactivate marks the student's profile inactive instead of deleting rows.
func (s *StudentService) Deactivate(ctx context.Context, caps access.Capabilities, id string) error {
	if !caps.IsAdmin() {
		return appErrors.Clone(appErrors.ErrForbidden, "only administrators can deactivate students")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := s.profiles.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate student")
	}
	s.logger.Info("student deactivated", zap.String("student_id", id))
	return nil
}
