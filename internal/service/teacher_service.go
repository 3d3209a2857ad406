package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/educ8/educ8-api/internal/access"
	"github.com/educ8/educ8-api/internal/models"
	appErrors "github.com/educ8/educ8-api/pkg/errors"
)

type teacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.TeacherDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.TeacherDetail, error)
	CreateWithProfile(ctx context.Context, profile *models.Profile, teacher *models.Teacher) error
	UpdateWithProfile(ctx context.Context, profile *models.Profile, teacher *models.Teacher) error
}

// CreateTeacherRequest creates a profile and its teacher row together.
type CreateTeacherRequest struct {
	Email          string  `json:"email" validate:"required,email"`
	Password       string  `json:"password" validate:"required,min=6"`
	FullName       string  `json:"full_name" validate:"required"`
	Phone          *string `json:"phone"`
	EmployeeNumber *string `json:"employee_number"`
	Subject        *string `json:"subject"`
	Qualifications *string `json:"qualifications"`
}

// TeacherService provides teacher roster use cases.
type TeacherService struct {
	repo      teacherRepository
	profiles  studentProfileReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs a TeacherService instance.
func NewTeacherService(repo teacherRepository, profiles studentProfileReader, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TeacherService{repo: repo, profiles: profiles, validator: validate, logger: logger}
}

// List returns teachers matching the filter.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.TeacherDetail, int, error) {
	teachers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, total, nil
}

// Get returns a teacher detail by ID.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.TeacherDetail, error) {
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return detail, nil
}

// Create builds the profile and teacher rows in one transaction.
func (s *TeacherService) Create(ctx context.Context, caps access.Capabilities, req CreateTeacherRequest) (*models.TeacherDetail, error) {
	if !caps.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can create teachers")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
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
		Role:         models.RoleTeacher,
		Phone:        req.Phone,
		Active:       true,
	}
	teacher := &models.Teacher{
		EmployeeNumber: req.EmployeeNumber,
		Subject:        req.Subject,
		Qualifications: req.Qualifications,
	}
	if err := s.repo.CreateWithProfile(ctx, profile, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create teacher")
	}
	s.logger.Info("teacher created", zap.String("teacher_id", teacher.ID))
	return s.repo.FindByID(ctx, teacher.ID)
}

// Update applies a patch across the profile and teacher rows.
func (s *TeacherService) Update(ctx context.Context, caps access.Capabilities, id string, patch models.TeacherPatch) (*models.TeacherDetail, error) {
	if !caps.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only administrators can update teachers")
	}

	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
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

	teacher := detail.Teacher
	if patch.EmployeeNumber != nil {
		teacher.EmployeeNumber = patch.EmployeeNumber
	}
	if patch.Subject != nil {
		teacher.Subject = patch.Subject
	}
	if patch.Qualifications != nil {
		teacher.Qualifications = patch.Qualifications
	}

	if err := s.repo.UpdateWithProfile(ctx, profile, &teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update teacher")
	}
	return s.repo.FindByID(ctx, id)
}

// Deactivate marks the teacher's profile inactive.
func (s *TeacherService) Deactivate(ctx context.Context, caps access.Capabilities, id string) error {
	if !caps.IsAdmin() {
		return appErrors.Clone(appErrors.ErrForbidden, "only administrators can deactivate teachers")
	}
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if err := s.profiles.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate teacher")
	}
	s.logger.Info("teacher deactivated", zap.String("teacher_id", id))
	return nil
}
