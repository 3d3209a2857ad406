package service

import (
	"context"
	"database/sql"
	"errors"

	"go.uber.org/zap"

	"github.com/educ8/educ8-api/internal/access"
	"github.com/educ8/educ8-api/internal/models"
	appErrors "github.com/educ8/educ8-api/pkg/errors"
)

type parentProfileLister interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, int, error)
}

type parentStudentLister interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
}

// ParentService lists parent profiles and the students linked to them.
type ParentService struct {
	profiles parentProfileLister
	students parentStudentLister
	logger   *zap.Logger
}

// NewParentService constructs a ParentService instance.
func NewParentService(profiles parentProfileLister, students parentStudentLister, logger *zap.Logger) *ParentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParentService{profiles: profiles, students: students, logger: logger}
}

// List returns parent profiles matching the filter. The role filter is always
// forced to parent, whatever the caller asked for.
func (s *ParentService) List(ctx context.Context, caps access.Capabilities, filter models.ProfileFilter) ([]models.Profile, int, error) {
	if !caps.IsAdmin() && !caps.IsTeacher() {
		return nil, 0, appErrors.Clone(appErrors.ErrForbidden, "role cannot list parents")
	}

	role := models.RoleParent
	filter.Role = &role

	parents, total, err := s.profiles.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list parents")
	}
	return parents, total, nil
}

// Children returns the students linked to a parent. Staff can look up any
// parent; a parent can only look up their own children.
func (s *ParentService) Children(ctx context.Context, caps access.Capabilities, viewerID, parentID string) ([]models.StudentDetail, error) {
	if !caps.IsAdmin() && !caps.IsTeacher() && !(caps.IsParent() && viewerID == parentID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot view another parent's children")
	}

	parent, err := s.profiles.FindByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "parent not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parent")
	}
	if parent.Role != models.RoleParent {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "parent not found")
	}

	children, _, err := s.students.List(ctx, models.StudentFilter{ParentID: parentID, PageSize: 100})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list children")
	}
	if children == nil {
		children = []models.StudentDetail{}
	}
	return children, nil
}
