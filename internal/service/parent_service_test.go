package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educ8/educ8-api/internal/access"
	"github.com/educ8/educ8-api/internal/models"
)

type mockParentProfiles struct {
	profiles   map[string]*models.Profile
	lastFilter models.ProfileFilter
}

func (m *mockParentProfiles) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	if profile, ok := m.profiles[id]; ok {
		return profile, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockParentProfiles) List(ctx context.Context, filter models.ProfileFilter) ([]models.Profile, int, error) {
	m.lastFilter = filter
	out := []models.Profile{}
	for _, profile := range m.profiles {
		if filter.Role != nil && profile.Role != *filter.Role {
			continue
		}
		out = append(out, *profile)
	}
	return out, len(out), nil
}

type mockParentStudents struct {
	students []models.StudentDetail
}

func (m *mockParentStudents) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	out := []models.StudentDetail{}
	for _, student := range m.students {
		if filter.ParentID != "" && (student.ParentID == nil || *student.ParentID != filter.ParentID) {
			continue
		}
		out = append(out, student)
	}
	return out, len(out), nil
}

func newParentFixture() (*ParentService, *mockParentProfiles, *mockParentStudents) {
	profiles := &mockParentProfiles{profiles: map[string]*models.Profile{}}
	students := &mockParentStudents{}
	return NewParentService(profiles, students, nil), profiles, students
}

func TestParentListForcesParentRole(t *testing.T) {
	svc, profiles, _ := newParentFixture()
	profiles.profiles["p1"] = &models.Profile{ID: "p1", FullName: "Pat Parent", Role: models.RoleParent, Active: true}
	profiles.profiles["t1"] = &models.Profile{ID: "t1", FullName: "Tom Teacher", Role: models.RoleTeacher, Active: true}

	parents, total, err := svc.List(context.Background(), access.Resolve(models.RoleAdmin), models.ProfileFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, parents, 1)
	assert.Equal(t, "p1", parents[0].ID)
	require.NotNil(t, profiles.lastFilter.Role)
	assert.Equal(t, models.RoleParent, *profiles.lastFilter.Role)
}

func TestParentListForbiddenForStudent(t *testing.T) {
	svc, _, _ := newParentFixture()

	_, _, err := svc.List(context.Background(), access.Resolve(models.RoleStudent), models.ProfileFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot list parents")
}

func TestParentChildrenSelfAccess(t *testing.T) {
	svc, profiles, students := newParentFixture()
	parentID := "p1"
	profiles.profiles[parentID] = &models.Profile{ID: parentID, Role: models.RoleParent, Active: true}
	students.students = []models.StudentDetail{
		{Student: models.Student{ID: "stu-1", ParentID: &parentID}, FullName: "Ada Student"},
		{Student: models.Student{ID: "stu-2"}, FullName: "Ben Student"},
	}

	children, err := svc.Children(context.Background(), access.Resolve(models.RoleParent), parentID, parentID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, "stu-1", children[0].ID)
}

func TestParentChildrenForeignParentForbidden(t *testing.T) {
	svc, profiles, _ := newParentFixture()
	profiles.profiles["p1"] = &models.Profile{ID: "p1", Role: models.RoleParent, Active: true}

	_, err := svc.Children(context.Background(), access.Resolve(models.RoleParent), "p2", "p1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "another parent")
}

func TestParentChildrenStaffAccess(t *testing.T) {
	svc, profiles, _ := newParentFixture()
	profiles.profiles["p1"] = &models.Profile{ID: "p1", Role: models.RoleParent, Active: true}

	children, err := svc.Children(context.Background(), access.Resolve(models.RoleTeacher), "t1", "p1")
	require.NoError(t, err)
	assert.Empty(t, children)
}

func TestParentChildrenNonParentProfile(t *testing.T) {
	svc, profiles, _ := newParentFixture()
	profiles.profiles["t1"] = &models.Profile{ID: "t1", Role: models.RoleTeacher, Active: true}

	_, err := svc.Children(context.Background(), access.Resolve(models.RoleAdmin), "a1", "t1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parent not found")
}
