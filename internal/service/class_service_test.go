package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/educ8/educ8-api/internal/access"
	"github.com/educ8/educ8-api/internal/models"
)

type mockClassRepo struct {
	classes map[string]*models.ClassDetail
}

func (m *mockClassRepo) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, int, error) {
	out := []models.ClassDetail{}
	for _, class := range m.classes {
		out = append(out, *class)
	}
	return out, len(out), nil
}

func (m *mockClassRepo) FindByID(ctx context.Context, id string) (*models.ClassDetail, error) {
	if class, ok := m.classes[id]; ok {
		return class, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClassRepo) Create(ctx context.Context, class *models.Class) error {
	class.ID = "c1"
	m.classes[class.ID] = &models.ClassDetail{Class: *class}
	return nil
}

func (m *mockClassRepo) Update(ctx context.Context, class *models.Class) error {
	m.classes[class.ID] = &models.ClassDetail{Class: *class}
	return nil
}

func (m *mockClassRepo) Delete(ctx context.Context, id string) error {
	delete(m.classes, id)
	return nil
}

type mockClassProfiles struct {
	profiles map[string]*models.Profile
}

func (m *mockClassProfiles) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	if profile, ok := m.profiles[id]; ok {
		return profile, nil
	}
	return nil, sql.ErrNoRows
}

type mockClassStudents struct {
	byClass map[string][]models.StudentDetail
}

func (m *mockClassStudents) ListByClass(ctx context.Context, classID string) ([]models.StudentDetail, error) {
	return m.byClass[classID], nil
}

func newClassFixture() (*ClassService, *mockClassRepo, *mockClassProfiles, *mockClassStudents) {
	repo := &mockClassRepo{classes: map[string]*models.ClassDetail{}}
	profiles := &mockClassProfiles{profiles: map[string]*models.Profile{}}
	students := &mockClassStudents{byClass: map[string][]models.StudentDetail{}}
	return NewClassService(repo, profiles, students, nil, nil), repo, profiles, students
}

func TestClassRosterReturnsFullClass(t *testing.T) {
	svc, repo, _, students := newClassFixture()
	repo.classes["c1"] = &models.ClassDetail{Class: models.Class{ID: "c1", Name: "Grade 8A", GradeLevel: "8"}}

	roster := make([]models.StudentDetail, 0, 150)
	for i := 0; i < 150; i++ {
		roster = append(roster, models.StudentDetail{
			Student:  models.Student{ID: fmt.Sprintf("stu-%d", i)},
			FullName: fmt.Sprintf("Student %03d", i),
		})
	}
	students.byClass["c1"] = roster

	got, err := svc.Roster(context.Background(), "c1")
	require.NoError(t, err)
	assert.Len(t, got, 150)
}

func TestClassRosterUnknownClass(t *testing.T) {
	svc, _, _, _ := newClassFixture()

	_, err := svc.Roster(context.Background(), "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "class not found")
}

func TestClassCreateRejectsInactiveTeacher(t *testing.T) {
	svc, repo, profiles, _ := newClassFixture()
	teacherID := "t1"
	profiles.profiles[teacherID] = &models.Profile{ID: teacherID, Role: models.RoleTeacher, Active: false}

	_, err := svc.Create(context.Background(), access.Resolve(models.RoleAdmin), CreateClassRequest{
		Name:       "Grade 8A",
		GradeLevel: "8",
		TeacherID:  &teacherID,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not active")
	assert.Empty(t, repo.classes)
}

func TestClassCreateRejectsNonTeacherProfile(t *testing.T) {
	svc, _, profiles, _ := newClassFixture()
	parentID := "p1"
	profiles.profiles[parentID] = &models.Profile{ID: parentID, Role: models.RoleParent, Active: true}

	_, err := svc.Create(context.Background(), access.Resolve(models.RoleAdmin), CreateClassRequest{
		Name:       "Grade 8A",
		GradeLevel: "8",
		TeacherID:  &parentID,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a teacher")
}

func TestClassUpdateRejectsInactiveTeacher(t *testing.T) {
	svc, repo, profiles, _ := newClassFixture()
	repo.classes["c1"] = &models.ClassDetail{Class: models.Class{ID: "c1", Name: "Grade 8A", GradeLevel: "8"}}
	teacherID := "t1"
	profiles.profiles[teacherID] = &models.Profile{ID: teacherID, Role: models.RoleTeacher, Active: false}

	_, err := svc.Update(context.Background(), access.Resolve(models.RoleAdmin), "c1", models.ClassPatch{TeacherID: &teacherID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not active")
}
