package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/educ8/educ8-api/internal/access"
	"github.com/educ8/educ8-api/internal/models"
)

type mockAssignmentRepo struct {
	assignments map[string]*models.AssignmentDetail
	deleted     []string
}

func (m *mockAssignmentRepo) List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentDetail, int, error) {
	out := []models.AssignmentDetail{}
	for _, a := range m.assignments {
		if filter.TeacherID != "" && a.TeacherID != filter.TeacherID {
			continue
		}
		if filter.ClassID != "" && a.ClassID != filter.ClassID {
			continue
		}
		out = append(out, *a)
	}
	return out, len(out), nil
}

func (m *mockAssignmentRepo) FindByID(ctx context.Context, id string) (*models.AssignmentDetail, error) {
	if a, ok := m.assignments[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAssignmentRepo) Create(ctx context.Context, assignment *models.Assignment) error {
	if m.assignments == nil {
		m.assignments = map[string]*models.AssignmentDetail{}
	}
	assignment.ID = "asg1"
	m.assignments[assignment.ID] = &models.AssignmentDetail{Assignment: *assignment}
	return nil
}

func (m *mockAssignmentRepo) Update(ctx context.Context, assignment *models.Assignment) error {
	m.assignments[assignment.ID] = &models.AssignmentDetail{Assignment: *assignment}
	return nil
}

func (m *mockAssignmentRepo) Delete(ctx context.Context, id string) error {
	delete(m.assignments, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockSubmissionReader struct {
	submissions map[string]*models.Submission // keyed assignmentID|studentID
}

func submissionKey(assignmentID, studentID string) string {
	return assignmentID + "|" + studentID
}

func (m *mockSubmissionReader) FindByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (*models.Submission, error) {
	if sub, ok := m.submissions[submissionKey(assignmentID, studentID)]; ok {
		return sub, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSubmissionReader) ListByStudent(ctx context.Context, studentID string) ([]models.Submission, error) {
	out := []models.Submission{}
	for _, sub := range m.submissions {
		if sub.StudentID == studentID {
			out = append(out, *sub)
		}
	}
	return out, nil
}

type mockStudentReader struct {
	students map[string]*models.StudentDetail
}

func (m *mockStudentReader) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentReader) List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error) {
	out := []models.StudentDetail{}
	for _, s := range m.students {
		if filter.ParentID != "" && (s.ParentID == nil || *s.ParentID != filter.ParentID) {
			continue
		}
		out = append(out, *s)
	}
	return out, len(out), nil
}

func newAssignmentFixture() (*AssignmentService, *mockAssignmentRepo, *mockSubmissionReader, *mockStudentReader) {
	repo := &mockAssignmentRepo{assignments: map[string]*models.AssignmentDetail{}}
	subs := &mockSubmissionReader{submissions: map[string]*models.Submission{}}
	students := &mockStudentReader{students: map[string]*models.StudentDetail{}}
	svc := NewAssignmentService(repo, subs, students, validator.New(), zap.NewNop())
	return svc, repo, subs, students
}

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	past := now.Add(-48 * time.Hour)
	future := now.Add(48 * time.Hour)

	cases := []struct {
		name       string
		dueDate    *time.Time
		submission *models.Submission
		want       models.AssignmentStatus
	}{
		{"no due date and no submission", nil, nil, models.AssignmentStatusActive},
		{"future due date", &future, nil, models.AssignmentStatusActive},
		{"past due date", &past, nil, models.AssignmentStatusOverdue},
		{"submitted before due", &future, &models.Submission{Status: models.SubmissionStatusSubmitted}, models.AssignmentStatusSubmitted},
		{"submitted after due still shows submitted", &past, &models.Submission{Status: models.SubmissionStatusSubmitted}, models.AssignmentStatusSubmitted},
		{"graded after due still shows graded", &past, &models.Submission{Status: models.SubmissionStatusGraded}, models.AssignmentStatusGraded},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assignment := &models.Assignment{DueDate: tc.dueDate}
			assert.Equal(t, tc.want, DeriveStatus(assignment, tc.submission, now))
		})
	}
}

func TestAssignmentListScopedToTeacher(t *testing.T) {
	svc, repo, _, _ := newAssignmentFixture()
	repo.assignments["a1"] = &models.AssignmentDetail{Assignment: models.Assignment{ID: "a1", TeacherID: "t1", ClassID: "c1"}}
	repo.assignments["a2"] = &models.AssignmentDetail{Assignment: models.Assignment{ID: "a2", TeacherID: "t2", ClassID: "c1"}}

	views, total, err := svc.ListForViewer(context.Background(), access.Resolve(models.RoleTeacher), "t1", models.AssignmentFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, views, 1)
	assert.Equal(t, "a1", views[0].ID)
}

func TestAssignmentListAttachesStudentSubmission(t *testing.T) {
	svc, repo, subs, students := newAssignmentFixture()
	classID := "c1"
	repo.assignments["a1"] = &models.AssignmentDetail{Assignment: models.Assignment{ID: "a1", TeacherID: "t1", ClassID: classID}}
	students.students["s1"] = &models.StudentDetail{Student: models.Student{ID: "s1", ClassID: &classID}}
	subs.submissions[submissionKey("a1", "s1")] = &models.Submission{ID: "sub1", AssignmentID: "a1", StudentID: "s1", Status: models.SubmissionStatusGraded}

	views, _, err := svc.ListForViewer(context.Background(), access.Resolve(models.RoleStudent), "s1", models.AssignmentFilter{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, models.AssignmentStatusGraded, views[0].Status)
	require.NotNil(t, views[0].Submission)
	assert.Equal(t, "sub1", views[0].Submission.ID)
}

func TestAssignmentListStudentWithoutClass(t *testing.T) {
	svc, _, _, students := newAssignmentFixture()
	students.students["s1"] = &models.StudentDetail{Student: models.Student{ID: "s1"}}

	views, total, err := svc.ListForViewer(context.Background(), access.Resolve(models.RoleStudent), "s1", models.AssignmentFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, views)
}

func TestAssignmentUpdateForeignTeacherForbidden(t *testing.T) {
	svc, repo, _, _ := newAssignmentFixture()
	repo.assignments["a1"] = &models.AssignmentDetail{Assignment: models.Assignment{ID: "a1", TeacherID: "t1"}}

	title := "Changed"
	_, err := svc.Update(context.Background(), access.Resolve(models.RoleTeacher), "t2", "a1", models.AssignmentPatch{Title: &title})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "another teacher")
}

func TestAssignmentStats(t *testing.T) {
	svc, repo, _, _ := newAssignmentFixture()
	now := time.Now().UTC()
	past := now.Add(-24 * time.Hour)
	soon := now.Add(48 * time.Hour)
	far := now.Add(14 * 24 * time.Hour)
	repo.assignments["a1"] = &models.AssignmentDetail{Assignment: models.Assignment{ID: "a1", TeacherID: "t1", DueDate: &past}}
	repo.assignments["a2"] = &models.AssignmentDetail{Assignment: models.Assignment{ID: "a2", TeacherID: "t1", DueDate: &soon}}
	repo.assignments["a3"] = &models.AssignmentDetail{Assignment: models.Assignment{ID: "a3", TeacherID: "t1", DueDate: &far}}

	stats, err := svc.Stats(context.Background(), access.Resolve(models.RoleTeacher), "t1", models.AssignmentFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Overdue)
	assert.Equal(t, 2, stats.Active)
	assert.Equal(t, 1, stats.DueThisWeek)
}
