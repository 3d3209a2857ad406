package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/educ8/educ8-api/internal/access"
	"github.com/educ8/educ8-api/internal/models"
	appErrors "github.com/educ8/educ8-api/pkg/errors"
)

type mockSubmissionRepo struct {
	byID   map[string]*models.Submission
	byPair map[string]*models.Submission
	nextID int
}

func newMockSubmissionRepo() *mockSubmissionRepo {
	return &mockSubmissionRepo{byID: map[string]*models.Submission{}, byPair: map[string]*models.Submission{}}
}

func (m *mockSubmissionRepo) List(ctx context.Context, filter models.SubmissionFilter) ([]models.SubmissionDetail, int, error) {
	out := []models.SubmissionDetail{}
	for _, sub := range m.byID {
		if filter.StudentID != "" && sub.StudentID != filter.StudentID {
			continue
		}
		if filter.AssignmentID != "" && sub.AssignmentID != filter.AssignmentID {
			continue
		}
		out = append(out, models.SubmissionDetail{Submission: *sub})
	}
	return out, len(out), nil
}

func (m *mockSubmissionRepo) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	if sub, ok := m.byID[id]; ok {
		return sub, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSubmissionRepo) FindByAssignmentAndStudent(ctx context.Context, assignmentID, studentID string) (*models.Submission, error) {
	if sub, ok := m.byPair[submissionKey(assignmentID, studentID)]; ok {
		return sub, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSubmissionRepo) Create(ctx context.Context, submission *models.Submission) error {
	m.nextID++
	submission.ID = "sub" + string(rune('0'+m.nextID))
	m.byID[submission.ID] = submission
	m.byPair[submissionKey(submission.AssignmentID, submission.StudentID)] = submission
	return nil
}

func (m *mockSubmissionRepo) Update(ctx context.Context, submission *models.Submission) error {
	m.byID[submission.ID] = submission
	m.byPair[submissionKey(submission.AssignmentID, submission.StudentID)] = submission
	return nil
}

type mockAssignmentReader struct {
	assignments map[string]*models.AssignmentDetail
}

func (m *mockAssignmentReader) FindByID(ctx context.Context, id string) (*models.AssignmentDetail, error) {
	if a, ok := m.assignments[id]; ok {
		return a, nil
	}
	return nil, sql.ErrNoRows
}

func newSubmissionFixture() (*SubmissionService, *mockSubmissionRepo, *mockAssignmentReader) {
	repo := newMockSubmissionRepo()
	assignments := &mockAssignmentReader{assignments: map[string]*models.AssignmentDetail{
		"a1": {Assignment: models.Assignment{ID: "a1", TeacherID: "t1", ClassID: "c1"}},
	}}
	svc := NewSubmissionService(repo, assignments, validator.New(), zap.NewNop())
	return svc, repo, assignments
}

func strPtr(v string) *string { return &v }

func TestSubmitCreatesSubmission(t *testing.T) {
	svc, _, _ := newSubmissionFixture()

	submission, err := svc.Submit(context.Background(), access.Resolve(models.RoleStudent), "s1", SubmitRequest{
		AssignmentID: "a1",
		Content:      strPtr("my essay"),
	})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusSubmitted, submission.Status)
	require.NotNil(t, submission.SubmittedAt)
	assert.Nil(t, submission.Grade)
}

func TestSubmitRejectsEmptyPayload(t *testing.T) {
	svc, _, _ := newSubmissionFixture()

	_, err := svc.Submit(context.Background(), access.Resolve(models.RoleStudent), "s1", SubmitRequest{AssignmentID: "a1"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrEmptySubmission.Code, appErr.Code)
}

func TestSubmitRejectsNonStudents(t *testing.T) {
	svc, _, _ := newSubmissionFixture()

	_, err := svc.Submit(context.Background(), access.Resolve(models.RoleTeacher), "t1", SubmitRequest{
		AssignmentID: "a1",
		Content:      strPtr("x"),
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}

func TestResubmitBeforeGradingReplaces(t *testing.T) {
	svc, repo, _ := newSubmissionFixture()
	caps := access.Resolve(models.RoleStudent)

	first, err := svc.Submit(context.Background(), caps, "s1", SubmitRequest{AssignmentID: "a1", Content: strPtr("draft")})
	require.NoError(t, err)

	second, err := svc.Submit(context.Background(), caps, "s1", SubmitRequest{AssignmentID: "a1", Content: strPtr("final")})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "final", *second.Content)
	assert.Len(t, repo.byID, 1)
}

func TestResubmitAfterGradingRejected(t *testing.T) {
	svc, _, _ := newSubmissionFixture()
	studentCaps := access.Resolve(models.RoleStudent)
	teacherCaps := access.Resolve(models.RoleTeacher)

	submission, err := svc.Submit(context.Background(), studentCaps, "s1", SubmitRequest{AssignmentID: "a1", Content: strPtr("work")})
	require.NoError(t, err)

	graded, err := svc.Grade(context.Background(), teacherCaps, "t1", submission.ID, GradeSubmissionRequest{Grade: 85, Feedback: strPtr("good")})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionStatusGraded, graded.Status)
	require.NotNil(t, graded.Grade)
	assert.Equal(t, 85.0, *graded.Grade)
	require.NotNil(t, graded.GradedAt)

	_, err = svc.Submit(context.Background(), studentCaps, "s1", SubmitRequest{AssignmentID: "a1", Content: strPtr("again")})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrAlreadyGraded.Code, appErr.Code)
}

func TestGradeForeignAssignmentForbidden(t *testing.T) {
	svc, _, _ := newSubmissionFixture()

	submission, err := svc.Submit(context.Background(), access.Resolve(models.RoleStudent), "s1", SubmitRequest{AssignmentID: "a1", Content: strPtr("work")})
	require.NoError(t, err)

	_, err = svc.Grade(context.Background(), access.Resolve(models.RoleTeacher), "t2", submission.ID, GradeSubmissionRequest{Grade: 70})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "another teacher")
}

func TestSubmissionListStudentsSeeOnlyOwn(t *testing.T) {
	svc, _, _ := newSubmissionFixture()
	caps := access.Resolve(models.RoleStudent)

	_, err := svc.Submit(context.Background(), caps, "s1", SubmitRequest{AssignmentID: "a1", Content: strPtr("mine")})
	require.NoError(t, err)

	listed, total, err := svc.List(context.Background(), caps, "s2", models.SubmissionFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, listed)
}
