package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/educ8/educ8-api/internal/access"
	"github.com/educ8/educ8-api/internal/models"
)

type mockGradeRepo struct {
	grades map[string]*models.GradeDetail
	nextID int
}

func newMockGradeRepo() *mockGradeRepo {
	return &mockGradeRepo{grades: map[string]*models.GradeDetail{}}
}

func (m *mockGradeRepo) List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, int, error) {
	out := []models.GradeDetail{}
	for _, g := range m.grades {
		if filter.StudentID != "" && g.StudentID != filter.StudentID {
			continue
		}
		if filter.ClassID != "" && g.ClassID != filter.ClassID {
			continue
		}
		out = append(out, *g)
	}
	return out, len(out), nil
}

func (m *mockGradeRepo) FindByID(ctx context.Context, id string) (*models.GradeDetail, error) {
	if g, ok := m.grades[id]; ok {
		return g, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockGradeRepo) ListByStudent(ctx context.Context, studentID string, limit int) ([]models.GradeDetail, error) {
	out, _, _ := m.List(ctx, models.GradeFilter{StudentID: studentID})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *mockGradeRepo) Create(ctx context.Context, grade *models.Grade) error {
	m.nextID++
	grade.ID = "g" + string(rune('0'+m.nextID))
	m.grades[grade.ID] = &models.GradeDetail{Grade: *grade}
	return nil
}

func (m *mockGradeRepo) Update(ctx context.Context, grade *models.Grade) error {
	m.grades[grade.ID] = &models.GradeDetail{Grade: *grade}
	return nil
}

func (m *mockGradeRepo) Delete(ctx context.Context, id string) error {
	delete(m.grades, id)
	return nil
}

func (m *mockGradeRepo) add(studentID, studentName, subject string, grade, maxGrade float64) {
	m.nextID++
	id := "g" + string(rune('0'+m.nextID))
	m.grades[id] = &models.GradeDetail{
		Grade:       models.Grade{ID: id, StudentID: studentID, ClassID: "c1", Subject: subject, Grade: grade, MaxGrade: maxGrade},
		StudentName: studentName,
	}
}

func TestPercentage(t *testing.T) {
	assert.Equal(t, 85, Percentage(85, 100))
	assert.Equal(t, 67, Percentage(2, 3))
	assert.Equal(t, 0, Percentage(50, 0))
	assert.Equal(t, 100, Percentage(20, 20))
}

func TestGradebookAggregatesSubjects(t *testing.T) {
	repo := newMockGradeRepo()
	repo.add("s1", "Ada Student", "Math", 90, 100)
	repo.add("s1", "Ada Student", "Math", 70, 100)
	repo.add("s1", "Ada Student", "Science", 45, 50)
	repo.add("s2", "Ben Student", "Math", 30, 60)
	svc := NewGradeService(repo, validator.New(), zap.NewNop())

	book, err := svc.Gradebook(context.Background(), access.Resolve(models.RoleTeacher), "c1")
	require.NoError(t, err)
	require.Len(t, book, 2)

	ada := book[0]
	assert.Equal(t, "Ada Student", ada.StudentName)
	assert.Equal(t, 80, ada.Subjects["Math"])
	assert.Equal(t, 90, ada.Subjects["Science"])
	assert.Equal(t, 85, ada.Average)

	ben := book[1]
	assert.Equal(t, 50, ben.Subjects["Math"])
	assert.Equal(t, 50, ben.Average)
}

func TestGradebookZeroMaxGradeYieldsZero(t *testing.T) {
	repo := newMockGradeRepo()
	repo.add("s1", "Ada Student", "Math", 50, 0)
	svc := NewGradeService(repo, validator.New(), zap.NewNop())

	book, err := svc.Gradebook(context.Background(), access.Resolve(models.RoleAdmin), "c1")
	require.NoError(t, err)
	require.Len(t, book, 1)
	assert.Equal(t, 0, book[0].Subjects["Math"])
	assert.Equal(t, 0, book[0].Average)
}

func TestGradeListStudentsScopedToSelf(t *testing.T) {
	repo := newMockGradeRepo()
	repo.add("s1", "Ada Student", "Math", 90, 100)
	repo.add("s2", "Ben Student", "Math", 60, 100)
	svc := NewGradeService(repo, validator.New(), zap.NewNop())

	grades, total, err := svc.List(context.Background(), access.Resolve(models.RoleStudent), "s1", models.GradeFilter{StudentID: "s2"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, grades, 1)
	assert.Equal(t, "s1", grades[0].StudentID)
}

func TestSubjectStatistics(t *testing.T) {
	repo := newMockGradeRepo()
	repo.add("s1", "Ada Student", "Math", 80, 100)
	repo.add("s2", "Ben Student", "Math", 60, 100)
	svc := NewGradeService(repo, validator.New(), zap.NewNop())

	stats, err := svc.SubjectStatistics(context.Background(), access.Resolve(models.RoleTeacher), "c1")
	require.NoError(t, err)
	require.Len(t, stats, 1)
	assert.Equal(t, "Math", stats[0].Subject)
	assert.Equal(t, 70, stats[0].Average)
	assert.Equal(t, 2, stats[0].Entries)
}
