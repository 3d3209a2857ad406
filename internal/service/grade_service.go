package service

import (
	"context"
	"database/sql"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/educ8/educ8-api/internal/access"
	"github.com/educ8/educ8-api/internal/models"
	appErrors "github.com/educ8/educ8-api/pkg/errors"
)

type gradeRepository interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.GradeDetail, error)
	ListByStudent(ctx context.Context, studentID string, limit int) ([]models.GradeDetail, error)
	Create(ctx context.Context, grade *models.Grade) error
	Update(ctx context.Context, grade *models.Grade) error
	Delete(ctx context.Context, id string) error
}

// CreateGradeRequest is the payload for recording a gradebook entry.
type CreateGradeRequest struct {
	StudentID    string     `json:"student_id" validate:"required"`
	ClassID      string     `json:"class_id" validate:"required"`
	AssignmentID *string    `json:"assignment_id"`
	Subject      string     `json:"subject" validate:"required"`
	Grade        float64    `json:"grade" validate:"min=0"`
	MaxGrade     float64    `json:"max_grade" validate:"min=0"`
	DateRecorded *time.Time `json:"date_recorded"`
}

// GradeService provides gradebook use cases and subject aggregation.
type GradeService struct {
	repo      gradeRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewGradeService constructs a GradeService instance.
func NewGradeService(repo gradeRepository, validate *validator.Validate, logger *zap.Logger) *GradeService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &GradeService{repo: repo, validator: validate, logger: logger}
}

// Percentage converts a grade into a rounded whole percentage. A zero
// max grade yields zero rather than dividing by it.
func Percentage(grade, maxGrade float64) int {
	if maxGrade == 0 {
		return 0
	}
	return int(math.Round(grade / maxGrade * 100))
}

// List returns gradebook entries scoped to the viewer. Students only see
// their own rows.
func (s *GradeService) List(ctx context.Context, caps access.Capabilities, viewerID string, filter models.GradeFilter) ([]models.GradeDetail, int, error) {
	if caps.IsStudent() {
		filter.StudentID = viewerID
	}
	grades, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list grades")
	}
	return grades, total, nil
}

// Create validates and persists a gradebook entry.
func (s *GradeService) Create(ctx context.Context, caps access.Capabilities, req CreateGradeRequest) (*models.Grade, error) {
	if !caps.CanGradeAssignments() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role cannot record grades")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid grade payload")
	}

	grade := &models.Grade{
		StudentID:    req.StudentID,
		ClassID:      req.ClassID,
		AssignmentID: req.AssignmentID,
		Subject:      req.Subject,
		Grade:        req.Grade,
		MaxGrade:     req.MaxGrade,
	}
	if req.DateRecorded != nil {
		grade.DateRecorded = *req.DateRecorded
	}
	if err := s.repo.Create(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create grade")
	}
	s.logger.Info("grade recorded", zap.String("student_id", grade.StudentID), zap.String("subject", grade.Subject))
	return grade, nil
}

// Update applies a patch to a gradebook entry.
func (s *GradeService) Update(ctx context.Context, caps access.Capabilities, id string, patch models.GradePatch) (*models.Grade, error) {
	if !caps.CanGradeAssignments() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role cannot modify grades")
	}
	detail, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grade")
	}

	grade := detail.Grade
	if patch.Subject != nil {
		grade.Subject = *patch.Subject
	}
	if patch.Grade != nil {
		grade.Grade = *patch.Grade
	}
	if patch.MaxGrade != nil {
		grade.MaxGrade = *patch.MaxGrade
	}
	if patch.DateRecorded != nil {
		grade.DateRecorded = *patch.DateRecorded
	}
	if patch.AssignmentID != nil {
		grade.AssignmentID = patch.AssignmentID
	}
	if err := s.repo.Update(ctx, &grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update grade")
	}
	return &grade, nil
}

// Delete removes a gradebook entry.
func (s *GradeService) Delete(ctx context.Context, caps access.Capabilities, id string) error {
	if !caps.CanGradeAssignments() {
		return appErrors.Clone(appErrors.ErrForbidden, "role cannot delete grades")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete grade")
	}
	return nil
}

// Gradebook aggregates a class's grades into per-student subject percentages.
// Multiple entries for the same subject average before rounding.
func (s *GradeService) Gradebook(ctx context.Context, caps access.Capabilities, classID string) ([]models.StudentGradebook, error) {
	if !caps.CanGradeAssignments() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role cannot view the gradebook")
	}
	grades, _, err := s.repo.List(ctx, models.GradeFilter{ClassID: classID, PageSize: 200})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}
	return buildGradebook(grades), nil
}

func buildGradebook(grades []models.GradeDetail) []models.StudentGradebook {
	type subjectAcc struct {
		sum   float64
		count int
	}
	students := map[string]string{}
	bySubject := map[string]map[string]*subjectAcc{}

	for _, g := range grades {
		students[g.StudentID] = g.StudentName
		if bySubject[g.StudentID] == nil {
			bySubject[g.StudentID] = map[string]*subjectAcc{}
		}
		acc := bySubject[g.StudentID][g.Subject]
		if acc == nil {
			acc = &subjectAcc{}
			bySubject[g.StudentID][g.Subject] = acc
		}
		acc.sum += float64(Percentage(g.Grade.Grade, g.MaxGrade))
		acc.count++
	}

	book := make([]models.StudentGradebook, 0, len(students))
	for studentID, name := range students {
		subjects := map[string]int{}
		var total, n int
		for subject, acc := range bySubject[studentID] {
			pct := int(math.Round(acc.sum / float64(acc.count)))
			subjects[subject] = pct
			total += pct
			n++
		}
		entry := models.StudentGradebook{StudentID: studentID, StudentName: name, Subjects: subjects}
		if n > 0 {
			entry.Average = int(math.Round(float64(total) / float64(n)))
		}
		book = append(book, entry)
	}
	sort.Slice(book, func(i, j int) bool { return book[i].StudentName < book[j].StudentName })
	return book
}

// SubjectStatistics averages grades per subject across a class.
func (s *GradeService) SubjectStatistics(ctx context.Context, caps access.Capabilities, classID string) ([]models.SubjectStatistics, error) {
	if !caps.CanGradeAssignments() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role cannot view grade statistics")
	}
	grades, _, err := s.repo.List(ctx, models.GradeFilter{ClassID: classID, PageSize: 200})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}

	sums := map[string]int{}
	counts := map[string]int{}
	for _, g := range grades {
		sums[g.Subject] += Percentage(g.Grade.Grade, g.MaxGrade)
		counts[g.Subject]++
	}
	stats := make([]models.SubjectStatistics, 0, len(sums))
	for subject, sum := range sums {
		stats = append(stats, models.SubjectStatistics{
			Subject: subject,
			Average: int(math.Round(float64(sum) / float64(counts[subject]))),
			Entries: counts[subject],
		})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Subject < stats[j].Subject })
	return stats, nil
}
