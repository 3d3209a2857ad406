package service

import (
	"context"
	"math"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/educ8/educ8-api/internal/access"
	"github.com/educ8/educ8-api/internal/models"
	appErrors "github.com/educ8/educ8-api/pkg/errors"
)

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, int, error)
	Upsert(ctx context.Context, record *models.Attendance) error
	Delete(ctx context.Context, id string) error
	ListStatuses(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceStatus, error)
}

// RecordAttendanceRequest marks one student's attendance for a date.
type RecordAttendanceRequest struct {
	StudentID string                  `json:"student_id" validate:"required"`
	ClassID   string                  `json:"class_id" validate:"required"`
	Date      time.Time               `json:"date" validate:"required"`
	Status    models.AttendanceStatus `json:"status" validate:"required"`
}

// AttendanceService provides attendance use cases.
type AttendanceService struct {
	repo      attendanceRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs an AttendanceService instance.
func NewAttendanceService(repo attendanceRepository, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AttendanceService{repo: repo, validator: validate, logger: logger}
}

// List returns attendance rows scoped to the viewer. Students only see their
// own records.
func (s *AttendanceService) List(ctx context.Context, caps access.Capabilities, viewerID string, filter models.AttendanceFilter) ([]models.AttendanceDetail, int, error) {
	if caps.IsStudent() {
		filter.StudentID = viewerID
	}
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, total, nil
}

// Record marks attendance. Re-marking the same (student, class, date)
// overwrites the earlier status.
func (s *AttendanceService) Record(ctx context.Context, caps access.Capabilities, req RecordAttendanceRequest) (*models.Attendance, error) {
	if !caps.CanGradeAssignments() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role cannot record attendance")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown attendance status")
	}

	record := &models.Attendance{
		StudentID: req.StudentID,
		ClassID:   req.ClassID,
		Date:      req.Date.Truncate(24 * time.Hour),
		Status:    req.Status,
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	return record, nil
}

// RecordBulk marks a whole class in one call, one row per student.
func (s *AttendanceService) RecordBulk(ctx context.Context, caps access.Capabilities, reqs []RecordAttendanceRequest) ([]models.Attendance, error) {
	if !caps.CanGradeAssignments() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role cannot record attendance")
	}
	records := make([]models.Attendance, 0, len(reqs))
	for _, req := range reqs {
		record, err := s.Record(ctx, caps, req)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}
	return records, nil
}

// Delete removes an attendance row.
func (s *AttendanceService) Delete(ctx context.Context, caps access.Capabilities, id string) error {
	if !caps.CanGradeAssignments() {
		return appErrors.Clone(appErrors.ErrForbidden, "role cannot delete attendance")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete attendance")
	}
	return nil
}

// Stats partitions attendance by status. Late counts toward the rate.
func (s *AttendanceService) Stats(ctx context.Context, caps access.Capabilities, viewerID string, filter models.AttendanceFilter) (*models.AttendanceStats, error) {
	if caps.IsStudent() {
		filter.StudentID = viewerID
	}
	statuses, err := s.repo.ListStatuses(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	return computeAttendanceStats(statuses), nil
}

func computeAttendanceStats(statuses []models.AttendanceStatus) *models.AttendanceStats {
	stats := &models.AttendanceStats{Total: len(statuses)}
	for _, status := range statuses {
		switch status {
		case models.AttendanceStatusPresent:
			stats.Present++
		case models.AttendanceStatusLate:
			stats.Late++
		case models.AttendanceStatusAbsent:
			stats.Absent++
		}
	}
	if stats.Total > 0 {
		stats.Rate = int(math.Round(float64(stats.Present+stats.Late) / float64(stats.Total) * 100))
	}
	return stats
}
