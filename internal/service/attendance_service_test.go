package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/educ8/educ8-api/internal/access"
	"github.com/educ8/educ8-api/internal/models"
)

type mockAttendanceRepo struct {
	records map[string]*models.Attendance // keyed studentID|classID|date
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{records: map[string]*models.Attendance{}}
}

func attendanceKey(record *models.Attendance) string {
	return record.StudentID + "|" + record.ClassID + "|" + record.Date.Format("2006-01-02")
}

func (m *mockAttendanceRepo) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceDetail, int, error) {
	out := []models.AttendanceDetail{}
	for _, rec := range m.records {
		if filter.StudentID != "" && rec.StudentID != filter.StudentID {
			continue
		}
		out = append(out, models.AttendanceDetail{Attendance: *rec})
	}
	return out, len(out), nil
}

func (m *mockAttendanceRepo) Upsert(ctx context.Context, record *models.Attendance) error {
	key := attendanceKey(record)
	if existing, ok := m.records[key]; ok {
		existing.Status = record.Status
		*record = *existing
		return nil
	}
	m.records[key] = record
	return nil
}

func (m *mockAttendanceRepo) Delete(ctx context.Context, id string) error {
	for key, rec := range m.records {
		if rec.ID == id {
			delete(m.records, key)
		}
	}
	return nil
}

func (m *mockAttendanceRepo) ListStatuses(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceStatus, error) {
	out := []models.AttendanceStatus{}
	for _, rec := range m.records {
		if filter.StudentID != "" && rec.StudentID != filter.StudentID {
			continue
		}
		if filter.ClassID != "" && rec.ClassID != filter.ClassID {
			continue
		}
		out = append(out, rec.Status)
	}
	return out, nil
}

func TestAttendanceStatsRate(t *testing.T) {
	stats := computeAttendanceStats([]models.AttendanceStatus{
		models.AttendanceStatusPresent,
		models.AttendanceStatusPresent,
		models.AttendanceStatusPresent,
		models.AttendanceStatusLate,
		models.AttendanceStatusAbsent,
	})
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 3, stats.Present)
	assert.Equal(t, 1, stats.Late)
	assert.Equal(t, 1, stats.Absent)
	assert.Equal(t, 80, stats.Rate)
}

func TestAttendanceStatsEmpty(t *testing.T) {
	stats := computeAttendanceStats(nil)
	assert.Zero(t, stats.Total)
	assert.Zero(t, stats.Rate)
}

func TestAttendanceRecordOverwritesSameDay(t *testing.T) {
	repo := newMockAttendanceRepo()
	svc := NewAttendanceService(repo, validator.New(), zap.NewNop())
	caps := access.Resolve(models.RoleTeacher)
	date := time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC)

	_, err := svc.Record(context.Background(), caps, RecordAttendanceRequest{
		StudentID: "s1", ClassID: "c1", Date: date, Status: models.AttendanceStatusAbsent,
	})
	require.NoError(t, err)

	updated, err := svc.Record(context.Background(), caps, RecordAttendanceRequest{
		StudentID: "s1", ClassID: "c1", Date: date, Status: models.AttendanceStatusLate,
	})
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusLate, updated.Status)
	assert.Len(t, repo.records, 1)
}

func TestAttendanceRecordRejectsStudents(t *testing.T) {
	svc := NewAttendanceService(newMockAttendanceRepo(), validator.New(), zap.NewNop())

	_, err := svc.Record(context.Background(), access.Resolve(models.RoleStudent), RecordAttendanceRequest{
		StudentID: "s1", ClassID: "c1", Date: time.Now(), Status: models.AttendanceStatusPresent,
	})
	require.Error(t, err)
}

func TestAttendanceRecordRejectsUnknownStatus(t *testing.T) {
	svc := NewAttendanceService(newMockAttendanceRepo(), validator.New(), zap.NewNop())

	_, err := svc.Record(context.Background(), access.Resolve(models.RoleTeacher), RecordAttendanceRequest{
		StudentID: "s1", ClassID: "c1", Date: time.Now(), Status: "vacation",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown attendance status")
}
