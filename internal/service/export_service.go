package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/educ8/educ8-api/internal/access"
	"github.com/educ8/educ8-api/internal/models"
	appErrors "github.com/educ8/educ8-api/pkg/errors"
	"github.com/educ8/educ8-api/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string, subtitle []string, summary []string) ([]byte, error)
}

type exportGradeReader interface {
	List(ctx context.Context, filter models.GradeFilter) ([]models.GradeDetail, int, error)
	ListByStudent(ctx context.Context, studentID string, limit int) ([]models.GradeDetail, error)
}

type exportClassReader interface {
	FindByID(ctx context.Context, id string) (*models.ClassDetail, error)
}

type exportStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
}

type exportAttendanceReader interface {
	ListStatuses(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceStatus, error)
}

// ExportResult carries a rendered document ready to stream.
type ExportResult struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders gradebook CSVs and report card PDFs.
type ExportService struct {
	grades     exportGradeReader
	classes    exportClassReader
	students   exportStudentReader
	attendance exportAttendanceReader
	csv        csvRenderer
	pdf        pdfRenderer
	schoolName string
	logger     *zap.Logger
	now        func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(grades exportGradeReader, classes exportClassReader, students exportStudentReader, attendance exportAttendanceReader, schoolName string, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if schoolName == "" {
		schoolName = "Educ8"
	}
	return &ExportService{
		grades:     grades,
		classes:    classes,
		students:   students,
		attendance: attendance,
		csv:        csv,
		pdf:        pdf,
		schoolName: schoolName,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// GradebookCSV renders a class gradebook as CSV, one row per student with a
// column per subject.
func (s *ExportService) GradebookCSV(ctx context.Context, caps access.Capabilities, classID string) (*ExportResult, error) {
	if !caps.CanGradeAssignments() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role cannot export the gradebook")
	}

	class, err := s.classes.FindByID(ctx, classID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	grades, _, err := s.grades.List(ctx, models.GradeFilter{ClassID: classID, PageSize: 200})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}
	book := buildGradebook(grades)

	subjects := map[string]bool{}
	for _, entry := range book {
		for subject := range entry.Subjects {
			subjects[subject] = true
		}
	}
	subjectList := make([]string, 0, len(subjects))
	for subject := range subjects {
		subjectList = append(subjectList, subject)
	}
	sort.Strings(subjectList)

	headers := append([]string{"Student"}, subjectList...)
	headers = append(headers, "Average")
	rows := make([]map[string]string, 0, len(book))
	for _, entry := range book {
		row := map[string]string{"Student": entry.StudentName, "Average": strconv.Itoa(entry.Average)}
		for _, subject := range subjectList {
			if pct, ok := entry.Subjects[subject]; ok {
				row[subject] = strconv.Itoa(pct)
			} else {
				row[subject] = ""
			}
		}
		rows = append(rows, row)
	}

	payload, err := s.csv.Render(export.Dataset{Headers: headers, Rows: rows})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render gradebook")
	}

	return &ExportResult{
		Filename:    fmt.Sprintf("gradebook-%s-%s.csv", slug(class.Name), s.now().Format("2006-01-02")),
		ContentType: "text/csv",
		Payload:     payload,
	}, nil
}

// ReportCardPDF renders a student's report card: per-subject percentages plus
// an attendance summary.
func (s *ExportService) ReportCardPDF(ctx context.Context, caps access.Capabilities, viewerID, studentID string) (*ExportResult, error) {
	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	switch {
	case caps.CanGradeAssignments():
	case caps.IsStudent() && studentID == viewerID:
	case caps.IsParent() && student.ParentID != nil && *student.ParentID == viewerID:
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "cannot export this report card")
	}

	grades, err := s.grades.ListByStudent(ctx, studentID, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load grades")
	}
	book := buildGradebook(grades)

	headers := []string{"Subject", "Percentage"}
	rows := []map[string]string{}
	average := 0
	if len(book) > 0 {
		entry := book[0]
		average = entry.Average
		subjectList := make([]string, 0, len(entry.Subjects))
		for subject := range entry.Subjects {
			subjectList = append(subjectList, subject)
		}
		sort.Strings(subjectList)
		for _, subject := range subjectList {
			rows = append(rows, map[string]string{
				"Subject":    subject,
				"Percentage": strconv.Itoa(entry.Subjects[subject]) + "%",
			})
		}
	}

	statuses, err := s.attendance.ListStatuses(ctx, models.AttendanceFilter{StudentID: studentID})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	attendance := computeAttendanceStats(statuses)

	subtitle := []string{student.FullName}
	if student.ClassName != nil {
		subtitle = append(subtitle, *student.ClassName)
	}
	summary := []string{
		fmt.Sprintf("Overall average: %d%%", average),
		fmt.Sprintf("Attendance rate: %d%% (%d present, %d late, %d absent)",
			attendance.Rate, attendance.Present, attendance.Late, attendance.Absent),
	}

	payload, err := s.pdf.Render(export.Dataset{Headers: headers, Rows: rows}, s.schoolName+" Report Card", subtitle, summary)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report card")
	}

	return &ExportResult{
		Filename:    fmt.Sprintf("report-card-%s-%s.pdf", slug(student.FullName), s.now().Format("2006-01-02")),
		ContentType: "application/pdf",
		Payload:     payload,
	}, nil
}

func slug(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	return strings.ReplaceAll(value, " ", "-")
}
