package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/educ8/educ8-api/internal/access"
	"github.com/educ8/educ8-api/internal/models"
	appErrors "github.com/educ8/educ8-api/pkg/errors"
)

type dashboardStudentReader interface {
	FindByID(ctx context.Context, id string) (*models.StudentDetail, error)
	List(ctx context.Context, filter models.StudentFilter) ([]models.StudentDetail, int, error)
	Count(ctx context.Context, classID string) (int, error)
}

type dashboardTeacherReader interface {
	Count(ctx context.Context) (int, error)
}

type dashboardClassReader interface {
	Count(ctx context.Context, teacherID string) (int, error)
}

type dashboardAssignmentReader interface {
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.AssignmentDetail, int, error)
	CountDueBetween(ctx context.Context, classID string, from, to time.Time) (int, error)
}

type dashboardSubmissionReader interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Submission, error)
	CountPendingForTeacher(ctx context.Context, teacherID string) (int, error)
}

type dashboardGradeReader interface {
	ListByStudent(ctx context.Context, studentID string, limit int) ([]models.GradeDetail, error)
}

type dashboardFeeReader interface {
	TotalOutstanding(ctx context.Context, parentID string) (float64, error)
}

type dashboardMessageReader interface {
	UnreadCount(ctx context.Context, userID string) (int, error)
}

// DashboardService assembles role-specific dashboard snapshots, cached per
// viewer in Redis.
type DashboardService struct {
	students    dashboardStudentReader
	teachers    dashboardTeacherReader
	classes     dashboardClassReader
	assignments dashboardAssignmentReader
	submissions dashboardSubmissionReader
	grades      dashboardGradeReader
	fees        dashboardFeeReader
	messages    dashboardMessageReader
	cache       *CacheService
	cacheTTL    time.Duration
	logger      *zap.Logger
	now         func() time.Time
}

// NewDashboardService constructs a DashboardService instance.
func NewDashboardService(
	students dashboardStudentReader,
	teachers dashboardTeacherReader,
	classes dashboardClassReader,
	assignments dashboardAssignmentReader,
	submissions dashboardSubmissionReader,
	grades dashboardGradeReader,
	fees dashboardFeeReader,
	messages dashboardMessageReader,
	cache *CacheService,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DashboardService{
		students:    students,
		teachers:    teachers,
		classes:     classes,
		assignments: assignments,
		submissions: submissions,
		grades:      grades,
		fees:        fees,
		messages:    messages,
		cache:       cache,
		cacheTTL:    cacheTTL,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Admin summarises the whole school.
func (s *DashboardService) Admin(ctx context.Context, caps access.Capabilities) (*models.AdminDashboard, error) {
	if !caps.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role cannot view the admin dashboard")
	}

	cacheKey := "dashboard:admin"
	var cached models.AdminDashboard
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	students, err := s.students.Count(ctx, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	teachers, err := s.teachers.Count(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count teachers")
	}
	classes, err := s.classes.Count(ctx, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count classes")
	}
	outstanding, err := s.fees.TotalOutstanding(ctx, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum fees")
	}

	dashboard := &models.AdminDashboard{
		Students:        students,
		Teachers:        teachers,
		Classes:         classes,
		FeesOutstanding: outstanding,
		GeneratedAt:     s.now(),
	}
	s.cacheSet(ctx, cacheKey, dashboard)
	return dashboard, nil
}

// Teacher summarises the viewer's teaching workload.
func (s *DashboardService) Teacher(ctx context.Context, caps access.Capabilities, teacherID string) (*models.TeacherDashboard, error) {
	if !caps.IsTeacher() && !caps.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role cannot view the teacher dashboard")
	}

	cacheKey := fmt.Sprintf("dashboard:teacher:%s", teacherID)
	var cached models.TeacherDashboard
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	_, assignmentTotal, err := s.assignments.List(ctx, models.AssignmentFilter{TeacherID: teacherID, PageSize: 1})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count assignments")
	}
	pending, err := s.submissions.CountPendingForTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending submissions")
	}
	classes, err := s.classes.Count(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count classes")
	}

	dashboard := &models.TeacherDashboard{
		Assignments:    assignmentTotal,
		PendingGrading: pending,
		Classes:        classes,
		GeneratedAt:    s.now(),
	}
	s.cacheSet(ctx, cacheKey, dashboard)
	return dashboard, nil
}

// Student summarises upcoming work and recent grades for the viewer.
func (s *DashboardService) Student(ctx context.Context, caps access.Capabilities, studentID string) (*models.StudentDashboard, error) {
	if !caps.IsStudent() && !caps.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role cannot view the student dashboard")
	}

	cacheKey := fmt.Sprintf("dashboard:student:%s", studentID)
	var cached models.StudentDashboard
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	student, err := s.students.FindByID(ctx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	now := s.now()
	dashboard := &models.StudentDashboard{GeneratedAt: now}
	if student.ClassID != nil {
		dueSoon, err := s.assignments.CountDueBetween(ctx, *student.ClassID, now, now.Add(7*24*time.Hour))
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count due assignments")
		}
		dashboard.DueSoon = dueSoon

		overdue, err := s.countOverdue(ctx, *student.ClassID, studentID, now)
		if err != nil {
			return nil, err
		}
		dashboard.Overdue = overdue
	}

	recent, err := s.grades.ListByStudent(ctx, studentID, 5)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent grades")
	}
	if recent == nil {
		recent = []models.GradeDetail{}
	}
	dashboard.RecentGrades = recent

	s.cacheSet(ctx, cacheKey, dashboard)
	return dashboard, nil
}

// countOverdue counts class assignments past due that the student has not
// handed in. Submitted work never counts as overdue.
func (s *DashboardService) countOverdue(ctx context.Context, classID, studentID string, now time.Time) (int, error) {
	assignments, _, err := s.assignments.List(ctx, models.AssignmentFilter{ClassID: classID, PageSize: 100})
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	submissions, err := s.submissions.ListByStudent(ctx, studentID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	submitted := make(map[string]bool, len(submissions))
	for _, sub := range submissions {
		submitted[sub.AssignmentID] = true
	}

	overdue := 0
	for _, assignment := range assignments {
		if assignment.DueDate != nil && now.After(*assignment.DueDate) && !submitted[assignment.ID] {
			overdue++
		}
	}
	return overdue, nil
}

// Parent summarises the viewer's children, fees and inbox.
func (s *DashboardService) Parent(ctx context.Context, caps access.Capabilities, parentID string) (*models.ParentDashboard, error) {
	if !caps.IsParent() && !caps.IsAdmin() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "role cannot view the parent dashboard")
	}

	cacheKey := fmt.Sprintf("dashboard:parent:%s", parentID)
	var cached models.ParentDashboard
	if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
		return &cached, nil
	}

	children, _, err := s.students.List(ctx, models.StudentFilter{ParentID: parentID, PageSize: 100})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list children")
	}
	outstanding, err := s.fees.TotalOutstanding(ctx, parentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sum fees")
	}
	unread, err := s.messages.UnreadCount(ctx, parentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count unread messages")
	}
	if children == nil {
		children = []models.StudentDetail{}
	}

	dashboard := &models.ParentDashboard{
		Children:        children,
		FeesOutstanding: outstanding,
		UnreadMessages:  unread,
		GeneratedAt:     s.now(),
	}
	s.cacheSet(ctx, cacheKey, dashboard)
	return dashboard, nil
}

// Invalidate clears every cached dashboard; called after writes that change
// the underlying counts.
func (s *DashboardService) Invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}

func (s *DashboardService) cacheSet(ctx context.Context, key string, value interface{}) {
	if err := s.cache.Set(ctx, key, value, s.cacheTTL); err != nil {
		s.logger.Warn("failed to cache dashboard", zap.String("key", key), zap.Error(err))
	}
}
