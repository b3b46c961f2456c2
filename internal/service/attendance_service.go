package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/dto"
	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
	"github.com/noah-isme/school-dashboard-api/pkg/jobs"
)

// SaveWindow is the span treated as one moment when resaving a lesson's attendance.
const SaveWindow = 60 * time.Second

type attendanceWriter interface {
	ListForLessonWindow(ctx context.Context, lessonID int64, from, to time.Time) ([]models.AttendanceRecord, error)
	ReplaceLessonWindow(ctx context.Context, lessonID int64, from, to time.Time, records []models.AttendanceRecord) error
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type lessonDirectory interface {
	FindRef(ctx context.Context, id int64) (*models.LessonRef, error)
	ListRefs(ctx context.Context, teacherID string) ([]models.LessonRef, error)
}

type classRoster interface {
	ListByClass(ctx context.Context, classID int64) ([]models.Student, error)
}

// AttendanceServiceConfig tunes attendance maintenance.
type AttendanceServiceConfig struct {
	Retention time.Duration
}

// AttendanceService records attendance and serves the lookups its form needs.
type AttendanceService struct {
	attendance attendanceWriter
	lessons    lessonDirectory
	students   classRoster
	dispatcher jobs.Dispatcher
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        AttendanceServiceConfig
	now        func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(attendanceRepo attendanceWriter, lessons lessonDirectory, students classRoster, dispatcher jobs.Dispatcher, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg AttendanceServiceConfig) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 365 * 24 * time.Hour
	}
	return &AttendanceService{
		attendance: attendanceRepo,
		lessons:    lessons,
		students:   students,
		dispatcher: dispatcher,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Save replaces the lesson's marks recorded within a minute of req.Date. Teachers may only save
// lessons they teach.
func (s *AttendanceService) Save(ctx context.Context, identity models.Identity, req models.SaveAttendanceRequest) (*models.SaveAttendanceResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if err := uniqueStudents(req.Attendance); err != nil {
		return nil, err
	}

	switch identity.Role {
	case models.RoleAdmin, models.RoleTeacher:
	default:
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only staff can record attendance")
	}

	lesson, err := s.lessons.FindRef(ctx, req.LessonID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Internal(err, "failed to load lesson")
	}
	if identity.Role == models.RoleTeacher && lesson.TeacherID != identity.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you are not authorized to record attendance for this lesson")
	}

	records := make([]models.AttendanceRecord, 0, len(req.Attendance))
	present := 0
	for _, mark := range req.Attendance {
		value := mark.Present
		if value {
			present++
		}
		records = append(records, models.AttendanceRecord{
			StudentID: mark.StudentID,
			LessonID:  req.LessonID,
			Date:      req.Date,
			Present:   &value,
		})
	}

	start := time.Now()
	err = s.attendance.ReplaceLessonWindow(ctx, req.LessonID, req.Date, req.Date.Add(SaveWindow), records)
	s.metrics.ObserveDBQuery("attendance_save", time.Since(start))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to save attendance records")
	}
	s.metrics.RecordAttendanceSaved(present, len(records)-present)

	s.logger.Info("attendance recorded",
		zap.Int64("lesson_id", req.LessonID),
		zap.Time("date", req.Date),
		zap.Int("records", len(records)),
		zap.String("recorded_by", identity.UserID),
	)

	return &models.SaveAttendanceResult{
		Recorded: len(records),
		Present:  present,
		Message:  fmt.Sprintf("Recorded attendance for %d students", present),
	}, nil
}

// ForLessonAndDate returns the marks saved for the lesson within a minute of at.
func (s *AttendanceService) ForLessonAndDate(ctx context.Context, lessonID int64, at time.Time) ([]models.AttendanceRecord, error) {
	if lessonID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "lesson id must be positive")
	}
	if at.IsZero() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date is required")
	}
	records, err := s.attendance.ListForLessonWindow(ctx, lessonID, at, at.Add(SaveWindow))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load lesson attendance")
	}
	return records, nil
}

// TeacherLessons lists every lesson for admins and the caller's own lessons for teachers.
func (s *AttendanceService) TeacherLessons(ctx context.Context, identity models.Identity) ([]models.LessonRef, error) {
	if identity.UserID == "" {
		return []models.LessonRef{}, nil
	}
	var teacherID string
	switch identity.Role {
	case models.RoleAdmin:
	case models.RoleTeacher:
		teacherID = identity.UserID
	default:
		return []models.LessonRef{}, nil
	}
	lessons, err := s.lessons.ListRefs(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load lessons")
	}
	return lessons, nil
}

// StudentsByClass returns the class roster ordered by name and surname.
func (s *AttendanceService) StudentsByClass(ctx context.Context, classID int64) ([]models.Student, error) {
	if classID <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class id must be positive")
	}
	students, err := s.students.ListByClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load students")
	}
	return students, nil
}

// CleanupCutoff is the instant before which records are considered stale.
func (s *AttendanceService) CleanupCutoff() time.Time {
	return s.now().UTC().Add(-s.cfg.Retention)
}

// Cleanup deletes records older than the retention period.
func (s *AttendanceService) Cleanup(ctx context.Context) (*models.CleanupResult, error) {
	cutoff := s.CleanupCutoff()
	deleted, err := s.attendance.DeleteBefore(ctx, cutoff)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to clean up attendance")
	}
	s.metrics.RecordCleanup(deleted)
	s.logger.Info("attendance cleanup finished", zap.Time("cutoff", cutoff), zap.Int64("deleted", deleted))
	return &models.CleanupResult{Cutoff: cutoff, Deleted: deleted}, nil
}

// ScheduleCleanup hands a cleanup to the background pipeline.
func (s *AttendanceService) ScheduleCleanup(ctx context.Context, requestedBy string) (*dto.CleanupJobResponse, error) {
	if s.dispatcher == nil {
		return nil, appErrors.Clone(appErrors.ErrUnavailable, "background jobs are not available")
	}
	cutoff := s.CleanupCutoff()
	job, err := jobs.NewJob(uuid.NewString(), CleanupJobType, CleanupPayload{Cutoff: cutoff, RequestedBy: requestedBy})
	if err != nil {
		return nil, appErrors.Internal(err, "failed to build cleanup job")
	}
	if err := s.dispatcher.Dispatch(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnavailable.Code, appErrors.ErrUnavailable.Status, "failed to enqueue cleanup job")
	}
	s.logger.Info("attendance cleanup queued", zap.String("job_id", job.ID), zap.String("requested_by", requestedBy))
	return &dto.CleanupJobResponse{JobID: job.ID, Status: "queued", Cutoff: cutoff}, nil
}

func uniqueStudents(marks []models.AttendanceMark) error {
	seen := make(map[string]struct{}, len(marks))
	for _, mark := range marks {
		if _, ok := seen[mark.StudentID]; ok {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("student %s is marked more than once", mark.StudentID))
		}
		seen[mark.StudentID] = struct{}{}
	}
	return nil
}
