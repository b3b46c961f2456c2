package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/attendance"
	"github.com/noah-isme/school-dashboard-api/internal/dto"
	"github.com/noah-isme/school-dashboard-api/internal/models"
	"github.com/noah-isme/school-dashboard-api/internal/schedule"
	"github.com/noah-isme/school-dashboard-api/internal/scope"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
	"github.com/noah-isme/school-dashboard-api/pkg/export"
)

type attendanceRowReader interface {
	ListRows(ctx context.Context, q models.AttendanceQuery) ([]models.AttendanceRow, error)
	ListRecords(ctx context.Context, from, to time.Time, classID *int64) ([]models.AttendanceRecord, error)
	CountForStudent(ctx context.Context, studentID string, since *time.Time) (models.AttendanceCounts, error)
}

type parentChildrenResolver interface {
	ChildIDs(ctx context.Context, parentID string) ([]string, error)
}

// ClassSummaryRequest narrows the staff summary. Nil bounds default to the current month.
type ClassSummaryRequest struct {
	From      *time.Time
	To        *time.Time
	Sort      string `validate:"omitempty,sort_order"`
	ClassName string `validate:"max=100"`
}

// StudentRecordsRequest narrows the student and parent view.
type StudentRecordsRequest struct {
	From        *time.Time
	To          *time.Time
	Sort        string `validate:"omitempty,sort_order"`
	StudentName string `validate:"max=100"`
}

// AttendanceReportService builds role-shaped attendance reports.
type AttendanceReportService struct {
	attendance attendanceRowReader
	students   parentChildrenResolver
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	location   *time.Location
	now        func() time.Time
}

// NewAttendanceReportService constructs the report service. Report dates are rendered in loc.
func NewAttendanceReportService(attendanceRepo attendanceRowReader, students parentChildrenResolver, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, loc *time.Location) *AttendanceReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	svc := &AttendanceReportService{
		attendance: attendanceRepo,
		students:   students,
		metrics:    metrics,
		validator:  validate,
		logger:     logger,
		location:   loc,
		now:        time.Now,
	}
	svc.validator.RegisterValidation("sort_order", func(fl validator.FieldLevel) bool {
		value := strings.ToLower(fl.Field().String())
		return value == string(attendance.SortAsc) || value == string(attendance.SortDesc)
	})
	return svc
}

// ClassSummary tallies attendance per class, date and subject for admins and teachers. Any other
// caller receives an empty summary.
func (s *AttendanceReportService) ClassSummary(ctx context.Context, identity models.Identity, req ClassSummaryRequest) (*dto.ClassSummaryResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid summary filter")
	}
	from, to, err := s.resolveRange(req.From, req.To)
	if err != nil {
		return nil, err
	}
	order := attendance.ParseSortOrder(req.Sort)
	resp := &dto.ClassSummaryResponse{From: from, To: to, Sort: order, Classes: []attendance.ClassSummaryEntry{}}

	sc, ok := scope.FromIdentity(identity.UserID, identity.Role)
	if !ok {
		return resp, nil
	}
	switch sc.(type) {
	case scope.Admin, scope.Teacher:
	default:
		return resp, nil
	}

	rows, err := s.fetchRows(ctx, "attendance_class_summary", scope.PredicateFor(sc), from, to, order)
	if err != nil {
		return nil, err
	}

	summary := attendance.BuildClassSummary(rows, attendance.SummaryOptions{Order: order, ClassFilter: req.ClassName})
	resp.Classes = summary.Classes
	resp.Total = summary.Total()
	return resp, nil
}

// StudentRecords lists a student's own records, or the records of a parent's children. Parents
// may further filter by student name. Any other caller receives an empty list.
func (s *AttendanceReportService) StudentRecords(ctx context.Context, identity models.Identity, req StudentRecordsRequest) (*dto.StudentRecordsResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid records filter")
	}
	from, to, err := s.resolveRange(req.From, req.To)
	if err != nil {
		return nil, err
	}
	order := attendance.ParseSortOrder(req.Sort)
	resp := &dto.StudentRecordsResponse{From: from, To: to, Sort: order, Records: []attendance.StudentEntry{}}

	sc, ok := scope.FromIdentity(identity.UserID, identity.Role)
	if !ok {
		return resp, nil
	}

	opts := attendance.StudentViewOptions{}
	switch v := sc.(type) {
	case scope.Student:
	case scope.Parent:
		children, err := s.students.ChildIDs(ctx, v.ParentID)
		if err != nil {
			return nil, appErrors.Internal(err, "failed to resolve children")
		}
		sc = v.WithChildren(children)
		opts.NameFilter = req.StudentName
	default:
		return resp, nil
	}

	rows, err := s.fetchRows(ctx, "attendance_student_records", scope.PredicateFor(sc), from, to, order)
	if err != nil {
		return nil, err
	}
	resp.Records = attendance.BuildStudentView(rows, opts)
	return resp, nil
}

// Ratio computes a student's attendance ratio, over all time or since January 1st. Students may
// only read their own ratio and parents only their children's.
func (s *AttendanceReportService) Ratio(ctx context.Context, identity models.Identity, studentID string, yearToDate bool) (*dto.RatioResponse, error) {
	if strings.TrimSpace(studentID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "student id is required")
	}
	if err := s.authorizeStudent(ctx, identity, studentID); err != nil {
		return nil, err
	}

	period := "all"
	var since *time.Time
	if yearToDate {
		period = "ytd"
		now := s.now().In(s.location)
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, s.location)
		since = &start
	}

	start := time.Now()
	counts, err := s.attendance.CountForStudent(ctx, studentID, since)
	s.metrics.ObserveDBQuery("attendance_ratio", time.Since(start))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to count attendance")
	}

	return &dto.RatioResponse{
		StudentID: studentID,
		Period:    period,
		Ratio:     attendance.ComputeRatio(counts.Total, counts.Present),
	}, nil
}

// WeeklyOverview counts marks per weekday from this week's Monday until now, optionally for one class.
func (s *AttendanceReportService) WeeklyOverview(ctx context.Context, classID *int64) (*dto.WeeklyOverviewResponse, error) {
	now := s.now().In(s.location)
	monday := schedule.WeekStart(now)

	start := time.Now()
	records, err := s.attendance.ListRecords(ctx, monday, now, classID)
	s.metrics.ObserveDBQuery("attendance_weekly", time.Since(start))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load weekly attendance")
	}

	return &dto.WeeklyOverviewResponse{
		WeekStart: monday,
		Until:     now,
		Days:      attendance.BuildWeeklyOverview(records, s.location),
	}, nil
}

// ExportClassSummary renders the class summary in the requested format.
func (s *AttendanceReportService) ExportClassSummary(ctx context.Context, identity models.Identity, req ClassSummaryRequest, format string) (*dto.ExportFile, error) {
	parsed, err := export.ParseFormat(strings.ToLower(strings.TrimSpace(format)))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "format must be csv, pdf or xlsx")
	}
	renderer, err := export.RendererFor(parsed)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to prepare exporter")
	}

	summary, err := s.ClassSummary(ctx, identity, req)
	if err != nil {
		return nil, err
	}

	dataset := export.Dataset{
		Title:   fmt.Sprintf("Attendance summary %s to %s", summary.From.Format(attendance.DateKeyLayout), summary.To.Format(attendance.DateKeyLayout)),
		Headers: []string{"Class", "Date", "Subject", "Present", "Absent"},
		Rows:    [][]string{},
	}
	for _, class := range summary.Classes {
		for _, date := range class.Dates {
			for _, subject := range date.Subjects {
				dataset.Rows = append(dataset.Rows, []string{
					class.ClassName,
					date.Date,
					subject.Subject,
					strconv.Itoa(subject.PresentCount),
					strconv.Itoa(subject.AbsentCount),
				})
			}
		}
	}

	data, err := renderer.Render(dataset)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to render attendance export")
	}

	s.logger.Info("attendance summary exported",
		zap.String("user_id", identity.UserID),
		zap.String("format", string(parsed)),
		zap.Int("rows", len(dataset.Rows)),
	)

	return &dto.ExportFile{
		Filename:    fmt.Sprintf("attendance-summary-%s-%s.%s", summary.From.Format("20060102"), summary.To.Format("20060102"), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        data,
	}, nil
}

func (s *AttendanceReportService) fetchRows(ctx context.Context, label string, pred scope.Predicate, from, to time.Time, order attendance.SortOrder) ([]models.AttendanceRow, error) {
	if pred.MatchesNone() {
		return []models.AttendanceRow{}, nil
	}
	query := pred.Apply(models.AttendanceQuery{From: from, To: to, Descending: order == attendance.SortDesc})

	start := time.Now()
	rows, err := s.attendance.ListRows(ctx, query)
	s.metrics.ObserveDBQuery(label, time.Since(start))
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load attendance")
	}
	for i := range rows {
		rows[i].Date = rows[i].Date.In(s.location)
	}
	return rows, nil
}

func (s *AttendanceReportService) authorizeStudent(ctx context.Context, identity models.Identity, studentID string) error {
	sc, ok := scope.FromIdentity(identity.UserID, identity.Role)
	if !ok {
		return appErrors.Clone(appErrors.ErrForbidden, "attendance is not available for this role")
	}
	switch v := sc.(type) {
	case scope.Admin, scope.Teacher:
		return nil
	case scope.Student:
		if v.StudentID == studentID {
			return nil
		}
	case scope.Parent:
		children, err := s.students.ChildIDs(ctx, v.ParentID)
		if err != nil {
			return appErrors.Internal(err, "failed to resolve children")
		}
		if scope.PredicateFor(v.WithChildren(children)).Allows(models.AttendanceRow{AttendanceRecord: models.AttendanceRecord{StudentID: studentID}}) {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrForbidden, "you may not view this student's attendance")
}

func (s *AttendanceReportService) resolveRange(from, to *time.Time) (time.Time, time.Time, error) {
	now := s.now().In(s.location)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.location)

	start := monthStart
	if from != nil {
		start = *from
	}
	end := monthStart.AddDate(0, 1, 0).Add(-time.Nanosecond)
	if to != nil {
		end = *to
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "to must not be before from")
	}
	return start, end, nil
}
