package service

import (
	"context"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/dto"
	"github.com/noah-isme/school-dashboard-api/internal/models"
	"github.com/noah-isme/school-dashboard-api/internal/schedule"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

const (
	WeekKindTeacher = "teacher"
	WeekKindClass   = "class"
)

type lessonSlotReader interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Lesson, error)
	ListByClass(ctx context.Context, classID int64) ([]models.Lesson, error)
}

type schoolHoursReader interface {
	Hours(ctx context.Context) (*models.SchoolHours, error)
}

// WeekRequest selects whose week to render.
type WeekRequest struct {
	Kind string `validate:"required,oneof=teacher class"`
	ID   string `validate:"required"`
}

// ScheduleService renders recurring lessons as this week's calendar.
type ScheduleService struct {
	lessons   lessonSlotReader
	schools   schoolHoursReader
	validator *validator.Validate
	logger    *zap.Logger
	location  *time.Location
	now       func() time.Time
}

// NewScheduleService instantiates ScheduleService. The week is computed in loc.
func NewScheduleService(lessons lessonSlotReader, schools schoolHoursReader, validate *validator.Validate, logger *zap.Logger, loc *time.Location) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &ScheduleService{lessons: lessons, schools: schools, validator: validate, logger: logger, location: loc, now: time.Now}
}

// Week projects the teacher's or class's lessons onto the current week and bounds the calendar
// axis by the school's opening hours.
func (s *ScheduleService) Week(ctx context.Context, req WeekRequest) (*dto.WeekResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule request")
	}

	var (
		lessons []models.Lesson
		err     error
	)
	switch req.Kind {
	case WeekKindTeacher:
		lessons, err = s.lessons.ListByTeacher(ctx, req.ID)
	case WeekKindClass:
		classID, parseErr := strconv.ParseInt(req.ID, 10, 64)
		if parseErr != nil || classID <= 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "class id must be a positive integer")
		}
		lessons, err = s.lessons.ListByClass(ctx, classID)
	}
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load lessons")
	}

	hours, err := s.schools.Hours(ctx)
	if err != nil {
		return nil, appErrors.Internal(err, "failed to load school hours")
	}
	if hours == nil {
		hours = &models.SchoolHours{}
	}

	occurrences := make([]models.LessonOccurrence, 0, len(lessons))
	for _, lesson := range lessons {
		occurrences = append(occurrences, lesson.Occurrence())
	}

	now := s.now().In(s.location)
	return &dto.WeekResponse{
		WeekStart: schedule.WeekStart(now),
		Events:    schedule.AdjustToCurrentWeek(occurrences, now),
		Window:    schedule.ClampDisplayWindow(hours.OpeningTime, hours.ClosingTime),
	}, nil
}
