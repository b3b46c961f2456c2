package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-dashboard-api/internal/models"
	"github.com/noah-isme/school-dashboard-api/internal/schedule"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

type lessonSlotStub struct {
	byTeacher map[string][]models.Lesson
	byClass   map[int64][]models.Lesson
	err       error
}

func (s *lessonSlotStub) ListByTeacher(ctx context.Context, teacherID string) ([]models.Lesson, error) {
	return s.byTeacher[teacherID], s.err
}

func (s *lessonSlotStub) ListByClass(ctx context.Context, classID int64) ([]models.Lesson, error) {
	return s.byClass[classID], s.err
}

type schoolHoursStub struct {
	hours *models.SchoolHours
	err   error
}

func (s *schoolHoursStub) Hours(ctx context.Context) (*models.SchoolHours, error) {
	return s.hours, s.err
}

func mathLesson() models.Lesson {
	return models.Lesson{
		LessonRef: models.LessonRef{ID: 3, Name: "Math 5A", TeacherID: "t1", ClassID: 5},
		StartTime: time.Date(2023, 9, 12, 9, 0, 0, 0, time.UTC),
		EndTime:   time.Date(2023, 9, 12, 9, 45, 0, 0, time.UTC),
	}
}

func newScheduleServiceForTest(lessons *lessonSlotStub, hours *schoolHoursStub) *ScheduleService {
	svc := NewScheduleService(lessons, hours, nil, nil, time.UTC)
	svc.now = func() time.Time { return time.Date(2024, 3, 10, 18, 0, 0, 0, time.UTC) }
	return svc
}

func TestScheduleWeekForTeacher(t *testing.T) {
	lessons := &lessonSlotStub{byTeacher: map[string][]models.Lesson{"t1": {mathLesson()}}}
	svc := newScheduleServiceForTest(lessons, &schoolHoursStub{hours: &models.SchoolHours{OpeningTime: "07:00", ClosingTime: "00:00"}})

	resp, err := svc.Week(context.Background(), WeekRequest{Kind: WeekKindTeacher, ID: "t1"})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC), resp.WeekStart)
	require.Len(t, resp.Events, 1)
	assert.Equal(t, "Math 5A", resp.Events[0].Title)
	assert.Equal(t, time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC), resp.Events[0].Start)
	assert.Equal(t, time.Date(2024, 3, 5, 9, 45, 0, 0, time.UTC), resp.Events[0].End)
	assert.Equal(t, schedule.TimeOfDay{Hour: 7}, resp.Window.Min)
	assert.Equal(t, schedule.TimeOfDay{Hour: 23, Minute: 59, Second: 59}, resp.Window.Max)
}

func TestScheduleWeekForClassWithoutSchool(t *testing.T) {
	lessons := &lessonSlotStub{byClass: map[int64][]models.Lesson{5: {mathLesson()}}}
	svc := newScheduleServiceForTest(lessons, &schoolHoursStub{})

	resp, err := svc.Week(context.Background(), WeekRequest{Kind: WeekKindClass, ID: "5"})
	require.NoError(t, err)
	assert.Len(t, resp.Events, 1)
	assert.Equal(t, schedule.ClampDisplayWindow("08:00", "17:00"), resp.Window)
}

func TestScheduleWeekEmpty(t *testing.T) {
	svc := newScheduleServiceForTest(&lessonSlotStub{}, &schoolHoursStub{})

	resp, err := svc.Week(context.Background(), WeekRequest{Kind: WeekKindTeacher, ID: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, resp.Events)
	assert.Empty(t, resp.Events)
}

func TestScheduleWeekValidation(t *testing.T) {
	svc := newScheduleServiceForTest(&lessonSlotStub{}, &schoolHoursStub{})

	_, err := svc.Week(context.Background(), WeekRequest{Kind: "room", ID: "1"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Week(context.Background(), WeekRequest{Kind: WeekKindClass, ID: "5A"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestScheduleWeekPersistenceErrors(t *testing.T) {
	svc := newScheduleServiceForTest(&lessonSlotStub{err: errors.New("db down")}, &schoolHoursStub{})
	_, err := svc.Week(context.Background(), WeekRequest{Kind: WeekKindTeacher, ID: "t1"})
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)

	svc = newScheduleServiceForTest(&lessonSlotStub{}, &schoolHoursStub{err: errors.New("db down")})
	_, err = svc.Week(context.Background(), WeekRequest{Kind: WeekKindTeacher, ID: "t1"})
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}
