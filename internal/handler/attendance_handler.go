package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-dashboard-api/internal/dto"
	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
	"github.com/noah-isme/school-dashboard-api/pkg/response"
)

type attendanceService interface {
	Save(ctx context.Context, identity models.Identity, req models.SaveAttendanceRequest) (*models.SaveAttendanceResult, error)
	ForLessonAndDate(ctx context.Context, lessonID int64, at time.Time) ([]models.AttendanceRecord, error)
	TeacherLessons(ctx context.Context, identity models.Identity) ([]models.LessonRef, error)
	StudentsByClass(ctx context.Context, classID int64) ([]models.Student, error)
	ScheduleCleanup(ctx context.Context, requestedBy string) (*dto.CleanupJobResponse, error)
}

// AttendanceHandler serves the attendance form and its maintenance trigger.
type AttendanceHandler struct {
	service  attendanceService
	location *time.Location
}

// NewAttendanceHandler creates a new handler.
func NewAttendanceHandler(svc attendanceService, loc *time.Location) *AttendanceHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceHandler{service: svc, location: loc}
}

// Save godoc
// @Summary Record attendance for a lesson
// @Description Replaces any marks saved for the same lesson within the same minute.
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body models.SaveAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Save(c *gin.Context) {
	identity, err := identityFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req models.SaveAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}

	res, err := h.service.Save(c.Request.Context(), identity, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Lessons godoc
// @Summary Lessons the caller may record attendance for
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /attendance/lessons [get]
func (h *AttendanceHandler) Lessons(c *gin.Context) {
	identity, err := identityFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	lessons, err := h.service.TeacherLessons(c.Request.Context(), identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, lessons, len(lessons), nil)
}

// LessonAttendance godoc
// @Summary Attendance saved for a lesson at a moment
// @Tags Attendance
// @Produce json
// @Param lessonId path int true "Lesson ID"
// @Param date query string true "RFC3339 instant or YYYY-MM-DD"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance/lessons/{lessonId} [get]
func (h *AttendanceHandler) LessonAttendance(c *gin.Context) {
	lessonID, err := parseIDParam(c, "lessonId")
	if err != nil {
		response.Error(c, err)
		return
	}
	at, err := parseInstantParam(c.Query("date"), h.location)
	if err != nil {
		response.Error(c, err)
		return
	}

	records, err := h.service.ForLessonAndDate(c.Request.Context(), lessonID, at)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, records, len(records), nil)
}

// ClassStudents godoc
// @Summary Students enrolled in a class
// @Tags Attendance
// @Produce json
// @Param id path int true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/students [get]
func (h *AttendanceHandler) ClassStudents(c *gin.Context) {
	classID, err := parseIDParam(c, "id")
	if err != nil {
		response.Error(c, err)
		return
	}
	students, err := h.service.StudentsByClass(c.Request.Context(), classID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, students, len(students), nil)
}

// Cleanup godoc
// @Summary Queue removal of attendance older than the retention period
// @Tags Attendance
// @Produce json
// @Success 202 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /attendance/cleanup [post]
func (h *AttendanceHandler) Cleanup(c *gin.Context) {
	identity, err := identityFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	res, err := h.service.ScheduleCleanup(c.Request.Context(), identity.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, res)
}
