package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-dashboard-api/internal/dto"
	"github.com/noah-isme/school-dashboard-api/internal/models"
	"github.com/noah-isme/school-dashboard-api/internal/service"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
	"github.com/noah-isme/school-dashboard-api/pkg/response"
)

type attendanceReportService interface {
	ClassSummary(ctx context.Context, identity models.Identity, req service.ClassSummaryRequest) (*dto.ClassSummaryResponse, error)
	StudentRecords(ctx context.Context, identity models.Identity, req service.StudentRecordsRequest) (*dto.StudentRecordsResponse, error)
	Ratio(ctx context.Context, identity models.Identity, studentID string, yearToDate bool) (*dto.RatioResponse, error)
	WeeklyOverview(ctx context.Context, classID *int64) (*dto.WeeklyOverviewResponse, error)
	ExportClassSummary(ctx context.Context, identity models.Identity, req service.ClassSummaryRequest, format string) (*dto.ExportFile, error)
}

// AttendanceReportHandler exposes the role-aware attendance read endpoints.
type AttendanceReportHandler struct {
	service  attendanceReportService
	location *time.Location
}

// NewAttendanceReportHandler constructs the handler. Date parameters are read in loc.
func NewAttendanceReportHandler(svc attendanceReportService, loc *time.Location) *AttendanceReportHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &AttendanceReportHandler{service: svc, location: loc}
}

// Summary godoc
// @Summary Attendance summary per class, date and subject
// @Description Admins see every class, teachers their own lessons. Other roles receive an empty summary.
// @Tags Attendance
// @Produce json
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param sort query string false "Date order (asc/desc)"
// @Param class_name query string false "Class name contains"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance/summary [get]
func (h *AttendanceReportHandler) Summary(c *gin.Context) {
	identity, err := identityFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	req, err := h.summaryRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.service.ClassSummary(c.Request.Context(), identity, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil, map[string]interface{}{"empty": len(res.Classes) == 0})
}

// Export godoc
// @Summary Download the attendance summary
// @Tags Attendance
// @Produce octet-stream
// @Param format query string false "csv, pdf or xlsx" default(csv)
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param sort query string false "Date order (asc/desc)"
// @Param class_name query string false "Class name contains"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /attendance/summary/export [get]
func (h *AttendanceReportHandler) Export(c *gin.Context) {
	identity, err := identityFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	req, err := h.summaryRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	file, err := h.service.ExportClassSummary(c.Request.Context(), identity, req, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, file.ContentType, file.Filename, file.Data)
}

// Records godoc
// @Summary Attendance records for a student or a parent's children
// @Tags Attendance
// @Produce json
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param sort query string false "Date order (asc/desc)"
// @Param student_name query string false "Student name contains (parents only)"
// @Success 200 {object} response.Envelope
// @Router /attendance/records [get]
func (h *AttendanceReportHandler) Records(c *gin.Context) {
	identity, err := identityFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	from, to, err := parseDateRange(c, h.location)
	if err != nil {
		response.Error(c, err)
		return
	}

	res, err := h.service.StudentRecords(c.Request.Context(), identity, service.StudentRecordsRequest{
		From:        from,
		To:          to,
		Sort:        c.Query("sort"),
		StudentName: c.Query("student_name"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, res.Records, len(res.Records), map[string]interface{}{
		"from": res.From,
		"to":   res.To,
		"sort": res.Sort,
	})
}

// Weekly godoc
// @Summary Present and absent marks per weekday for the current week
// @Tags Attendance
// @Produce json
// @Param class_id query int false "Class ID"
// @Success 200 {object} response.Envelope
// @Router /attendance/weekly [get]
func (h *AttendanceReportHandler) Weekly(c *gin.Context) {
	classID, err := parseOptionalID(c, "class_id")
	if err != nil {
		response.Error(c, err)
		return
	}
	res, err := h.service.WeeklyOverview(c.Request.Context(), classID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

// Ratio godoc
// @Summary Attendance ratio for a student
// @Tags Attendance
// @Produce json
// @Param id path string true "Student ID"
// @Param period query string false "all or ytd" default(all)
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /attendance/students/{id}/ratio [get]
func (h *AttendanceReportHandler) Ratio(c *gin.Context) {
	identity, err := identityFromContext(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var yearToDate bool
	switch strings.ToLower(c.DefaultQuery("period", "all")) {
	case "all":
	case "ytd":
		yearToDate = true
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "period must be all or ytd"))
		return
	}

	res, err := h.service.Ratio(c.Request.Context(), identity, c.Param("id"), yearToDate)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil)
}

func (h *AttendanceReportHandler) summaryRequest(c *gin.Context) (service.ClassSummaryRequest, error) {
	from, to, err := parseDateRange(c, h.location)
	if err != nil {
		return service.ClassSummaryRequest{}, err
	}
	return service.ClassSummaryRequest{
		From:      from,
		To:        to,
		Sort:      c.Query("sort"),
		ClassName: c.Query("class_name"),
	}, nil
}
