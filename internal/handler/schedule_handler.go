package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-dashboard-api/internal/dto"
	"github.com/noah-isme/school-dashboard-api/internal/service"
	"github.com/noah-isme/school-dashboard-api/pkg/response"
)

type scheduleService interface {
	Week(ctx context.Context, req service.WeekRequest) (*dto.WeekResponse, error)
}

// ScheduleHandler exposes the weekly calendar endpoints.
type ScheduleHandler struct {
	service scheduleService
}

// NewScheduleHandler creates a new handler.
func NewScheduleHandler(svc scheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: svc}
}

// TeacherWeek godoc
// @Summary A teacher's lessons projected onto the current week
// @Tags Schedule
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /schedule/teachers/{id}/week [get]
func (h *ScheduleHandler) TeacherWeek(c *gin.Context) {
	h.week(c, service.WeekKindTeacher)
}

// ClassWeek godoc
// @Summary A class's lessons projected onto the current week
// @Tags Schedule
// @Produce json
// @Param id path int true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedule/classes/{id}/week [get]
func (h *ScheduleHandler) ClassWeek(c *gin.Context) {
	h.week(c, service.WeekKindClass)
}

func (h *ScheduleHandler) week(c *gin.Context, kind string) {
	res, err := h.service.Week(c.Request.Context(), service.WeekRequest{Kind: kind, ID: c.Param("id")})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, nil, map[string]interface{}{"empty": len(res.Events) == 0})
}
