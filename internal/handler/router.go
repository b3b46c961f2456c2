package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-dashboard-api/internal/middleware"
	"github.com/noah-isme/school-dashboard-api/internal/models"
)

// Handlers groups the HTTP handlers mounted by Register.
type Handlers struct {
	Auth             *AuthHandler
	AttendanceReport *AttendanceReportHandler
	Attendance       *AttendanceHandler
	Schedule         *ScheduleHandler
	Metrics          *MetricsHandler
}

// Register mounts the operational endpoints on r and the API under prefix.
func Register(r *gin.Engine, prefix string, h Handlers, tokens middleware.TokenValidator) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	api := r.Group(prefix)
	api.POST("/auth/login", h.Auth.Login)

	secured := api.Group("")
	secured.Use(middleware.JWT(tokens))
	secured.GET("/auth/me", h.Auth.Me)

	staff := middleware.RequireRoles(models.RoleAdmin, models.RoleTeacher)
	admin := middleware.RequireRoles(models.RoleAdmin)

	attendance := secured.Group("/attendance")
	attendance.GET("/summary", h.AttendanceReport.Summary)
	attendance.GET("/summary/export", staff, h.AttendanceReport.Export)
	attendance.GET("/records", h.AttendanceReport.Records)
	attendance.GET("/weekly", admin, h.AttendanceReport.Weekly)
	attendance.GET("/students/:id/ratio", h.AttendanceReport.Ratio)
	attendance.POST("", staff, h.Attendance.Save)
	attendance.GET("/lessons", staff, h.Attendance.Lessons)
	attendance.GET("/lessons/:lessonId", staff, h.Attendance.LessonAttendance)
	attendance.POST("/cleanup", admin, h.Attendance.Cleanup)

	secured.GET("/classes/:id/students", staff, h.Attendance.ClassStudents)

	schedule := secured.Group("/schedule")
	schedule.GET("/teachers/:id/week", h.Schedule.TeacherWeek)
	schedule.GET("/classes/:id/week", h.Schedule.ClassWeek)

	secured.GET("/admin/metrics/summary", admin, h.Metrics.Summary)
}
