package dto

import (
	"time"

	"github.com/noah-isme/school-dashboard-api/internal/attendance"
)

// ClassSummaryResponse is returned by GET /attendance/summary.
type ClassSummaryResponse struct {
	From    time.Time                      `json:"from"`
	To      time.Time                      `json:"to"`
	Sort    attendance.SortOrder           `json:"sort"`
	Total   int                            `json:"total"`
	Classes []attendance.ClassSummaryEntry `json:"classes"`
}

// StudentRecordsResponse is returned by GET /attendance/records.
type StudentRecordsResponse struct {
	From    time.Time                 `json:"from"`
	To      time.Time                 `json:"to"`
	Sort    attendance.SortOrder      `json:"sort"`
	Records []attendance.StudentEntry `json:"records"`
}

// WeeklyOverviewResponse feeds the dashboard attendance chart.
type WeeklyOverviewResponse struct {
	WeekStart time.Time                 `json:"week_start"`
	Until     time.Time                 `json:"until"`
	Days      []attendance.WeekdayCount `json:"days"`
}

// RatioResponse reports a student's attendance ratio.
type RatioResponse struct {
	StudentID string `json:"student_id"`
	Period    string `json:"period"`
	attendance.Ratio
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// CleanupJobResponse acknowledges a queued cleanup.
type CleanupJobResponse struct {
	JobID  string    `json:"job_id"`
	Status string    `json:"status"`
	Cutoff time.Time `json:"cutoff"`
}
