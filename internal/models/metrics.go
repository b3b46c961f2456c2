package models

import "time"

// SystemMetrics is a lightweight snapshot of the in-process counters.
type SystemMetrics struct {
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	DBQueryCount             uint64    `json:"db_query_count"`
	AverageDBQueryDurationMs float64   `json:"average_db_query_duration_ms"`
	AttendanceMarksSaved     uint64    `json:"attendance_marks_saved"`
	AttendanceRowsCleaned    uint64    `json:"attendance_rows_cleaned"`
	JobsSucceeded            uint64    `json:"jobs_succeeded"`
	JobsFailed               uint64    `json:"jobs_failed"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
