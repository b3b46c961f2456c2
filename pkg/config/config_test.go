package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ATTENDANCE_RETENTION", "")
	t.Setenv("ATTENDANCE_JOB_WORKERS", "0")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 365*24*time.Hour, cfg.Attendance.Retention)
	assert.Equal(t, 1, cfg.Attendance.JobWorkers)
	assert.Equal(t, "attendance:jobs", cfg.Attendance.QueueKey)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ATTENDANCE_RETENTION", "720h")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, ,http://b.test")
	t.Setenv("JWT_EXPIRATION", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 720*time.Hour, cfg.Attendance.Retention)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
}

func TestAttendanceLocation(t *testing.T) {
	assert.Equal(t, time.UTC, AttendanceConfig{}.Location())
	assert.Equal(t, time.UTC, AttendanceConfig{Timezone: "Nowhere/Atlantis"}.Location())
}
