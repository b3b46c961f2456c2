package dto

import (
	"time"

	"github.com/noah-isme/school-dashboard-api/internal/models"
	"github.com/noah-isme/school-dashboard-api/internal/schedule"
)

// WeekResponse is a calendar week of projected lessons.
type WeekResponse struct {
	WeekStart time.Time               `json:"week_start"`
	Events    []models.ProjectedEvent `json:"events"`
	Window    schedule.DisplayWindow  `json:"window"`
}
