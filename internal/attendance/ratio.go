package attendance

import (
	"math"
	"time"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

// Ratio expresses a student's attendance as a percentage and a score out of ten.
type Ratio struct {
	Total      int     `json:"total"`
	Present    int     `json:"present"`
	Percentage int     `json:"percentage"`
	Score      float64 `json:"score"`
}

// ComputeRatio returns present/total, treating an empty history as zero.
func ComputeRatio(total, present int) Ratio {
	r := Ratio{Total: total, Present: present}
	if total <= 0 {
		return r
	}
	ratio := float64(present) / float64(total)
	r.Percentage = int(math.Round(ratio * 100))
	r.Score = math.Round(ratio*100) / 10
	return r
}

// WeekdayCount tallies marks for one weekday.
type WeekdayCount struct {
	Name    string `json:"name"`
	Present int    `json:"present"`
	Absent  int    `json:"absent"`
}

var weekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// BuildWeeklyOverview counts records per weekday, Sunday first. Anything other than an explicit
// present mark counts as absent here, unlike the class summary.
func BuildWeeklyOverview(records []models.AttendanceRecord, loc *time.Location) []WeekdayCount {
	if loc == nil {
		loc = time.UTC
	}
	days := make([]WeekdayCount, len(weekdayNames))
	for i, name := range weekdayNames {
		days[i].Name = name
	}
	for _, record := range records {
		day := &days[record.Date.In(loc).Weekday()]
		if record.Present != nil && *record.Present {
			day.Present++
		} else {
			day.Absent++
		}
	}
	return days
}
