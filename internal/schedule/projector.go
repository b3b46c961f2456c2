// Package schedule anchors recurring lessons onto the current week.
package schedule

import (
	"time"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

// WeekStart returns Monday 00:00 of the week containing now, in now's location.
func WeekStart(now time.Time) time.Time {
	offset := mondayOffset(now.Weekday())
	y, m, d := now.Date()
	return time.Date(y, m, d-offset, 0, 0, 0, 0, now.Location())
}

// AdjustToCurrentWeek moves each occurrence onto the same weekday and time of day within the
// week of now. Durations are preserved.
func AdjustToCurrentWeek(occurrences []models.LessonOccurrence, now time.Time) []models.ProjectedEvent {
	loc := now.Location()
	monday := WeekStart(now)
	y, m, d := monday.Date()

	events := make([]models.ProjectedEvent, 0, len(occurrences))
	for _, occ := range occurrences {
		src := occ.Start.In(loc)
		start := time.Date(y, m, d+mondayOffset(src.Weekday()), src.Hour(), src.Minute(), src.Second(), 0, loc)
		events = append(events, models.ProjectedEvent{
			Title: occ.Title,
			Start: start,
			End:   start.Add(occ.End.Sub(occ.Start)),
		})
	}
	return events
}

func mondayOffset(day time.Weekday) int {
	if day == time.Sunday {
		return 6
	}
	return int(day) - 1
}
