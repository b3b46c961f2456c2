package attendance

import (
	"strings"
	"time"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

// DateLabelLayout renders dates as "Mon, Mar 4, 2024".
const DateLabelLayout = "Mon, Jan 2, 2006"

const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
)

// StudentViewOptions tunes BuildStudentView.
type StudentViewOptions struct {
	NameFilter string
}

// StudentEntry is one attendance record annotated for display.
type StudentEntry struct {
	ID          int64     `json:"id"`
	StudentID   string    `json:"student_id"`
	StudentName string    `json:"student_name"`
	LessonID    int64     `json:"lesson_id"`
	ClassName   string    `json:"class_name"`
	SubjectName string    `json:"subject_name"`
	Date        time.Time `json:"date"`
	DateLabel   string    `json:"date_label"`
	Present     *bool     `json:"present"`
	Status      string    `json:"status"`
}

// BuildStudentView annotates rows in their given order, optionally keeping only students whose
// display name contains opts.NameFilter.
func BuildStudentView(rows []models.AttendanceRow, opts StudentViewOptions) []StudentEntry {
	filter := strings.ToLower(strings.TrimSpace(opts.NameFilter))
	entries := make([]StudentEntry, 0, len(rows))
	for _, row := range rows {
		name := row.StudentDisplayName()
		if filter != "" && !strings.Contains(strings.ToLower(name), filter) {
			continue
		}
		status := StatusAbsent
		if row.Present != nil && *row.Present {
			status = StatusPresent
		}
		entries = append(entries, StudentEntry{
			ID:          row.ID,
			StudentID:   row.StudentID,
			StudentName: name,
			LessonID:    row.LessonID,
			ClassName:   row.ClassName,
			SubjectName: row.SubjectName,
			Date:        row.Date,
			DateLabel:   row.Date.Format(DateLabelLayout),
			Present:     row.Present,
			Status:      status,
		})
	}
	return entries
}
