package models

import "time"

// LessonRef identifies a lesson together with its class and subject names.
type LessonRef struct {
	ID          int64  `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	TeacherID   string `db:"teacher_id" json:"teacher_id"`
	ClassID     int64  `db:"class_id" json:"class_id"`
	SubjectID   int64  `db:"subject_id" json:"subject_id"`
	ClassName   string `db:"class_name" json:"class_name"`
	SubjectName string `db:"subject_name" json:"subject_name"`
}

// Lesson is a LessonRef with its recurring time slot.
type Lesson struct {
	LessonRef
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
}

// Occurrence returns the lesson as a projectable occurrence.
func (l Lesson) Occurrence() LessonOccurrence {
	return LessonOccurrence{Title: l.Name, Start: l.StartTime, End: l.EndTime}
}

// LessonOccurrence only carries meaning in its weekday and time of day.
type LessonOccurrence struct {
	Title string
	Start time.Time
	End   time.Time
}

// ProjectedEvent is an occurrence moved into the current week.
type ProjectedEvent struct {
	Title string    `json:"title"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
