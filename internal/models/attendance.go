package models

import "time"

// AttendanceRecord is one stored mark. Present is nil when the mark was stored as NULL.
type AttendanceRecord struct {
	ID        int64     `db:"id" json:"id"`
	StudentID string    `db:"student_id" json:"student_id"`
	LessonID  int64     `db:"lesson_id" json:"lesson_id"`
	Date      time.Time `db:"date" json:"date"`
	Present   *bool     `db:"present" json:"present"`
}

// AttendanceRow is a record joined with its lesson, class, subject and student.
type AttendanceRow struct {
	AttendanceRecord
	LessonName     string `db:"lesson_name" json:"lesson_name"`
	TeacherID      string `db:"teacher_id" json:"teacher_id"`
	ClassID        int64  `db:"class_id" json:"class_id"`
	ClassName      string `db:"class_name" json:"class_name"`
	SubjectID      int64  `db:"subject_id" json:"subject_id"`
	SubjectName    string `db:"subject_name" json:"subject_name"`
	StudentName    string `db:"student_name" json:"student_name"`
	StudentSurname string `db:"student_surname" json:"student_surname"`
}

// StudentDisplayName joins the student's name parts.
func (r AttendanceRow) StudentDisplayName() string {
	if r.StudentSurname == "" {
		return r.StudentName
	}
	return r.StudentName + " " + r.StudentSurname
}

// AttendanceQuery bounds a scoped attendance fetch.
type AttendanceQuery struct {
	From       time.Time
	To         time.Time
	TeacherID  string
	StudentIDs []string
	// RestrictStudents limits rows to StudentIDs even when the slice is empty.
	RestrictStudents bool
	Descending       bool
}

// AttendanceMark is a single student's mark in a save request.
type AttendanceMark struct {
	StudentID string `json:"student_id" validate:"required"`
	Present   bool   `json:"present"`
}

// SaveAttendanceRequest records a lesson's attendance for one point in time.
type SaveAttendanceRequest struct {
	Date       time.Time        `json:"date" validate:"required"`
	LessonID   int64            `json:"lesson_id" validate:"required,gt=0"`
	Attendance []AttendanceMark `json:"attendance" validate:"required,min=1,dive"`
}

// SaveAttendanceResult summarises a save.
type SaveAttendanceResult struct {
	Recorded int    `json:"recorded"`
	Present  int    `json:"present"`
	Message  string `json:"message"`
}

// AttendanceCounts is the raw material for a ratio.
type AttendanceCounts struct {
	Total   int `db:"total" json:"total"`
	Present int `db:"present" json:"present"`
}

// CleanupResult reports how many stale records a cleanup removed.
type CleanupResult struct {
	Cutoff  time.Time `json:"cutoff"`
	Deleted int64     `json:"deleted"`
}

// Tally counts explicit marks for one class, date and subject.
type Tally struct {
	PresentCount int `json:"present_count"`
	AbsentCount  int `json:"absent_count"`
}
