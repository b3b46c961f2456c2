package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

const attendanceRowColumns = `a.id, a.student_id, a.lesson_id, a.date, a.present,
        l.name AS lesson_name, l.teacher_id, l.class_id, c.name AS class_name,
        l.subject_id, sub.name AS subject_name, s.name AS student_name, s.surname AS student_surname`

const attendanceRowJoins = `FROM attendance a
        JOIN lessons l ON l.id = a.lesson_id
        JOIN classes c ON c.id = l.class_id
        JOIN subjects sub ON sub.id = l.subject_id
        JOIN students s ON s.id = a.student_id`

// AttendanceRepository reads and writes lesson attendance marks.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs an AttendanceRepository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// ListRows returns joined attendance rows inside [From, To] restricted by the query scope.
func (r *AttendanceRepository) ListRows(ctx context.Context, q models.AttendanceQuery) ([]models.AttendanceRow, error) {
	if q.RestrictStudents && len(q.StudentIDs) == 0 {
		return []models.AttendanceRow{}, nil
	}

	conditions := []string{"1=1"}
	args := []interface{}{}
	if !q.From.IsZero() {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", len(args)+1))
		args = append(args, q.From)
	}
	if !q.To.IsZero() {
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", len(args)+1))
		args = append(args, q.To)
	}
	if q.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("l.teacher_id = $%d", len(args)+1))
		args = append(args, q.TeacherID)
	}
	if q.RestrictStudents {
		conditions = append(conditions, fmt.Sprintf("a.student_id = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(q.StudentIDs))
	}

	order := "ASC"
	if q.Descending {
		order = "DESC"
	}

	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY a.date %s, a.id ASC",
		attendanceRowColumns, attendanceRowJoins, strings.Join(conditions, " AND "), order)

	rows := []models.AttendanceRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance rows: %w", err)
	}
	return rows, nil
}

// ListRecords returns bare records between from and to, optionally for one class.
func (r *AttendanceRepository) ListRecords(ctx context.Context, from, to time.Time, classID *int64) ([]models.AttendanceRecord, error) {
	query := `SELECT a.id, a.student_id, a.lesson_id, a.date, a.present FROM attendance a`
	args := []interface{}{from, to}
	where := "WHERE a.date >= $1 AND a.date <= $2"
	if classID != nil {
		query += " JOIN students s ON s.id = a.student_id"
		where += " AND s.class_id = $3"
		args = append(args, *classID)
	}

	records := []models.AttendanceRecord{}
	if err := r.db.SelectContext(ctx, &records, query+" "+where+" ORDER BY a.date ASC", args...); err != nil {
		return nil, fmt.Errorf("list attendance records: %w", err)
	}
	return records, nil
}

// CountForStudent counts a student's records and present marks, optionally since a point in time.
func (r *AttendanceRepository) CountForStudent(ctx context.Context, studentID string, since *time.Time) (models.AttendanceCounts, error) {
	query := `SELECT COUNT(*) AS total, COUNT(*) FILTER (WHERE present = TRUE) AS present FROM attendance WHERE student_id = $1`
	args := []interface{}{studentID}
	if since != nil {
		query += " AND date >= $2"
		args = append(args, *since)
	}

	var counts models.AttendanceCounts
	if err := r.db.GetContext(ctx, &counts, query, args...); err != nil {
		return models.AttendanceCounts{}, fmt.Errorf("count student attendance: %w", err)
	}
	return counts, nil
}

// ListForLessonWindow returns the lesson's records with date in [from, to).
func (r *AttendanceRepository) ListForLessonWindow(ctx context.Context, lessonID int64, from, to time.Time) ([]models.AttendanceRecord, error) {
	const query = `SELECT id, student_id, lesson_id, date, present FROM attendance
        WHERE lesson_id = $1 AND date >= $2 AND date < $3 ORDER BY id ASC`
	records := []models.AttendanceRecord{}
	if err := r.db.SelectContext(ctx, &records, query, lessonID, from, to); err != nil {
		return nil, fmt.Errorf("list lesson attendance: %w", err)
	}
	return records, nil
}

// ReplaceLessonWindow deletes the lesson's records with date in [from, to) and inserts records
// in a single transaction.
func (r *AttendanceRepository) ReplaceLessonWindow(ctx context.Context, lessonID int64, from, to time.Time, records []models.AttendanceRecord) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace attendance: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM attendance WHERE lesson_id = $1 AND date >= $2 AND date < $3`, lessonID, from, to); err != nil {
		return fmt.Errorf("clear attendance window: %w", err)
	}

	for i := range records {
		record := records[i]
		if _, err = tx.NamedExecContext(ctx, `INSERT INTO attendance (date, present, student_id, lesson_id) VALUES (:date, :present, :student_id, :lesson_id)`, &record); err != nil {
			return fmt.Errorf("insert attendance: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace attendance: %w", err)
	}
	return nil
}

// DeleteBefore removes records dated strictly before cutoff.
func (r *AttendanceRepository) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM attendance WHERE date < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete stale attendance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("count deleted attendance: %w", err)
	}
	return affected, nil
}
