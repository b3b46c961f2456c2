package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

const lessonColumns = `l.id, l.name, l.teacher_id, l.class_id, l.subject_id, c.name AS class_name, sub.name AS subject_name`

const lessonJoins = `FROM lessons l
        JOIN classes c ON c.id = l.class_id
        JOIN subjects sub ON sub.id = l.subject_id`

// LessonRepository reads lessons with their class and subject names.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository constructs a LessonRepository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// FindRef returns the lesson reference or sql.ErrNoRows.
func (r *LessonRepository) FindRef(ctx context.Context, id int64) (*models.LessonRef, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE l.id = $1", lessonColumns, lessonJoins)
	var ref models.LessonRef
	if err := r.db.GetContext(ctx, &ref, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find lesson: %w", err)
	}
	return &ref, nil
}

// ListRefs returns lessons ordered by name, limited to one teacher when teacherID is set.
func (r *LessonRepository) ListRefs(ctx context.Context, teacherID string) ([]models.LessonRef, error) {
	query := fmt.Sprintf("SELECT %s %s", lessonColumns, lessonJoins)
	args := []interface{}{}
	if teacherID != "" {
		query += " WHERE l.teacher_id = $1"
		args = append(args, teacherID)
	}
	query += " ORDER BY l.name ASC, l.id ASC"

	refs := []models.LessonRef{}
	if err := r.db.SelectContext(ctx, &refs, query, args...); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	return refs, nil
}

// ListByTeacher returns a teacher's lessons with their time slots.
func (r *LessonRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Lesson, error) {
	return r.listSlots(ctx, "l.teacher_id = $1", teacherID)
}

// ListByClass returns a class's lessons with their time slots.
func (r *LessonRepository) ListByClass(ctx context.Context, classID int64) ([]models.Lesson, error) {
	return r.listSlots(ctx, "l.class_id = $1", classID)
}

func (r *LessonRepository) listSlots(ctx context.Context, condition string, arg interface{}) ([]models.Lesson, error) {
	query := fmt.Sprintf("SELECT %s, l.start_time, l.end_time %s WHERE %s ORDER BY l.start_time ASC", lessonColumns, lessonJoins, condition)
	lessons := []models.Lesson{}
	if err := r.db.SelectContext(ctx, &lessons, query, arg); err != nil {
		return nil, fmt.Errorf("list lesson slots: %w", err)
	}
	return lessons, nil
}
