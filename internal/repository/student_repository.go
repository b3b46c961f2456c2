package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

// StudentRepository reads students for attendance scoping and forms.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// ChildIDs returns the ids of every student linked to the parent.
func (r *StudentRepository) ChildIDs(ctx context.Context, parentID string) ([]string, error) {
	const query = `SELECT id FROM students WHERE parent_id = $1 ORDER BY id ASC`
	ids := []string{}
	if err := r.db.SelectContext(ctx, &ids, query, parentID); err != nil {
		return nil, fmt.Errorf("list parent children: %w", err)
	}
	return ids, nil
}

// ListByClass returns the class roster ordered by name then surname.
func (r *StudentRepository) ListByClass(ctx context.Context, classID int64) ([]models.Student, error) {
	const query = `SELECT id, name, surname, parent_id, class_id FROM students WHERE class_id = $1 ORDER BY name ASC, surname ASC`
	students := []models.Student{}
	if err := r.db.SelectContext(ctx, &students, query, classID); err != nil {
		return nil, fmt.Errorf("list class students: %w", err)
	}
	return students, nil
}
