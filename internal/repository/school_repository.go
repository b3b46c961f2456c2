package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

// SchoolRepository reads school level settings.
type SchoolRepository struct {
	db *sqlx.DB
}

// NewSchoolRepository constructs a SchoolRepository.
func NewSchoolRepository(db *sqlx.DB) *SchoolRepository {
	return &SchoolRepository{db: db}
}

// Hours returns the opening hours of the first school row, or nil when none is configured.
func (r *SchoolRepository) Hours(ctx context.Context) (*models.SchoolHours, error) {
	const query = `SELECT COALESCE(opening_time, '') AS opening_time, COALESCE(closing_time, '') AS closing_time
        FROM schools ORDER BY id ASC LIMIT 1`
	var hours models.SchoolHours
	if err := r.db.GetContext(ctx, &hours, query); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("load school hours: %w", err)
	}
	return &hours, nil
}
