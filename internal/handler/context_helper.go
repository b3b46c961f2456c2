package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/school-dashboard-api/internal/middleware"
	"github.com/noah-isme/school-dashboard-api/internal/models"
	appErrors "github.com/noah-isme/school-dashboard-api/pkg/errors"
)

const dateParamLayout = "2006-01-02"

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.Claims(c)
	if !ok {
		return nil
	}
	return claims
}

func identityFromContext(c *gin.Context) (models.Identity, error) {
	claims := claimsFromContext(c)
	if claims == nil {
		return models.Identity{}, appErrors.ErrUnauthorized
	}
	return claims.Identity(), nil
}

// parseDateParam reads a YYYY-MM-DD value as midnight in loc.
func parseDateParam(raw string, loc *time.Location) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(dateParamLayout, raw, loc)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected YYYY-MM-DD")
	}
	return &parsed, nil
}

// parseDateRange reads from/to query values. The to date is inclusive.
func parseDateRange(c *gin.Context, loc *time.Location) (*time.Time, *time.Time, error) {
	from, err := parseDateParam(c.Query("from"), loc)
	if err != nil {
		return nil, nil, err
	}
	to, err := parseDateParam(c.Query("to"), loc)
	if err != nil {
		return nil, nil, err
	}
	if to != nil {
		end := to.AddDate(0, 0, 1).Add(-time.Nanosecond)
		to = &end
	}
	return from, to, nil
}

// parseInstantParam accepts RFC3339 instants, falling back to a plain date.
func parseInstantParam(raw string, loc *time.Location) (time.Time, error) {
	if raw == "" {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "date is required")
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		return parsed, nil
	}
	parsed, err := parseDateParam(raw, loc)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "invalid date, expected RFC3339 or YYYY-MM-DD")
	}
	return *parsed, nil
}

func parseIDParam(c *gin.Context, key string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(key), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, key+" must be a positive integer")
	}
	return id, nil
}

func parseOptionalID(c *gin.Context, key string) (*int64, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, key+" must be a positive integer")
	}
	return &id, nil
}
