package validation

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ValidationResult contains all pre-validated data for a request
type ValidationResult struct {
	UserID          string
	EmployeeName    string
	DefaultAreaID   int64
	DefaultAreaName string
}

// PreValidateRequest performs a single optimized query to validate user and get core metadata
// This replaces multiple middleware queries with ONE database call
func PreValidateRequest(ctx context.Context, db *pgxpool.Pool, userID string) (*ValidationResult, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id is required")
	}

	// Single query combining user lookup and default-area discovery
	query := `
		WITH user_info AS (
			SELECT
				id as user_id,
				employee_name,
				default_area_id
			FROM users
			WHERE id = $1
			LIMIT 1
		),
		default_area AS (
			SELECT
				area_id,
				area_name
			FROM financial_area
			WHERE area_id = (SELECT default_area_id FROM user_info)
			  AND LOWER(status) = 'active'
			LIMIT 1
		)
		SELECT
			u.user_id,
			u.employee_name,
			COALESCE(a.area_id, 0),
			COALESCE(a.area_name, '')
		FROM user_info u
		LEFT JOIN default_area a ON true
	`

	var result ValidationResult
	err := db.QueryRow(ctx, query, userID).Scan(
		&result.UserID,
		&result.EmployeeName,
		&result.DefaultAreaID,
		&result.DefaultAreaName,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to validate user: %w", err)
	}

	if result.UserID == "" {
		return nil, fmt.Errorf("user not found: %s", userID)
	}

	return &result, nil
}
