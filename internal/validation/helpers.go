package validation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"BudgetReqSaas/api/auth"
)

// ExtractUserID parses the request body ONCE and extracts user_id
// This replaces repeated body parsing in every middleware
func ExtractUserID(r *http.Request) (string, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read body: %w", err)
	}
	defer r.Body.Close()

	// Try JSON first (we already have bytes)
	var reqMap map[string]interface{}
	if err := json.Unmarshal(body, &reqMap); err == nil {
		if userID, ok := reqMap["user_id"].(string); ok && userID != "" {
			// restore body for caller
			r.Body = io.NopCloser(bytes.NewBuffer(body))
			return userID, nil
		}
	}

	// Restore body so form parsing can read it
	r.Body = io.NopCloser(bytes.NewBuffer(body))
	if err := r.ParseForm(); err == nil {
		if userID := r.FormValue("user_id"); userID != "" {
			r.Body = io.NopCloser(bytes.NewBuffer(body))
			return userID, nil
		}
	}

	// Ensure body is available for caller
	r.Body = io.NopCloser(bytes.NewBuffer(body))
	return "", fmt.Errorf("user_id not found in request")
}

// ValidateSession checks if the user has an active session (in-memory check, no DB)
// Returns the session object or nil if not found
func ValidateSession(userID string) *auth.UserSession {
	sessions := auth.GetActiveSessions()
	for _, s := range sessions {
		if s.UserID == userID {
			return s
		}
	}
	return nil
}

// GetUserAreas retrieves the financial areas a user may requisition against:
// the user's default area plus every explicit grant in user_area_access.
func GetUserAreas(ctx context.Context, db *pgxpool.Pool, userID string) ([]int64, []string, error) {
	query := `
		SELECT fa.area_id, fa.area_name
		FROM financial_area fa
		WHERE LOWER(fa.status) = 'active'
		  AND (fa.area_id = (SELECT default_area_id FROM users WHERE id = $1)
		       OR fa.area_id IN (SELECT area_id FROM user_area_access WHERE user_id = $1))
		ORDER BY fa.area_name
	`

	rows, err := db.Query(ctx, query, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch areas: %w", err)
	}
	defer rows.Close()

	areaIDs := []int64{}
	areaNames := []string{}
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err == nil {
			areaIDs = append(areaIDs, id)
			areaNames = append(areaNames, name)
		}
	}

	return areaIDs, areaNames, nil
}

// NormalizeString trims whitespace and converts to lowercase for comparisons
func NormalizeString(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidateAreaID checks if an area id is in the user's allowed list
func ValidateAreaID(areaID int64, allowed []int64) bool {
	for _, a := range allowed {
		if a == areaID {
			return true
		}
	}
	return false
}
