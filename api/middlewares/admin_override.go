package api

import (
	"context"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

var (
	adminUserIDs   []string
	adminOnce      sync.Once
	adminRoleNames []string
	adminRoleOnce  sync.Once
)

func init() {
	// Try to load .env if present (optional)
	_ = godotenv.Load()
}

// loadAdminList populates adminUserIDs from env variable ADMIN_USER_IDS
// Format: comma separated user IDs, e.g. "user1,user2,user3"
func loadAdminList() {
	adminOnce.Do(func() {
		raw := os.Getenv("ADMIN_USER_IDS")
		if raw == "" {
			adminUserIDs = []string{}
			return
		}
		parts := strings.Split(raw, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			t := strings.TrimSpace(p)
			if t != "" {
				out = append(out, t)
			}
		}
		adminUserIDs = out
	})
}

// loadAdminRoles populates adminRoleNames from env variable ADMIN_ROLES
// Format: comma separated role names or role codes, e.g. "superadmin,budget_admin"
func loadAdminRoles() {
	adminRoleOnce.Do(func() {
		raw := os.Getenv("ADMIN_ROLES")
		if raw == "" {
			adminRoleNames = []string{}
			return
		}
		parts := strings.Split(raw, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			t := strings.ToLower(strings.TrimSpace(p))
			if t != "" {
				out = append(out, t)
			}
		}
		adminRoleNames = out
	})
}

// IsRoleAdminName checks whether a role name or code matches the admin roles list
func IsRoleAdminName(roleNameOrCode string) bool {
	if roleNameOrCode == "" {
		return false
	}
	loadAdminRoles()
	rn := strings.ToLower(strings.TrimSpace(roleNameOrCode))
	for _, v := range adminRoleNames {
		if v == rn {
			return true
		}
	}
	return false
}

// GetUserRoles returns role names and role codes for a given user id by querying the DB
func GetUserRoles(ctx context.Context, db *pgxpool.Pool, userID string) ([]string, []string, error) {
	names := []string{}
	codes := []string{}
	if userID == "" {
		return names, codes, nil
	}
	query := `SELECT r.name, COALESCE(r.rolecode, '') FROM roles r JOIN user_roles ur ON ur.role_id = r.id WHERE ur.user_id = $1`
	rows, err := db.Query(ctx, query, userID)
	if err != nil {
		return names, codes, err
	}
	defer rows.Close()
	for rows.Next() {
		var name, code string
		if err := rows.Scan(&name, &code); err == nil {
			names = append(names, name)
			codes = append(codes, code)
		}
	}
	return names, codes, nil
}

// IsUserInAdminRole checks whether the user has any role that matches ADMIN_ROLES.
// Returns matched role names/codes and any DB error encountered.
func IsUserInAdminRole(ctx context.Context, db *pgxpool.Pool, userID string) (bool, []string, error) {
	loadAdminRoles()
	if len(adminRoleNames) == 0 {
		return false, nil, nil
	}
	names, codes, err := GetUserRoles(ctx, db, userID)
	if err != nil {
		return false, nil, err
	}
	matched := []string{}
	for _, n := range names {
		if IsRoleAdminName(n) {
			matched = append(matched, n)
		}
	}
	for _, c := range codes {
		if IsRoleAdminName(c) {
			already := false
			for _, m := range matched {
				if strings.EqualFold(m, c) {
					already = true
					break
				}
			}
			if !already {
				matched = append(matched, c)
			}
		}
	}
	if len(matched) > 0 {
		log.Printf("[AUDIT] IsUserInAdminRole: user=%s matched_roles=%v", userID, matched)
	}
	return len(matched) > 0, matched, nil
}

// IsAdminOverrideEnabled checks whether admin override is globally enabled
// Controlled by env var ENABLE_ADMIN_OVERRIDE=true
func IsAdminOverrideEnabled() bool {
	return strings.ToLower(strings.TrimSpace(os.Getenv("ENABLE_ADMIN_OVERRIDE"))) == "true"
}

// IsAdminUser returns true if the given userID is present in ADMIN_USER_IDS
func IsAdminUser(userID string) bool {
	if userID == "" {
		return false
	}
	loadAdminList()
	for _, id := range adminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// LoadAllAreas returns every active financial area, used when an admin
// override grants access regardless of user_area_access rows.
func LoadAllAreas(ctx context.Context, db *pgxpool.Pool) ([]int64, []string, error) {
	rows, err := db.Query(ctx,
		`SELECT area_id, area_name FROM financial_area WHERE LOWER(status) = 'active' ORDER BY area_name`)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	ids := []int64{}
	names := []string{}
	for rows.Next() {
		var id int64
		var name string
		if err := rows.Scan(&id, &name); err == nil {
			ids = append(ids, id)
			names = append(names, name)
		}
	}
	return ids, names, nil
}
