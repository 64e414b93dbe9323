package api

import (
	"context"
	"log"
	"strings"

	"BudgetReqSaas/api/auth"
)

type contextKey string

const (
	AreaIDsKey   contextKey = "areaIDs"
	AreaNamesKey contextKey = "areaNames"
)

func RequestedByFromCtx(ctx context.Context, userID string) string {
	if v := ctx.Value("session"); v != nil {
		if s, ok := v.(*auth.UserSession); ok && s != nil {
			if strings.TrimSpace(s.Name) != "" {
				return s.Name
			}
			if strings.TrimSpace(s.UserID) != "" {
				return s.UserID
			}
		}
	}
	for _, s := range auth.GetActiveSessions() {
		if s.UserID == userID {
			return s.Name
		}
	}
	return ""
}

func CtxAreaIDs(ctx context.Context) []int64 {
	v := ctx.Value(AreaIDsKey)
	if v == nil {
		return nil
	}
	areaIDs, ok := v.([]int64)
	if !ok {
		return nil
	}
	return areaIDs
}

func CtxAreaNames(ctx context.Context) []string {
	v := ctx.Value(AreaNamesKey)
	if v == nil {
		return nil
	}
	names, ok := v.([]string)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(names))
	for _, n := range names {
		if strings.TrimSpace(n) != "" {
			out = append(out, strings.TrimSpace(n))
		}
	}
	return out
}

// CtxHasAreaAccess reports whether the request is allowed to act on the given
// area. An empty list means the middleware did not run, which is treated as
// allowed so internal callers are not blocked.
func CtxHasAreaAccess(ctx context.Context, areaID int64) bool {
	areaIDs := CtxAreaIDs(ctx)
	if len(areaIDs) == 0 {
		return true
	}
	for _, a := range areaIDs {
		if a == areaID {
			return true
		}
	}
	return false
}

// DebugPrevalidationContext logs common prevalidation context fields for debugging.
func DebugPrevalidationContext(ctx context.Context) {
	if ctx == nil {
		log.Printf("[DEBUG context_helpers] context is nil")
		return
	}
	user := ""
	if v := ctx.Value("user_id"); v != nil {
		if s, ok := v.(string); ok {
			user = s
		}
	}
	areaIDs := CtxAreaIDs(ctx)
	areaNames := CtxAreaNames(ctx)
	admin := ctx.Value("is_admin_override")
	adminBy := ctx.Value("admin_override_by")
	sessionPresent := ctx.Value("session") != nil

	log.Printf("[DEBUG context_helpers] user=%s areas=%v area_names=%v is_admin_override=%v admin_override_by=%v session_present=%v",
		user, areaIDs, areaNames, admin, adminBy, sessionPresent)
}
