package api

import (
	"bytes"
	"context"
	"io"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"BudgetReqSaas/api"
	"BudgetReqSaas/api/auth"
	"BudgetReqSaas/api/constants"
	"BudgetReqSaas/internal/validation"
)

func PreValidationMiddleware(db *pgxpool.Pool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			body, err := io.ReadAll(r.Body)
			if err != nil {
				api.RespondWithError(w, http.StatusBadRequest, "Failed to read request body")
				return
			}
			r.Body.Close()
			r.Body = io.NopCloser(bytes.NewBuffer(body))

			userID, err := validation.ExtractUserID(r)
			if err != nil {
				api.RespondWithError(w, http.StatusBadRequest, constants.ErrUserIDRequired)
				return
			}

			r.Body = io.NopCloser(bytes.NewBuffer(body))

			session := validation.ValidateSession(userID)
			if session == nil {
				api.RespondWithError(w, http.StatusUnauthorized, constants.ErrInvalidSession)
				return
			}

			validationResult, err := validation.PreValidateRequest(ctx, db, userID)
			if err != nil {
				api.RespondWithError(w, http.StatusUnauthorized, "Validation failed: "+err.Error())
				return
			}

			var areaIDs []int64
			var areaNames []string

			// Admin override (by user id or role) preloads every active area;
			// everyone else gets their default area plus explicit grants.
			adminOverrideApplied := false
			if IsAdminOverrideEnabled() {
				roleMatched := IsAdminUser(userID)
				by := "user"
				matchedRoles := []string{}
				if !roleMatched {
					if session.Role != "" && IsRoleAdminName(session.Role) {
						roleMatched = true
						matchedRoles = append(matchedRoles, session.Role)
					} else if session.RoleCode != "" && IsRoleAdminName(session.RoleCode) {
						roleMatched = true
						matchedRoles = append(matchedRoles, session.RoleCode)
					} else {
						isRoleAdmin, dbMatched, roleErr := IsUserInAdminRole(ctx, db, userID)
						if roleErr != nil {
							ctx = context.WithValue(ctx, "admin_override_load_errors", []string{"role_lookup: " + roleErr.Error()})
						}
						if isRoleAdmin {
							roleMatched = true
							matchedRoles = append(matchedRoles, dbMatched...)
						}
					}
					by = "role"
				}
				if roleMatched {
					allIDs, allNames, entErr := LoadAllAreas(ctx, db)
					if entErr == nil && len(allIDs) > 0 {
						areaIDs = allIDs
						areaNames = allNames
					}
					ctx = context.WithValue(ctx, "is_admin_override", true)
					ctx = context.WithValue(ctx, "admin_override_by", by)
					if len(matchedRoles) > 0 {
						ctx = context.WithValue(ctx, "admin_override_role", matchedRoles)
					}
					log.Printf("[AUDIT] AdminOverride applied for user=%s by=%s matched=%v", userID, by, matchedRoles)
					adminOverrideApplied = true
				}
			}

			if !adminOverrideApplied {
				areaIDs, areaNames, err = validation.GetUserAreas(ctx, db, userID)
				if err != nil {
					api.RespondWithError(w, http.StatusInternalServerError, "Failed to resolve area access: "+err.Error())
					return
				}
				if len(areaIDs) == 0 {
					api.RespondWithError(w, http.StatusUnauthorized, constants.ErrNoAccessibleAreas)
					return
				}
			}

			ctx = context.WithValue(ctx, "user_id", userID)
			ctx = context.WithValue(ctx, "session", session)
			ctx = context.WithValue(ctx, "default_area_id", validationResult.DefaultAreaID)
			ctx = context.WithValue(ctx, "default_area_name", validationResult.DefaultAreaName)
			ctx = context.WithValue(ctx, api.AreaIDsKey, areaIDs)
			ctx = context.WithValue(ctx, api.AreaNamesKey, areaNames)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserIDFromContext(ctx context.Context) string {
	if userID, ok := ctx.Value("user_id").(string); ok {
		return userID
	}
	return ""
}

func GetSessionFromContext(ctx context.Context) *auth.UserSession {
	if session, ok := ctx.Value("session").(*auth.UserSession); ok {
		return session
	}
	return nil
}

func GetDefaultAreaFromContext(ctx context.Context) (id int64, name string) {
	if v, ok := ctx.Value("default_area_id").(int64); ok {
		id = v
	}
	if v, ok := ctx.Value("default_area_name").(string); ok {
		name = v
	}
	return id, name
}
