package budgetMaster

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"BudgetReqSaas/api"
	"BudgetReqSaas/api/constants"
	middlewares "BudgetReqSaas/api/middlewares"
)

type AreaMasterRequest struct {
	AreaCode string `json:"area_code"`
	AreaName string `json:"area_name"`
	Status   string `json:"status"`
}

type AreaMasterUpdateRequest struct {
	AreaID   int64  `json:"area_id"`
	AreaName string `json:"area_name"`
	Status   string `json:"status"`
	Reason   string `json:"reason"`
}

func CreateAreaMaster(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string              `json:"user_id"`
			Areas  []AreaMasterRequest `json:"areas"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}

		session := middlewares.GetSessionFromContext(r.Context())
		if session == nil {
			api.RespondWithError(w, http.StatusUnauthorized, constants.ErrInvalidSession)
			return
		}
		createdBy := session.Name

		var results []map[string]interface{}
		for _, area := range req.Areas {
			if strings.TrimSpace(area.AreaCode) == "" {
				results = append(results, map[string]interface{}{
					constants.ValueSuccess: false,
					constants.ValueError:   constants.FormatMissingFieldError("area_code"),
					"area_code":            area.AreaCode,
				})
				continue
			}
			if strings.TrimSpace(area.AreaName) == "" {
				results = append(results, map[string]interface{}{
					constants.ValueSuccess: false,
					constants.ValueError:   constants.FormatMissingFieldError("area_name"),
					"area_code":            area.AreaCode,
				})
				continue
			}
			if area.Status == "" {
				area.Status = "Active"
			}

			ctx := r.Context()
			var areaID int64
			query := `INSERT INTO financial_area (area_code, area_name, status, created_by, created_at)
				VALUES ($1, $2, $3, $4, now()) RETURNING area_id`
			err := pgxPool.QueryRow(ctx, query,
				strings.ToUpper(strings.TrimSpace(area.AreaCode)),
				strings.TrimSpace(area.AreaName),
				area.Status,
				createdBy,
			).Scan(&areaID)
			if err != nil {
				errMsg := "failed to create financial area"
				if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
					errMsg = constants.FormatFieldError("area_code", "already exists")
				}
				results = append(results, map[string]interface{}{
					constants.ValueSuccess: false,
					constants.ValueError:   errMsg,
					"area_code":            area.AreaCode,
				})
				continue
			}
			results = append(results, map[string]interface{}{
				constants.ValueSuccess: true,
				"area_id":              areaID,
				"area_code":            area.AreaCode,
			})
		}
		w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
		finalSuccess := api.IsBulkSuccess(results)
		json.NewEncoder(w).Encode(map[string]interface{}{
			constants.ValueSuccess: finalSuccess,
			"results":              results,
		})
	}
}

// GetAllAreaMaster fetches every financial area, newest first.
func GetAllAreaMaster(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		rows, err := pgxPool.Query(ctx,
			`SELECT area_id, area_code, area_name, status, created_by, created_at
			 FROM financial_area
			 ORDER BY created_at DESC, area_id DESC`)
		if err != nil {
			api.RespondWithResult(w, false, constants.ErrQueryFailed+err.Error())
			return
		}
		defer rows.Close()

		results := make([]map[string]interface{}, 0)
		for rows.Next() {
			var id int64
			var code, name, status, createdBy string
			var createdAt time.Time
			if err := rows.Scan(&id, &code, &name, &status, &createdBy, &createdAt); err != nil {
				continue
			}
			results = append(results, map[string]interface{}{
				"area_id":    id,
				"area_code":  code,
				"area_name":  name,
				"status":     status,
				"created_by": createdBy,
				"created_at": createdAt.Format(constants.DateTimeFormat),
			})
		}
		api.RespondWithPayload(w, true, "", results)
	}
}

func UpdateAreaMaster(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID string                    `json:"user_id"`
			Areas  []AreaMasterUpdateRequest `json:"areas"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithError(w, http.StatusBadRequest, constants.ErrInvalidJSON)
			return
		}

		session := middlewares.GetSessionFromContext(r.Context())
		if session == nil {
			api.RespondWithError(w, http.StatusUnauthorized, constants.ErrInvalidSession)
			return
		}

		var results []map[string]interface{}
		for _, area := range req.Areas {
			if area.AreaID <= 0 {
				results = append(results, map[string]interface{}{
					constants.ValueSuccess: false,
					constants.ValueError:   constants.ErrAreaRequired,
					"area_id":              area.AreaID,
				})
				continue
			}
			ctx := r.Context()
			tag, err := pgxPool.Exec(ctx,
				`UPDATE financial_area
				 SET area_name = COALESCE(NULLIF($2, ''), area_name),
				     status = COALESCE(NULLIF($3, ''), status)
				 WHERE area_id = $1`,
				area.AreaID, strings.TrimSpace(area.AreaName), area.Status)
			if err != nil {
				results = append(results, map[string]interface{}{
					constants.ValueSuccess: false,
					constants.ValueError:   "failed to update financial area",
					"area_id":              area.AreaID,
				})
				continue
			}
			if tag.RowsAffected() == 0 {
				results = append(results, map[string]interface{}{
					constants.ValueSuccess: false,
					constants.ValueError:   "financial area not found",
					"area_id":              area.AreaID,
				})
				continue
			}
			results = append(results, map[string]interface{}{
				constants.ValueSuccess: true,
				"area_id":              area.AreaID,
			})
		}
		w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			constants.ValueSuccess: api.IsBulkSuccess(results),
			"results":              results,
		})
	}
}
