package budgetMaster

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"BudgetReqSaas/api"
	"BudgetReqSaas/api/constants"
	middlewares "BudgetReqSaas/api/middlewares"
)

type CeilingMasterRequest struct {
	CeilingName    string  `json:"ceiling_name"`
	ChapterKey     int64   `json:"chapter_key"`
	AreaID         *int64  `json:"area_id"`
	FundingSource  string  `json:"funding_source"`
	AssignedAmount float64 `json:"assigned_amount"`
	Status         string  `json:"status"`
}

type CeilingMasterUpdateRequest struct {
	CeilingID      int64    `json:"ceiling_id"`
	AssignedAmount *float64 `json:"assigned_amount"`
	AreaID         *int64   `json:"area_id"`
	Status         string   `json:"status"`
	Reason         string   `json:"reason"`
}

// chapter keys are 5-digit coded values; 0 means "no chapter filter"
func validChapterKey(key int64) bool {
	return key == 0 || (key >= 10000 && key <= 99999)
}

func CreateCeilingMaster(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID   string                 `json:"user_id"`
			Ceilings []CeilingMasterRequest `json:"ceilings"`
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
		for _, c := range req.Ceilings {
			if strings.TrimSpace(c.CeilingName) == "" {
				results = append(results, map[string]interface{}{
					constants.ValueSuccess: false,
					constants.ValueError:   constants.FormatMissingFieldError("ceiling_name"),
					"ceiling_name":         c.CeilingName,
				})
				continue
			}
			if !validChapterKey(c.ChapterKey) {
				results = append(results, map[string]interface{}{
					constants.ValueSuccess: false,
					constants.ValueError:   constants.FormatFieldError("chapter_key", "must be a 5-digit chapter code"),
					"ceiling_name":         c.CeilingName,
				})
				continue
			}
			assigned := decimal.NewFromFloat(c.AssignedAmount)
			if assigned.IsNegative() {
				results = append(results, map[string]interface{}{
					constants.ValueSuccess: false,
					constants.ValueError:   constants.FormatFieldError("assigned_amount", "must not be negative"),
					"ceiling_name":         c.CeilingName,
				})
				continue
			}
			if c.AreaID != nil && *c.AreaID <= 0 {
				results = append(results, map[string]interface{}{
					constants.ValueSuccess: false,
					constants.ValueError:   constants.ErrAreaRequired,
					"ceiling_name":         c.CeilingName,
				})
				continue
			}
			if c.Status == "" {
				c.Status = "Active"
			}

			ctx := r.Context()
			var ceilingID int64
			query := `INSERT INTO budget_ceiling (ceiling_name, chapter_key, area_id, funding_source, assigned_amount, status, created_by, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, now()) RETURNING ceiling_id`
			err := pgxPool.QueryRow(ctx, query,
				strings.TrimSpace(c.CeilingName),
				c.ChapterKey,
				c.AreaID,
				strings.TrimSpace(c.FundingSource),
				assigned.String(),
				c.Status,
				createdBy,
			).Scan(&ceilingID)
			if err != nil {
				errMsg := "failed to create budget ceiling"
				if strings.Contains(err.Error(), "foreign key") {
					errMsg = "financial area does not exist"
				}
				results = append(results, map[string]interface{}{
					constants.ValueSuccess: false,
					constants.ValueError:   errMsg,
					"ceiling_name":         c.CeilingName,
				})
				continue
			}
			results = append(results, map[string]interface{}{
				constants.ValueSuccess: true,
				"ceiling_id":           ceilingID,
				"ceiling_name":         c.CeilingName,
			})
		}
		w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			constants.ValueSuccess: api.IsBulkSuccess(results),
			"results":              results,
		})
	}
}

func GetAllCeilingMaster(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		rows, err := pgxPool.Query(ctx,
			`SELECT ceiling_id, ceiling_name, chapter_key, area_id, funding_source, assigned_amount::float8, status, created_by, created_at
			 FROM budget_ceiling
			 ORDER BY ceiling_id`)
		if err != nil {
			api.RespondWithResult(w, false, constants.ErrQueryFailed+err.Error())
			return
		}
		defer rows.Close()

		results := make([]map[string]interface{}, 0)
		for rows.Next() {
			var id, chapterKey int64
			var areaID *int64
			var assigned float64
			var name, fundingSource, status, createdBy string
			var createdAt time.Time
			if err := rows.Scan(&id, &name, &chapterKey, &areaID, &fundingSource, &assigned, &status, &createdBy, &createdAt); err != nil {
				continue
			}
			results = append(results, map[string]interface{}{
				"ceiling_id":      id,
				"ceiling_name":    name,
				"chapter_key":     chapterKey,
				"area_id":         areaID,
				"funding_source":  fundingSource,
				"assigned_amount": assigned,
				"status":          status,
				"created_by":      createdBy,
				"created_at":      createdAt.Format(constants.DateTimeFormat),
			})
		}
		api.RespondWithPayload(w, true, "", results)
	}
}

// UpdateCeilingMaster adjusts assigned amount, owning area or status. The
// assigned amount of a ceiling only moves here, never from the requisition
// flow.
func UpdateCeilingMaster(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID   string                       `json:"user_id"`
			Ceilings []CeilingMasterUpdateRequest `json:"ceilings"`
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
		for _, c := range req.Ceilings {
			if c.CeilingID <= 0 {
				results = append(results, map[string]interface{}{
					constants.ValueSuccess: false,
					constants.ValueError:   constants.ErrCeilingRequired,
					"ceiling_id":           c.CeilingID,
				})
				continue
			}
			var assignedArg interface{}
			if c.AssignedAmount != nil {
				assigned := decimal.NewFromFloat(*c.AssignedAmount)
				if assigned.IsNegative() {
					results = append(results, map[string]interface{}{
						constants.ValueSuccess: false,
						constants.ValueError:   constants.FormatFieldError("assigned_amount", "must not be negative"),
						"ceiling_id":           c.CeilingID,
					})
					continue
				}
				assignedArg = assigned.String()
			}
			ctx := r.Context()
			tag, err := pgxPool.Exec(ctx,
				`UPDATE budget_ceiling
				 SET assigned_amount = COALESCE($2::numeric, assigned_amount),
				     area_id = COALESCE($3, area_id),
				     status = COALESCE(NULLIF($4, ''), status)
				 WHERE ceiling_id = $1`,
				c.CeilingID, assignedArg, c.AreaID, c.Status)
			if err != nil {
				results = append(results, map[string]interface{}{
					constants.ValueSuccess: false,
					constants.ValueError:   "failed to update budget ceiling",
					"ceiling_id":           c.CeilingID,
				})
				continue
			}
			if tag.RowsAffected() == 0 {
				results = append(results, map[string]interface{}{
					constants.ValueSuccess: false,
					constants.ValueError:   constants.ErrCeilingNotFound,
					"ceiling_id":           c.CeilingID,
				})
				continue
			}
			results = append(results, map[string]interface{}{
				constants.ValueSuccess: true,
				"ceiling_id":           c.CeilingID,
			})
		}
		w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			constants.ValueSuccess: api.IsBulkSuccess(results),
			"results":              results,
		})
	}
}
