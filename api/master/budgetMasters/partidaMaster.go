package budgetMaster

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"BudgetReqSaas/api"
	"BudgetReqSaas/api/constants"
	middlewares "BudgetReqSaas/api/middlewares"
	"BudgetReqSaas/api/utils"
)

type PartidaMasterRequest struct {
	ClassificationKey int64  `json:"classification_key"`
	PartidaName       string `json:"partida_name"`
	Status            string `json:"status"`
}

func CreatePartidaMaster(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID   string                 `json:"user_id"`
			Partidas []PartidaMasterRequest `json:"partidas"`
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
		for _, p := range req.Partidas {
			if p.ClassificationKey < 10000 || p.ClassificationKey > 99999 {
				results = append(results, map[string]interface{}{
					constants.ValueSuccess: false,
					constants.ValueError:   constants.FormatFieldError("classification_key", "must be a 5-digit partida code"),
					"classification_key":   p.ClassificationKey,
				})
				continue
			}
			if strings.TrimSpace(p.PartidaName) == "" {
				results = append(results, map[string]interface{}{
					constants.ValueSuccess: false,
					constants.ValueError:   constants.FormatMissingFieldError("partida_name"),
					"classification_key":   p.ClassificationKey,
				})
				continue
			}
			if p.Status == "" {
				p.Status = "Active"
			}

			ctx := r.Context()
			var partidaID int64
			query := `INSERT INTO partida_master (classification_key, name, status, created_by, created_at)
				VALUES ($1, $2, $3, $4, now()) RETURNING partida_id`
			err := pgxPool.QueryRow(ctx, query,
				p.ClassificationKey,
				strings.TrimSpace(p.PartidaName),
				p.Status,
				createdBy,
			).Scan(&partidaID)
			if err != nil {
				errMsg := "failed to create partida"
				if strings.Contains(err.Error(), "duplicate") || strings.Contains(err.Error(), "unique") {
					errMsg = constants.FormatFieldError("classification_key", "already exists")
				}
				results = append(results, map[string]interface{}{
					constants.ValueSuccess: false,
					constants.ValueError:   errMsg,
					"classification_key":   p.ClassificationKey,
				})
				continue
			}
			results = append(results, map[string]interface{}{
				constants.ValueSuccess: true,
				"partida_id":           partidaID,
				"classification_key":   p.ClassificationKey,
			})
		}
		w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			constants.ValueSuccess: api.IsBulkSuccess(results),
			"results":              results,
		})
	}
}

// GetAllPartidaMaster lists the partida catalog, paginated, ordered by
// classification key.
func GetAllPartidaMaster(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		page, err := utils.ExtractPagination(r)
		if err != nil {
			api.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}

		rows, err := pgxPool.Query(ctx,
			`SELECT partida_id, classification_key, name, status
			 FROM partida_master
			 ORDER BY classification_key
			 LIMIT $1 OFFSET $2`,
			page.Limit, page.Offset)
		if err != nil {
			api.RespondWithResult(w, false, constants.ErrQueryFailed+err.Error())
			return
		}
		defer rows.Close()

		results := make([]map[string]interface{}, 0)
		for rows.Next() {
			var id, key int64
			var name, status string
			if err := rows.Scan(&id, &key, &name, &status); err != nil {
				continue
			}
			results = append(results, map[string]interface{}{
				"partida_id":         id,
				"classification_key": key,
				"partida_name":       name,
				"status":             status,
			})
		}
		api.RespondWithPayload(w, true, "", results)
	}
}
