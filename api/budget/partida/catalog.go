package partida

import (
	"encoding/json"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"BudgetReqSaas/api"
	"BudgetReqSaas/api/constants"
	"BudgetReqSaas/api/utils"
	"BudgetReqSaas/internal/logger"
)

// GetCatalog returns the partida catalog, restricted to the chapter window of
// the given ceiling when one is supplied. Without a resolvable chapter key
// the full catalog is returned and the degradation is audit-logged.
func GetCatalog(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req struct {
			UserID     string `json:"user_id"`
			CeilingID  int64  `json:"ceiling_id"`
			ChapterKey int64  `json:"chapter_key"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithResult(w, false, constants.ErrInvalidJSONPrefix+err.Error())
			return
		}

		pagination, err := utils.ExtractPagination(r)
		if err != nil {
			api.RespondWithResult(w, false, err.Error())
			return
		}

		chapterKey := req.ChapterKey
		if chapterKey <= 0 && req.CeilingID > 0 {
			if err := pgxPool.QueryRow(ctx,
				`SELECT chapter_key FROM budget_ceiling WHERE ceiling_id = $1`,
				req.CeilingID).Scan(&chapterKey); err != nil {
				api.RespondWithResult(w, false, constants.ErrCeilingNotFound)
				return
			}
		}

		rows, err := pgxPool.Query(ctx,
			`SELECT partida_id, classification_key, name FROM partida_master ORDER BY classification_key`)
		if err != nil {
			api.RespondWithResult(w, false, constants.ErrQueryFailed+err.Error())
			return
		}
		defer rows.Close()

		catalog := make([]Item, 0)
		for rows.Next() {
			var it Item
			if err := rows.Scan(&it.ID, &it.Key, &it.Name); err != nil {
				continue
			}
			catalog = append(catalog, it)
		}

		if chapterKey <= 0 {
			if logger.GlobalLogger != nil {
				logger.GlobalLogger.LogAudit("[Partida] no chapter filter applied, returning full catalog")
			}
		}
		filtered := FilterByChapter(catalog, chapterKey)

		pagination.SetPaginationStats(len(filtered))
		start := pagination.Offset
		if start > len(filtered) {
			start = len(filtered)
		}
		end := start + pagination.Limit
		if end > len(filtered) {
			end = len(filtered)
		}

		api.RespondWithPayload(w, true, "", map[string]interface{}{
			"partidas":    filtered[start:end],
			"chapter_key": chapterKey,
			"pagination":  pagination,
		})
	}
}

// GetProductsByPartida returns the consumable products of one partida.
func GetProductsByPartida(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req struct {
			UserID    string `json:"user_id"`
			PartidaID int64  `json:"partida_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithResult(w, false, constants.ErrInvalidJSONPrefix+err.Error())
			return
		}
		if req.PartidaID <= 0 {
			api.RespondWithResult(w, false, "partida_id required")
			return
		}

		rows, err := pgxPool.Query(ctx,
			`SELECT product_id, partida_id, name, unit_price::float8
			 FROM consumable_product WHERE partida_id = $1 ORDER BY name`,
			req.PartidaID)
		if err != nil {
			api.RespondWithResult(w, false, constants.ErrQueryFailed+err.Error())
			return
		}
		defer rows.Close()

		products := make([]map[string]interface{}, 0)
		for rows.Next() {
			var id, partidaID int64
			var name string
			var unitPrice float64
			if err := rows.Scan(&id, &partidaID, &name, &unitPrice); err != nil {
				continue
			}
			products = append(products, map[string]interface{}{
				"product_id": id,
				"partida_id": partidaID,
				"name":       name,
				"unit_price": unitPrice,
			})
		}

		api.RespondWithPayload(w, true, "", products)
	}
}
