package justification

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"BudgetReqSaas/api"
	"BudgetReqSaas/api/budget/faults"
	"BudgetReqSaas/api/constants"
)

// UpsertJustifications writes the rationale for a set of partidas against one
// (area, ceiling). Partial failures are reported but do not fail the call.
func UpsertJustifications(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req struct {
			UserID     string  `json:"user_id"`
			PartidaIDs []int64 `json:"partida_ids"`
			AreaID     int64   `json:"area_id"`
			CeilingID  int64   `json:"ceiling_id"`
			Text       string  `json:"justification"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithResult(w, false, constants.ErrInvalidJSONPrefix+err.Error())
			return
		}
		if len(req.PartidaIDs) == 0 {
			api.RespondWithResult(w, false, "partida_ids required")
			return
		}

		res, err := NewUpserter(NewStore(pgxPool)).UpsertAll(ctx, req.PartidaIDs, req.AreaID, req.CeilingID, req.Text, req.UserID)
		if err != nil {
			if faults.IsConfiguration(err) || faults.IsValidation(err) {
				api.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			api.RespondWithResult(w, false, err.Error())
			return
		}

		payload := map[string]interface{}{
			"created": res.Created,
			"updated": res.Updated,
		}
		if res.Partial != nil {
			payload["failed"] = res.Partial.Failed
		}
		api.RespondWithPayload(w, true, "", payload)
	}
}

// GetJustification reads the stored text for one (partida, area[, ceiling]).
func GetJustification(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req struct {
			UserID    string `json:"user_id"`
			PartidaID int64  `json:"partida_id"`
			AreaID    int64  `json:"area_id"`
			CeilingID int64  `json:"ceiling_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithResult(w, false, constants.ErrInvalidJSONPrefix+err.Error())
			return
		}
		if req.PartidaID <= 0 || req.AreaID <= 0 {
			api.RespondWithResult(w, false, "partida_id and area_id required")
			return
		}

		var text, updatedBy string
		var err error
		if req.CeilingID > 0 {
			err = pgxPool.QueryRow(ctx,
				`SELECT justification_text, updated_by FROM justification
				 WHERE partida_id = $1 AND area_id = $2 AND ceiling_id = $3`,
				req.PartidaID, req.AreaID, req.CeilingID).Scan(&text, &updatedBy)
		} else {
			err = pgxPool.QueryRow(ctx,
				`SELECT justification_text, updated_by FROM justification
				 WHERE partida_id = $1 AND area_id = $2
				 ORDER BY updated_at DESC LIMIT 1`,
				req.PartidaID, req.AreaID).Scan(&text, &updatedBy)
		}
		if errors.Is(err, pgx.ErrNoRows) {
			api.RespondWithPayload(w, true, "", map[string]interface{}{"found": false})
			return
		}
		if err != nil {
			api.RespondWithResult(w, false, constants.ErrQueryFailed+err.Error())
			return
		}

		api.RespondWithPayload(w, true, "", map[string]interface{}{
			"found":         true,
			"justification": text,
			"updated_by":    updatedBy,
		})
	}
}
