package area

import (
	"encoding/json"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"BudgetReqSaas/api"
	"BudgetReqSaas/api/budget/faults"
	"BudgetReqSaas/api/constants"
)

// ResolveArea resolves the owning financial area for a ceiling through the
// default source chain.
func ResolveArea(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req struct {
			UserID         string `json:"user_id"`
			CeilingID      int64  `json:"ceiling_id"`
			FallbackAreaID int64  `json:"fallback_area_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithResult(w, false, constants.ErrInvalidJSONPrefix+err.Error())
			return
		}

		areaID, err := DefaultChain(pgxPool, req.FallbackAreaID).Resolve(ctx, req.CeilingID)
		if err != nil {
			if faults.IsConfiguration(err) {
				api.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
				return
			}
			api.RespondWithResult(w, false, err.Error())
			return
		}

		api.RespondWithPayload(w, true, "", map[string]interface{}{
			"ceiling_id": req.CeilingID,
			"area_id":    areaID,
		})
	}
}
