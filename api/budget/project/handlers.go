package project

import (
	"encoding/json"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"BudgetReqSaas/api"
	"BudgetReqSaas/api/budget/faults"
	"BudgetReqSaas/api/constants"
	"BudgetReqSaas/internal/config"
)

func projectPayload(p AnnualProject, created bool) map[string]interface{} {
	var areaID int64
	if p.AreaID != nil {
		areaID = *p.AreaID
	}
	return map[string]interface{}{
		"project_id":       p.ID,
		"year":             p.Year,
		"ceiling_id":       p.CeilingID,
		"area_id":          areaID,
		"assigned_amount":  p.Assigned.InexactFloat64(),
		"used_amount":      p.Used.InexactFloat64(),
		"available_amount": p.Available().InexactFloat64(),
		"description":      p.Description,
		"created":          created,
	}
}

func respondProjectError(w http.ResponseWriter, err error) {
	if faults.IsConfiguration(err) {
		api.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	api.RespondWithResult(w, false, err.Error())
}

// EnsureProject lazily materializes the annual project for a ceiling.
func EnsureProject(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req struct {
			UserID    string `json:"user_id"`
			CeilingID int64  `json:"ceiling_id"`
			Year      int    `json:"year"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithResult(w, false, constants.ErrInvalidJSONPrefix+err.Error())
			return
		}
		year := req.Year
		if year == 0 {
			year = config.CurrentFiscalYear()
		}

		p, created, err := NewEnsurer(pgxPool).Ensure(ctx, req.CeilingID, year)
		if err != nil {
			respondProjectError(w, err)
			return
		}
		api.RespondWithPayload(w, true, "", projectPayload(p, created))
	}
}

// GetProject returns the persisted annual-project figures for a ceiling,
// without materializing one.
func GetProject(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req struct {
			UserID    string `json:"user_id"`
			CeilingID int64  `json:"ceiling_id"`
			Year      int    `json:"year"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithResult(w, false, constants.ErrInvalidJSONPrefix+err.Error())
			return
		}
		year := req.Year
		if year == 0 {
			year = config.CurrentFiscalYear()
		}

		p, err := Get(ctx, pgxPool, req.CeilingID, year)
		if err != nil {
			respondProjectError(w, err)
			return
		}
		api.RespondWithPayload(w, true, "", projectPayload(p, false))
	}
}
