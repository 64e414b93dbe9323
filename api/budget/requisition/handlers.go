package requisition

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"BudgetReqSaas/api"
	"BudgetReqSaas/api/budget/area"
	"BudgetReqSaas/api/budget/faults"
	"BudgetReqSaas/api/budget/justification"
	"BudgetReqSaas/api/budget/ledger"
	"BudgetReqSaas/api/budget/project"
	"BudgetReqSaas/api/constants"
	"BudgetReqSaas/internal/config"
)

type submitBody struct {
	UserID            string        `json:"user_id"`
	CeilingID         int64         `json:"ceiling_id"`
	AreaID            int64         `json:"area_id"`
	FallbackAreaID    int64         `json:"fallback_area_id"`
	Justification     string        `json:"justification"`
	Description       string        `json:"description"`
	Year              int           `json:"year"`
	ConfirmOverBudget bool          `json:"confirm_over_budget"`
	Products          []WireProduct `json:"products"`
}

// buildLedger reconstructs the submission ledger from the wire payload,
// pricing each product from the catalog. Unknown products are fatal: a
// requisition must never be priced from client-supplied numbers.
func buildLedger(ctx context.Context, pool *pgxpool.Pool, products []WireProduct) (ledger.Ledger, error) {
	led := ledger.New()
	for _, wp := range products {
		var prod ledger.Product
		var unitPrice float64
		err := pool.QueryRow(ctx,
			`SELECT product_id, partida_id, name, unit_price::float8 FROM consumable_product WHERE product_id = $1`,
			wp.ProductID).Scan(&prod.ID, &prod.PartidaID, &prod.Name, &unitPrice)
		if errors.Is(err, pgx.ErrNoRows) {
			return led, faults.NewConfigurationError("product_id", wp.ProductID, "unknown product")
		}
		if err != nil {
			return led, &faults.ServerError{Op: "read product", Err: err}
		}
		prod.UnitPrice = decimal.NewFromFloat(unitPrice)

		var months [constants.MonthsPerYear]int64
		for _, m := range wp.Months {
			if m.Month < 1 || m.Month > constants.MonthsPerYear {
				return led, faults.NewValidationError("month must be between 1 and 12")
			}
			months[m.Month-1] += m.Quantity
		}
		next, _, err := led.Add(prod, months)
		if err != nil {
			return led, err
		}
		led = next
	}
	return led, nil
}

// lastKnownFigures returns the persisted project figures, or the ceiling's
// assigned amount with zero usage when no project has been materialized yet.
func lastKnownFigures(ctx context.Context, pool *pgxpool.Pool, ceilingID int64, year int) (ledger.ProjectFigures, error) {
	p, err := project.Get(ctx, pool, ceilingID, year)
	if err == nil {
		return p.Figures(), nil
	}
	if !faults.IsConfiguration(err) {
		return ledger.ProjectFigures{}, err
	}
	var assignedF float64
	if err := pool.QueryRow(ctx,
		`SELECT assigned_amount::float8 FROM budget_ceiling WHERE ceiling_id = $1`,
		ceilingID).Scan(&assignedF); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ledger.ProjectFigures{}, faults.NewConfigurationError("ceiling_id", ceilingID, "budget ceiling not found")
		}
		return ledger.ProjectFigures{}, &faults.ServerError{Op: "read ceiling", Err: err}
	}
	assigned := decimal.NewFromFloat(assignedF)
	return ledger.ProjectFigures{Assigned: assigned, Used: decimal.Zero, Available: assigned}, nil
}

// SubmitRequisitions is the one user-facing submit action: resolve the area,
// rebuild the ledger, run the gate, ensure the project, fan out
// justifications and batch-create the requisition rows.
func SubmitRequisitions(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req submitBody
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithResult(w, false, constants.ErrInvalidJSONPrefix+err.Error())
			return
		}
		if len(req.Products) == 0 {
			api.RespondWithResult(w, false, "at least one product selection is required")
			return
		}
		year := req.Year
		if year == 0 {
			year = config.CurrentFiscalYear()
		}

		areaID := req.AreaID
		if areaID <= 0 {
			resolved, err := area.DefaultChain(pgxPool, req.FallbackAreaID).Resolve(ctx, req.CeilingID)
			if err != nil {
				respondSubmitError(w, err)
				return
			}
			areaID = resolved
		}

		led, err := buildLedger(ctx, pgxPool, req.Products)
		if err != nil {
			respondSubmitError(w, err)
			return
		}

		figures, err := lastKnownFigures(ctx, pgxPool, req.CeilingID, year)
		if err != nil {
			respondSubmitError(w, err)
			return
		}

		submitter := NewSubmitter(
			project.NewEnsurer(pgxPool),
			justification.NewUpserter(justification.NewStore(pgxPool)),
			NewCreator(pgxPool),
		)
		outcome, err := submitter.Submit(ctx, SubmitRequest{
			CeilingID:         req.CeilingID,
			AreaID:            areaID,
			UserID:            req.UserID,
			Justification:     req.Justification,
			Description:       req.Description,
			Year:              year,
			ConfirmOverBudget: req.ConfirmOverBudget,
		}, led, figures)
		if err != nil {
			respondSubmitError(w, err)
			return
		}

		payload := map[string]interface{}{
			"requisitions_created":   outcome.RequisitionsCreated,
			"justifications_created": outcome.JustificationsCreated,
			"justifications_updated": outcome.JustificationsUpdated,
			"reload_project":         true,
			"updated_project": map[string]interface{}{
				"project_id":       outcome.Project.ID,
				"year":             outcome.Project.Year,
				"assigned_amount":  outcome.Project.Assigned.InexactFloat64(),
				"used_amount":      outcome.Project.Used.InexactFloat64(),
				"available_amount": outcome.Project.Available().InexactFloat64(),
			},
		}
		if len(outcome.JustificationFailures) > 0 {
			payload["justification_failures"] = outcome.JustificationFailures
		}
		api.RespondWithPayload(w, true, "", payload)
	}
}

func respondSubmitError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, faults.ErrBudgetExceeded):
		w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"success":               false,
			"error":                 err.Error(),
			"confirmation_required": true,
		})
	case faults.IsConfiguration(err):
		api.RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case faults.IsValidation(err):
		api.RespondWithError(w, http.StatusBadRequest, err.Error())
	default:
		api.RespondWithResult(w, false, err.Error())
	}
}

// GetRequisitions lists the persisted requisitions of one ceiling.
func GetRequisitions(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req struct {
			UserID    string `json:"user_id"`
			CeilingID int64  `json:"ceiling_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			api.RespondWithResult(w, false, constants.ErrInvalidJSONPrefix+err.Error())
			return
		}
		if req.CeilingID <= 0 {
			api.RespondWithResult(w, false, "ceiling_id required")
			return
		}

		rows, err := pgxPool.Query(ctx,
			`SELECT r.requisition_id, r.area_id, r.product_id, p.name, r.month, r.quantity, r.total::float8, r.description, r.created_by, r.created_at
			 FROM requisition r
			 JOIN consumable_product p ON p.product_id = r.product_id
			 WHERE r.ceiling_id = $1
			 ORDER BY r.created_at DESC, r.product_id, r.month`,
			req.CeilingID)
		if err != nil {
			api.RespondWithResult(w, false, constants.ErrQueryFailed+err.Error())
			return
		}
		defer rows.Close()

		results := make([]map[string]interface{}, 0)
		for rows.Next() {
			var id, areaID, productID, quantity int64
			var month int
			var total float64
			var name, description, createdBy string
			var createdAt time.Time
			if err := rows.Scan(&id, &areaID, &productID, &name, &month, &quantity, &total, &description, &createdBy, &createdAt); err != nil {
				continue
			}
			results = append(results, map[string]interface{}{
				"requisition_id": id,
				"area_id":        areaID,
				"product_id":     productID,
				"product_name":   name,
				"month":          month,
				"quantity":       quantity,
				"total":          total,
				"description":    description,
				"created_by":     createdBy,
				"created_at":     createdAt.Format(constants.DateTimeFormat),
			})
		}

		api.RespondWithPayload(w, true, "", results)
	}
}
