package requisition

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xuri/excelize/v2"

	"BudgetReqSaas/api"
	"BudgetReqSaas/api/constants"
)

// ExportRequisitions streams an xlsx of one ceiling's requisitions for
// offline review. Read-side reporting only.
func ExportRequisitions(pgxPool *pgxpool.Pool) http.HandlerFunc {
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
			`SELECT r.requisition_id, p.name, pm.classification_key, r.month, r.quantity, r.total::float8, r.created_by, r.created_at
			 FROM requisition r
			 JOIN consumable_product p ON p.product_id = r.product_id
			 JOIN partida_master pm ON pm.partida_id = p.partida_id
			 WHERE r.ceiling_id = $1
			 ORDER BY pm.classification_key, p.name, r.month`,
			req.CeilingID)
		if err != nil {
			api.RespondWithResult(w, false, constants.ErrQueryFailed+err.Error())
			return
		}
		defer rows.Close()

		f := excelize.NewFile()
		sheet := "Requisitions"
		f.SetSheetName("Sheet1", sheet)
		headers := []string{"Requisition ID", "Product", "Partida Key", "Month", "Quantity", "Total", "Created By", "Created At"}
		for i, h := range headers {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, h)
		}

		rowIdx := 2
		grandTotal := 0.0
		for rows.Next() {
			var id, key, quantity int64
			var month int
			var total float64
			var name, createdBy string
			var createdAt time.Time
			if err := rows.Scan(&id, &name, &key, &month, &quantity, &total, &createdBy, &createdAt); err != nil {
				continue
			}
			values := []interface{}{id, name, key, month, quantity, total, createdBy, createdAt.Format(constants.DateTimeFormat)}
			for i, v := range values {
				cell, _ := excelize.CoordinatesToCellName(i+1, rowIdx)
				f.SetCellValue(sheet, cell, v)
			}
			grandTotal += total
			rowIdx++
		}
		totalCell, _ := excelize.CoordinatesToCellName(6, rowIdx)
		labelCell, _ := excelize.CoordinatesToCellName(5, rowIdx)
		f.SetCellValue(sheet, labelCell, "TOTAL")
		f.SetCellValue(sheet, totalCell, grandTotal)

		w.Header().Set(constants.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="requisitions_ceiling_%d.xlsx"`, req.CeilingID))
		if err := f.Write(w); err != nil {
			api.LogError("failed to write xlsx export: %v", err)
		}
	}
}
