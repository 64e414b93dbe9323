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

type ProductMasterRequest struct {
	PartidaID   int64   `json:"partida_id"`
	ProductName string  `json:"product_name"`
	Unit        string  `json:"unit"`
	UnitPrice   float64 `json:"unit_price"`
	Status      string  `json:"status"`
}

type ProductMasterUpdateRequest struct {
	ProductID int64    `json:"product_id"`
	UnitPrice *float64 `json:"unit_price"`
	Status    string   `json:"status"`
	Reason    string   `json:"reason"`
}

func CreateProductMaster(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID   string                 `json:"user_id"`
			Products []ProductMasterRequest `json:"products"`
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
		for _, p := range req.Products {
			if p.PartidaID <= 0 {
				results = append(results, map[string]interface{}{
					constants.ValueSuccess: false,
					constants.ValueError:   constants.FormatFieldError("partida_id", "must be positive"),
					"product_name":         p.ProductName,
				})
				continue
			}
			if strings.TrimSpace(p.ProductName) == "" {
				results = append(results, map[string]interface{}{
					constants.ValueSuccess: false,
					constants.ValueError:   constants.FormatMissingFieldError("product_name"),
					"product_name":         p.ProductName,
				})
				continue
			}
			unitPrice := decimal.NewFromFloat(p.UnitPrice)
			if unitPrice.IsNegative() {
				results = append(results, map[string]interface{}{
					constants.ValueSuccess: false,
					constants.ValueError:   constants.FormatFieldError("unit_price", "must not be negative"),
					"product_name":         p.ProductName,
				})
				continue
			}
			if p.Status == "" {
				p.Status = "Active"
			}

			ctx := r.Context()
			var productID int64
			query := `INSERT INTO consumable_product (partida_id, name, unit, unit_price, status, created_by, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, now()) RETURNING product_id`
			err := pgxPool.QueryRow(ctx, query,
				p.PartidaID,
				strings.TrimSpace(p.ProductName),
				strings.TrimSpace(p.Unit),
				unitPrice.String(),
				p.Status,
				createdBy,
			).Scan(&productID)
			if err != nil {
				errMsg := "failed to create product"
				if strings.Contains(err.Error(), "foreign key") {
					errMsg = "partida does not exist"
				}
				results = append(results, map[string]interface{}{
					constants.ValueSuccess: false,
					constants.ValueError:   errMsg,
					"product_name":         p.ProductName,
				})
				continue
			}
			results = append(results, map[string]interface{}{
				constants.ValueSuccess: true,
				"product_id":           productID,
				"product_name":         p.ProductName,
			})
		}
		w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			constants.ValueSuccess: api.IsBulkSuccess(results),
			"results":              results,
		})
	}
}

func GetAllProductMaster(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		rows, err := pgxPool.Query(ctx,
			`SELECT p.product_id, p.partida_id, pm.classification_key, p.name, p.unit, p.unit_price::float8, p.status, p.created_by, p.created_at
			 FROM consumable_product p
			 JOIN partida_master pm ON pm.partida_id = p.partida_id
			 ORDER BY pm.classification_key, p.name`)
		if err != nil {
			api.RespondWithResult(w, false, constants.ErrQueryFailed+err.Error())
			return
		}
		defer rows.Close()

		results := make([]map[string]interface{}, 0)
		for rows.Next() {
			var id, partidaID, key int64
			var unitPrice float64
			var name, unit, status, createdBy string
			var createdAt time.Time
			if err := rows.Scan(&id, &partidaID, &key, &name, &unit, &unitPrice, &status, &createdBy, &createdAt); err != nil {
				continue
			}
			results = append(results, map[string]interface{}{
				"product_id":         id,
				"partida_id":         partidaID,
				"classification_key": key,
				"product_name":       name,
				"unit":               unit,
				"unit_price":         unitPrice,
				"status":             status,
				"created_by":         createdBy,
				"created_at":         createdAt.Format(constants.DateTimeFormat),
			})
		}
		api.RespondWithPayload(w, true, "", results)
	}
}

// UpdateProductMaster reprices or retires products. Price changes only affect
// future requisitions; persisted totals are never restated.
func UpdateProductMaster(pgxPool *pgxpool.Pool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			UserID   string                       `json:"user_id"`
			Products []ProductMasterUpdateRequest `json:"products"`
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
		for _, p := range req.Products {
			if p.ProductID <= 0 {
				results = append(results, map[string]interface{}{
					constants.ValueSuccess: false,
					constants.ValueError:   constants.ErrProductRequired,
					"product_id":           p.ProductID,
				})
				continue
			}
			var priceArg interface{}
			if p.UnitPrice != nil {
				price := decimal.NewFromFloat(*p.UnitPrice)
				if price.IsNegative() {
					results = append(results, map[string]interface{}{
						constants.ValueSuccess: false,
						constants.ValueError:   constants.FormatFieldError("unit_price", "must not be negative"),
						"product_id":           p.ProductID,
					})
					continue
				}
				priceArg = price.String()
			}
			ctx := r.Context()
			tag, err := pgxPool.Exec(ctx,
				`UPDATE consumable_product
				 SET unit_price = COALESCE($2::numeric, unit_price),
				     status = COALESCE(NULLIF($3, ''), status)
				 WHERE product_id = $1`,
				p.ProductID, priceArg, p.Status)
			if err != nil {
				results = append(results, map[string]interface{}{
					constants.ValueSuccess: false,
					constants.ValueError:   "failed to update product",
					"product_id":           p.ProductID,
				})
				continue
			}
			if tag.RowsAffected() == 0 {
				results = append(results, map[string]interface{}{
					constants.ValueSuccess: false,
					constants.ValueError:   "product not found",
					"product_id":           p.ProductID,
				})
				continue
			}
			results = append(results, map[string]interface{}{
				constants.ValueSuccess: true,
				"product_id":           p.ProductID,
			})
		}
		w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
		json.NewEncoder(w).Encode(map[string]interface{}{
			constants.ValueSuccess: api.IsBulkSuccess(results),
			"results":              results,
		})
	}
}
