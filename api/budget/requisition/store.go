package requisition

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"BudgetReqSaas/api/budget/project"
)

type pgCreator struct {
	pool *pgxpool.Pool
}

// NewCreator returns the Postgres-backed batch creator. The row inserts and
// the used_amount bump commit in one transaction, so a batch can never be
// half-applied against the annual project.
func NewCreator(pool *pgxpool.Pool) BatchCreator { return &pgCreator{pool: pool} }

func (c *pgCreator) CreateBatch(ctx context.Context, b Batch) (BatchOutcome, error) {
	tx, err := c.pool.Begin(ctx)
	if err != nil {
		return BatchOutcome{}, err
	}
	defer tx.Rollback(ctx)

	batchTotal := decimal.Zero
	created := 0
	for _, line := range b.Lines {
		if _, err := tx.Exec(ctx,
			`INSERT INTO requisition (ceiling_id, area_id, product_id, month, quantity, total, description, created_by, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())`,
			b.CeilingID, b.AreaID, line.ProductID, line.Month, line.Quantity,
			line.Total.String(), b.Description, b.UserID); err != nil {
			return BatchOutcome{}, err
		}
		created++
		batchTotal = batchTotal.Add(line.Total)
	}

	var p project.AnnualProject
	var assignedF, usedF float64
	if err := tx.QueryRow(ctx,
		`UPDATE annual_project
		 SET used_amount = used_amount + $1
		 WHERE ceiling_id = $2 AND year = $3
		 RETURNING project_id, year, ceiling_id, area_id, assigned_amount::float8, used_amount::float8, description`,
		batchTotal.String(), b.CeilingID, b.Year).
		Scan(&p.ID, &p.Year, &p.CeilingID, &p.AreaID, &assignedF, &usedF, &p.Description); err != nil {
		return BatchOutcome{}, err
	}
	p.Assigned = decimal.NewFromFloat(assignedF)
	p.Used = decimal.NewFromFloat(usedF)

	if err := tx.Commit(ctx); err != nil {
		return BatchOutcome{}, err
	}
	return BatchOutcome{RequisitionsCreated: created, Project: p}, nil
}
