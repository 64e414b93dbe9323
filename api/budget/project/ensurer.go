package project

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"BudgetReqSaas/api/budget/faults"
	"BudgetReqSaas/api/budget/ledger"
)

// Queryer is the slice of pgxpool.Pool (or pgx.Tx) the ensurer needs.
type Queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// AnnualProject is the yearly allocation materialized against a ceiling.
// Available is always derived; it is never a column.
type AnnualProject struct {
	ID          int64
	Year        int
	CeilingID   int64
	AreaID      *int64
	Assigned    decimal.Decimal
	Used        decimal.Decimal
	Description string
}

func (p AnnualProject) Available() decimal.Decimal {
	return p.Assigned.Sub(p.Used)
}

// Figures adapts the persisted row to what the ledger projects against.
func (p AnnualProject) Figures() ledger.ProjectFigures {
	return ledger.ProjectFigures{
		Assigned:  p.Assigned,
		Used:      p.Used,
		Available: p.Available(),
	}
}

type Ensurer struct {
	db Queryer
}

func NewEnsurer(db Queryer) *Ensurer { return &Ensurer{db: db} }

// Ensure returns the annual project for (year, ceiling), creating it with the
// ceiling's assigned amount and zero usage on first touch. The whole
// get-or-create is one INSERT .. ON CONFLICT .. RETURNING round trip, so two
// concurrent calls cannot both insert: the unique (year, ceiling_id)
// constraint arbitrates and both callers see the same row. The returned bool
// reports whether this call created the row.
func (e *Ensurer) Ensure(ctx context.Context, ceilingID int64, year int) (AnnualProject, bool, error) {
	if ceilingID <= 0 {
		return AnnualProject{}, false, faults.NewConfigurationError("ceiling_id", ceilingID, "ceiling id must be positive")
	}

	var assigned float64
	var ceilingArea *int64
	err := e.db.QueryRow(ctx,
		`SELECT assigned_amount::float8, area_id FROM budget_ceiling WHERE ceiling_id = $1`,
		ceilingID).Scan(&assigned, &ceilingArea)
	if errors.Is(err, pgx.ErrNoRows) {
		return AnnualProject{}, false, faults.NewConfigurationError("ceiling_id", ceilingID, "budget ceiling not found")
	}
	if err != nil {
		return AnnualProject{}, false, &faults.ServerError{Op: "read ceiling", Err: err}
	}

	// xmax = 0 only on freshly inserted rows; the no-op DO UPDATE is what
	// makes RETURNING fire on the conflict path too.
	var p AnnualProject
	var created bool
	var usedF, assignedF float64
	err = e.db.QueryRow(ctx,
		`INSERT INTO annual_project (year, ceiling_id, area_id, assigned_amount, used_amount, description)
		 VALUES ($1, $2, $3, $4, 0, '')
		 ON CONFLICT (year, ceiling_id) DO UPDATE SET ceiling_id = EXCLUDED.ceiling_id
		 RETURNING project_id, year, ceiling_id, area_id, assigned_amount::float8, used_amount::float8, description, (xmax = 0)`,
		year, ceilingID, ceilingArea, assigned).
		Scan(&p.ID, &p.Year, &p.CeilingID, &p.AreaID, &assignedF, &usedF, &p.Description, &created)
	if err != nil {
		return AnnualProject{}, false, &faults.ServerError{Op: "ensure annual project", Err: err}
	}
	p.Assigned = decimal.NewFromFloat(assignedF)
	p.Used = decimal.NewFromFloat(usedF)
	return p, created, nil
}

// Get loads the annual project for (year, ceiling) without creating it.
func Get(ctx context.Context, db Queryer, ceilingID int64, year int) (AnnualProject, error) {
	var p AnnualProject
	var assignedF, usedF float64
	err := db.QueryRow(ctx,
		`SELECT project_id, year, ceiling_id, area_id, assigned_amount::float8, used_amount::float8, description
		 FROM annual_project WHERE ceiling_id = $1 AND year = $2`,
		ceilingID, year).
		Scan(&p.ID, &p.Year, &p.CeilingID, &p.AreaID, &assignedF, &usedF, &p.Description)
	if errors.Is(err, pgx.ErrNoRows) {
		return AnnualProject{}, faults.NewConfigurationError("ceiling_id", ceilingID, "annual project not found")
	}
	if err != nil {
		return AnnualProject{}, &faults.ServerError{Op: "read annual project", Err: err}
	}
	p.Assigned = decimal.NewFromFloat(assignedF)
	p.Used = decimal.NewFromFloat(usedF)
	return p, nil
}
