package area

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"BudgetReqSaas/api/budget/faults"
	"BudgetReqSaas/internal/logger"
)

// Source is one place a ceiling's financial area can come from. Returning
// (0, nil) means "this source has nothing"; only positive ids count as a hit.
type Source interface {
	Name() string
	AreaID(ctx context.Context, ceilingID int64) (int64, error)
}

// Queryer is the slice of pgxpool.Pool the sources need.
type Queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Resolver walks an ordered source chain; the first positive area id wins.
// It never guesses: an exhausted chain is a fatal ConfigurationError, because
// spend attributed to the wrong area corrupts every downstream ledger.
type Resolver struct {
	sources []Source
}

func NewResolver(sources ...Source) *Resolver {
	return &Resolver{sources: sources}
}

func (r *Resolver) Resolve(ctx context.Context, ceilingID int64) (int64, error) {
	if ceilingID <= 0 {
		return 0, faults.NewConfigurationError("ceiling_id", ceilingID, "ceiling id must be positive")
	}
	for _, src := range r.sources {
		id, err := src.AreaID(ctx, ceilingID)
		if err != nil {
			return 0, &faults.ServerError{Op: "area source " + src.Name(), Err: err}
		}
		if id > 0 {
			if logger.GlobalLogger != nil {
				logger.GlobalLogger.LogAudit("[Area] resolved via " + src.Name())
			}
			return id, nil
		}
	}
	return 0, faults.NewConfigurationError("ceiling_id", ceilingID,
		"financial area could not be resolved from any source")
}

// projectSource reads the area reference off the most recent annual project
// materialized for the ceiling.
type projectSource struct {
	db Queryer
}

func NewProjectSource(db Queryer) Source { return &projectSource{db: db} }

func (s *projectSource) Name() string { return "annual_project" }

func (s *projectSource) AreaID(ctx context.Context, ceilingID int64) (int64, error) {
	var areaID *int64
	err := s.db.QueryRow(ctx,
		`SELECT area_id FROM annual_project WHERE ceiling_id = $1 ORDER BY year DESC LIMIT 1`,
		ceilingID).Scan(&areaID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if areaID == nil {
		return 0, nil
	}
	return *areaID, nil
}

// ceilingSource queries the ceiling→area mapping directly.
type ceilingSource struct {
	db Queryer
}

func NewCeilingSource(db Queryer) Source { return &ceilingSource{db: db} }

func (s *ceilingSource) Name() string { return "budget_ceiling" }

func (s *ceilingSource) AreaID(ctx context.Context, ceilingID int64) (int64, error) {
	var areaID *int64
	err := s.db.QueryRow(ctx,
		`SELECT area_id FROM budget_ceiling WHERE ceiling_id = $1`,
		ceilingID).Scan(&areaID)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if areaID == nil {
		return 0, nil
	}
	return *areaID, nil
}

// summarySource is the caller-supplied fallback: the area id carried on the
// ceiling summary the client already loaded.
type summarySource struct {
	areaID int64
}

func NewSummarySource(areaID int64) Source { return &summarySource{areaID: areaID} }

func (s *summarySource) Name() string { return "ceiling_summary_fallback" }

func (s *summarySource) AreaID(ctx context.Context, ceilingID int64) (int64, error) {
	return s.areaID, nil
}

// DefaultChain is the production resolution order: annual project row first,
// then the ceiling mapping, then the caller's summary fallback.
func DefaultChain(db Queryer, fallbackAreaID int64) *Resolver {
	return NewResolver(
		NewProjectSource(db),
		NewCeilingSource(db),
		NewSummarySource(fallbackAreaID),
	)
}
