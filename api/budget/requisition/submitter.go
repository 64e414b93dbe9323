package requisition

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"BudgetReqSaas/api/budget/faults"
	"BudgetReqSaas/api/budget/justification"
	"BudgetReqSaas/api/budget/ledger"
	"BudgetReqSaas/api/budget/project"
	"BudgetReqSaas/api/constants"
	"BudgetReqSaas/internal/logger"
)

// WireMonth / WireProduct are the batch-create payload shape: one entry per
// product carrying only the months with a nonzero quantity.
type WireMonth struct {
	Month    int   `json:"month"`
	Quantity int64 `json:"quantity"`
}

type WireProduct struct {
	ProductID int64       `json:"product_id"`
	Months    []WireMonth `json:"months"`
}

// Line is one persisted requisition row: a (product, month) pair with its
// quantity and monetary total.
type Line struct {
	ProductID int64
	PartidaID int64
	Month     int
	Quantity  int64
	Total     decimal.Decimal
}

// Batch is everything the batch-create endpoint persists in one go.
type Batch struct {
	CeilingID   int64
	AreaID      int64
	UserID      string
	Description string
	Year        int
	Lines       []Line
}

// BatchOutcome reports what the store persisted.
type BatchOutcome struct {
	RequisitionsCreated int
	Project             project.AnnualProject
}

// ProjectEnsurer, JustificationWriter and BatchCreator are the collaborators
// the submitter orchestrates.
type ProjectEnsurer interface {
	Ensure(ctx context.Context, ceilingID int64, year int) (project.AnnualProject, bool, error)
}

type JustificationWriter interface {
	UpsertAll(ctx context.Context, partidaIDs []int64, areaID, ceilingID int64, text, userID string) (justification.Result, error)
}

type BatchCreator interface {
	CreateBatch(ctx context.Context, b Batch) (BatchOutcome, error)
}

// SubmitRequest carries the caller's submission parameters. AreaID must
// already be resolved (the resolver chain runs before submission).
type SubmitRequest struct {
	CeilingID         int64
	AreaID            int64
	UserID            string
	Justification     string
	Description       string
	Year              int
	ConfirmOverBudget bool
}

// Outcome is what a successful submission reports back. Ledger is the
// cleared ledger the caller should continue with; the caller is expected to
// reload the persisted project so the view drops out of reactive mode.
type Outcome struct {
	RequisitionsCreated   int
	JustificationsCreated int
	JustificationsUpdated int
	JustificationFailures []faults.FailedUpsert
	Project               project.AnnualProject
	Ledger                ledger.Ledger
}

type Submitter struct {
	ensurer        ProjectEnsurer
	justifications JustificationWriter
	creator        BatchCreator
}

func NewSubmitter(ensurer ProjectEnsurer, justifications JustificationWriter, creator BatchCreator) *Submitter {
	return &Submitter{ensurer: ensurer, justifications: justifications, creator: creator}
}

// BuildWirePayload translates the ledger into batch-create entries, dropping
// zero-quantity months.
func BuildWirePayload(led ledger.Ledger) []WireProduct {
	sels := led.Selections()
	out := make([]WireProduct, 0, len(sels))
	for _, sel := range sels {
		wp := WireProduct{ProductID: sel.Product.ID}
		for i, qty := range sel.Months {
			if qty > 0 {
				wp.Months = append(wp.Months, WireMonth{Month: i + 1, Quantity: qty})
			}
		}
		out = append(out, wp)
	}
	return out
}

func buildLines(led ledger.Ledger) []Line {
	var lines []Line
	for _, sel := range led.Selections() {
		for i, qty := range sel.Months {
			if qty > 0 {
				lines = append(lines, Line{
					ProductID: sel.Product.ID,
					PartidaID: sel.Product.PartidaID,
					Month:     i + 1,
					Quantity:  qty,
					Total:     sel.Product.UnitPrice.Mul(decimal.NewFromInt(qty)),
				})
			}
		}
	}
	return lines
}

// classifyCreateError distinguishes a broken reference (ceiling/area/product
// unknown to the server) from every other failure, which is surfaced
// verbatim for manual resubmission.
func classifyCreateError(req SubmitRequest, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return faults.NewConfigurationError("ceiling_id", req.CeilingID,
			"batch create rejected a reference: "+pgErr.Message)
	}
	return &faults.ServerError{Op: "batch create", Err: err}
}

// Submit runs the full pipeline, aborting at the first fatal step. figures
// are the last persisted annual-project numbers known to the caller; the
// over-budget gate is decided against them before anything is written.
func (s *Submitter) Submit(ctx context.Context, req SubmitRequest, led ledger.Ledger, figures ledger.ProjectFigures) (Outcome, error) {
	// 1. identity preconditions, before any write reaches the server
	if req.CeilingID <= 0 {
		return Outcome{}, faults.NewConfigurationError("ceiling_id", req.CeilingID, "ceiling id must be positive")
	}
	if req.CeilingID == constants.ReservedCeilingID {
		return Outcome{}, faults.NewConfigurationError("ceiling_id", req.CeilingID, "ceiling id is reserved")
	}
	if req.AreaID <= 0 {
		return Outcome{}, faults.NewConfigurationError("area_id", req.AreaID, "area id must be positive")
	}

	// 2. something must actually be requested
	if led.Len() == 0 {
		return Outcome{}, faults.NewValidationError("at least one product selection is required")
	}
	totalQty := int64(0)
	for _, sel := range led.Selections() {
		totalQty += sel.TotalQuantity
	}
	if totalQty == 0 {
		return Outcome{}, faults.NewValidationError("total requested quantity must be greater than zero")
	}
	if strings.TrimSpace(req.Justification) == "" {
		return Outcome{}, faults.NewValidationError("justification text is required")
	}

	// 3. over-budget gate: declining leaves no side effects anywhere
	if led.ExceedsBudget(figures) {
		if !req.ConfirmOverBudget {
			return Outcome{}, faults.ErrBudgetExceeded
		}
		if logger.GlobalLogger != nil {
			logger.GlobalLogger.LogAudit(fmt.Sprintf(
				"[Requisition] over-budget submission confirmed ceiling=%d area=%d pending=%s",
				req.CeilingID, req.AreaID, led.RequisitionTotal().String()))
		}
	}

	// 4. materialize the annual project
	if _, _, err := s.ensurer.Ensure(ctx, req.CeilingID, req.Year); err != nil {
		return Outcome{}, err
	}

	// 5. justification fan-out; critical failures abort, partial ones ride along
	jres, err := s.justifications.UpsertAll(ctx, led.DistinctPartidaIDs(), req.AreaID, req.CeilingID, req.Justification, req.UserID)
	if err != nil {
		return Outcome{}, err
	}

	// 6–7. translate and persist the batch
	batch := Batch{
		CeilingID:   req.CeilingID,
		AreaID:      req.AreaID,
		UserID:      req.UserID,
		Description: req.Description,
		Year:        req.Year,
		Lines:       buildLines(led),
	}
	outcome, err := s.creator.CreateBatch(ctx, batch)
	if err != nil {
		return Outcome{}, classifyCreateError(req, err)
	}

	// 8. success: hand back a cleared ledger and the refreshed figures
	out := Outcome{
		RequisitionsCreated:   outcome.RequisitionsCreated,
		JustificationsCreated: jres.Created,
		JustificationsUpdated: jres.Updated,
		Project:               outcome.Project,
		Ledger:                ledger.New(),
	}
	if jres.Partial != nil {
		out.JustificationFailures = jres.Partial.Failed
	}
	return out, nil
}
