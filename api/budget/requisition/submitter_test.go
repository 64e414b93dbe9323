package requisition

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BudgetReqSaas/api/budget/faults"
	"BudgetReqSaas/api/budget/justification"
	"BudgetReqSaas/api/budget/ledger"
	"BudgetReqSaas/api/budget/project"
)

type fakeEnsurer struct {
	calls int
	err   error
}

func (f *fakeEnsurer) Ensure(ctx context.Context, ceilingID int64, year int) (project.AnnualProject, bool, error) {
	f.calls++
	if f.err != nil {
		return project.AnnualProject{}, false, f.err
	}
	return project.AnnualProject{ID: 1, Year: year, CeilingID: ceilingID}, true, nil
}

type fakeJustifier struct {
	calls    int
	partidas []int64
	res      justification.Result
	err      error
}

func (f *fakeJustifier) UpsertAll(ctx context.Context, partidaIDs []int64, areaID, ceilingID int64, text, userID string) (justification.Result, error) {
	f.calls++
	f.partidas = partidaIDs
	return f.res, f.err
}

type fakeCreator struct {
	calls int
	batch Batch
	err   error
}

func (f *fakeCreator) CreateBatch(ctx context.Context, b Batch) (BatchOutcome, error) {
	f.calls++
	f.batch = b
	if f.err != nil {
		return BatchOutcome{}, f.err
	}
	total := decimal.Zero
	for _, l := range b.Lines {
		total = total.Add(l.Total)
	}
	return BatchOutcome{
		RequisitionsCreated: len(b.Lines),
		Project: project.AnnualProject{
			ID: 1, Year: b.Year, CeilingID: b.CeilingID,
			Assigned: decimal.NewFromInt(100000),
			Used:     decimal.NewFromInt(20000).Add(total),
		},
	}, nil
}

func testLedger(t *testing.T, price int64, qty [2]int64) ledger.Ledger {
	t.Helper()
	var months [12]int64
	months[0], months[1] = qty[0], qty[1]
	led, _, err := ledger.New().Add(ledger.Product{
		ID: 101, PartidaID: 21101, Name: "Paper", UnitPrice: decimal.NewFromInt(price),
	}, months)
	require.NoError(t, err)
	return led
}

func okRequest() SubmitRequest {
	return SubmitRequest{
		CeilingID:     7,
		AreaID:        5,
		UserID:        "u1",
		Justification: "annual consumables",
		Description:   "office supplies",
		Year:          2026,
	}
}

func figures(assigned, used int64) ledger.ProjectFigures {
	return ledger.ProjectFigures{
		Assigned:  decimal.NewFromInt(assigned),
		Used:      decimal.NewFromInt(used),
		Available: decimal.NewFromInt(assigned - used),
	}
}

func TestSubmitHappyPath(t *testing.T) {
	ensurer := &fakeEnsurer{}
	justifier := &fakeJustifier{res: justification.Result{Created: 1}}
	creator := &fakeCreator{}
	led := testLedger(t, 500, [2]int64{10, 10})

	out, err := NewSubmitter(ensurer, justifier, creator).
		Submit(context.Background(), okRequest(), led, figures(100000, 20000))
	require.NoError(t, err)

	assert.Equal(t, 1, ensurer.calls)
	assert.Equal(t, 1, justifier.calls)
	assert.Equal(t, []int64{21101}, justifier.partidas)
	assert.Equal(t, 1, creator.calls)
	assert.Equal(t, 2, out.RequisitionsCreated, "one row per nonzero (product, month) pair")
	assert.Equal(t, 1, out.JustificationsCreated)
	assert.Equal(t, 0, out.Ledger.Len(), "ledger is cleared on success")
	assert.Equal(t, "30000", out.Project.Used.String())
}

func TestSubmitRejectsBadIdentifiersBeforeAnyCall(t *testing.T) {
	led := testLedger(t, 500, [2]int64{1, 0})
	for _, req := range []SubmitRequest{
		{CeilingID: 0, AreaID: 5, Justification: "x"},
		{CeilingID: -7, AreaID: 5, Justification: "x"},
		{CeilingID: 1, AreaID: 5, Justification: "x"}, // reserved sentinel
		{CeilingID: 7, AreaID: 0, Justification: "x"},
	} {
		ensurer := &fakeEnsurer{}
		justifier := &fakeJustifier{}
		creator := &fakeCreator{}
		_, err := NewSubmitter(ensurer, justifier, creator).
			Submit(context.Background(), req, led, figures(100, 0))
		assert.True(t, faults.IsConfiguration(err))
		assert.Zero(t, ensurer.calls+justifier.calls+creator.calls,
			"configuration errors must never reach a write endpoint")
	}
}

func TestSubmitRejectsEmptyLedger(t *testing.T) {
	_, err := NewSubmitter(&fakeEnsurer{}, &fakeJustifier{}, &fakeCreator{}).
		Submit(context.Background(), okRequest(), ledger.New(), figures(100, 0))
	assert.True(t, faults.IsValidation(err))
}

func TestSubmitRejectsMissingJustification(t *testing.T) {
	req := okRequest()
	req.Justification = "   "
	_, err := NewSubmitter(&fakeEnsurer{}, &fakeJustifier{}, &fakeCreator{}).
		Submit(context.Background(), req, testLedger(t, 500, [2]int64{1, 0}), figures(100000, 0))
	assert.True(t, faults.IsValidation(err))
}

func TestSubmitOverBudgetRequiresConfirmation(t *testing.T) {
	ensurer := &fakeEnsurer{}
	justifier := &fakeJustifier{}
	creator := &fakeCreator{}
	// 85000 pending against 100000-20000
	led := testLedger(t, 17000, [2]int64{5, 0})

	_, err := NewSubmitter(ensurer, justifier, creator).
		Submit(context.Background(), okRequest(), led, figures(100000, 20000))
	assert.ErrorIs(t, err, faults.ErrBudgetExceeded)
	assert.Zero(t, ensurer.calls+justifier.calls+creator.calls, "declining leaves no side effects")

	req := okRequest()
	req.ConfirmOverBudget = true
	out, err := NewSubmitter(ensurer, justifier, creator).
		Submit(context.Background(), req, led, figures(100000, 20000))
	require.NoError(t, err)
	assert.Equal(t, 1, out.RequisitionsCreated)
}

func TestSubmitAbortsWhenJustificationEscalates(t *testing.T) {
	justifier := &fakeJustifier{err: &faults.ServerError{Op: "justification upsert", Err: &pgconn.PgError{Code: "23503"}}}
	creator := &fakeCreator{}
	_, err := NewSubmitter(&fakeEnsurer{}, justifier, creator).
		Submit(context.Background(), okRequest(), testLedger(t, 500, [2]int64{1, 0}), figures(100000, 0))
	require.Error(t, err)
	assert.Zero(t, creator.calls, "no requisitions after an escalated justification failure")
}

func TestSubmitCarriesPartialJustificationFailures(t *testing.T) {
	justifier := &fakeJustifier{res: justification.Result{
		Created: 0,
		Partial: &faults.PartialFailure{Failed: []faults.FailedUpsert{{PartidaID: 21101, AreaID: 5, CeilingID: 7, Reason: "timeout"}}},
	}}
	out, err := NewSubmitter(&fakeEnsurer{}, justifier, &fakeCreator{}).
		Submit(context.Background(), okRequest(), testLedger(t, 500, [2]int64{1, 0}), figures(100000, 0))
	require.NoError(t, err, "partial justification failure still submits requisitions")
	require.Len(t, out.JustificationFailures, 1)
	assert.Equal(t, int64(21101), out.JustificationFailures[0].PartidaID)
	assert.Equal(t, 1, out.RequisitionsCreated)
}

func TestSubmitClassifiesForeignKeyOnCreate(t *testing.T) {
	creator := &fakeCreator{err: &pgconn.PgError{Code: "23503", Message: "ceiling_id not present"}}
	_, err := NewSubmitter(&fakeEnsurer{}, &fakeJustifier{}, creator).
		Submit(context.Background(), okRequest(), testLedger(t, 500, [2]int64{1, 0}), figures(100000, 0))
	assert.True(t, faults.IsConfiguration(err), "fk failure on create is a configuration error")
}

func TestSubmitSurfacesOtherCreateErrorsVerbatim(t *testing.T) {
	creator := &fakeCreator{err: assert.AnError}
	_, err := NewSubmitter(&fakeEnsurer{}, &fakeJustifier{}, creator).
		Submit(context.Background(), okRequest(), testLedger(t, 500, [2]int64{1, 0}), figures(100000, 0))
	require.Error(t, err)
	assert.False(t, faults.IsConfiguration(err))
	assert.ErrorIs(t, err, assert.AnError)
}

func TestBuildWirePayloadDropsZeroMonths(t *testing.T) {
	led := testLedger(t, 500, [2]int64{10, 0})
	wire := BuildWirePayload(led)
	require.Len(t, wire, 1)
	assert.Equal(t, int64(101), wire[0].ProductID)
	require.Len(t, wire[0].Months, 1)
	assert.Equal(t, 1, wire[0].Months[0].Month)
	assert.Equal(t, int64(10), wire[0].Months[0].Quantity)
}
