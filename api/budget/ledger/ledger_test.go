package ledger

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BudgetReqSaas/api/budget/faults"
)

func penProduct() Product {
	return Product{ID: 101, PartidaID: 21101, Name: "Ballpoint pen", UnitPrice: decimal.NewFromInt(500)}
}

func months(pairs ...[2]int64) [12]int64 {
	var m [12]int64
	for _, p := range pairs {
		m[p[0]-1] = p[1]
	}
	return m
}

func figures(assigned, used, available int64) ProjectFigures {
	return ProjectFigures{
		Assigned:  decimal.NewFromInt(assigned),
		Used:      decimal.NewFromInt(used),
		Available: decimal.NewFromInt(available),
	}
}

func TestAddDerivesTotalQuantity(t *testing.T) {
	l, merged, err := New().Add(penProduct(), months([2]int64{1, 10}, [2]int64{2, 10}))
	require.NoError(t, err)
	assert.False(t, merged)

	sels := l.Selections()
	require.Len(t, sels, 1)
	assert.Equal(t, int64(20), sels[0].TotalQuantity)

	var sum int64
	for _, q := range sels[0].Months {
		sum += q
	}
	assert.Equal(t, sels[0].TotalQuantity, sum)
}

func TestAddRejectsZeroAndNegativeVectors(t *testing.T) {
	_, _, err := New().Add(penProduct(), [12]int64{})
	assert.True(t, faults.IsValidation(err))

	_, _, err = New().Add(penProduct(), months([2]int64{3, -1}))
	assert.True(t, faults.IsValidation(err))

	_, _, err = New().Add(Product{ID: 0}, months([2]int64{1, 1}))
	assert.True(t, faults.IsValidation(err))
}

func TestReAddingSameProductMergesVectors(t *testing.T) {
	l, _, err := New().Add(penProduct(), months([2]int64{1, 10}))
	require.NoError(t, err)
	l, merged, err := l.Add(penProduct(), months([2]int64{1, 5}, [2]int64{6, 3}))
	require.NoError(t, err)
	assert.True(t, merged)

	sels := l.Selections()
	require.Len(t, sels, 1, "re-adding must never create a second line")
	assert.Equal(t, int64(15), sels[0].Months[0])
	assert.Equal(t, int64(3), sels[0].Months[5])
	assert.Equal(t, int64(18), sels[0].TotalQuantity)
}

func TestAddIsImmutable(t *testing.T) {
	base := New()
	l1, _, err := base.Add(penProduct(), months([2]int64{1, 10}))
	require.NoError(t, err)
	_, _, err = l1.Add(penProduct(), months([2]int64{2, 4}))
	require.NoError(t, err)

	assert.Equal(t, 0, base.Len())
	assert.Equal(t, int64(10), l1.Selections()[0].TotalQuantity, "merge must not mutate the prior value")
}

func TestRemove(t *testing.T) {
	l, _, err := New().Add(penProduct(), months([2]int64{1, 10}))
	require.NoError(t, err)
	tempID := l.Selections()[0].TempID

	l2, err := l.Remove(tempID)
	require.NoError(t, err)
	assert.Equal(t, 0, l2.Len())
	assert.Equal(t, 1, l.Len())

	// removing frees the product slot for a fresh line
	l3, merged, err := l2.Add(penProduct(), months([2]int64{4, 2}))
	require.NoError(t, err)
	assert.False(t, merged)
	assert.Equal(t, 1, l3.Len())

	_, err = l2.Remove("nope")
	assert.True(t, faults.IsValidation(err))
}

func TestEditCommitReplacesVector(t *testing.T) {
	l, _, err := New().Add(penProduct(), months([2]int64{1, 10}, [2]int64{2, 10}))
	require.NoError(t, err)
	tempID := l.Selections()[0].TempID

	buf, err := l.BeginEdit(tempID)
	require.NoError(t, err)
	require.NoError(t, buf.SetMonth(1, 4))
	require.NoError(t, buf.SetMonth(2, 0))
	require.NoError(t, buf.SetMonth(12, 6))

	l2, err := l.CommitEdit(buf)
	require.NoError(t, err)
	sel := l2.Selections()[0]
	assert.Equal(t, tempID, sel.TempID)
	assert.Equal(t, int64(10), sel.TotalQuantity)
	assert.Equal(t, [12]int64{4, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 6}, sel.Months)

	// the original snapshot is untouched
	assert.Equal(t, int64(20), l.Selections()[0].TotalQuantity)
}

func TestEditCancelDiscardsOnlyTheBuffer(t *testing.T) {
	l, _, err := New().Add(penProduct(), months([2]int64{1, 10}))
	require.NoError(t, err)
	tempID := l.Selections()[0].TempID

	buf, err := l.BeginEdit(tempID)
	require.NoError(t, err)
	require.NoError(t, buf.SetMonth(1, 99))
	// cancel == never committing; stored selection is unchanged
	assert.Equal(t, int64(10), l.Selections()[0].TotalQuantity)

	assert.Error(t, buf.SetMonth(0, 1))
	assert.Error(t, buf.SetMonth(13, 1))
	assert.Error(t, buf.SetMonth(2, -1))
}

func TestEditCommitRejectsZeroedVector(t *testing.T) {
	l, _, err := New().Add(penProduct(), months([2]int64{1, 10}))
	require.NoError(t, err)
	buf, err := l.BeginEdit(l.Selections()[0].TempID)
	require.NoError(t, err)
	require.NoError(t, buf.SetMonth(1, 0))
	_, err = l.CommitEdit(buf)
	assert.True(t, faults.IsValidation(err))
}

func TestReactiveModeIsDerived(t *testing.T) {
	l := New()
	assert.False(t, l.ReactiveMode())

	l, _, err := l.Add(penProduct(), months([2]int64{1, 1}))
	require.NoError(t, err)
	assert.Equal(t, l.Len() > 0 && l.RequisitionTotal().GreaterThan(decimal.Zero), l.ReactiveMode())
	assert.True(t, l.ReactiveMode())

	// a free product keeps the ledger in static mode
	free := Product{ID: 7, PartidaID: 21102, Name: "Sample", UnitPrice: decimal.Zero}
	l2, _, err := New().Add(free, months([2]int64{1, 5}))
	require.NoError(t, err)
	assert.False(t, l2.ReactiveMode())
}

func TestStaticModeShowsPersistedAvailableVerbatim(t *testing.T) {
	p := figures(100000, 20000, 80000)
	l := New()
	assert.True(t, l.DisplayAvailable(p).Equal(decimal.NewFromInt(80000)))
	assert.False(t, l.ExceedsBudget(p))
}

// Scenario: ceiling assigned 100000, used 20000; product priced 500 at
// qty 10/month for 2 months.
func TestReactiveProjectionWithinBudget(t *testing.T) {
	p := figures(100000, 20000, 80000)
	l, _, err := New().Add(penProduct(), months([2]int64{1, 10}, [2]int64{2, 10}))
	require.NoError(t, err)

	assert.True(t, l.RequisitionTotal().Equal(decimal.NewFromInt(10000)))
	assert.True(t, l.DisplayAvailable(p).Equal(decimal.NewFromInt(70000)))
	assert.False(t, l.ExceedsBudget(p))
}

// Scenario: same ceiling, pending cost 85000 → projection goes negative.
func TestReactiveProjectionOverBudget(t *testing.T) {
	p := figures(100000, 20000, 80000)
	costly := Product{ID: 55, PartidaID: 24601, Name: "Toner", UnitPrice: decimal.NewFromInt(17000)}
	l, _, err := New().Add(costly, months([2]int64{3, 5}))
	require.NoError(t, err)

	assert.True(t, l.RequisitionTotal().Equal(decimal.NewFromInt(85000)))
	assert.True(t, l.DisplayAvailable(p).Equal(decimal.NewFromInt(-5000)))
	assert.True(t, l.ExceedsBudget(p))
}

func TestDistinctPartidaIDs(t *testing.T) {
	a := Product{ID: 1, PartidaID: 21101, UnitPrice: decimal.NewFromInt(10)}
	b := Product{ID: 2, PartidaID: 21101, UnitPrice: decimal.NewFromInt(20)}
	c := Product{ID: 3, PartidaID: 24601, UnitPrice: decimal.NewFromInt(30)}

	l := New()
	var err error
	for _, p := range []Product{a, b, c} {
		l, _, err = l.Add(p, months([2]int64{1, 1}))
		require.NoError(t, err)
	}
	assert.Equal(t, []int64{21101, 24601}, l.DistinctPartidaIDs())
}
