package area

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BudgetReqSaas/api/budget/faults"
)

type fakeSource struct {
	name   string
	id     int64
	err    error
	called bool
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) AreaID(ctx context.Context, ceilingID int64) (int64, error) {
	f.called = true
	return f.id, f.err
}

func TestResolveFirstPositiveWins(t *testing.T) {
	first := &fakeSource{name: "project", id: 5}
	second := &fakeSource{name: "ceiling", id: 9}

	id, err := NewResolver(first, second).Resolve(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
	assert.False(t, second.called, "resolution must stop at the first hit")
}

func TestResolveSkipsEmptyAndNonPositive(t *testing.T) {
	chain := NewResolver(
		&fakeSource{name: "project", id: 0},
		&fakeSource{name: "ceiling", id: -2},
		&fakeSource{name: "summary", id: 3},
	)
	id, err := chain.Resolve(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
}

func TestResolveExhaustedChainIsFatal(t *testing.T) {
	chain := NewResolver(
		&fakeSource{name: "project", id: 0},
		&fakeSource{name: "ceiling", id: 0},
		&fakeSource{name: "summary", id: 0},
	)
	_, err := chain.Resolve(context.Background(), 7)
	require.Error(t, err)
	assert.True(t, faults.IsConfiguration(err), "an unresolved area must never be defaulted")
}

func TestResolveRejectsNonPositiveCeiling(t *testing.T) {
	src := &fakeSource{name: "project", id: 5}
	_, err := NewResolver(src).Resolve(context.Background(), 0)
	assert.True(t, faults.IsConfiguration(err))
	assert.False(t, src.called)
}

func TestResolveSourceErrorAborts(t *testing.T) {
	boom := errors.New("connection refused")
	chain := NewResolver(
		&fakeSource{name: "project", err: boom},
		&fakeSource{name: "summary", id: 3},
	)
	_, err := chain.Resolve(context.Background(), 7)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.False(t, faults.IsConfiguration(err))
}

func TestSummarySourceReturnsCallerValue(t *testing.T) {
	id, err := NewSummarySource(42).AreaID(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}
