package justification

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BudgetReqSaas/api/budget/faults"
	"BudgetReqSaas/api/constants"
)

type key struct{ partida, area, ceiling int64 }

// memStore emulates the (partida, area, ceiling) upsert keyed last-write-wins.
type memStore struct {
	mu   sync.Mutex
	rows map[key]Justification
	fail map[int64]error // partida id → forced error
}

func newMemStore() *memStore {
	return &memStore{rows: map[key]Justification{}, fail: map[int64]error{}}
}

func (s *memStore) Upsert(ctx context.Context, j Justification) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err, ok := s.fail[j.PartidaID]; ok {
		return false, err
	}
	k := key{j.PartidaID, j.AreaID, j.CeilingID}
	_, exists := s.rows[k]
	s.rows[k] = j
	return !exists, nil
}

func TestUpsertAllCreatesThenUpdates(t *testing.T) {
	store := newMemStore()
	u := NewUpserter(store)
	ctx := context.Background()

	res, err := u.UpsertAll(ctx, []int64{10}, 5, 7, "A", "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 0, res.Updated)

	res, err = u.UpsertAll(ctx, []int64{10}, 5, 7, "B", "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, res.Created)
	assert.Equal(t, 1, res.Updated, "second write must report created=false")

	assert.Len(t, store.rows, 1, "no duplicate row for the same triple")
	assert.Equal(t, "B", store.rows[key{10, 5, 7}].Text, "last write wins")
}

func TestUpsertAllDeduplicatesPartidas(t *testing.T) {
	store := newMemStore()
	res, err := NewUpserter(store).UpsertAll(context.Background(), []int64{10, 10, 12, 10}, 5, 7, "x", "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Created)
	assert.Len(t, store.rows, 2)
}

func TestUpsertAllPreconditions(t *testing.T) {
	u := NewUpserter(newMemStore())
	ctx := context.Background()

	_, err := u.UpsertAll(ctx, []int64{10}, 5, 0, "x", "u1")
	assert.True(t, faults.IsConfiguration(err))

	_, err = u.UpsertAll(ctx, []int64{10}, 5, -4, "x", "u1")
	assert.True(t, faults.IsConfiguration(err))

	_, err = u.UpsertAll(ctx, []int64{10}, 0, 7, "x", "u1")
	assert.True(t, faults.IsConfiguration(err))

	_, err = u.UpsertAll(ctx, []int64{10}, 5, constants.ReservedCeilingID, "x", "u1")
	assert.True(t, faults.IsConfiguration(err), "the reserved ceiling id is rejected before any write")

	_, err = u.UpsertAll(ctx, []int64{10}, 5, 7, "  ", "u1")
	assert.True(t, faults.IsValidation(err))

	_, err = u.UpsertAll(ctx, []int64{10, -1}, 5, 7, "x", "u1")
	assert.True(t, faults.IsValidation(err))
}

func TestUpsertAllToleratesNonCriticalFailures(t *testing.T) {
	store := newMemStore()
	store.fail[12] = errors.New("connection reset by peer")

	res, err := NewUpserter(store).UpsertAll(context.Background(), []int64{10, 12, 14}, 5, 7, "x", "u1")
	require.NoError(t, err, "a non-critical failure must not block the submission")
	assert.Equal(t, 2, res.Created)
	require.NotNil(t, res.Partial)
	require.Len(t, res.Partial.Failed, 1)
	assert.Equal(t, int64(12), res.Partial.Failed[0].PartidaID)
	assert.Equal(t, int64(5), res.Partial.Failed[0].AreaID)
	assert.Equal(t, int64(7), res.Partial.Failed[0].CeilingID)
}

func TestUpsertAllEscalatesForeignKeyViolation(t *testing.T) {
	store := newMemStore()
	store.fail[12] = &pgconn.PgError{Code: "23503", Message: "fk violation on ceiling_id"}

	_, err := NewUpserter(store).UpsertAll(context.Background(), []int64{10, 12, 14}, 5, 7, "x", "u1")
	require.Error(t, err, "a foreign-key failure aborts the overall submission")

	var pgErr *pgconn.PgError
	assert.True(t, errors.As(err, &pgErr))
}
