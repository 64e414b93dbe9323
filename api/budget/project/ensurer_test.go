package project

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BudgetReqSaas/api/budget/faults"
)

type fakeRow struct {
	scan func(dest ...any) error
}

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

type projRow struct {
	id       int64
	year     int
	ceiling  int64
	area     *int64
	assigned float64
	used     float64
	desc     string
}

// fakeDB emulates the two statements the ensurer issues, including the
// ON CONFLICT arbitration on (year, ceiling_id).
type fakeDB struct {
	mu       sync.Mutex
	ceilings map[int64]struct {
		assigned float64
		area     *int64
	}
	projects map[[2]int64]*projRow
	nextID   int64
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		ceilings: map[int64]struct {
			assigned float64
			area     *int64
		}{},
		projects: map[[2]int64]*projRow{},
	}
}

func (f *fakeDB) addCeiling(id int64, assigned float64, area *int64) {
	f.ceilings[id] = struct {
		assigned float64
		area     *int64
	}{assigned, area}
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case strings.HasPrefix(sql, "SELECT assigned_amount"):
		ceilingID := args[0].(int64)
		c, ok := f.ceilings[ceilingID]
		return fakeRow{scan: func(dest ...any) error {
			if !ok {
				return pgx.ErrNoRows
			}
			*dest[0].(*float64) = c.assigned
			*dest[1].(**int64) = c.area
			return nil
		}}

	case strings.HasPrefix(sql, "INSERT INTO annual_project"):
		year := args[0].(int)
		ceilingID := args[1].(int64)
		area, _ := args[2].(*int64)
		assigned := args[3].(float64)

		key := [2]int64{int64(year), ceilingID}
		row, exists := f.projects[key]
		if !exists {
			f.nextID++
			row = &projRow{id: f.nextID, year: year, ceiling: ceilingID, area: area, assigned: assigned}
			f.projects[key] = row
		}
		created := !exists
		return fakeRow{scan: func(dest ...any) error {
			*dest[0].(*int64) = row.id
			*dest[1].(*int) = row.year
			*dest[2].(*int64) = row.ceiling
			*dest[3].(**int64) = row.area
			*dest[4].(*float64) = row.assigned
			*dest[5].(*float64) = row.used
			*dest[6].(*string) = row.desc
			*dest[7].(*bool) = created
			return nil
		}}

	case strings.HasPrefix(sql, "SELECT project_id"):
		ceilingID := args[0].(int64)
		year := args[1].(int)
		row, ok := f.projects[[2]int64{int64(year), ceilingID}]
		return fakeRow{scan: func(dest ...any) error {
			if !ok {
				return pgx.ErrNoRows
			}
			*dest[0].(*int64) = row.id
			*dest[1].(*int) = row.year
			*dest[2].(*int64) = row.ceiling
			*dest[3].(**int64) = row.area
			*dest[4].(*float64) = row.assigned
			*dest[5].(*float64) = row.used
			*dest[6].(*string) = row.desc
			return nil
		}}
	}
	return fakeRow{scan: func(dest ...any) error { return pgx.ErrNoRows }}
}

func TestEnsureCreatesOnFirstTouch(t *testing.T) {
	db := newFakeDB()
	area := int64(5)
	db.addCeiling(7, 100000, &area)

	p, created, err := NewEnsurer(db).Ensure(context.Background(), 7, 2026)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(7), p.CeilingID)
	assert.Equal(t, 2026, p.Year)
	assert.True(t, p.Used.IsZero())
	assert.Equal(t, "100000", p.Assigned.String())
	assert.Equal(t, "100000", p.Available().String())
	require.NotNil(t, p.AreaID)
	assert.Equal(t, int64(5), *p.AreaID)
}

func TestEnsureIsIdempotent(t *testing.T) {
	db := newFakeDB()
	db.addCeiling(7, 50000, nil)
	e := NewEnsurer(db)

	first, created, err := e.Ensure(context.Background(), 7, 2026)
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := e.Ensure(context.Background(), 7, 2026)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, db.projects, 1)
}

// Concurrent ensure against the same ceiling must leave exactly one row.
func TestEnsureConcurrent(t *testing.T) {
	db := newFakeDB()
	db.addCeiling(7, 50000, nil)
	e := NewEnsurer(db)

	const callers = 8
	ids := make([]int64, callers)
	createdCount := 0
	var mu sync.Mutex
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, created, err := e.Ensure(context.Background(), 7, 2026)
			assert.NoError(t, err)
			mu.Lock()
			ids[i] = p.ID
			if created {
				createdCount++
			}
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	assert.Len(t, db.projects, 1)
	assert.Equal(t, 1, createdCount)
	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

func TestEnsureUnknownCeiling(t *testing.T) {
	_, _, err := NewEnsurer(newFakeDB()).Ensure(context.Background(), 99, 2026)
	assert.True(t, faults.IsConfiguration(err))
}

func TestEnsureRejectsNonPositiveCeiling(t *testing.T) {
	_, _, err := NewEnsurer(newFakeDB()).Ensure(context.Background(), 0, 2026)
	assert.True(t, faults.IsConfiguration(err))
}

func TestGetDoesNotCreate(t *testing.T) {
	db := newFakeDB()
	db.addCeiling(7, 50000, nil)

	_, err := Get(context.Background(), db, 7, 2026)
	assert.True(t, faults.IsConfiguration(err))
	assert.Empty(t, db.projects)
}
