package justification

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"BudgetReqSaas/api/budget/faults"
	"BudgetReqSaas/api/constants"
	"BudgetReqSaas/internal/logger"
)

// Justification is the free-text rationale for spending one partida against
// one (area, ceiling). Last write wins; there is no history.
type Justification struct {
	PartidaID int64
	AreaID    int64
	CeilingID int64
	Text      string
	UpdatedBy string
}

// Store persists a single justification row.
type Store interface {
	Upsert(ctx context.Context, j Justification) (created bool, err error)
}

// Queryer is the slice of pgxpool.Pool the pg-backed store needs.
type Queryer interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type pgStore struct {
	db Queryer
}

func NewStore(db Queryer) Store { return &pgStore{db: db} }

func (s *pgStore) Upsert(ctx context.Context, j Justification) (bool, error) {
	var created bool
	err := s.db.QueryRow(ctx,
		`INSERT INTO justification (partida_id, area_id, ceiling_id, justification_text, updated_by, updated_at)
		 VALUES ($1, $2, $3, $4, $5, now())
		 ON CONFLICT (partida_id, area_id, ceiling_id)
		 DO UPDATE SET justification_text = EXCLUDED.justification_text,
		               updated_by = EXCLUDED.updated_by,
		               updated_at = now()
		 RETURNING (xmax = 0)`,
		j.PartidaID, j.AreaID, j.CeilingID, j.Text, j.UpdatedBy).Scan(&created)
	return created, err
}

// Result summarizes one fan-out. Partial is non-nil when tolerated failures
// occurred; the submission still proceeds.
type Result struct {
	Created int
	Updated int
	Partial *faults.PartialFailure
}

type Upserter struct {
	store Store
}

func NewUpserter(store Store) *Upserter { return &Upserter{store: store} }

// criticalPgCodes are the Postgres error classes that mean the submission
// itself is broken (bad ceiling/area/partida reference), not a transient
// write problem. Any of these aborts the whole submission.
var criticalPgCodes = map[string]bool{
	"23503": true, // foreign_key_violation
	"23502": true, // not_null_violation
	"23514": true, // check_violation
}

func isCritical(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && criticalPgCodes[pgErr.Code]
}

// UpsertAll writes one justification per distinct partida, all concurrently;
// completion order is irrelevant and the final state is the union of the
// individual outcomes. Preconditions are checked before any network call.
func (u *Upserter) UpsertAll(ctx context.Context, partidaIDs []int64, areaID, ceilingID int64, text, userID string) (Result, error) {
	if ceilingID <= 0 {
		return Result{}, faults.NewConfigurationError("ceiling_id", ceilingID, "ceiling id must be positive")
	}
	if ceilingID == constants.ReservedCeilingID {
		return Result{}, faults.NewConfigurationError("ceiling_id", ceilingID, "ceiling id is reserved")
	}
	if areaID <= 0 {
		return Result{}, faults.NewConfigurationError("area_id", areaID, "area id must be positive")
	}
	if strings.TrimSpace(text) == "" {
		return Result{}, faults.NewValidationError("justification text is required")
	}

	distinct := make([]int64, 0, len(partidaIDs))
	seen := map[int64]bool{}
	for _, id := range partidaIDs {
		if id <= 0 {
			return Result{}, faults.NewValidationError(fmt.Sprintf("invalid partida id %d", id))
		}
		if !seen[id] {
			seen[id] = true
			distinct = append(distinct, id)
		}
	}
	sort.Slice(distinct, func(i, j int) bool { return distinct[i] < distinct[j] })

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		res      Result
		critical error
		failed   []faults.FailedUpsert
	)
	for _, partidaID := range distinct {
		wg.Add(1)
		go func(partidaID int64) {
			defer wg.Done()
			created, err := u.store.Upsert(ctx, Justification{
				PartidaID: partidaID,
				AreaID:    areaID,
				CeilingID: ceilingID,
				Text:      text,
				UpdatedBy: userID,
			})
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if isCritical(err) && critical == nil {
					critical = err
				}
				failed = append(failed, faults.FailedUpsert{
					PartidaID: partidaID,
					AreaID:    areaID,
					CeilingID: ceilingID,
					Reason:    err.Error(),
				})
				return
			}
			if created {
				res.Created++
			} else {
				res.Updated++
			}
		}(partidaID)
	}
	wg.Wait()

	if critical != nil {
		return res, &faults.ServerError{Op: "justification upsert", Err: critical}
	}
	if len(failed) > 0 {
		sort.Slice(failed, func(i, j int) bool { return failed[i].PartidaID < failed[j].PartidaID })
		res.Partial = &faults.PartialFailure{Failed: failed}
		if logger.GlobalLogger != nil {
			for _, f := range failed {
				logger.GlobalLogger.LogError(fmt.Sprintf(
					"[Justification] tolerated upsert failure partida=%d area=%d ceiling=%d: %s",
					f.PartidaID, f.AreaID, f.CeilingID, f.Reason))
			}
		}
	}
	return res, nil
}
