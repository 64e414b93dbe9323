package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"

	"BudgetReqSaas/internal/config"
	"BudgetReqSaas/internal/logger"
)

// ReconciliationConfig holds configuration for the nightly budget audit
type ReconciliationConfig struct {
	Schedule  string
	BatchSize int
	TimeZone  string
}

func NewDefaultReconciliationConfig() *ReconciliationConfig {
	return &ReconciliationConfig{
		Schedule:  config.DefaultReconciliationSchedule,
		BatchSize: config.ReconciliationBatchSize,
		TimeZone:  config.DefaultTimeZone,
	}
}

// RunReconciliationScheduler starts the cron job that audits annual-project
// usage against the requisition ledger
func RunReconciliationScheduler(cfg *ReconciliationConfig, db *pgxpool.Pool) error {
	if cfg.Schedule == "" {
		cfg.Schedule = config.DefaultReconciliationSchedule
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = config.ReconciliationBatchSize
	}
	if cfg.TimeZone == "" {
		cfg.TimeZone = config.DefaultTimeZone
	}

	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		loc = time.UTC
	}

	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.Schedule, func() {
		if err := ReconcileProjectUsage(db, cfg.BatchSize); err != nil {
			logger.GlobalLogger.LogError(fmt.Sprintf("Budget reconciliation failed: %v", err))
		}
		if err := ReportOrphanedJustifications(db); err != nil {
			logger.GlobalLogger.LogError(fmt.Sprintf("Orphaned justification check failed: %v", err))
		}
	})

	if err != nil {
		return fmt.Errorf("unable to schedule budget reconciliation: %v", err)
	}

	c.Start()
	logger.GlobalLogger.LogAudit("Budget reconciliation scheduler started")

	return nil
}

// ReconcileProjectUsage compares each annual project's used_amount with the
// sum of its persisted requisition totals and reports any drift. It never
// mutates the data: a drift means some write path skipped the batch-create
// transaction and has to be investigated, not papered over.
func ReconcileProjectUsage(db *pgxpool.Pool, batchSize int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	query := `
		SELECT
			ap.project_id,
			ap.year,
			ap.ceiling_id,
			ap.used_amount::float8,
			COALESCE(SUM(r.total), 0)::float8
		FROM annual_project ap
		LEFT JOIN requisition r ON r.ceiling_id = ap.ceiling_id
			AND EXTRACT(YEAR FROM r.created_at)::int = ap.year
		GROUP BY ap.project_id, ap.year, ap.ceiling_id, ap.used_amount
		ORDER BY ap.project_id
		LIMIT $1
	`

	rows, err := db.Query(ctx, query, batchSize)
	if err != nil {
		return fmt.Errorf("reconciliation query failed: %w", err)
	}
	defer rows.Close()

	checked := 0
	drifted := 0
	for rows.Next() {
		var projectID, ceilingID int64
		var year int
		var usedF, sumF float64
		if err := rows.Scan(&projectID, &year, &ceilingID, &usedF, &sumF); err != nil {
			continue
		}
		checked++
		used := decimal.NewFromFloat(usedF)
		sum := decimal.NewFromFloat(sumF)
		if !used.Equal(sum) {
			drifted++
			logger.GlobalLogger.LogError(fmt.Sprintf(
				"[Reconciliation] project=%d year=%d ceiling=%d used_amount=%s requisition_sum=%s drift=%s",
				projectID, year, ceilingID, used.String(), sum.String(), used.Sub(sum).String()))
		}
	}

	logger.GlobalLogger.LogAudit(fmt.Sprintf(
		"[Reconciliation] checked %d annual projects, %d drifted", checked, drifted))
	return nil
}

// ReportOrphanedJustifications flags justification rows whose ceiling no
// longer exists. These appear when ceilings are retired mid-year.
func ReportOrphanedJustifications(db *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	rows, err := db.Query(ctx, `
		SELECT j.justification_id, j.partida_id, j.area_id, j.ceiling_id
		FROM justification j
		LEFT JOIN budget_ceiling bc ON bc.ceiling_id = j.ceiling_id
		WHERE bc.ceiling_id IS NULL
		ORDER BY j.justification_id`)
	if err != nil {
		return fmt.Errorf("orphan query failed: %w", err)
	}
	defer rows.Close()

	orphans := 0
	for rows.Next() {
		var id, partidaID, areaID, ceilingID int64
		if err := rows.Scan(&id, &partidaID, &areaID, &ceilingID); err != nil {
			continue
		}
		orphans++
		logger.GlobalLogger.LogError(fmt.Sprintf(
			"[Reconciliation] orphaned justification id=%d partida=%d area=%d ceiling=%d",
			id, partidaID, areaID, ceilingID))
	}
	if orphans > 0 {
		logger.GlobalLogger.LogAudit(fmt.Sprintf("[Reconciliation] %d orphaned justifications found", orphans))
	}
	return nil
}
