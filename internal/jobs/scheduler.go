package jobs

import (
	"fmt"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"

	"BudgetReqSaas/internal/logger"
	"BudgetReqSaas/internal/serviceiface"
)

type CronService struct {
	config map[string]interface{}
	db     *pgxpool.Pool
}

func NewCronService(cfg map[string]interface{}, db *pgxpool.Pool) serviceiface.Service {
	return &CronService{
		config: cfg,
		db:     db,
	}
}

func (s *CronService) Name() string {
	return "cron"
}

func (s *CronService) Start() error {
	log.Println("Starting cron service...")

	reconConfig := NewDefaultReconciliationConfig()

	// Override reconciliation config from services.yaml if provided
	if s.config != nil {
		if schedule, ok := s.config["reconciliation_schedule"].(string); ok && schedule != "" {
			reconConfig.Schedule = schedule
		}
		if batchSize, ok := s.config["reconciliation_batch_size"].(int); ok && batchSize > 0 {
			reconConfig.BatchSize = batchSize
		}
	}

	err := RunReconciliationScheduler(reconConfig, s.db)
	if err != nil {
		return fmt.Errorf("failed to start reconciliation scheduler: %v", err)
	}

	logger.GlobalLogger.LogAudit("Cron service started with budget reconciliation job")
	log.Println("Cron service started — Budget Reconciliation scheduled")

	return nil
}

func (s *CronService) Stop() error {
	log.Println("Cron service stopped.")
	return nil
}
