package budget

import (
	"fmt"

	"BudgetReqSaas/internal/serviceiface"
)

type BudgetService struct {
	config map[string]interface{}
}

func NewBudgetService(cfg map[string]interface{}) serviceiface.Service {
	return &BudgetService{config: cfg}
}

func (s *BudgetService) Name() string {
	return "budget"
}

func (s *BudgetService) Start() error {
	port := "7143"
	if s.config != nil {
		switch v := s.config["port"].(type) {
		case string:
			if v != "" {
				port = v
			}
		case int:
			port = fmt.Sprintf("%d", v)
		case float64:
			port = fmt.Sprintf("%d", int(v))
		}
	}
	go StartBudgetService(port)
	return nil
}

func (s *BudgetService) Stop() error {
	// Implement stop logic if needed
	return nil
}
