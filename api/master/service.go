package master

import (
	"fmt"

	"BudgetReqSaas/internal/serviceiface"
)

type MasterService struct {
	config map[string]interface{}
}

func NewMasterService(cfg map[string]interface{}) serviceiface.Service {
	return &MasterService{config: cfg}
}

func (s *MasterService) Name() string {
	return "master"
}

func (s *MasterService) Start() error {
	port := "7243"
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
	go StartMasterService(port)
	return nil
}

func (s *MasterService) Stop() error {
	// Implement stop logic if needed
	return nil
}
