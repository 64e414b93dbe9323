package budget

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	"BudgetReqSaas/api/budget/area"
	"BudgetReqSaas/api/budget/justification"
	"BudgetReqSaas/api/budget/partida"
	"BudgetReqSaas/api/budget/project"
	"BudgetReqSaas/api/budget/requisition"
	middlewares "BudgetReqSaas/api/middlewares"
)

func StartBudgetService(port string) {
	mux := http.NewServeMux()
	mux.HandleFunc("/budget/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Budget Service is active"))
	})

	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASSWORD")
	host := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	name := os.Getenv("DB_NAME")
	if user != "" && pass != "" && host != "" && dbPort != "" && name != "" {
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, pass, host, dbPort, name)

		// one shared pgx pool for all budget handlers and the prevalidation middleware
		pgxPool, err := pgxpool.New(context.Background(), dsn)
		if err != nil {
			log.Fatalf("failed to connect to pgxpool DB: %v", err)
		}

		preValid := middlewares.PreValidationMiddleware(pgxPool)

		mux.Handle("/budget/area/resolve", preValid(area.ResolveArea(pgxPool)))
		mux.Handle("/budget/partida/catalog", preValid(partida.GetCatalog(pgxPool)))
		mux.Handle("/budget/partida/products", preValid(partida.GetProductsByPartida(pgxPool)))
		mux.Handle("/budget/project/ensure", preValid(project.EnsureProject(pgxPool)))
		mux.Handle("/budget/project/get", preValid(project.GetProject(pgxPool)))
		mux.Handle("/budget/justification/upsert", preValid(justification.UpsertJustifications(pgxPool)))
		mux.Handle("/budget/justification/get", preValid(justification.GetJustification(pgxPool)))
		mux.Handle("/budget/requisition/submit", preValid(requisition.SubmitRequisitions(pgxPool)))
		mux.Handle("/budget/requisition/all", preValid(requisition.GetRequisitions(pgxPool)))
		mux.Handle("/budget/requisition/export", preValid(requisition.ExportRequisitions(pgxPool)))
	} else {
		log.Println("DB environment variables not set; budget routes not registered")
	}

	log.Printf("Budget Service started on :%s", port)
	err := http.ListenAndServe(":"+port, mux)
	if err != nil {
		log.Fatalf("Budget Service failed: %v", err)
	}
}
