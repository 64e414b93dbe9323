package master

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"

	budgetMaster "BudgetReqSaas/api/master/budgetMasters"
	middlewares "BudgetReqSaas/api/middlewares"
)

func StartMasterService(port string) {
	r := mux.NewRouter()
	r.HandleFunc("/master/health", func(w http.ResponseWriter, req *http.Request) {
		w.Write([]byte("Master Service is active"))
	}).Methods(http.MethodGet)

	user := os.Getenv("DB_USER")
	pass := os.Getenv("DB_PASSWORD")
	host := os.Getenv("DB_HOST")
	dbPort := os.Getenv("DB_PORT")
	name := os.Getenv("DB_NAME")
	if user != "" && pass != "" && host != "" && dbPort != "" && name != "" {
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", user, pass, host, dbPort, name)

		pgxPool, err := pgxpool.New(context.Background(), dsn)
		if err != nil {
			log.Fatalf("failed to connect to pgxpool DB: %v", err)
		}

		preValid := middlewares.PreValidationMiddleware(pgxPool)

		r.Handle("/master/area/create", preValid(budgetMaster.CreateAreaMaster(pgxPool))).Methods(http.MethodPost)
		r.Handle("/master/area/all", preValid(budgetMaster.GetAllAreaMaster(pgxPool))).Methods(http.MethodPost)
		r.Handle("/master/area/update", preValid(budgetMaster.UpdateAreaMaster(pgxPool))).Methods(http.MethodPost)

		r.Handle("/master/ceiling/create", preValid(budgetMaster.CreateCeilingMaster(pgxPool))).Methods(http.MethodPost)
		r.Handle("/master/ceiling/all", preValid(budgetMaster.GetAllCeilingMaster(pgxPool))).Methods(http.MethodPost)
		r.Handle("/master/ceiling/update", preValid(budgetMaster.UpdateCeilingMaster(pgxPool))).Methods(http.MethodPost)

		r.Handle("/master/partida/create", preValid(budgetMaster.CreatePartidaMaster(pgxPool))).Methods(http.MethodPost)
		r.Handle("/master/partida/all", preValid(budgetMaster.GetAllPartidaMaster(pgxPool))).Methods(http.MethodPost)

		r.Handle("/master/product/create", preValid(budgetMaster.CreateProductMaster(pgxPool))).Methods(http.MethodPost)
		r.Handle("/master/product/all", preValid(budgetMaster.GetAllProductMaster(pgxPool))).Methods(http.MethodPost)
		r.Handle("/master/product/update", preValid(budgetMaster.UpdateProductMaster(pgxPool))).Methods(http.MethodPost)
	} else {
		log.Println("DB environment variables not set; master routes not registered")
	}

	log.Printf("Master Service started on :%s", port)
	err := http.ListenAndServe(":"+port, r)
	if err != nil {
		log.Fatalf("Master Service failed: %v", err)
	}
}
