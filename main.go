package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/corsairgame/corsair-core/api"
	"github.com/corsairgame/corsair-core/db"
	"github.com/corsairgame/corsair-core/db/sqlc"
	mc "github.com/corsairgame/corsair-core/models/connection"
	"github.com/corsairgame/corsair-core/pkg/logger"
)

const defaultPort = "8000"

func main() {
	if os.Getenv("STAGE") != "prod" {
		if err := godotenv.Load(".env"); err != nil {
			panic(err)
		}
	}
	logger.Init()

	psqlUrl := os.Getenv("PSQL_URL")
	psqlDb := db.MustConnectToDb(psqlUrl)
	defer psqlDb.Close()

	querier := sqlc.New(psqlDb)

	sessionManager := mc.NewCorsairSessionManager()
	go sessionManager.CleanupPeriodically()

	rp := api.NewRequestProcessor(sessionManager, querier)
	go rp.PurgeExpiredPeriodically()

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	mux := http.NewServeMux()
	mux.Handle("GET /corsair", rp)

	logger.Log.Infof("corsair sync server listening on port %s...", port)
	if err := http.ListenAndServe(":"+port, mux); err != nil {
		log.Fatalln(err)
	}
}
