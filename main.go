package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"pennywise/backend/api"
	"pennywise/backend/backend"
	"pennywise/backend/database"
	"pennywise/backend/feed"
	"pennywise/backend/middleware"
	"pennywise/backend/services"
)

func main() {
	noExit := flag.Bool("no-exit", false, "Don't exit after database reset")
	resetDB := flag.Bool("reset-db", false, "Force reset the local database")
	flag.Parse()

	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}

	isResetDB := os.Getenv("RESET_DB") == "true" || *resetDB

	cfg := backend.ConfigFromEnv()
	log.Printf("Using %s collection backend", cfg.Type)

	if cfg.Type == backend.SQLBackend {
		if err := database.InitDB(); err != nil {
			log.Fatal(err)
		}
		if isResetDB {
			log.Println("Running in database reset mode")
			if err := database.ResetDB(); err != nil {
				log.Fatal(err)
			}
			if !*noExit {
				log.Println("Database reset completed successfully. Exiting.")
				return
			}
		}
	}

	coll, err := backend.New(context.Background(), cfg)
	if err != nil {
		log.Fatal(err)
	}

	log.Println("Initializing Firebase Admin SDK...")
	if err := middleware.InitializeFirebase(); err != nil {
		log.Printf("Warning: Failed to initialize Firebase: %v", err)
		log.Println("Auth token verification will be disabled!")
	}

	feeds := feed.NewManager(coll)
	defer feeds.Close()
	store := services.NewStore(coll)

	srv := api.NewServer(store, feeds)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	httpSrv := &http.Server{
		Handler:      srv.Handler(),
		Addr:         ":" + port,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	log.Printf("Starting server on port %s...", port)
	log.Fatal(httpSrv.ListenAndServe())
}
