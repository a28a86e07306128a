package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"ht-planning-service/internal/adapters/repositories"
	"ht-planning-service/internal/config"
	"ht-planning-service/internal/platform/db"
	"log"
	"strings"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	showRun := flag.String("run", "", "print the stored summary of this run id")
	flag.Parse()

	databaseURL := config.Get("DATABASE_URL", "")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := initSchema(db); err != nil {
		log.Fatal(err)
	}

	if *showRun != "" {
		if err := printRun(db, *showRun); err != nil {
			log.Fatal(err)
		}
	}
}

func initSchema(db *sql.DB) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(db); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Println("Schema ready.")
	return nil
}

func printRun(db *sql.DB, runID string) error {
	repo := repositories.NewSQLOutcomeRepository(db)
	run, err := repo.GetRun(context.Background(), runID)
	if err != nil {
		return err
	}
	fmt.Printf("%s status=%s jobs=%d completed=%d makespan=%d fingerprint=%s\n",
		run.RunID, run.Status, run.Jobs, run.Completed, run.Makespan, run.Fingerprint)
	return nil
}
