package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/adrena/backend/config"
	"github.com/adrena/backend/internal/database"
	"github.com/adrena/backend/internal/logger"
	_ "github.com/lib/pq"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/migrate/main.go [up|down|status]")
		os.Exit(1)
	}

	command := os.Args[1]

	cfg, err := config.Load()
	if err != nil {
		logger.New("adrena-migrate", "info").WithError(err).Fatal("failed to load config")
	}
	log := logger.New("adrena-migrate", cfg.Log.Level)

	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		log.WithError(err).Fatal("failed to connect to database")
	}
	defer db.Close()

	switch command {
	case "up":
		if err := database.RunMigrations(db, log); err != nil {
			log.WithError(err).Fatal("migration failed")
		}
		log.Info("migrations completed")

	case "down":
		if err := database.RollbackLast(db, log); err != nil {
			log.WithError(err).Fatal("rollback failed")
		}
		log.Info("rolled back last migration")

	case "status":
		showMigrationStatus(db, log)

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println("Available commands: up, down, status")
		os.Exit(1)
	}
}

func showMigrationStatus(db *sql.DB, log *logger.Logger) {
	rows, err := db.Query("SELECT version, applied_at FROM schema_migrations ORDER BY version")
	if err != nil {
		log.WithError(err).Warn("no migrations found or table doesn't exist")
		return
	}
	defer rows.Close()

	applied := make(map[int]string)
	for rows.Next() {
		var version int
		var appliedAt string
		if err := rows.Scan(&version, &appliedAt); err != nil {
			log.WithError(err).Warn("failed to scan migration row")
			continue
		}
		applied[version] = appliedAt
	}

	fmt.Println("\nMigrations:")
	fmt.Println("-----------")
	for _, m := range database.Migrations {
		if at, ok := applied[m.Version]; ok {
			fmt.Printf("Version %d - applied at %s\n", m.Version, at)
		} else {
			fmt.Printf("Version %d - pending\n", m.Version)
		}
	}
}
