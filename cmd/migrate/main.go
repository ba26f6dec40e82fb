package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/example/bakery-storefront/internal/config"
)

func main() {
	flag.Parse()
	args := flag.Args()

	if len(args) < 1 {
		log.Fatal("[Migrate] usage: migrate <up|down|version>")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Migrate] Failed to load configuration: %v", err)
	}

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "file://migrations"
	}

	m, err := migrate.New(migrationsPath, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[Migrate] Failed to create migrate instance: %v", err)
	}
	defer func() { _, _ = m.Close() }()

	switch command := args[0]; command {
	case "up":
		err = m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("[Migrate] No pending migrations")
			return
		}
		if err != nil {
			log.Fatalf("[Migrate] Migration up failed: %v", err)
		}
		log.Println("[Migrate] Migrations applied")

	case "down":
		err = m.Steps(-1)
		if errors.Is(err, migrate.ErrNoChange) {
			log.Println("[Migrate] No migrations to roll back")
			return
		}
		if err != nil {
			log.Fatalf("[Migrate] Migration down failed: %v", err)
		}
		log.Println("[Migrate] Migration rolled back")

	case "version":
		version, dirty, err := m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			log.Println("[Migrate] No migrations applied yet")
			return
		}
		if err != nil {
			log.Fatalf("[Migrate] Failed to get version: %v", err)
		}
		log.Printf("[Migrate] Version %d (dirty: %t)", version, dirty)

	default:
		log.Fatalf("[Migrate] Unknown command: %s", command)
	}
}
