package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/pageza/masterchef/backend/config"
	"github.com/pageza/masterchef/backend/internal/database"
	"github.com/pageza/masterchef/backend/internal/logging"
)

func main() {
	// Parse command line flags
	up := flag.Bool("up", true, "Apply all pending migrations (default)")
	down := flag.Bool("down", false, "Rollback the last migration")
	version := flag.Bool("version", false, "Print the current migration version")
	flag.Parse()

	act, err := chooseAction(*up, *down, *version)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		os.Exit(2)
	}

	logger, err := logging.New(os.Getenv("LOG_LEVEL"), "console", "masterchef-migrate", os.Getenv("ENV"))
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		cfg, err := config.LoadConfig()
		if err != nil {
			logger.Fatal("DATABASE_URL is not set and config could not be loaded", zap.Error(err))
		}
		if cfg.DBDriver != "postgres" {
			logger.Fatal("migrations only run against postgres; sqlite is migrated by the API on startup")
		}
		dsn = cfg.PostgresURL()
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}

	m, err := database.NewMigrator(db, logger)
	if err != nil {
		_ = db.Close()
		logger.Fatal("failed to create migrator", zap.Error(err))
	}
	defer func() {
		if err := m.Close(); err != nil {
			logger.Warn("failed to close migrator", zap.Error(err))
		}
	}()

	switch act {
	case actionVersion:
		v, dirty, err := m.Version()
		if err != nil {
			logger.Fatal("failed to read version", zap.Error(err))
		}
		fmt.Printf("version %d (dirty: %t)\n", v, dirty)
	case actionDown:
		if err := m.Down(); err != nil {
			logger.Fatal("rollback failed", zap.Error(err))
		}
	case actionUp:
		if err := m.Up(); err != nil {
			logger.Fatal("migration failed", zap.Error(err))
		}
	}
}

type action string

const (
	actionUp      action = "up"
	actionDown    action = "down"
	actionVersion action = "version"
)

// chooseAction picks what to run; -version wins over -down, which wins over -up
func chooseAction(up, down, version bool) (action, error) {
	switch {
	case version:
		return actionVersion, nil
	case down:
		return actionDown, nil
	case up:
		return actionUp, nil
	}
	return "", errors.New("nothing to do: pass -up, -down or -version")
}
