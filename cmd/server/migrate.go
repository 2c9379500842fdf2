package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/urfave/cli/v3"

	"github.com/mmynk/ourledger/internal/storage/sqlite"
	"github.com/mmynk/ourledger/pkg/logging"
)

var cmdMigrate = &cli.Command{
	Name:  "migrate",
	Usage: "Database migration commands",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "db-path",
			Sources: cli.EnvVars("DB_PATH"),
			Value:   "./data/ourledger.db",
			Usage:   "path to the SQLite database file",
		},
	},
	Commands: []*cli.Command{
		{
			Name:   "up",
			Usage:  "Run all pending migrations",
			Action: migrateUp,
		},
		{
			Name:   "down",
			Usage:  "Roll back the last migration",
			Action: migrateDown,
		},
		{
			Name:   "status",
			Usage:  "Show migration status",
			Action: migrateStatus,
		},
		{
			Name:   "version",
			Usage:  "Print the current version of the database",
			Action: migrateVersion,
		},
	},
}

func openDB(cmd *cli.Command) (*sql.DB, error) {
	logging.Setup(os.Stderr, slog.LevelInfo)

	dbPath := cmd.String("db-path")
	if dbPath == "" {
		return nil, fmt.Errorf("db-path is required (set via --db-path or DB_PATH env var)")
	}
	return sqlite.Open(dbPath)
}

func migrateUp(ctx context.Context, cmd *cli.Command) error {
	db, err := openDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := sqlite.MigrateUp(ctx, db); err != nil {
		return err
	}

	fmt.Println("Migrations completed successfully")
	return nil
}

func migrateDown(ctx context.Context, cmd *cli.Command) error {
	db, err := openDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := sqlite.MigrateDown(ctx, db); err != nil {
		return err
	}

	fmt.Println("Migration rolled back successfully")
	return nil
}

func migrateStatus(ctx context.Context, cmd *cli.Command) error {
	db, err := openDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	status, err := sqlite.MigrationStatus(ctx, db)
	if err != nil {
		return err
	}

	fmt.Printf("%-8s %-40s %s\n", "Version", "Migration", "Applied At")
	for _, st := range status {
		appliedAt := "pending"
		if st.State == goose.StateApplied {
			appliedAt = st.AppliedAt.Format(time.RFC3339)
		}
		fmt.Printf("%-8d %-40s %s\n", st.Source.Version, filepath.Base(st.Source.Path), appliedAt)
	}
	return nil
}

func migrateVersion(ctx context.Context, cmd *cli.Command) error {
	db, err := openDB(cmd)
	if err != nil {
		return err
	}
	defer db.Close()

	version, err := sqlite.MigrationVersion(ctx, db)
	if err != nil {
		return err
	}

	fmt.Printf("Database version: %d\n", version)
	return nil
}
