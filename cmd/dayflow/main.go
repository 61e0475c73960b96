// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/config"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/database"
	"github.com/KushalvDesai/DAYFLOW-odooxGCET/internal/server"
	"github.com/urfave/cli/v3"
	"github.com/vinovest/sqlx"
)

// Version information (set via ldflags during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	cmd := &cli.Command{
		Name:    "dayflow",
		Usage:   "DayFlow HR backend",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
		Flags:   config.Flags(),
		Action:  server.Run,
		Commands: []*cli.Command{
			migrateCommand(),
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Manage the database schema",
		Commands: []*cli.Command{
			{
				Name:   "up",
				Usage:  "Apply all pending migrations",
				Action: withDB(database.RunMigrations),
			},
			{
				Name:   "down",
				Usage:  "Roll back the last migration",
				Action: withDB(database.MigrateDown),
			},
			{
				Name:   "reset",
				Usage:  "Roll back all migrations",
				Action: withDB(database.MigrateReset),
			},
			{
				Name:  "status",
				Usage: "Print the applied schema version",
				Action: withDB(func(db *sqlx.DB) error {
					version, err := database.MigrationVersion(db)
					if err != nil {
						return err
					}
					fmt.Printf("schema version: %d\n", version)
					return nil
				}),
			},
		},
	}
}

// withDB connects without migrating and runs fn.
func withDB(fn func(db *sqlx.DB) error) cli.ActionFunc {
	return func(_ context.Context, cmd *cli.Command) error {
		cfg := config.NewFromCLI(cmd)
		db, err := database.Connect(cfg.Database.DSN)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer func() { _ = db.Close() }()

		return fn(db)
	}
}
