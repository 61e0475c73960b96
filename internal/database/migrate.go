// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package database

import (
	"embed"

	"github.com/pressly/goose/v3"
	"github.com/vinovest/sqlx"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

func prepareGoose(db *sqlx.DB) error {
	goose.SetBaseFS(embedMigrations)

	dialect := "sqlite3"
	if db.DriverName() == DriverPostgres {
		dialect = "postgres"
	}
	return goose.SetDialect(dialect)
}

// RunMigrations runs all pending goose migrations.
func RunMigrations(db *sqlx.DB) error {
	if err := prepareGoose(db); err != nil {
		return err
	}

	return goose.Up(db.DB, "migrations")
}

// MigrateDown rolls back the last migration.
func MigrateDown(db *sqlx.DB) error {
	if err := prepareGoose(db); err != nil {
		return err
	}

	return goose.Down(db.DB, "migrations")
}

// MigrateReset rolls back all migrations.
func MigrateReset(db *sqlx.DB) error {
	if err := prepareGoose(db); err != nil {
		return err
	}

	return goose.Reset(db.DB, "migrations")
}

// MigrationVersion returns the currently applied schema version.
func MigrationVersion(db *sqlx.DB) (int64, error) {
	if err := prepareGoose(db); err != nil {
		return 0, err
	}

	return goose.GetDBVersion(db.DB)
}
