// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vinovest/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("duplicate record")
	// ErrDuplicateEmail is returned when the email is already taken.
	ErrDuplicateEmail = fmt.Errorf("%w: email", ErrDuplicate)
	// ErrDuplicateEmployeeID is returned when the employee identifier is already taken.
	ErrDuplicateEmployeeID = fmt.Errorf("%w: employee_id", ErrDuplicate)
)

// dbtx is satisfied by both *sqlx.DB and *sqlx.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	Rebind(query string) string
}

// Repository provides database operations.
type Repository struct {
	conn *sqlx.DB
	db   dbtx
}

// New creates a new Repository.
func New(db *sqlx.DB) *Repository {
	return &Repository{conn: db, db: db}
}

// DB returns the underlying connection pool.
func (r *Repository) DB() *sqlx.DB {
	return r.conn
}

// Ping checks that the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.conn.PingContext(ctx)
}

// WithTx runs fn with a Repository bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
func (r *Repository) WithTx(ctx context.Context, fn func(tx *Repository) error) (err error) {
	tx, err := r.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(&Repository{conn: r.conn, db: tx})
}

func (r *Repository) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	return res, wrapError(err)
}

func (r *Repository) get(ctx context.Context, dest any, query string, args ...any) error {
	return wrapError(r.db.GetContext(ctx, dest, r.db.Rebind(query), args...))
}

func (r *Repository) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	return wrapError(r.db.SelectContext(ctx, dest, r.db.Rebind(query), args...))
}

// wrapError maps driver errors to repository errors.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return duplicateFor(sqliteErr.Error(), err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return duplicateFor(pgErr.ConstraintName, err)
	}

	return err
}

// duplicateFor picks the duplicate sentinel from a constraint name or message.
func duplicateFor(detail string, cause error) error {
	switch {
	case strings.Contains(detail, "employee_id"):
		return fmt.Errorf("%w (%v)", ErrDuplicateEmployeeID, cause)
	case strings.Contains(detail, "email"):
		return fmt.Errorf("%w (%v)", ErrDuplicateEmail, cause)
	default:
		return fmt.Errorf("%w (%v)", ErrDuplicate, cause)
	}
}

// utc normalizes timestamps before they are written.
func utc(t time.Time) time.Time {
	return t.UTC()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
