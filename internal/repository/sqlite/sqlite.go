// Package sqlite implements the repository interfaces using SQLite as the storage backend.
//
// WHY modernc.org/sqlite?
// It is a pure Go translation of SQLite: no C compiler, and the database is
// a single file next to the binary.
//
// CONNECTION SETTINGS:
// PRAGMAs only apply to the connection that runs them, so they are passed in
// the DSN and the driver applies them to every connection it opens:
//
//	foreign_keys(1)     → ON DELETE CASCADE removes reports with their comment
//	busy_timeout(5000)  → wait for a lock instead of failing with SQLITE_BUSY
//	journal_mode(WAL)   → readers don't block the writer
//
// The pool is capped at ONE open connection. SQLite allows a single writer
// anyway; with one connection every transaction is serialised, which is what
// the report-and-maybe-delete sequence relies on.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/pressly/goose/v3"

	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/sakif/volcano-explorer/internal/repository"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

var _ repository.HealthChecker = (*DB)(nil)

// DB wraps a sql.DB connection pool and provides repository methods.
type DB struct {
	conn *sql.DB
	sb   squirrel.StatementBuilderType
}

// New opens (creating if needed) the database at dbPath and applies all
// pending migrations.
//
// dbPath examples:
//   - "data/volcanoes.db"           → relative file
//   - filepath.Join(t.TempDir(), …) → throwaway file for tests
func New(ctx context.Context, dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	db := &DB{
		conn: conn,
		sb:   squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}

	if err := db.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	// After migrating: goose holds its own connection while it works.
	conn.SetMaxOpenConns(1)

	return db, nil
}

func dsn(path string) string {
	q := url.Values{}
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	q.Add("_pragma", "journal_mode(WAL)")
	q.Set("_time_format", "sqlite")
	return "file:" + path + "?" + q.Encode()
}

// migrate applies the embedded goose migrations.
func (db *DB) migrate(ctx context.Context) error {
	fsys, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}

	provider, err := goose.NewProvider(goose.DialectSQLite3, db.conn, fsys)
	if err != nil {
		return fmt.Errorf("goose new provider: %w", err)
	}

	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping checks the store is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite: ping: %w", err)
	}
	return nil
}

// =========================================================================
// TRANSACTIONS
// =========================================================================

// querier is satisfied by both *sql.DB and *sql.Tx, and by sqlscan.Querier.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type txKey struct{}

// q returns the transaction carried by ctx, or the pool.
//
// Every query MUST go through q(ctx): with a single pooled connection, using
// db.conn directly inside RunInTx would wait forever for the connection the
// transaction is holding.
func (db *DB) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return db.conn
}

// RunInTx executes fn within a database transaction.
// On success: commits.
// On error from fn: rolls back and returns the error.
// On panic from fn: rolls back and re-panics.
// Nested calls reuse the outer transaction.
func (db *DB) RunInTx(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: begin transaction: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			_ = tx.Rollback()
			panic(r)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("sqlite: rollback failed: %w (original error: %v)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: commit transaction: %w", err)
	}
	return nil
}

// =========================================================================
// HELPERS
// =========================================================================

// exec builds and runs a squirrel statement, returning the affected rows.
func (db *DB) exec(ctx context.Context, b squirrel.Sqlizer) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("building query: %w", err)
	}
	res, err := db.q(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// isConstraint reports whether err is an SQLite constraint violation with
// the given extended code, e.g. sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY.
func isConstraint(err error, code int) bool {
	var se *sqlitedrv.Error
	return errors.As(err, &se) && se.Code() == code
}

func isForeignKeyViolation(err error) bool {
	if isConstraint(err, sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY) {
		return true
	}
	// Without extended result codes only the primary code is reported.
	return isConstraint(err, sqlite3.SQLITE_CONSTRAINT) && strings.Contains(err.Error(), "FOREIGN KEY")
}

// unknownReference explains a foreign key failure on a row that references
// both volcanoes(id) and users(email). SQLite does not say which one failed.
func (db *DB) unknownReference(ctx context.Context, volcanoID int64, email string) error {
	ok, err := db.VolcanoExists(ctx, volcanoID)
	if err != nil {
		return err
	}
	if !ok {
		return volcanoNotFound(volcanoID)
	}
	return accountNotFound(email)
}
