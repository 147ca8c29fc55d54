// Package sqlstore holds the database/sql plumbing shared by the Postgres
// and SQLite repositories.
package sqlstore

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// ErrSchemaMismatch is returned when neither column naming is accepted.
var ErrSchemaMismatch = errors.New("storage: schema mismatch, neither camelCase nor snake_case columns accepted")

// Dialect captures the few places Postgres and SQLite differ.
type Dialect struct {
	Name     string
	Driver   string
	JSONType string
	TimeType string
	BoolType string
	numbered bool
	// lq and rq delimit a quoted identifier.
	lq, rq string
}

var (
	Postgres = Dialect{Name: "postgres", Driver: "pgx", JSONType: "JSONB", TimeType: "TIMESTAMPTZ", BoolType: "BOOLEAN", numbered: true, lq: `"`, rq: `"`}
	// SQLite reads an unknown "double quoted" name as a string literal, so
	// identifiers use backticks to make missing columns fail.
	SQLite = Dialect{Name: "sqlite", Driver: "sqlite", JSONType: "TEXT", TimeType: "TIMESTAMP", BoolType: "BOOLEAN", lq: "`", rq: "`"}
)

// Placeholder returns the bind marker for the i-th (1-based) argument.
func (d Dialect) Placeholder(i int) string {
	if d.numbered {
		return "$" + strconv.Itoa(i)
	}
	return "?"
}

// Placeholders returns n comma-separated bind markers starting at from.
func (d Dialect) Placeholders(from, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = d.Placeholder(from + i)
	}
	return strings.Join(parts, ", ")
}

// DB is an open handle with its dialect.
type DB struct {
	*sql.DB
	Dialect Dialect
}

// OpenPostgres opens a Postgres (or Supabase) database through the pgx stdlib driver.
func OpenPostgres(dsn string) (*DB, error) {
	db, err := sql.Open(Postgres.Driver, strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &DB{DB: db, Dialect: Postgres}, nil
}

// OpenSQLite opens a local SQLite file. ":memory:" is allowed for tests.
func OpenSQLite(path string) (*DB, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	db, err := sql.Open(SQLite.Driver, sqliteDSN(path))
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases coherent and avoids
	// SQLITE_BUSY on concurrent writers.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return &DB{DB: db, Dialect: SQLite}, nil
}

// sqliteDSN asks the driver to write times in a format it can parse back.
func sqliteDSN(path string) string {
	if strings.Contains(path, "_time_format=") {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "_time_format=sqlite"
}

// IsUndefinedColumn reports whether err means a referenced column does not
// exist: SQLSTATE 42703 on Postgres, "no such column" on SQLite.
func IsUndefinedColumn(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "42703"
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "no such column") || strings.Contains(msg, "has no column named")
}

// Quote delimits an identifier, preserving camelCase names.
func (d Dialect) Quote(ident string) string {
	lq, rq := d.lq, d.rq
	if lq == "" {
		lq, rq = `"`, `"`
	}
	return lq + strings.ReplaceAll(ident, rq, rq+rq) + rq
}

// QuoteAll quotes and joins identifiers.
func (d Dialect) QuoteAll(idents []string) string {
	parts := make([]string, len(idents))
	for i, id := range idents {
		parts[i] = d.Quote(id)
	}
	return strings.Join(parts, ", ")
}

// RowScanner is satisfied by *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}
