package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/artpar/workermeta/internal/core/history"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// timeLayout keeps created_at sortable as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// =============================================================================
// Executor Interface - Shared by DB and Transaction
// =============================================================================

// executor abstracts database operations that can be performed on both
// a database connection and a transaction.
type executor interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
}

// =============================================================================
// SQLiteStore
// =============================================================================

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	// Open database connection
	db, err := sqlx.Open("sqlite3", withParam(dsn, "_foreign_keys=on"))
	if err != nil {
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to open database", errors.Join(ErrConnectionFailed, err))
	}

	// Every connection to :memory: is a separate database
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to ping database: "+err.Error(), errors.Join(ErrConnectionFailed, err))
	}

	// Run migrations
	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", err.Error(), ErrMigrationFailed)
	}

	return &SQLiteStore{db: db}, nil
}

// withParam appends a query parameter to a DSN that may already carry some.
func withParam(dsn, param string) string {
	if strings.Contains(dsn, "?") {
		return dsn + "&" + param
	}
	return dsn + "?" + param
}

// runMigrations runs database migrations using embedded SQL files.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// Conversion Operations
// =============================================================================

// conversionRow represents a conversion row in the database.
type conversionRow struct {
	ID           string `db:"id"`
	ScriptName   string `db:"script_name"`
	OldTag       string `db:"old_tag"`
	NewTag       string `db:"new_tag"`
	RouteCount   int    `db:"route_count"`
	BindingCount int    `db:"binding_count"`
	ResultJSON   string `db:"result_json"`
	CreatedAt    string `db:"created_at"`
}

func (s *SQLiteStore) RecordConversion(ctx context.Context, c *history.Conversion) error {
	return recordConversion(ctx, s.db, c)
}

func (s *SQLiteStore) GetConversion(ctx context.Context, id string) (*history.Conversion, error) {
	return getConversion(ctx, s.db, id)
}

func (s *SQLiteStore) ListConversions(ctx context.Context, script string, opts ListOptions) ([]history.Conversion, error) {
	return listConversions(ctx, s.db, script, opts)
}

func (s *SQLiteStore) LatestMigrationTag(ctx context.Context, script string) (string, error) {
	return latestMigrationTag(ctx, s.db, script)
}

func recordConversion(ctx context.Context, exec executor, c *history.Conversion) error {
	if !json.Valid(c.Result) {
		return NewStoreError("RecordConversion", "conversion", c.ID, "result is not valid JSON", ErrInvalidData)
	}

	query := `
		INSERT INTO conversions (
			id, script_name, old_tag, new_tag, route_count, binding_count, result_json, created_at
		) VALUES (
			:id, :script_name, :old_tag, :new_tag, :route_count, :binding_count, :result_json, :created_at
		)`

	row := conversionRow{
		ID:           c.ID,
		ScriptName:   c.ScriptName,
		OldTag:       c.OldTag,
		NewTag:       c.NewTag,
		RouteCount:   c.RouteCount,
		BindingCount: c.BindingCount,
		ResultJSON:   string(c.Result),
		CreatedAt:    c.CreatedAt.UTC().Format(timeLayout),
	}

	_, err := exec.NamedExecContext(ctx, query, row)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: conversions.id") {
			return NewStoreError("RecordConversion", "conversion", c.ID, "conversion with this ID already exists", ErrDuplicateID)
		}
		return NewStoreError("RecordConversion", "conversion", c.ID, err.Error(), err)
	}

	return nil
}

func getConversion(ctx context.Context, exec executor, id string) (*history.Conversion, error) {
	query := `SELECT * FROM conversions WHERE id = ?`

	var row conversionRow
	err := exec.GetContext(ctx, &row, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetConversion", "conversion", id, "conversion not found", ErrNotFound)
		}
		return nil, NewStoreError("GetConversion", "conversion", id, err.Error(), err)
	}

	return rowToConversion(&row)
}

func listConversions(ctx context.Context, exec executor, script string, opts ListOptions) ([]history.Conversion, error) {
	opts = opts.Normalize()

	var (
		rows []conversionRow
		err  error
	)
	if script == "" {
		query := `SELECT * FROM conversions ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`
		err = exec.SelectContext(ctx, &rows, query, opts.Limit, opts.Offset)
	} else {
		query := `SELECT * FROM conversions WHERE script_name = ? ORDER BY created_at DESC, rowid DESC LIMIT ? OFFSET ?`
		err = exec.SelectContext(ctx, &rows, query, script, opts.Limit, opts.Offset)
	}
	if err != nil {
		return nil, NewStoreError("ListConversions", "conversion", script, err.Error(), err)
	}

	conversions := make([]history.Conversion, 0, len(rows))
	for _, row := range rows {
		c, err := rowToConversion(&row)
		if err != nil {
			return nil, err
		}
		conversions = append(conversions, *c)
	}

	return conversions, nil
}

func latestMigrationTag(ctx context.Context, exec executor, script string) (string, error) {
	query := `
		SELECT new_tag FROM conversions
		WHERE script_name = ? AND new_tag != ''
		ORDER BY created_at DESC, rowid DESC
		LIMIT 1`

	var tag string
	err := exec.GetContext(ctx, &tag, query, script)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", NewStoreError("LatestMigrationTag", "conversion", script, "no migration tag recorded", ErrNotFound)
		}
		return "", NewStoreError("LatestMigrationTag", "conversion", script, err.Error(), err)
	}

	return tag, nil
}

// =============================================================================
// Row Conversion
// =============================================================================

func rowToConversion(row *conversionRow) (*history.Conversion, error) {
	createdAt, err := time.Parse(timeLayout, row.CreatedAt)
	if err != nil {
		return nil, NewStoreError("rowToConversion", "conversion", row.ID, "failed to parse created_at", ErrInvalidData)
	}

	if !json.Valid([]byte(row.ResultJSON)) {
		return nil, NewStoreError("rowToConversion", "conversion", row.ID, "failed to parse result", ErrInvalidData)
	}

	return &history.Conversion{
		ID:           row.ID,
		ScriptName:   row.ScriptName,
		OldTag:       row.OldTag,
		NewTag:       row.NewTag,
		RouteCount:   row.RouteCount,
		BindingCount: row.BindingCount,
		Result:       json.RawMessage(row.ResultJSON),
		CreatedAt:    createdAt,
	}, nil
}
