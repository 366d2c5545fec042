package db

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"strings"
	"time"

	//nolint:revive,nolintlint // Idiomatic way of loading DB libraries.
	_ "github.com/glebarez/go-sqlite"

	"go.hackfix.me/crudkit/db/migrator"
	"go.hackfix.me/crudkit/db/types"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DB wraps sql.DB with additional context and migration functionality.
type DB struct {
	*sql.DB
	ctx        context.Context
	timeNow    func() time.Time
	path       string
	migrations []*migrator.Migration
}

var _ types.Querier = (*DB)(nil)

// Open creates and configures a new SQLite database connection with migrations support.
func Open(ctx context.Context, path string, timeNow func() time.Time) (*DB, error) {
	sqliteDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed opening SQLite database: %w", err)
	}

	if strings.Contains(path, "mode=memory") || strings.Contains(path, ":memory:") {
		// Keep in-memory databases alive between queries.
		// See https://github.com/mattn/go-sqlite3#faq
		sqliteDB.SetMaxIdleConns(10)
		sqliteDB.SetConnMaxLifetime(time.Duration(math.Inf(1)))
	}

	d := &DB{DB: sqliteDB, ctx: ctx, path: path, timeNow: timeNow}

	if _, err = d.ExecContext(ctx, `PRAGMA foreign_keys = ON;`); err != nil {
		return nil, fmt.Errorf("failed enabling foreign key enforcement: %w", err)
	}

	migrationsDir, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed getting migrations directory: %w", err)
	}
	if d.migrations, err = migrator.LoadMigrations(migrationsDir); err != nil {
		return nil, err
	}

	return d, nil
}

// Init creates the database schema and records the application version.
func (d *DB) Init(appVersion string, logger *slog.Logger) error {
	dblogger := logger.With("path", d.path)
	dblogger.Debug("initializing database")

	ctx := d.NewContext()
	err := migrator.RunMigrations(ctx, d, d.migrations, migrator.MigrationUp, dblogger)
	if err != nil {
		return err
	}

	_, err = d.ExecContext(ctx,
		`INSERT INTO _meta (version, created_at) VALUES (?, ?)`,
		appVersion, d.TimeNow().UTC())
	if err != nil {
		return fmt.Errorf("failed inserting into _meta: %w", err)
	}

	dblogger.Info("database initialized")

	return nil
}

// Version returns the application version the database was initialized with.
// If the returned sql.Null value is invalid, the database hasn't been
// initialized.
func (d *DB) Version(ctx context.Context) (sql.Null[string], error) {
	var version sql.Null[string]
	err := d.QueryRowContext(ctx, `SELECT version FROM _meta`).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) && !strings.Contains(err.Error(), "no such table") {
		return version, fmt.Errorf("failed reading database version: %w", err)
	}

	return version, nil
}

// NewContext returns a new child context of the main database context.
func (d *DB) NewContext() context.Context {
	return context.WithoutCancel(d.ctx)
}

// TimeNow returns the current system time.
func (d *DB) TimeNow() time.Time {
	return d.timeNow()
}
