package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"time"
)

// Direction is the direction a migration is applied in.
type Direction string

// Supported migration directions.
const (
	MigrationUp   Direction = "up"
	MigrationDown Direction = "down"
)

var fileRx = regexp.MustCompile(`^(\d+)-([\w-]+)\.(up|down)\.sql$`)

// Migration is a single schema change.
type Migration struct {
	ID   int
	Name string
	Up   string
	Down string
}

// DB is the database the migrations are run against.
type DB interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// LoadMigrations reads all migration files from the root of fsys, sorted by ID.
func LoadMigrations(fsys fs.FS) ([]*Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed reading migrations directory: %w", err)
	}

	byID := map[int]*Migration{}
	for _, entry := range entries {
		match := fileRx.FindStringSubmatch(entry.Name())
		if entry.IsDir() || match == nil {
			continue
		}

		id, err := strconv.Atoi(match[1])
		if err != nil {
			return nil, fmt.Errorf("invalid migration ID in '%s': %w", entry.Name(), err)
		}

		data, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed reading migration '%s': %w", entry.Name(), err)
		}

		m, ok := byID[id]
		if !ok {
			m = &Migration{ID: id, Name: match[2]}
			byID[id] = m
		}
		if Direction(match[3]) == MigrationUp {
			m.Up = string(data)
		} else {
			m.Down = string(data)
		}
	}

	migrations := make([]*Migration, 0, len(byID))
	for _, m := range byID {
		migrations = append(migrations, m)
	}
	slices.SortFunc(migrations, func(a, b *Migration) int { return a.ID - b.ID })

	return migrations, nil
}

// RunMigrations applies all pending up migrations, or rolls back all applied
// ones in reverse order. Each migration runs in its own transaction.
func RunMigrations(
	ctx context.Context, d DB, migrations []*Migration, dir Direction, logger *slog.Logger,
) error {
	_, err := d.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS _migrations (
		id INTEGER PRIMARY KEY, name TEXT NOT NULL, applied_at TIMESTAMP NOT NULL)`)
	if err != nil {
		return fmt.Errorf("failed creating migrations table: %w", err)
	}

	applied, err := appliedIDs(ctx, d)
	if err != nil {
		return err
	}

	plan := slices.Clone(migrations)
	if dir == MigrationDown {
		slices.Reverse(plan)
	}

	for _, m := range plan {
		_, done := applied[m.ID]
		if (dir == MigrationUp && done) || (dir == MigrationDown && !done) {
			continue
		}

		if err = runOne(ctx, d, m, dir); err != nil {
			return err
		}
		logger.Debug("applied migration", "id", m.ID, "name", m.Name, "direction", dir)
	}

	return nil
}

func runOne(ctx context.Context, d DB, m *Migration, dir Direction) (rerr error) {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed starting migration transaction: %w", err)
	}
	defer func() {
		if rerr != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, record, args := m.Up, `INSERT INTO _migrations (id, name, applied_at) VALUES (?, ?, ?)`,
		[]any{m.ID, m.Name, time.Now().UTC()}
	if dir == MigrationDown {
		stmt, record, args = m.Down, `DELETE FROM _migrations WHERE id = ?`, []any{m.ID}
	}

	if _, err = tx.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed running migration %d-%s %s: %w", m.ID, m.Name, dir, err)
	}
	if _, err = tx.ExecContext(ctx, record, args...); err != nil {
		return fmt.Errorf("failed recording migration %d-%s: %w", m.ID, m.Name, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed committing migration %d-%s: %w", m.ID, m.Name, err)
	}

	return nil
}

func appliedIDs(ctx context.Context, d DB) (ids map[int]struct{}, rerr error) {
	rows, err := d.QueryContext(ctx, `SELECT id FROM _migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed querying applied migrations: %w", err)
	}
	defer func() {
		if err = rows.Close(); err != nil {
			rerr = fmt.Errorf("failed closing migrations rows: %w", err)
		}
	}()

	ids = map[int]struct{}{}
	for rows.Next() {
		var id int
		if err = rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed scanning migration ID: %w", err)
		}
		ids[id] = struct{}{}
	}

	return ids, rows.Err()
}
