// Package migrator manages versioned SQLite schema changesets.
//
// Features:
// - Supports both forward (`up`) and rollback (`down`) migrations
// - Loads SQL migration files with structured naming (`{version}_{name}.sql`)
//   from any fs.FS, including an embedded filesystem
// - Tracks applied migrations in a dedicated bookkeeping table
// - Applies each changeset and its bookkeeping record in a single transaction
package migrator

import (
	"cmp"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"time"

	"github.com/nicoalimin/talentscan/db/types"
)

// DB is the database handle the migrator operates on. Plain queries are used
// for bookkeeping reads, and transactions for the atomic migration batches.
type DB interface {
	types.Querier
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

// Direction of a migration run.
type Direction string

// Possible migration directions.
const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// Migration is a single parsed changeset file. Up and Down hold the SQL
// statements in file order; the migrator never reorders them.
type Migration struct {
	Version uint64
	Name    string
	Up      []string
	Down    []string
}

// Status describes whether a single migration has been applied.
type Status struct {
	Migration *Migration
	Applied   bool
	AppliedAt time.Time
}

// ExecError is returned when a SQL statement of a migration fails. The failed
// changeset is rolled back as a whole, and no bookkeeping state is changed
// for it.
type ExecError struct {
	Migration string
	Direction Direction
	Err       error
}

// Error returns a string representation of the error.
func (e ExecError) Error() string {
	return fmt.Sprintf("failed applying %s migration of '%s': %s", e.Direction, e.Migration, e.Err)
}

// Unwrap returns the underlying database error.
func (e ExecError) Unwrap() error {
	return e.Err
}

// Load reads and parses all migration files from the given filesystem, and
// returns them ordered ascending by version. Files with duplicate versions
// are rejected.
func Load(fsys fs.FS) ([]*Migration, error) {
	filenames, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("failed listing migration files: %w", err)
	}

	migrations := make([]*Migration, 0, len(filenames))
	byVersion := make(map[uint64]*Migration, len(filenames))
	for _, filename := range filenames {
		data, err := fs.ReadFile(fsys, filename)
		if err != nil {
			return nil, fmt.Errorf("failed reading migration file '%s': %w", filename, err)
		}

		m, err := Parse(filename, data)
		if err != nil {
			return nil, err
		}

		if dup, ok := byVersion[m.Version]; ok {
			return nil, &ParseError{
				File: filename,
				Msg:  fmt.Sprintf("duplicate version %d, already used by '%s'", m.Version, dup.Name),
			}
		}
		byVersion[m.Version] = m
		migrations = append(migrations, m)
	}

	slices.SortFunc(migrations, func(a, b *Migration) int {
		return cmp.Compare(a.Version, b.Version)
	})

	return migrations, nil
}

// Up applies all pending migrations in ascending version order. Each
// changeset is executed in its own transaction together with the insert of
// its bookkeeping record, so a migration is either fully applied and
// recorded, or not at all. The first failure halts the run; migrations after
// it are not attempted. It returns the names of the migrations applied by
// this run.
func Up(d DB, migrations []*Migration, logger *slog.Logger) ([]string, error) {
	ctx := d.NewContext()
	if err := ensureTable(ctx, d); err != nil {
		return nil, err
	}

	applied, err := appliedMigrations(ctx, d)
	if err != nil {
		return nil, err
	}

	appliedNow := []string{}
	for _, m := range migrations {
		if _, ok := applied[m.Name]; ok {
			continue
		}

		logger.Debug("applying migration", "name", m.Name)
		err := inTx(ctx, d, func(tx *sql.Tx) error {
			for _, stmt := range m.Up {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return &ExecError{Migration: m.Name, Direction: DirectionUp, Err: err}
				}
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO _migrations (version, name, applied_at) VALUES (?, ?, ?)`,
				m.Version, m.Name, d.TimeNow().UTC())
			if err != nil {
				return fmt.Errorf("failed recording migration '%s': %w", m.Name, err)
			}
			return nil
		})
		if err != nil {
			return appliedNow, err
		}

		appliedNow = append(appliedNow, m.Name)
		logger.Info("applied migration", "name", m.Name)
	}

	return appliedNow, nil
}

// Down rolls back the single most recently applied migration, and deletes its
// bookkeeping record in the same transaction. It returns the name of the
// rolled back migration, or an empty string if no migrations were applied,
// which is not an error.
func Down(d DB, migrations []*Migration, logger *slog.Logger) (string, error) {
	ctx := d.NewContext()
	if err := ensureTable(ctx, d); err != nil {
		return "", err
	}

	var name string
	err := d.QueryRowContext(ctx,
		`SELECT name FROM _migrations ORDER BY applied_at DESC, version DESC LIMIT 1`,
	).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed querying applied migrations: %w", err)
	}

	idx := slices.IndexFunc(migrations, func(m *Migration) bool {
		return m.Name == name
	})
	if idx < 0 {
		return "", fmt.Errorf("migration file for applied migration '%s' not found", name)
	}

	m := migrations[idx]
	if len(m.Down) == 0 {
		return "", fmt.Errorf("migration '%s' has no down statements", m.Name)
	}

	logger.Debug("rolling back migration", "name", m.Name)
	err = inTx(ctx, d, func(tx *sql.Tx) error {
		for _, stmt := range m.Down {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return &ExecError{Migration: m.Name, Direction: DirectionDown, Err: err}
			}
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM _migrations WHERE name = ?`, m.Name); err != nil {
			return fmt.Errorf("failed deleting record of migration '%s': %w", m.Name, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	logger.Info("rolled back migration", "name", m.Name)

	return m.Name, nil
}

// State returns the applied/pending status of every known migration, ordered
// ascending by version. It has no side effects other than creating the
// bookkeeping table if it doesn't exist yet.
func State(d DB, migrations []*Migration) ([]*Status, error) {
	ctx := d.NewContext()
	if err := ensureTable(ctx, d); err != nil {
		return nil, err
	}

	applied, err := appliedMigrations(ctx, d)
	if err != nil {
		return nil, err
	}

	statuses := make([]*Status, 0, len(migrations))
	for _, m := range migrations {
		s := &Status{Migration: m}
		if at, ok := applied[m.Name]; ok {
			s.Applied = true
			s.AppliedAt = at
		}
		statuses = append(statuses, s)
	}

	return statuses, nil
}

func ensureTable(ctx context.Context, d DB) error {
	_, err := d.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS _migrations (
			version INTEGER NOT NULL,
			name TEXT UNIQUE NOT NULL,
			applied_at TIMESTAMP NOT NULL
		)`)
	if err != nil {
		return fmt.Errorf("failed creating migrations table: %w", err)
	}

	return nil
}

func appliedMigrations(ctx context.Context, d DB) (_ map[string]time.Time, rerr error) {
	rows, err := d.QueryContext(ctx, `SELECT name, applied_at FROM _migrations`)
	if err != nil {
		return nil, fmt.Errorf("failed querying applied migrations: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil && rerr == nil {
			rerr = fmt.Errorf("failed closing migration rows: %w", err)
		}
	}()

	applied := make(map[string]time.Time)
	for rows.Next() {
		var (
			name string
			at   time.Time
		)
		if err := rows.Scan(&name, &at); err != nil {
			return nil, fmt.Errorf("failed scanning migration row: %w", err)
		}
		applied[name] = at
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed iterating over migration rows: %w", err)
	}

	return applied, nil
}

func inTx(ctx context.Context, d DB, fn func(tx *sql.Tx) error) error {
	tx, err := d.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed beginning transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("failed rolling back transaction: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed committing transaction: %w", err)
	}

	return nil
}
