// Package migrations creates and drops the schema for the supported SQL dialects.
//
// Each migration is applied once and recorded in schema_migrations, so Up can run on
// every start.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	MySQL  = "mysql"
	SQLite = "sqlite"
)

type migration struct {
	version string
	up      map[string][]string
	down    map[string][]string
}

var migrations = []migration{
	{version: "20210513150901_initial", up: initialUp, down: initialDown},
}

// Dialect maps a database/sql driver name to a schema dialect.
func Dialect(driver string) (string, error) {
	switch driver {
	case "mysql":
		return MySQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return "", fmt.Errorf("migrations: unsupported driver %q", driver)
}

// Up applies every migration not yet recorded.
func Up(ctx context.Context, db *sql.DB, dialect string) error {
	if _, ok := initialUp[dialect]; !ok {
		return fmt.Errorf("migrations: unknown dialect %q", dialect)
	}
	if _, err := db.ExecContext(ctx, bookkeepingTable); err != nil {
		return fmt.Errorf("migrations: creating schema_migrations: %w", err)
	}

	for _, m := range migrations {
		applied, err := isApplied(ctx, db, m.version)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		for _, stmt := range m.up[dialect] {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migrations: %s: %w", m.version, err)
			}
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
			m.version, time.Now().UTC().Truncate(time.Second),
		); err != nil {
			return fmt.Errorf("migrations: recording %s: %w", m.version, err)
		}
	}
	return nil
}

// Down reverts every recorded migration, newest first.
func Down(ctx context.Context, db *sql.DB, dialect string) error {
	if _, ok := initialDown[dialect]; !ok {
		return fmt.Errorf("migrations: unknown dialect %q", dialect)
	}
	if _, err := db.ExecContext(ctx, bookkeepingTable); err != nil {
		return fmt.Errorf("migrations: creating schema_migrations: %w", err)
	}

	for i := len(migrations) - 1; i >= 0; i-- {
		m := migrations[i]
		applied, err := isApplied(ctx, db, m.version)
		if err != nil {
			return err
		}
		if !applied {
			continue
		}
		for _, stmt := range m.down[dialect] {
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migrations: reverting %s: %w", m.version, err)
			}
		}
		if _, err := db.ExecContext(ctx, `DELETE FROM schema_migrations WHERE version = ?`, m.version); err != nil {
			return fmt.Errorf("migrations: unrecording %s: %w", m.version, err)
		}
	}
	return nil
}

func isApplied(ctx context.Context, db *sql.DB, version string) (bool, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations WHERE version = ?`, version).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("migrations: checking %s: %w", version, err)
	}
	return n > 0, nil
}

const bookkeepingTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version    VARCHAR(191) NOT NULL PRIMARY KEY,
	applied_at DATETIME NOT NULL
)`
