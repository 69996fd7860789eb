// Package database opens the connection pool for the configured driver.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Open returns a pinged pool for driver. SQLite pools are pinned to a single connection
// so in-memory databases survive between queries and foreign keys stay enforced.
func Open(ctx context.Context, driver, dsn string) (*sql.DB, error) {
	if driver == "sqlite3" {
		driver = "sqlite"
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("database: open %s: %w", driver, err)
	}

	switch driver {
	case "mysql":
		db.SetMaxIdleConns(35)
		db.SetConnMaxLifetime(5 * time.Minute)
	case "sqlite":
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database: ping %s: %w", driver, err)
	}

	if driver == "sqlite" {
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("database: enabling foreign keys: %w", err)
		}
	}
	return db, nil
}
