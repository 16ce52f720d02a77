package database

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates the expenses table backing the local collection store.
// One row per record; timestamps are epoch milliseconds so records round-trip
// through snapshots unchanged.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS expenses (
			id TEXT PRIMARY KEY,
			path TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			amount REAL NOT NULL DEFAULT 0,
			date BIGINT NOT NULL,
			created_at BIGINT NOT NULL,
			note TEXT NOT NULL DEFAULT '',
			user_id TEXT NOT NULL DEFAULT ''
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create expenses table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_expenses_path ON expenses(path)`)
	if err != nil {
		return fmt.Errorf("failed to create expenses path index: %w", err)
	}

	return nil
}
