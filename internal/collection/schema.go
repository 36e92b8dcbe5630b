package collection

import (
	"context"
	"database/sql"
	"fmt"
)

const schemaVersion = 1

// schemaStatements are executed in order to create the database schema.
// All use IF NOT EXISTS for idempotent re-application.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS col (
		id         INTEGER PRIMARY KEY CHECK (id = 1),
		created_at INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS decks (
		id   INTEGER PRIMARY KEY,
		name TEXT    NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS notes (
		id   INTEGER PRIMARY KEY,
		tags TEXT    NOT NULL DEFAULT ''
	)`,

	`CREATE TABLE IF NOT EXISTS cards (
		id            INTEGER PRIMARY KEY,
		note_id       INTEGER NOT NULL REFERENCES notes(id),
		deck_id       INTEGER NOT NULL REFERENCES decks(id),
		type          INTEGER NOT NULL DEFAULT 0,
		queue         INTEGER NOT NULL DEFAULT 0,
		due           INTEGER NOT NULL DEFAULT 0,
		interval      INTEGER NOT NULL DEFAULT 0,
		factor        INTEGER NOT NULL DEFAULT 2500,
		reps          INTEGER NOT NULL DEFAULT 0,
		lapses        INTEGER NOT NULL DEFAULT 0,
		left_today    INTEGER NOT NULL DEFAULT 0,
		flags         INTEGER NOT NULL DEFAULT 0,
		mod           INTEGER NOT NULL DEFAULT 0,
		tmpl_name     TEXT    NOT NULL DEFAULT '',
		tmpl_question TEXT    NOT NULL DEFAULT '',
		tmpl_answer   TEXT    NOT NULL DEFAULT ''
	)`,

	`CREATE INDEX IF NOT EXISTS idx_cards_note ON cards(note_id)`,

	`CREATE INDEX IF NOT EXISTS idx_cards_queue ON cards(queue, due)`,
}

// migrate creates or updates the database schema to the latest version.
// All DDL uses IF NOT EXISTS, making migration idempotent.
func migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY)"); err != nil {
		return fmt.Errorf("collection: create schema_version: %w", err)
	}

	var current int
	if err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("collection: read schema version: %w", err)
	}

	if current >= schemaVersion {
		return nil
	}

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("collection: migrate: %w\nstatement: %s", err, stmt)
		}
	}

	if _, err := db.ExecContext(ctx, "INSERT OR REPLACE INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
		return fmt.Errorf("collection: record schema version: %w", err)
	}

	return nil
}
