// Package collection is the sqlite-backed card store behind the host
// interfaces: scheduler counts, card state, note tags, deck names.
package collection

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration
)

const defaultBusyTimeout = 5000 // milliseconds

// Store is a sqlite-backed collection. It implements host.Collection.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) a collection database at the given path.
//
// The database is created with WAL mode, a 5 s busy timeout, and a single
// connection (SQLite serialises writes). The schema is migrated automatically
// and the collection creation timestamp is recorded on first open.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("collection: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("collection: open %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)

	ctx := context.Background()

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("collection: enable WAL: %w", err)
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", defaultBusyTimeout)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("collection: set busy_timeout: %w", err)
	}

	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db, now: time.Now}

	if _, err := db.ExecContext(ctx,
		"INSERT OR IGNORE INTO col (id, created_at) VALUES (1, ?)", s.now().Unix()); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("collection: record creation time: %w", err)
	}

	return s, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Optimize runs sqlite maintenance. Wired to the nightly cron job.
func (s *Store) Optimize(ctx context.Context) error {
	for _, stmt := range []string{"PRAGMA optimize", "PRAGMA wal_checkpoint(TRUNCATE)"} {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("collection: optimize: %w", err)
		}
	}
	return nil
}
