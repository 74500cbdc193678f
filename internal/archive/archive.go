// Package archive remembers which pages were already downloaded so
// repeated runs skip them.
package archive

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;

CREATE TABLE IF NOT EXISTS archive (
    entry TEXT PRIMARY KEY,
    added_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

type Archive struct {
	db   *sql.DB
	path string
}

// Open opens or creates the archive at path. ":memory:" keeps it in RAM.
func Open(path string) (*Archive, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("archive dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}
	// one connection: sqlite has a single writer and ":memory:" is per connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize archive: %w", err)
	}

	return &Archive{db: db, path: path}, nil
}

func (a *Archive) Path() string {
	return a.path
}

func (a *Archive) Has(ctx context.Context, key string) (bool, error) {
	var n int
	err := a.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM archive WHERE entry = ?", key).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("archive lookup: %w", err)
	}

	return n > 0, nil
}

// Add records keys in one transaction. Known keys are ignored.
func (a *Archive) Add(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("archive begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, "INSERT OR IGNORE INTO archive (entry) VALUES (?)")
	if err != nil {
		return fmt.Errorf("archive prepare: %w", err)
	}
	defer stmt.Close()

	for _, k := range keys {
		if _, err := stmt.ExecContext(ctx, k); err != nil {
			return fmt.Errorf("archive insert %q: %w", k, err)
		}
	}

	return tx.Commit()
}

func (a *Archive) Close() error {
	return a.db.Close()
}

// Key identifies one page: category, chapter id and page number.
func Key(meta map[string]string) string {
	return meta["category"] + meta["chapter-id"] + "_" + meta["page"]
}
