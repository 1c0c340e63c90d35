// Package store persists one run's canonical reviews, score signals, and
// flags in SQLite.
//
// A store file is never updated in place. Write builds a complete database
// next to the target and renames it over the old one, so readers see either
// the previous run or the new one and never a mix.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"marquee/internal/fileutil"
	"marquee/internal/review"
	"marquee/internal/services"
)

// RunInfo describes the run that produced a store.
type RunInfo struct {
	ID               string    `json:"id"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
	Verdict          string    `json:"verdict"`
	RulesVersion     string    `json:"rules_version"`
	InputDigest      string    `json:"input_digest,omitempty"`
	Records          int       `json:"records"`
	MalformedRecords int       `json:"malformed_records"`
	Reviews          int       `json:"reviews"`
	Flags            int       `json:"flags"`
}

// Snapshot is the complete content of one store.
type Snapshot struct {
	Run     RunInfo
	Reviews []*review.CanonicalReview
	Flags   []review.Flag
}

// Store is a read handle on a written canonical store.
type Store struct {
	db   *sql.DB
	path string
}

var pragmas = []string{
	"PRAGMA foreign_keys = ON",
	"PRAGMA busy_timeout = 5000",
}

func openDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	return db, nil
}

// Open connects to an existing store and verifies its schema version.
func Open(ctx context.Context, path string) (*Store, error) {
	ctx = ensureContext(ctx)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "store", "open", "no canonical store at "+path+"; run 'marquee run' first", nil)
		}
		return nil, fmt.Errorf("stat store: %w", err)
	}
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := checkSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the database file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Write builds a fresh store for snap in a temp file beside path and renames
// it into place. On any error the existing store is left untouched.
func Write(ctx context.Context, path string, snap Snapshot) error {
	ctx = ensureContext(ctx)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp store: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()
	defer func() {
		_ = os.Remove(tmpPath)
		_ = os.Remove(tmpPath + "-journal")
	}()

	db, err := openDB(tmpPath)
	if err != nil {
		return err
	}
	if err := populate(ctx, db, snap); err != nil {
		_ = db.Close()
		return err
	}
	if err := db.Close(); err != nil {
		return fmt.Errorf("close temp store: %w", err)
	}
	if err := fileutil.ReplaceFile(tmpPath, path); err != nil {
		return services.Wrap(services.ErrStorage, "store", "write", "replace canonical store", err)
	}
	return nil
}

func populate(ctx context.Context, db *sql.DB, snap Snapshot) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin store tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := createSchema(ctx, tx); err != nil {
		return err
	}
	if err := insertRun(ctx, tx, snap.Run); err != nil {
		return err
	}
	for _, r := range snap.Reviews {
		if err := insertReview(ctx, tx, r); err != nil {
			return err
		}
	}
	for _, f := range snap.Flags {
		if err := insertFlag(ctx, tx, f); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit store: %w", err)
	}
	return nil
}
