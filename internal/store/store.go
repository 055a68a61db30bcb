// Package store persists projected snapshots of on-disk files in SQLite so
// a restarted server does not re-extract every component file.
package store

import (
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

const schemaVersion = 1

// ErrMiss is returned when no snapshot matches a file's current identity.
var ErrMiss = errors.New("store: no snapshot")

// Entry is the projected text of one file at one modification time and
// size.
type Entry struct {
	Path      string
	ModTime   time.Time
	Size      int64
	Lang      string
	HasRegion bool
	Text      string
}

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func initSchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}
	if version == schemaVersion {
		return nil
	}
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.Exec("DROP TABLE IF EXISTS snapshots"); err != nil {
		return fmt.Errorf("failed to drop old schema: %w", err)
	}
	if _, err := tx.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("failed to update schema version: %w", err)
	}
	return tx.Commit()
}

func (s *Store) withTx(fn func(tx *sql.Tx) error) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Get returns the snapshot of path if it was stored for the same
// modification time and size, and ErrMiss otherwise.
func (s *Store) Get(path string, modTime time.Time, size int64) (Entry, error) {
	e := Entry{Path: path}
	var mt int64
	err := s.db.QueryRow(
		`SELECT mod_time, size, lang, has_region, text FROM snapshots WHERE path = ?`, path,
	).Scan(&mt, &e.Size, &e.Lang, &e.HasRegion, &e.Text)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrMiss
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get snapshot %s: %w", path, err)
	}
	if mt != modTime.UnixNano() || e.Size != size {
		return Entry{}, ErrMiss
	}
	e.ModTime = time.Unix(0, mt)
	return e, nil
}

// Put stores e, replacing any older snapshot of the same path.
func (s *Store) Put(e Entry) error {
	return s.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
            INSERT INTO snapshots (path, mod_time, size, lang, has_region, text) VALUES (?, ?, ?, ?, ?, ?)
            ON CONFLICT(path) DO UPDATE SET
                mod_time = excluded.mod_time,
                size = excluded.size,
                lang = excluded.lang,
                has_region = excluded.has_region,
                text = excluded.text
        `, e.Path, e.ModTime.UnixNano(), e.Size, e.Lang, e.HasRegion, e.Text)
		if err != nil {
			return fmt.Errorf("put snapshot %s: %w", e.Path, err)
		}
		return nil
	})
}

func (s *Store) Delete(path string) error {
	return s.withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec(`DELETE FROM snapshots WHERE path = ?`, path)
		return err
	})
}

// Len returns the number of stored snapshots.
func (s *Store) Len() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM snapshots`).Scan(&n)
	return n, err
}

func (s *Store) Close() error {
	return s.db.Close()
}
