// Package catalog is a SQLite-backed registry of known course-modules. The
// CLI uses it to resolve bare module codes in plan files to (code, credits)
// pairs; the evaluation core never touches it.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/modcheck/modcheck/pkg/module"

	_ "modernc.org/sqlite"
)

// ErrNotFound reports a module code absent from the catalog.
var ErrNotFound = errors.New("catalog: module not found")

// Entry is one catalog row.
type Entry struct {
	Code    string  `yaml:"code" json:"code"`
	Title   string  `yaml:"title,omitempty" json:"title,omitempty"`
	Credits float64 `yaml:"credits" json:"credits"`
}

// Store is a module catalog backed by database/sql.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (creating if needed) a catalog database at path. Use ":memory:"
// for an ephemeral catalog.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	s, err := NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore wraps an existing database handle and runs migrations.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db, log: slog.Default().With("component", "catalog")}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	query := `
	CREATE TABLE IF NOT EXISTS modules (
		code TEXT PRIMARY KEY,
		title TEXT NOT NULL DEFAULT '',
		credits REAL NOT NULL
	);`
	if _, err := s.db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("catalog: migrate: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// Put inserts or replaces one catalog entry.
func (s *Store) Put(ctx context.Context, e Entry) error {
	query := `
	INSERT INTO modules (code, title, credits) VALUES (?, ?, ?)
	ON CONFLICT(code) DO UPDATE SET title = excluded.title, credits = excluded.credits`
	if _, err := s.db.ExecContext(ctx, query, e.Code, e.Title, e.Credits); err != nil {
		return fmt.Errorf("catalog: put %s: %w", e.Code, err)
	}
	return nil
}

// Get returns the entry for code, or ErrNotFound.
func (s *Store) Get(ctx context.Context, code string) (*Entry, error) {
	query := `SELECT code, title, credits FROM modules WHERE code = ?`
	var e Entry
	err := s.db.QueryRowContext(ctx, query, code).Scan(&e.Code, &e.Title, &e.Credits)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, code)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: get %s: %w", code, err)
	}
	return &e, nil
}

// Resolve maps module codes to (code, credits) pairs, preserving input
// order. Any unknown code fails the whole resolution.
func (s *Store) Resolve(ctx context.Context, codes []string) (module.List, error) {
	out := make(module.List, 0, len(codes))
	for _, code := range codes {
		e, err := s.Get(ctx, code)
		if err != nil {
			return nil, err
		}
		out = append(out, module.Module{Code: e.Code, Credits: e.Credits})
	}
	return out, nil
}

// List returns every catalog entry ordered by code.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT code, title, credits FROM modules ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Code, &e.Title, &e.Credits); err != nil {
			return nil, fmt.Errorf("catalog: list: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: list: %w", err)
	}
	return entries, nil
}

// ImportYAML loads a YAML list of entries and upserts each. Returns how many
// entries were imported.
func (s *Store) ImportYAML(ctx context.Context, r io.Reader) (int, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, fmt.Errorf("catalog: import: %w", err)
	}
	var entries []Entry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return 0, fmt.Errorf("catalog: import: %w", err)
	}
	for _, e := range entries {
		if e.Code == "" {
			return 0, fmt.Errorf("catalog: import: entry with empty code")
		}
		if err := s.Put(ctx, e); err != nil {
			return 0, err
		}
	}
	s.log.Info("catalog import complete", "entries", len(entries))
	return len(entries), nil
}
