// Package storage persists skill documents and staged sources in a local
// SQLite database. It implements the persistence collaborator for the CLI;
// the synthesis pipeline itself never reads or writes durable state.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/curatehq/skillforge/core/synthesis"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store is a SQLite-backed skill and source store.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS skills (
	id           TEXT PRIMARY KEY,
	library_id   TEXT NOT NULL,
	title        TEXT NOT NULL,
	summary      TEXT NOT NULL DEFAULT '',
	content      TEXT NOT NULL,
	scope        TEXT NOT NULL,
	contradictions TEXT NOT NULL DEFAULT '[]',
	created_at   TIMESTAMP NOT NULL,
	updated_at   TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS citations (
	skill_id   TEXT NOT NULL REFERENCES skills(id) ON DELETE CASCADE,
	numeric_id INTEGER NOT NULL,
	source_id  TEXT NOT NULL,
	label      TEXT NOT NULL,
	url        TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (skill_id, numeric_id)
);

CREATE TABLE IF NOT EXISTS staged_sources (
	id        TEXT PRIMARY KEY,
	type      TEXT NOT NULL,
	label     TEXT NOT NULL,
	url       TEXT NOT NULL DEFAULT '',
	content   TEXT NOT NULL,
	staged_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_skills_library ON skills(library_id);
`

// NewStore opens (or creates) the store at path. An empty path defaults to
// ~/.skillforge/skillforge.db.
func NewStore(path string) (*Store, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, ".skillforge", "skillforge.db")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SkillRecord is a stored document listing entry.
type SkillRecord struct {
	ID        string
	LibraryID string
	Title     string
	Summary   string
	UpdatedAt time.Time
}

// SaveDocument stores a complete replacement document, upserting by id.
func (s *Store) SaveDocument(ctx context.Context, libraryID string, doc synthesis.SkillDocument) error {
	scope, err := json.Marshal(doc.Scope)
	if err != nil {
		return fmt.Errorf("marshal scope: %w", err)
	}
	contradictions, err := json.Marshal(doc.Contradictions)
	if err != nil {
		return fmt.Errorf("marshal contradictions: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO skills (id, library_id, title, summary, content, scope, contradictions, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			library_id = excluded.library_id,
			title = excluded.title,
			summary = excluded.summary,
			content = excluded.content,
			scope = excluded.scope,
			contradictions = excluded.contradictions,
			updated_at = excluded.updated_at`,
		doc.ID, libraryID, doc.Title, doc.Summary, doc.Content, string(scope), string(contradictions), now, now)
	if err != nil {
		return fmt.Errorf("upsert skill: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM citations WHERE skill_id = ?`, doc.ID); err != nil {
		return fmt.Errorf("clear citations: %w", err)
	}
	for _, c := range doc.Citations {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO citations (skill_id, numeric_id, source_id, label, url)
			VALUES (?, ?, ?, ?, ?)`,
			doc.ID, c.NumericID, c.SourceID, c.Label, c.URL)
		if err != nil {
			return fmt.Errorf("insert citation: %w", err)
		}
	}

	return tx.Commit()
}

// GetDocument loads a document and its citations.
func (s *Store) GetDocument(ctx context.Context, id string) (synthesis.SkillDocument, error) {
	var doc synthesis.SkillDocument
	var scope, contradictions string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, title, summary, content, scope, contradictions
		FROM skills WHERE id = ?`, id).
		Scan(&doc.ID, &doc.Title, &doc.Summary, &doc.Content, &scope, &contradictions)
	if errors.Is(err, sql.ErrNoRows) {
		return synthesis.SkillDocument{}, fmt.Errorf("skill %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return synthesis.SkillDocument{}, fmt.Errorf("load skill: %w", err)
	}

	if err := json.Unmarshal([]byte(scope), &doc.Scope); err != nil {
		return synthesis.SkillDocument{}, fmt.Errorf("unmarshal scope: %w", err)
	}
	if err := json.Unmarshal([]byte(contradictions), &doc.Contradictions); err != nil {
		return synthesis.SkillDocument{}, fmt.Errorf("unmarshal contradictions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT numeric_id, source_id, label, url
		FROM citations WHERE skill_id = ? ORDER BY numeric_id`, id)
	if err != nil {
		return synthesis.SkillDocument{}, fmt.Errorf("load citations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c synthesis.Citation
		if err := rows.Scan(&c.NumericID, &c.SourceID, &c.Label, &c.URL); err != nil {
			return synthesis.SkillDocument{}, fmt.Errorf("scan citation: %w", err)
		}
		doc.Citations = append(doc.Citations, c)
	}
	return doc, rows.Err()
}

// ListSkills returns stored documents, optionally filtered by library.
func (s *Store) ListSkills(ctx context.Context, libraryID string) ([]SkillRecord, error) {
	query := `SELECT id, library_id, title, summary, updated_at FROM skills`
	args := []any{}
	if libraryID != "" {
		query += ` WHERE library_id = ?`
		args = append(args, libraryID)
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	defer rows.Close()

	var records []SkillRecord
	for rows.Next() {
		var r SkillRecord
		if err := rows.Scan(&r.ID, &r.LibraryID, &r.Title, &r.Summary, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// StageSource stores a source for the next synthesis run, upserting by id.
func (s *Store) StageSource(ctx context.Context, src synthesis.Source) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO staged_sources (id, type, label, url, content, staged_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			type = excluded.type,
			label = excluded.label,
			url = excluded.url,
			content = excluded.content,
			staged_at = excluded.staged_at`,
		src.ID, src.Type, src.Label, src.URL, src.Content, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("stage source: %w", err)
	}
	return nil
}

// ListStagedSources returns staged sources in staging order.
func (s *Store) ListStagedSources(ctx context.Context) ([]synthesis.Source, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, label, url, content
		FROM staged_sources ORDER BY staged_at`)
	if err != nil {
		return nil, fmt.Errorf("list staged sources: %w", err)
	}
	defer rows.Close()

	var sources []synthesis.Source
	for rows.Next() {
		var src synthesis.Source
		if err := rows.Scan(&src.ID, &src.Type, &src.Label, &src.URL, &src.Content); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// ClearStagedSources removes all staged sources.
func (s *Store) ClearStagedSources(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM staged_sources`); err != nil {
		return fmt.Errorf("clear staged sources: %w", err)
	}
	return nil
}
