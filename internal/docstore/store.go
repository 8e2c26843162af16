// Package docstore is the SQLite-backed document store behind the get_document tool.
package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get for an unknown document id.
var ErrNotFound = errors.New("document not found")

// Document is a stored document.
type Document struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	CreatedAt time.Time         `json:"created"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Store wraps a *sql.DB. Every operation takes its own connection and releases it on return.
type Store struct {
	db *sql.DB
}

const schema = `CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	body       TEXT NOT NULL,
	created_at TEXT NOT NULL,
	metadata   TEXT NOT NULL DEFAULT '{}'
)`

// Open opens (and migrates) the database at dsn. An in-memory dsn is pinned to a single
// connection so every caller sees the same database.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if strings.Contains(dsn, ":memory:") {
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Put inserts or replaces doc.
func (s *Store) Put(ctx context.Context, doc Document) error {
	if doc.ID == "" {
		return errors.New("document id must not be empty")
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	meta, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()
	_, err = conn.ExecContext(ctx,
		`INSERT INTO documents (id, title, body, created_at, metadata) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET title = excluded.title, body = excluded.body,
		 created_at = excluded.created_at, metadata = excluded.metadata`,
		doc.ID, doc.Title, doc.Body, doc.CreatedAt.Format(time.RFC3339), string(meta))
	if err != nil {
		return fmt.Errorf("put document %s: %w", doc.ID, err)
	}
	return nil
}

// Get returns the document with the given id, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Document, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return Document{}, err
	}
	defer conn.Close()

	var (
		doc     Document
		created string
		meta    string
	)
	err = conn.QueryRowContext(ctx,
		`SELECT id, title, body, created_at, metadata FROM documents WHERE id = ?`, id,
	).Scan(&doc.ID, &doc.Title, &doc.Body, &created, &meta)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Document{}, fmt.Errorf("get document %s: %w", id, err)
	}
	if doc.CreatedAt, err = time.Parse(time.RFC3339, created); err != nil {
		return Document{}, fmt.Errorf("document %s: bad created_at: %w", id, err)
	}
	if err := json.Unmarshal([]byte(meta), &doc.Metadata); err != nil {
		return Document{}, fmt.Errorf("document %s: bad metadata: %w", id, err)
	}
	return doc, nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return 0, err
	}
	defer conn.Close()
	var n int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// Seed stores a few sample documents when the store is empty.
func (s *Store) Seed(ctx context.Context) error {
	n, err := s.Count(ctx)
	if err != nil || n > 0 {
		return err
	}
	created := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, doc := range []Document{
		{ID: "1", Title: "Document 1", Body: "Getting started with the tool registry.", CreatedAt: created, Metadata: map[string]string{"author": "docs"}},
		{ID: "2", Title: "Document 2", Body: "Tools are listed under /tools/list.", CreatedAt: created},
		{ID: "3", Title: "Document 3", Body: "Invoke a tool with POST /tools/{name}.", CreatedAt: created},
	} {
		if err := s.Put(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}
