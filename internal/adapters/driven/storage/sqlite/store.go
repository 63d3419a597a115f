// Package sqlite provides a durable document store backed by SQLite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/wikidex/internal/core/domain"
	"github.com/custodia-labs/wikidex/internal/core/ports/driven"
)

// maxBatchParams bounds the number of bound parameters per statement.
const maxBatchParams = 500

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// Store is a SQLite-backed implementation of driven.DocumentStore.
// Metadata lives in named columns, not an opaque blob, so the adapter
// boundary validates the shape on every read and write.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens (creating if needed) the document database at path.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite store: %w: empty path", domain.ErrInvalidInput)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	// WAL mode for better concurrency between the HTTP surface and a
	// background sync run.
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS documents (
			id         TEXT PRIMARY KEY,
			text       TEXT NOT NULL,
			page       TEXT NOT NULL,
			chunk_id   INTEGER NOT NULL,
			hash       TEXT,
			updated_at TEXT NOT NULL,
			path       TEXT NOT NULL,
			attachment TEXT
		)
	`)
	return err
}

// Get retrieves a document by id.
func (s *Store) Get(ctx context.Context, id string) (*domain.IndexedDocument, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, text, page, chunk_id, hash, updated_at, path, attachment
		FROM documents WHERE id = ?
	`, id)

	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// GetMany retrieves metadata for the given ids in one batch.
// Unknown ids are absent from the result.
func (s *Store) GetMany(ctx context.Context, ids []string) (map[string]domain.DocumentMeta, error) {
	metas := make(map[string]domain.DocumentMeta, len(ids))

	for _, batch := range batches(ids, maxBatchParams) {
		query := `
			SELECT id, page, chunk_id, hash, updated_at, path, attachment
			FROM documents WHERE id IN (` + placeholders(len(batch)) + `)`

		rows, err := s.db.QueryContext(ctx, query, args(batch)...)
		if err != nil {
			return nil, fmt.Errorf("get many: %w", err)
		}

		for rows.Next() {
			var (
				id, page, updatedAt, path string
				chunkID                   int
				hash, attachment          sql.NullString
			)
			if err := rows.Scan(&id, &page, &chunkID, &hash, &updatedAt, &path, &attachment); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scan metadata: %w", err)
			}
			metas[id] = domain.DocumentMeta{
				Page:       page,
				ChunkID:    chunkID,
				Hash:       hash.String,
				UpdatedAt:  updatedAt,
				Path:       path,
				Attachment: attachment.String,
			}
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, fmt.Errorf("iterate metadata: %w", err)
		}
		rows.Close()
	}

	return metas, nil
}

// Add stores a document. An existing record with the same id is
// replaced in a single statement, so the old version is never
// observable alongside the new one.
func (s *Store) Add(ctx context.Context, doc domain.IndexedDocument) error {
	if doc.ID == "" {
		return fmt.Errorf("add document: %w: empty id", domain.ErrInvalidInput)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, text, page, chunk_id, hash, updated_at, path, attachment)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			text = excluded.text,
			page = excluded.page,
			chunk_id = excluded.chunk_id,
			hash = excluded.hash,
			updated_at = excluded.updated_at,
			path = excluded.path,
			attachment = excluded.attachment
	`, doc.ID, doc.Text, doc.Meta.Page, doc.Meta.ChunkID,
		nullable(doc.Meta.Hash), doc.Meta.UpdatedAt, doc.Meta.Path, nullable(doc.Meta.Attachment))
	if err != nil {
		return fmt.Errorf("add document %s: %w", doc.ID, err)
	}
	return nil
}

// Delete removes the given ids in one transaction.
func (s *Store) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()

	for _, batch := range batches(ids, maxBatchParams) {
		query := `DELETE FROM documents WHERE id IN (` + placeholders(len(batch)) + `)`
		if _, err := tx.ExecContext(ctx, query, args(batch)...); err != nil {
			return fmt.Errorf("delete documents: %w", err)
		}
	}

	return tx.Commit()
}

// ListIDs enumerates every stored document id.
func (s *Store) ListIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM documents`)
	if err != nil {
		return nil, fmt.Errorf("list ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ids: %w", err)
	}
	return ids, nil
}

func scanDocument(row *sql.Row) (*domain.IndexedDocument, error) {
	var (
		doc              domain.IndexedDocument
		hash, attachment sql.NullString
	)
	err := row.Scan(&doc.ID, &doc.Text, &doc.Meta.Page, &doc.Meta.ChunkID,
		&hash, &doc.Meta.UpdatedAt, &doc.Meta.Path, &attachment)
	if err != nil {
		return nil, err
	}
	doc.Meta.Hash = hash.String
	doc.Meta.Attachment = attachment.String
	return &doc, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func args(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

func batches(ids []string, size int) [][]string {
	var out [][]string
	for len(ids) > size {
		out = append(out, ids[:size])
		ids = ids[size:]
	}
	if len(ids) > 0 {
		out = append(out, ids)
	}
	return out
}
