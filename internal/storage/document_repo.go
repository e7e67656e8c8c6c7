package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks secbrief/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// DocumentStore defines the interface for document storage operations.
type DocumentStore interface {
	// GetBySourceURL gets a document by its source URL.
	// Returns nil and ErrNotFound if not found.
	GetBySourceURL(ctx context.Context, sourceURL string) (*DocumentRecord, error)
	// GetByPageID gets a document by its store page id.
	// Returns nil and ErrNotFound if not found.
	GetByPageID(ctx context.Context, pageID string) (*DocumentRecord, error)
	// Upsert inserts a new document or updates an existing one keyed by source URL.
	Upsert(ctx context.Context, doc *DocumentRecord) error
	// MarkIndexed records a completed index pass for the document.
	MarkIndexed(ctx context.Context, id string, lastEdited time.Time) error
	// ListAll returns all documents ordered by company then title.
	ListAll(ctx context.Context) ([]DocumentRecord, error)
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

const documentColumns = `id, company, title, source_url, notion_page_id, content_hash,
	published_at, pulled_at, last_edited_at, last_indexed_at, created_at, updated_at`

// GetBySourceURL gets a document by its source URL.
// Returns nil and ErrNotFound if not found.
func (r *DocumentRepo) GetBySourceURL(ctx context.Context, sourceURL string) (*DocumentRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE source_url = ?", sourceURL)
	return scanDocument(row)
}

// GetByPageID gets a document by its store page id.
// Returns nil and ErrNotFound if not found.
func (r *DocumentRepo) GetByPageID(ctx context.Context, pageID string) (*DocumentRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE notion_page_id = ?", pageID)
	return scanDocument(row)
}

// Upsert inserts a new document or updates an existing one.
// If the document doesn't exist (by source URL), generates a new UUID.
// If it exists, the existing ID is preserved and written back to doc.
func (r *DocumentRepo) Upsert(ctx context.Context, doc *DocumentRecord) error {
	existing, err := r.GetBySourceURL(ctx, doc.SourceURL)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to check existing document: %w", err)
	}

	if existing != nil {
		doc.ID = existing.ID
	} else if doc.ID == "" {
		doc.ID = uuid.New().String()
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO documents (id, company, title, source_url, notion_page_id, content_hash,
			published_at, pulled_at, last_edited_at, last_indexed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (source_url) DO UPDATE SET
			company = excluded.company,
			title = excluded.title,
			notion_page_id = excluded.notion_page_id,
			content_hash = excluded.content_hash,
			published_at = excluded.published_at,
			pulled_at = excluded.pulled_at,
			updated_at = CURRENT_TIMESTAMP`,
		doc.ID, doc.Company, doc.Title, doc.SourceURL, doc.NotionPageID, doc.ContentHash,
		nullableTime(doc.PublishedAt), nullableTime(doc.PulledAt),
		nullableTime(doc.LastEditedAt), nullableTime(doc.LastIndexedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	return nil
}

// MarkIndexed records a completed index pass: the store page's last edited
// time is what the next run compares against to skip unchanged documents.
func (r *DocumentRepo) MarkIndexed(ctx context.Context, id string, lastEdited time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE documents SET last_edited_at = ?, last_indexed_at = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		nullableTime(lastEdited), id,
	)
	if err != nil {
		return fmt.Errorf("failed to mark document indexed: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListAll returns all documents ordered by company then title.
func (r *DocumentRepo) ListAll(ctx context.Context) ([]DocumentRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+documentColumns+" FROM documents ORDER BY company, title")
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []DocumentRecord
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return docs, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*DocumentRecord, error) {
	var doc DocumentRecord
	var title, pageID sql.NullString
	var published, pulled, lastEdited, lastIndexed, created, updated sql.NullString

	err := row.Scan(&doc.ID, &doc.Company, &title, &doc.SourceURL, &pageID, &doc.ContentHash,
		&published, &pulled, &lastEdited, &lastIndexed, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}

	doc.Title = title.String
	doc.NotionPageID = pageID.String
	doc.PublishedAt = parseDBTime(published)
	doc.PulledAt = parseDBTime(pulled)
	doc.LastEditedAt = parseDBTime(lastEdited)
	doc.LastIndexedAt = parseDBTime(lastIndexed)
	doc.CreatedAt = parseDBTime(created)
	doc.UpdatedAt = parseDBTime(updated)
	return &doc, nil
}

// parseDBTime parses the DATETIME string formats SQLite may hand back.
func parseDBTime(v sql.NullString) time.Time {
	if !v.Valid || v.String == "" {
		return time.Time{}
	}
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v.String); err == nil {
			return t
		}
	}
	return time.Time{}
}

// nullableTime stores zero times as NULL instead of the zero-value string.
func nullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
