package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_caption_store.go -package=mocks secbrief/internal/storage CaptionStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// CaptionStore defines the interface for cached image caption operations.
type CaptionStore interface {
	// Get returns the cached caption for an image URL, or ErrNotFound.
	Get(ctx context.Context, imageURL string) (*CaptionRecord, error)
	// Put stores or replaces the caption for an image URL.
	Put(ctx context.Context, caption *CaptionRecord) error
}

// CaptionRepo provides methods for caption cache operations.
// It implements the CaptionStore interface.
type CaptionRepo struct {
	db *sql.DB
}

// NewCaptionRepo creates a new CaptionRepo.
func NewCaptionRepo(db *sql.DB) *CaptionRepo {
	return &CaptionRepo{db: db}
}

// Get returns the cached caption for an image URL, or ErrNotFound.
func (r *CaptionRepo) Get(ctx context.Context, imageURL string) (*CaptionRecord, error) {
	var rec CaptionRecord
	var alt, model sql.NullString

	err := r.db.QueryRowContext(ctx,
		"SELECT image_url, alt_text, caption, model FROM captions WHERE image_url = ?",
		imageURL,
	).Scan(&rec.ImageURL, &alt, &rec.Caption, &model)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query caption: %w", err)
	}

	rec.AltText = alt.String
	rec.Model = model.String
	return &rec, nil
}

// Put stores or replaces the caption for an image URL.
func (r *CaptionRepo) Put(ctx context.Context, caption *CaptionRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO captions (image_url, alt_text, caption, model)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (image_url) DO UPDATE SET
			alt_text = excluded.alt_text,
			caption = excluded.caption,
			model = excluded.model`,
		caption.ImageURL, caption.AltText, caption.Caption, caption.Model,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert caption: %w", err)
	}
	return nil
}
