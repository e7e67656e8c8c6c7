package storage

import "time"

// DocumentRecord represents one ingested source document in the database.
// The document store page is the authoritative copy of the content; this
// row tracks identity, dedup hashes and indexing state.
type DocumentRecord struct {
	ID            string // UUID
	Company       string // Source vendor name (e.g., "okta", "mandiant")
	Title         string
	SourceURL     string // Original article URL, unique
	NotionPageID  string
	ContentHash   string // SHA256 hex string of the extracted markdown
	PublishedAt   time.Time
	PulledAt      time.Time
	LastEditedAt  time.Time // Store page last_edited_time at last index
	LastIndexedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ChunkRecord represents one retrieval chunk of a document, mirrored from
// the chunking engine output so answers can quote full chunk text without a
// vector store round trip.
type ChunkRecord struct {
	ID           string // Chunk id from the assembler (document short id + sequence)
	DocumentID   string // Foreign key to documents.id
	Seq          int    // 1-based sequence within the document
	Text         string
	EnrichedText string
	TokenCount   int
	HasImages    bool
	ContentKinds string // Comma-joined block kinds, first-seen order
	PointID      string // Deterministic vector store point id (UUID)
	CreatedAt    time.Time
}

// CaptionRecord caches one image description keyed by image URL, so a
// re-index never re-captions an unchanged image.
type CaptionRecord struct {
	ImageURL  string
	AltText   string
	Caption   string
	Model     string
	CreatedAt time.Time
}
