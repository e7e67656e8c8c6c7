// Package notion converts annotated text into the bounded block structures
// the document store accepts, and talks to the store's HTTP API.
package notion

import "time"

const (
	// DefaultRunLimit is the store's per-run rich text ceiling.
	DefaultRunLimit = 1900

	// DefaultBlockCeiling is the store's per-block character ceiling.
	DefaultBlockCeiling = 2000
)

// Limits carries the store's size ceilings into conversion.
type Limits struct {
	RunLimit     int
	BlockCeiling int
}

// DefaultLimits returns the store's documented ceilings.
func DefaultLimits() Limits {
	return Limits{RunLimit: DefaultRunLimit, BlockCeiling: DefaultBlockCeiling}
}

// RichText is a minimal annotated span: plain or hyperlinked, optionally
// bold. Content never exceeds the run limit after segmentation.
type RichText struct {
	Content string
	LinkURL string
	Bold    bool
}

// BlockType tags the variants of an output block.
type BlockType string

const (
	BlockHeading   BlockType = "heading"
	BlockParagraph BlockType = "paragraph"
	BlockImage     BlockType = "image"
)

// Block is one typed unit of converted content, written in order as a child
// of a store page.
type Block struct {
	Type BlockType

	// Runs holds the rich text of heading and paragraph blocks.
	Runs []RichText

	// ImageURL and Caption are set only for image blocks.
	ImageURL string
	Caption  string
}

// Page summarizes one store page holding an ingested document.
type Page struct {
	ID           string
	Title        string
	Company      string
	SourceURL    string
	PublishedAt  time.Time
	LastEditedAt time.Time
	ImageURLs    []string
}

// PageProperties is the property set written when a document page is
// created.
type PageProperties struct {
	Title         string
	Company       string
	SourceURL     string
	PublishedAt   time.Time
	PulledAt      time.Time
	ImageURLs     []string
	OutboundLinks []string
}
