// Package content defines the block model shared by the extractor, the
// chunking engine, and the document store writer.
package content

import "fmt"

// BlockKind identifies the structural type of a content block.
type BlockKind string

const (
	KindHeading   BlockKind = "heading"
	KindParagraph BlockKind = "paragraph"
	KindList      BlockKind = "list"
	KindTable     BlockKind = "table"
	KindImage     BlockKind = "image"
	KindCodeBlock BlockKind = "code"
)

// Block is one structural unit of a document, in source order. Blocks are
// immutable once created: enrichment produces new blocks rather than
// mutating existing ones.
type Block struct {
	// Index is the block's position within its document, starting at 0.
	Index int

	Kind BlockKind

	// Level is the heading depth (1-6) and zero for non-headings.
	Level int

	// RawText is the display text. For image blocks it holds the plain
	// image marker rather than the raw markup.
	RawText string

	// EnrichedText is the text used for token counting and retrieval. It
	// may embed [label](url) links, and for image blocks it carries the
	// extracted image description once enrichment has run.
	EnrichedText string

	// ImageURL and AltText are set only for image blocks.
	ImageURL string
	AltText  string
}

// ImageMarkerPrefix starts every image marker, plain or enriched. Chunking
// uses it to detect image content carried across an overlap boundary.
const ImageMarkerPrefix = "[IMAGE"

// PlainImageMarker is the display-text stand-in for an image block.
func PlainImageMarker(altText string) string {
	if altText == "" {
		return "[IMAGE]"
	}
	return fmt.Sprintf("[IMAGE: %s]", altText)
}

// EnrichedImageMarker embeds an extracted image description into the
// retrieval text of an image block.
func EnrichedImageMarker(altText, description string) string {
	return fmt.Sprintf("[IMAGE CONTENT]\nAlt text: %s\nExtracted content: %s", altText, description)
}
