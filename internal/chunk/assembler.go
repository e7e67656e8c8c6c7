// Package chunk folds ordered content blocks into token-bounded retrieval
// chunks, carrying a token overlap across consecutive chunk boundaries.
package chunk

import (
	"fmt"
	"strings"

	"secbrief/internal/content"
	"secbrief/internal/token"
)

const (
	// DefaultMaxTokens bounds one chunk's enriched text.
	DefaultMaxTokens = 380

	// DefaultOverlapTokens is the tail carried into the next chunk.
	DefaultOverlapTokens = 40
)

// Chunk is a token-bounded contiguous passage of one document, prepared for
// retrieval indexing.
type Chunk struct {
	// ID is deterministic: derived from the document id and the chunk's
	// 1-based sequence number, never from run composition.
	ID string

	// Text is the display text, with plain image markers standing in for
	// images.
	Text string

	// EnrichedText is the retrieval text the token budget applies to.
	EnrichedText string

	// TokenCount is the token length of EnrichedText as stored.
	TokenCount int

	// SourceBlocks are the blocks folded into this chunk, in order.
	SourceBlocks []content.Block

	// HasImages is true when the chunk carries image content, including
	// image markers inherited through the overlap window.
	HasImages bool

	// ContentKinds lists the block kinds present, in first-seen order.
	ContentKinds []content.BlockKind
}

// Assembler builds chunks by greedily accumulating blocks until the token
// budget would be exceeded.
type Assembler struct {
	tk            token.Tokenizer
	maxTokens     int
	overlapTokens int
}

// NewAssembler creates an assembler with the given budget and overlap.
// Non-positive values fall back to the defaults.
func NewAssembler(tk token.Tokenizer, maxTokens, overlapTokens int) *Assembler {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if overlapTokens < 0 {
		overlapTokens = DefaultOverlapTokens
	}
	return &Assembler{tk: tk, maxTokens: maxTokens, overlapTokens: overlapTokens}
}

// accumulator is the in-progress chunk. It is a plain value owned by one
// Assemble call; no state survives the call.
type accumulator struct {
	text      string
	enriched  string
	blocks    []content.Block
	hasImages bool
}

// Assemble folds blocks, in order, into token-bounded chunks. A candidate
// that would push the accumulator strictly past the budget finalizes the
// current chunk and seeds the next one with the overlap tail. A candidate
// landing exactly on the budget is accepted. A single block larger than the
// whole budget is emitted alone, over budget: blocks are never split.
//
// Tokenizer errors abort the document; callers are expected to skip the
// document and continue with others.
func (a *Assembler) Assemble(docID string, blocks []content.Block) ([]Chunk, error) {
	var chunks []Chunk
	var acc accumulator

	for _, blk := range blocks {
		if strings.TrimSpace(blk.EnrichedText) == "" {
			continue
		}

		candText := joinBlocks(acc.text, blk.RawText)
		candEnriched := joinBlocks(acc.enriched, blk.EnrichedText)

		n, err := token.Count(a.tk, candEnriched)
		if err != nil {
			return nil, fmt.Errorf("failed to tokenize candidate at block %d: %w", blk.Index, err)
		}

		if n > a.maxTokens && strings.TrimSpace(acc.enriched) != "" {
			ch, err := a.finalize(docID, len(chunks)+1, acc)
			if err != nil {
				return nil, err
			}
			chunks = append(chunks, ch)

			overlapText, err := Overlap(a.tk, acc.text, a.overlapTokens)
			if err != nil {
				return nil, err
			}
			overlapEnriched, err := Overlap(a.tk, acc.enriched, a.overlapTokens)
			if err != nil {
				return nil, err
			}

			acc = accumulator{
				text:      joinBlocks(overlapText, blk.RawText),
				enriched:  joinBlocks(overlapEnriched, blk.EnrichedText),
				blocks:    []content.Block{blk},
				hasImages: strings.Contains(overlapEnriched, content.ImageMarkerPrefix) || blk.ImageURL != "",
			}
			continue
		}

		acc.text = candText
		acc.enriched = candEnriched
		acc.blocks = append(acc.blocks, blk)
		if blk.ImageURL != "" {
			acc.hasImages = true
		}
	}

	if strings.TrimSpace(acc.enriched) != "" {
		ch, err := a.finalize(docID, len(chunks)+1, acc)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, ch)
	}

	return chunks, nil
}

// finalize seals the accumulator as the numth chunk of the document. The
// token count is computed on the stored text so the count always matches
// what downstream consumers re-tokenize.
func (a *Assembler) finalize(docID string, num int, acc accumulator) (Chunk, error) {
	enriched := strings.TrimSpace(acc.enriched)

	count, err := token.Count(a.tk, enriched)
	if err != nil {
		return Chunk{}, fmt.Errorf("failed to tokenize chunk %d: %w", num, err)
	}

	kinds := make([]content.BlockKind, 0, len(acc.blocks))
	seen := make(map[content.BlockKind]bool, len(acc.blocks))
	for _, b := range acc.blocks {
		if !seen[b.Kind] {
			seen[b.Kind] = true
			kinds = append(kinds, b.Kind)
		}
	}

	return Chunk{
		ID:           ChunkID(docID, num),
		Text:         strings.TrimSpace(acc.text),
		EnrichedText: enriched,
		TokenCount:   count,
		SourceBlocks: acc.blocks,
		HasImages:    acc.hasImages,
		ContentKinds: kinds,
	}, nil
}

// ChunkID derives the deterministic id of the numth chunk (1-based) of the
// document identified by docID.
func ChunkID(docID string, num int) string {
	short := strings.ReplaceAll(docID, "-", "")
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("%s_chunk_%d", short, num)
}

func joinBlocks(a, b string) string {
	if a == "" {
		return b
	}
	return a + "\n\n" + b
}
