package chunk

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"secbrief/internal/content"
	"secbrief/internal/token"
)

func words(prefix string, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("%s%d", prefix, i+1)
	}
	return strings.Join(parts, " ")
}

func paragraph(index int, text string) content.Block {
	return content.Block{
		Index:        index,
		Kind:         content.KindParagraph,
		RawText:      text,
		EnrichedText: text,
	}
}

func TestNewAssemblerDefaults(t *testing.T) {
	a := NewAssembler(token.NewWords(), 0, -1)
	if a.maxTokens != DefaultMaxTokens {
		t.Errorf("maxTokens = %d, want %d", a.maxTokens, DefaultMaxTokens)
	}
	if a.overlapTokens != DefaultOverlapTokens {
		t.Errorf("overlapTokens = %d, want %d", a.overlapTokens, DefaultOverlapTokens)
	}
}

func TestAssembleTwoChunksWithOverlap(t *testing.T) {
	tk := token.NewWords()
	a := NewAssembler(tk, 60, 10)
	docID := "1f3a9c2b-77aa-4bbb-8ccc-0123456789ab"

	blocks := []content.Block{
		paragraph(0, words("a", 50)),
		paragraph(1, words("b", 50)),
	}

	chunks, err := a.Assemble(docID, blocks)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("Assemble() produced %d chunks, want 2", len(chunks))
	}

	first, second := chunks[0], chunks[1]

	if first.ID != "1f3a9c2b_chunk_1" || second.ID != "1f3a9c2b_chunk_2" {
		t.Errorf("chunk ids = %q, %q", first.ID, second.ID)
	}
	if first.TokenCount != 50 {
		t.Errorf("first chunk TokenCount = %d, want 50", first.TokenCount)
	}
	if !strings.HasPrefix(second.EnrichedText, "a41") {
		t.Errorf("second chunk should begin with the overlap tail, got %q", second.EnrichedText[:20])
	}
	if second.TokenCount != 60 {
		t.Errorf("second chunk TokenCount = %d, want 60", second.TokenCount)
	}
	if len(first.SourceBlocks) != 1 || first.SourceBlocks[0].Index != 0 {
		t.Errorf("first chunk SourceBlocks = %+v", first.SourceBlocks)
	}
	if len(second.SourceBlocks) != 1 || second.SourceBlocks[0].Index != 1 {
		t.Errorf("second chunk SourceBlocks = %+v", second.SourceBlocks)
	}

	for i, ch := range chunks {
		n, err := token.Count(tk, ch.EnrichedText)
		if err != nil {
			t.Fatalf("Count() error = %v", err)
		}
		if n != ch.TokenCount {
			t.Errorf("chunk %d TokenCount = %d, re-tokenized = %d", i, ch.TokenCount, n)
		}
	}
}

func TestAssembleExactBudgetAccepted(t *testing.T) {
	tests := []struct {
		name       string
		maxTokens  int
		wantChunks int
	}{
		{name: "candidate equal to budget stays in one chunk", maxTokens: 60, wantChunks: 1},
		{name: "candidate one past budget splits", maxTokens: 59, wantChunks: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAssembler(token.NewWords(), tt.maxTokens, 10)
			blocks := []content.Block{
				paragraph(0, words("a", 30)),
				paragraph(1, words("b", 30)),
			}
			chunks, err := a.Assemble("doc", blocks)
			if err != nil {
				t.Fatalf("Assemble() error = %v", err)
			}
			if len(chunks) != tt.wantChunks {
				t.Errorf("Assemble() produced %d chunks, want %d", len(chunks), tt.wantChunks)
			}
		})
	}
}

func TestAssembleOversizedBlockEmittedAlone(t *testing.T) {
	a := NewAssembler(token.NewWords(), 40, 5)

	chunks, err := a.Assemble("doc", []content.Block{paragraph(0, words("c", 100))})
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("Assemble() produced %d chunks, want 1", len(chunks))
	}
	if chunks[0].TokenCount != 100 {
		t.Errorf("TokenCount = %d, want 100 (budget overrun is accepted)", chunks[0].TokenCount)
	}
	if len(chunks[0].SourceBlocks) != 1 {
		t.Errorf("SourceBlocks length = %d, want 1", len(chunks[0].SourceBlocks))
	}
}

func TestAssembleOversizedBlockThenSmallBlock(t *testing.T) {
	a := NewAssembler(token.NewWords(), 40, 5)

	blocks := []content.Block{
		paragraph(0, words("c", 100)),
		paragraph(1, words("d", 5)),
	}

	chunks, err := a.Assemble("doc", blocks)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("Assemble() produced %d chunks, want 2", len(chunks))
	}
	if chunks[0].TokenCount != 100 || len(chunks[0].SourceBlocks) != 1 {
		t.Errorf("oversized chunk = %d tokens over %d blocks", chunks[0].TokenCount, len(chunks[0].SourceBlocks))
	}
	if !strings.HasPrefix(chunks[1].EnrichedText, "c96") {
		t.Errorf("second chunk should begin with overlap tail, got %q", chunks[1].EnrichedText)
	}
	if chunks[1].TokenCount != 10 {
		t.Errorf("second chunk TokenCount = %d, want 10", chunks[1].TokenCount)
	}
}

func TestAssembleSkipsBlankBlocks(t *testing.T) {
	a := NewAssembler(token.NewWords(), 60, 10)

	tests := []struct {
		name       string
		blocks     []content.Block
		wantChunks int
	}{
		{name: "nil blocks", blocks: nil, wantChunks: 0},
		{
			name: "all blank",
			blocks: []content.Block{
				paragraph(0, ""),
				paragraph(1, "   \n\t"),
			},
			wantChunks: 0,
		},
		{
			name: "blank blocks dropped around content",
			blocks: []content.Block{
				paragraph(0, ""),
				paragraph(1, "real content here"),
				paragraph(2, "  "),
			},
			wantChunks: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks, err := a.Assemble("doc", tt.blocks)
			if err != nil {
				t.Fatalf("Assemble() error = %v", err)
			}
			if len(chunks) != tt.wantChunks {
				t.Errorf("Assemble() produced %d chunks, want %d", len(chunks), tt.wantChunks)
			}
		})
	}
}

func TestAssembleContentKindsFirstSeenOrder(t *testing.T) {
	a := NewAssembler(token.NewWords(), 200, 10)

	blocks := []content.Block{
		paragraph(0, "intro paragraph text"),
		{Index: 1, Kind: content.KindHeading, Level: 2, RawText: "Threat overview", EnrichedText: "Threat overview"},
		paragraph(2, "second paragraph text"),
		{
			Index:        3,
			Kind:         content.KindImage,
			RawText:      content.PlainImageMarker("chart"),
			EnrichedText: content.EnrichedImageMarker("chart", "a diagram of the intrusion chain"),
			ImageURL:     "https://example.com/chart.png",
			AltText:      "chart",
		},
	}

	chunks, err := a.Assemble("doc", blocks)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("Assemble() produced %d chunks, want 1", len(chunks))
	}

	want := []content.BlockKind{content.KindParagraph, content.KindHeading, content.KindImage}
	if !reflect.DeepEqual(chunks[0].ContentKinds, want) {
		t.Errorf("ContentKinds = %v, want %v", chunks[0].ContentKinds, want)
	}
	if !chunks[0].HasImages {
		t.Error("HasImages = false, want true")
	}
	if !strings.Contains(chunks[0].Text, "[IMAGE: chart]") {
		t.Errorf("chunk text should carry the plain image marker, got %q", chunks[0].Text)
	}
}

func TestAssembleOverlapCarriesImageFlag(t *testing.T) {
	a := NewAssembler(token.NewWords(), 32, 12)

	blocks := []content.Block{
		paragraph(0, words("w", 20)),
		{
			Index:        1,
			Kind:         content.KindImage,
			RawText:      content.PlainImageMarker("chart"),
			EnrichedText: content.EnrichedImageMarker("chart", "desc words here"),
			ImageURL:     "https://example.com/chart.png",
			AltText:      "chart",
		},
		paragraph(2, words("v", 30)),
	}

	chunks, err := a.Assemble("doc", blocks)
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("Assemble() produced %d chunks, want 2", len(chunks))
	}

	second := chunks[1]
	if !second.HasImages {
		t.Error("second chunk HasImages = false, want true (marker carried by overlap)")
	}
	if want := []content.BlockKind{content.KindParagraph}; !reflect.DeepEqual(second.ContentKinds, want) {
		t.Errorf("second chunk ContentKinds = %v, want %v", second.ContentKinds, want)
	}
	if len(second.SourceBlocks) != 1 || second.SourceBlocks[0].Index != 2 {
		t.Errorf("second chunk SourceBlocks = %+v", second.SourceBlocks)
	}
}

func TestAssembleDeterministic(t *testing.T) {
	build := func() ([]Chunk, error) {
		a := NewAssembler(token.NewWords(), 30, 8)
		blocks := []content.Block{
			paragraph(0, words("a", 20)),
			{Index: 1, Kind: content.KindHeading, Level: 3, RawText: "Findings", EnrichedText: "Findings"},
			paragraph(2, words("b", 25)),
			paragraph(3, words("c", 15)),
		}
		return a.Assemble("9a8b7c6d-0000-1111-2222-333344445555", blocks)
	}

	first, err := build()
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	second, err := build()
	if err != nil {
		t.Fatalf("Assemble() error = %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated runs differ:\n%+v\n%+v", first, second)
	}
}

func TestAssembleTokenizerErrorPropagates(t *testing.T) {
	wantErr := errors.New("encoding blew up")
	a := NewAssembler(failingTokenizer{err: wantErr}, 60, 10)

	chunks, err := a.Assemble("doc", []content.Block{paragraph(0, "some text")})
	if err == nil {
		t.Fatal("Assemble() expected error, got nil")
	}
	if !errors.Is(err, wantErr) {
		t.Errorf("Assemble() error = %v, want wrapped %v", err, wantErr)
	}
	if chunks != nil {
		t.Errorf("Assemble() chunks = %+v, want nil on error", chunks)
	}
}

func TestChunkID(t *testing.T) {
	tests := []struct {
		docID string
		num   int
		want  string
	}{
		{"1f3a9c2b-77aa-4bbb-8ccc-0123456789ab", 3, "1f3a9c2b_chunk_3"},
		{"abcd-efgh", 2, "abcdefgh_chunk_2"},
		{"abc", 1, "abc_chunk_1"},
	}

	for _, tt := range tests {
		if got := ChunkID(tt.docID, tt.num); got != tt.want {
			t.Errorf("ChunkID(%q, %d) = %q, want %q", tt.docID, tt.num, got, tt.want)
		}
	}
}
