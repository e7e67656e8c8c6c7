package extract

import (
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"secbrief/internal/content"
)

// BlockBuilder parses markdown into ordered content blocks using the
// goldmark AST.
type BlockBuilder struct {
	parser goldmark.Markdown
}

// NewBlockBuilder creates a BlockBuilder with table support.
func NewBlockBuilder() *BlockBuilder {
	return &BlockBuilder{
		parser: goldmark.New(
			goldmark.WithExtensions(extension.Table),
		),
	}
}

// BlocksFromMarkdown parses markdown and returns the document's blocks in
// source order. RawText carries display text with plain image markers;
// EnrichedText preserves inline [label](url) and ![alt](url) markup.
func (b *BlockBuilder) BlocksFromMarkdown(markdown string) ([]content.Block, error) {
	source := []byte(markdown)
	reader := text.NewReader(source)
	doc := b.parser.Parser().Parse(reader)

	var blocks []content.Block
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		blocks = appendBlocks(blocks, n, source)
	}

	for i := range blocks {
		blocks[i].Index = i
	}
	return blocks, nil
}

// appendBlocks converts one top-level AST node into zero or more blocks.
func appendBlocks(blocks []content.Block, n ast.Node, source []byte) []content.Block {
	switch node := n.(type) {
	case *ast.Heading:
		raw, enriched := renderInline(node, source)
		if strings.TrimSpace(raw) == "" {
			return blocks
		}
		return append(blocks, content.Block{
			Kind:         content.KindHeading,
			Level:        node.Level,
			RawText:      raw,
			EnrichedText: enriched,
		})

	case *ast.Paragraph:
		if img, ok := soleImage(node, source); ok {
			alt := nodeText(img, source)
			dest := string(img.Destination)
			marker := content.PlainImageMarker(alt)
			return append(blocks, content.Block{
				Kind:         content.KindImage,
				RawText:      marker,
				EnrichedText: marker,
				ImageURL:     dest,
				AltText:      alt,
			})
		}
		raw, enriched := renderInline(node, source)
		if strings.TrimSpace(raw) == "" && strings.TrimSpace(enriched) == "" {
			return blocks
		}
		return append(blocks, content.Block{
			Kind:         content.KindParagraph,
			RawText:      raw,
			EnrichedText: enriched,
		})

	case *ast.List:
		raw, enriched := renderList(node, source, 0)
		if strings.TrimSpace(raw) == "" {
			return blocks
		}
		return append(blocks, content.Block{
			Kind:         content.KindList,
			RawText:      raw,
			EnrichedText: enriched,
		})

	case *ast.FencedCodeBlock:
		code := codeLines(node, source)
		if strings.TrimSpace(code) == "" {
			return blocks
		}
		return append(blocks, content.Block{
			Kind:         content.KindCodeBlock,
			RawText:      code,
			EnrichedText: code,
		})

	case *ast.CodeBlock:
		code := codeLines(node, source)
		if strings.TrimSpace(code) == "" {
			return blocks
		}
		return append(blocks, content.Block{
			Kind:         content.KindCodeBlock,
			RawText:      code,
			EnrichedText: code,
		})

	case *ast.Blockquote:
		// Quote content flattens into a paragraph block.
		var rawParts, enrichedParts []string
		for child := node.FirstChild(); child != nil; child = child.NextSibling() {
			raw, enriched := renderInline(child, source)
			if strings.TrimSpace(raw) != "" {
				rawParts = append(rawParts, raw)
				enrichedParts = append(enrichedParts, enriched)
			}
		}
		if len(rawParts) == 0 {
			return blocks
		}
		return append(blocks, content.Block{
			Kind:         content.KindParagraph,
			RawText:      strings.Join(rawParts, "\n"),
			EnrichedText: strings.Join(enrichedParts, "\n"),
		})

	case *extast.Table:
		raw := renderTable(node, source)
		if strings.TrimSpace(raw) == "" {
			return blocks
		}
		return append(blocks, content.Block{
			Kind:         content.KindTable,
			RawText:      raw,
			EnrichedText: raw,
		})

	default:
		// Thematic breaks, raw HTML blocks and anything else carry no
		// article text.
		return blocks
	}
}

// soleImage reports whether a paragraph consists of exactly one image.
func soleImage(p *ast.Paragraph, source []byte) (*ast.Image, bool) {
	var img *ast.Image
	for child := p.FirstChild(); child != nil; child = child.NextSibling() {
		switch node := child.(type) {
		case *ast.Image:
			if img != nil {
				return nil, false
			}
			img = node
		case *ast.Text:
			if strings.TrimSpace(string(node.Segment.Value(source))) != "" {
				return nil, false
			}
		default:
			return nil, false
		}
	}
	return img, img != nil
}

// renderInline renders a node's inline children into the display (raw)
// and retrieval (enriched) forms.
func renderInline(n ast.Node, source []byte) (string, string) {
	var raw, enriched strings.Builder
	for child := n.FirstChild(); child != nil; child = child.NextSibling() {
		appendInline(child, source, &raw, &enriched)
	}
	return strings.TrimSpace(raw.String()), strings.TrimSpace(enriched.String())
}

func appendInline(n ast.Node, source []byte, raw, enriched *strings.Builder) {
	switch node := n.(type) {
	case *ast.Text:
		segment := node.Segment.Value(source)
		raw.Write(segment)
		enriched.Write(segment)
		if node.SoftLineBreak() || node.HardLineBreak() {
			raw.WriteByte(' ')
			enriched.WriteByte(' ')
		}

	case *ast.String:
		raw.Write(node.Value)
		enriched.Write(node.Value)

	case *ast.Link:
		label := nodeText(node, source)
		raw.WriteString(label)
		fmt.Fprintf(enriched, "[%s](%s)", label, string(node.Destination))

	case *ast.AutoLink:
		link := string(node.URL(source))
		raw.WriteString(link)
		enriched.WriteString(link)

	case *ast.Image:
		alt := nodeText(node, source)
		raw.WriteString(content.PlainImageMarker(alt))
		fmt.Fprintf(enriched, "![%s](%s)", alt, string(node.Destination))

	case *ast.CodeSpan:
		code := nodeText(node, source)
		raw.WriteString(code)
		enriched.WriteString(code)

	default:
		// Emphasis and other wrappers contribute only their children.
		for child := n.FirstChild(); child != nil; child = child.NextSibling() {
			appendInline(child, source, raw, enriched)
		}
	}
}

// renderList renders a list with "- " item markers, indenting nested
// lists.
func renderList(list *ast.List, source []byte, depth int) (string, string) {
	indent := strings.Repeat("  ", depth)
	var rawLines, enrichedLines []string

	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		var itemRaw, itemEnriched strings.Builder
		for child := item.FirstChild(); child != nil; child = child.NextSibling() {
			if nested, ok := child.(*ast.List); ok {
				nestedRaw, nestedEnriched := renderList(nested, source, depth+1)
				if nestedRaw != "" {
					if itemRaw.Len() > 0 {
						rawLines = append(rawLines, indent+"- "+strings.TrimSpace(itemRaw.String()))
						enrichedLines = append(enrichedLines, indent+"- "+strings.TrimSpace(itemEnriched.String()))
						itemRaw.Reset()
						itemEnriched.Reset()
					}
					rawLines = append(rawLines, nestedRaw)
					enrichedLines = append(enrichedLines, nestedEnriched)
				}
				continue
			}
			raw, enriched := renderInline(child, source)
			if itemRaw.Len() > 0 && raw != "" {
				itemRaw.WriteByte(' ')
				itemEnriched.WriteByte(' ')
			}
			itemRaw.WriteString(raw)
			itemEnriched.WriteString(enriched)
		}
		if strings.TrimSpace(itemRaw.String()) != "" {
			rawLines = append(rawLines, indent+"- "+strings.TrimSpace(itemRaw.String()))
			enrichedLines = append(enrichedLines, indent+"- "+strings.TrimSpace(itemEnriched.String()))
		}
	}

	return strings.Join(rawLines, "\n"), strings.Join(enrichedLines, "\n")
}

// renderTable flattens a table into one line per row with " | " between
// cells.
func renderTable(table *extast.Table, source []byte) string {
	var lines []string
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			text, _ := renderInline(cell, source)
			cells = append(cells, text)
		}
		if len(cells) > 0 {
			lines = append(lines, strings.Join(cells, " | "))
		}
	}
	return strings.Join(lines, "\n")
}

// codeLines joins a code block's source lines, trimming the trailing
// newline.
func codeLines(n ast.Node, source []byte) string {
	var builder strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		builder.Write(segment.Value(source))
	}
	return strings.TrimRight(builder.String(), "\n")
}

// nodeText collects the plain text of a node's subtree.
func nodeText(n ast.Node, source []byte) string {
	var builder strings.Builder
	_ = ast.Walk(n, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := node.(type) {
		case *ast.Text:
			builder.Write(t.Segment.Value(source))
		case *ast.String:
			builder.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(builder.String())
}
