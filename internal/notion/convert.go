package notion

import (
	"regexp"
	"strings"
)

var (
	headingPattern = regexp.MustCompile(`^(#{1,6})\s+(.*)`)
	imagePattern   = regexp.MustCompile(`!\[([^\]]*)\]\((.*?)\)`)
)

// matchKind is the dispatch decision for one scan step over an item's
// remaining text. Exactly one kind applies per step, in priority order:
// heading, then image, then plain text.
type matchKind int

const (
	matchPlainText matchKind = iota
	matchHeading
	matchImage
)

func classify(remaining string) matchKind {
	if headingPattern.MatchString(strings.TrimSpace(remaining)) {
		return matchHeading
	}
	if imagePattern.MatchString(remaining) {
		return matchImage
	}
	return matchPlainText
}

// Convert scans ordered text items and emits typed store blocks. Each item
// is one already-merged textual unit, e.g. one paragraph's markdown or one
// finalized chunk's display text.
//
// A heading match consumes its entire item, so markup after a heading is
// carried inside the heading's runs rather than scanned further. Images
// whose URL fails sanitization are dropped without a placeholder; their
// surrounding text is kept. Malformed markup falls through to paragraph
// emission, so visible text is never lost.
func Convert(items []string, limits Limits) []Block {
	if limits.RunLimit <= 0 {
		limits.RunLimit = DefaultRunLimit
	}
	if limits.BlockCeiling <= 0 {
		limits.BlockCeiling = DefaultBlockCeiling
	}

	var blocks []Block
	for _, item := range items {
		remaining := item
		for strings.TrimSpace(remaining) != "" {
			switch classify(remaining) {
			case matchHeading:
				blocks = append(blocks, headingBlock(strings.TrimSpace(remaining), limits))
				remaining = ""

			case matchImage:
				loc := imagePattern.FindStringSubmatchIndex(remaining)
				alt := remaining[loc[2]:loc[3]]
				rawURL := remaining[loc[4]:loc[5]]

				if before := strings.TrimSpace(remaining[:loc[0]]); before != "" {
					blocks = append(blocks, paragraphBlocks(before, limits)...)
				}
				if url := SanitizeURL(rawURL); url != "" {
					blocks = append(blocks, Block{
						Type:     BlockImage,
						ImageURL: url,
						Caption:  strings.TrimSpace(alt),
					})
				}
				remaining = remaining[loc[1]:]

			case matchPlainText:
				blocks = append(blocks, paragraphBlocks(strings.TrimSpace(remaining), limits)...)
				remaining = ""
			}
		}
	}
	return blocks
}

// headingBlock turns "## Title" into a heading block with bold label runs.
// Text on the following lines is appended after a line-break run.
func headingBlock(trimmed string, limits Limits) Block {
	m := headingPattern.FindStringSubmatch(trimmed)
	label := strings.TrimSpace(m[2])

	runs := boldRuns(label, limits.RunLimit)
	if rest := strings.TrimSpace(trimmed[len(m[0]):]); rest != "" {
		runs = append(runs, RichText{Content: "\n"})
		runs = append(runs, SegmentRichText(rest, limits.RunLimit)...)
	}
	return Block{Type: BlockHeading, Runs: runs}
}

// paragraphBlocks wraps text into paragraph blocks, splitting into siblings
// at the block ceiling before rich text segmentation.
func paragraphBlocks(text string, limits Limits) []Block {
	pieces := splitAtLimit(text, limits.BlockCeiling)
	blocks := make([]Block, 0, len(pieces))
	for _, p := range pieces {
		blocks = append(blocks, Block{
			Type: BlockParagraph,
			Runs: SegmentRichText(p, limits.RunLimit),
		})
	}
	return blocks
}
