package notion

import "regexp"

var linkPattern = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)

// SegmentRichText scans text for [label](url) link markup and splits it into
// annotated runs. Plain stretches and link labels longer than runLimit are
// split into consecutive pieces; a split label yields several runs carrying
// the same link URL, since URLs themselves are never split. Content is never
// dropped: concatenating the returned run contents reproduces text with link
// markup reduced to bare labels.
func SegmentRichText(text string, runLimit int) []RichText {
	if runLimit <= 0 {
		runLimit = DefaultRunLimit
	}

	var runs []RichText
	last := 0
	for _, loc := range linkPattern.FindAllStringSubmatchIndex(text, -1) {
		if loc[0] > last {
			runs = append(runs, plainRuns(text[last:loc[0]], runLimit)...)
		}
		label := text[loc[2]:loc[3]]
		url := text[loc[4]:loc[5]]
		runs = append(runs, linkRuns(label, url, runLimit)...)
		last = loc[1]
	}
	if last < len(text) {
		runs = append(runs, plainRuns(text[last:], runLimit)...)
	}

	// Degenerate input still yields a run so no caller ever sees silence.
	if len(runs) == 0 {
		runs = plainRuns(text, runLimit)
	}
	return runs
}

func plainRuns(text string, limit int) []RichText {
	pieces := splitAtLimit(text, limit)
	runs := make([]RichText, 0, len(pieces))
	for _, p := range pieces {
		runs = append(runs, RichText{Content: p})
	}
	return runs
}

func linkRuns(label, url string, limit int) []RichText {
	pieces := splitAtLimit(label, limit)
	runs := make([]RichText, 0, len(pieces))
	for _, p := range pieces {
		runs = append(runs, RichText{Content: p, LinkURL: url})
	}
	return runs
}

// boldRuns link-parses text and marks every resulting run bold, so heading
// labels keep their hyperlinks.
func boldRuns(text string, limit int) []RichText {
	runs := SegmentRichText(text, limit)
	for i := range runs {
		runs[i].Bold = true
	}
	return runs
}

// splitAtLimit cuts text into pieces of at most limit characters, counted in
// runes so multi-byte characters are never torn apart.
func splitAtLimit(text string, limit int) []string {
	if limit <= 0 || len(text) <= limit {
		return []string{text}
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	pieces := make([]string, 0, (len(runes)+limit-1)/limit)
	for start := 0; start < len(runes); start += limit {
		end := start + limit
		if end > len(runes) {
			end = len(runes)
		}
		pieces = append(pieces, string(runes[start:end]))
	}
	return pieces
}
