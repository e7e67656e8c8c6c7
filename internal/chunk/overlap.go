package chunk

import (
	"fmt"

	"secbrief/internal/token"
)

// Overlap returns the trailing k tokens of text re-materialized as text.
// Text that already fits within k tokens is returned unchanged. The result
// may begin mid-word because token boundaries need not align with word
// boundaries.
func Overlap(tk token.Tokenizer, text string, k int) (string, error) {
	if k <= 0 {
		return "", nil
	}

	ids, err := tk.Encode(text)
	if err != nil {
		return "", fmt.Errorf("failed to tokenize overlap source: %w", err)
	}
	if len(ids) <= k {
		return text, nil
	}

	tail, err := tk.Decode(ids[len(ids)-k:])
	if err != nil {
		return "", fmt.Errorf("failed to decode overlap window: %w", err)
	}
	return tail, nil
}
