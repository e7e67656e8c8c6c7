package token

import (
	"strings"
	"sync"
)

// Words is a whitespace tokenizer: one token per word. It needs no BPE
// dictionary, which makes it suitable for offline runs, at the cost of
// coarser counts and of collapsing runs of whitespace on decode.
type Words struct {
	mu    sync.Mutex
	ids   map[string]int
	words []string
}

// NewWords creates an empty word tokenizer. Ids are assigned on first sight
// and are stable within one instance.
func NewWords() *Words {
	return &Words{ids: make(map[string]int)}
}

// Encode assigns one token id per whitespace-separated word.
func (w *Words) Encode(text string) ([]int, error) {
	fields := strings.Fields(text)
	ids := make([]int, 0, len(fields))

	w.mu.Lock()
	defer w.mu.Unlock()
	for _, f := range fields {
		id, ok := w.ids[f]
		if !ok {
			id = len(w.words)
			w.ids[f] = id
			w.words = append(w.words, f)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Decode joins the words for ids with single spaces. Unknown ids decode to
// nothing.
func (w *Words) Decode(ids []int) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		if id >= 0 && id < len(w.words) {
			parts = append(parts, w.words[id])
		}
	}
	return strings.Join(parts, " "), nil
}
