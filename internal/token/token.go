// Package token provides the tokenizer capability used by the chunking
// engine. Tokenizers are injected so chunk-boundary logic never depends on a
// specific encoding, only on token counts.
package token

// Tokenizer converts text to and from a sequence of integer token ids.
type Tokenizer interface {
	// Encode converts text into token ids.
	Encode(text string) ([]int, error)

	// Decode re-materializes token ids into text.
	Decode(ids []int) (string, error)
}

// Count returns the number of tokens in text.
func Count(tk Tokenizer, text string) (int, error) {
	ids, err := tk.Encode(text)
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}
