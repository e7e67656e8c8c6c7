package token

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE dictionary used for chunk budgeting. It matches
// the embedding models the indexer targets.
const DefaultEncoding = "cl100k_base"

// Tiktoken wraps a tiktoken BPE encoding as a Tokenizer.
type Tiktoken struct {
	enc *tiktoken.Tiktoken
}

// NewTiktoken loads the named BPE encoding, e.g. "cl100k_base".
func NewTiktoken(encoding string) (*Tiktoken, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding %q: %w", encoding, err)
	}
	return &Tiktoken{enc: enc}, nil
}

// Encode converts text into BPE token ids.
func (t *Tiktoken) Encode(text string) ([]int, error) {
	return t.enc.Encode(text, nil, nil), nil
}

// Decode re-materializes BPE token ids into text. The result may start or
// end mid-word because BPE tokens do not align with word boundaries.
func (t *Tiktoken) Decode(ids []int) (string, error) {
	return t.enc.Decode(ids), nil
}
