package llm

import (
	"context"
	"fmt"
	"net/http"
)

// EmbeddingsClient is a client for the Azure OpenAI embeddings API.
type EmbeddingsClient struct {
	Endpoint     string
	APIKey       string
	APIVersion   string
	Deployment   string
	ExpectedSize int // Expected vector size for validation
	client       *http.Client
}

// NewEmbeddingsClient creates a new embeddings client.
// expectedSize is the expected vector size (from EMBEDDING_VECTOR_SIZE
// config). All embeddings returned by EmbedTexts are validated against it.
func NewEmbeddingsClient(endpoint, apiKey, apiVersion, deployment string, expectedSize int) *EmbeddingsClient {
	return &EmbeddingsClient{
		Endpoint:     endpoint,
		APIKey:       apiKey,
		APIVersion:   apiVersion,
		Deployment:   deployment,
		ExpectedSize: expectedSize,
		client:       http.DefaultClient,
	}
}

// EmbeddingsRequest represents the request payload for the embeddings API.
type EmbeddingsRequest struct {
	Input []string `json:"input"`
}

// EmbeddingData represents a single embedding in the response.
type EmbeddingData struct {
	Embedding []float64 `json:"embedding"`
}

// EmbeddingsResponse represents the response from the embeddings API.
type EmbeddingsResponse struct {
	Data []EmbeddingData `json:"data"`
}

// EmbedTexts generates embeddings for the given texts.
// Returns a slice of float32 vectors, one per input text, and validates
// that all returned vectors match the expected size.
func (c *EmbeddingsClient) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("empty input array")
	}

	payload := EmbeddingsRequest{Input: texts}

	var embeddingsResp EmbeddingsResponse
	if err := postAzure(ctx, c.client, c.Endpoint, c.APIKey, c.APIVersion, c.Deployment,
		"embeddings", payload, &embeddingsResp); err != nil {
		return nil, err
	}

	if len(embeddingsResp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d embeddings, got %d", len(texts), len(embeddingsResp.Data))
	}

	// Convert []float64 to []float32 and validate size
	result := make([][]float32, len(embeddingsResp.Data))
	for i, data := range embeddingsResp.Data {
		if len(data.Embedding) != c.ExpectedSize {
			return nil, fmt.Errorf("embedding %d has size %d, expected %d", i, len(data.Embedding), c.ExpectedSize)
		}

		vec := make([]float32, len(data.Embedding))
		for j, v := range data.Embedding {
			vec[j] = float32(v)
		}
		result[i] = vec
	}

	return result, nil
}
