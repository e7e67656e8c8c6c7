// Package llm holds the Azure OpenAI clients: chat completions, embeddings
// and image description.
package llm

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_clients.go -package=mocks secbrief/internal/llm Embedder,ChatClient,Captioner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Embedder turns texts into embedding vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatClient answers chat completion requests.
type ChatClient interface {
	Chat(ctx context.Context, messages []ChatMessage) (string, error)
}

// Captioner describes an image given its URL.
type Captioner interface {
	Describe(ctx context.Context, imageURL, altText string) (string, error)
}

// ChatMessage represents a single message in a chat conversation. Content
// is a plain string for text-only messages and a part list for messages
// carrying images.
type ChatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

// TextMessage builds a plain text chat message.
func TextMessage(role, content string) ChatMessage {
	return ChatMessage{Role: role, Content: content}
}

// Client is a client for the Azure OpenAI chat completions API.
type Client struct {
	Endpoint   string
	APIKey     string
	APIVersion string
	Deployment string
	client     *http.Client
}

// NewClient creates a new chat client for the given deployment.
func NewClient(endpoint, apiKey, apiVersion, deployment string) *Client {
	return &Client{
		Endpoint:   endpoint,
		APIKey:     apiKey,
		APIVersion: apiVersion,
		Deployment: deployment,
		client:     http.DefaultClient,
	}
}

// ChatRequest represents the request payload for chat completions.
type ChatRequest struct {
	Messages    []ChatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature,omitempty"`
}

// ChatChoiceMessage represents the message in a chat choice.
type ChatChoiceMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatChoice represents a single choice in the chat response.
type ChatChoice struct {
	Index        int               `json:"index"`
	Message      ChatChoiceMessage `json:"message"`
	FinishReason string            `json:"finish_reason"`
}

// ChatResponse represents the response from the chat completions API.
type ChatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Choices []ChatChoice `json:"choices"`
}

// Chat sends a chat completion request and returns the first choice's text.
func (c *Client) Chat(ctx context.Context, messages []ChatMessage) (string, error) {
	payload := ChatRequest{
		Messages:    messages,
		Temperature: 0.7,
	}

	var chatResp ChatResponse
	if err := postAzure(ctx, c.client, c.Endpoint, c.APIKey, c.APIVersion, c.Deployment,
		"chat/completions", payload, &chatResp); err != nil {
		return "", err
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	return chatResp.Choices[0].Message.Content, nil
}

// postAzure issues one deployment-scoped POST with the api-key header Azure
// expects and decodes the JSON response into out.
func postAzure(ctx context.Context, client *http.Client, endpoint, apiKey, apiVersion, deployment, operation string, payload, out any) error {
	reqURL := fmt.Sprintf("%s/openai/deployments/%s/%s?api-version=%s",
		endpoint, url.PathEscape(deployment), operation, url.QueryEscape(apiVersion))

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("api-key", apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("bad status %d: %s", resp.StatusCode, string(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}
