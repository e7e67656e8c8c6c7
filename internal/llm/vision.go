package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// visionPrompt asks the model for the two things retrieval needs from an
// image: the literal text it contains and what it depicts.
const visionPrompt = "Extract all visible text from this image exactly as written. " +
	"Then briefly describe what the image shows (e.g., screenshot, diagram, chart, code). " +
	"If the image contains a table or structured data, reproduce it as plain text."

// VisionClient describes images via a multimodal chat deployment.
type VisionClient struct {
	Endpoint   string
	APIKey     string
	APIVersion string
	Deployment string
	client     *http.Client
}

// NewVisionClient creates a new vision client for the given deployment.
func NewVisionClient(endpoint, apiKey, apiVersion, deployment string) *VisionClient {
	return &VisionClient{
		Endpoint:   endpoint,
		APIKey:     apiKey,
		APIVersion: apiVersion,
		Deployment: deployment,
		client:     http.DefaultClient,
	}
}

type contentPart struct {
	Type     string        `json:"type"`
	Text     string        `json:"text,omitempty"`
	ImageURL *imageURLPart `json:"image_url,omitempty"`
}

type imageURLPart struct {
	URL string `json:"url"`
}

// Describe returns the extracted text and summary for the image at imageURL.
// The alt text, when present, is handed to the model as a hint.
func (c *VisionClient) Describe(ctx context.Context, imageURL, altText string) (string, error) {
	prompt := visionPrompt
	if altText != "" {
		prompt = fmt.Sprintf("%s\nThe image's alt text is: %q.", visionPrompt, altText)
	}

	payload := ChatRequest{
		Messages: []ChatMessage{
			{
				Role: "user",
				Content: []contentPart{
					{Type: "text", Text: prompt},
					{Type: "image_url", ImageURL: &imageURLPart{URL: imageURL}},
				},
			},
		},
		MaxTokens: 800,
	}

	var chatResp ChatResponse
	if err := postAzure(ctx, c.client, c.Endpoint, c.APIKey, c.APIVersion, c.Deployment,
		"chat/completions", payload, &chatResp); err != nil {
		return "", err
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}
