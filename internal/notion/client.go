package notion

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_store.go -package=mocks secbrief/internal/notion Writer,Reader

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"secbrief/internal/content"
)

const (
	defaultBaseURL = "https://api.notion.com"
	apiVersion     = "2022-06-28"

	// The store accepts at most this many children per write request.
	maxChildrenPerRequest = 100

	// pageSize is the store's pagination maximum.
	pageSize = 100
)

// ErrNotFound reports that a database or page lookup matched nothing.
var ErrNotFound = errors.New("notion: not found")

// Writer creates document pages in the store.
type Writer interface {
	// CreatePage writes a new page with the given properties and child
	// blocks, returning the page id.
	CreatePage(ctx context.Context, props PageProperties, blocks []Block) (string, error)

	// FindPageByURL returns the page whose source URL property equals url,
	// or ErrNotFound.
	FindPageByURL(ctx context.Context, url string) (Page, error)
}

// Reader lists document pages and their content.
type Reader interface {
	// QueryPages returns up to limit pages, oldest published first.
	QueryPages(ctx context.Context, limit int) ([]Page, error)

	// PageBlocks reconstructs a page's children as content blocks.
	PageBlocks(ctx context.Context, pageID string) ([]content.Block, error)
}

// Client talks to the document store's HTTP API.
type Client struct {
	BaseURL    string
	APIKey     string
	DatabaseID string
	client     *http.Client
}

// NewClient creates a store client. databaseID may be empty when the
// database is resolved later via EnsureDatabase.
func NewClient(apiKey, databaseID string) *Client {
	return &Client{
		BaseURL:    defaultBaseURL,
		APIKey:     apiKey,
		DatabaseID: databaseID,
		client:     http.DefaultClient,
	}
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	req.Header.Set("Notion-Version", apiVersion)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
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

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

type searchRequest struct {
	Query  string        `json:"query"`
	Filter *searchFilter `json:"filter,omitempty"`
}

type searchFilter struct {
	Value    string `json:"value"`
	Property string `json:"property"`
}

type searchResponse struct {
	Results []searchResult `json:"results"`
}

type searchResult struct {
	Object string        `json:"object"`
	ID     string        `json:"id"`
	Title  []apiRichText `json:"title"`
}

// FindDatabase looks up a database by exact title, returning its id or
// ErrNotFound.
func (c *Client) FindDatabase(ctx context.Context, title string) (string, error) {
	payload := searchRequest{
		Query:  title,
		Filter: &searchFilter{Value: "database", Property: "object"},
	}

	var resp searchResponse
	if err := c.do(ctx, http.MethodPost, "/v1/search", payload, &resp); err != nil {
		return "", fmt.Errorf("failed to search for database %q: %w", title, err)
	}

	for _, r := range resp.Results {
		if r.Object == "database" && richTextPlain(r.Title) == title {
			return r.ID, nil
		}
	}
	return "", ErrNotFound
}

type createDatabaseRequest struct {
	Parent     apiParent                    `json:"parent"`
	Title      []apiRichText                `json:"title"`
	Properties map[string]apiPropertyConfig `json:"properties"`
}

type apiParent struct {
	Type       string `json:"type,omitempty"`
	PageID     string `json:"page_id,omitempty"`
	DatabaseID string `json:"database_id,omitempty"`
}

type apiPropertyConfig struct {
	Title    *struct{} `json:"title,omitempty"`
	RichText *struct{} `json:"rich_text,omitempty"`
	Date     *struct{} `json:"date,omitempty"`
	URL      *struct{} `json:"url,omitempty"`
}

type createDatabaseResponse struct {
	ID string `json:"id"`
}

// CreateDatabase creates the research database under a parent page and
// returns its id.
func (c *Client) CreateDatabase(ctx context.Context, parentPageID, title string) (string, error) {
	payload := createDatabaseRequest{
		Parent: apiParent{Type: "page_id", PageID: parentPageID},
		Title:  []apiRichText{textRun(title)},
		Properties: map[string]apiPropertyConfig{
			"Title":          {Title: &struct{}{}},
			"Company":        {RichText: &struct{}{}},
			"Date Published": {Date: &struct{}{}},
			"Date Pulled":    {Date: &struct{}{}},
			"Webpage URL":    {URL: &struct{}{}},
			"Image URLs":     {RichText: &struct{}{}},
			"Outbound Links": {RichText: &struct{}{}},
		},
	}

	var resp createDatabaseResponse
	if err := c.do(ctx, http.MethodPost, "/v1/databases", payload, &resp); err != nil {
		return "", fmt.Errorf("failed to create database %q: %w", title, err)
	}
	return resp.ID, nil
}

// EnsureDatabase resolves the database by title, creating it under
// parentPageID when missing, and remembers the id on the client.
func (c *Client) EnsureDatabase(ctx context.Context, parentPageID, title string) (string, error) {
	id, err := c.FindDatabase(ctx, title)
	if errors.Is(err, ErrNotFound) {
		id, err = c.CreateDatabase(ctx, parentPageID, title)
	}
	if err != nil {
		return "", err
	}
	c.DatabaseID = id
	return id, nil
}
