package notion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"secbrief/internal/content"
)

func TestNewClient(t *testing.T) {
	client := NewClient("test-key", "db-1")
	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.BaseURL != defaultBaseURL {
		t.Errorf("NewClient() BaseURL = %v, want %v", client.BaseURL, defaultBaseURL)
	}
	if client.APIKey != "test-key" {
		t.Errorf("NewClient() APIKey = %v, want test-key", client.APIKey)
	}
	if client.DatabaseID != "db-1" {
		t.Errorf("NewClient() DatabaseID = %v, want db-1", client.DatabaseID)
	}
	if client.client == nil {
		t.Error("NewClient() client should not be nil")
	}
}

func TestClient_CreatePage(t *testing.T) {
	var got createPageRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/v1/pages" {
			t.Errorf("expected /v1/pages, got %s", r.URL.Path)
		}
		if !strings.Contains(r.Header.Get("Authorization"), "Bearer") {
			t.Error("missing Authorization header")
		}
		if r.Header.Get("Notion-Version") != apiVersion {
			t.Errorf("Notion-Version = %v, want %v", r.Header.Get("Notion-Version"), apiVersion)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(apiPage{ID: "page-1"})
	}))
	defer server.Close()

	client := NewClient("test-key", "db-1")
	client.BaseURL = server.URL

	props := PageProperties{
		Title:       "Threat Report",
		Company:     "okta",
		SourceURL:   "https://example.com/report",
		PublishedAt: time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC),
		PulledAt:    time.Date(2025, 3, 20, 0, 0, 0, 0, time.UTC),
		ImageURLs:   []string{"https://example.com/a.png"},
	}
	blocks := []Block{
		{Type: BlockHeading, Runs: []RichText{{Content: "Overview", Bold: true}}},
		{Type: BlockParagraph, Runs: []RichText{{Content: "Body text."}}},
		{Type: BlockImage, ImageURL: "https://example.com/a.png", Caption: "diagram"},
	}

	id, err := client.CreatePage(context.Background(), props, blocks)
	if err != nil {
		t.Fatalf("CreatePage() error = %v", err)
	}
	if id != "page-1" {
		t.Errorf("CreatePage() id = %v, want page-1", id)
	}

	if got.Parent.DatabaseID != "db-1" {
		t.Errorf("parent database id = %v, want db-1", got.Parent.DatabaseID)
	}
	if title := richTextPlain(got.Properties["Title"].Title); title != "Threat Report" {
		t.Errorf("Title property = %v, want Threat Report", title)
	}
	if got.Properties["Webpage URL"].URL != "https://example.com/report" {
		t.Errorf("Webpage URL property = %v, want https://example.com/report", got.Properties["Webpage URL"].URL)
	}
	if d := got.Properties["Date Published"].Date; d == nil || d.Start != "2025-03-14" {
		t.Errorf("Date Published property = %+v, want start 2025-03-14", d)
	}
	if urls := richTextPlain(got.Properties["Image URLs"].RichText); urls != "https://example.com/a.png" {
		t.Errorf("Image URLs property = %v, want https://example.com/a.png", urls)
	}

	if len(got.Children) != 3 {
		t.Fatalf("children count = %d, want 3", len(got.Children))
	}
	// Headings travel as bold paragraphs.
	if got.Children[0].Type != "paragraph" || got.Children[0].Paragraph == nil {
		t.Fatalf("children[0] = %+v, want paragraph", got.Children[0])
	}
	if runs := got.Children[0].Paragraph.RichText; len(runs) != 1 || runs[0].Annotations == nil || !runs[0].Annotations.Bold {
		t.Errorf("heading runs = %+v, want one bold run", runs)
	}
	if got.Children[2].Type != "image" || got.Children[2].Image == nil {
		t.Fatalf("children[2] = %+v, want image", got.Children[2])
	}
	if got.Children[2].Image.External == nil || got.Children[2].Image.External.URL != "https://example.com/a.png" {
		t.Errorf("image external = %+v, want https://example.com/a.png", got.Children[2].Image.External)
	}
	if caption := richTextPlain(got.Children[2].Image.Caption); caption != "diagram" {
		t.Errorf("image caption = %v, want diagram", caption)
	}
}

func TestClient_CreatePage_AppendsRemainingChildren(t *testing.T) {
	var createCount, appendCount int
	var appendSizes []int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/pages":
			createCount++
			var req createPageRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if len(req.Children) != maxChildrenPerRequest {
				t.Errorf("create children = %d, want %d", len(req.Children), maxChildrenPerRequest)
			}
			_ = json.NewEncoder(w).Encode(apiPage{ID: "page-1"})

		case r.Method == http.MethodPatch && r.URL.Path == "/v1/blocks/page-1/children":
			appendCount++
			var req appendChildrenRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			appendSizes = append(appendSizes, len(req.Children))
			_ = json.NewEncoder(w).Encode(map[string]any{"results": []any{}})

		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient("test-key", "db-1")
	client.BaseURL = server.URL

	blocks := make([]Block, 250)
	for i := range blocks {
		blocks[i] = Block{Type: BlockParagraph, Runs: []RichText{{Content: "p"}}}
	}

	id, err := client.CreatePage(context.Background(), PageProperties{Title: "Long"}, blocks)
	if err != nil {
		t.Fatalf("CreatePage() error = %v", err)
	}
	if id != "page-1" {
		t.Errorf("CreatePage() id = %v, want page-1", id)
	}
	if createCount != 1 {
		t.Errorf("create requests = %d, want 1", createCount)
	}
	if appendCount != 2 {
		t.Fatalf("append requests = %d, want 2", appendCount)
	}
	if appendSizes[0] != 100 || appendSizes[1] != 50 {
		t.Errorf("append sizes = %v, want [100 50]", appendSizes)
	}
}

func TestClient_FindPageByURL(t *testing.T) {
	tests := []struct {
		name       string
		serverResp func(w http.ResponseWriter, r *http.Request)
		wantID     string
		wantErr    error
	}{
		{
			name: "page found",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				var req queryRequest
				_ = json.NewDecoder(r.Body).Decode(&req)
				if req.Filter == nil || req.Filter.Property != "Webpage URL" {
					t.Errorf("filter = %+v, want Webpage URL filter", req.Filter)
				}
				if req.Filter != nil && (req.Filter.URL == nil || req.Filter.URL.Equals != "https://example.com/report") {
					t.Errorf("filter url = %+v, want equals https://example.com/report", req.Filter.URL)
				}

				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(queryResponse{
					Results: []apiPage{{ID: "page-1"}},
				})
			},
			wantID: "page-1",
		},
		{
			name: "page missing",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(queryResponse{})
			},
			wantErr: ErrNotFound,
		},
		{
			name: "server error",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte("boom"))
			},
			wantErr: errors.New("any"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(tt.serverResp))
			defer server.Close()

			client := NewClient("test-key", "db-1")
			client.BaseURL = server.URL

			page, err := client.FindPageByURL(context.Background(), "https://example.com/report")

			if tt.wantErr != nil {
				if err == nil {
					t.Fatal("FindPageByURL() expected error, got nil")
				}
				if errors.Is(tt.wantErr, ErrNotFound) && !errors.Is(err, ErrNotFound) {
					t.Errorf("FindPageByURL() error = %v, want ErrNotFound", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("FindPageByURL() unexpected error: %v", err)
			}
			if page.ID != tt.wantID {
				t.Errorf("FindPageByURL() id = %v, want %v", page.ID, tt.wantID)
			}
		})
	}
}

func TestClient_QueryPages(t *testing.T) {
	var calls int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/v1/databases/db-1/query" {
			t.Errorf("expected /v1/databases/db-1/query, got %s", r.URL.Path)
		}

		var req queryRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Sorts) != 1 || req.Sorts[0].Property != "Date Published" || req.Sorts[0].Direction != "ascending" {
			t.Errorf("sorts = %+v, want Date Published ascending", req.Sorts)
		}

		w.Header().Set("Content-Type", "application/json")
		switch calls {
		case 1:
			if req.StartCursor != "" {
				t.Errorf("first request cursor = %v, want empty", req.StartCursor)
			}
			_ = json.NewEncoder(w).Encode(queryResponse{
				Results: []apiPage{{
					ID:             "page-1",
					LastEditedTime: time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC),
					Properties: map[string]apiPropertyValue{
						"Title":          {Title: []apiRichText{{PlainText: "Report A"}}},
						"Company":        {RichText: []apiRichText{{PlainText: "okta"}}},
						"Webpage URL":    {URL: "https://example.com/a"},
						"Date Published": {Date: &apiDate{Start: "2025-01-02"}},
						"Image URLs":     {RichText: []apiRichText{{PlainText: "https://x/1.png, https://x/2.png"}}},
					},
				}},
				HasMore:    true,
				NextCursor: "cur-2",
			})
		case 2:
			if req.StartCursor != "cur-2" {
				t.Errorf("second request cursor = %v, want cur-2", req.StartCursor)
			}
			_ = json.NewEncoder(w).Encode(queryResponse{
				Results: []apiPage{{ID: "page-2"}},
			})
		default:
			t.Errorf("unexpected extra request %d", calls)
			_ = json.NewEncoder(w).Encode(queryResponse{})
		}
	}))
	defer server.Close()

	client := NewClient("test-key", "db-1")
	client.BaseURL = server.URL

	pages, err := client.QueryPages(context.Background(), 0)
	if err != nil {
		t.Fatalf("QueryPages() error = %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("QueryPages() returned %d pages, want 2", len(pages))
	}

	first := pages[0]
	if first.ID != "page-1" {
		t.Errorf("pages[0].ID = %v, want page-1", first.ID)
	}
	if first.Title != "Report A" {
		t.Errorf("pages[0].Title = %v, want Report A", first.Title)
	}
	if first.Company != "okta" {
		t.Errorf("pages[0].Company = %v, want okta", first.Company)
	}
	if first.SourceURL != "https://example.com/a" {
		t.Errorf("pages[0].SourceURL = %v, want https://example.com/a", first.SourceURL)
	}
	if want := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC); !first.PublishedAt.Equal(want) {
		t.Errorf("pages[0].PublishedAt = %v, want %v", first.PublishedAt, want)
	}
	if len(first.ImageURLs) != 2 || first.ImageURLs[0] != "https://x/1.png" {
		t.Errorf("pages[0].ImageURLs = %v, want two urls", first.ImageURLs)
	}
	if want := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC); !first.LastEditedAt.Equal(want) {
		t.Errorf("pages[0].LastEditedAt = %v, want %v", first.LastEditedAt, want)
	}
}

func TestClient_QueryPages_Limit(t *testing.T) {
	var calls int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(queryResponse{
			Results:    []apiPage{{ID: "page-1"}, {ID: "page-2"}, {ID: "page-3"}},
			HasMore:    true,
			NextCursor: "cur-2",
		})
	}))
	defer server.Close()

	client := NewClient("test-key", "db-1")
	client.BaseURL = server.URL

	pages, err := client.QueryPages(context.Background(), 2)
	if err != nil {
		t.Fatalf("QueryPages() error = %v", err)
	}
	if len(pages) != 2 {
		t.Errorf("QueryPages() returned %d pages, want 2", len(pages))
	}
	if calls != 1 {
		t.Errorf("QueryPages() made %d requests, want 1", calls)
	}
}

func TestClient_PageBlocks(t *testing.T) {
	var calls int

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/v1/blocks/page-1/children" {
			t.Errorf("expected /v1/blocks/page-1/children, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("page_size") != "100" {
			t.Errorf("page_size = %v, want 100", r.URL.Query().Get("page_size"))
		}

		w.Header().Set("Content-Type", "application/json")
		switch calls {
		case 1:
			_ = json.NewEncoder(w).Encode(childrenResponse{
				Results: []apiBlock{
					{Type: "heading_2", Heading2: &apiRichTextHolder{RichText: []apiRichText{{PlainText: "Findings"}}}},
					{Type: "paragraph", Paragraph: &apiRichTextHolder{RichText: []apiRichText{{PlainText: "Attacker used phishing."}}}},
					{Type: "paragraph", Paragraph: &apiRichTextHolder{RichText: []apiRichText{{PlainText: "   "}}}},
					{Type: "bulleted_list_item", BulletedListItem: &apiRichTextHolder{RichText: []apiRichText{{PlainText: "initial access"}}}},
				},
				HasMore:    true,
				NextCursor: "cur-2",
			})
		case 2:
			if r.URL.Query().Get("start_cursor") != "cur-2" {
				t.Errorf("start_cursor = %v, want cur-2", r.URL.Query().Get("start_cursor"))
			}
			_ = json.NewEncoder(w).Encode(childrenResponse{
				Results: []apiBlock{
					{Type: "image", Image: &apiImage{
						Type:     "external",
						External: &apiFileRef{URL: "https://example.com/chart.png"},
						Caption:  []apiRichText{{PlainText: "victim count"}},
					}},
					{Type: "code", Code: &apiCode{RichText: []apiRichText{{PlainText: "whoami"}}}},
				},
			})
		}
	}))
	defer server.Close()

	client := NewClient("test-key", "db-1")
	client.BaseURL = server.URL

	blocks, err := client.PageBlocks(context.Background(), "page-1")
	if err != nil {
		t.Fatalf("PageBlocks() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("PageBlocks() made %d requests, want 2", calls)
	}
	if len(blocks) != 5 {
		t.Fatalf("PageBlocks() returned %d blocks, want 5", len(blocks))
	}

	wantKinds := []content.BlockKind{
		content.KindHeading,
		content.KindParagraph,
		content.KindList,
		content.KindImage,
		content.KindCodeBlock,
	}
	for i, blk := range blocks {
		if blk.Index != i {
			t.Errorf("blocks[%d].Index = %d, want %d", i, blk.Index, i)
		}
		if blk.Kind != wantKinds[i] {
			t.Errorf("blocks[%d].Kind = %v, want %v", i, blk.Kind, wantKinds[i])
		}
	}

	if blocks[0].Level != 2 {
		t.Errorf("heading level = %d, want 2", blocks[0].Level)
	}
	if blocks[2].RawText != "• initial access" {
		t.Errorf("list text = %q, want bullet prefix", blocks[2].RawText)
	}

	img := blocks[3]
	if img.ImageURL != "https://example.com/chart.png" {
		t.Errorf("image url = %v, want https://example.com/chart.png", img.ImageURL)
	}
	if img.AltText != "victim count" {
		t.Errorf("image alt = %v, want victim count", img.AltText)
	}
	if img.EnrichedText != "[IMAGE: victim count]" {
		t.Errorf("image marker = %q, want [IMAGE: victim count]", img.EnrichedText)
	}
}

func TestClient_FindDatabase(t *testing.T) {
	tests := []struct {
		name       string
		serverResp func(w http.ResponseWriter, r *http.Request)
		wantID     string
		wantErr    error
	}{
		{
			name: "database found among results",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/search" {
					t.Errorf("expected /v1/search, got %s", r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(searchResponse{
					Results: []searchResult{
						{Object: "page", ID: "page-9", Title: []apiRichText{{PlainText: "Research"}}},
						{Object: "database", ID: "db-9", Title: []apiRichText{{PlainText: "Other"}}},
						{Object: "database", ID: "db-1", Title: []apiRichText{{PlainText: "Research"}}},
					},
				})
			},
			wantID: "db-1",
		},
		{
			name: "no matching database",
			serverResp: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(searchResponse{})
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(tt.serverResp))
			defer server.Close()

			client := NewClient("test-key", "")
			client.BaseURL = server.URL

			id, err := client.FindDatabase(context.Background(), "Research")

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("FindDatabase() error = %v, want %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("FindDatabase() unexpected error: %v", err)
			}
			if id != tt.wantID {
				t.Errorf("FindDatabase() id = %v, want %v", id, tt.wantID)
			}
		})
	}
}

func TestClient_EnsureDatabase_CreatesWhenMissing(t *testing.T) {
	var created bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/v1/search":
			_ = json.NewEncoder(w).Encode(searchResponse{})
		case "/v1/databases":
			created = true
			var req createDatabaseRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Parent.PageID != "parent-1" {
				t.Errorf("parent page id = %v, want parent-1", req.Parent.PageID)
			}
			if len(req.Properties) != 7 {
				t.Errorf("property count = %d, want 7", len(req.Properties))
			}
			_ = json.NewEncoder(w).Encode(createDatabaseResponse{ID: "db-new"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := NewClient("test-key", "")
	client.BaseURL = server.URL

	id, err := client.EnsureDatabase(context.Background(), "parent-1", "Research")
	if err != nil {
		t.Fatalf("EnsureDatabase() error = %v", err)
	}
	if !created {
		t.Error("EnsureDatabase() did not create the missing database")
	}
	if id != "db-new" {
		t.Errorf("EnsureDatabase() id = %v, want db-new", id)
	}
	if client.DatabaseID != "db-new" {
		t.Errorf("EnsureDatabase() DatabaseID = %v, want db-new", client.DatabaseID)
	}
}
