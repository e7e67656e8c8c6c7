package notion

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"secbrief/internal/content"
)

type apiRichText struct {
	Type        string          `json:"type,omitempty"`
	Text        *apiText        `json:"text,omitempty"`
	Annotations *apiAnnotations `json:"annotations,omitempty"`
	PlainText   string          `json:"plain_text,omitempty"`
}

type apiText struct {
	Content string   `json:"content"`
	Link    *apiLink `json:"link,omitempty"`
}

type apiLink struct {
	URL string `json:"url"`
}

type apiAnnotations struct {
	Bold bool `json:"bold,omitempty"`
}

// apiRichTextHolder is the shared {"rich_text": [...]} shape used by
// paragraph, heading and list item blocks.
type apiRichTextHolder struct {
	RichText []apiRichText `json:"rich_text"`
}

type apiBlock struct {
	Object           string             `json:"object,omitempty"`
	ID               string             `json:"id,omitempty"`
	Type             string             `json:"type"`
	Paragraph        *apiRichTextHolder `json:"paragraph,omitempty"`
	Heading1         *apiRichTextHolder `json:"heading_1,omitempty"`
	Heading2         *apiRichTextHolder `json:"heading_2,omitempty"`
	Heading3         *apiRichTextHolder `json:"heading_3,omitempty"`
	BulletedListItem *apiRichTextHolder `json:"bulleted_list_item,omitempty"`
	NumberedListItem *apiRichTextHolder `json:"numbered_list_item,omitempty"`
	Code             *apiCode           `json:"code,omitempty"`
	Image            *apiImage          `json:"image,omitempty"`
}

type apiCode struct {
	RichText []apiRichText `json:"rich_text"`
	Language string        `json:"language,omitempty"`
}

type apiImage struct {
	Type     string        `json:"type,omitempty"`
	External *apiFileRef   `json:"external,omitempty"`
	File     *apiFileRef   `json:"file,omitempty"`
	Caption  []apiRichText `json:"caption,omitempty"`
}

type apiFileRef struct {
	URL string `json:"url"`
}

type apiDate struct {
	Start string `json:"start"`
}

type apiPropertyValue struct {
	Title    []apiRichText `json:"title,omitempty"`
	RichText []apiRichText `json:"rich_text,omitempty"`
	Date     *apiDate      `json:"date,omitempty"`
	URL      string        `json:"url,omitempty"`
}

type apiPage struct {
	ID             string                      `json:"id"`
	LastEditedTime time.Time                   `json:"last_edited_time"`
	Properties     map[string]apiPropertyValue `json:"properties"`
}

type createPageRequest struct {
	Parent     apiParent                   `json:"parent"`
	Properties map[string]apiPropertyValue `json:"properties"`
	Children   []apiBlock                  `json:"children,omitempty"`
}

type appendChildrenRequest struct {
	Children []apiBlock `json:"children"`
}

type queryRequest struct {
	Filter      *queryFilter `json:"filter,omitempty"`
	Sorts       []querySort  `json:"sorts,omitempty"`
	StartCursor string       `json:"start_cursor,omitempty"`
	PageSize    int          `json:"page_size,omitempty"`
}

type queryFilter struct {
	Property string          `json:"property"`
	URL      *equalCondition `json:"url,omitempty"`
}

type equalCondition struct {
	Equals string `json:"equals"`
}

type querySort struct {
	Property  string `json:"property"`
	Direction string `json:"direction"`
}

type queryResponse struct {
	Results    []apiPage `json:"results"`
	HasMore    bool      `json:"has_more"`
	NextCursor string    `json:"next_cursor"`
}

type childrenResponse struct {
	Results    []apiBlock `json:"results"`
	HasMore    bool       `json:"has_more"`
	NextCursor string     `json:"next_cursor"`
}

// CreatePage writes a document page with its converted blocks as children.
// The store caps children per request, so long documents are appended in
// batches after the initial create.
func (c *Client) CreatePage(ctx context.Context, props PageProperties, blocks []Block) (string, error) {
	children := blocksToAPI(blocks)
	first := children
	if len(first) > maxChildrenPerRequest {
		first = children[:maxChildrenPerRequest]
	}

	payload := createPageRequest{
		Parent:     apiParent{DatabaseID: c.DatabaseID},
		Properties: pagePropertiesToAPI(props),
		Children:   first,
	}

	var page apiPage
	if err := c.do(ctx, http.MethodPost, "/v1/pages", payload, &page); err != nil {
		return "", fmt.Errorf("failed to create page %q: %w", props.Title, err)
	}

	for start := maxChildrenPerRequest; start < len(children); start += maxChildrenPerRequest {
		end := min(start+maxChildrenPerRequest, len(children))
		req := appendChildrenRequest{Children: children[start:end]}
		if err := c.do(ctx, http.MethodPatch, "/v1/blocks/"+page.ID+"/children", req, nil); err != nil {
			return "", fmt.Errorf("failed to append blocks to page %q: %w", props.Title, err)
		}
	}

	return page.ID, nil
}

// FindPageByURL returns the page whose "Webpage URL" property equals rawURL.
func (c *Client) FindPageByURL(ctx context.Context, rawURL string) (Page, error) {
	payload := queryRequest{
		Filter:   &queryFilter{Property: "Webpage URL", URL: &equalCondition{Equals: rawURL}},
		PageSize: 1,
	}

	var resp queryResponse
	if err := c.do(ctx, http.MethodPost, "/v1/databases/"+c.DatabaseID+"/query", payload, &resp); err != nil {
		return Page{}, fmt.Errorf("failed to query page by url: %w", err)
	}
	if len(resp.Results) == 0 {
		return Page{}, ErrNotFound
	}
	return pageFromAPI(resp.Results[0]), nil
}

// QueryPages returns up to limit document pages, oldest published first.
func (c *Client) QueryPages(ctx context.Context, limit int) ([]Page, error) {
	var pages []Page
	cursor := ""

	for {
		payload := queryRequest{
			Sorts:       []querySort{{Property: "Date Published", Direction: "ascending"}},
			StartCursor: cursor,
			PageSize:    pageSize,
		}

		var resp queryResponse
		if err := c.do(ctx, http.MethodPost, "/v1/databases/"+c.DatabaseID+"/query", payload, &resp); err != nil {
			return nil, fmt.Errorf("failed to query pages: %w", err)
		}

		for _, p := range resp.Results {
			pages = append(pages, pageFromAPI(p))
			if limit > 0 && len(pages) >= limit {
				return pages, nil
			}
		}

		if !resp.HasMore || resp.NextCursor == "" {
			return pages, nil
		}
		cursor = resp.NextCursor
	}
}

// PageBlocks reconstructs a page's children as ordered content blocks.
func (c *Client) PageBlocks(ctx context.Context, pageID string) ([]content.Block, error) {
	var raw []apiBlock
	cursor := ""

	for {
		path := "/v1/blocks/" + pageID + "/children?page_size=" + fmt.Sprint(pageSize)
		if cursor != "" {
			path += "&start_cursor=" + url.QueryEscape(cursor)
		}

		var resp childrenResponse
		if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
			return nil, fmt.Errorf("failed to list blocks for page %s: %w", pageID, err)
		}

		raw = append(raw, resp.Results...)
		if !resp.HasMore || resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}

	return contentBlocksFromAPI(raw), nil
}

func textRun(s string) apiRichText {
	return apiRichText{Type: "text", Text: &apiText{Content: s}}
}

func richTextToAPI(runs []RichText) []apiRichText {
	out := make([]apiRichText, 0, len(runs))
	for _, r := range runs {
		rt := apiRichText{Type: "text", Text: &apiText{Content: r.Content}}
		if r.LinkURL != "" {
			rt.Text.Link = &apiLink{URL: r.LinkURL}
		}
		if r.Bold {
			rt.Annotations = &apiAnnotations{Bold: true}
		}
		out = append(out, rt)
	}
	return out
}

// blocksToAPI serializes converted blocks for the store. Headings are
// written as paragraphs with bold runs: native heading blocks do not accept
// the continuation runs a converted heading may carry.
func blocksToAPI(blocks []Block) []apiBlock {
	out := make([]apiBlock, 0, len(blocks))
	for _, b := range blocks {
		switch b.Type {
		case BlockHeading, BlockParagraph:
			out = append(out, apiBlock{
				Object:    "block",
				Type:      "paragraph",
				Paragraph: &apiRichTextHolder{RichText: richTextToAPI(b.Runs)},
			})
		case BlockImage:
			img := apiImage{Type: "external", External: &apiFileRef{URL: b.ImageURL}}
			if b.Caption != "" {
				img.Caption = []apiRichText{textRun(b.Caption)}
			}
			out = append(out, apiBlock{Object: "block", Type: "image", Image: &img})
		}
	}
	return out
}

func pagePropertiesToAPI(props PageProperties) map[string]apiPropertyValue {
	out := map[string]apiPropertyValue{
		"Title":   {Title: []apiRichText{textRun(props.Title)}},
		"Company": {RichText: []apiRichText{textRun(props.Company)}},
	}
	if props.SourceURL != "" {
		out["Webpage URL"] = apiPropertyValue{URL: props.SourceURL}
	}
	if !props.PublishedAt.IsZero() {
		out["Date Published"] = apiPropertyValue{Date: &apiDate{Start: props.PublishedAt.Format("2006-01-02")}}
	}
	if !props.PulledAt.IsZero() {
		out["Date Pulled"] = apiPropertyValue{Date: &apiDate{Start: props.PulledAt.Format("2006-01-02")}}
	}
	if len(props.ImageURLs) > 0 {
		out["Image URLs"] = apiPropertyValue{RichText: []apiRichText{textRun(joinBounded(props.ImageURLs, DefaultBlockCeiling))}}
	}
	if len(props.OutboundLinks) > 0 {
		out["Outbound Links"] = apiPropertyValue{RichText: []apiRichText{textRun(joinBounded(props.OutboundLinks, DefaultBlockCeiling))}}
	}
	return out
}

// joinBounded joins values with ", " and truncates to the store's rich text
// ceiling.
func joinBounded(values []string, ceiling int) string {
	joined := strings.Join(values, ", ")
	runes := []rune(joined)
	if len(runes) > ceiling {
		return string(runes[:ceiling])
	}
	return joined
}

func richTextPlain(runs []apiRichText) string {
	var b strings.Builder
	for _, r := range runs {
		if r.PlainText != "" {
			b.WriteString(r.PlainText)
			continue
		}
		if r.Text != nil {
			b.WriteString(r.Text.Content)
		}
	}
	return b.String()
}

func pageFromAPI(p apiPage) Page {
	page := Page{ID: p.ID, LastEditedAt: p.LastEditedTime}

	if v, ok := p.Properties["Title"]; ok {
		page.Title = richTextPlain(v.Title)
	}
	if v, ok := p.Properties["Company"]; ok {
		page.Company = richTextPlain(v.RichText)
	}
	if v, ok := p.Properties["Webpage URL"]; ok {
		page.SourceURL = v.URL
	}
	if v, ok := p.Properties["Date Published"]; ok && v.Date != nil {
		page.PublishedAt = parseDate(v.Date.Start)
	}
	if v, ok := p.Properties["Image URLs"]; ok {
		for _, u := range strings.Split(richTextPlain(v.RichText), ", ") {
			if u = strings.TrimSpace(u); u != "" {
				page.ImageURLs = append(page.ImageURLs, u)
			}
		}
	}
	return page
}

func parseDate(s string) time.Time {
	if ts, err := time.Parse("2006-01-02", s); err == nil {
		return ts
	}
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts
	}
	return time.Time{}
}

// contentBlocksFromAPI maps store blocks back into the block model the
// chunking engine consumes. Blocks with no usable text are skipped, and
// image blocks start out carrying their plain marker until enrichment
// substitutes a description.
func contentBlocksFromAPI(blocks []apiBlock) []content.Block {
	out := make([]content.Block, 0, len(blocks))

	appendBlock := func(cb content.Block) {
		cb.Index = len(out)
		out = append(out, cb)
	}

	for _, b := range blocks {
		switch b.Type {
		case "paragraph":
			if b.Paragraph == nil {
				continue
			}
			text := richTextPlain(b.Paragraph.RichText)
			if strings.TrimSpace(text) == "" {
				continue
			}
			appendBlock(content.Block{Kind: content.KindParagraph, RawText: text, EnrichedText: text})

		case "heading_1", "heading_2", "heading_3":
			holder := b.Heading1
			level := 1
			switch b.Type {
			case "heading_2":
				holder, level = b.Heading2, 2
			case "heading_3":
				holder, level = b.Heading3, 3
			}
			if holder == nil {
				continue
			}
			text := richTextPlain(holder.RichText)
			if strings.TrimSpace(text) == "" {
				continue
			}
			appendBlock(content.Block{Kind: content.KindHeading, Level: level, RawText: text, EnrichedText: text})

		case "bulleted_list_item", "numbered_list_item":
			holder := b.BulletedListItem
			if b.Type == "numbered_list_item" {
				holder = b.NumberedListItem
			}
			if holder == nil {
				continue
			}
			text := richTextPlain(holder.RichText)
			if strings.TrimSpace(text) == "" {
				continue
			}
			text = "• " + text
			appendBlock(content.Block{Kind: content.KindList, RawText: text, EnrichedText: text})

		case "code":
			if b.Code == nil {
				continue
			}
			text := richTextPlain(b.Code.RichText)
			if strings.TrimSpace(text) == "" {
				continue
			}
			appendBlock(content.Block{Kind: content.KindCodeBlock, RawText: text, EnrichedText: text})

		case "image":
			if b.Image == nil {
				continue
			}
			imgURL := ""
			if b.Image.External != nil {
				imgURL = b.Image.External.URL
			} else if b.Image.File != nil {
				imgURL = b.Image.File.URL
			}
			if imgURL == "" {
				continue
			}
			alt := richTextPlain(b.Image.Caption)
			marker := content.PlainImageMarker(alt)
			appendBlock(content.Block{
				Kind:         content.KindImage,
				RawText:      marker,
				EnrichedText: marker,
				ImageURL:     imgURL,
				AltText:      alt,
			})
		}
	}
	return out
}
