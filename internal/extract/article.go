// Package extract isolates article content from raw vendor blog HTML and
// converts it into the ordered block model used by chunking and the
// document store.
package extract

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// noiseSelectors are HTML elements removed before extraction. They
// contribute no article content. Images are kept: they feed the image
// enrichment step.
var noiseSelectors = []string{
	"script", "style", "noscript",
	"nav", "footer", "header", "aside",
	"iframe", "video", "audio",
	"svg", "canvas",
	"form", "button", "input", "select", "textarea",
	".sidebar", ".menu", ".navigation", ".ads", ".advertisement",
	".social", ".share", ".cookie-banner", ".related-posts",
	".tags", ".breadcrumb", ".comments",
}

// publishedLayouts are the date formats seen across the vendor blogs.
var publishedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"January 2, 2006",
	"Jan 2, 2006",
}

// Article is the cleaned result of extracting one blog post.
type Article struct {
	// Title comes from og:title, the <title> tag, or the first h1.
	Title string
	// PublishedAt is zero when no publication date could be found.
	PublishedAt time.Time
	// ContentHTML is the cleaned main-content fragment with hrefs and
	// image srcs resolved to absolute URLs.
	ContentHTML string
	// Links are the absolute outbound link URLs found in the content.
	Links []string
	// Images are the absolute image URLs found in the content.
	Images []string
}

// ExtractArticle isolates the main content of an HTML page. Relative
// URLs are resolved against baseURL.
func ExtractArticle(html []byte, baseURL string) (*Article, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	article := &Article{
		Title:       extractTitle(doc),
		PublishedAt: extractPublishedAt(doc),
	}

	for _, sel := range noiseSelectors {
		doc.Find(sel).Remove()
	}

	// Find the best content container in priority order. <main> is the
	// most semantically correct, then <article>, then <body>.
	var content *goquery.Selection
	for _, tag := range []string{"main", "article", "body"} {
		sel := doc.Find(tag)
		if sel.Length() > 0 {
			content = sel.First()
			break
		}
	}
	if content == nil {
		return nil, fmt.Errorf("no content container found")
	}

	resolveAndCollect(content, base, article)

	fragment, err := goquery.OuterHtml(content)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize content: %w", err)
	}
	article.ContentHTML = fragment

	return article, nil
}

func extractTitle(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(og) != "" {
		return strings.TrimSpace(og)
	}
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

func extractPublishedAt(doc *goquery.Document) time.Time {
	candidates := []string{}
	if v, ok := doc.Find(`meta[property="article:published_time"]`).Attr("content"); ok {
		candidates = append(candidates, v)
	}
	if v, ok := doc.Find(`meta[name="date"]`).Attr("content"); ok {
		candidates = append(candidates, v)
	}
	if v, ok := doc.Find("time[datetime]").First().Attr("datetime"); ok {
		candidates = append(candidates, v)
	}

	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		for _, layout := range publishedLayouts {
			if t, err := time.Parse(layout, candidate); err == nil {
				return t
			}
		}
	}
	return time.Time{}
}

// resolveAndCollect rewrites relative hrefs and srcs to absolute URLs and
// records the outbound links and images found in the content.
func resolveAndCollect(content *goquery.Selection, base *url.URL, article *Article) {
	seenLinks := make(map[string]bool)
	content.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		abs := resolveURL(base, href)
		if abs == "" {
			return
		}
		sel.SetAttr("href", abs)
		if !seenLinks[abs] {
			seenLinks[abs] = true
			article.Links = append(article.Links, abs)
		}
	})

	seenImages := make(map[string]bool)
	content.Find("img[src]").Each(func(_ int, sel *goquery.Selection) {
		src, _ := sel.Attr("src")
		abs := resolveURL(base, src)
		if abs == "" {
			return
		}
		sel.SetAttr("src", abs)
		if !seenImages[abs] {
			seenImages[abs] = true
			article.Images = append(article.Images, abs)
		}
	})
}

func resolveURL(base *url.URL, ref string) string {
	parsed, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(parsed)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	return abs.String()
}
