// Package source catalogs the vendor research blogs that articles are
// pulled from and lists their most recent article URLs.
package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"secbrief/internal/contextutil"
)

// Profile describes one vendor blog: where its article index lives and
// how article links are found on it.
type Profile struct {
	// Name is the short catalog key (e.g. "okta").
	Name string
	// Company is the display name recorded on documents.
	Company string
	// IndexURL is the listing page scraped for article links.
	IndexURL string
	// LinkSelectors are tried in order; matches from earlier selectors
	// rank first.
	LinkSelectors []string
	// PathPrefixes restrict matched links to the blog sections that carry
	// research content. A link must match one of them.
	PathPrefixes []string
}

// profiles is the built-in vendor catalog. Selectors follow each blog's
// current listing markup.
var profiles = []Profile{
	{
		Name:     "okta",
		Company:  "Okta",
		IndexURL: "https://www.okta.com/blog/",
		LinkSelectors: []string{
			"h2.BlogTeaser__title a[href]",
			"a[href*='/blog/']",
			"a[href*='/newsroom/articles/']",
		},
		PathPrefixes: []string{"/blog/", "/newsroom/articles/"},
	},
	{
		Name:     "mandiant",
		Company:  "Google",
		IndexURL: "https://www.mandiant.com/resources/blog",
		LinkSelectors: []string{
			"a[href*='/resources/blog/']",
		},
		PathPrefixes: []string{"/resources/blog/"},
	},
	{
		Name:     "paloalto",
		Company:  "Palo Alto Networks",
		IndexURL: "https://www.paloaltonetworks.com/blog/",
		LinkSelectors: []string{
			"div.synopsis a[href]",
			"section.latest-articles h2.title a[href]",
		},
		PathPrefixes: []string{"/blog/"},
	},
	{
		Name:     "crowdstrike",
		Company:  "CrowdStrike",
		IndexURL: "https://www.crowdstrike.com/en-us/blog/recent-articles/",
		LinkSelectors: []string{
			"div#blogAutoGenerationDiv div.post_image a[href]",
			"a[href*='/blog/']",
		},
		PathPrefixes: []string{"/blog/", "/en-us/blog/"},
	},
}

// All returns the full vendor catalog in stable order.
func All() []Profile {
	out := make([]Profile, len(profiles))
	copy(out, profiles)
	return out
}

// ByName looks up a profile by its catalog key.
func ByName(name string) (Profile, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, p := range profiles {
		if p.Name == key {
			return p, nil
		}
	}
	return Profile{}, fmt.Errorf("unknown source %q", name)
}

// PageFetcher fetches a page body by URL.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Lister scrapes vendor index pages for article URLs.
type Lister struct {
	fetcher PageFetcher
}

// NewLister creates a Lister backed by the given fetcher.
func NewLister(fetcher PageFetcher) *Lister {
	return &Lister{fetcher: fetcher}
}

// List returns up to limit article URLs from the profile's index page.
// URLs are absolute, deduplicated, and keep the order they appear on the
// page (selector order first, then document order).
func (l *Lister) List(ctx context.Context, profile Profile, limit int) ([]string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	html, err := l.fetcher.Fetch(ctx, profile.IndexURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch index for %s: %w", profile.Name, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(html)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse index for %s: %w", profile.Name, err)
	}

	base, err := url.Parse(profile.IndexURL)
	if err != nil {
		return nil, fmt.Errorf("invalid index URL for %s: %w", profile.Name, err)
	}

	seen := make(map[string]bool)
	var links []string
	for _, selector := range profile.LinkSelectors {
		doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
			href, ok := sel.Attr("href")
			if !ok || href == "" {
				return
			}
			resolved := resolveArticleURL(base, href, profile.PathPrefixes)
			if resolved == "" || resolved == profile.IndexURL || seen[resolved] {
				return
			}
			seen[resolved] = true
			links = append(links, resolved)
		})
	}

	if limit > 0 && len(links) > limit {
		links = links[:limit]
	}

	logger.InfoContext(ctx, "listed articles", "source", profile.Name, "count", len(links))
	return links, nil
}

// resolveArticleURL makes href absolute against base and filters out
// links that point outside the profile's research sections.
func resolveArticleURL(base *url.URL, href string, prefixes []string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	abs.Fragment = ""

	matched := len(prefixes) == 0
	for _, prefix := range prefixes {
		if strings.HasPrefix(abs.Path, prefix) && abs.Path != prefix {
			matched = true
			break
		}
	}
	if !matched {
		return ""
	}
	return abs.String()
}
