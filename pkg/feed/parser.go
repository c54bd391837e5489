// Package feed collects article candidates from RSS/Atom feeds.
package feed

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"github.com/intelscope/intelscope/pkg/domain"
)

// concurrent feed fetch limit
const maxConcurrentFeeds = 4

// Parser fetches and parses RSS/Atom feeds into article candidates
type Parser struct {
	client    *http.Client
	userAgent string
	sanitizer *bluemonday.Policy
}

// NewParser creates a new feed parser
func NewParser(timeout time.Duration, userAgent string) *Parser {
	return &Parser{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: userAgent,
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// FetchSince collects entries newer than since from all feed URLs, at
// most maxPerFeed from each. Feeds are fetched concurrently but results
// keep the feed-list order. Feeds that fail to fetch or parse are
// logged and skipped so one broken feed doesn't lose the rest. Entries
// without any parseable date are kept.
func (p *Parser) FetchSince(ctx context.Context, urls []string, since time.Time, maxPerFeed int) []domain.ArticleCandidate {
	perFeed := make([][]domain.ArticleCandidate, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFeeds)
	for i, url := range urls {
		g.Go(func() error {
			lgr.Printf("[DEBUG] fetching rss feed %d/%d: %s", i+1, len(urls), url)
			candidates, err := p.Fetch(gctx, url, since, maxPerFeed)
			if err != nil {
				lgr.Printf("[WARN] rss feed %s failed: %v", url, err)
				return nil // broken feeds don't fail the batch
			}
			perFeed[i] = candidates
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	seen := make(map[string]struct{})
	var results []domain.ArticleCandidate
	for _, candidates := range perFeed {
		for _, c := range candidates {
			if _, ok := seen[c.URL]; ok {
				continue
			}
			seen[c.URL] = struct{}{}
			results = append(results, c)
		}
	}
	return results
}

// Fetch retrieves one feed and converts its entries to candidates
func (p *Parser) Fetch(ctx context.Context, url string, since time.Time, maxPerFeed int) ([]domain.ArticleCandidate, error) {
	body, err := p.fetch(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := feed.Items
	if maxPerFeed > 0 && len(items) > maxPerFeed {
		items = items[:maxPerFeed]
	}

	candidates := make([]domain.ArticleCandidate, 0, len(items))
	for _, item := range items {
		link := item.Link
		if link == "" {
			link = item.GUID
		}
		if link == "" {
			continue
		}

		published := itemPublished(item)
		if !published.IsZero() && !since.IsZero() && !published.After(since) {
			continue
		}

		candidates = append(candidates, domain.ArticleCandidate{
			Title:       strings.TrimSpace(item.Title),
			Description: p.cleanDescription(item),
			URL:         link,
			Source:      feed.Title,
			PublishedAt: published,
			SourceType:  domain.SourceRSS,
		})
	}
	return candidates, nil
}

// cleanDescription strips markup from the entry description, feeds
// often carry HTML fragments there
func (p *Parser) cleanDescription(item *gofeed.Item) string {
	desc := item.Description
	if desc == "" {
		desc = item.Content
	}
	cleaned := html.UnescapeString(p.sanitizer.Sanitize(desc))
	return strings.Join(strings.Fields(cleaned), " ")
}

func itemPublished(item *gofeed.Item) time.Time {
	if item.PublishedParsed != nil {
		return *item.PublishedParsed
	}
	if item.UpdatedParsed != nil {
		return *item.UpdatedParsed
	}
	return time.Time{}
}

// fetch retrieves content from a URL
func (p *Parser) fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", p.userAgent)
	addBrowserHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	return resp.Body, nil
}
