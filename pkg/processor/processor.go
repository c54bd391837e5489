// Package processor orchestrates one collection run: gather candidates
// from RSS and the news API, drop already-seen and not-relevant URLs,
// triage, deduplicate per category, write the report and record what
// was reported.
package processor

import (
	"context"
	"fmt"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/intelscope/intelscope/pkg/dedup"
	"github.com/intelscope/intelscope/pkg/domain"
	"github.com/intelscope/intelscope/pkg/feedback"
	"github.com/intelscope/intelscope/pkg/report"
	"github.com/intelscope/intelscope/pkg/triage"
)

// RSSFetcher collects candidates from the configured feeds
type RSSFetcher interface {
	FetchSince(ctx context.Context, urls []string, since time.Time, maxPerFeed int) []domain.ArticleCandidate
}

// NewsSearcher queries the news API for one category query
type NewsSearcher interface {
	Search(ctx context.Context, query string, pageSize int) ([]domain.ArticleCandidate, error)
}

// SeenTracker persists URLs already included in past reports
type SeenTracker interface {
	Load() (map[string]struct{}, error)
	Mark(urls []string) error
	Cleanup() error
}

// FeedbackSource supplies URLs the user rated as not relevant
type FeedbackSource interface {
	NotRelevantURLs() (map[string]struct{}, error)
}

// Config holds per-run settings
type Config struct {
	Feeds          []string                   // RSS feed URLs
	Queries        map[domain.Category]string // news API query per category
	Since          time.Time                  // start of the reporting window
	SinceLabel     string                     // human-readable window start for the report
	MaxPerFeed     int                        // RSS items considered per feed
	MaxPerCategory int                        // articles kept per category
	OutputDir      string                     // report destination
}

// Result summarizes one completed run
type Result struct {
	ReportPath  string
	Total       int
	PerCategory map[domain.Category]int
}

// Processor runs the collection pipeline
type Processor struct {
	triager  *triage.Triager
	dedup    *dedup.Deduplicator
	rss      RSSFetcher
	news     NewsSearcher
	seen     SeenTracker
	feedback FeedbackSource
	cfg      Config
}

// New creates a processor; rss, news and feedback may be nil to disable
// that source or filter
func New(triager *triage.Triager, deduplicator *dedup.Deduplicator, rss RSSFetcher, news NewsSearcher, seen SeenTracker, fb FeedbackSource, cfg Config) *Processor {
	if cfg.MaxPerFeed == 0 {
		cfg.MaxPerFeed = 50
	}
	if cfg.MaxPerCategory == 0 {
		cfg.MaxPerCategory = 10
	}
	return &Processor{
		triager:  triager,
		dedup:    deduplicator,
		rss:      rss,
		news:     news,
		seen:     seen,
		feedback: fb,
		cfg:      cfg,
	}
}

// Run executes one collection pass and writes the report. Source
// failures are logged and skipped; only report writing and seen-log
// errors fail the run.
func (p *Processor) Run(ctx context.Context) (*Result, error) {
	skip, err := p.loadSkipSet()
	if err != nil {
		return nil, err
	}
	lgr.Printf("[INFO] starting collection run, %d urls suppressed", len(skip))

	// every category gets a bucket up front so empty ones still render
	categorized := make(map[domain.Category][]domain.TriagedArticle, len(domain.Categories()))
	for _, category := range domain.Categories() {
		categorized[category] = nil
	}
	seenThisRun := make(map[string]struct{})

	if p.rss != nil {
		candidates := p.rss.FetchSince(ctx, p.cfg.Feeds, p.cfg.Since, p.cfg.MaxPerFeed)
		lgr.Printf("[INFO] rss: %d candidates", len(candidates))
		kept := 0
		for _, c := range candidates {
			if p.suppressed(c.URL, skip, seenThisRun) {
				continue
			}
			result := p.triager.Process(c, domain.CategoryRegulation)
			if result == nil {
				continue
			}
			seenThisRun[c.URL] = struct{}{}
			categorized[result.Category] = append(categorized[result.Category], *result)
			kept++
		}
		lgr.Printf("[INFO] rss: kept %d relevant articles", kept)
	}

	if p.news != nil {
		for _, category := range domain.Categories() {
			query := p.cfg.Queries[category]
			if query == "" {
				query = "Australia news"
			}
			candidates, err := p.news.Search(ctx, query, p.cfg.MaxPerCategory)
			if err != nil {
				lgr.Printf("[WARN] news search for %q failed: %v", category, err)
				continue
			}
			lgr.Printf("[DEBUG] news search %q: %d candidates", query, len(candidates))
			for _, c := range candidates {
				if p.suppressed(c.URL, skip, seenThisRun) {
					continue
				}
				result := p.triager.Process(c, category)
				if result == nil {
					continue
				}
				seenThisRun[c.URL] = struct{}{}
				// API results stay in the category they were searched
				// for, the query already scoped the topic
				categorized[category] = append(categorized[category], *result)
			}
		}
	}

	builder := report.NewBuilder(p.cfg.SinceLabel)
	result := &Result{PerCategory: make(map[domain.Category]int, len(categorized))}
	var reported []string
	for _, category := range domain.Categories() {
		articles := p.dedup.Deduplicate(categorized[category])
		if len(articles) > p.cfg.MaxPerCategory {
			articles = articles[:p.cfg.MaxPerCategory]
		}
		builder.Add(category, articles)
		result.PerCategory[category] = len(articles)
		result.Total += len(articles)
		for _, a := range articles {
			if a.Link != "" {
				reported = append(reported, a.Link)
			}
		}
	}

	path, err := builder.WriteMarkdown(p.cfg.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	result.ReportPath = path

	if p.seen != nil {
		if err := p.seen.Mark(reported); err != nil {
			return nil, fmt.Errorf("mark seen: %w", err)
		}
		if err := p.seen.Cleanup(); err != nil {
			lgr.Printf("[WARN] seen log cleanup failed: %v", err)
		}
	}

	lgr.Printf("[INFO] run complete: %d articles in %s", result.Total, path)
	return result, nil
}

// loadSkipSet combines previously reported URLs with the user's
// not-relevant feedback
func (p *Processor) loadSkipSet() (map[string]struct{}, error) {
	skip := make(map[string]struct{})

	if p.seen != nil {
		seen, err := p.seen.Load()
		if err != nil {
			return nil, fmt.Errorf("load seen urls: %w", err)
		}
		for url := range seen {
			skip[url] = struct{}{}
		}
	}

	if p.feedback != nil {
		suppress, err := p.feedback.NotRelevantURLs()
		if err != nil {
			return nil, fmt.Errorf("load not-relevant urls: %w", err)
		}
		for url := range suppress {
			skip[url] = struct{}{}
		}
	}
	return skip, nil
}

// suppressed checks a URL against the skip set, both raw and
// normalized, and against URLs already taken this run
func (p *Processor) suppressed(url string, skip, seenThisRun map[string]struct{}) bool {
	if url == "" {
		return false
	}
	if _, ok := seenThisRun[url]; ok {
		return true
	}
	if _, ok := skip[url]; ok {
		return true
	}
	_, ok := skip[feedback.NormalizeURL(url)]
	return ok
}
