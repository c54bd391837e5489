// Package feedback persists human article ratings and analyzes them in
// batch for filter-update recommendations. The store is a JSONL file:
// one independently parseable record per line, append-only, with
// corrupt lines skipped on load rather than failing the batch.
package feedback

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/intelscope/intelscope/pkg/domain"
)

// long rated-article lines can exceed the default scanner buffer
const maxLineSize = 1024 * 1024

// Store reads and appends feedback entries in a JSONL file
type Store struct {
	path string
}

// NewStore creates a store for the given file path; the file is created
// on first append
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads all well-formed entries in file order. Malformed lines are
// skipped silently; a missing file is an empty history, not an error.
func (s *Store) Load() ([]domain.FeedbackEntry, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open feedback file: %w", err)
	}
	defer f.Close()

	var entries []domain.FeedbackEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry domain.FeedbackEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue // corrupt record, skip
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read feedback file: %w", err)
	}
	return entries, nil
}

// Append writes one entry to the end of the file. A zero timestamp is
// stamped with the current time.
func (s *Store) Append(entry domain.FeedbackEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = domain.FeedbackTime{Time: time.Now().UTC()}
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal feedback entry: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open feedback file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("append feedback entry: %w", err)
	}
	return nil
}

// trackingSlugRe extracts the article slug from tracking-encoded PR
// outlet links, e.g. .../202501/some-article-slug;redirect=...
var trackingSlugRe = regexp.MustCompile(`/\d{6}/([^;]+)`)

// NormalizeURL strips tracking-link encoding so variants of the same
// article URL compare equal. Non-tracking URLs pass through unchanged.
func NormalizeURL(url string) string {
	if strings.Contains(url, "biometricupdate.com") && strings.Contains(url, "/202") {
		if m := trackingSlugRe.FindStringSubmatch(url); m != nil {
			return m[1]
		}
	}
	return url
}

// NotRelevantURLs returns the set of article URLs to suppress from
// future reports: low ratings (1-2, including legacy not_relevant),
// promo-flagged entries, and any already-rated RSS article. Both raw
// and normalized URL forms are included so either match suppresses.
func (s *Store) NotRelevantURLs() (map[string]struct{}, error) {
	entries, err := s.Load()
	if err != nil {
		return nil, err
	}

	suppress := make(map[string]struct{})
	add := func(url string) {
		suppress[url] = struct{}{}
		suppress[NormalizeURL(url)] = struct{}{}
	}
	for _, e := range entries {
		if e.ArticleURL == "" {
			continue
		}
		switch {
		case e.Rating.Low() || e.IsPromo:
			add(e.ArticleURL)
		case e.Rating != 0 && strings.HasPrefix(e.ArticleTitle, "[RSS]"):
			// already rated, block RSS re-surfacing on later runs
			suppress[e.ArticleURL] = struct{}{}
		}
	}
	return suppress, nil
}
