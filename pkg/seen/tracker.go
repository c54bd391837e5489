// Package seen tracks article URLs already included in past reports so
// periodic runs don't repeat them. The log is JSONL, one {url,
// timestamp} record per line, time-windowed on load and prunable in
// place. A single run is the only writer and appends at the end of the
// run; concurrent runs against the same file are not coordinated.
package seen

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// DefaultWindow is how long a reported URL stays suppressed
const DefaultWindow = 30 * 24 * time.Hour

// Tracker reads and appends the seen-URL log
type Tracker struct {
	path   string
	window time.Duration
	now    func() time.Time
}

type record struct {
	URL       string    `json:"url"`
	Timestamp time.Time `json:"timestamp"`
}

// NewTracker creates a tracker for the given file; a zero window means
// the default 30 days
func NewTracker(path string, window time.Duration) *Tracker {
	if window == 0 {
		window = DefaultWindow
	}
	return &Tracker{path: path, window: window, now: time.Now}
}

// Load returns the set of URLs seen within the window. Malformed lines
// and expired entries are skipped; a missing file is an empty set.
func (t *Tracker) Load() (map[string]struct{}, error) {
	f, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]struct{}{}, nil
		}
		return nil, fmt.Errorf("open seen file: %w", err)
	}
	defer f.Close()

	cutoff := t.now().Add(-t.window)
	urls := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var rec record
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			continue
		}
		if rec.URL == "" || rec.Timestamp.Before(cutoff) {
			continue
		}
		urls[rec.URL] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read seen file: %w", err)
	}
	return urls, nil
}

// Mark appends the URLs to the log, all stamped with the current time
func (t *Tracker) Mark(urls []string) error {
	if len(urls) == 0 {
		return nil
	}

	f, err := os.OpenFile(t.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open seen file: %w", err)
	}
	defer f.Close()

	now := t.now()
	var b strings.Builder
	for _, url := range urls {
		data, err := json.Marshal(record{URL: url, Timestamp: now})
		if err != nil {
			return fmt.Errorf("marshal seen record: %w", err)
		}
		b.Write(data)
		b.WriteByte('\n')
	}
	if _, err := f.WriteString(b.String()); err != nil {
		return fmt.Errorf("append seen records: %w", err)
	}
	return nil
}

// Cleanup rewrites the log keeping only entries inside the window,
// bounding file growth across runs
func (t *Tracker) Cleanup() error {
	f, err := os.Open(t.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open seen file: %w", err)
	}

	cutoff := t.now().Add(-t.window)
	var kept []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		var rec record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue
		}
		if rec.Timestamp.Before(cutoff) {
			continue
		}
		kept = append(kept, line)
	}
	scanErr := scanner.Err()
	_ = f.Close()
	if scanErr != nil {
		return fmt.Errorf("read seen file: %w", scanErr)
	}

	content := ""
	if len(kept) > 0 {
		content = strings.Join(kept, "\n") + "\n"
	}
	if err := os.WriteFile(t.path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("rewrite seen file: %w", err)
	}
	return nil
}
