package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// rating group boundaries on the 1-5 scale
const (
	RatingMin = 1
	RatingMax = 5
)

// Rating is a 1-5 relevance rating. Legacy binary ratings are
// normalized at decode time: "not_relevant" becomes 1, "relevant"
// becomes 4.
type Rating int

// UnmarshalJSON accepts both numeric 1-5 ratings and legacy strings
func (r *Rating) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*r = Rating(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unmarshal rating: %w", err)
	}
	switch s {
	case "not_relevant":
		*r = 1
	case "relevant":
		*r = 4
	default:
		return fmt.Errorf("unknown legacy rating %q", s)
	}
	return nil
}

// Valid reports whether the rating is on the 1-5 scale
func (r Rating) Valid() bool { return r >= RatingMin && r <= RatingMax }

// Low reports whether the rating falls in the low-relevance group (1-2)
func (r Rating) Low() bool { return r == 1 || r == 2 }

// Moderate reports whether the rating is the moderate group (3)
func (r Rating) Moderate() bool { return r == 3 }

// High reports whether the rating falls in the high-relevance group (4-5)
func (r Rating) High() bool { return r == 4 || r == 5 }

// FeedbackTime is a timestamp tolerant of the naive ISO format legacy
// records carry (no timezone suffix)
type FeedbackTime struct {
	time.Time
}

// UnmarshalJSON parses RFC3339 timestamps and naive ISO-8601 ones
func (t *FeedbackTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("unmarshal timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02T15:04:05"} {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("unrecognized timestamp %q", s)
}

// MarshalJSON writes the timestamp as RFC3339 UTC
func (t FeedbackTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// FeedbackEntry is one rating event, append-only and never mutated by
// the pipeline. IsPromo entries are excluded from topic learning but
// still suppress the URL from future reports.
type FeedbackEntry struct {
	ArticleURL     string       `json:"article_url"`
	Rating         Rating       `json:"rating"`
	Notes          string       `json:"notes,omitempty"`
	ArticleTitle   string       `json:"article_title,omitempty"`
	ArticleSummary string       `json:"article_summary,omitempty"`
	IsPromo        bool         `json:"is_promo,omitempty"`
	Timestamp      FeedbackTime `json:"timestamp"`
}
