// Package triage implements the deterministic article triage pipeline:
// relevance filtering, category classification and importance scoring.
// All decisions are keyword driven substring tests over lower-cased
// title+description text. Matching is intentionally not word-boundary
// aware — "ai" matches inside "air" — mirroring the recall/precision
// trade-off the keyword tables were tuned against.
package triage

import (
	"strings"

	"github.com/intelscope/intelscope/pkg/domain"
)

const maxSummaryLen = 300

// Triager applies a fixed rule set to article candidates
type Triager struct {
	rules Rules
}

// New creates a triager for the given rules. The rules value is
// captured as-is and never modified.
func New(rules Rules) *Triager {
	return &Triager{rules: rules}
}

// Rules returns the rule set the triager was built with
func (t *Triager) Rules() Rules { return t.rules }

// Process runs the full triage for one candidate. It returns nil when
// the candidate is rejected by the relevance or corporate-PR gate.
// defaultCategory is the collector's category hint; the keyword
// classifier makes the final call.
func (t *Triager) Process(c domain.ArticleCandidate, defaultCategory domain.Category) *domain.TriagedArticle {
	if !t.IsRelevant(c.Title, c.Description) {
		return nil
	}
	if t.IsCorporatePR(c.Title, c.Description, c.URL) {
		return nil
	}

	title := c.Title
	if title == "" {
		title = "Untitled"
	}
	if c.SourceType.Tagged() {
		tag := "[" + string(c.SourceType) + "]"
		if !strings.HasPrefix(title, tag) {
			title = tag + " " + title
		}
	}

	// classification and scoring run on the tagged title, same as the
	// relevance gate ran on the raw one
	category := t.Classify(title, c.Description)
	if !category.Valid() {
		category = defaultCategory
	}
	score, label := t.Score(title, c.Description)

	summary := truncate(c.Description, maxSummaryLen)
	if summary == "" {
		summary = "No summary available"
	}

	return &domain.TriagedArticle{
		Title:           title,
		Summary:         summary,
		ImportanceScore: score,
		ImportanceLabel: label,
		Category:        category,
		Link:            c.URL,
		Source:          c.Source,
	}
}

// IsRelevant decides whether an article is worth keeping. Any exclusion
// keyword rejects immediately, regardless of inclusion matches; with no
// exclusion hit, any inclusion keyword accepts; the default is reject.
func (t *Triager) IsRelevant(title, description string) bool {
	text := blob(title, description)
	if containsAny(text, t.rules.Exclude) {
		return false
	}
	return containsAny(text, t.rules.Include)
}

// IsCorporatePR detects low-value product announcements from known PR
// outlets. The order is fixed: PR-pattern match first, then the region
// keyword override, then the verdict — region-relevant PR is kept.
func (t *Triager) IsCorporatePR(title, description, url string) bool {
	fromOutlet := false
	for _, outlet := range t.rules.PROutlets {
		if strings.Contains(url, outlet) {
			fromOutlet = true
			break
		}
	}
	if !fromOutlet {
		return false
	}

	text := blob(title, description)
	if !containsAny(text, t.rules.PRPatterns) {
		return false
	}
	if containsAny(text, t.rules.RegionKeywords) {
		return false // region-specific PR stays in
	}
	return true
}

// Classify assigns exactly one category. Groups are tested in their
// fixed precedence order and the first match wins; with no match the
// fallback is Regulation.
func (t *Triager) Classify(title, description string) domain.Category {
	text := blob(title, description)
	for _, rule := range t.rules.Categories {
		if containsAny(text, rule.Keywords) {
			return rule.Category
		}
	}
	return domain.CategoryRegulation
}

// Score computes the 0-100 importance score and its label. Tiers are
// independent and additive; the sum is clamped to [0,100].
func (t *Triager) Score(title, description string) (int, domain.ImportanceLabel) {
	text := blob(title, description)

	score := 50
	for _, tier := range t.rules.ScoreTiers {
		if containsAny(text, tier.Keywords) {
			score += tier.Boost
		}
	}
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score, domain.LabelForScore(score)
}

func blob(title, description string) string {
	return strings.ToLower(title + " " + description)
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
