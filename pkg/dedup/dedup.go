// Package dedup collapses near-duplicate articles inside one batch.
// Two articles are duplicates when their normalized titles are
// sequence-similar or when they share enough key terms; the better of
// the pair survives as the cluster representative.
package dedup

import (
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/intelscope/intelscope/pkg/domain"
)

// default similarity thresholds
const (
	defaultTitleThreshold = 0.7
	defaultTermOverlap    = 3
	minKeyTermLen         = 4
)

// key-term extraction drops these common words before comparing
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {},
	"not": {}, "with": {}, "from": {}, "this": {}, "that": {},
}

// Config holds deduplication thresholds and source quality tiers used
// by the best-article tie-break
type Config struct {
	TitleThreshold float64  // sequence ratio at or above which titles are duplicates
	TermOverlap    int      // shared key terms at or above which topics are duplicates
	PremiumSources []string // +20 composite bonus
	QualitySources []string // +10 composite bonus
}

// DefaultConfig returns the standard thresholds and source tiers
func DefaultConfig() Config {
	return Config{
		TitleThreshold: defaultTitleThreshold,
		TermOverlap:    defaultTermOverlap,
		PremiumSources: []string{"australian financial review", "bloomberg", "reuters", "financial times"},
		QualitySources: []string{"abc", "sydney morning herald", "the guardian", "the age"},
	}
}

// Deduplicator collapses similar articles keeping the best of each cluster
type Deduplicator struct {
	cfg Config
}

// New creates a deduplicator; zero thresholds fall back to defaults
func New(cfg Config) *Deduplicator {
	if cfg.TitleThreshold == 0 {
		cfg.TitleThreshold = defaultTitleThreshold
	}
	if cfg.TermOverlap == 0 {
		cfg.TermOverlap = defaultTermOverlap
	}
	return &Deduplicator{cfg: cfg}
}

// Deduplicate returns the input with near-duplicates collapsed. Each
// article is compared against existing cluster representatives in
// insertion order; the first match wins and scanning stops there — no
// exhaustive best-match search. The survivor of a matched pair replaces
// the representative in place, so the output keeps positional order and
// is a fixed point: deduplicating the result again changes nothing.
func (d *Deduplicator) Deduplicate(articles []domain.TriagedArticle) []domain.TriagedArticle {
	if len(articles) == 0 {
		return nil
	}

	unique := make([]domain.TriagedArticle, 0, len(articles))
	for _, article := range articles {
		matched := false
		for i, rep := range unique {
			if d.titlesSimilar(article.Title, rep.Title) || d.topicsSimilar(article, rep) {
				matched = true
				if d.compositeScore(article) >= d.compositeScore(rep) {
					unique[i] = article
				}
				break
			}
		}
		if !matched {
			unique = append(unique, article)
		}
	}
	return unique
}

// titlesSimilar compares normalized titles with a sequence ratio
func (d *Deduplicator) titlesSimilar(title1, title2 string) bool {
	norm1 := NormalizeTitle(title1)
	norm2 := NormalizeTitle(title2)
	if norm1 == "" || norm2 == "" {
		return false
	}
	matcher := difflib.NewMatcher(strings.Split(norm1, ""), strings.Split(norm2, ""))
	return matcher.Ratio() >= d.cfg.TitleThreshold
}

// topicsSimilar checks whether two articles share enough key terms to
// cover the same story from different angles
func (d *Deduplicator) topicsSimilar(a, b domain.TriagedArticle) bool {
	terms1 := KeyTerms(a.Title, a.Summary)
	terms2 := KeyTerms(b.Title, b.Summary)

	common := 0
	for term := range terms1 {
		if _, ok := terms2[term]; ok {
			common++
			if common >= d.cfg.TermOverlap {
				return true
			}
		}
	}
	return false
}

// compositeScore is the desirability of an article when resolving a
// duplicate pair: importance score plus source-tier, summary-length and
// source-tag bonuses. On an exact tie the incoming article replaces the
// representative, matching the max-over-pair resolution order.
func (d *Deduplicator) compositeScore(a domain.TriagedArticle) float64 {
	score := float64(a.ImportanceScore)

	source := strings.ToLower(a.Source)
	switch {
	case containsAny(source, d.cfg.PremiumSources):
		score += 20
	case containsAny(source, d.cfg.QualitySources):
		score += 10
	}

	lengthBonus := float64(len(a.Summary)) / 50
	if lengthBonus > 10 {
		lengthBonus = 10
	}
	score += lengthBonus

	if strings.HasPrefix(a.Title, "[") {
		score += 5 // came directly from a primary source
	}
	return score
}

// NormalizeTitle prepares a title for similarity comparison: bracketed
// source tags removed, lower-cased, punctuation stripped, whitespace
// collapsed
func NormalizeTitle(title string) string {
	for _, tag := range []string{"[RSS]", "[Legislation]", "[News]"} {
		title = strings.ReplaceAll(title, tag, " ")
	}
	title = strings.ToLower(title)

	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// KeyTerms extracts the set of lower-cased words of four or more
// letters from title+summary, stop words removed
func KeyTerms(title, summary string) map[string]struct{} {
	text := strings.ToLower(title + " " + summary)

	terms := make(map[string]struct{})
	var word strings.Builder
	flush := func() {
		w := word.String()
		word.Reset()
		if len(w) < minKeyTermLen {
			return
		}
		if _, stop := stopWords[w]; stop {
			return
		}
		terms[w] = struct{}{}
	}
	for _, r := range text {
		if r >= 'a' && r <= 'z' {
			word.WriteRune(r)
			continue
		}
		flush()
	}
	flush()
	return terms
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if sub != "" && strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
