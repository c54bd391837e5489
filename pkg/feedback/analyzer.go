package feedback

import (
	"sort"
	"strings"

	"github.com/intelscope/intelscope/pkg/domain"
)

// minimum total ratings for each confidence tier
const (
	MinRatingsBasic     = 20
	MinRatingsReliable  = 50
	MinRatingsConfident = 100
)

// how many of the most frequent words per group are considered as
// signal candidates
const candidateWords = 30

// Sufficiency is the confidence tier of an analysis, derived from the
// total number of ratings. Recommendations are withheld below the
// basic tier.
type Sufficiency string

// sufficiency tiers
const (
	SufficiencyInsufficient   Sufficiency = "insufficient"
	SufficiencyBasic          Sufficiency = "basic"
	SufficiencyReliable       Sufficiency = "reliable"
	SufficiencyHighConfidence Sufficiency = "high confidence"
)

// SufficiencyFor maps a total rating count to its confidence tier
func SufficiencyFor(total int) Sufficiency {
	switch {
	case total < MinRatingsBasic:
		return SufficiencyInsufficient
	case total < MinRatingsReliable:
		return SufficiencyBasic
	case total < MinRatingsConfident:
		return SufficiencyReliable
	default:
		return SufficiencyHighConfidence
	}
}

// Signal is one keyword whose frequency contrast between rating groups
// marks it as a filter candidate
type Signal struct {
	Word       string  `json:"word"`
	GroupCount int     `json:"group_count"` // occurrences in the signal's own group
	OtherCount int     `json:"other_count"` // occurrences in the contrasted group
	Ratio      float64 `json:"ratio"`
}

// Analysis is the result of one batch run over the rating history
type Analysis struct {
	FalsePositives  []Signal       `json:"false_positives"`  // exclusion candidates, ratio desc
	TruePositives   []Signal       `json:"true_positives"`   // inclusion candidates, ratio desc
	ModerateSignals []Signal       `json:"moderate_signals"` // words concentrated in rating 3
	RatingCounts    map[string]int `json:"rating_counts"`    // per rating "1".."5"
	TotalRatings    int            `json:"total_ratings"`
	Sufficiency     Sufficiency    `json:"sufficiency"`
}

// Options tune the pattern analysis
type Options struct {
	MinOccurrences int     // a word below this count in its group is noise
	MinRatio       float64 // frequency contrast threshold
	InclusiveRatio bool    // ratio >= MinRatio instead of strictly greater
	MinWordLen     int     // shortest token considered
}

// DefaultOptions matches the standard feedback analysis: at least 3
// occurrences, contrast ratio strictly above 2
func DefaultOptions() Options {
	return Options{MinOccurrences: 3, MinRatio: 2.0, MinWordLen: 4}
}

// StrictContentOptions is the stricter content-based variant: at least
// 5 occurrences, ratio of 3 or more
func StrictContentOptions() Options {
	return Options{MinOccurrences: 5, MinRatio: 3.0, InclusiveRatio: true, MinWordLen: 4}
}

// Analyzer computes keyword frequency contrasts over rating history
type Analyzer struct {
	opts Options
}

// NewAnalyzer creates an analyzer; zero options fall back to defaults
func NewAnalyzer(opts Options) *Analyzer {
	if opts.MinOccurrences == 0 {
		opts.MinOccurrences = 3
	}
	if opts.MinRatio == 0 {
		opts.MinRatio = 2.0
	}
	if opts.MinWordLen == 0 {
		opts.MinWordLen = 4
	}
	return &Analyzer{opts: opts}
}

// Analyze partitions the history into low (1-2), moderate (3) and high
// (4-5) groups and surfaces the words whose frequencies contrast
// between them. Promo-flagged entries count toward rating totals but
// are excluded from topic learning. The result always carries the
// sufficiency tier; callers must withhold recommendations when it is
// insufficient.
func (a *Analyzer) Analyze(entries []domain.FeedbackEntry) Analysis {
	counts := map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0}
	var low, moderate, high []domain.FeedbackEntry
	total := 0

	for _, e := range entries {
		if !e.Rating.Valid() {
			continue // malformed rating, skip the record
		}
		counts[ratingKey(e.Rating)]++
		total++
		if e.IsPromo {
			continue // suppressed from topic learning
		}
		switch {
		case e.Rating.Low():
			low = append(low, e)
		case e.Rating.Moderate():
			moderate = append(moderate, e)
		case e.Rating.High():
			high = append(high, e)
		}
	}

	lowFreq := a.wordCounts(low)
	highFreq := a.wordCounts(high)
	moderateFreq := a.wordCounts(moderate)

	return Analysis{
		FalsePositives:  a.contrast(lowFreq, highFreq),
		TruePositives:   a.contrast(highFreq, lowFreq),
		ModerateSignals: a.moderateOnly(moderateFreq, lowFreq, highFreq),
		RatingCounts:    counts,
		TotalRatings:    total,
		Sufficiency:     SufficiencyFor(total),
	}
}

// contrast finds words concentrated in the own group relative to the
// other one: count >= MinOccurrences and count/(other+1) over the ratio
// threshold. Only the most frequent candidate words are considered.
func (a *Analyzer) contrast(own, other map[string]int) []Signal {
	var signals []Signal
	for _, word := range topWords(own, candidateWords) {
		count := own[word]
		if count < a.opts.MinOccurrences {
			continue
		}
		otherCount := other[word]
		ratio := float64(count) / float64(otherCount+1)
		if a.passes(ratio) {
			signals = append(signals, Signal{Word: word, GroupCount: count, OtherCount: otherCount, Ratio: ratio})
		}
	}
	sort.SliceStable(signals, func(i, j int) bool { return signals[i].Ratio > signals[j].Ratio })
	return signals
}

// moderateOnly finds words appearing mainly in rating-3 articles:
// moderate count above the combined low+high count
func (a *Analyzer) moderateOnly(moderate, low, high map[string]int) []Signal {
	var signals []Signal
	for _, word := range topWords(moderate, 20) {
		count := moderate[word]
		if count < a.opts.MinOccurrences {
			continue
		}
		otherCount := low[word] + high[word]
		if count > otherCount {
			signals = append(signals, Signal{Word: word, GroupCount: count, OtherCount: otherCount,
				Ratio: float64(count) / float64(otherCount+1)})
		}
	}
	sort.SliceStable(signals, func(i, j int) bool { return signals[i].GroupCount > signals[j].GroupCount })
	return signals
}

func (a *Analyzer) passes(ratio float64) bool {
	if a.opts.InclusiveRatio {
		return ratio >= a.opts.MinRatio
	}
	return ratio > a.opts.MinRatio
}

// wordCounts builds a token frequency counter over title+summary text
func (a *Analyzer) wordCounts(entries []domain.FeedbackEntry) map[string]int {
	counts := make(map[string]int)
	for _, e := range entries {
		text := strings.ToLower(e.ArticleTitle + " " + e.ArticleSummary)
		var word strings.Builder
		flush := func() {
			w := word.String()
			word.Reset()
			if len(w) < a.opts.MinWordLen {
				return
			}
			if _, stop := analyzerStopWords[w]; stop {
				return
			}
			counts[w]++
		}
		for _, r := range text {
			if r >= 'a' && r <= 'z' {
				word.WriteRune(r)
				continue
			}
			flush()
		}
		flush()
	}
	return counts
}

// topWords returns up to n words ordered by count descending, ties
// alphabetical for determinism
func topWords(freq map[string]int, n int) []string {
	words := make([]string, 0, len(freq))
	for w := range freq {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if freq[words[i]] != freq[words[j]] {
			return freq[words[i]] > freq[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) > n {
		words = words[:n]
	}
	return words
}

func ratingKey(r domain.Rating) string {
	return string(rune('0' + int(r)))
}

// analyzerStopWords are dropped before counting: URL junk, generic
// article words, common stop words, time words, and region terms too
// generic to be useful filter keywords
var analyzerStopWords = map[string]struct{}{
	// URL/HTML junk
	"https": {}, "http": {}, "www": {}, "com": {}, "org": {}, "gov": {}, "html": {}, "aspx": {}, "href": {},
	"track": {}, "admin": {}, "ajax": {}, "action": {}, "nltr": {}, "rct": {}, "url": {}, "usg": {}, "link": {},
	// generic article words
	"article": {}, "news": {}, "story": {}, "read": {}, "more": {}, "click": {}, "view": {}, "here": {},
	"about": {}, "latest": {}, "update": {}, "release": {}, "media": {}, "press": {},
	// common stop words
	"the": {}, "and": {}, "for": {}, "are": {}, "but": {}, "not": {}, "you": {}, "all": {}, "can": {}, "has": {},
	"was": {}, "were": {}, "with": {}, "from": {}, "that": {}, "this": {}, "have": {}, "been": {}, "very": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "when": {}, "what": {}, "where": {}, "which": {},
	"their": {}, "there": {}, "these": {}, "those": {}, "they": {}, "them": {}, "then": {}, "than": {},
	"your": {}, "said": {}, "says": {}, "also": {}, "just": {}, "some": {}, "such": {}, "only": {},
	// time/date words
	"year": {}, "years": {}, "month": {}, "months": {}, "week": {}, "weeks": {}, "today": {}, "tomorrow": {},
	"october": {}, "september": {},
	// too generic for filter keywords
	"australia": {}, "australian": {}, "zealand": {},
}
