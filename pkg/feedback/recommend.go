package feedback

import (
	"fmt"
	"strings"

	"github.com/intelscope/intelscope/pkg/triage"
)

// cap on keywords per recommendation
const maxRecommendationKeywords = 10

// RecommendationType names what a recommendation changes
type RecommendationType string

// recommendation types
const (
	RecommendExclude    RecommendationType = "EXCLUDE"     // add exclusion keywords
	RecommendBoost      RecommendationType = "BOOST"       // add inclusion keywords
	RecommendScoreBoost RecommendationType = "SCORE_BOOST" // add an importance score tier
)

// Recommendation is one proposed filter update. Recommendations are
// surfaced for explicit human confirmation; nothing applies them
// automatically.
type Recommendation struct {
	Type     RecommendationType `json:"type"`
	Action   string             `json:"action"`
	Impact   string             `json:"impact"`
	Keywords []string           `json:"keywords"`
}

// Recommendations turns an analysis into actionable filter updates.
// Below the basic sufficiency tier the list is empty — the data cannot
// support confident recommendations yet.
func Recommendations(analysis Analysis) []Recommendation {
	if analysis.Sufficiency == SufficiencyInsufficient {
		return nil
	}

	var recs []Recommendation

	if words := signalWords(analysis.FalsePositives, maxRecommendationKeywords); len(words) > 0 {
		recs = append(recs, Recommendation{
			Type:     RecommendExclude,
			Action:   fmt.Sprintf("Add to exclusion keywords: %s", strings.Join(words, ", ")),
			Impact:   "Filters out common false positives",
			Keywords: words,
		})
	}

	if words := signalWords(analysis.TruePositives, maxRecommendationKeywords); len(words) > 0 {
		recs = append(recs, Recommendation{
			Type:     RecommendBoost,
			Action:   fmt.Sprintf("Add to inclusion keywords: %s", strings.Join(words, ", ")),
			Impact:   "Captures more relevant articles",
			Keywords: words,
		})
		recs = append(recs, Recommendation{
			Type:     RecommendScoreBoost,
			Action:   "Boost importance score by +10 for articles containing high-value keywords",
			Impact:   "Prioritizes relevant articles in reports",
			Keywords: signalWords(analysis.TruePositives, 5),
		})
	}

	return recs
}

// Apply produces a new rules value with the recommendation merged in.
// The input is never modified; persisting the result is the caller's
// explicit decision.
func Apply(rules triage.Rules, rec Recommendation) triage.Rules {
	updated := cloneRules(rules)

	switch rec.Type {
	case RecommendExclude:
		updated.Exclude = appendNew(updated.Exclude, rec.Keywords)
	case RecommendBoost:
		updated.Include = appendNew(updated.Include, rec.Keywords)
	case RecommendScoreBoost:
		if len(rec.Keywords) > 0 {
			updated.ScoreTiers = append(updated.ScoreTiers, triage.ScoreTier{Boost: 10, Keywords: rec.Keywords})
		}
	}
	return updated
}

func signalWords(signals []Signal, limit int) []string {
	if len(signals) > limit {
		signals = signals[:limit]
	}
	words := make([]string, 0, len(signals))
	for _, s := range signals {
		words = append(words, s.Word)
	}
	return words
}

func appendNew(existing, candidates []string) []string {
	known := make(map[string]struct{}, len(existing))
	for _, kw := range existing {
		known[kw] = struct{}{}
	}
	for _, kw := range candidates {
		if _, ok := known[kw]; !ok {
			existing = append(existing, kw)
		}
	}
	return existing
}

func cloneRules(rules triage.Rules) triage.Rules {
	cloned := rules
	cloned.Exclude = append([]string(nil), rules.Exclude...)
	cloned.Include = append([]string(nil), rules.Include...)
	cloned.PROutlets = append([]string(nil), rules.PROutlets...)
	cloned.PRPatterns = append([]string(nil), rules.PRPatterns...)
	cloned.RegionKeywords = append([]string(nil), rules.RegionKeywords...)
	cloned.Categories = append([]triage.CategoryRule(nil), rules.Categories...)
	cloned.ScoreTiers = append([]triage.ScoreTier(nil), rules.ScoreTiers...)
	return cloned
}
