package domain

import "time"

// SourceType identifies where an article candidate came from
type SourceType string

// known source types
const (
	SourceAPI         SourceType = "API"
	SourceRSS         SourceType = "RSS"
	SourceLegislation SourceType = "Legislation"
	SourceNewsletter  SourceType = "Newsletter"
	SourceScraper     SourceType = "Scraper"
)

// Tagged reports whether triaged titles from this source carry a
// bracketed source marker, e.g. "[RSS] ASIC fines major bank"
func (s SourceType) Tagged() bool {
	return s == SourceRSS || s == SourceLegislation
}

// ArticleCandidate is a normalized article as delivered by a collector,
// before any triage decision has been made
type ArticleCandidate struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	URL         string     `json:"url"`
	Source      string     `json:"source,omitempty"`
	PublishedAt time.Time  `json:"published_at,omitempty"`
	SourceType  SourceType `json:"source_type"`
}

// TriagedArticle is the result of triage for an accepted candidate.
// Link is the identity key against previously seen URLs; in-batch
// duplicates are detected by content similarity instead.
type TriagedArticle struct {
	Title           string          `json:"title"`
	Summary         string          `json:"summary"`
	ImportanceScore int             `json:"importance_score"`
	ImportanceLabel ImportanceLabel `json:"importance_label"`
	Category        Category        `json:"category"`
	Link            string          `json:"link"`
	Source          string          `json:"source,omitempty"`
}

// ImportanceLabel is the discrete importance tier derived from the score
type ImportanceLabel string

// importance labels, most to least important
const (
	VeryImportant       ImportanceLabel = "Very Important"
	Important           ImportanceLabel = "Important"
	ModeratelyImportant ImportanceLabel = "Moderately Important"
	LessImportant       ImportanceLabel = "Less Important"
	NotImportant        ImportanceLabel = "Not Important"
)

// LabelForScore maps an importance score to its label. The thresholds
// are the single source of truth, shared by the scorer and anything
// that recomputes labels.
func LabelForScore(score int) ImportanceLabel {
	switch {
	case score >= 91:
		return VeryImportant
	case score >= 75:
		return Important
	case score >= 50:
		return ModeratelyImportant
	case score >= 25:
		return LessImportant
	default:
		return NotImportant
	}
}
