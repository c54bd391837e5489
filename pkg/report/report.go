// Package report renders triaged articles into a markdown digest, one
// section per category in a fixed order.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/intelscope/intelscope/pkg/domain"
)

const maxSummaryLength = 350

// Builder accumulates per-category results and renders the digest.
// Every category gets a section even when empty, readers should see
// "nothing happened" rather than a missing heading.
type Builder struct {
	since      string
	categories map[domain.Category][]domain.TriagedArticle
	now        func() time.Time
}

// NewBuilder creates a builder; since is the human-readable start of
// the reporting window shown in empty sections
func NewBuilder(since string) *Builder {
	return &Builder{
		since:      since,
		categories: make(map[domain.Category][]domain.TriagedArticle),
		now:        time.Now,
	}
}

// Add records the articles for a category, replacing any previous set
func (b *Builder) Add(category domain.Category, articles []domain.TriagedArticle) {
	b.categories[category] = articles
}

// Render produces the full markdown document
func (b *Builder) Render() string {
	sections := make([]string, 0, len(domain.Categories()))
	for _, category := range domain.Categories() {
		sections = append(sections, b.renderCategory(category, b.categories[category]))
	}
	return strings.Join(sections, "\n\n") + "\n"
}

// WriteMarkdown renders the report into a timestamped file under
// outputDir and returns the file path
func (b *Builder) WriteMarkdown(outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	stamp := b.now().UTC().Format("20060102-150405")
	path := filepath.Join(outputDir, fmt.Sprintf("market_intel_report_%s.md", stamp))
	if err := os.WriteFile(path, []byte(b.Render()), 0o600); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	return path, nil
}

func (b *Builder) renderCategory(category domain.Category, articles []domain.TriagedArticle) string {
	lines := []string{fmt.Sprintf("## %s\n", category)}
	if len(articles) == 0 {
		lines = append(lines, fmt.Sprintf("*No relevant news on %s was released since %s.*\n", category, b.since))
		return strings.Join(lines, "\n")
	}

	for _, a := range articles {
		title := strings.TrimSpace(a.Title)
		if title == "" {
			title = "Untitled"
		}
		label := a.ImportanceLabel
		if label == "" {
			label = domain.LabelForScore(a.ImportanceScore)
		}
		summary := CleanSummary(a.Summary, title)

		linkText := ""
		if a.Link != "" {
			linkText = fmt.Sprintf("[Read Article →](%s) | %s", a.Link, a.Link)
		}

		if summary == "" {
			lines = append(lines, fmt.Sprintf("- **%s** | Score: **%d** (%s) | %s", title, a.ImportanceScore, label, linkText))
		} else {
			lines = append(lines, fmt.Sprintf("- **%s** | %s | Score: **%d** (%s) | %s", title, summary, a.ImportanceScore, label, linkText))
		}
	}
	return strings.Join(lines, "\n")
}

var (
	htmlTagRe    = regexp.MustCompile(`<[^>]+>`)
	whitespaceRe = regexp.MustCompile(`\s+`)

	// boilerplate that leaks into summaries from email digests and
	// newsletter footers; everything from the match onward is dropped
	footerRes = []*regexp.Regexp{
		regexp.MustCompile(`(?is)Disclaimer.*`),
		regexp.MustCompile(`(?is)This email contains general information.*`),
		regexp.MustCompile(`(?is)For more.*visit our website`),
		regexp.MustCompile(`(?is)To unsubscribe.*`),
		regexp.MustCompile(`(?is)You (are )?receiv(ed|ing) this.*`),
		regexp.MustCompile(`(?is)If you received this email by mistake.*`),
		regexp.MustCompile(`(?is)Please confirm.*subscription.*`),
		regexp.MustCompile(`(?is)© \d{4}.*`),
	}
)

// CleanSummary normalizes a raw summary for display: strips markup and
// footer boilerplate, keeps the leading sentences, and truncates at a
// sentence boundary where possible. An empty result means the caller
// should render the title alone.
func CleanSummary(summary, title string) string {
	if len(strings.TrimSpace(summary)) < 10 {
		return placeholderFromTitle(title)
	}

	summary = htmlTagRe.ReplaceAllString(summary, "")
	summary = strings.NewReplacer("&nbsp;", " ", "&amp;", "&", "&quot;", `"`).Replace(summary)
	for _, re := range footerRes {
		summary = re.ReplaceAllString(summary, "")
	}
	summary = strings.TrimSpace(whitespaceRe.ReplaceAllString(summary, " "))

	// summary repeating the title adds nothing
	if title != "" && strings.EqualFold(summary, strings.TrimSpace(title)) {
		return ""
	}

	if sentences := splitSentences(summary); len(sentences) > 1 {
		var result strings.Builder
		for i, sentence := range sentences {
			if i == 4 {
				break
			}
			if result.Len()+len(sentence)+1 > maxSummaryLength && result.Len() > 0 {
				break
			}
			if result.Len() > 0 {
				result.WriteByte(' ')
			}
			result.WriteString(sentence)
		}
		summary = result.String()
	}

	if len(summary) > maxSummaryLength {
		truncated := summary[:maxSummaryLength]
		lastStop := strings.LastIndexAny(truncated, ".!?")
		if lastStop > maxSummaryLength*7/10 {
			summary = summary[:lastStop+1]
		} else {
			summary = summary[:maxSummaryLength-3] + "..."
		}
	}
	return strings.TrimSpace(summary)
}

// placeholderFromTitle salvages a pointer for articles without a usable
// summary, naming the outlet when the title carries one
func placeholderFromTitle(title string) string {
	if title == "" {
		return ""
	}
	for _, sep := range []string{" - ", "|"} {
		if strings.Contains(title, sep) {
			parts := strings.Split(title, sep)
			if source := strings.TrimSpace(parts[len(parts)-1]); source != "" {
				return fmt.Sprintf("Source: %s. Click link to read full article for details.", source)
			}
		}
	}
	return "Click link above to read full article for details."
}

// splitSentences breaks text on sentence stops followed by a capital
// letter, the shape ". Next sentence"
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes)-1; i++ {
		if runes[i] != '.' && runes[i] != '!' && runes[i] != '?' {
			continue
		}
		j := i + 1
		for j < len(runes) && (runes[j] == ' ' || runes[j] == '\t') {
			j++
		}
		if j == i+1 || j >= len(runes) || runes[j] < 'A' || runes[j] > 'Z' {
			continue
		}
		sentences = append(sentences, strings.TrimSpace(string(runes[start:i+1])))
		start = j
		i = j - 1
	}
	if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}
