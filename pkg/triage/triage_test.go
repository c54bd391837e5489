package triage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intelscope/intelscope/pkg/domain"
)

func TestTriager_IsRelevant(t *testing.T) {
	tr := New(DefaultRules())

	tests := []struct {
		name        string
		title       string
		description string
		want        bool
	}{
		{"inclusion keyword matches", "ASIC releases new guidance", "regulatory update for lenders", true},
		{"no keyword at all", "Local gardening tips", "how to grow tomatoes", false},
		{"exclusion wins over inclusion", "ASIC enforcement sunscreen review", "", false},
		{"promotional content excluded", "Join our webinar on credit risk", "register now", false},
		{"case insensitive", "EXPERIAN expands in AUSTRALIA", "Credit Bureau news", true},
		{"empty input", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tr.IsRelevant(tt.title, tt.description))
		})
	}
}

func TestTriager_IsRelevant_SubstringMatching(t *testing.T) {
	// matching is substring based, not word-boundary based: a short
	// keyword like "ai" hits inside larger words. Known, intentional
	// limitation carried over from the tuned filter.
	tr := New(Rules{Include: []string{"ai"}})
	assert.True(t, tr.IsRelevant("clean air initiative", ""))
	assert.True(t, tr.IsRelevant("the chairman said", ""))
}

func TestTriager_IsCorporatePR(t *testing.T) {
	tr := New(DefaultRules())

	t.Run("PR outlet with PR verb filtered", func(t *testing.T) {
		got := tr.IsCorporatePR("Acme launches facial recognition platform",
			"global rollout", "https://www.biometricupdate.com/202501/acme-launch")
		assert.True(t, got)
	})

	t.Run("region keyword overrides PR pattern", func(t *testing.T) {
		got := tr.IsCorporatePR("Biometric Update: Acme launches facial recognition in Australia",
			"", "https://www.biometricupdate.com/202501/acme-launch")
		assert.False(t, got, "ANZ-relevant PR should be kept")
	})

	t.Run("non-PR outlet never flagged", func(t *testing.T) {
		got := tr.IsCorporatePR("Acme launches new product", "", "https://example.com/story")
		assert.False(t, got)
	})

	t.Run("PR outlet without PR language kept", func(t *testing.T) {
		got := tr.IsCorporatePR("Regulator probes vendor", "", "https://www.biometricupdate.com/202501/probe")
		assert.False(t, got)
	})
}

func TestTriager_Classify(t *testing.T) {
	tr := New(DefaultRules())

	tests := []struct {
		name        string
		title       string
		description string
		want        domain.Category
	}{
		{"competitor name", "Experian posts record quarter", "", domain.CategoryCompetition},
		{"regulator", "OAIC opens privacy probe", "", domain.CategoryRegulation},
		{"fintech", "Open banking uptake grows", "fintech adoption", domain.CategoryDisruptive},
		{"consumer", "Household spending falls", "customer sentiment weakens", domain.CategoryConsumer},
		{"market", "Industry growth forecast revised", "", domain.CategoryMarket},
		{"no match falls back to regulation", "quiet news day", "", domain.CategoryRegulation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tr.Classify(tt.title, tt.description)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.Valid())
		})
	}
}

func TestTriager_Classify_PrecedenceOrder(t *testing.T) {
	tr := New(DefaultRules())

	// matches both Competition ("merger") and Regulation ("regulatory"),
	// Competition is checked first and wins
	got := tr.Classify("Merger faces regulatory scrutiny", "")
	assert.Equal(t, domain.CategoryCompetition, got)

	// "ai" substring in "airline"... but "air" text with disruptive keyword only
	got = tr.Classify("AI adoption in consumer lending", "")
	assert.Equal(t, domain.CategoryDisruptive, got)
}

func TestTriager_Score(t *testing.T) {
	tr := New(DefaultRules())

	tests := []struct {
		name      string
		title     string
		wantScore int
		wantLabel domain.ImportanceLabel
	}{
		{"base score with no boosts", "credit union quarterly update", 50, domain.ModeratelyImportant},
		{"central bank boost", "Reserve Bank holds rates", 80, domain.Important},
		{"enforcement boost", "ASIC investigation of broker", 70, domain.ModeratelyImportant},
		{"m&a boost", "merger talks continue", 65, domain.ModeratelyImportant},
		{"privacy boost", "privacy review announced", 60, domain.ModeratelyImportant},
		{"stacked boosts clamp at 100", "Reserve Bank probes merger breach, privacy enforcement by ASIC", 100, domain.VeryImportant},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, label := tr.Score(tt.title, "")
			assert.Equal(t, tt.wantScore, score)
			assert.Equal(t, tt.wantLabel, label)
			assert.GreaterOrEqual(t, score, 0)
			assert.LessOrEqual(t, score, 100)
		})
	}
}

func TestLabelForScore_Boundaries(t *testing.T) {
	tests := []struct {
		score int
		want  domain.ImportanceLabel
	}{
		{100, domain.VeryImportant},
		{91, domain.VeryImportant},
		{90, domain.Important},
		{75, domain.Important},
		{74, domain.ModeratelyImportant},
		{50, domain.ModeratelyImportant},
		{49, domain.LessImportant},
		{25, domain.LessImportant},
		{24, domain.NotImportant},
		{0, domain.NotImportant},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, domain.LabelForScore(tt.score), "score %d", tt.score)
	}
}

func TestTriager_Process(t *testing.T) {
	tr := New(DefaultRules())

	t.Run("accepted article", func(t *testing.T) {
		res := tr.Process(domain.ArticleCandidate{
			Title:       "ASIC fines major bank",
			Description: "enforcement action over breach",
			URL:         "https://example.com/asic-fine",
			Source:      "Example News",
			SourceType:  domain.SourceAPI,
		}, domain.CategoryRegulation)

		require.NotNil(t, res)
		assert.Equal(t, "ASIC fines major bank", res.Title)
		assert.Equal(t, "enforcement action over breach", res.Summary)
		assert.Equal(t, "https://example.com/asic-fine", res.Link)
		assert.Equal(t, domain.LabelForScore(res.ImportanceScore), res.ImportanceLabel)
		assert.True(t, res.Category.Valid())
	})

	t.Run("rejected by relevance returns nil", func(t *testing.T) {
		res := tr.Process(domain.ArticleCandidate{
			Title: "Best sunscreen for summer", URL: "https://example.com/spf",
		}, domain.CategoryRegulation)
		assert.Nil(t, res)
	})

	t.Run("rejected by PR gate returns nil", func(t *testing.T) {
		res := tr.Process(domain.ArticleCandidate{
			Title:       "Vendor launches biometric KYC platform",
			Description: "global expansion",
			URL:         "https://www.biometricupdate.com/202501/vendor-launch",
		}, domain.CategoryRegulation)
		assert.Nil(t, res)
	})

	t.Run("RSS source tagged", func(t *testing.T) {
		res := tr.Process(domain.ArticleCandidate{
			Title:      "APRA consults on capital rules",
			URL:        "https://example.com/apra",
			SourceType: domain.SourceRSS,
		}, domain.CategoryRegulation)
		require.NotNil(t, res)
		assert.Equal(t, "[RSS] APRA consults on capital rules", res.Title)
	})

	t.Run("already tagged title not tagged twice", func(t *testing.T) {
		res := tr.Process(domain.ArticleCandidate{
			Title:      "[RSS] APRA consults on capital rules",
			URL:        "https://example.com/apra",
			SourceType: domain.SourceRSS,
		}, domain.CategoryRegulation)
		require.NotNil(t, res)
		assert.Equal(t, "[RSS] APRA consults on capital rules", res.Title)
	})

	t.Run("long summary truncated to 300", func(t *testing.T) {
		res := tr.Process(domain.ArticleCandidate{
			Title:       "ASIC update",
			Description: strings.Repeat("x", 500),
			URL:         "https://example.com/long",
		}, domain.CategoryRegulation)
		require.NotNil(t, res)
		assert.Len(t, res.Summary, 300)
	})

	t.Run("empty description gets placeholder", func(t *testing.T) {
		res := tr.Process(domain.ArticleCandidate{
			Title: "ASIC update", URL: "https://example.com/short",
		}, domain.CategoryRegulation)
		require.NotNil(t, res)
		assert.Equal(t, "No summary available", res.Summary)
	})
}
