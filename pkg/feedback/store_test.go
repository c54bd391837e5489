package feedback

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intelscope/intelscope/pkg/domain"
)

func TestStore_Load(t *testing.T) {
	t.Run("missing file is empty history", func(t *testing.T) {
		s := NewStore(filepath.Join(t.TempDir(), "feedback.jsonl"))
		entries, err := s.Load()
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("corrupt lines skipped silently", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "feedback.jsonl")
		content := `{"article_url":"https://example.com/a","rating":4,"timestamp":"2025-01-10T10:00:00Z"}
not json at all
{"article_url":"https://example.com/b","rating":1,"timestamp":"2025-01-11T10:00:00Z"}
{"broken":
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		entries, err := NewStore(path).Load()
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, "https://example.com/a", entries[0].ArticleURL)
		assert.Equal(t, domain.Rating(4), entries[0].Rating)
		assert.Equal(t, domain.Rating(1), entries[1].Rating)
	})

	t.Run("legacy string ratings normalized", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "feedback.jsonl")
		content := `{"article_url":"https://example.com/old1","rating":"not_relevant","timestamp":"2024-11-01T10:00:00Z"}
{"article_url":"https://example.com/old2","rating":"relevant","timestamp":"2024-11-01T10:00:00.123456"}
`
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		entries, err := NewStore(path).Load()
		require.NoError(t, err)
		require.Len(t, entries, 2)
		assert.Equal(t, domain.Rating(1), entries[0].Rating)
		assert.Equal(t, domain.Rating(4), entries[1].Rating)
		assert.False(t, entries[1].Timestamp.IsZero(), "naive ISO timestamp parses")
	})
}

func TestStore_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.jsonl")
	s := NewStore(path)

	require.NoError(t, s.Append(domain.FeedbackEntry{
		ArticleURL:   "https://example.com/a",
		Rating:       5,
		Notes:        "spot on",
		ArticleTitle: "ASIC fines major bank",
	}))
	require.NoError(t, s.Append(domain.FeedbackEntry{
		ArticleURL: "https://example.com/b",
		Rating:     2,
	}))

	entries, err := s.Load()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domain.Rating(5), entries[0].Rating)
	assert.Equal(t, "spot on", entries[0].Notes)
	assert.False(t, entries[0].Timestamp.IsZero(), "zero timestamp stamped on append")
	assert.Equal(t, "https://example.com/b", entries[1].ArticleURL)
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			"tracking link reduced to slug",
			"https://www.biometricupdate.com/202501/acme-launches-platform;jsessionid=abc?utm=x",
			"acme-launches-platform",
		},
		{"regular url unchanged", "https://example.com/story", "https://example.com/story"},
		{"outlet url without tracking shape unchanged", "https://www.biometricupdate.com/about", "https://www.biometricupdate.com/about"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeURL(tt.url))
		})
	}
}

func TestStore_NotRelevantURLs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feedback.jsonl")
	s := NewStore(path)

	entries := []domain.FeedbackEntry{
		{ArticleURL: "https://example.com/low", Rating: 1},
		{ArticleURL: "https://example.com/low2", Rating: 2},
		{ArticleURL: "https://example.com/good", Rating: 5},
		{ArticleURL: "https://example.com/promo", Rating: 4, IsPromo: true},
		{ArticleURL: "https://example.com/rss-rated", Rating: 4, ArticleTitle: "[RSS] APRA consults"},
		{ArticleURL: "https://www.biometricupdate.com/202501/vendor-launch;track=1", Rating: 1},
	}
	for _, e := range entries {
		require.NoError(t, s.Append(e))
	}

	suppress, err := s.NotRelevantURLs()
	require.NoError(t, err)

	assert.Contains(t, suppress, "https://example.com/low")
	assert.Contains(t, suppress, "https://example.com/low2")
	assert.Contains(t, suppress, "https://example.com/promo", "promo entries suppressed even with high rating")
	assert.Contains(t, suppress, "https://example.com/rss-rated", "rated RSS articles blocked from re-surfacing")
	assert.Contains(t, suppress, "https://www.biometricupdate.com/202501/vendor-launch;track=1")
	assert.Contains(t, suppress, "vendor-launch", "normalized form included")
	assert.NotContains(t, suppress, "https://example.com/good")
}
