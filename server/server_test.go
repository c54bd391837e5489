package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intelscope/intelscope/pkg/domain"
	"github.com/intelscope/intelscope/pkg/feedback"
)

func newTestServer(t *testing.T) (*httptest.Server, *feedback.Store) {
	t.Helper()
	store := feedback.NewStore(filepath.Join(t.TempDir(), "feedback.jsonl"))
	srv := New(store, feedback.NewAnalyzer(feedback.DefaultOptions()), Config{
		Listen:  ":0",
		Timeout: 5 * time.Second,
		Version: "test",
	})
	ts := httptest.NewServer(srv.router)
	t.Cleanup(ts.Close)
	return ts, store
}

func TestServer_Status(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/v1/status")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var status map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.Equal(t, "ok", status["status"])
	assert.Equal(t, "test", status["version"])
}

func TestServer_Ping(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/ping")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_SubmitFeedback(t *testing.T) {
	t.Run("valid entry recorded", func(t *testing.T) {
		ts, store := newTestServer(t)

		body := `{"article_url":"https://example.com/a","rating":4,"article_title":"ASIC fines bank","notes":"useful"}`
		resp, err := http.Post(ts.URL+"/api/v1/feedback", "application/json", strings.NewReader(body))
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusCreated, resp.StatusCode)

		entries, err := store.Load()
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "https://example.com/a", entries[0].ArticleURL)
		assert.Equal(t, domain.Rating(4), entries[0].Rating)
		assert.False(t, entries[0].Timestamp.IsZero())
	})

	t.Run("rejections", func(t *testing.T) {
		ts, store := newTestServer(t)

		tests := []struct {
			name string
			body string
		}{
			{"missing url", `{"rating":4}`},
			{"rating zero", `{"article_url":"https://example.com/a","rating":0}`},
			{"rating out of range", `{"article_url":"https://example.com/a","rating":7}`},
			{"not json", `not json`},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				resp, err := http.Post(ts.URL+"/api/v1/feedback", "application/json", strings.NewReader(tt.body))
				require.NoError(t, err)
				defer resp.Body.Close()
				assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			})
		}

		entries, err := store.Load()
		require.NoError(t, err)
		assert.Empty(t, entries, "rejected submissions never persisted")
	})
}

func TestServer_Analysis(t *testing.T) {
	ts, store := newTestServer(t)

	for i := 0; i < 8; i++ {
		require.NoError(t, store.Append(domain.FeedbackEntry{
			ArticleURL:   fmt.Sprintf("https://example.com/low%d", i),
			Rating:       1,
			ArticleTitle: fmt.Sprintf("webinar invitation variant%d", i),
		}))
	}
	for i := 0; i < 15; i++ {
		require.NoError(t, store.Append(domain.FeedbackEntry{
			ArticleURL:   fmt.Sprintf("https://example.com/high%d", i),
			Rating:       4,
			ArticleTitle: fmt.Sprintf("regulator bulletin issue%d", i),
		}))
	}

	resp, err := http.Get(ts.URL + "/api/v1/feedback/analysis")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var analysis feedback.Analysis
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&analysis))
	assert.Equal(t, 23, analysis.TotalRatings)
	assert.Equal(t, feedback.SufficiencyBasic, analysis.Sufficiency)
	assert.Equal(t, 8, analysis.RatingCounts["1"])
	assert.Equal(t, 15, analysis.RatingCounts["4"])

	var words []string
	for _, s := range analysis.FalsePositives {
		words = append(words, s.Word)
	}
	assert.Contains(t, words, "webinar")
}

func TestServer_Recommendations(t *testing.T) {
	t.Run("insufficient data yields empty list", func(t *testing.T) {
		ts, store := newTestServer(t)

		for i := 0; i < 5; i++ {
			require.NoError(t, store.Append(domain.FeedbackEntry{
				ArticleURL: fmt.Sprintf("https://example.com/%d", i),
				Rating:     3,
			}))
		}

		resp, err := http.Get(ts.URL + "/api/v1/feedback/recommendations")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result struct {
			Sufficiency     string                    `json:"sufficiency"`
			TotalRatings    int                       `json:"total_ratings"`
			Recommendations []feedback.Recommendation `json:"recommendations"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, "insufficient", result.Sufficiency)
		assert.Equal(t, 5, result.TotalRatings)
		assert.Empty(t, result.Recommendations)
	})

	t.Run("strong signal produces recommendations", func(t *testing.T) {
		ts, store := newTestServer(t)

		for i := 0; i < 10; i++ {
			require.NoError(t, store.Append(domain.FeedbackEntry{
				ArticleURL:   fmt.Sprintf("https://example.com/low%d", i),
				Rating:       1,
				ArticleTitle: fmt.Sprintf("webinar invitation variant%d", i),
			}))
		}
		for i := 0; i < 12; i++ {
			require.NoError(t, store.Append(domain.FeedbackEntry{
				ArticleURL:   fmt.Sprintf("https://example.com/high%d", i),
				Rating:       5,
				ArticleTitle: fmt.Sprintf("austrac enforcement case%d", i),
			}))
		}

		resp, err := http.Get(ts.URL + "/api/v1/feedback/recommendations")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var result struct {
			Sufficiency     string                    `json:"sufficiency"`
			Recommendations []feedback.Recommendation `json:"recommendations"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
		assert.Equal(t, "basic", result.Sufficiency)
		require.NotEmpty(t, result.Recommendations)

		types := make(map[feedback.RecommendationType]bool)
		for _, rec := range result.Recommendations {
			types[rec.Type] = true
		}
		assert.True(t, types[feedback.RecommendExclude])
		assert.True(t, types[feedback.RecommendBoost])
	})
}
