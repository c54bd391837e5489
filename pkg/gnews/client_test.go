package gnews

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/intelscope/intelscope/pkg/domain"
)

func newTestClient(serverURL string) *Client {
	c := NewClient("test-key", 5*time.Second)
	c.baseURL = serverURL
	return c
}

func TestClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "banking regulation", q.Get("q"))
		assert.Equal(t, "en", q.Get("lang"))
		assert.Equal(t, "au", q.Get("country"))
		assert.Equal(t, "10", q.Get("max"))
		assert.Equal(t, "test-key", q.Get("apikey"))

		w.Write([]byte(`{"totalArticles":1,"articles":[{
			"title":"ASIC fines major bank",
			"description":"Record penalty",
			"url":"https://example.com/a",
			"publishedAt":"2025-01-10T10:00:00Z",
			"source":{"name":"Reuters"}
		}]}`))
	}))
	defer server.Close()

	articles, err := newTestClient(server.URL).Search(context.Background(), "banking regulation", 10)
	require.NoError(t, err)
	require.Len(t, articles, 1)

	a := articles[0]
	assert.Equal(t, "ASIC fines major bank", a.Title)
	assert.Equal(t, "Record penalty", a.Description)
	assert.Equal(t, "https://example.com/a", a.URL)
	assert.Equal(t, "Reuters", a.Source)
	assert.Equal(t, domain.SourceAPI, a.SourceType)
	assert.Equal(t, time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC), a.PublishedAt)
}

func TestClient_Search_FallbackToHeadlines(t *testing.T) {
	t.Run("empty search result", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/search":
				w.Write([]byte(`{"totalArticles":0,"articles":[]}`))
			case "/top-headlines":
				assert.Equal(t, "business", r.URL.Query().Get("category"))
				w.Write([]byte(`{"articles":[{"title":"Headline","url":"https://example.com/h","source":{"name":"AFR"}}]}`))
			}
		}))
		defer server.Close()

		articles, err := newTestClient(server.URL).Search(context.Background(), "anything", 10)
		require.NoError(t, err)
		require.Len(t, articles, 1)
		assert.Equal(t, "Headline", articles[0].Title)
	})

	t.Run("search endpoint rejected", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/search":
				w.WriteHeader(http.StatusForbidden)
			case "/top-headlines":
				w.Write([]byte(`{"articles":[{"title":"Headline","url":"https://example.com/h"}]}`))
			}
		}))
		defer server.Close()

		articles, err := newTestClient(server.URL).Search(context.Background(), "anything", 10)
		require.NoError(t, err)
		require.Len(t, articles, 1)
	})
}

func TestClient_Get_RetriesTransientFailures(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"articles":[{"title":"ok","url":"https://example.com/ok"}]}`))
	}))
	defer server.Close()

	articles, err := newTestClient(server.URL).TopHeadlines(context.Background(), "business", 10)
	require.NoError(t, err)
	require.Len(t, articles, 1)
	assert.Equal(t, 3, calls)
}

func TestClient_Get_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"errors":["Invalid API key"]}`))
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).TopHeadlines(context.Background(), "business", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gnews api error")
}

func TestClampPageSize(t *testing.T) {
	assert.Equal(t, 1, clampPageSize(0))
	assert.Equal(t, 1, clampPageSize(-5))
	assert.Equal(t, 10, clampPageSize(10))
	assert.Equal(t, 100, clampPageSize(250))
}
