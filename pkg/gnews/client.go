// Package gnews is a client for the GNews v4 API, the primary article
// source. The free tier is quirky: the search endpoint sometimes
// returns nothing or rejects the request outright, so Search falls back
// to business top-headlines rather than failing the run.
package gnews

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater/v2"

	"github.com/intelscope/intelscope/pkg/domain"
)

const defaultBaseURL = "https://gnews.io/api/v4"

// Client calls the GNews API
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient creates a GNews client with the given API key
func NewClient(apiKey string, timeout time.Duration) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

type apiResponse struct {
	TotalArticles int          `json:"totalArticles"`
	Articles      []apiArticle `json:"articles"`
	Errors        any          `json:"errors,omitempty"`
}

type apiArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		Name string `json:"name"`
	} `json:"source"`
}

// Search queries the search endpoint. On an empty result or a failed
// request it falls back to business top-headlines so a flaky search
// tier still yields candidates.
func (c *Client) Search(ctx context.Context, query string, pageSize int) ([]domain.ArticleCandidate, error) {
	params := url.Values{}
	params.Set("q", query)

	articles, err := c.get(ctx, "/search", params, pageSize)
	if err != nil {
		lgr.Printf("[WARN] gnews search %q failed, falling back to top-headlines: %v", query, err)
		return c.TopHeadlines(ctx, "business", pageSize)
	}
	if len(articles) == 0 {
		lgr.Printf("[DEBUG] gnews search %q returned no results, trying top-headlines", query)
		return c.TopHeadlines(ctx, "business", pageSize)
	}
	return articles, nil
}

// TopHeadlines queries the top-headlines endpoint for the given
// category
func (c *Client) TopHeadlines(ctx context.Context, category string, pageSize int) ([]domain.ArticleCandidate, error) {
	params := url.Values{}
	params.Set("category", category)
	return c.get(ctx, "/top-headlines", params, pageSize)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, pageSize int) ([]domain.ArticleCandidate, error) {
	params.Set("lang", "en")
	params.Set("country", "au")
	params.Set("max", strconv.Itoa(clampPageSize(pageSize)))
	params.Set("apikey", c.apiKey)
	reqURL := c.baseURL + path + "?" + params.Encode()

	var result apiResponse
	worker := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		resp, err := c.client.Do(req)
		if err != nil {
			return fmt.Errorf("call gnews: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}

	retrier := repeater.NewBackoff(5, 50*time.Millisecond, repeater.WithMaxDelay(2*time.Second))
	if err := retrier.Do(ctx, worker); err != nil {
		return nil, err
	}

	if result.Errors != nil {
		return nil, fmt.Errorf("gnews api error: %v", result.Errors)
	}

	candidates := make([]domain.ArticleCandidate, 0, len(result.Articles))
	for _, a := range result.Articles {
		published, _ := time.Parse(time.RFC3339, a.PublishedAt)
		candidates = append(candidates, domain.ArticleCandidate{
			Title:       a.Title,
			Description: a.Description,
			URL:         a.URL,
			Source:      a.Source.Name,
			PublishedAt: published,
			SourceType:  domain.SourceAPI,
		})
	}
	return candidates, nil
}

func clampPageSize(n int) int {
	if n < 1 {
		return 1
	}
	if n > 100 {
		return 100
	}
	return n
}
