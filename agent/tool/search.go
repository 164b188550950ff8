package tool

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	ratelimitx "github.com/jobscout-ai/jobscout/pkg/ratelimit"
)

const maxSearchResponseBytes = 2 << 20

type SearchConfig struct {
	ExaURL      string        `envconfig:"EXA_URL" split_words:"true" default:"https://api.exa.ai/search"`
	ExaAPIKey   string        `envconfig:"EXA_API_KEY" split_words:"true"`
	ExaResults  int           `envconfig:"EXA_RESULTS" split_words:"true" default:"3"`
	GoogleURL   string        `envconfig:"GOOGLE_URL" split_words:"true" default:"https://www.googleapis.com/customsearch/v1"`
	GoogleKey   string        `envconfig:"GOOGLE_KEY" split_words:"true"`
	GoogleCSEID string        `envconfig:"GOOGLE_CSE_ID" split_words:"true"`
	Timeout     time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"20s"`
}

type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// SearchClient wraps the two web-search backends. Every outbound call first
// takes a slot from the shared limiter, since both backends count against
// the same external quota.
type SearchClient struct {
	cfg        SearchConfig
	limiter    *ratelimitx.Limiter
	httpClient *http.Client
}

func NewSearchClient(cfg SearchConfig, limiter *ratelimitx.Limiter) (*SearchClient, error) {
	if limiter == nil {
		return nil, errors.New("search: rate limiter is required")
	}
	if strings.TrimSpace(cfg.ExaAPIKey) == "" && strings.TrimSpace(cfg.GoogleKey) == "" {
		return nil, errors.New("search: at least one backend key is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	if cfg.ExaResults <= 0 {
		cfg.ExaResults = 3
	}

	return &SearchClient{
		cfg:     cfg,
		limiter: limiter,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

type exaRequest struct {
	Query      string `json:"query"`
	NumResults int    `json:"numResults"`
	Highlights bool   `json:"highlights"`
}

type exaResponse struct {
	Results []struct {
		Title      string   `json:"title"`
		URL        string   `json:"url"`
		Highlights []string `json:"highlights"`
	} `json:"results"`
}

func (c *SearchClient) Search(ctx context.Context, query string) ([]SearchResult, error) {
	if strings.TrimSpace(c.cfg.ExaAPIKey) == "" {
		return nil, errors.New("search: exa backend is not configured")
	}
	if err := c.limiter.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("search: acquire slot: %w", err)
	}

	body, err := json.Marshal(exaRequest{
		Query:      query,
		NumResults: c.cfg.ExaResults,
		Highlights: true,
	})
	if err != nil {
		return nil, fmt.Errorf("search: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ExaURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("search: build request: %w", err)
	}
	req.Header.Set("x-api-key", strings.TrimSpace(c.cfg.ExaAPIKey))
	req.Header.Set("Content-Type", "application/json")

	raw, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var parsed exaResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("search: decode response: %w", err)
	}

	results := make([]SearchResult, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		results = append(results, SearchResult{
			Title:   r.Title,
			Link:    r.URL,
			Snippet: strings.Join(r.Highlights, " "),
		})
	}
	return results, nil
}

type googleResponse struct {
	Items []struct {
		Title   string `json:"title"`
		Link    string `json:"link"`
		Snippet string `json:"snippet"`
	} `json:"items"`
}

// GoogleSearch runs a boolean query against the Custom Search API and
// returns up to 10 results.
func (c *SearchClient) GoogleSearch(ctx context.Context, query string) ([]SearchResult, error) {
	if strings.TrimSpace(c.cfg.GoogleKey) == "" || strings.TrimSpace(c.cfg.GoogleCSEID) == "" {
		return nil, errors.New("search: google backend is not configured")
	}
	if err := c.limiter.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("search: acquire slot: %w", err)
	}

	params := url.Values{}
	params.Set("key", strings.TrimSpace(c.cfg.GoogleKey))
	params.Set("cx", strings.TrimSpace(c.cfg.GoogleCSEID))
	params.Set("q", query)
	params.Set("num", strconv.Itoa(10))
	params.Set("safe", "off")
	params.Set("lr", "lang_en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.GoogleURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("search: build request: %w", err)
	}

	raw, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var parsed googleResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("search: decode response: %w", err)
	}

	results := make([]SearchResult, 0, len(parsed.Items))
	for _, item := range parsed.Items {
		results = append(results, SearchResult{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}
	return results, nil
}

func (c *SearchClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search: execute request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxSearchResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("search: read response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("search: http status=%d body=%s", resp.StatusCode, string(raw))
	}
	return raw, nil
}
