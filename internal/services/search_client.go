package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ecoba/alumni-backend/internal/logger"
)

// SearchResult is one raw hit from the search provider.
type SearchResult struct {
	URL     string
	Title   string
	Snippet string
}

type SearchClient interface {
	Configured() bool
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}

// searchClient talks to a Firecrawl-style /v1/search endpoint.
type searchClient struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewSearchClient(log *logger.Logger) SearchClient {
	apiKey := os.Getenv("FIRECRAWL_API_KEY")

	baseURL := os.Getenv("SEARCH_BASE_URL")
	if baseURL == "" {
		baseURL = "https://api.firecrawl.dev"
	}

	timeoutSec := 30
	if v := os.Getenv("SEARCH_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	return &searchClient{
		log:        log.With("service", "SearchClient"),
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}
}

func (c *searchClient) Configured() bool {
	return c.apiKey != ""
}

type searchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

type searchResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    []struct {
		URL         string `json:"url"`
		Title       string `json:"title"`
		Description string `json:"description"`
	} `json:"data"`
}

func (c *searchClient) Search(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("missing FIRECRAWL_API_KEY")
	}
	if limit <= 0 {
		limit = 10
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(searchRequest{Query: query, Limit: limit}); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/search", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read search response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search provider http %d: %s", resp.StatusCode, string(raw))
	}

	var parsed searchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	if parsed.Error != "" {
		return nil, fmt.Errorf("search provider error: %s", parsed.Error)
	}

	results := make([]SearchResult, 0, len(parsed.Data))
	for _, d := range parsed.Data {
		if strings.TrimSpace(d.URL) == "" {
			continue
		}
		results = append(results, SearchResult{
			URL:     d.URL,
			Title:   d.Title,
			Snippet: d.Description,
		})
	}
	return results, nil
}
