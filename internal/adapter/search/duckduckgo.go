// Package search provides a DuckDuckGo instant-answer web search adapter.
//
// The adapter is deliberately forgiving: a search that fails entirely yields
// an empty URL list rather than an error, and per-query failures are skipped,
// so the verification pipeline degrades instead of aborting.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	llmhttp "github.com/bkyoung/claim-verifier/internal/adapter/llm/http"
	"github.com/bkyoung/claim-verifier/internal/config"
)

const (
	defaultBaseURL        = "https://api.duckduckgo.com"
	defaultHTMLBaseURL    = "https://html.duckduckgo.com"
	defaultMaxResults     = 8
	defaultSiteQueries    = 3
	relatedTopicsPerQuery = 2

	userAgent = "ClaimVerifier/1.0"
)

type instantAnswer struct {
	AbstractURL   string         `json:"AbstractURL"`
	RelatedTopics []relatedTopic `json:"RelatedTopics"`
}

type relatedTopic struct {
	FirstURL string `json:"FirstURL"`
}

// DuckDuckGo queries the instant-answer API with site-scoped variants of a
// search query and collects candidate evidence URLs.
type DuckDuckGo struct {
	baseURL     string
	htmlBaseURL string
	maxResults  int
	siteQueries int
	client      *http.Client
	logger      llmhttp.Logger
}

// NewDuckDuckGo creates a search adapter from config. Zero values fall back
// to package defaults.
func NewDuckDuckGo(cfg config.SearchConfig) *DuckDuckGo {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = defaultMaxResults
	}
	siteQueries := cfg.SiteQueries
	if siteQueries <= 0 {
		siteQueries = defaultSiteQueries
	}

	return &DuckDuckGo{
		baseURL:     baseURL,
		htmlBaseURL: defaultHTMLBaseURL,
		maxResults:  maxResults,
		siteQueries: siteQueries,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

// SetLogger sets the structured logger for this adapter.
func (d *DuckDuckGo) SetLogger(logger llmhttp.Logger) {
	d.logger = logger
}

// Search runs up to siteQueries site-scoped instant-answer lookups and
// returns deduplicated candidate URLs capped at maxResults. The HTML
// search-page URL is always appended as provenance of the search performed.
func (d *DuckDuckGo) Search(ctx context.Context, query string, sites []string) ([]string, error) {
	queries := make([]string, 0, d.siteQueries)
	if len(sites) == 0 {
		queries = append(queries, query)
	}
	for _, site := range sites {
		if len(queries) == d.siteQueries {
			break
		}
		queries = append(queries, fmt.Sprintf("%s site:%s", query, site))
	}

	var urls []string
	for _, q := range queries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		found, err := d.searchOne(ctx, q)
		if err != nil {
			if d.logger != nil {
				d.logger.LogError(ctx, llmhttp.ErrorLog{
					Provider:  "duckduckgo",
					Timestamp: time.Now(),
					Error:     err,
				})
			}
			continue
		}
		urls = append(urls, found...)
	}

	// The HTML results page records that the search happened even when the
	// instant-answer API returned nothing usable.
	urls = append(urls, fmt.Sprintf("%s/html/?q=%s", d.htmlBaseURL, url.QueryEscape(query)))

	return dedupe(urls, d.maxResults), nil
}

func (d *DuckDuckGo) searchOne(ctx context.Context, query string) ([]string, error) {
	searchURL := fmt.Sprintf("%s/?q=%s&format=json&no_html=1", d.baseURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, "GET", searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var answer instantAnswer
	if err := json.Unmarshal(body, &answer); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	var urls []string
	if answer.AbstractURL != "" {
		urls = append(urls, answer.AbstractURL)
	}
	for i, topic := range answer.RelatedTopics {
		if i == relatedTopicsPerQuery {
			break
		}
		if topic.FirstURL != "" {
			urls = append(urls, topic.FirstURL)
		}
	}
	return urls, nil
}

func dedupe(urls []string, limit int) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
		if len(out) == limit {
			break
		}
	}
	return out
}
