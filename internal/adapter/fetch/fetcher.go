// Package fetch retrieves web pages for evidence gathering and reduces them
// to plain text.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	llmhttp "github.com/bkyoung/claim-verifier/internal/adapter/llm/http"
	"github.com/bkyoung/claim-verifier/internal/config"
	"golang.org/x/time/rate"
)

const (
	defaultBatchSize       = 5
	defaultTimeout         = 10 * time.Second
	defaultMaxContentChars = 5000
	defaultRequestsPerSec  = 5.0

	userAgent = "Mozilla/5.0 (compatible; ClaimVerifier/1.0)"
)

// Search result pages are never fetched as evidence.
var skippedDomains = []string{"duckduckgo.com", "google.com", "bing.com"}

var whitespaceRe = regexp.MustCompile(`\s+`)

// Fetcher downloads pages in bounded concurrent batches. Each batch completes
// before the next one starts, and a shared rate limiter bounds the outbound
// request rate across batches.
type Fetcher struct {
	client    *http.Client
	batchSize int
	timeout   time.Duration
	maxChars  int
	limiter   *rate.Limiter
	logger    llmhttp.Logger
}

// New creates a fetcher from config. Zero values fall back to package
// defaults.
func New(cfg config.FetchConfig) *Fetcher {
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	timeout := defaultTimeout
	if cfg.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Timeout); err == nil && d > 0 {
			timeout = d
		}
	}
	maxChars := cfg.MaxContentChars
	if maxChars <= 0 {
		maxChars = defaultMaxContentChars
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = defaultRequestsPerSec
	}

	return &Fetcher{
		client:    &http.Client{Timeout: timeout},
		batchSize: batchSize,
		timeout:   timeout,
		maxChars:  maxChars,
		limiter:   rate.NewLimiter(rate.Limit(rps), batchSize),
	}
}

// SetLogger sets the structured logger for this fetcher.
func (f *Fetcher) SetLogger(logger llmhttp.Logger) {
	f.logger = logger
}

// FetchAll retrieves every URL and returns extracted text keyed by URL.
// Failed or skipped URLs are simply absent from the result.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) map[string]string {
	results := make(map[string]string, len(urls))
	var mu sync.Mutex

	for i := 0; i < len(urls); i += f.batchSize {
		end := i + f.batchSize
		if end > len(urls) {
			end = len(urls)
		}
		batch := urls[i:end]

		var wg sync.WaitGroup
		for _, u := range batch {
			wg.Add(1)
			go func(u string) {
				defer wg.Done()
				text, err := f.fetchOne(ctx, u)
				if err != nil {
					if f.logger != nil {
						f.logger.LogError(ctx, llmhttp.ErrorLog{
							Provider:  "fetch",
							Timestamp: time.Now(),
							Error:     err,
						})
					}
					return
				}
				if text == "" {
					return
				}
				mu.Lock()
				results[u] = text
				mu.Unlock()
			}(u)
		}
		wg.Wait()

		if ctx.Err() != nil {
			break
		}
	}
	return results
}

func (f *Fetcher) fetchOne(ctx context.Context, pageURL string) (string, error) {
	if isSearchEngine(pageURL) {
		return "", nil
	}

	if err := f.limiter.Wait(ctx); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for %s: %w", pageURL, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: HTTP %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2<<20))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", pageURL, err)
	}

	return f.extractText(string(body)), nil
}

// extractText reduces an HTML page to "title\n\nbody" plain text, preferring
// article-like containers over the whole page.
func (f *Fetcher) extractText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	title := collapse(doc.Find("title").First().Text())

	doc.Find("script, style, noscript").Remove()

	var body string
	for _, selector := range []string{"article", `div[class*="article"]`, `div[class*="content"]`} {
		if sel := doc.Find(selector); sel.Length() > 0 {
			var parts []string
			sel.Each(func(_ int, s *goquery.Selection) {
				parts = append(parts, s.Text())
			})
			body = collapse(strings.Join(parts, " "))
			break
		}
	}
	if body == "" {
		body = collapse(doc.Find("body").Text())
	}

	if len(body) > f.maxChars {
		body = body[:f.maxChars]
	}
	if title == "" {
		return body
	}
	return title + "\n\n" + body
}

func isSearchEngine(pageURL string) bool {
	u, err := url.Parse(pageURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, domain := range skippedDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

func collapse(s string) string {
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
