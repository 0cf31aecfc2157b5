package sitemap

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/romangod6/dmv-sitemap/internal/models"
)

// DefaultPingEndpoints are the search-engine ping URLs. %s is replaced by the
// query-escaped sitemap URL.
var DefaultPingEndpoints = []string{
	"https://www.google.com/ping?sitemap=%s",
	"https://www.bing.com/ping?sitemap=%s",
}

// Pinger notifies search engines that a sitemap changed.
type Pinger struct {
	Client        *http.Client
	Endpoints     []string
	MaxConcurrent int
	UserAgent     string
}

func NewPinger(endpoints []string, userAgent string) *Pinger {
	return &Pinger{
		Client:        &http.Client{Timeout: 15 * time.Second},
		Endpoints:     endpoints,
		MaxConcurrent: 2,
		UserAgent:     userAgent,
	}
}

// Ping sends one GET per endpoint and returns results in endpoint order. A
// non-2xx status or transport error marks that result failed.
func (p *Pinger) Ping(ctx context.Context, sitemapURL string) []models.PingResult {
	results := make([]models.PingResult, len(p.Endpoints))

	limit := p.MaxConcurrent
	if limit < 1 {
		limit = 1
	}
	semaphore := make(chan struct{}, limit)
	wg := sync.WaitGroup{}

	for i, endpoint := range p.Endpoints {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(i int, endpoint string) {
			defer wg.Done()
			defer func() { <-semaphore }()
			results[i] = p.pingOne(ctx, endpoint, sitemapURL)
		}(i, endpoint)
	}

	wg.Wait()
	return results
}

func (p *Pinger) pingOne(ctx context.Context, endpoint, sitemapURL string) models.PingResult {
	target := PingURL(endpoint, sitemapURL)
	result := models.PingResult{Endpoint: target}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if p.UserAgent != "" {
		req.Header.Set("User-Agent", p.UserAgent)
	}

	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	result.StatusCode = resp.StatusCode
	result.OK = resp.StatusCode >= 200 && resp.StatusCode < 300
	if !result.OK {
		result.Error = resp.Status
	}
	return result
}

// PingURL expands an endpoint template for sitemapURL. Templates without a
// %s placeholder get a sitemap query parameter appended.
func PingURL(endpoint, sitemapURL string) string {
	escaped := url.QueryEscape(sitemapURL)
	if strings.Contains(endpoint, "%s") {
		return strings.Replace(endpoint, "%s", escaped, 1)
	}
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return endpoint + sep + "sitemap=" + escaped
}
