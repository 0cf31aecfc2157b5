package crawler

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/samber/lo"
	"github.com/temoto/robotstxt"
)

// RobotsCheck reports how the live robots.txt treats the sitemap.
type RobotsCheck struct {
	SitemapListed    bool
	LocationsAllowed bool
}

// CheckRobots fetches robots.txt from the root of sitemapURL's host and
// reports whether it advertises sitemapURL and lets userAgent crawl the
// location pages. A missing robots.txt allows everything.
func CheckRobots(ctx context.Context, client *http.Client, sitemapURL, userAgent string) (*RobotsCheck, error) {
	parsed, err := url.Parse(sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("invalid sitemap url: %w", err)
	}
	robotsURL := (&url.URL{Scheme: parsed.Scheme, Host: parsed.Host, Path: "/robots.txt"}).String()

	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, err
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch robots.txt: %w", err)
	}
	defer resp.Body.Close()

	robots, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to parse robots.txt: %w", err)
	}

	return &RobotsCheck{
		SitemapListed:    lo.Contains(robots.Sitemaps, sitemapURL),
		LocationsAllowed: robots.TestAgent("/locations/", userAgent),
	}, nil
}
