package sitemap

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/romangod6/dmv-sitemap/internal/models"
	"github.com/samber/lo"
)

// defaultPriority is the protocol's implied priority when none is given.
const defaultPriority = 0.5

// Parse decodes a sitemap document.
func Parse(r io.Reader) (*models.Sitemap, error) {
	var sitemap models.Sitemap
	if err := xml.NewDecoder(r).Decode(&sitemap); err != nil {
		return nil, fmt.Errorf("failed to parse sitemap: %w", err)
	}
	return &sitemap, nil
}

// ParseURLs takes a sitemap string and extracts all non-empty <loc> values.
func ParseURLs(data string) ([]string, error) {
	sitemap, err := Parse(strings.NewReader(data))
	if err != nil {
		return nil, err
	}

	return lo.Reduce(sitemap.URLs, func(acc []string, u models.URL, _ int) []string {
		if loc := strings.TrimSpace(u.Loc); loc != "" {
			return append(acc, loc)
		}
		return acc
	}, []string{}), nil
}

// Fetch downloads and parses a sitemap over HTTP.
func Fetch(ctx context.Context, client *http.Client, url string) (*models.Sitemap, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status fetching %s: %d", url, resp.StatusCode)
	}

	return Parse(resp.Body)
}

// ToEntries converts a parsed document back to entries so it can be
// validated. Unparsable lastmod values become zero times and unparsable
// priorities become -1, both of which Validate reports.
func ToEntries(sitemap *models.Sitemap) []models.SitemapEntry {
	return lo.Map(sitemap.URLs, func(u models.URL, _ int) models.SitemapEntry {
		entry := models.SitemapEntry{
			URL:        strings.TrimSpace(u.Loc),
			LastMod:    parseLastMod(strings.TrimSpace(u.LastMod)),
			ChangeFreq: models.ChangeFreq(strings.TrimSpace(u.ChangeFreq)),
			Priority:   defaultPriority,
		}
		if entry.ChangeFreq == "" {
			entry.ChangeFreq = models.ChangeFreqWeekly
		}
		if p := strings.TrimSpace(u.Priority); p != "" {
			v, err := strconv.ParseFloat(p, 64)
			if err != nil {
				v = -1
			}
			entry.Priority = v
		}
		return entry
	})
}

func parseLastMod(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04Z07:00", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
