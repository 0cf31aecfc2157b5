// Package sitemap builds, validates, serializes and parses sitemaps.org 0.9
// documents for the marketing site. Everything except Fetch and Pinger is a
// pure function over its inputs.
package sitemap

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/romangod6/dmv-sitemap/internal/models"
)

// ErrDuplicateURL is returned by a strict Builder when two location records
// derive the same page URL.
var ErrDuplicateURL = errors.New("duplicate sitemap url")

const (
	LocationChangeFreq = models.ChangeFreqWeekly
	LocationPriority   = 0.9
)

// DefaultCorePages are listed before the location pages.
func DefaultCorePages() []models.PageDescriptor {
	return []models.PageDescriptor{
		{Path: "/", ChangeFreq: models.ChangeFreqDaily, Priority: 1.0},
		{Path: "/starlink-installation", ChangeFreq: models.ChangeFreqWeekly, Priority: 0.9},
		{Path: "/about", ChangeFreq: models.ChangeFreqMonthly, Priority: 0.7},
		{Path: "/contact", ChangeFreq: models.ChangeFreqMonthly, Priority: 0.8},
	}
}

// DefaultLegalPages are listed after the location pages.
func DefaultLegalPages() []models.PageDescriptor {
	return []models.PageDescriptor{
		{Path: "/privacy-policy", ChangeFreq: models.ChangeFreqYearly, Priority: 0.3},
		{Path: "/terms-of-service", ChangeFreq: models.ChangeFreqYearly, Priority: 0.3},
	}
}

// AbsoluteURL joins a site base URL and a site-relative path.
func AbsoluteURL(baseURL, path string) string {
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(path, "/")
}

// BuildEntries returns core pages, then one entry per record, then legal
// pages. Every entry carries now as its lastmod. Duplicate records produce
// duplicate entries; reporting them is Validate's job.
func BuildEntries(baseURL string, core, legal []models.PageDescriptor, records []models.LocationRecord, now time.Time) []models.SitemapEntry {
	entries := make([]models.SitemapEntry, 0, len(core)+len(records)+len(legal))

	for _, page := range core {
		entries = append(entries, pageEntry(baseURL, page, now))
	}

	for _, rec := range records {
		entries = append(entries, models.SitemapEntry{
			URL:        AbsoluteURL(baseURL, rec.Path()),
			LastMod:    now,
			ChangeFreq: LocationChangeFreq,
			Priority:   LocationPriority,
		})
	}

	for _, page := range legal {
		entries = append(entries, pageEntry(baseURL, page, now))
	}

	return entries
}

func pageEntry(baseURL string, page models.PageDescriptor, now time.Time) models.SitemapEntry {
	return models.SitemapEntry{
		URL:        AbsoluteURL(baseURL, page.Path),
		LastMod:    now,
		ChangeFreq: page.ChangeFreq,
		Priority:   page.Priority,
	}
}

// Builder carries the site-level inputs of a generation pass.
type Builder struct {
	BaseURL    string
	CorePages  []models.PageDescriptor
	LegalPages []models.PageDescriptor

	// Strict makes Build fail on records that derive the same URL.
	Strict bool

	// Clock defaults to time.Now.
	Clock func() time.Time
}

// NewBuilder returns a non-strict builder with the default page sets.
func NewBuilder(baseURL string) *Builder {
	return &Builder{
		BaseURL:    baseURL,
		CorePages:  DefaultCorePages(),
		LegalPages: DefaultLegalPages(),
	}
}

// Build produces the entries for records.
func (b *Builder) Build(records []models.LocationRecord) ([]models.SitemapEntry, error) {
	if b.Strict {
		seen := make(map[string]int, len(records))
		for i, rec := range records {
			path := rec.Path()
			if prev, dup := seen[path]; dup {
				return nil, fmt.Errorf("%w: %s (records %d and %d)", ErrDuplicateURL, path, prev, i)
			}
			seen[path] = i
		}
	}

	clock := b.Clock
	if clock == nil {
		clock = time.Now
	}

	return BuildEntries(b.BaseURL, b.CorePages, b.LegalPages, records, clock().UTC()), nil
}
