// internal/models/sitemap.go
package models

import (
	"encoding/xml"
	"time"
)

// SitemapNamespace is the sitemaps.org 0.9 schema namespace.
const SitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ChangeFreq is the sitemap-protocol hint of how often a page changes.
type ChangeFreq string

const (
	ChangeFreqAlways  ChangeFreq = "always"
	ChangeFreqHourly  ChangeFreq = "hourly"
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
	ChangeFreqYearly  ChangeFreq = "yearly"
	ChangeFreqNever   ChangeFreq = "never"
)

// Valid reports whether c is one of the protocol values.
func (c ChangeFreq) Valid() bool {
	switch c {
	case ChangeFreqAlways, ChangeFreqHourly, ChangeFreqDaily, ChangeFreqWeekly,
		ChangeFreqMonthly, ChangeFreqYearly, ChangeFreqNever:
		return true
	}
	return false
}

// SitemapEntry is one URL of a generated sitemap.
type SitemapEntry struct {
	URL        string     `json:"url"`
	LastMod    time.Time  `json:"lastmod"`
	ChangeFreq ChangeFreq `json:"changefreq"`
	Priority   float64    `json:"priority"`
}

// PageDescriptor describes a fixed page of the site that is always listed.
type PageDescriptor struct {
	Path       string     `json:"path" mapstructure:"path"`
	ChangeFreq ChangeFreq `json:"changefreq" mapstructure:"changefreq"`
	Priority   float64    `json:"priority" mapstructure:"priority"`
}

// SitemapStats aggregates counts over a list of entries.
type SitemapStats struct {
	TotalURLs       int     `json:"totalUrls"`
	UniqueURLs      int     `json:"uniqueUrls"`
	LocationPages   int     `json:"locationPages"`
	AveragePriority float64 `json:"averagePriority"`
}

// ValidationResult is the report produced for a list of entries.
type ValidationResult struct {
	IsValid    bool         `json:"isValid"`
	Duplicates []string     `json:"duplicates"`
	Issues     []string     `json:"issues"`
	Stats      SitemapStats `json:"stats"`
}

// Sitemap represents the structure of an XML sitemap.
type Sitemap struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr,omitempty"`
	URLs    []URL    `xml:"url"`
}

// URL represents a single URL entry in the sitemap.
type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}
