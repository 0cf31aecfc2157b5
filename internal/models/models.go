package models

import (
	"time"

	"github.com/google/uuid"
)

// PingResult records one search-engine notification attempt.
type PingResult struct {
	Endpoint   string `json:"endpoint"`
	StatusCode int    `json:"statusCode"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
}

// Generation is one persisted run of the sitemap pipeline.
type Generation struct {
	ID          uuid.UUID        `json:"id"`
	GeneratedAt time.Time        `json:"generatedAt"`
	EntryCount  int              `json:"entryCount"`
	Validation  ValidationResult `json:"validation"`
	XML         string           `json:"-"`
	Pings       []PingResult     `json:"pings,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
}

// NewGeneration creates a new generation with generated UUID and timestamps
func NewGeneration(generatedAt time.Time) *Generation {
	return &Generation{
		ID:          uuid.New(),
		GeneratedAt: generatedAt,
		CreatedAt:   time.Now(),
	}
}

// PageAudit is the audit result of one published page.
type PageAudit struct {
	URL         string   `json:"url"`
	StatusCode  int      `json:"statusCode"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Canonical   string   `json:"canonical"`
	SchemaTypes []string `json:"schemaTypes,omitempty"`
	Problems    []string `json:"problems,omitempty"`
}

// AuditReport summarises an audit of the published site.
type AuditReport struct {
	SitemapURL       string       `json:"sitemapUrl"`
	StartedAt        time.Time    `json:"startedAt"`
	FinishedAt       time.Time    `json:"finishedAt"`
	Pages            []*PageAudit `json:"pages"`
	PagesWithIssues  int          `json:"pagesWithIssues"`
	SitemapInRobots  bool         `json:"sitemapInRobots"`
	LocationsAllowed bool         `json:"locationsAllowed"`
}
