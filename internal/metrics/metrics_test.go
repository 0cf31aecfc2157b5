package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/romangod6/dmv-sitemap/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveGeneration(t *testing.T) {
	m := New()

	gen := &models.Generation{
		GeneratedAt: time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC),
		EntryCount:  20,
		Validation: models.ValidationResult{
			IsValid:    false,
			Duplicates: []string{"https://example.com/locations/fairfax-va"},
			Issues:     []string{"Missing lastmod for https://example.com/", "Missing lastmod for https://example.com/about"},
		},
		Pings: []models.PingResult{
			{Endpoint: "https://search.example/ping?sitemap=%s", OK: false},
			{Endpoint: "https://other.example/ping?sitemap=%s", OK: true},
		},
	}
	m.ObserveGeneration(gen)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("invalid")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.GenerationsTotal.WithLabelValues("valid")))
	assert.Equal(t, 20.0, testutil.ToFloat64(m.SitemapEntries))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.ValidationIssues))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ValidationDuplicates))
	assert.Equal(t, float64(gen.GeneratedAt.Unix()), testutil.ToFloat64(m.LastGenerationSeconds))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PingFailuresTotal.WithLabelValues("https://search.example/ping?sitemap=%s")))
}

func TestHandler_ServesIsolatedRegistry(t *testing.T) {
	m := New()
	m.ObserveAudit(&models.AuditReport{PagesWithIssues: 3})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "sitemap_audit_pages_with_issues 3")
	assert.Contains(t, string(body), "go_goroutines")
}
