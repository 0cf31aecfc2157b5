package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/romangod6/dmv-sitemap/internal/models"
	"github.com/romangod6/dmv-sitemap/internal/pages"
	"github.com/romangod6/dmv-sitemap/internal/sitemap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserAgent = "sitemap-auditor-test"

func pageHTML(t *testing.T, title, description, canonical string, schemas ...pages.Schema) string {
	t.Helper()

	var head strings.Builder
	if title != "" {
		fmt.Fprintf(&head, "<title>%s</title>", title)
	}
	if description != "" {
		fmt.Fprintf(&head, `<meta name="description" content="%s">`, description)
	}
	if canonical != "" {
		fmt.Fprintf(&head, `<link rel="canonical" href="%s">`, canonical)
	}
	if len(schemas) > 0 {
		data, err := pages.MarshalSchemas(schemas)
		require.NoError(t, err)
		fmt.Fprintf(&head, `<script type="application/ld+json">%s</script>`, data)
	}

	return fmt.Sprintf("<html><head>%s</head><body><h1>%s</h1><p>Starlink installation across the region.</p><script>var hidden = 1;</script></body></html>", head.String(), title)
}

// newTestSite serves a sitemap with one good page, one page missing its
// head tags, a location page without LocalBusiness data, and a 404.
func newTestSite(t *testing.T, robots string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	base := server.URL
	entries := []models.SitemapEntry{
		{URL: base + "/", ChangeFreq: models.ChangeFreqDaily, Priority: 1.0},
		{URL: base + "/about", ChangeFreq: models.ChangeFreqMonthly, Priority: 0.7},
		{URL: base + "/locations/fairfax-va", ChangeFreq: models.ChangeFreqWeekly, Priority: 0.9},
		{URL: base + "/gone", ChangeFreq: models.ChangeFreqYearly, Priority: 0.3},
	}

	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, sitemap.WriteXML(w, entries))
	})
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		if robots == "" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, strings.ReplaceAll(robots, "{base}", base))
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><head></head><body>About us</body></html>")
	})
	mux.HandleFunc("/locations/fairfax-va", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, pageHTML(t, "Fairfax", "Installers in Fairfax", base+"/locations/fairfax-va/",
			pages.NewBreadcrumbSchema(pages.Crumb{Name: "Home", URL: base + "/"})))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, pageHTML(t, "Home", "Starlink installers", base+"/"))
	})

	return server
}

func problemsByURL(report *models.AuditReport) map[string][]string {
	out := make(map[string][]string, len(report.Pages))
	for _, p := range report.Pages {
		out[p.URL] = p.Problems
	}
	return out
}

func TestAuditor_Audit(t *testing.T) {
	server := newTestSite(t, "User-agent: *\nDisallow: /api/\n\nSitemap: {base}/sitemap.xml\n")

	auditor := NewAuditor(&AuditorConfig{UserAgent: testUserAgent, Parallelism: 2})
	report, err := auditor.Audit(context.Background(), server.URL+"/sitemap.xml")
	require.NoError(t, err)

	require.Len(t, report.Pages, 4)
	assert.Equal(t, server.URL+"/", report.Pages[0].URL, "pages keep sitemap order")
	assert.Equal(t, 3, report.PagesWithIssues)
	assert.True(t, report.SitemapInRobots)
	assert.True(t, report.LocationsAllowed)
	assert.False(t, report.FinishedAt.Before(report.StartedAt))

	problems := problemsByURL(report)
	assert.Empty(t, problems[server.URL+"/"])
	assert.Equal(t, "Home", report.Pages[0].Title)
	assert.Equal(t, http.StatusOK, report.Pages[0].StatusCode)

	assert.ElementsMatch(t, []string{"missing title", "missing meta description", "missing canonical link"}, problems[server.URL+"/about"])
	assert.Equal(t, []string{"missing LocalBusiness structured data"}, problems[server.URL+"/locations/fairfax-va"],
		"a trailing slash on the canonical is not a mismatch")
	assert.Contains(t, problems[server.URL+"/gone"], "status 404")
}

func TestAuditor_MaxPages(t *testing.T) {
	server := newTestSite(t, "")

	auditor := NewAuditor(&AuditorConfig{UserAgent: testUserAgent, MaxPages: 1})
	report, err := auditor.Audit(context.Background(), server.URL+"/sitemap.xml")
	require.NoError(t, err)

	require.Len(t, report.Pages, 1)
	assert.False(t, report.SitemapInRobots, "no robots.txt advertises nothing")
	assert.True(t, report.LocationsAllowed, "no robots.txt allows everything")
}

func TestAuditor_SitemapUnavailable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := NewAuditor(&AuditorConfig{}).Audit(context.Background(), server.URL+"/sitemap.xml")
	assert.Error(t, err)
}

type fakeRenderer struct {
	pages map[string]string
}

func (f *fakeRenderer) Render(_ context.Context, url string) (string, error) {
	content, ok := f.pages[url]
	if !ok {
		return "", errors.New("navigation failed")
	}
	return content, nil
}

func TestAuditor_WithRenderer(t *testing.T) {
	server := newTestSite(t, "User-agent: *\nDisallow: /locations/\n")
	base := server.URL

	renderer := &fakeRenderer{pages: map[string]string{
		base + "/":                     pageHTML(t, "Home", "Starlink installers", base+"/"),
		base + "/about":                pageHTML(t, "About", "About us", base+"/about"),
		base + "/locations/fairfax-va": pageHTML(t, "Fairfax", "Installers in Fairfax", base+"/locations/fairfax-va", pages.LocalBusinessSchema{Type: "LocalBusiness"}),
	}}

	auditor := NewAuditor(&AuditorConfig{UserAgent: testUserAgent}).WithRenderer(renderer)
	report, err := auditor.Audit(context.Background(), base+"/sitemap.xml")
	require.NoError(t, err)

	problems := problemsByURL(report)
	assert.Empty(t, problems[base+"/about"], "rendered head tags are seen")
	assert.Empty(t, problems[base+"/locations/fairfax-va"])
	assert.Contains(t, problems[base+"/gone"], "navigation failed")
	assert.Equal(t, 1, report.PagesWithIssues)
	assert.False(t, report.LocationsAllowed)
}

func TestExtractPage(t *testing.T) {
	content := `<html><head>
<title> Fairfax Starlink </title>
<meta name="description" content="Installers in Fairfax">
<link rel="canonical" href="https://example.com/locations/fairfax-va">
<script type="application/ld+json">{"@context":"https://schema.org","@graph":[{"@type":"LocalBusiness"},{"@type":["Service","Thing"]}]}</script>
<script type="application/ld+json">[{"@type":"FAQPage"},{"@type":"LocalBusiness"}]</script>
<script type="application/ld+json">not json</script>
</head><body><style>.x{}</style><p>one two three</p><script>four five</script><noscript>six</noscript></body></html>`

	parsed, err := ParseHTMLContent(content)
	require.NoError(t, err)

	assert.Equal(t, "Fairfax Starlink", parsed.Title)
	assert.Equal(t, "Installers in Fairfax", parsed.Description)
	assert.Equal(t, "https://example.com/locations/fairfax-va", parsed.Canonical)
	assert.Equal(t, []string{"LocalBusiness", "Service", "Thing", "FAQPage"}, parsed.SchemaTypes)
	assert.Equal(t, 3, parsed.WordCount)
}

func TestCheckPage(t *testing.T) {
	loc := "https://example.com/locations/reston-va"
	parsed := &ParsedPage{
		Title:       "Reston",
		Description: "Installers",
		Canonical:   "https://example.com/locations/herndon-va",
		SchemaTypes: []string{"LocalBusiness"},
		WordCount:   10,
	}

	audit := CheckPage(loc, http.StatusOK, parsed, 50)
	assert.Equal(t, []string{
		"canonical https://example.com/locations/herndon-va does not match " + loc,
		"thin content: 10 words",
	}, audit.Problems)

	audit = CheckPage(loc, http.StatusInternalServerError, nil, 0)
	assert.Equal(t, []string{"status 500", "no HTML content"}, audit.Problems)
}

func TestCheckRobots_BadURL(t *testing.T) {
	_, err := CheckRobots(context.Background(), nil, "://bad", testUserAgent)
	assert.Error(t, err)
}
