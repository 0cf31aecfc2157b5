package pages

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/romangod6/dmv-sitemap/internal/models"
	"github.com/romangod6/dmv-sitemap/internal/registry"
	"github.com/romangod6/dmv-sitemap/internal/sitemap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSite = SiteInfo{
	Name:    "DMV Starlink Installers",
	BaseURL: "https://dmvstarlink.example.com",
	Phone:   "(703) 555-0100",
	Email:   "hello@dmvstarlink.example.com",
}

func TestBuildLocationPage(t *testing.T) {
	t.Parallel()
	reg, err := registry.Default()
	require.NoError(t, err)

	page, err := BuildLocationPage(testSite, reg, "fairfax-va")
	require.NoError(t, err)

	assert.Equal(t, "/locations/fairfax-va", page.Path)
	assert.Equal(t, "https://dmvstarlink.example.com/locations/fairfax-va", page.CanonicalURL)
	assert.Equal(t, "Starlink Installation in Fairfax, VA | DMV Starlink Installers", page.Title)
	assert.Equal(t, "Professional Starlink Installation in Fairfax, VA", page.H1)
	assert.LessOrEqual(t, utf8.RuneCountInString(page.MetaDescription), maxDescriptionLen)
	assert.Contains(t, page.MetaDescription, "Fairfax, VA")

	assert.Contains(t, page.Keywords, "starlink installation fairfax")
	assert.Contains(t, page.Keywords, "starlink installation fairfax va")
	assert.Len(t, page.Nearby, nearbyCount)
	assert.Len(t, page.FAQs, len(DefaultFAQTemplates))

	types := make([]string, 0, len(page.Schemas))
	for _, s := range page.Schemas {
		types = append(types, s.SchemaType())
	}
	assert.Equal(t, []string{"LocalBusiness", "Service", "FAQPage", "BreadcrumbList"}, types)
}

func TestBuildLocationPage_UnknownSlug(t *testing.T) {
	t.Parallel()
	reg, err := registry.Default()
	require.NoError(t, err)

	_, err = BuildLocationPage(testSite, reg, "gotham-nj")
	assert.ErrorIs(t, err, registry.ErrLocationNotFound)
}

func TestMarshalSchemas_JSONLD(t *testing.T) {
	t.Parallel()
	reg, err := registry.Default()
	require.NoError(t, err)

	page, err := BuildLocationPage(testSite, reg, "washington-dc")
	require.NoError(t, err)

	data, err := MarshalSchemas(page.Schemas)
	require.NoError(t, err)

	var blocks []map[string]any
	require.NoError(t, json.Unmarshal(data, &blocks))
	require.Len(t, blocks, 4)

	for _, b := range blocks {
		assert.Equal(t, "https://schema.org", b["@context"])
	}
	assert.Equal(t, "LocalBusiness", blocks[0]["@type"])
	assert.Equal(t, "https://dmvstarlink.example.com/#business", blocks[0]["@id"])

	faq := blocks[2]
	entities, ok := faq["mainEntity"].([]any)
	require.True(t, ok)
	first := entities[0].(map[string]any)
	assert.Equal(t, "Question", first["@type"])
	assert.Equal(t, "Do you install Starlink in Washington, DC?", first["name"])

	crumbs := blocks[3]["itemListElement"].([]any)
	require.Len(t, crumbs, 3)
	assert.Equal(t, float64(3), crumbs[2].(map[string]any)["position"])
}

func TestBuildLocationPage_BreadcrumbsLinkSitemapPages(t *testing.T) {
	t.Parallel()
	reg, err := registry.Default()
	require.NoError(t, err)

	page, err := BuildLocationPage(testSite, reg, "reston-va")
	require.NoError(t, err)

	entries := sitemap.BuildEntries(testSite.BaseURL, sitemap.DefaultCorePages(), sitemap.DefaultLegalPages(), reg.Records(), time.Now())
	listed := make(map[string]bool, len(entries))
	for _, e := range entries {
		listed[e.URL] = true
	}

	breadcrumb, ok := page.Schemas[3].(BreadcrumbSchema)
	require.True(t, ok)
	require.Len(t, breadcrumb.ItemListElement, 3)
	for _, item := range breadcrumb.ItemListElement {
		assert.True(t, listed[item.Item], "%s is not in the sitemap", item.Item)
	}
}

func TestRenderFAQs(t *testing.T) {
	t.Parallel()
	rec := models.LocationRecord{
		City:          "Reston",
		State:         "VA",
		ZipCodes:      []string{"20190", "20191"},
		ServiceRadius: 20,
		NearbyAreas:   []string{"Herndon", "Great Falls", "Sterling"},
	}

	faqs := RenderFAQs(DefaultFAQTemplates, rec)
	assert.Equal(t, "Do you install Starlink in Reston, VA?", faqs[0].Question)
	assert.Contains(t, faqs[0].Answer, "within 20 miles")
	assert.Contains(t, faqs[0].Answer, "including zip codes 20190, 20191.")
	assert.Equal(t, "Besides Reston we regularly work in Herndon, Great Falls and Sterling.", faqs[2].Answer)

	for _, f := range faqs {
		assert.NotContains(t, f.Question+f.Answer, "{")
	}
}

func TestRenderFAQs_NoNearbyOrZips(t *testing.T) {
	t.Parallel()
	faqs := RenderFAQs(DefaultFAQTemplates, models.LocationRecord{City: "Leesburg", State: "VA"})
	assert.Equal(t, "Yes. We install Starlink throughout Leesburg and within 0 miles, across the surrounding area.", faqs[0].Answer)
	assert.NotContains(t, faqs[0].Answer, "zip codes")
	assert.Contains(t, faqs[2].Answer, "the surrounding communities")
}

func TestTruncate(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "short", truncate("short", 10))

	long := strings.Repeat("word ", 50)
	out := truncate(long, 40)
	assert.LessOrEqual(t, utf8.RuneCountInString(out), 40)
	assert.True(t, strings.HasSuffix(out, "…"))
}

func TestJoinHuman(t *testing.T) {
	assert.Equal(t, "", joinHuman(nil))
	assert.Equal(t, "a", joinHuman([]string{"a"}))
	assert.Equal(t, "a and b", joinHuman([]string{"a", "b"}))
	assert.Equal(t, "a, b and c", joinHuman([]string{"a", "b", "c"}))
}
