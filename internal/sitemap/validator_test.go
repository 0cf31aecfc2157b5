package sitemap

import (
	"math"
	"testing"
	"time"

	"github.com/romangod6/dmv-sitemap/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(url string, priority float64) models.SitemapEntry {
	return models.SitemapEntry{
		URL:        url,
		LastMod:    fixedNow,
		ChangeFreq: models.ChangeFreqWeekly,
		Priority:   priority,
	}
}

func TestValidate_Clean(t *testing.T) {
	t.Parallel()
	result := Validate([]models.SitemapEntry{
		entry("https://example.com/", 1.0),
		entry("https://example.com/locations/fairfax-va", 0.9),
		entry("https://example.com/privacy-policy", 0.3),
	})

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Duplicates)
	assert.Empty(t, result.Issues)
	assert.Equal(t, models.SitemapStats{
		TotalURLs:       3,
		UniqueURLs:      3,
		LocationPages:   1,
		AveragePriority: 0.73,
	}, result.Stats)
}

func TestValidate_InvalidPriority(t *testing.T) {
	t.Parallel()
	result := Validate([]models.SitemapEntry{
		entry("https://example.com/", 1.0),
		entry("https://example.com/bad", 1.5),
		entry("https://example.com/negative", -0.1),
	})

	assert.False(t, result.IsValid)
	assert.Empty(t, result.Duplicates)
	require.Len(t, result.Issues, 2)
	assert.Contains(t, result.Issues[0], "Invalid priority 1.5")
	assert.Contains(t, result.Issues[0], "https://example.com/bad")
	assert.Contains(t, result.Issues[1], "Invalid priority -0.1")
}

func TestValidate_NaNPriorityDoesNotPoisonAverage(t *testing.T) {
	t.Parallel()
	result := Validate([]models.SitemapEntry{
		entry("https://example.com/a", math.NaN()),
		entry("https://example.com/b", 0.5),
	})

	assert.False(t, result.IsValid)
	assert.Len(t, result.Issues, 1)
	assert.Equal(t, 0.5, result.Stats.AveragePriority)
}

func TestValidate_MissingLastmod(t *testing.T) {
	t.Parallel()
	missing := entry("https://example.com/about", 0.7)
	missing.LastMod = time.Time{}

	result := Validate([]models.SitemapEntry{entry("https://example.com/contact", 0.8), missing})
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{"Missing lastmod for https://example.com/about"}, result.Issues)
}

func TestValidate_InvalidChangeFreqAndMissingURL(t *testing.T) {
	t.Parallel()
	bad := entry("https://example.com/", 1.0)
	bad.ChangeFreq = "fortnightly"
	empty := entry("", 0.5)

	result := Validate([]models.SitemapEntry{bad, empty})
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{
		`Invalid changefreq "fortnightly" for https://example.com/`,
		"Missing url for entry #2",
	}, result.Issues)
}

func TestValidate_DuplicatesInFirstAppearanceOrder(t *testing.T) {
	t.Parallel()
	result := Validate([]models.SitemapEntry{
		entry("https://example.com/b", 0.5),
		entry("https://example.com/a", 0.5),
		entry("https://example.com/a", 0.5),
		entry("https://example.com/b", 0.5),
		entry("https://example.com/b", 0.5),
	})

	assert.False(t, result.IsValid)
	assert.Equal(t, []string{"https://example.com/b", "https://example.com/a"}, result.Duplicates)
	assert.Empty(t, result.Issues)
	assert.Equal(t, 5, result.Stats.TotalURLs)
	assert.Equal(t, 2, result.Stats.UniqueURLs)
}

func TestValidate_Empty(t *testing.T) {
	t.Parallel()
	result := Validate(nil)
	assert.True(t, result.IsValid)
	assert.NotNil(t, result.Duplicates)
	assert.NotNil(t, result.Issues)
	assert.Equal(t, models.SitemapStats{}, result.Stats)
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	t.Parallel()
	entries := []models.SitemapEntry{
		entry("https://example.com/x", 2),
		entry("https://example.com/x", 0.1),
	}
	snapshot := append([]models.SitemapEntry(nil), entries...)

	first := Validate(entries)
	second := Validate(entries)

	assert.Equal(t, snapshot, entries)
	assert.Equal(t, first, second)
}
