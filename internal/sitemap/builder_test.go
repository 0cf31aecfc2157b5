package sitemap

import (
	"testing"
	"time"

	"github.com/romangod6/dmv-sitemap/internal/models"
	"github.com/romangod6/dmv-sitemap/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBaseURL = "https://dmvstarlink.example.com"

var fixedNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func TestAbsoluteURL(t *testing.T) {
	tests := []struct {
		base, path, expected string
	}{
		{"https://example.com", "/", "https://example.com/"},
		{"https://example.com/", "/about", "https://example.com/about"},
		{"https://example.com", "about", "https://example.com/about"},
		{"https://example.com//", "//locations/fairfax-va", "https://example.com/locations/fairfax-va"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, AbsoluteURL(tt.base, tt.path))
	}
}

func TestBuildEntries_OrderAndShape(t *testing.T) {
	t.Parallel()
	records := []models.LocationRecord{
		{City: "Fairfax", State: "VA"},
		{City: "Silver Spring", State: "MD"},
	}

	entries := BuildEntries(testBaseURL, DefaultCorePages(), DefaultLegalPages(), records, fixedNow)
	require.Len(t, entries, 4+2+2)

	assert.Equal(t, testBaseURL+"/", entries[0].URL)
	assert.Equal(t, 1.0, entries[0].Priority)
	assert.Equal(t, testBaseURL+"/locations/fairfax-va", entries[4].URL)
	assert.Equal(t, testBaseURL+"/locations/silver-spring-md", entries[5].URL)
	assert.Equal(t, testBaseURL+"/terms-of-service", entries[7].URL)

	for _, e := range entries[4:6] {
		assert.Equal(t, models.ChangeFreqWeekly, e.ChangeFreq)
		assert.Equal(t, 0.9, e.Priority)
	}
	for _, e := range entries {
		assert.Equal(t, fixedNow, e.LastMod)
	}
}

func TestBuildEntries_EmptyRegistryYieldsOnlyFixedPages(t *testing.T) {
	t.Parallel()
	entries := BuildEntries(testBaseURL, DefaultCorePages(), DefaultLegalPages(), nil, fixedNow)
	assert.Len(t, entries, len(DefaultCorePages())+len(DefaultLegalPages()))

	result := Validate(entries)
	assert.True(t, result.IsValid)
	assert.Equal(t, 0, result.Stats.LocationPages)
}

func TestBuildEntries_DefaultRegistry(t *testing.T) {
	t.Parallel()
	reg, err := registry.Default()
	require.NoError(t, err)

	entries := BuildEntries(testBaseURL, DefaultCorePages(), DefaultLegalPages(), reg.Records(), fixedNow)
	assert.Len(t, entries, len(DefaultCorePages())+14+len(DefaultLegalPages()))

	result := Validate(entries)
	assert.True(t, result.IsValid, "issues: %v duplicates: %v", result.Issues, result.Duplicates)
	assert.Equal(t, 14, result.Stats.LocationPages)
}

func TestBuildEntries_DuplicateRecordsAreEmitted(t *testing.T) {
	t.Parallel()
	records := []models.LocationRecord{
		{City: "Fairfax", State: "VA"},
		{City: "Fairfax", State: "VA"},
	}

	entries := BuildEntries(testBaseURL, nil, nil, records, fixedNow)
	require.Len(t, entries, 2)
	assert.Equal(t, entries[0].URL, entries[1].URL)

	result := Validate(entries)
	assert.False(t, result.IsValid)
	assert.Equal(t, []string{testBaseURL + "/locations/fairfax-va"}, result.Duplicates)
}

func TestBuilder_StrictFailsFastOnDuplicates(t *testing.T) {
	t.Parallel()
	b := NewBuilder(testBaseURL)
	b.Strict = true

	_, err := b.Build([]models.LocationRecord{
		{City: "Fairfax", State: "VA"},
		{City: "Reston", State: "VA"},
		{City: "FAIRFAX", State: "va"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateURL)
	assert.Contains(t, err.Error(), "/locations/fairfax-va")
}

func TestBuilder_UsesClock(t *testing.T) {
	t.Parallel()
	b := NewBuilder(testBaseURL)
	b.Clock = func() time.Time { return fixedNow }

	entries, err := b.Build([]models.LocationRecord{{City: "Reston", State: "VA"}})
	require.NoError(t, err)
	require.Len(t, entries, 7)
	for _, e := range entries {
		assert.Equal(t, fixedNow, e.LastMod)
	}
}

func TestBuilder_DefaultClockStampsNow(t *testing.T) {
	t.Parallel()
	before := time.Now().Add(-time.Second)
	entries, err := NewBuilder(testBaseURL).Build(nil)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	assert.True(t, entries[0].LastMod.After(before))
}
