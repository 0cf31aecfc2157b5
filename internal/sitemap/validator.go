package sitemap

import (
	"fmt"
	"math"
	"strings"

	"github.com/romangod6/dmv-sitemap/internal/models"
	"github.com/samber/lo"
)

// Validate reports duplicate URLs, out-of-range priorities, missing lastmod
// values and unknown changefreq values. It never modifies entries and always
// returns a result; problems are data, not errors.
func Validate(entries []models.SitemapEntry) models.ValidationResult {
	result := models.ValidationResult{
		Duplicates: []string{},
		Issues:     []string{},
	}

	counts := lo.CountValuesBy(entries, func(e models.SitemapEntry) string {
		return e.URL
	})
	reported := make(map[string]bool)
	for _, e := range entries {
		if counts[e.URL] > 1 && !reported[e.URL] {
			reported[e.URL] = true
			result.Duplicates = append(result.Duplicates, e.URL)
		}
	}

	var prioritySum float64
	var priorityCount int

	for i, e := range entries {
		name := e.URL
		if name == "" {
			name = fmt.Sprintf("entry #%d", i+1)
			result.Issues = append(result.Issues, fmt.Sprintf("Missing url for %s", name))
		}

		if !(e.Priority >= 0 && e.Priority <= 1) {
			result.Issues = append(result.Issues,
				fmt.Sprintf("Invalid priority %v for %s (must be between 0.0 and 1.0)", e.Priority, name))
		}
		if !math.IsNaN(e.Priority) && !math.IsInf(e.Priority, 0) {
			prioritySum += e.Priority
			priorityCount++
		}

		if e.LastMod.IsZero() {
			result.Issues = append(result.Issues, fmt.Sprintf("Missing lastmod for %s", name))
		}

		if !e.ChangeFreq.Valid() {
			result.Issues = append(result.Issues, fmt.Sprintf("Invalid changefreq %q for %s", e.ChangeFreq, name))
		}

		if strings.Contains(e.URL, models.LocationsPathPrefix) {
			result.Stats.LocationPages++
		}
	}

	result.Stats.TotalURLs = len(entries)
	result.Stats.UniqueURLs = len(counts)
	if priorityCount > 0 {
		result.Stats.AveragePriority = math.Round(prioritySum/float64(priorityCount)*100) / 100
	}

	result.IsValid = len(result.Duplicates) == 0 && len(result.Issues) == 0
	return result
}
