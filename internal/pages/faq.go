package pages

import (
	"strconv"
	"strings"

	"github.com/romangod6/dmv-sitemap/internal/models"
)

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// DefaultFAQTemplates use {city}, {state}, {radius}, {zips} and {nearby}
// placeholders.
var DefaultFAQTemplates = []FAQ{
	{
		Question: "Do you install Starlink in {city}, {state}?",
		Answer:   "Yes. We install Starlink throughout {city} and within {radius} miles, {zips}.",
	},
	{
		Question: "How long does a Starlink installation in {city} take?",
		Answer:   "Most {city} installations are finished in two to four hours, including mounting, cable routing and network setup.",
	},
	{
		Question: "Which areas near {city} do you serve?",
		Answer:   "Besides {city} we regularly work in {nearby}.",
	},
	{
		Question: "Can you mount the dish on my roof in {city}?",
		Answer:   "Yes. We offer roof, wall, pole and ground mounts and check local {state} permit rules before we start.",
	},
}

// RenderFAQs fills templates with a location's details.
func RenderFAQs(templates []FAQ, rec models.LocationRecord) []FAQ {
	nearby := "the surrounding communities"
	if len(rec.NearbyAreas) > 0 {
		nearby = joinHuman(rec.NearbyAreas)
	}
	zips := "across the surrounding area"
	if len(rec.ZipCodes) > 0 {
		zips = "including zip codes " + strings.Join(rec.ZipCodes, ", ")
	}

	r := strings.NewReplacer(
		"{city}", rec.City,
		"{state}", rec.State,
		"{radius}", strconv.Itoa(rec.ServiceRadius),
		"{zips}", zips,
		"{nearby}", nearby,
	)

	out := make([]FAQ, 0, len(templates))
	for _, t := range templates {
		out = append(out, FAQ{Question: r.Replace(t.Question), Answer: r.Replace(t.Answer)})
	}
	return out
}

// joinHuman joins items as "a, b and c".
func joinHuman(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}
