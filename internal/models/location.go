package models

import (
	"regexp"
	"strings"
)

// LocationsPathPrefix is the path segment every generated service-area page lives under.
const LocationsPathPrefix = "/locations/"

var whitespaceRe = regexp.MustCompile(`\s+`)

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// LocationRecord describes one service area of the business.
type LocationRecord struct {
	City          string      `json:"city"`
	State         string      `json:"state"`
	ZipCodes      []string    `json:"zipCodes"`
	Coordinates   Coordinates `json:"coordinates"`
	ServiceRadius int         `json:"serviceRadius"`
	Population    *int        `json:"population,omitempty"`
	Keywords      []string    `json:"keywords"`
	NearbyAreas   []string    `json:"nearbyAreas"`
}

// Slug returns the lowercase "city-state" identifier used in page URLs.
func (l LocationRecord) Slug() string {
	city := whitespaceRe.ReplaceAllString(strings.TrimSpace(l.City), "-")
	state := whitespaceRe.ReplaceAllString(strings.TrimSpace(l.State), "-")
	return strings.ToLower(city) + "-" + strings.ToLower(state)
}

// Path returns the site-relative page path, e.g. /locations/fairfax-va.
func (l LocationRecord) Path() string {
	return LocationsPathPrefix + l.Slug()
}

// DisplayName returns "City, ST".
func (l LocationRecord) DisplayName() string {
	return l.City + ", " + l.State
}
