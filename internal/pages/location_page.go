// Package pages derives the SEO data of the per-city marketing pages:
// titles, descriptions, FAQ text and JSON-LD structured data.
package pages

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/romangod6/dmv-sitemap/internal/models"
	"github.com/romangod6/dmv-sitemap/internal/registry"
	"github.com/romangod6/dmv-sitemap/internal/sitemap"
	"github.com/samber/lo"
)

const (
	maxDescriptionLen = 160
	nearbyCount       = 4

	// servicePagePath is the core page the breadcrumb trail passes through.
	servicePagePath = "/starlink-installation"
)

// SiteInfo is the business identity used on every page.
type SiteInfo struct {
	Name        string
	BaseURL     string
	Phone       string
	Email       string
	ServiceName string
}

type LocationPage struct {
	Slug            string                    `json:"slug"`
	Path            string                    `json:"path"`
	CanonicalURL    string                    `json:"canonicalUrl"`
	Title           string                    `json:"title"`
	MetaDescription string                    `json:"metaDescription"`
	H1              string                    `json:"h1"`
	Keywords        []string                  `json:"keywords"`
	Location        models.LocationRecord     `json:"location"`
	Nearby          []registry.NearbyLocation `json:"nearby"`
	FAQs            []FAQ                     `json:"faqs"`
	Schemas         []Schema                  `json:"schemas"`
}

// BuildLocationPage assembles the page data for slug.
func BuildLocationPage(site SiteInfo, reg *registry.Registry, slug string) (*LocationPage, error) {
	rec, err := reg.Find(slug)
	if err != nil {
		return nil, err
	}

	nearby, err := reg.Nearby(rec.Slug(), nearbyCount)
	if err != nil {
		return nil, err
	}

	service := site.ServiceName
	if service == "" {
		service = "Starlink Installation"
	}

	canonical := sitemap.AbsoluteURL(site.BaseURL, rec.Path())
	faqs := RenderFAQs(DefaultFAQTemplates, rec)

	page := &LocationPage{
		Slug:         rec.Slug(),
		Path:         rec.Path(),
		CanonicalURL: canonical,
		Title:        fmt.Sprintf("%s in %s | %s", service, rec.DisplayName(), site.Name),
		H1:           fmt.Sprintf("Professional %s in %s", service, rec.DisplayName()),
		Keywords:     pageKeywords(service, rec),
		Location:     rec,
		Nearby:       nearby,
		FAQs:         faqs,
	}
	page.MetaDescription = truncate(description(site, service, rec), maxDescriptionLen)

	page.Schemas = []Schema{
		newLocalBusinessSchema(site, rec, canonical, nearby),
		newServiceSchema(site, service, rec, page.MetaDescription),
		NewFAQPageSchema(faqs),
		NewBreadcrumbSchema(
			Crumb{Name: "Home", URL: sitemap.AbsoluteURL(site.BaseURL, "/")},
			Crumb{Name: service, URL: sitemap.AbsoluteURL(site.BaseURL, servicePagePath)},
			Crumb{Name: rec.DisplayName(), URL: canonical},
		),
	}

	return page, nil
}

func description(site SiteInfo, service string, rec models.LocationRecord) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Professional %s in %s", strings.ToLower(service), rec.DisplayName())
	if rec.ServiceRadius > 0 {
		fmt.Fprintf(&sb, " and within %d miles", rec.ServiceRadius)
	}
	sb.WriteString(". Same-week appointments, clean cable routing and full network setup.")
	if site.Phone != "" {
		fmt.Fprintf(&sb, " Call %s.", site.Phone)
	}
	return sb.String()
}

func pageKeywords(service string, rec models.LocationRecord) []string {
	base := []string{
		strings.ToLower(fmt.Sprintf("%s %s", service, rec.City)),
		strings.ToLower(fmt.Sprintf("%s %s %s", service, rec.City, rec.State)),
	}
	return lo.Uniq(append(base, rec.Keywords...))
}

// truncate shortens s to at most limit runes, cutting at a word boundary.
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:limit-1])
	if idx := strings.LastIndex(cut, " "); idx > 0 {
		cut = cut[:idx]
	}
	return strings.TrimRight(cut, " ,.") + "…"
}

func newLocalBusinessSchema(site SiteInfo, rec models.LocationRecord, canonical string, nearby []registry.NearbyLocation) LocalBusinessSchema {
	postal := ""
	if len(rec.ZipCodes) > 0 {
		postal = rec.ZipCodes[0]
	}

	served := []any{
		GeoCircle{
			Type:        "GeoCircle",
			GeoMidpoint: GeoCoordinates{Type: "GeoCoordinates", Latitude: rec.Coordinates.Lat, Longitude: rec.Coordinates.Lng},
			GeoRadius:   fmt.Sprintf("%d mi", rec.ServiceRadius),
		},
		Place{Type: "City", Name: rec.City},
	}
	for _, n := range nearby {
		served = append(served, Place{Type: "City", Name: n.Location.City})
	}

	return LocalBusinessSchema{
		Context:    schemaContext,
		Type:       "LocalBusiness",
		ID:         sitemap.AbsoluteURL(site.BaseURL, "/") + "#business",
		Name:       site.Name,
		URL:        canonical,
		Telephone:  site.Phone,
		Email:      site.Email,
		PriceRange: "$$",
		Address: PostalAddress{
			Type:            "PostalAddress",
			AddressLocality: rec.City,
			AddressRegion:   rec.State,
			PostalCode:      postal,
			AddressCountry:  "US",
		},
		Geo:        GeoCoordinates{Type: "GeoCoordinates", Latitude: rec.Coordinates.Lat, Longitude: rec.Coordinates.Lng},
		AreaServed: served,
	}
}

func newServiceSchema(site SiteInfo, service string, rec models.LocationRecord, desc string) ServiceSchema {
	s := ServiceSchema{
		Context:     schemaContext,
		Type:        "Service",
		Name:        fmt.Sprintf("%s in %s", service, rec.DisplayName()),
		ServiceType: service,
		Description: desc,
		AreaServed:  Place{Type: "City", Name: rec.City},
	}
	s.Provider.ID = sitemap.AbsoluteURL(site.BaseURL, "/") + "#business"
	return s
}
