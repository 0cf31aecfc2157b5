package pages

import (
	"encoding/json"
	"fmt"
)

const schemaContext = "https://schema.org"

// Schema is one JSON-LD structured data block.
type Schema interface {
	SchemaType() string
}

type PostalAddress struct {
	Type            string `json:"@type"`
	AddressLocality string `json:"addressLocality"`
	AddressRegion   string `json:"addressRegion"`
	PostalCode      string `json:"postalCode,omitempty"`
	AddressCountry  string `json:"addressCountry"`
}

type GeoCoordinates struct {
	Type      string  `json:"@type"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type Place struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

type GeoCircle struct {
	Type        string         `json:"@type"`
	GeoMidpoint GeoCoordinates `json:"geoMidpoint"`
	GeoRadius   string         `json:"geoRadius"`
}

type LocalBusinessSchema struct {
	Context    string         `json:"@context"`
	Type       string         `json:"@type"`
	ID         string         `json:"@id"`
	Name       string         `json:"name"`
	URL        string         `json:"url"`
	Telephone  string         `json:"telephone,omitempty"`
	Email      string         `json:"email,omitempty"`
	PriceRange string         `json:"priceRange,omitempty"`
	Address    PostalAddress  `json:"address"`
	Geo        GeoCoordinates `json:"geo"`
	AreaServed []any          `json:"areaServed"`
}

func (LocalBusinessSchema) SchemaType() string { return "LocalBusiness" }

type ServiceSchema struct {
	Context     string `json:"@context"`
	Type        string `json:"@type"`
	Name        string `json:"name"`
	ServiceType string `json:"serviceType"`
	Description string `json:"description"`
	Provider    struct {
		ID string `json:"@id"`
	} `json:"provider"`
	AreaServed Place `json:"areaServed"`
}

func (ServiceSchema) SchemaType() string { return "Service" }

type Answer struct {
	Type string `json:"@type"`
	Text string `json:"text"`
}

type Question struct {
	Type           string `json:"@type"`
	Name           string `json:"name"`
	AcceptedAnswer Answer `json:"acceptedAnswer"`
}

type FAQPageSchema struct {
	Context    string     `json:"@context"`
	Type       string     `json:"@type"`
	MainEntity []Question `json:"mainEntity"`
}

func (FAQPageSchema) SchemaType() string { return "FAQPage" }

type ListItem struct {
	Type     string `json:"@type"`
	Position int    `json:"position"`
	Name     string `json:"name"`
	Item     string `json:"item"`
}

type BreadcrumbSchema struct {
	Context         string     `json:"@context"`
	Type            string     `json:"@type"`
	ItemListElement []ListItem `json:"itemListElement"`
}

func (BreadcrumbSchema) SchemaType() string { return "BreadcrumbList" }

// Crumb is one step of a breadcrumb trail.
type Crumb struct {
	Name string
	URL  string
}

func NewBreadcrumbSchema(crumbs ...Crumb) BreadcrumbSchema {
	items := make([]ListItem, 0, len(crumbs))
	for i, c := range crumbs {
		items = append(items, ListItem{Type: "ListItem", Position: i + 1, Name: c.Name, Item: c.URL})
	}
	return BreadcrumbSchema{Context: schemaContext, Type: "BreadcrumbList", ItemListElement: items}
}

func NewFAQPageSchema(faqs []FAQ) FAQPageSchema {
	questions := make([]Question, 0, len(faqs))
	for _, f := range faqs {
		questions = append(questions, Question{
			Type:           "Question",
			Name:           f.Question,
			AcceptedAnswer: Answer{Type: "Answer", Text: f.Answer},
		})
	}
	return FAQPageSchema{Context: schemaContext, Type: "FAQPage", MainEntity: questions}
}

// MarshalSchemas renders schemas as a JSON-LD array suitable for a
// <script type="application/ld+json"> element.
func MarshalSchemas(schemas []Schema) ([]byte, error) {
	data, err := json.Marshal(schemas)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schemas: %w", err)
	}
	return data, nil
}
