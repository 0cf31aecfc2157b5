// internal/crawler/parser.go
package crawler

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/romangod6/dmv-sitemap/internal/models"
	"github.com/samber/lo"
	"golang.org/x/net/html"
)

// ParsedPage holds the SEO-relevant parts of an HTML page.
type ParsedPage struct {
	Title       string
	Description string
	Canonical   string
	SchemaTypes []string
	WordCount   int
}

// ParseHTMLContent parses raw HTML and extracts the SEO fields.
func ParseHTMLContent(content string) (*ParsedPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("error parsing HTML: %w", err)
	}
	return ExtractPage(doc.Selection), nil
}

// ExtractPage reads the SEO fields from a parsed document or <html> selection.
func ExtractPage(doc *goquery.Selection) *ParsedPage {
	parsed := &ParsedPage{
		SchemaTypes: make([]string, 0),
	}

	parsed.Title = strings.TrimSpace(doc.Find("title").First().Text())

	doc.Find("meta[name='description']").Each(func(i int, s *goquery.Selection) {
		if content, exists := s.Attr("content"); exists && parsed.Description == "" {
			parsed.Description = strings.TrimSpace(content)
		}
	})

	if href, exists := doc.Find("link[rel='canonical']").First().Attr("href"); exists {
		parsed.Canonical = strings.TrimSpace(href)
	}

	doc.Find("script[type='application/ld+json']").Each(func(i int, s *goquery.Selection) {
		parsed.SchemaTypes = append(parsed.SchemaTypes, schemaTypes(s.Text())...)
	})
	parsed.SchemaTypes = lo.Uniq(parsed.SchemaTypes)

	if body := doc.Find("body"); body.Length() > 0 {
		if bodyHTML, err := goquery.OuterHtml(body); err == nil {
			parsed.WordCount = len(strings.Fields(visibleText(bodyHTML)))
		}
	}

	return parsed
}

// schemaTypes returns the @type values of a JSON-LD block, which may be a
// single object, an array of objects, or use @graph.
func schemaTypes(raw string) []string {
	var value interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &value); err != nil {
		return nil
	}

	var types []string
	var walk func(v interface{})
	walk = func(v interface{}) {
		switch node := v.(type) {
		case []interface{}:
			for _, item := range node {
				walk(item)
			}
		case map[string]interface{}:
			switch t := node["@type"].(type) {
			case string:
				types = append(types, t)
			case []interface{}:
				for _, item := range t {
					if s, ok := item.(string); ok {
						types = append(types, s)
					}
				}
			}
			if graph, ok := node["@graph"]; ok {
				walk(graph)
			}
		}
	}
	walk(value)

	return types
}

// visibleText returns the text of content without scripts, styles and comments.
func visibleText(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style" || n.Data == "noscript") {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(sb.String()), " ")
}

// CheckPage turns a parsed page into an audit entry for loc and lists its problems.
func CheckPage(loc string, statusCode int, parsed *ParsedPage, minWords int) *models.PageAudit {
	audit := &models.PageAudit{
		URL:        loc,
		StatusCode: statusCode,
		Problems:   []string{},
	}

	if statusCode != 200 {
		audit.Problems = append(audit.Problems, fmt.Sprintf("status %d", statusCode))
	}
	if parsed == nil {
		audit.Problems = append(audit.Problems, "no HTML content")
		return audit
	}

	audit.Title = parsed.Title
	audit.Description = parsed.Description
	audit.Canonical = parsed.Canonical
	audit.SchemaTypes = parsed.SchemaTypes

	if parsed.Title == "" {
		audit.Problems = append(audit.Problems, "missing title")
	}
	if parsed.Description == "" {
		audit.Problems = append(audit.Problems, "missing meta description")
	}
	switch {
	case parsed.Canonical == "":
		audit.Problems = append(audit.Problems, "missing canonical link")
	case normalizeURL(parsed.Canonical) != normalizeURL(loc):
		audit.Problems = append(audit.Problems, fmt.Sprintf("canonical %s does not match %s", parsed.Canonical, loc))
	}
	if minWords > 0 && parsed.WordCount < minWords {
		audit.Problems = append(audit.Problems, fmt.Sprintf("thin content: %d words", parsed.WordCount))
	}
	if strings.Contains(loc, models.LocationsPathPrefix) && !lo.Contains(parsed.SchemaTypes, "LocalBusiness") {
		audit.Problems = append(audit.Problems, "missing LocalBusiness structured data")
	}

	return audit
}

func normalizeURL(u string) string {
	return strings.TrimRight(strings.TrimSpace(u), "/")
}
