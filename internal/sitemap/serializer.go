package sitemap

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/romangod6/dmv-sitemap/internal/models"
	"github.com/samber/lo"
)

// ToURLSet converts entries to the XML document model, keeping their order.
// Priorities are rendered with one decimal place and lastmod as a W3C datetime.
func ToURLSet(entries []models.SitemapEntry) models.Sitemap {
	return models.Sitemap{
		Xmlns: models.SitemapNamespace,
		URLs: lo.Map(entries, func(e models.SitemapEntry, _ int) models.URL {
			u := models.URL{
				Loc:        e.URL,
				ChangeFreq: string(e.ChangeFreq),
				Priority:   strconv.FormatFloat(e.Priority, 'f', 1, 64),
			}
			if !e.LastMod.IsZero() {
				u.LastMod = e.LastMod.UTC().Format(time.RFC3339)
			}
			return u
		}),
	}
}

// WriteXML writes entries as a sitemap document to w. Entries are neither
// dropped nor deduplicated.
func WriteXML(w io.Writer, entries []models.SitemapEntry) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(ToURLSet(entries)); err != nil {
		return fmt.Errorf("failed to encode sitemap: %w", err)
	}

	_, err := io.WriteString(w, "\n")
	return err
}

// Serialize renders entries as a sitemap document.
func Serialize(entries []models.SitemapEntry) (string, error) {
	var sb strings.Builder
	if err := WriteXML(&sb, entries); err != nil {
		return "", err
	}
	return sb.String(), nil
}
