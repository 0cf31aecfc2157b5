package sitemap

import (
	"fmt"
	"strings"
)

// RobotsTxt renders a robots.txt allowing all agents except for disallow,
// and advertising the sitemap location.
func RobotsTxt(baseURL, sitemapPath string, disallow []string) string {
	var sb strings.Builder
	sb.WriteString("User-agent: *\n")
	if len(disallow) == 0 {
		sb.WriteString("Allow: /\n")
	}
	for _, path := range disallow {
		fmt.Fprintf(&sb, "Disallow: %s\n", path)
	}
	fmt.Fprintf(&sb, "\nSitemap: %s\n", AbsoluteURL(baseURL, sitemapPath))
	return sb.String()
}
