// Command sitemap builds the sitemap locally or checks a published one.
//
//	go run ./tools/sitemap build -config config/config.yaml -out sitemap.xml
//	go run ./tools/sitemap check -samples 3 https://www.dmvstarlinkinstallers.com/sitemap.xml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/romangod6/dmv-sitemap/config"
	"github.com/romangod6/dmv-sitemap/internal/crawler"
	"github.com/romangod6/dmv-sitemap/internal/models"
	"github.com/romangod6/dmv-sitemap/internal/registry"
	"github.com/romangod6/dmv-sitemap/internal/sitemap"
)

var errInvalidSitemap = errors.New("sitemap is not valid")

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "build":
		err = doBuild(os.Args[2:], os.Stdout)
	case "check":
		err = doCheck(context.Background(), os.Args[2:], os.Stdout)
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: sitemap build [-config file] [-out file]")
	fmt.Fprintln(os.Stderr, "       sitemap check [-samples n] [-ua agent] <sitemap-url>")
}

// doBuild generates the sitemap from the configured registry and writes it
// to -out. The file is written even when validation fails.
func doBuild(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("build", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configFlag := fs.String("config", "", "path to config file")
	outFlag := fs.String("out", "sitemap.xml", "output file, - for stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadConfig(*configFlag)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	var reg *registry.Registry
	if cfg.Registry.Path != "" {
		reg, err = registry.Load(cfg.Registry.Path)
	} else {
		reg, err = registry.Default()
	}
	if err != nil {
		return err
	}

	builder := sitemap.NewBuilder(cfg.Site.BaseURL)
	builder.CorePages = cfg.CorePages()
	builder.LegalPages = cfg.LegalPages()
	builder.Strict = cfg.Sitemap.Strict

	entries, err := builder.Build(reg.Records())
	if err != nil {
		return err
	}
	result := sitemap.Validate(entries)

	if *outFlag == "-" {
		if err := sitemap.WriteXML(stdout, entries); err != nil {
			return err
		}
	} else {
		f, err := os.Create(*outFlag)
		if err != nil {
			return err
		}
		if err := sitemap.WriteXML(f, entries); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Wrote %d URLs to %s\n", len(entries), *outFlag)
	}

	printValidation(stdout, result)
	if !result.IsValid {
		return errInvalidSitemap
	}
	return nil
}

// doCheck fetches a published sitemap, validates it and inspects the head
// tags of the first few pages.
func doCheck(ctx context.Context, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	samplesFlag := fs.Int("samples", 3, "number of pages to inspect")
	uaFlag := fs.String("ua", "DMV Sitemap Auditor v1.0", "user agent")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("check needs exactly one sitemap URL")
	}
	sitemapURL := fs.Arg(0)

	client := &http.Client{Timeout: 30 * time.Second}

	doc, err := sitemap.Fetch(ctx, client, sitemapURL)
	if err != nil {
		return fmt.Errorf("error fetching sitemap: %w", err)
	}

	fmt.Fprintf(stdout, "Total URLs found: %d\n", len(doc.URLs))
	result := sitemap.Validate(sitemap.ToEntries(doc))
	printValidation(stdout, result)

	robots, err := crawler.CheckRobots(ctx, client, sitemapURL, *uaFlag)
	if err != nil {
		fmt.Fprintf(stdout, "robots.txt: error (%v)\n", err)
	} else {
		fmt.Fprintf(stdout, "robots.txt: sitemap listed=%t, /locations/ allowed=%t\n", robots.SitemapListed, robots.LocationsAllowed)
	}

	for i := 0; i < *samplesFlag && i < len(doc.URLs); i++ {
		loc := doc.URLs[i].Loc
		fmt.Fprintf(stdout, "\n=== Analyzing URL %d/%d: %s ===\n", i+1, *samplesFlag, loc)

		status, body, err := fetchPage(ctx, client, loc, *uaFlag)
		if err != nil {
			fmt.Fprintf(stdout, "Error fetching page: %v\n", err)
			continue
		}
		parsed, err := crawler.ParseHTMLContent(body)
		if err != nil {
			fmt.Fprintf(stdout, "Error parsing page: %v\n", err)
		}
		printPage(stdout, crawler.CheckPage(loc, status, parsed, 0))
	}

	if !result.IsValid {
		return errInvalidSitemap
	}
	return nil
}

func fetchPage(ctx context.Context, client *http.Client, url, userAgent string) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, "", err
	}
	return resp.StatusCode, string(body), nil
}

func printValidation(w io.Writer, result models.ValidationResult) {
	fmt.Fprintf(w, "Valid: %t\n", result.IsValid)
	fmt.Fprintf(w, "URLs: %d total, %d unique, %d location pages\n",
		result.Stats.TotalURLs, result.Stats.UniqueURLs, result.Stats.LocationPages)
	fmt.Fprintf(w, "Average priority: %.2f\n", result.Stats.AveragePriority)
	for _, dup := range result.Duplicates {
		fmt.Fprintf(w, "  duplicate: %s\n", dup)
	}
	for _, issue := range result.Issues {
		fmt.Fprintf(w, "  issue: %s\n", issue)
	}
}

func printPage(w io.Writer, page *models.PageAudit) {
	fmt.Fprintf(w, "Status: %d\n", page.StatusCode)
	fmt.Fprintf(w, "Title: %s\n", page.Title)
	fmt.Fprintf(w, "Description: %s\n", page.Description)
	fmt.Fprintf(w, "Canonical: %s\n", page.Canonical)
	fmt.Fprintf(w, "Structured data: %v\n", page.SchemaTypes)
	for _, problem := range page.Problems {
		fmt.Fprintf(w, "  problem: %s\n", problem)
	}
}
