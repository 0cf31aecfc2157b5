package crawler

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/romangod6/dmv-sitemap/internal/models"
	"github.com/romangod6/dmv-sitemap/internal/sitemap"
	"github.com/romangod6/dmv-sitemap/internal/utils"
	"github.com/samber/lo"
)

type AuditorConfig struct {
	UserAgent      string
	AllowedDomains []string
	Parallelism    int
	Delay          time.Duration
	Timeout        time.Duration
	MaxPages       int
	MinWords       int
}

// Auditor checks every page listed in a published sitemap.
type Auditor struct {
	config   *AuditorConfig
	client   *http.Client
	renderer Renderer
	logger   *utils.RunLogger
}

func NewAuditor(config *AuditorConfig) *Auditor {
	if config.Parallelism <= 0 {
		config.Parallelism = 2
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Minute
	}

	return &Auditor{
		config: config,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithRenderer makes the auditor render pages instead of fetching them.
func (a *Auditor) WithRenderer(r Renderer) *Auditor {
	a.renderer = r
	return a
}

// WithLogger sends per-page progress to a run log.
func (a *Auditor) WithLogger(l *utils.RunLogger) *Auditor {
	a.logger = l
	return a
}

func (a *Auditor) Audit(ctx context.Context, sitemapURL string) (*models.AuditReport, error) {
	ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
	defer cancel()

	report := &models.AuditReport{
		SitemapURL: sitemapURL,
		StartedAt:  time.Now().UTC(),
		Pages:      []*models.PageAudit{},
	}

	doc, err := sitemap.Fetch(ctx, a.client, sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sitemap: %w", err)
	}

	urls := lo.Uniq(lo.FilterMap(doc.URLs, func(u models.URL, _ int) (string, bool) {
		loc := strings.TrimSpace(u.Loc)
		return loc, loc != ""
	}))
	if a.config.MaxPages > 0 && len(urls) > a.config.MaxPages {
		urls = urls[:a.config.MaxPages]
	}
	a.logf("Auditing %d pages from %s", len(urls), sitemapURL)

	var pages map[string]*models.PageAudit
	if a.renderer != nil {
		pages = a.renderPages(ctx, urls)
	} else {
		pages = a.collectPages(ctx, urls)
	}

	for _, loc := range urls {
		page, ok := pages[loc]
		if !ok {
			page = CheckPage(loc, 0, nil, a.config.MinWords)
		}
		report.Pages = append(report.Pages, page)
		if len(page.Problems) > 0 {
			report.PagesWithIssues++
		}
	}

	robots, err := CheckRobots(ctx, a.client, sitemapURL, a.config.UserAgent)
	if err != nil {
		a.logf("Robots check failed: %v", err)
	} else {
		report.SitemapInRobots = robots.SitemapListed
		report.LocationsAllowed = robots.LocationsAllowed
	}

	report.FinishedAt = time.Now().UTC()
	a.logf("Audit finished: %d pages, %d with issues", len(report.Pages), report.PagesWithIssues)

	return report, nil
}

// collectPages fetches the pages with colly. Results are keyed by the
// sitemap <loc> that was requested, not the final redirected URL.
func (a *Auditor) collectPages(ctx context.Context, urls []string) map[string]*models.PageAudit {
	var (
		mu    sync.Mutex
		pages = make(map[string]*models.PageAudit, len(urls))
	)

	c := colly.NewCollector(
		colly.UserAgent(a.config.UserAgent),
		colly.Async(true),
	)
	if len(a.config.AllowedDomains) > 0 {
		c.AllowedDomains = a.config.AllowedDomains
	}
	c.SetRequestTimeout(30 * time.Second)

	if err := c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Parallelism: a.config.Parallelism,
		Delay:       a.config.Delay,
	}); err != nil {
		a.logf("Invalid limit rule: %v", err)
	}

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	c.OnHTML("html", func(e *colly.HTMLElement) {
		loc := e.Request.Ctx.Get("loc")
		page := CheckPage(loc, e.Response.StatusCode, ExtractPage(e.DOM), a.config.MinWords)

		mu.Lock()
		pages[loc] = page
		mu.Unlock()
		a.logf("Audited %s: %d problems", loc, len(page.Problems))
	})

	c.OnError(func(r *colly.Response, err error) {
		loc := r.Request.Ctx.Get("loc")
		page := CheckPage(loc, r.StatusCode, nil, a.config.MinWords)
		if r.StatusCode == 0 {
			page.Problems = append(page.Problems, err.Error())
		}

		mu.Lock()
		pages[loc] = page
		mu.Unlock()
		a.logf("Error auditing %s: %v", loc, err)
	})

	for idx, loc := range urls {
		if ctx.Err() != nil {
			break
		}
		reqCtx := colly.NewContext()
		reqCtx.Put("loc", loc)
		if err := c.Request(http.MethodGet, loc, nil, reqCtx, nil); err != nil {
			a.logf("Error visiting %d/%d %s: %v", idx+1, len(urls), loc, err)
		}
	}
	c.Wait()

	return pages
}

func (a *Auditor) renderPages(ctx context.Context, urls []string) map[string]*models.PageAudit {
	pages := make(map[string]*models.PageAudit, len(urls))

	for _, loc := range urls {
		if ctx.Err() != nil {
			break
		}

		content, err := a.renderer.Render(ctx, loc)
		if err != nil {
			page := CheckPage(loc, 0, nil, a.config.MinWords)
			page.Problems = append(page.Problems, err.Error())
			pages[loc] = page
			a.logf("Error rendering %s: %v", loc, err)
			continue
		}

		parsed, err := ParseHTMLContent(content)
		if err != nil {
			a.logf("Error parsing %s: %v", loc, err)
		}
		pages[loc] = CheckPage(loc, http.StatusOK, parsed, a.config.MinWords)
		if a.config.Delay > 0 {
			time.Sleep(a.config.Delay)
		}
	}

	return pages
}

func (a *Auditor) logf(format string, v ...interface{}) {
	if a.logger != nil {
		a.logger.LogInfo(format, v...)
		return
	}
	log.Printf(format, v...)
}
