package api

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/romangod6/dmv-sitemap/internal/crawler"
	"github.com/romangod6/dmv-sitemap/internal/generator"
	"github.com/romangod6/dmv-sitemap/internal/metrics"
	"github.com/romangod6/dmv-sitemap/internal/models"
	"github.com/romangod6/dmv-sitemap/internal/pages"
	"github.com/romangod6/dmv-sitemap/internal/sitemap"
	"github.com/romangod6/dmv-sitemap/internal/storage"
)

// Options carries the site settings the handlers need.
type Options struct {
	Site        pages.SiteInfo
	SitemapPath string
	Disallow    []string

	// AuditSitemapURL is the published sitemap the audit reads.
	AuditSitemapURL string
	Audit           crawler.AuditorConfig
	Render          bool
	LogsDir         string
}

type Handler struct {
	generator *generator.Generator
	store     storage.Store
	metrics   *metrics.Metrics
	options   Options

	auditMu     sync.Mutex
	auditing    bool
	latestAudit *models.AuditReport
	auditErr    string
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type PaginationResponse struct {
	Data       interface{} `json:"data"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	TotalCount int         `json:"total_count,omitempty"`
}

func NewHandler(gen *generator.Generator, store storage.Store, m *metrics.Metrics, options Options) *Handler {
	if options.SitemapPath == "" {
		options.SitemapPath = "/sitemap.xml"
	}
	// Generations must feed the same registry /metrics serves.
	if m != nil && gen.Metrics() == nil {
		gen.WithMetrics(m)
	}
	return &Handler{
		generator: gen,
		store:     store,
		metrics:   m,
		options:   options,
	}
}

// SitemapXML serves the latest generated sitemap, generating one on the
// first request.
func (h *Handler) SitemapXML(c *gin.Context) {
	gen, err := h.generator.LatestOrRun(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate sitemap"})
		return
	}

	c.Header("Last-Modified", gen.GeneratedAt.UTC().Format(http.TimeFormat))
	c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(gen.XML))
}

func (h *Handler) RobotsTxt(c *gin.Context) {
	body := sitemap.RobotsTxt(h.options.Site.BaseURL, h.options.SitemapPath, h.options.Disallow)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}

func (h *Handler) ListEntries(c *gin.Context) {
	entries, err := h.generator.Entries()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  entries,
		"count": len(entries),
	})
}

// ValidateSitemap builds a fresh entry set and reports on it without
// storing anything.
func (h *Handler) ValidateSitemap(c *gin.Context) {
	entries, err := h.generator.Entries()
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, sitemap.Validate(entries))
}

func (h *Handler) GenerateSitemap(c *gin.Context) {
	gen, err := h.generator.Run(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate sitemap"})
		return
	}

	c.JSON(http.StatusCreated, gen)
}

func (h *Handler) ListGenerations(c *gin.Context) {
	page, limit := getPaginationParams(c)
	offset := (page - 1) * limit

	generations, err := h.store.ListGenerations(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch generations"})
		return
	}

	if generations == nil {
		generations = []*models.Generation{}
	}

	c.JSON(http.StatusOK, PaginationResponse{
		Data:  generations,
		Page:  page,
		Limit: limit,
	})
}

// GetGeneration returns one stored generation as JSON, or its document
// with ?format=xml.
func (h *Handler) GetGeneration(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid generation ID"})
		return
	}

	gen, err := h.store.GetGeneration(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to fetch generation"})
		return
	}

	if gen == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Generation not found"})
		return
	}

	if c.Query("format") == "xml" {
		c.Data(http.StatusOK, "application/xml; charset=utf-8", []byte(gen.XML))
		return
	}

	c.JSON(http.StatusOK, gen)
}

// Utility functions
func getPaginationParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "10"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}

	return page, limit
}
