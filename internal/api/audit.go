package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/romangod6/dmv-sitemap/internal/crawler"
	"github.com/romangod6/dmv-sitemap/internal/models"
	"github.com/romangod6/dmv-sitemap/internal/utils"
)

const renderTimeout = 30 * time.Second

type AuditRequest struct {
	SitemapURL string `json:"sitemapUrl"`
}

type AuditStatus struct {
	Status string              `json:"status"`
	Report *models.AuditReport `json:"report,omitempty"`
	Error  string              `json:"error,omitempty"`
}

// StartAudit audits the published site in the background and answers 202.
// With ?wait=true it answers with the finished report instead.
func (h *Handler) StartAudit(c *gin.Context) {
	var req AuditRequest
	if c.Request.Body != nil && c.Request.Body != http.NoBody {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload"})
			return
		}
	}
	if req.SitemapURL == "" {
		req.SitemapURL = h.options.AuditSitemapURL
	}

	h.auditMu.Lock()
	if h.auditing {
		h.auditMu.Unlock()
		c.JSON(http.StatusConflict, ErrorResponse{Error: "An audit is already running"})
		return
	}
	h.auditing = true
	h.auditMu.Unlock()

	if c.Query("wait") == "true" {
		report, err := h.runAudit(c.Request.Context(), req.SitemapURL)
		if err != nil {
			c.JSON(http.StatusBadGateway, ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusOK, report)
		return
	}

	go func(sitemapURL string) {
		log.Printf("Starting audit of %s...", sitemapURL)
		if _, err := h.runAudit(context.Background(), sitemapURL); err != nil {
			log.Printf("Audit failed for %s: %v", sitemapURL, err)
			return
		}
		log.Printf("Audit completed for %s", sitemapURL)
	}(req.SitemapURL)

	c.JSON(http.StatusAccepted, AuditStatus{Status: "running"})
}

func (h *Handler) GetLatestAudit(c *gin.Context) {
	h.auditMu.Lock()
	status := AuditStatus{Report: h.latestAudit, Error: h.auditErr}
	switch {
	case h.auditing:
		status.Status = "running"
	case h.latestAudit == nil && h.auditErr == "":
		h.auditMu.Unlock()
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "No audit has run"})
		return
	case h.auditErr != "":
		status.Status = "error"
	default:
		status.Status = "completed"
	}
	h.auditMu.Unlock()

	c.JSON(http.StatusOK, status)
}

// runAudit performs one audit and records its outcome. The caller must
// have set h.auditing.
func (h *Handler) runAudit(ctx context.Context, sitemapURL string) (*models.AuditReport, error) {
	report, err := h.audit(ctx, sitemapURL)

	h.auditMu.Lock()
	h.auditing = false
	if err != nil {
		h.auditErr = err.Error()
	} else {
		h.auditErr = ""
		h.latestAudit = report
	}
	h.auditMu.Unlock()

	if err == nil && h.metrics != nil {
		h.metrics.ObserveAudit(report)
	}
	return report, err
}

func (h *Handler) audit(ctx context.Context, sitemapURL string) (*models.AuditReport, error) {
	logger, err := utils.NewRunLogger(h.options.LogsDir, "audit")
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Close()

	config := h.options.Audit
	logger.LogInfo("Starting audit of %s", sitemapURL)
	logger.LogInfo("  User Agent: %s", config.UserAgent)
	logger.LogInfo("  Allowed Domains: %v", config.AllowedDomains)
	logger.LogInfo("  Parallelism: %d, Delay: %s, Render: %t", config.Parallelism, config.Delay, h.options.Render)

	auditor := crawler.NewAuditor(&config).WithLogger(logger)
	if h.options.Render {
		renderer := crawler.NewChromeRenderer(ctx, config.UserAgent, renderTimeout)
		defer renderer.Close()
		auditor.WithRenderer(renderer)
	}

	report, err := auditor.Audit(ctx, sitemapURL)
	if err != nil {
		logger.LogError("Audit failed: %v", err)
		return nil, err
	}

	for _, page := range report.Pages {
		for _, problem := range page.Problems {
			logger.LogError("%s: %s", page.URL, problem)
		}
	}
	return report, nil
}
