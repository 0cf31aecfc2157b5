package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/romangod6/dmv-sitemap/internal/models"
)

// Metrics holds the sitemap service collectors on an isolated registry, so
// each test can build its own instance.
type Metrics struct {
	Registry *prometheus.Registry

	GenerationsTotal      *prometheus.CounterVec
	SitemapEntries        prometheus.Gauge
	ValidationIssues      prometheus.Gauge
	ValidationDuplicates  prometheus.Gauge
	LastGenerationSeconds prometheus.Gauge
	PingFailuresTotal     *prometheus.CounterVec

	AuditPagesWithIssues prometheus.Gauge

	RequestsTotal          *prometheus.CounterVec
	RequestDurationSeconds *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	reg.MustRegister(prometheus.NewGoCollector())
	reg.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		Registry: reg,

		GenerationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitemap_generations_total",
				Help: "Total sitemap generations by validation outcome.",
			},
			[]string{"result"},
		),
		SitemapEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sitemap_entries",
			Help: "Number of URLs in the latest sitemap.",
		}),
		ValidationIssues: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sitemap_validation_issues",
			Help: "Issues reported by the latest validation.",
		}),
		ValidationDuplicates: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sitemap_validation_duplicates",
			Help: "Duplicate URLs reported by the latest validation.",
		}),
		LastGenerationSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sitemap_last_generation_timestamp_seconds",
			Help: "Unix time of the latest generation.",
		}),
		PingFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitemap_ping_failures_total",
				Help: "Failed search engine pings by endpoint.",
			},
			[]string{"endpoint"},
		),
		AuditPagesWithIssues: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sitemap_audit_pages_with_issues",
			Help: "Published pages with problems in the latest audit.",
		}),
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitemap_http_requests_total",
				Help: "HTTP requests by route and status.",
			},
			[]string{"method", "route", "status"},
		),
		RequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sitemap_http_request_duration_seconds",
				Help:    "HTTP request latency by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	reg.MustRegister(
		m.GenerationsTotal,
		m.SitemapEntries,
		m.ValidationIssues,
		m.ValidationDuplicates,
		m.LastGenerationSeconds,
		m.PingFailuresTotal,
		m.AuditPagesWithIssues,
		m.RequestsTotal,
		m.RequestDurationSeconds,
	)

	return m
}

// ObserveGeneration records the outcome of one generation run.
func (m *Metrics) ObserveGeneration(gen *models.Generation) {
	result := "valid"
	if !gen.Validation.IsValid {
		result = "invalid"
	}
	m.GenerationsTotal.WithLabelValues(result).Inc()
	m.SitemapEntries.Set(float64(gen.EntryCount))
	m.ValidationIssues.Set(float64(len(gen.Validation.Issues)))
	m.ValidationDuplicates.Set(float64(len(gen.Validation.Duplicates)))
	m.LastGenerationSeconds.Set(float64(gen.GeneratedAt.Unix()))

	for _, p := range gen.Pings {
		if !p.OK {
			m.PingFailuresTotal.WithLabelValues(p.Endpoint).Inc()
		}
	}
}

func (m *Metrics) ObserveAudit(report *models.AuditReport) {
	m.AuditPagesWithIssues.Set(float64(report.PagesWithIssues))
}

// Handler returns an http.Handler that serves the Prometheus metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
