package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/romangod6/dmv-sitemap/internal/generator"
	"github.com/romangod6/dmv-sitemap/internal/metrics"
	"github.com/romangod6/dmv-sitemap/internal/storage"
)

type Server struct {
	router *gin.Engine
	port   int
	server *http.Server
}

func NewServer(port int, gen *generator.Generator, store storage.Store, m *metrics.Metrics, options Options) *Server {
	router := gin.Default()

	// Setup CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(requestMetrics(m))

	handler := NewHandler(gen, store, m, options)

	// Public files
	router.GET(handler.options.SitemapPath, handler.SitemapXML)
	router.GET("/robots.txt", handler.RobotsTxt)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})

		sitemaps := api.Group("/sitemap")
		{
			sitemaps.GET("/entries", handler.ListEntries)
			sitemaps.GET("/validate", handler.ValidateSitemap)
			sitemaps.POST("/generate", handler.GenerateSitemap)
			sitemaps.GET("/generations", handler.ListGenerations)
			sitemaps.GET("/generations/:id", handler.GetGeneration)
		}

		locations := api.Group("/locations")
		{
			locations.GET("", handler.ListLocations)
			locations.GET("/zip/:zip", handler.GetLocationByZip)
			locations.GET("/:slug", handler.GetLocation)
			locations.GET("/:slug/nearby", handler.GetNearbyLocations)
			locations.GET("/:slug/page", handler.GetLocationPage)
		}

		audits := api.Group("/audit")
		{
			audits.POST("", handler.StartAudit)
			audits.GET("/latest", handler.GetLatestAudit)
		}
	}

	return &Server{
		router: router,
		port:   port,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// requestMetrics counts requests by matched route, so unknown paths share
// one label value.
func requestMetrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.RequestsTotal.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.RequestDurationSeconds.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
