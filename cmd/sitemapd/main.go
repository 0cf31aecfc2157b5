package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/romangod6/dmv-sitemap/config"
	"github.com/romangod6/dmv-sitemap/internal/api"
	"github.com/romangod6/dmv-sitemap/internal/crawler"
	"github.com/romangod6/dmv-sitemap/internal/generator"
	"github.com/romangod6/dmv-sitemap/internal/metrics"
	"github.com/romangod6/dmv-sitemap/internal/registry"
	"github.com/romangod6/dmv-sitemap/internal/sitemap"
	"github.com/romangod6/dmv-sitemap/internal/storage"
)

func main() {
	configFile := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize storage
	store, err := storage.Open(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer store.Close()

	// Initialize database tables
	if err := store.Initialize(); err != nil {
		log.Fatalf("Failed to initialize database tables: %v", err)
	}

	reg, err := loadRegistry(cfg.Registry.Path)
	if err != nil {
		log.Fatalf("Failed to load location registry: %v", err)
	}
	log.Printf("Loaded %d service areas in %v", reg.Len(), reg.States())

	builder := sitemap.NewBuilder(cfg.Site.BaseURL)
	builder.CorePages = cfg.CorePages()
	builder.LegalPages = cfg.LegalPages()
	builder.Strict = cfg.Sitemap.Strict

	m := metrics.New()
	gen := generator.New(reg, builder, store, generator.Options{
		SitemapURL: cfg.SitemapURL(),
		Ping:       cfg.Sitemap.Ping,
		LogsDir:    cfg.Logs.Dir,
	}).
		WithPinger(sitemap.NewPinger(cfg.Sitemap.PingEndpoints, cfg.Audit.UserAgent)).
		WithMetrics(m)

	// Initialize API server
	server := api.NewServer(cfg.Server.Port, gen, store, m, api.Options{
		Site:            cfg.SiteInfo(),
		SitemapPath:     cfg.Sitemap.Path,
		Disallow:        cfg.Sitemap.Disallow,
		AuditSitemapURL: cfg.SitemapURL(),
		Audit: crawler.AuditorConfig{
			UserAgent:      cfg.Audit.UserAgent,
			AllowedDomains: cfg.Audit.AllowedDomains,
			Parallelism:    cfg.Audit.Parallelism,
			Delay:          cfg.GetAuditDelay(),
			Timeout:        cfg.GetAuditTimeout(),
			MaxPages:       cfg.Audit.MaxPages,
			MinWords:       cfg.Audit.MinWords,
		},
		Render:  cfg.Audit.Render,
		LogsDir: cfg.Logs.Dir,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Generate once at startup, then periodically
	if _, err := gen.Run(ctx); err != nil {
		log.Printf("Initial sitemap generation failed: %v", err)
	}

	ticker := time.NewTicker(cfg.GetRegenerateDuration())
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ticker.C:
				log.Println("Starting periodic sitemap generation...")
				if _, err := gen.Run(ctx); err != nil {
					log.Printf("Sitemap generation failed: %v", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	// Start the API server
	go func() {
		log.Printf("Starting API server on port %d", cfg.Server.Port)
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start API server: %v", err)
		}
	}()

	// Wait for shutdown
	waitForShutdown(cancel, server)
}

func loadRegistry(path string) (*registry.Registry, error) {
	if path == "" {
		return registry.Default()
	}
	return registry.Load(path)
}

func waitForShutdown(cancel context.CancelFunc, server *api.Server) {
	// Handle system signals for shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Println("Shutting down...")
	cancel()

	// Graceful server shutdown
	ctx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Error shutting down server: %v", err)
	}
	log.Println("Server shut down gracefully")
}
