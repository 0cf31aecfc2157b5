package generator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/romangod6/dmv-sitemap/internal/metrics"
	"github.com/romangod6/dmv-sitemap/internal/models"
	"github.com/romangod6/dmv-sitemap/internal/registry"
	"github.com/romangod6/dmv-sitemap/internal/sitemap"
	"github.com/romangod6/dmv-sitemap/internal/storage"
	"github.com/romangod6/dmv-sitemap/internal/utils"
)

// ErrNoGeneration is returned when no sitemap has been generated yet.
var ErrNoGeneration = errors.New("no sitemap generated yet")

type Options struct {
	// SitemapURL is the public address search engines are pinged with.
	SitemapURL string
	Ping       bool
	LogsDir    string
}

// Generator runs the build, validate, serialize, ping and persist pipeline
// and keeps the latest generation for serving.
type Generator struct {
	registry *registry.Registry
	builder  *sitemap.Builder
	store    storage.Store
	pinger   *sitemap.Pinger
	metrics  *metrics.Metrics
	options  Options

	runMu  sync.Mutex
	mu     sync.RWMutex
	latest *models.Generation
}

func New(reg *registry.Registry, builder *sitemap.Builder, store storage.Store, options Options) *Generator {
	return &Generator{
		registry: reg,
		builder:  builder,
		store:    store,
		options:  options,
	}
}

func (g *Generator) WithPinger(p *sitemap.Pinger) *Generator {
	g.pinger = p
	return g
}

func (g *Generator) WithMetrics(m *metrics.Metrics) *Generator {
	g.metrics = m
	return g
}

// Metrics returns the collectors runs report to, or nil.
func (g *Generator) Metrics() *metrics.Metrics {
	return g.metrics
}

func (g *Generator) Registry() *registry.Registry {
	return g.registry
}

// Entries builds a fresh entry set without persisting anything.
func (g *Generator) Entries() ([]models.SitemapEntry, error) {
	return g.builder.Build(g.registry.Records())
}

// Run generates, validates and stores a new sitemap. Runs are serialized.
// An invalid sitemap is still stored and served, but never pinged.
func (g *Generator) Run(ctx context.Context) (*models.Generation, error) {
	g.runMu.Lock()
	defer g.runMu.Unlock()

	logger, err := utils.NewRunLogger(g.options.LogsDir, "generation")
	if err != nil {
		return nil, err
	}
	defer logger.Close()

	entries, err := g.Entries()
	if err != nil {
		logger.LogError("Build failed: %v", err)
		return nil, fmt.Errorf("failed to build sitemap: %w", err)
	}
	logger.LogInfo("Built %d entries for %d locations", len(entries), g.registry.Len())

	var gen *models.Generation
	if len(entries) > 0 {
		gen = models.NewGeneration(entries[0].LastMod)
	} else {
		gen = models.NewGeneration(g.now())
	}
	gen.EntryCount = len(entries)
	gen.Validation = sitemap.Validate(entries)

	for _, dup := range gen.Validation.Duplicates {
		logger.LogError("Duplicate URL: %s", dup)
	}
	for _, issue := range gen.Validation.Issues {
		logger.LogError("Issue: %s", issue)
	}
	logger.LogInfo("Validation: valid=%t total=%d unique=%d locations=%d avgPriority=%.2f",
		gen.Validation.IsValid,
		gen.Validation.Stats.TotalURLs,
		gen.Validation.Stats.UniqueURLs,
		gen.Validation.Stats.LocationPages,
		gen.Validation.Stats.AveragePriority)

	gen.XML, err = sitemap.Serialize(entries)
	if err != nil {
		logger.LogError("Serialize failed: %v", err)
		return nil, err
	}

	if g.options.Ping && g.pinger != nil {
		if gen.Validation.IsValid {
			gen.Pings = g.pinger.Ping(ctx, g.options.SitemapURL)
			for _, p := range gen.Pings {
				if p.OK {
					logger.LogInfo("Pinged %s: %d", p.Endpoint, p.StatusCode)
				} else {
					logger.LogError("Ping %s failed: status=%d %s", p.Endpoint, p.StatusCode, p.Error)
				}
			}
		} else {
			logger.LogInfo("Skipping pings for invalid sitemap")
		}
	}

	if g.store != nil {
		if err := g.store.SaveGeneration(ctx, gen); err != nil {
			logger.LogError("Failed to save generation %s: %v", gen.ID, err)
			return nil, fmt.Errorf("failed to save generation: %w", err)
		}
	}

	g.mu.Lock()
	g.latest = gen
	g.mu.Unlock()

	if g.metrics != nil {
		g.metrics.ObserveGeneration(gen)
	}

	logger.LogInfo("Generation %s complete: %d entries", gen.ID, gen.EntryCount)
	return gen, nil
}

// Latest returns the most recent generation, falling back to the store after
// a restart. It returns ErrNoGeneration when nothing was generated.
func (g *Generator) Latest(ctx context.Context) (*models.Generation, error) {
	g.mu.RLock()
	latest := g.latest
	g.mu.RUnlock()
	if latest != nil {
		return latest, nil
	}

	if g.store == nil {
		return nil, ErrNoGeneration
	}

	gen, err := g.store.LatestGeneration(ctx)
	if err != nil {
		return nil, err
	}
	if gen == nil {
		return nil, ErrNoGeneration
	}

	g.mu.Lock()
	if g.latest == nil {
		g.latest = gen
	}
	g.mu.Unlock()

	return gen, nil
}

// LatestOrRun returns the latest generation, generating one if none exists.
func (g *Generator) LatestOrRun(ctx context.Context) (*models.Generation, error) {
	gen, err := g.Latest(ctx)
	if errors.Is(err, ErrNoGeneration) {
		return g.Run(ctx)
	}
	return gen, err
}

func (g *Generator) now() time.Time {
	if g.builder.Clock != nil {
		return g.builder.Clock().UTC()
	}
	return time.Now().UTC()
}
