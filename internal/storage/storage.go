package storage

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/romangod6/dmv-sitemap/internal/models"
)

type Store interface {
	Initialize() error
	Close() error

	// Generation operations
	SaveGeneration(ctx context.Context, gen *models.Generation) error
	GetGeneration(ctx context.Context, id uuid.UUID) (*models.Generation, error)
	ListGenerations(ctx context.Context, limit, offset int) ([]*models.Generation, error)
	LatestGeneration(ctx context.Context) (*models.Generation, error)
}

// Open picks the store implementation from the database URL. postgres:// and
// postgresql:// URLs use Postgres; anything else is a SQLite path.
func Open(databaseURL string) (Store, error) {
	if strings.HasPrefix(databaseURL, "postgres://") || strings.HasPrefix(databaseURL, "postgresql://") {
		return NewPostgresStore(databaseURL)
	}
	return NewSQLiteStore(strings.TrimPrefix(databaseURL, "sqlite://"))
}
