package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/romangod6/dmv-sitemap/internal/models"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS generations (
            id UUID PRIMARY KEY,
            generated_at TIMESTAMPTZ NOT NULL,
            entry_count INTEGER NOT NULL,
            is_valid BOOLEAN NOT NULL,
            duplicates TEXT[],
            issues TEXT[],
            total_urls INTEGER NOT NULL,
            unique_urls INTEGER NOT NULL,
            location_pages INTEGER NOT NULL,
            average_priority DOUBLE PRECISION NOT NULL,
            xml TEXT NOT NULL,
            pings JSONB,
            created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE INDEX IF NOT EXISTS idx_generations_generated_at ON generations(generated_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_generations_issues ON generations USING GIN(issues)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	return nil
}

func (s *PostgresStore) SaveGeneration(ctx context.Context, gen *models.Generation) error {
	query := `
        INSERT INTO generations (id, generated_at, entry_count, is_valid, duplicates, issues,
            total_urls, unique_urls, location_pages, average_priority, xml, pings, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        ON CONFLICT (id) DO UPDATE SET
            is_valid = EXCLUDED.is_valid,
            duplicates = EXCLUDED.duplicates,
            issues = EXCLUDED.issues,
            pings = EXCLUDED.pings
    `

	pingsJSON, err := json.Marshal(gen.Pings)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query,
		gen.ID,
		gen.GeneratedAt,
		gen.EntryCount,
		gen.Validation.IsValid,
		pq.Array(gen.Validation.Duplicates),
		pq.Array(gen.Validation.Issues),
		gen.Validation.Stats.TotalURLs,
		gen.Validation.Stats.UniqueURLs,
		gen.Validation.Stats.LocationPages,
		gen.Validation.Stats.AveragePriority,
		gen.XML,
		pingsJSON,
		gen.CreatedAt,
	)

	return err
}

const postgresGenerationColumns = `id, generated_at, entry_count, is_valid, duplicates, issues,
            total_urls, unique_urls, location_pages, average_priority, xml, pings, created_at`

func (s *PostgresStore) GetGeneration(ctx context.Context, id uuid.UUID) (*models.Generation, error) {
	query := `SELECT ` + postgresGenerationColumns + ` FROM generations WHERE id = $1`

	gens, err := s.queryGenerations(ctx, query, id)
	if err != nil {
		return nil, err
	}
	if len(gens) == 0 {
		return nil, nil
	}
	return gens[0], nil
}

func (s *PostgresStore) LatestGeneration(ctx context.Context) (*models.Generation, error) {
	query := `SELECT ` + postgresGenerationColumns + ` FROM generations ORDER BY generated_at DESC, created_at DESC LIMIT 1`

	gens, err := s.queryGenerations(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(gens) == 0 {
		return nil, nil
	}
	return gens[0], nil
}

func (s *PostgresStore) ListGenerations(ctx context.Context, limit, offset int) ([]*models.Generation, error) {
	query := `
        SELECT ` + postgresGenerationColumns + `
        FROM generations
        ORDER BY generated_at DESC, created_at DESC
        LIMIT $1 OFFSET $2
    `

	return s.queryGenerations(ctx, query, limit, offset)
}

func (s *PostgresStore) queryGenerations(ctx context.Context, query string, args ...interface{}) ([]*models.Generation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gens []*models.Generation
	for rows.Next() {
		var gen models.Generation
		var pingsJSON []byte

		err := rows.Scan(
			&gen.ID,
			&gen.GeneratedAt,
			&gen.EntryCount,
			&gen.Validation.IsValid,
			pq.Array(&gen.Validation.Duplicates),
			pq.Array(&gen.Validation.Issues),
			&gen.Validation.Stats.TotalURLs,
			&gen.Validation.Stats.UniqueURLs,
			&gen.Validation.Stats.LocationPages,
			&gen.Validation.Stats.AveragePriority,
			&gen.XML,
			&pingsJSON,
			&gen.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if gen.Validation.Duplicates == nil {
			gen.Validation.Duplicates = []string{}
		}
		if gen.Validation.Issues == nil {
			gen.Validation.Issues = []string{}
		}
		if len(pingsJSON) > 0 {
			if err := json.Unmarshal(pingsJSON, &gen.Pings); err != nil {
				return nil, fmt.Errorf("invalid pings column: %w", err)
			}
		}

		gens = append(gens, &gen)
	}

	return gens, rows.Err()
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
