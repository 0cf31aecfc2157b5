package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/romangod6/dmv-sitemap/internal/models"
)

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	// :memory: databases are per connection.
	db.SetMaxOpenConns(1)

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS generations (
            id TEXT PRIMARY KEY,
            generated_at DATETIME NOT NULL,
            entry_count INTEGER NOT NULL,
            is_valid BOOLEAN NOT NULL,
            duplicates TEXT,
            issues TEXT,
            total_urls INTEGER NOT NULL,
            unique_urls INTEGER NOT NULL,
            location_pages INTEGER NOT NULL,
            average_priority REAL NOT NULL,
            xml TEXT NOT NULL,
            pings TEXT,
            created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
        )`,
		`CREATE INDEX IF NOT EXISTS idx_generations_generated_at ON generations(generated_at)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", query, err)
		}
	}

	return nil
}

func (s *SQLiteStore) SaveGeneration(ctx context.Context, gen *models.Generation) error {
	query := `
        INSERT INTO generations (id, generated_at, entry_count, is_valid, duplicates, issues,
            total_urls, unique_urls, location_pages, average_priority, xml, pings, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
        ON CONFLICT(id) DO UPDATE SET
            is_valid = excluded.is_valid,
            duplicates = excluded.duplicates,
            issues = excluded.issues,
            pings = excluded.pings
    `

	duplicatesJSON, err := json.Marshal(gen.Validation.Duplicates)
	if err != nil {
		return err
	}
	issuesJSON, err := json.Marshal(gen.Validation.Issues)
	if err != nil {
		return err
	}
	pingsJSON, err := json.Marshal(gen.Pings)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, query,
		gen.ID.String(),
		gen.GeneratedAt.UTC(),
		gen.EntryCount,
		gen.Validation.IsValid,
		string(duplicatesJSON),
		string(issuesJSON),
		gen.Validation.Stats.TotalURLs,
		gen.Validation.Stats.UniqueURLs,
		gen.Validation.Stats.LocationPages,
		gen.Validation.Stats.AveragePriority,
		gen.XML,
		string(pingsJSON),
		gen.CreatedAt.UTC(),
	)

	return err
}

const sqliteGenerationColumns = `id, generated_at, entry_count, is_valid, duplicates, issues,
            total_urls, unique_urls, location_pages, average_priority, xml, pings, created_at`

func (s *SQLiteStore) GetGeneration(ctx context.Context, id uuid.UUID) (*models.Generation, error) {
	query := `SELECT ` + sqliteGenerationColumns + ` FROM generations WHERE id = ?`

	gens, err := s.queryGenerations(ctx, query, id.String())
	if err != nil {
		return nil, err
	}
	if len(gens) == 0 {
		return nil, nil
	}
	return gens[0], nil
}

func (s *SQLiteStore) LatestGeneration(ctx context.Context) (*models.Generation, error) {
	query := `SELECT ` + sqliteGenerationColumns + ` FROM generations ORDER BY generated_at DESC, created_at DESC LIMIT 1`

	gens, err := s.queryGenerations(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(gens) == 0 {
		return nil, nil
	}
	return gens[0], nil
}

func (s *SQLiteStore) ListGenerations(ctx context.Context, limit, offset int) ([]*models.Generation, error) {
	query := `
        SELECT ` + sqliteGenerationColumns + `
        FROM generations
        ORDER BY generated_at DESC, created_at DESC
        LIMIT ? OFFSET ?
    `

	return s.queryGenerations(ctx, query, limit, offset)
}

func (s *SQLiteStore) queryGenerations(ctx context.Context, query string, args ...interface{}) ([]*models.Generation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var gens []*models.Generation
	for rows.Next() {
		var gen models.Generation
		var idStr string
		var duplicatesJSON, issuesJSON, pingsJSON sql.NullString

		err := rows.Scan(
			&idStr,
			&gen.GeneratedAt,
			&gen.EntryCount,
			&gen.Validation.IsValid,
			&duplicatesJSON,
			&issuesJSON,
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

		gen.ID, err = uuid.Parse(idStr)
		if err != nil {
			return nil, fmt.Errorf("invalid generation id %q: %w", idStr, err)
		}
		if err := decodeGenerationJSON(&gen, duplicatesJSON.String, issuesJSON.String, pingsJSON.String); err != nil {
			return nil, err
		}

		gens = append(gens, &gen)
	}

	return gens, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// decodeGenerationJSON fills the JSON-encoded columns shared by both stores.
func decodeGenerationJSON(gen *models.Generation, duplicates, issues, pings string) error {
	gen.Validation.Duplicates = []string{}
	gen.Validation.Issues = []string{}

	if duplicates != "" && duplicates != "null" {
		if err := json.Unmarshal([]byte(duplicates), &gen.Validation.Duplicates); err != nil {
			return fmt.Errorf("invalid duplicates column: %w", err)
		}
	}
	if issues != "" && issues != "null" {
		if err := json.Unmarshal([]byte(issues), &gen.Validation.Issues); err != nil {
			return fmt.Errorf("invalid issues column: %w", err)
		}
	}
	if pings != "" && pings != "null" {
		if err := json.Unmarshal([]byte(pings), &gen.Pings); err != nil {
			return fmt.Errorf("invalid pings column: %w", err)
		}
	}
	return nil
}
