package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/user/facility-scraper/internal/repository"
)

// StoreImpl provides a concrete implementation for the DocumentStore
// interface using a single jsonb documents table in PostgreSQL.
type StoreImpl struct {
	db *pgxpool.Pool
}

// NewStore creates a new instance of StoreImpl.
func NewStore(db *pgxpool.Pool) *StoreImpl {
	return &StoreImpl{db: db}
}

// EnsureSchema creates the documents table if it does not exist yet.
func (s *StoreImpl) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS documents (
			key        TEXT PRIMARY KEY,
			body       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
	`
	_, err := s.db.Exec(ctx, query)
	return err
}

// Read unmarshals the document stored under key into v.
func (s *StoreImpl) Read(ctx context.Context, key string, v any) error {
	query := `SELECT body FROM documents WHERE key = $1;`

	var body []byte
	err := s.db.QueryRow(ctx, query, key).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return repository.ErrDocumentNotFound
	}
	if err != nil {
		return fmt.Errorf("read document %q: %w", key, err)
	}
	return json.Unmarshal(body, v)
}

// Write upserts the document stored under key.
func (s *StoreImpl) Write(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal document %q: %w", key, err)
	}

	query := `
		INSERT INTO documents (key, body, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET
			body = EXCLUDED.body,
			updated_at = NOW();
	`
	_, err = s.db.Exec(ctx, query, key, data)
	return err
}
