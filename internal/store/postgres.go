package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const documentsDDL = `
CREATE TABLE IF NOT EXISTS canteen_documents (
    doc_key    TEXT PRIMARY KEY,
    body       JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresBackend stores the document as one JSONB row keyed by doc_key.
// The pool is shared and owned by the caller.
type PostgresBackend struct {
	pool *pgxpool.Pool
	key  string
}

func NewPostgresBackend(ctx context.Context, pool *pgxpool.Pool, key string) (*PostgresBackend, error) {
	if key == "" {
		return nil, errors.New("postgres backend: empty document key")
	}
	if _, err := pool.Exec(ctx, documentsDDL); err != nil {
		return nil, fmt.Errorf("create canteen_documents: %w", err)
	}
	return &PostgresBackend{pool: pool, key: key}, nil
}

func (p *PostgresBackend) Read(ctx context.Context) ([]byte, error) {
	var body []byte
	err := p.pool.QueryRow(ctx, `SELECT body FROM canteen_documents WHERE doc_key = $1`, p.key).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select document: %w", err)
	}
	return body, nil
}

func (p *PostgresBackend) Write(ctx context.Context, data []byte) error {
	_, err := p.pool.Exec(ctx, `
INSERT INTO canteen_documents (doc_key, body, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (doc_key) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
		p.key, data)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

func (p *PostgresBackend) Close() error { return nil }
