package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creation is owned by the ingestion pipeline in production; this
// exists for the seed command and integration tests.
const schemaSQL = `
CREATE EXTENSION IF NOT EXISTS vector;

CREATE TABLE IF NOT EXISTS repositories (
	id UUID PRIMARY KEY,
	name TEXT NOT NULL UNIQUE,
	url TEXT NOT NULL DEFAULT '',
	file_count INT NOT NULL DEFAULT 0,
	metadata JSONB NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS repository_files (
	id UUID PRIMARY KEY,
	repo_id UUID NOT NULL REFERENCES repositories(id) ON DELETE CASCADE,
	filepath TEXT NOT NULL,
	filename TEXT NOT NULL,
	content TEXT NOT NULL,
	content_tsv TSVECTOR GENERATED ALWAYS AS (to_tsvector('english', content)) STORED,
	embedding VECTOR(1536),
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (repo_id, filepath)
);

CREATE INDEX IF NOT EXISTS repository_files_tsv_idx
	ON repository_files USING GIN (content_tsv);
`

// EnsureSchema creates the catalog tables and the pgvector extension if they
// do not already exist.
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, schemaSQL)
	return err
}
