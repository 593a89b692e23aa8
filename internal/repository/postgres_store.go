package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/modflowai/mfai-mcp-server/internal/logging"
	"github.com/modflowai/mfai-mcp-server/pkg/models"
)

// ListLimit bounds the number of repositories a single listing returns.
const ListLimit = 50

// PostgresStore is a PostgreSQL implementation of the Store interface.
type PostgresStore struct {
	db     *pgxpool.Pool
	logger *logging.Logger
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(db *pgxpool.Pool, logger *logging.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

// ListRepositories returns up to ListLimit repositories ordered by name.
func (s *PostgresStore) ListRepositories(ctx context.Context, includeNavigation bool) ([]*models.Repository, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, name, url, file_count,
		       metadata->>'navigation_guide',
		       metadata->>'repository_type',
		       created_at, updated_at
		FROM repositories
		ORDER BY name ASC
		LIMIT $1`, ListLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var repositories []*models.Repository
	for rows.Next() {
		var repo models.Repository
		var guide, repoType *string
		if err := rows.Scan(&repo.ID, &repo.Name, &repo.URL, &repo.FileCount,
			&guide, &repoType, &repo.CreatedAt, &repo.UpdatedAt); err != nil {
			return nil, err
		}
		if includeNavigation {
			repo.NavigationGuide = guide
			repo.RepositoryType = repoType
		}
		repositories = append(repositories, &repo)
	}
	return repositories, rows.Err()
}

// GetNavigationGuide returns the repository's stored navigation guide, or ""
// when the repository is unknown, has no guide, or the lookup fails.
func (s *PostgresStore) GetNavigationGuide(ctx context.Context, repositoryName string) string {
	var guide *string
	err := s.db.QueryRow(ctx,
		`SELECT metadata->>'navigation_guide' FROM repositories WHERE name = $1`,
		repositoryName).Scan(&guide)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			s.logger.Warn("navigation guide lookup failed for %q: %v", repositoryName, err)
		}
		return ""
	}
	if guide == nil {
		return ""
	}
	return *guide
}

// SearchText returns the highest-ranked full-text match within a repository.
func (s *PostgresStore) SearchText(ctx context.Context, repositoryName, tsquery string) (*models.IndexedDocument, error) {
	var doc models.IndexedDocument
	err := s.db.QueryRow(ctx, `
		SELECT f.id, f.filepath, f.filename, f.content,
		       ts_rank(f.content_tsv, query) AS rank
		FROM repository_files f
		JOIN repositories r ON r.id = f.repo_id,
		     to_tsquery('english', $2) query
		WHERE r.name = $1 AND f.content_tsv @@ query
		ORDER BY rank DESC
		LIMIT 1`, repositoryName, tsquery).
		Scan(&doc.ID, &doc.Filepath, &doc.Filename, &doc.Content, &doc.RelevanceScore)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}

// SearchSemantic returns the document nearest to the query embedding. The
// relevance score is reported as similarity (1 - cosine distance), which is
// not on the same scale as full-text rank.
func (s *PostgresStore) SearchSemantic(ctx context.Context, repositoryName string, embedding pgvector.Vector) (*models.IndexedDocument, error) {
	var doc models.IndexedDocument
	err := s.db.QueryRow(ctx, `
		SELECT f.id, f.filepath, f.filename, f.content,
		       1 - (f.embedding <=> $2) AS similarity
		FROM repository_files f
		JOIN repositories r ON r.id = f.repo_id
		WHERE r.name = $1 AND f.embedding IS NOT NULL
		ORDER BY f.embedding <=> $2
		LIMIT 1`, repositoryName, embedding).
		Scan(&doc.ID, &doc.Filepath, &doc.Filename, &doc.Content, &doc.RelevanceScore)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &doc, nil
}
