package repository

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/modflowai/mfai-mcp-server/internal/logging"
)

func TestPostgresStore(t *testing.T) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"pgvector/pgvector:pg16",
		postgres.WithDatabase("test-db"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2)),
	)
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	}()

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatal(err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatal(err)
	}
	defer pool.Close()

	require.NoError(t, EnsureSchema(ctx, pool))

	store := NewPostgresStore(pool, logging.NewLogger())

	// Shrink the vector column so the test can write embeddings by hand.
	_, err = pool.Exec(ctx, `ALTER TABLE repository_files ALTER COLUMN embedding TYPE VECTOR(3)`)
	require.NoError(t, err)

	pestppID := seedRepo(t, ctx, pool, "pestpp", `{"navigation_guide": "Search by tool name.", "repository_type": "documentation"}`)
	seedRepo(t, ctx, pool, "modflow6", `{}`)

	seedDoc(t, ctx, pool, pestppID, "docs/pestpp-ies.md", "pestpp-ies.md",
		"PESTPP-IES is an iterative ensemble smoother for history matching.")
	seedDoc(t, ctx, pool, pestppID, "docs/pestpp-glm.md", "pestpp-glm.md",
		"PESTPP-GLM implements gradient-based parameter estimation.")

	_, err = pool.Exec(ctx, `UPDATE repository_files SET embedding = $1 WHERE filename = 'pestpp-ies.md'`,
		pgvector.NewVector([]float32{1, 0, 0}))
	require.NoError(t, err)

	t.Run("ListRepositories", func(t *testing.T) {
		repos, err := store.ListRepositories(ctx, true)
		require.NoError(t, err)
		require.Len(t, repos, 2)

		// Ordered by name ascending
		assert.Equal(t, "modflow6", repos[0].Name)
		assert.Equal(t, "pestpp", repos[1].Name)

		require.NotNil(t, repos[1].NavigationGuide)
		assert.Equal(t, "Search by tool name.", *repos[1].NavigationGuide)
		require.NotNil(t, repos[1].RepositoryType)
		assert.Equal(t, "documentation", *repos[1].RepositoryType)
	})

	t.Run("ListRepositoriesWithoutNavigation", func(t *testing.T) {
		repos, err := store.ListRepositories(ctx, false)
		require.NoError(t, err)
		for _, repo := range repos {
			assert.Nil(t, repo.NavigationGuide)
			assert.Nil(t, repo.RepositoryType)
		}
	})

	t.Run("GetNavigationGuide", func(t *testing.T) {
		assert.Equal(t, "Search by tool name.", store.GetNavigationGuide(ctx, "pestpp"))
		assert.Empty(t, store.GetNavigationGuide(ctx, "modflow6"))
		assert.Empty(t, store.GetNavigationGuide(ctx, "does-not-exist"))
	})

	t.Run("SearchText", func(t *testing.T) {
		doc, err := store.SearchText(ctx, "pestpp", "ensemble:* & smoother:*")
		require.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, "pestpp-ies.md", doc.Filename)
		assert.Contains(t, doc.Content, "ensemble smoother")
		assert.Greater(t, doc.RelevanceScore, 0.0)
	})

	t.Run("SearchTextNoMatch", func(t *testing.T) {
		doc, err := store.SearchText(ctx, "pestpp", "xyzzy:*")
		require.NoError(t, err)
		assert.Nil(t, doc)
	})

	t.Run("SearchTextScopedToRepository", func(t *testing.T) {
		doc, err := store.SearchText(ctx, "modflow6", "ensemble:*")
		require.NoError(t, err)
		assert.Nil(t, doc)
	})

	t.Run("SearchSemantic", func(t *testing.T) {
		doc, err := store.SearchSemantic(ctx, "pestpp", pgvector.NewVector([]float32{1, 0, 0}))
		require.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, "pestpp-ies.md", doc.Filename)
		// Identical vectors: similarity 1 - distance is 1
		assert.InDelta(t, 1.0, doc.RelevanceScore, 1e-6)
	})

	t.Run("SearchSemanticOnlyEmbeddedRows", func(t *testing.T) {
		// pestpp-glm.md has no embedding and must never be returned
		doc, err := store.SearchSemantic(ctx, "pestpp", pgvector.NewVector([]float32{0, 1, 0}))
		require.NoError(t, err)
		require.NotNil(t, doc)
		assert.Equal(t, "pestpp-ies.md", doc.Filename)
	})
}

func seedRepo(t *testing.T, ctx context.Context, pool *pgxpool.Pool, name, metadata string) string {
	t.Helper()
	id := uuid.New().String()
	_, err := pool.Exec(ctx,
		`INSERT INTO repositories (id, name, url, file_count, metadata) VALUES ($1, $2, $3, 0, $4::jsonb)`,
		id, name, "https://example.com/"+name, metadata)
	require.NoError(t, err)
	return id
}

func seedDoc(t *testing.T, ctx context.Context, pool *pgxpool.Pool, repoID, filepath, filename, content string) string {
	t.Helper()
	id := uuid.New().String()
	_, err := pool.Exec(ctx,
		`INSERT INTO repository_files (id, repo_id, filepath, filename, content) VALUES ($1, $2, $3, $4, $5)`,
		id, repoID, filepath, filename, content)
	require.NoError(t, err)
	return id
}
