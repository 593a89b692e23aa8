package main

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	"github.com/spf13/cobra"

	"github.com/modflowai/mfai-mcp-server/internal/config"
	"github.com/modflowai/mfai-mcp-server/internal/logging"
	"github.com/modflowai/mfai-mcp-server/internal/repository"
	"github.com/modflowai/mfai-mcp-server/internal/services"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create the schema and load sample repositories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context())
		},
	}
}

type seedFile struct {
	Filepath string
	Filename string
	Content  string
}

type seedRepository struct {
	Name            string
	URL             string
	RepositoryType  string
	NavigationGuide string
	Files           []seedFile
}

var seedRepositories = []seedRepository{
	{
		Name:           "pestpp",
		URL:            "https://github.com/usgs/pestpp",
		RepositoryType: "documentation",
		NavigationGuide: "PEST++ parameter estimation suite. Search for tool names " +
			"(pestpp-ies, pestpp-glm, pestpp-sen) to find the relevant manual section. " +
			"Control-file keywords are documented per tool.",
		Files: []seedFile{
			{
				Filepath: "docs/pestpp-ies.md",
				Filename: "pestpp-ies.md",
				Content: "# PESTPP-IES\n\nPESTPP-IES is an iterative ensemble smoother " +
					"for history matching and uncertainty analysis. It propagates an " +
					"ensemble of parameter realizations through the model and updates " +
					"them against observations.\n",
			},
			{
				Filepath: "docs/pestpp-glm.md",
				Filename: "pestpp-glm.md",
				Content: "# PESTPP-GLM\n\nPESTPP-GLM implements gradient-based " +
					"Gauss-Levenberg-Marquardt parameter estimation with optional " +
					"first-order second-moment uncertainty analysis.\n",
			},
		},
	},
	{
		Name:           "modflow6",
		URL:            "https://github.com/MODFLOW-USGS/modflow6",
		RepositoryType: "documentation",
		NavigationGuide: "MODFLOW 6 hydrologic simulator. Packages are documented " +
			"one file per package; search by package acronym (WEL, RCH, SFR).",
		Files: []seedFile{
			{
				Filepath: "doc/mf6io/wel.md",
				Filename: "wel.md",
				Content: "# WEL Package\n\nThe Well (WEL) Package simulates specified " +
					"flux boundaries such as pumping or injection wells.\n",
			},
		},
	},
}

func runSeed(ctx context.Context) error {
	logger := logging.NewLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DB.Host, cfg.DB.Port, cfg.DB.User, cfg.DB.Password, cfg.DB.Name, cfg.DB.SSLMode,
	)
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := repository.EnsureSchema(ctx, pool); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	logger.Info("Schema ready")

	// Embeddings are optional in the seed as well: without a key, documents
	// are seeded for text search only.
	var embedder services.EmbeddingClient
	if cfg.Embedding.APIKey != "" {
		embedder = services.NewOpenAIEmbeddingClient(
			cfg.Embedding.BaseURL, cfg.Embedding.APIKey,
			cfg.Embedding.Model, cfg.Embedding.Dimensions)
	} else {
		logger.Warn("embedding.api_key not set; seeding without embeddings")
	}

	for _, repo := range seedRepositories {
		if err := seedOne(ctx, pool, embedder, repo, logger); err != nil {
			return fmt.Errorf("failed to seed %s: %w", repo.Name, err)
		}
	}

	logger.Info("Seeding complete!")
	return nil
}

func seedOne(ctx context.Context, pool *pgxpool.Pool, embedder services.EmbeddingClient, repo seedRepository, logger *logging.Logger) error {
	var repoID string
	err := pool.QueryRow(ctx, `
		INSERT INTO repositories (id, name, url, file_count, metadata)
		VALUES ($1, $2, $3, $4, jsonb_build_object('navigation_guide', $5::text, 'repository_type', $6::text))
		ON CONFLICT (name) DO UPDATE
			SET url = EXCLUDED.url,
			    file_count = EXCLUDED.file_count,
			    metadata = EXCLUDED.metadata,
			    updated_at = now()
		RETURNING id`,
		uuid.New().String(), repo.Name, repo.URL, len(repo.Files),
		repo.NavigationGuide, repo.RepositoryType).Scan(&repoID)
	if err != nil {
		return err
	}
	logger.Info("Seeded repository %s (%s)", repo.Name, repoID)

	for _, file := range repo.Files {
		var embedding interface{}
		if embedder != nil {
			vector, err := embedder.Embed(ctx, file.Content)
			if err != nil {
				return fmt.Errorf("embedding %s: %w", file.Filepath, err)
			}
			embedding = pgvector.NewVector(vector)
		}

		_, err := pool.Exec(ctx, `
			INSERT INTO repository_files (id, repo_id, filepath, filename, content, embedding)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (repo_id, filepath) DO UPDATE
				SET content = EXCLUDED.content,
				    embedding = EXCLUDED.embedding`,
			uuid.New().String(), repoID, file.Filepath, file.Filename, file.Content, embedding)
		if err != nil {
			return err
		}
		logger.Info("Seeded file %s/%s", repo.Name, file.Filepath)
	}
	return nil
}
