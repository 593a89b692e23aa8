package services

import (
	"context"

	"github.com/modflowai/mfai-mcp-server/pkg/models"
)

// EmbeddingClient turns text into a fixed-dimension vector. It is an optional
// capability: deployments without embedding credentials run without one.
type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CompletionClient invokes the summarization provider. Temperature and the
// output-token cap are chosen by the caller; compression always uses
// temperature zero and the compression ceiling.
type CompletionClient interface {
	Complete(ctx context.Context, prompt string, temperature float32, maxTokens int) (string, error)
}

// DocumentSearcher finds the single best-matching document for a query, or
// nil when the repository has no match.
type DocumentSearcher interface {
	Search(ctx context.Context, repositoryName, query string, searchType models.SearchType) (*models.IndexedDocument, error)
}

// DocumentCompressor reduces an oversized document to fit the token budget.
type DocumentCompressor interface {
	Compress(ctx context.Context, doc *models.IndexedDocument, repositoryName string, originalTokens int, query, context string) (string, error)
}

// NavigationGuides supplies the per-repository fallback text used when a
// search yields nothing.
type NavigationGuides interface {
	GetNavigationGuide(ctx context.Context, repositoryName string) string
}
