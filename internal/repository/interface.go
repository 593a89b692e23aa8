package repository

import (
	"context"

	"github.com/pgvector/pgvector-go"

	"github.com/modflowai/mfai-mcp-server/pkg/models"
)

// Store is the read-side contract over the repository catalog and its
// indexed documents.
type Store interface {
	// ListRepositories returns the catalog, ordered by repository name
	// ascending and bounded to ListLimit entries. When includeNavigation is
	// false the navigation guide and repository type are omitted from each
	// entry.
	ListRepositories(ctx context.Context, includeNavigation bool) ([]*models.Repository, error)

	// GetNavigationGuide returns the stored navigation guide for a
	// repository. A missing repository or a lookup failure both yield the
	// empty string; the guide is advisory and must never fail a retrieval.
	GetNavigationGuide(ctx context.Context, repositoryName string) string

	// SearchText runs a ranked full-text search restricted to one repository
	// and returns the single best match, or nil when nothing matches. The
	// query must already be in tsquery form.
	SearchText(ctx context.Context, repositoryName, tsquery string) (*models.IndexedDocument, error)

	// SearchSemantic returns the document nearest to the query embedding
	// within one repository, considering only documents that have an
	// embedding. Returns nil when the repository holds no embedded documents.
	SearchSemantic(ctx context.Context, repositoryName string, embedding pgvector.Vector) (*models.IndexedDocument, error)
}
