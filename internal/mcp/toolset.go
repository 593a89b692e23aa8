package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/modflowai/mfai-mcp-server/internal/tools"
	"github.com/modflowai/mfai-mcp-server/pkg/models"
)

// documentRetriever is the retrieval operation the toolset exposes.
type documentRetriever interface {
	Retrieve(ctx context.Context, req *models.RetrievalRequest) (*models.RetrievalResponse, error)
}

// repositoryLister is the catalog operation the toolset exposes.
type repositoryLister interface {
	ListRepositories(ctx context.Context, includeNavigation bool) ([]*models.Repository, error)
}

// NewToolSet builds the registrations for the server's two tools.
func NewToolSet(retriever documentRetriever, catalog repositoryLister) []tools.Registration {
	return []tools.Registration{
		{
			Tool: mcp.NewTool(
				"list_repositories_with_navigation",
				mcp.WithDescription("List indexed repositories, optionally with their navigation guides"),
				mcp.WithBoolean("include_navigation", mcp.DefaultBool(true), mcp.Description("Include each repository's navigation guide and type")),
			),
			Handler: listRepositoriesHandler(catalog),
		},
		{
			Tool: mcp.NewTool(
				"mfai_document_retrieval",
				mcp.WithDescription("Retrieve the best-matching document for a query, compressed to fit a token budget when oversized"),
				mcp.WithString("query", mcp.Required(), mcp.Description("The search query")),
				mcp.WithString("repository", mcp.Required(), mcp.Description("Name of the repository to search")),
				mcp.WithString("search_type", mcp.Required(), mcp.Enum("text", "semantic"), mcp.Description("Search strategy: ranked full-text or embedding similarity")),
				mcp.WithString("context", mcp.Description("Optional context guiding compression of oversized documents")),
			),
			Handler: documentRetrievalHandler(retriever),
		},
	}
}

func listRepositoriesHandler(catalog repositoryLister) tools.Handler {
	return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		includeNavigation := true
		if v, ok := args["include_navigation"].(bool); ok {
			includeNavigation = v
		}

		repositories, err := catalog.ListRepositories(ctx, includeNavigation)
		if err != nil {
			return nil, fmt.Errorf("failed to list repositories: %w", err)
		}

		return map[string]interface{}{"repositories": repositories}, nil
	}
}

func documentRetrievalHandler(retriever documentRetriever) tools.Handler {
	return func(ctx context.Context, args map[string]interface{}) (interface{}, error) {
		query, _ := args["query"].(string)
		repository, _ := args["repository"].(string)
		searchType, _ := args["search_type"].(string)
		callerContext, _ := args["context"].(string)

		req := &models.RetrievalRequest{
			Query:      query,
			Repository: repository,
			SearchType: models.SearchType(searchType),
			Context:    callerContext,
		}
		return retriever.Retrieve(ctx, req)
	}
}
