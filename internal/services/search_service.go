package services

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/pgvector/pgvector-go"

	"github.com/modflowai/mfai-mcp-server/internal/logging"
	"github.com/modflowai/mfai-mcp-server/pkg/models"
)

// documentIndex is the slice of the repository store the search service uses.
type documentIndex interface {
	SearchText(ctx context.Context, repositoryName, tsquery string) (*models.IndexedDocument, error)
	SearchSemantic(ctx context.Context, repositoryName string, embedding pgvector.Vector) (*models.IndexedDocument, error)
}

type searchFunc func(ctx context.Context, repositoryName, query string) (*models.IndexedDocument, error)

// SearchService resolves a retrieval request's strategy to a single
// best-matching document. The strategy table is fixed at construction: when
// no embedding client is configured, the semantic entry points at the text
// strategy so callers may still request semantic search.
type SearchService struct {
	index      documentIndex
	strategies map[models.SearchType]searchFunc
}

// NewSearchService creates a new SearchService. embedder may be nil.
func NewSearchService(index documentIndex, embedder EmbeddingClient, logger *logging.Logger) *SearchService {
	s := &SearchService{index: index}

	s.strategies = map[models.SearchType]searchFunc{
		models.SearchTypeText: s.searchText,
	}
	if embedder != nil {
		s.strategies[models.SearchTypeSemantic] = s.semanticSearcher(embedder)
	} else {
		logger.Warn("no embedding client configured; semantic search degrades to text search")
		s.strategies[models.SearchTypeSemantic] = s.searchText
	}

	return s
}

// Search returns the single best match for the query, or nil when the
// repository has no matching document.
func (s *SearchService) Search(ctx context.Context, repositoryName, query string, searchType models.SearchType) (*models.IndexedDocument, error) {
	strategy, ok := s.strategies[searchType]
	if !ok {
		return nil, &ValidationError{Msg: fmt.Sprintf("unknown search type %q", searchType)}
	}
	return strategy(ctx, repositoryName, query)
}

func (s *SearchService) searchText(ctx context.Context, repositoryName, query string) (*models.IndexedDocument, error) {
	tsquery, err := buildTSQuery(query)
	if err != nil {
		return nil, err
	}
	doc, err := s.index.SearchText(ctx, repositoryName, tsquery)
	if err != nil {
		return nil, fmt.Errorf("text search failed: %w", err)
	}
	return doc, nil
}

func (s *SearchService) semanticSearcher(embedder EmbeddingClient) searchFunc {
	return func(ctx context.Context, repositoryName, query string) (*models.IndexedDocument, error) {
		if len(queryTerms(query)) == 0 {
			return nil, &ValidationError{Msg: "query must contain at least one searchable term"}
		}
		vector, err := embedder.Embed(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("query embedding failed: %w", err)
		}
		doc, err := s.index.SearchSemantic(ctx, repositoryName, pgvector.NewVector(vector))
		if err != nil {
			return nil, fmt.Errorf("semantic search failed: %w", err)
		}
		return doc, nil
	}
}

// buildTSQuery turns a free-text query into a conjunctive prefix tsquery:
// every term must match, each as a prefix.
func buildTSQuery(query string) (string, error) {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return "", &ValidationError{Msg: "query must contain at least one searchable term"}
	}
	for i, term := range terms {
		terms[i] = term + ":*"
	}
	return strings.Join(terms, " & "), nil
}

// queryTerms splits a query into alphanumeric terms, dropping punctuation
// that would be special to the tsquery parser.
func queryTerms(query string) []string {
	return strings.FieldsFunc(query, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
