package services

import (
	"context"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modflowai/mfai-mcp-server/internal/logging"
	"github.com/modflowai/mfai-mcp-server/pkg/models"
)

type fakeIndex struct {
	textQueries   []string
	vectorQueries int
	textResult    *models.IndexedDocument
	vectorResult  *models.IndexedDocument
}

func (f *fakeIndex) SearchText(ctx context.Context, repositoryName, tsquery string) (*models.IndexedDocument, error) {
	f.textQueries = append(f.textQueries, tsquery)
	return f.textResult, nil
}

func (f *fakeIndex) SearchSemantic(ctx context.Context, repositoryName string, embedding pgvector.Vector) (*models.IndexedDocument, error) {
	f.vectorQueries++
	return f.vectorResult, nil
}

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return f.vector, f.err
}

func TestBuildTSQuery(t *testing.T) {
	tsquery, err := buildTSQuery("PESTPP-IES ensemble smoother")
	require.NoError(t, err)
	assert.Equal(t, "PESTPP:* & IES:* & ensemble:* & smoother:*", tsquery)
}

func TestBuildTSQueryEmpty(t *testing.T) {
	var vErr *ValidationError

	_, err := buildTSQuery("   ")
	assert.ErrorAs(t, err, &vErr)

	_, err = buildTSQuery("?!,.")
	assert.ErrorAs(t, err, &vErr)
}

func TestTextSearch(t *testing.T) {
	index := &fakeIndex{textResult: &models.IndexedDocument{Filename: "doc.md"}}
	svc := NewSearchService(index, nil, logging.NewLogger())

	doc, err := svc.Search(context.Background(), "pestpp", "ensemble smoother", models.SearchTypeText)
	require.NoError(t, err)
	assert.Equal(t, "doc.md", doc.Filename)
	assert.Equal(t, []string{"ensemble:* & smoother:*"}, index.textQueries)
}

func TestSemanticSearchUsesEmbedding(t *testing.T) {
	index := &fakeIndex{vectorResult: &models.IndexedDocument{Filename: "vec.md"}}
	embedder := &fakeEmbedder{vector: []float32{0.1, 0.2, 0.3}}
	svc := NewSearchService(index, embedder, logging.NewLogger())

	doc, err := svc.Search(context.Background(), "pestpp", "ensemble smoother", models.SearchTypeSemantic)
	require.NoError(t, err)
	assert.Equal(t, "vec.md", doc.Filename)
	assert.Equal(t, 1, index.vectorQueries)
	assert.Empty(t, index.textQueries)
}

func TestSemanticFallsBackToTextWithoutEmbedder(t *testing.T) {
	query := "ensemble smoother"

	withFallback := &fakeIndex{textResult: &models.IndexedDocument{Filename: "doc.md"}}
	svc := NewSearchService(withFallback, nil, logging.NewLogger())
	viaSemantic, err := svc.Search(context.Background(), "pestpp", query, models.SearchTypeSemantic)
	require.NoError(t, err)

	direct := &fakeIndex{textResult: &models.IndexedDocument{Filename: "doc.md"}}
	svc = NewSearchService(direct, nil, logging.NewLogger())
	viaText, err := svc.Search(context.Background(), "pestpp", query, models.SearchTypeText)
	require.NoError(t, err)

	// Fallback equivalence: the degraded semantic search behaves exactly
	// like a text search for the same query.
	assert.Equal(t, viaText, viaSemantic)
	assert.Equal(t, direct.textQueries, withFallback.textQueries)
	assert.Zero(t, withFallback.vectorQueries)
}

func TestUnknownSearchType(t *testing.T) {
	svc := NewSearchService(&fakeIndex{}, nil, logging.NewLogger())

	var vErr *ValidationError
	_, err := svc.Search(context.Background(), "pestpp", "query", models.SearchType("hybrid"))
	assert.ErrorAs(t, err, &vErr)
}

func TestNoMatchReturnsNil(t *testing.T) {
	svc := NewSearchService(&fakeIndex{}, nil, logging.NewLogger())

	doc, err := svc.Search(context.Background(), "pestpp", "xyzzy", models.SearchTypeText)
	require.NoError(t, err)
	assert.Nil(t, doc)
}
