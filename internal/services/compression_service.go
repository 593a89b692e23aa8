package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/modflowai/mfai-mcp-server/internal/budget"
	"github.com/modflowai/mfai-mcp-server/pkg/models"
)

// CompressionService reduces oversized documents under the compression
// ceiling by asking the summarization provider for a relevance-weighted
// summary. Provider failures propagate: returning the uncompressed document
// would break the caller's token budget.
type CompressionService struct {
	completions CompletionClient
}

// NewCompressionService creates a new CompressionService.
func NewCompressionService(completions CompletionClient) *CompressionService {
	return &CompressionService{completions: completions}
}

// Compress returns a version of the document fitting the compression ceiling,
// weighted toward content relevant to the query and optional caller context.
func (c *CompressionService) Compress(ctx context.Context, doc *models.IndexedDocument, repositoryName string, originalTokens int, query, callerContext string) (string, error) {
	prompt := buildCompressionPrompt(doc, repositoryName, originalTokens, query, callerContext)

	// Temperature zero for reproducibility; the provider-side token cap is
	// the hard backstop behind the instruction's numeric ceiling.
	compressed, err := c.completions.Complete(ctx, prompt, 0, budget.CompressionCeiling)
	if err != nil {
		return "", fmt.Errorf("compression failed for %s: %w", doc.Filename, err)
	}
	return compressed, nil
}

func buildCompressionPrompt(doc *models.IndexedDocument, repositoryName string, originalTokens int, query, callerContext string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "You are compressing a document from the %q repository so it fits a strict token budget.\n\n", repositoryName)
	fmt.Fprintf(&b, "The document %q is approximately %d tokens. Produce a compressed version of AT MOST %d tokens.\n\n", doc.Filename, originalTokens, budget.CompressionCeiling)
	fmt.Fprintf(&b, "Weight content by relevance to this query: %s\n", query)
	if callerContext != "" {
		fmt.Fprintf(&b, "Additional context from the caller: %s\n", callerContext)
	}
	b.WriteString(`
Retention policy:
- Keep content that directly explains the topic in full.
- Keep tangentially relevant technical context in shortened form.
- Keep general background only as brief mentions.
- Drop sections unrelated to the query entirely.

Respond with only the compressed document body. No preamble, no commentary.

Document content:
`)
	b.WriteString(doc.Content)

	return b.String()
}
