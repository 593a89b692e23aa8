package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/modflowai/mfai-mcp-server/internal/budget"
	"github.com/modflowai/mfai-mcp-server/internal/logging"
	"github.com/modflowai/mfai-mcp-server/pkg/models"
)

// NavigationGuideSource is the sources entry used when a retrieval falls back
// to the repository's navigation guide.
const NavigationGuideSource = "Navigation Guide"

// retrievalState enumerates the orchestration steps of one retrieval:
//
//	searching -> {emptyFallback | sizeCheck} -> {passThrough | compressing} -> done
type retrievalState int

const (
	stateSearching retrievalState = iota
	stateEmptyFallback
	stateSizeCheck
	statePassThrough
	stateCompressing
	stateDone
)

// RetrievalService orchestrates search, the token budget check, and optional
// compression or navigation-guide fallback into one retrieval operation.
type RetrievalService struct {
	searcher   DocumentSearcher
	compressor DocumentCompressor
	guides     NavigationGuides
	logger     *logging.Logger
}

// NewRetrievalService creates a new RetrievalService.
func NewRetrievalService(searcher DocumentSearcher, compressor DocumentCompressor, guides NavigationGuides, logger *logging.Logger) *RetrievalService {
	return &RetrievalService{
		searcher:   searcher,
		compressor: compressor,
		guides:     guides,
		logger:     logger,
	}
}

// retrieval carries the evolving state of one request through the state
// machine. Every response is built fresh from the request's own inputs.
type retrieval struct {
	req      *models.RetrievalRequest
	doc      *models.IndexedDocument
	tokens   int
	response *models.RetrievalResponse
}

// Retrieve runs the retrieval state machine for one request. Requests are
// validated before any I/O; upstream failures abort the request without a
// partial result.
func (s *RetrievalService) Retrieve(ctx context.Context, req *models.RetrievalRequest) (*models.RetrievalResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	r := &retrieval{req: req}
	state := stateSearching
	for state != stateDone {
		var err error
		switch state {
		case stateSearching:
			state, err = s.search(ctx, r)
		case stateEmptyFallback:
			state = s.emptyFallback(ctx, r)
		case stateSizeCheck:
			state = s.sizeCheck(r)
		case statePassThrough:
			state = s.passThrough(r)
		case stateCompressing:
			state, err = s.compress(ctx, r)
		}
		if err != nil {
			return nil, err
		}
	}
	return r.response, nil
}

func validateRequest(req *models.RetrievalRequest) error {
	if strings.TrimSpace(req.Query) == "" {
		return &ValidationError{Msg: "query must not be empty"}
	}
	if req.Repository == "" {
		return &ValidationError{Msg: "repository must not be empty"}
	}
	if !req.SearchType.Valid() {
		return &ValidationError{Msg: fmt.Sprintf("unknown search type %q", req.SearchType)}
	}
	return nil
}

func (s *RetrievalService) search(ctx context.Context, r *retrieval) (retrievalState, error) {
	doc, err := s.searcher.Search(ctx, r.req.Repository, r.req.Query, r.req.SearchType)
	if err != nil {
		return stateDone, err
	}
	if doc == nil {
		return stateEmptyFallback, nil
	}
	r.doc = doc
	return stateSizeCheck, nil
}

func (s *RetrievalService) emptyFallback(ctx context.Context, r *retrieval) retrievalState {
	content := s.guides.GetNavigationGuide(ctx, r.req.Repository)
	if content == "" {
		content = fmt.Sprintf("No documents found for query %q in repository %q. Try broader terms.", r.req.Query, r.req.Repository)
	}
	r.response = &models.RetrievalResponse{
		Content:       content,
		Sources:       []string{NavigationGuideSource},
		TokenCount:    budget.Estimate(content),
		WasCompressed: false,
	}
	return stateDone
}

func (s *RetrievalService) sizeCheck(r *retrieval) retrievalState {
	r.tokens = budget.Estimate(r.doc.Content)
	if r.tokens < budget.PassThroughCeiling {
		return statePassThrough
	}
	return stateCompressing
}

func (s *RetrievalService) passThrough(r *retrieval) retrievalState {
	r.response = &models.RetrievalResponse{
		Content:       r.doc.Content,
		Sources:       []string{r.doc.Filename},
		TokenCount:    r.tokens,
		WasCompressed: false,
	}
	return stateDone
}

func (s *RetrievalService) compress(ctx context.Context, r *retrieval) (retrievalState, error) {
	s.logger.Info("compressing %s (%d tokens) from repository %s", r.doc.Filename, r.tokens, r.req.Repository)

	compressed, err := s.compressor.Compress(ctx, r.doc, r.req.Repository, r.tokens, r.req.Query, r.req.Context)
	if err != nil {
		// No fallback to the uncompressed document: an oversized response
		// would break the caller's budget contract.
		return stateDone, err
	}

	original := r.tokens
	r.response = &models.RetrievalResponse{
		Content:            compressed,
		Sources:            []string{r.doc.Filename},
		TokenCount:         budget.Estimate(compressed),
		WasCompressed:      true,
		OriginalTokenCount: &original,
	}
	return stateDone, nil
}
