// Package models defines the domain models for the document retrieval service
package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// SearchType represents the search strategy to use
type SearchType string

const (
	SearchTypeText     SearchType = "text"
	SearchTypeSemantic SearchType = "semantic"
)

// Valid reports whether the search type is one the service knows how to run.
func (t SearchType) Valid() bool {
	return t == SearchTypeText || t == SearchTypeSemantic
}

// Repository represents an indexed repository in the catalog. Repositories
// are created and updated by the ingestion pipeline; the retrieval service
// only reads them.
type Repository struct {
	ID        string `json:"id" db:"id"`
	Name      string `json:"name" db:"name"`
	URL       string `json:"url" db:"url"`
	FileCount int    `json:"file_count" db:"file_count"`

	// Metadata fields, only populated when navigation details are requested
	NavigationGuide *string `json:"navigation_guide,omitempty"`
	RepositoryType  *string `json:"repository_type,omitempty"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IndexedDocument is a single file belonging to a repository. The relevance
// score is either a full-text rank or a vector similarity depending on which
// search strategy produced the document; the two scales are not comparable.
type IndexedDocument struct {
	ID             string  `json:"id" db:"id"`
	Filepath       string  `json:"filepath" db:"filepath"`
	Filename       string  `json:"filename" db:"filename"`
	Content        string  `json:"content" db:"content"`
	RelevanceScore float64 `json:"relevance_score"`

	// Vector embedding (not exposed in JSON)
	Embedding pgvector.Vector `json:"-" db:"embedding"`
}

// RetrievalRequest carries the caller's parameters for a document retrieval.
// The search type is always chosen by the caller, never inferred.
type RetrievalRequest struct {
	Query      string     `json:"query"`
	Repository string     `json:"repository"`
	SearchType SearchType `json:"search_type"`
	Context    string     `json:"context,omitempty"`
}

// RetrievalResponse is the result of a document retrieval. When the matched
// document had to be compressed, OriginalTokenCount records the size estimate
// before compression.
type RetrievalResponse struct {
	Content            string   `json:"content"`
	Sources            []string `json:"sources"`
	TokenCount         int      `json:"token_count"`
	WasCompressed      bool     `json:"was_compressed"`
	OriginalTokenCount *int     `json:"original_token_count,omitempty"`
}
