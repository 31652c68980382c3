package dto

import (
	"time"

	"github.com/google/uuid"
)

type IngestDocumentRequest struct {
	DocId          *uuid.UUID `json:"doc_id"`
	Filename       string     `json:"filename" validate:"required"`
	Content        string     `json:"raw_text" validate:"required"`
	DocType        string     `json:"doc_type"`
	AuthorityLevel string     `json:"authority_level"`
}

type IngestDocumentResponse struct {
	DocId      uuid.UUID `json:"doc_id"`
	Filename   string    `json:"filename"`
	ChunkCount int       `json:"chunk_count"`
	Replaced   bool      `json:"replaced"`
}

type DocumentMetaResponse struct {
	DocId          uuid.UUID `json:"doc_id"`
	Filename       string    `json:"filename"`
	DocType        string    `json:"doc_type"`
	AuthorityLevel string    `json:"authority_level"`
	ChunkCount     int       `json:"chunk_count"`
	CreatedAt      time.Time `json:"created_at"`
}

type SourceChunkResponse struct {
	DocId    uuid.UUID `json:"doc_id"`
	Filename string    `json:"filename"`
	ChunkId  int       `json:"chunk_id"`
	Content  string    `json:"content"`
}

type SemanticSearchRequest struct {
	Query  string      `json:"query" validate:"required"`
	DocIds []uuid.UUID `json:"doc_ids"`
	TopK   int         `json:"top_k"`
}

type SemanticSearchResult struct {
	DocId      uuid.UUID `json:"doc_id"`
	Filename   string    `json:"filename"`
	ChunkId    int       `json:"chunk_id"`
	Content    string    `json:"content"`
	Similarity float64   `json:"similarity"`
}

type SemanticSearchResponse struct {
	Query   string                 `json:"query"`
	Results []SemanticSearchResult `json:"results"`
}
