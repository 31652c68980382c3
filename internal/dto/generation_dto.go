package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"ops-assistant-be/pkg/rag"
)

type GenerateOptions struct {
	Style       string `json:"style"`
	IncludeRaci bool   `json:"include_raci"`
}

type GenerateRequest struct {
	DocIds     []uuid.UUID     `json:"doc_ids" validate:"required,min=1"`
	OutputKind string          `json:"output_kind" validate:"required,oneof=sop process"`
	Options    GenerateOptions `json:"options"`
}

type GenerateResponse struct {
	RunId        uuid.UUID              `json:"run_id"`
	Document     *rag.GeneratedDocument `json:"document"`
	Verification rag.VerificationReport `json:"verification"`
}

type GenerationRunResponse struct {
	RunId        uuid.UUID       `json:"run_id"`
	DocIds       []uuid.UUID     `json:"doc_ids"`
	OutputKind   string          `json:"output_kind"`
	Status       string          `json:"status"`
	Document     json.RawMessage `json:"document,omitempty"`
	Verification json.RawMessage `json:"verification,omitempty"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

// PublishDocumentIngestedMessage is the payload published on the ingestion
// topic after a document's chunks are committed.
type PublishDocumentIngestedMessage struct {
	DocId      uuid.UUID `json:"doc_id"`
	Filename   string    `json:"filename"`
	ChunkCount int       `json:"chunk_count"`
	Replaced   bool      `json:"replaced"`
}
