package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentChunk is the smallest citable unit of a source document.
// ChunkId values are contiguous from 0 within a document and follow the
// source's reading order; chunks are never reordered or reused.
type DocumentChunk struct {
	Id        uuid.UUID
	DocId     uuid.UUID
	ChunkId   int
	Content   string
	Embedding []float32
	Position  int
	CreatedAt time.Time
}
