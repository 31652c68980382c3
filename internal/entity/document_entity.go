package entity

import (
	"time"

	"github.com/google/uuid"
)

// Document is immutable after ingestion. Re-ingesting the same docId
// replaces the document and all of its chunks in one transaction.
type Document struct {
	Id             uuid.UUID
	Filename       string
	DocType        string
	AuthorityLevel string
	ChunkCount     int
	CreatedAt      time.Time
}
