package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	RunStatusSucceeded = "succeeded"
	RunStatusFailed    = "failed"
)

// GenerationRun is the persisted audit record of one generation request.
// Document and Verification hold the final JSON payloads returned to the
// caller; they are never edited after the run completes.
type GenerationRun struct {
	Id           uuid.UUID
	DocIds       []uuid.UUID
	OutputKind   string
	Status       string
	Document     []byte
	Verification []byte
	ErrorMessage string
	CreatedAt    time.Time
}
