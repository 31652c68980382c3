package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByDocId filters chunks by their parent document
type ByDocId struct {
	DocId uuid.UUID
}

func (s ByDocId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("doc_id = ?", s.DocId)
}

// ByDocIds filters chunks by a document set
type ByDocIds struct {
	DocIds []uuid.UUID
}

func (s ByDocIds) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("doc_id IN ?", s.DocIds)
}

// ByChunkId filters by the per-document chunk sequence number
type ByChunkId struct {
	ChunkId int
}

func (s ByChunkId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chunk_id = ?", s.ChunkId)
}

// InReadingOrder orders chunks by source reading order
type InReadingOrder struct{}

func (s InReadingOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("doc_id ASC, chunk_id ASC")
}
