package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type DocumentChunk struct {
	Id        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocId     uuid.UUID       `gorm:"type:uuid;not null;index:idx_doc_chunk,unique,priority:1"`
	ChunkId   int             `gorm:"not null;index:idx_doc_chunk,unique,priority:2"`
	Content   string          `gorm:"type:text;not null"`
	Embedding pgvector.Vector `gorm:"type:vector(768)"` // width must match EMBEDDING_DIM (768 = nomic-embed-text)
	Position  int             `gorm:"default:0"`
	CreatedAt time.Time       `gorm:"autoCreateTime"`
}

func (DocumentChunk) TableName() string {
	return "document_chunks"
}
