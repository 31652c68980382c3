package model

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Filename       string    `gorm:"not null"`
	DocType        string    `gorm:"not null;index"`
	AuthorityLevel string    `gorm:"default:'standard'"`
	ChunkCount     int       `gorm:"default:0"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (Document) TableName() string {
	return "documents"
}
