package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type GenerationRun struct {
	Id           uuid.UUID      `gorm:"type:uuid;primaryKey"`
	DocIds       datatypes.JSON `gorm:"not null"`
	OutputKind   string         `gorm:"not null;index"`
	Status       string         `gorm:"not null"`
	Document     datatypes.JSON
	Verification datatypes.JSON
	ErrorMessage string
	CreatedAt    time.Time `gorm:"autoCreateTime;index"`
}

func (GenerationRun) TableName() string {
	return "generation_runs"
}
