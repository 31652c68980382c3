package mapper

import (
	"encoding/json"

	"ops-assistant-be/internal/entity"
	"ops-assistant-be/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type GenerationRunMapper struct{}

func NewGenerationRunMapper() *GenerationRunMapper {
	return &GenerationRunMapper{}
}

func (m *GenerationRunMapper) ToEntity(r *model.GenerationRun) *entity.GenerationRun {
	if r == nil {
		return nil
	}

	var docIds []uuid.UUID
	// Stored by ToModel, so the payload is always a valid uuid array.
	_ = json.Unmarshal(r.DocIds, &docIds)

	return &entity.GenerationRun{
		Id:           r.Id,
		DocIds:       docIds,
		OutputKind:   r.OutputKind,
		Status:       r.Status,
		Document:     []byte(r.Document),
		Verification: []byte(r.Verification),
		ErrorMessage: r.ErrorMessage,
		CreatedAt:    r.CreatedAt,
	}
}

func (m *GenerationRunMapper) ToModel(r *entity.GenerationRun) *model.GenerationRun {
	if r == nil {
		return nil
	}

	docIdsJson, _ := json.Marshal(r.DocIds)

	return &model.GenerationRun{
		Id:           r.Id,
		DocIds:       datatypes.JSON(docIdsJson),
		OutputKind:   r.OutputKind,
		Status:       r.Status,
		Document:     datatypes.JSON(r.Document),
		Verification: datatypes.JSON(r.Verification),
		ErrorMessage: r.ErrorMessage,
		CreatedAt:    r.CreatedAt,
	}
}
