package contract

import (
	"context"

	"ops-assistant-be/internal/entity"
	"ops-assistant-be/internal/repository/specification"
)

type GenerationRunRepository interface {
	Create(ctx context.Context, run *entity.GenerationRun) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.GenerationRun, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GenerationRun, error)
}
