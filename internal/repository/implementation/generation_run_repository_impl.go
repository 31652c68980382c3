package implementation

import (
	"context"
	"errors"

	"ops-assistant-be/internal/entity"
	"ops-assistant-be/internal/mapper"
	"ops-assistant-be/internal/model"
	"ops-assistant-be/internal/repository/contract"
	"ops-assistant-be/internal/repository/specification"

	"gorm.io/gorm"
)

type GenerationRunRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.GenerationRunMapper
}

func NewGenerationRunRepository(db *gorm.DB) contract.GenerationRunRepository {
	return &GenerationRunRepositoryImpl{
		db:     db,
		mapper: mapper.NewGenerationRunMapper(),
	}
}

func (r *GenerationRunRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *GenerationRunRepositoryImpl) Create(ctx context.Context, run *entity.GenerationRun) error {
	m := r.mapper.ToModel(run)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*run = *r.mapper.ToEntity(m)
	return nil
}

func (r *GenerationRunRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.GenerationRun, error) {
	var m model.GenerationRun
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *GenerationRunRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GenerationRun, error) {
	var models []*model.GenerationRun
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	runs := make([]*entity.GenerationRun, len(models))
	for i, m := range models {
		runs[i] = r.mapper.ToEntity(m)
	}
	return runs, nil
}
