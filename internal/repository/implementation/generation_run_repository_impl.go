package implementation

import (
	"context"
	"errors"

	"ai-botbuilder-be/internal/entity"
	"ai-botbuilder-be/internal/mapper"
	"ai-botbuilder-be/internal/model"
	"ai-botbuilder-be/internal/repository/contract"
	"ai-botbuilder-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GenerationRunRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BuilderMapper
}

func NewGenerationRunRepository(db *gorm.DB) contract.GenerationRunRepository {
	return &GenerationRunRepositoryImpl{
		db:     db,
		mapper: mapper.NewBuilderMapper(),
	}
}

func (r *GenerationRunRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *GenerationRunRepositoryImpl) Create(ctx context.Context, run *entity.GenerationRun) error {
	m := r.mapper.RunToModel(run)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*run = *r.mapper.RunToEntity(m)
	return nil
}

func (r *GenerationRunRepositoryImpl) Update(ctx context.Context, run *entity.GenerationRun) error {
	m := r.mapper.RunToModel(run)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*run = *r.mapper.RunToEntity(m)
	return nil
}

func (r *GenerationRunRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.GenerationRun{}, id).Error
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
	return r.mapper.RunToEntity(&m), nil
}

func (r *GenerationRunRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GenerationRun, error) {
	var models []*model.GenerationRun
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.GenerationRun, len(models))
	for i, m := range models {
		entities[i] = r.mapper.RunToEntity(m)
	}
	return entities, nil
}

func (r *GenerationRunRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.GenerationRun{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
