package implementation

import (
	"context"

	"ai-botbuilder-be/internal/entity"
	"ai-botbuilder-be/internal/mapper"
	"ai-botbuilder-be/internal/model"
	"ai-botbuilder-be/internal/repository/contract"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RepairAttemptRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.BuilderMapper
}

func NewRepairAttemptRepository(db *gorm.DB) contract.RepairAttemptRepository {
	return &RepairAttemptRepositoryImpl{
		db:     db,
		mapper: mapper.NewBuilderMapper(),
	}
}

func (r *RepairAttemptRepositoryImpl) Create(ctx context.Context, attempt *entity.RepairAttempt) error {
	m := r.mapper.AttemptToModel(attempt)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*attempt = *r.mapper.AttemptToEntity(m)
	return nil
}

func (r *RepairAttemptRepositoryImpl) FindAllByRunId(ctx context.Context, runId uuid.UUID) ([]*entity.RepairAttempt, error) {
	var models []*model.RepairAttempt
	err := r.db.WithContext(ctx).
		Where("run_id = ?", runId).
		Order("round ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.AttemptsToEntities(models), nil
}
