package contract

import (
	"context"

	"ai-botbuilder-be/internal/entity"
	"ai-botbuilder-be/internal/repository/specification"

	"github.com/google/uuid"
)

type GenerationRunRepository interface {
	Create(ctx context.Context, run *entity.GenerationRun) error
	Update(ctx context.Context, run *entity.GenerationRun) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.GenerationRun, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GenerationRun, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type RepairAttemptRepository interface {
	Create(ctx context.Context, attempt *entity.RepairAttempt) error
	FindAllByRunId(ctx context.Context, runId uuid.UUID) ([]*entity.RepairAttempt, error)
}
