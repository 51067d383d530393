package unitofwork

import (
	"context"

	"ai-botbuilder-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	GenerationRunRepository() contract.GenerationRunRepository
	RepairAttemptRepository() contract.RepairAttemptRepository
}
