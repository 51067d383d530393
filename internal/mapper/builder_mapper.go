package mapper

import (
	"strings"
	"time"

	"ai-botbuilder-be/internal/entity"
	"ai-botbuilder-be/internal/model"

	"gorm.io/gorm"
)

type BuilderMapper struct{}

func NewBuilderMapper() *BuilderMapper {
	return &BuilderMapper{}
}

// Run Mappers

func (m *BuilderMapper) RunToEntity(r *model.GenerationRun) *entity.GenerationRun {
	if r == nil {
		return nil
	}

	var deletedAt *time.Time
	if r.DeletedAt.Valid {
		t := r.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !r.UpdatedAt.IsZero() {
		t := r.UpdatedAt
		updatedAt = &t
	}

	var notes []string
	if r.CorrectionNotes != "" {
		notes = strings.Split(r.CorrectionNotes, "\n")
	}

	return &entity.GenerationRun{
		Id:              r.Id,
		UserId:          r.UserId,
		BotName:         r.BotName,
		Status:          r.Status,
		NodeCount:       r.NodeCount,
		Artifact:        r.Artifact,
		CorrectionNotes: notes,
		RepairRounds:    r.RepairRounds,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       updatedAt,
		DeletedAt:       deletedAt,
		IsDeleted:       r.DeletedAt.Valid,
	}
}

func (m *BuilderMapper) RunToModel(r *entity.GenerationRun) *model.GenerationRun {
	if r == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if r.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *r.DeletedAt, Valid: true}
	} else if r.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if r.UpdatedAt != nil {
		updatedAt = *r.UpdatedAt
	}

	return &model.GenerationRun{
		Id:              r.Id,
		UserId:          r.UserId,
		BotName:         r.BotName,
		Status:          r.Status,
		NodeCount:       r.NodeCount,
		Artifact:        r.Artifact,
		CorrectionNotes: strings.Join(r.CorrectionNotes, "\n"),
		RepairRounds:    r.RepairRounds,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       updatedAt,
		DeletedAt:       deletedAt,
	}
}

// Attempt Mappers

func (m *BuilderMapper) AttemptToEntity(a *model.RepairAttempt) *entity.RepairAttempt {
	if a == nil {
		return nil
	}
	return &entity.RepairAttempt{
		Id:           a.Id,
		RunId:        a.RunId,
		Round:        a.Round,
		Mode:         a.Mode,
		FixedCount:   a.FixedCount,
		BrokenCount:  a.BrokenCount,
		ErrorSummary: a.ErrorSummary,
		CreatedAt:    a.CreatedAt,
	}
}

func (m *BuilderMapper) AttemptToModel(a *entity.RepairAttempt) *model.RepairAttempt {
	if a == nil {
		return nil
	}
	return &model.RepairAttempt{
		Id:           a.Id,
		RunId:        a.RunId,
		Round:        a.Round,
		Mode:         a.Mode,
		FixedCount:   a.FixedCount,
		BrokenCount:  a.BrokenCount,
		ErrorSummary: a.ErrorSummary,
		CreatedAt:    a.CreatedAt,
	}
}

func (m *BuilderMapper) AttemptsToEntities(models []*model.RepairAttempt) []*entity.RepairAttempt {
	entities := make([]*entity.RepairAttempt, len(models))
	for i, a := range models {
		entities[i] = m.AttemptToEntity(a)
	}
	return entities
}
