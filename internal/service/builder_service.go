// FILE: internal/service/builder_service.go
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ai-botbuilder-be/internal/dto"
	"ai-botbuilder-be/internal/entity"
	"ai-botbuilder-be/internal/pkg/logger"
	"ai-botbuilder-be/internal/repository/memory"
	"ai-botbuilder-be/internal/repository/specification"
	"ai-botbuilder-be/internal/repository/unitofwork"
	"ai-botbuilder-be/pkg/compiler"
	"ai-botbuilder-be/pkg/composer"
	"ai-botbuilder-be/pkg/events"
	"ai-botbuilder-be/pkg/flowtable"
	"ai-botbuilder-be/pkg/flowtable/repair"
	pktNats "ai-botbuilder-be/pkg/nats"
	"ai-botbuilder-be/pkg/store"

	"github.com/google/uuid"
)

type IBuilderService interface {
	Generate(ctx context.Context, userId uuid.UUID, req *dto.GenerateBotRequest) (*dto.BuildResponse, error)
	Repair(ctx context.Context, req *dto.RepairRequest) (*dto.RepairResponse, error)
	ListRuns(ctx context.Context, userId uuid.UUID) ([]*dto.RunSummaryResponse, error)
	ShowRun(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.RunDetailResponse, error)
}

type builderService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	eventPublisher   *pktNats.Publisher
	validator        *compiler.Client
	engine           *repair.Engine
	runStates        *memory.RunStateRepository
	logger           logger.ILogger
	maxRepairRounds  int
}

func NewBuilderService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	eventPublisher *pktNats.Publisher,
	validator *compiler.Client,
	engine *repair.Engine,
	runStates *memory.RunStateRepository,
	log logger.ILogger,
	maxRepairRounds int,
) IBuilderService {
	return &builderService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		validator:        validator,
		engine:           engine,
		runStates:        runStates,
		logger:           log,
		maxRepairRounds:  maxRepairRounds,
	}
}

func (s *builderService) Generate(ctx context.Context, userId uuid.UUID, req *dto.GenerateBotRequest) (*dto.BuildResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	run := entity.GenerationRun{
		Id:        uuid.New(),
		UserId:    userId,
		BotName:   req.BotName,
		Status:    entity.RunStatusPending,
		NodeCount: len(req.Nodes),
		CreatedAt: time.Now(),
	}
	if err := uow.GenerationRunRepository().Create(ctx, &run); err != nil {
		return nil, err
	}

	flows := composer.SplitFlows(req.Nodes)
	state := &store.RunState{
		ID:         run.Id.String(),
		UserID:     userId.String(),
		BotName:    req.BotName,
		Stage:      store.StageSerializing,
		FlowsTotal: len(flows),
	}
	s.pushProgress(userId, state)

	// Serialize flow by flow so progress is meaningful for large plans.
	var records []flowtable.NodeRecord
	var notes []string
	for _, flow := range flows {
		state.ActiveFlow = flow.Name
		s.pushProgress(userId, state)

		flowRecords, flowNotes := flowtable.Records(flow.Nodes)
		records = append(records, flowRecords...)
		notes = append(notes, flowNotes...)

		state.FlowsDone++
	}

	artifact, fixNotes := flowtable.Serialize(records)
	notes = append(notes, fixNotes...)

	run.Status = entity.RunStatusGenerated
	run.Artifact = artifact
	run.CorrectionNotes = notes

	resp := &dto.BuildResponse{
		RunId:              run.Id,
		Artifact:           artifact,
		CorrectionsApplied: notes,
		Status:             run.Status,
	}

	if req.Validate && s.validator != nil {
		maxRounds := s.maxRepairRounds
		if req.MaxRepairAttempts > 0 {
			maxRounds = req.MaxRepairAttempts
		}
		if err := s.validateAndRepair(ctx, uow, &run, state, resp, maxRounds); err != nil {
			run.Status = entity.RunStatusFailed
			state.Stage = store.StageFailed
			s.pushProgress(userId, state)
			if uerr := uow.GenerationRunRepository().Update(ctx, &run); uerr != nil {
				s.logger.Error("BuilderService", "Failed to persist failed run", map[string]interface{}{
					"run_id": run.Id, "error": uerr.Error(),
				})
			}
			return nil, err
		}
	}

	if err := uow.GenerationRunRepository().Update(ctx, &run); err != nil {
		return nil, err
	}

	state.Stage = store.StageDone
	s.pushProgress(userId, state)
	s.runStates.Delete(run.Id.String())

	// Mirror the terminal event to NATS for downstream systems. Auxiliary,
	// so a dead broker must not fail the build.
	if s.eventPublisher != nil {
		evt := events.NewRunCompleted(run.Id.String(), userId.String(), run.BotName, run.Status, run.RepairRounds)
		if err := s.eventPublisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("BuilderService", "Failed to publish RUN_COMPLETED event", map[string]interface{}{
				"run_id": run.Id, "error": err.Error(),
			})
		}
	}

	resp.Status = run.Status
	resp.RepairRounds = run.RepairRounds
	return resp, nil
}

// validateAndRepair drives the validate-repair loop until the artifact is
// clean, the round budget runs out, or the generation backend raises a
// terminal error.
func (s *builderService) validateAndRepair(
	ctx context.Context,
	uow unitofwork.UnitOfWork,
	run *entity.GenerationRun,
	state *store.RunState,
	resp *dto.BuildResponse,
	maxRounds int,
) error {
	userId := run.UserId

	for round := 0; ; round++ {
		state.Stage = store.StageValidating
		state.RepairRound = round
		s.pushProgress(userId, state)

		verdict, err := s.validator.Validate(ctx, run.Artifact)
		if err != nil {
			return fmt.Errorf("validate artifact: %w", err)
		}
		if verdict.Valid {
			run.Status = entity.RunStatusValid
			resp.StillBroken = nil
			return nil
		}

		errs, err := verdict.ValidationErrors()
		if err != nil {
			return fmt.Errorf("normalize validation errors: %w", err)
		}
		if len(errs) == 0 {
			// Invalid verdict with no usable detail. Nothing to aim a repair at.
			run.Status = entity.RunStatusBroken
			return nil
		}

		if round >= maxRounds {
			run.Status = entity.RunStatusBroken
			resp.StillBroken = describeAll(errs)
			return nil
		}

		state.Stage = store.StageRepairing
		state.BrokenRows = len(errs)
		s.pushProgress(userId, state)

		result, err := s.engine.Repair(ctx, run.Artifact, errs)
		if err != nil {
			return err
		}

		run.Artifact = result.Artifact
		run.RepairRounds = round + 1
		resp.Artifact = result.Artifact
		resp.FixesApplied = append(resp.FixesApplied, result.FixesApplied...)
		resp.StillBroken = result.StillBroken
		resp.RepairRounds = run.RepairRounds

		attempt := entity.RepairAttempt{
			Id:           uuid.New(),
			RunId:        run.Id,
			Round:        round + 1,
			Mode:         repairMode(result),
			FixedCount:   len(result.FixesApplied),
			BrokenCount:  len(result.StillBroken),
			ErrorSummary: summarize(errs),
			CreatedAt:    time.Now(),
		}
		if err := uow.RepairAttemptRepository().Create(ctx, &attempt); err != nil {
			s.logger.Error("BuilderService", "Failed to persist repair attempt", map[string]interface{}{
				"run_id": run.Id, "round": round + 1, "error": err.Error(),
			})
		}

		if s.eventPublisher != nil {
			evt := events.NewRepairApplied(run.Id.String(), round+1, attempt.FixedCount, attempt.BrokenCount, attempt.Mode)
			if err := s.eventPublisher.Publish(ctx, evt); err != nil {
				s.logger.Warn("BuilderService", "Failed to publish REPAIR_APPLIED event", map[string]interface{}{
					"run_id": run.Id, "error": err.Error(),
				})
			}
		}

		if len(result.FixesApplied) == 0 {
			// The model produced nothing usable; another round would resend
			// the same prompt.
			run.Status = entity.RunStatusBroken
			return nil
		}
	}
}

func (s *builderService) Repair(ctx context.Context, req *dto.RepairRequest) (*dto.RepairResponse, error) {
	errs, err := repair.NormalizeErrors(req.Errors)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Repair(ctx, req.Artifact, errs)
	if err != nil {
		return nil, err
	}

	return &dto.RepairResponse{
		Artifact:     result.Artifact,
		FixesApplied: result.FixesApplied,
		StillBroken:  result.StillBroken,
	}, nil
}

func (s *builderService) ListRuns(ctx context.Context, userId uuid.UUID) ([]*dto.RunSummaryResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	runs, err := uow.GenerationRunRepository().FindAll(ctx,
		specification.OwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.RunSummaryResponse, len(runs))
	for i, run := range runs {
		res[i] = &dto.RunSummaryResponse{
			Id:        run.Id,
			BotName:   run.BotName,
			Status:    run.Status,
			NodeCount: run.NodeCount,
			CreatedAt: run.CreatedAt,
		}
	}
	return res, nil
}

func (s *builderService) ShowRun(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.RunDetailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	run, err := uow.GenerationRunRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if run == nil {
		return nil, nil // Not found
	}

	attempts, err := uow.RepairAttemptRepository().FindAllByRunId(ctx, run.Id)
	if err != nil {
		return nil, err
	}

	res := &dto.RunDetailResponse{
		Id:              run.Id,
		BotName:         run.BotName,
		Status:          run.Status,
		NodeCount:       run.NodeCount,
		Artifact:        run.Artifact,
		CorrectionNotes: run.CorrectionNotes,
		RepairRounds:    run.RepairRounds,
		CreatedAt:       run.CreatedAt,
	}
	for _, a := range attempts {
		res.Attempts = append(res.Attempts, dto.RepairAttemptResponse{
			Round:        a.Round,
			Mode:         a.Mode,
			FixedCount:   a.FixedCount,
			BrokenCount:  a.BrokenCount,
			ErrorSummary: a.ErrorSummary,
		})
	}
	return res, nil
}

// pushProgress snapshots the run state and fires it onto the bus. Progress is
// best effort; the run itself never waits on delivery.
func (s *builderService) pushProgress(userId uuid.UUID, state *store.RunState) {
	s.runStates.Save(state)

	envelope := dto.RunProgressEnvelope{
		UserId: userId,
		Progress: dto.ProgressMessage{
			RunId:       state.ID,
			Stage:       state.Stage,
			FlowsTotal:  state.FlowsTotal,
			FlowsDone:   state.FlowsDone,
			ActiveFlow:  state.ActiveFlow,
			RepairRound: state.RepairRound,
			BrokenRows:  state.BrokenRows,
		},
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		return
	}
	if err := s.publisherService.Publish(context.Background(), payload); err != nil {
		s.logger.Warn("BuilderService", "Failed to publish progress", map[string]interface{}{
			"run_id": state.ID, "error": err.Error(),
		})
	}
}

func repairMode(result *repair.Result) string {
	if result.RowMode {
		return "row"
	}
	return "whole"
}

func summarize(errs []repair.ValidationError) string {
	const maxShown = 5
	summary := ""
	for i, e := range errs {
		if i == maxShown {
			summary += fmt.Sprintf("; and %d more", len(errs)-maxShown)
			break
		}
		if i > 0 {
			summary += "; "
		}
		summary += e.Describe()
	}
	return summary
}

func describeAll(errs []repair.ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Describe()
	}
	return out
}
