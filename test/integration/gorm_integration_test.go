package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"ai-botbuilder-be/internal/entity"
	"ai-botbuilder-be/internal/repository/specification"
	"ai-botbuilder-be/internal/repository/unitofwork"
	"ai-botbuilder-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}

	// Verify Wiring
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())

	assert.NotNil(t, uow.GenerationRunRepository())
	assert.NotNil(t, uow.RepairAttemptRepository())

	// Basic Ping
	sqlDB, _ := gormDB.DB()
	err = sqlDB.Ping()
	assert.NoError(t, err)
	t.Log("Successfully connected to DB and initialized UnitOfWork Factory")

	// Verify Data Access (implies columns exist)
	t.Run("Check Run Repository", func(t *testing.T) {
		count, err := uow.GenerationRunRepository().Count(context.Background())
		assert.NoError(t, err)
		t.Logf("GenerationRun count: %d", count)
	})

	t.Run("Check Transactional Run With Attempt", func(t *testing.T) {
		ctx := context.Background()
		err := uow.Begin(ctx)
		assert.NoError(t, err)
		defer uow.Rollback()

		userId := uuid.New()
		run := &entity.GenerationRun{
			Id:        uuid.New(),
			UserId:    userId,
			BotName:   "integration-bot-" + uuid.New().String(),
			Status:    entity.RunStatusGenerated,
			NodeCount: 3,
			Artifact:  "Node Number,Node Type,Node Name\n1,D,greet\n",
		}

		err = uow.GenerationRunRepository().Create(ctx, run)
		assert.NoError(t, err)

		attempt := &entity.RepairAttempt{
			Id:          uuid.New(),
			RunId:       run.Id,
			Round:       1,
			Mode:        "row",
			FixedCount:  1,
			BrokenCount: 0,
		}

		err = uow.RepairAttemptRepository().Create(ctx, attempt)
		assert.NoError(t, err)

		err = uow.Commit()
		assert.NoError(t, err)

		// Read back through the ownership filter the API layer relies on
		found, err := uow.GenerationRunRepository().FindOne(ctx,
			specification.ByID{ID: run.Id},
			specification.OwnedBy{UserID: userId},
		)
		assert.NoError(t, err)
		if assert.NotNil(t, found) {
			assert.Equal(t, run.BotName, found.BotName)
			assert.Equal(t, 3, found.NodeCount)
		}

		attempts, err := uow.RepairAttemptRepository().FindAllByRunId(ctx, run.Id)
		assert.NoError(t, err)
		assert.Len(t, attempts, 1)

		// Cleanup
		err = uow.GenerationRunRepository().Delete(ctx, run.Id)
		assert.NoError(t, err)

		t.Log("Successfully created GenerationRun with RepairAttempt in Transaction")
	})
}
