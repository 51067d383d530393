package bootstrap

import (
	"context"
	"log"

	"ai-botbuilder-be/internal/config"
	"ai-botbuilder-be/internal/controller"
	"ai-botbuilder-be/internal/handler"
	"ai-botbuilder-be/internal/pkg/logger"
	"ai-botbuilder-be/internal/repository/memory"
	"ai-botbuilder-be/internal/repository/unitofwork"
	"ai-botbuilder-be/internal/service"
	"ai-botbuilder-be/internal/websocket"
	"ai-botbuilder-be/pkg/compiler"
	"ai-botbuilder-be/pkg/flowtable/repair"
	"ai-botbuilder-be/pkg/llm/factory"
	"ai-botbuilder-be/pkg/llm/orchestrator"

	pktNats "ai-botbuilder-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Topic for run progress fan-out on the in-process bus.
const runProgressTopic = "RUN_PROGRESS"

type Container struct {
	// Controllers
	BuilderController controller.IBuilderController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets & Progress
	ProgressHandler *handler.ProgressHandler
	WebSocketHub    *websocket.Hub
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Generation Stack
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.PrimaryModel,
		cfg.Ai.LLMBaseURL,
		cfg.Keys.OpenAI,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.PrimaryModel)

	tiers := orchestrator.DefaultTiers(cfg.Ai.PrimaryModel, cfg.Ai.FallbackModel, cfg.Ai.FastModel)
	orch := orchestrator.New(llmProvider, tiers, nil)
	repairEngine := repair.NewEngine(orch, nil)
	compilerClient := compiler.NewClient(cfg.Compiler.BaseURL, cfg.Compiler.APIKey)

	// In-memory run state for progress queries
	runStates := memory.NewRunStateRepository()

	// 3.5 Infrastructure
	// NATS
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/progress.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	publisherService := service.NewPublisherService(pubSub, runProgressTopic)
	consumerService := service.NewConsumerService(pubSub, runProgressTopic, wsHub)

	builderService := service.NewBuilderService(
		uowFactory,
		publisherService,
		natsPub,
		compilerClient,
		repairEngine,
		runStates,
		sysLogger,
		cfg.Ai.MaxRepairRounds,
	)

	// Handler
	progressHandler := handler.NewProgressHandler(wsHub, wsLogger)

	// 4. Controllers
	return &Container{
		ProgressHandler:   progressHandler,
		WebSocketHub:      wsHub,
		BuilderController: controller.NewBuilderController(builderService),

		ConsumerService: consumerService,
	}
}
