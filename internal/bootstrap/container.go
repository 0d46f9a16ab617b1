package bootstrap

import (
	"context"
	"log"

	"customer-inquiry-be/internal/config"
	"customer-inquiry-be/internal/constant"
	"customer-inquiry-be/internal/controller"
	"customer-inquiry-be/internal/pkg/logger"
	"customer-inquiry-be/internal/repository/implementation"
	"customer-inquiry-be/internal/repository/memory"
	"customer-inquiry-be/internal/repository/unitofwork"
	"customer-inquiry-be/internal/service"
	"customer-inquiry-be/pkg/chat/classify"
	"customer-inquiry-be/pkg/chat/router"
	"customer-inquiry-be/pkg/chat/state"
	"customer-inquiry-be/pkg/docsearch"
	"customer-inquiry-be/pkg/embedding"
	"customer-inquiry-be/pkg/llm/factory"
	"customer-inquiry-be/pkg/sqlpipe"
	"customer-inquiry-be/pkg/triage"

	pktNats "customer-inquiry-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController     controller.IChatController
	DocumentController controller.IDocumentController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
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

	// 3. AI Providers
	var embeddingProvider embedding.EmbeddingProvider
	if cfg.Ai.EmbeddingProvider == "ollama" {
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaModel)
	} else {
		embeddingProvider = embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey)
		log.Printf("[INFO] Using Embedding Provider: GEMINI")
	}

	llmBaseURL := cfg.Ai.OllamaBaseURL
	if cfg.Ai.LLMProvider == "openai" {
		llmBaseURL = cfg.Ai.OpenAIBaseURL
	}
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		llmBaseURL,
		cfg.Ai.OpenAIAPIKey,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Infrastructure
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

	// Dedicated read pool for the data-query pipeline. GORM owns the ORM
	// traffic; generated statements run on pgx directly.
	pgPool, err := pgxpool.New(context.Background(), cfg.Database.Connection)
	if err != nil {
		log.Fatalf("[FATAL] Failed to create pgx pool: %v", err)
	}

	// 5. Conversation State
	pendingCache := memory.NewPendingStateRepository()
	sessionLocks := memory.NewSessionLocks()
	conversationStore := service.NewGormConversationStore(uowFactory, pendingCache)
	stateManager := state.NewManager(conversationStore)

	// 6. Pipelines
	schemaInspector := sqlpipe.NewSchemaInspector(pgPool, rdb, cfg.Sql.AllowedTables, 0)
	var rejectedPublisher sqlpipe.EventPublisher
	if natsPub != nil {
		rejectedPublisher = natsPub
	}
	dataPipeline := sqlpipe.NewPipeline(
		sqlpipe.NewLLMStatementGenerator(llmProvider, schemaInspector),
		sqlpipe.NewValidator(cfg.Sql.AllowedTables),
		sqlpipe.NewSanitizer(cfg.Sql.MaxResults),
		sqlpipe.NewPgxExecutor(pgPool, 0),
		sqlpipe.NewLLMResultFormatter(llmProvider),
		rejectedPublisher,
		sysLogger,
	)

	embeddingRepo := implementation.NewDocumentEmbeddingRepository(db)
	searchPipeline := docsearch.NewPipeline(
		docsearch.NewLLMQueryAnalyzer(llmProvider, sysLogger),
		docsearch.NewVectorRetriever(embeddingProvider, embeddingRepo, cfg.Search.ScoreThreshold),
		docsearch.NewLLMSynthesizer(llmProvider),
		stateManager,
		cfg.Search.ResultLimit,
		sysLogger,
	)

	servicePipeline := triage.NewPipeline(
		triage.NewLLMCategorizer(llmProvider, sysLogger),
		triage.NewLLMResponder(llmProvider),
	)

	// 7. Router
	dispatcher := router.NewDispatcher(
		classify.NewLLMClassifier(llmProvider, sysLogger),
		stateManager,
		dataPipeline,
		searchPipeline,
		servicePipeline,
		sessionLocks,
		sysLogger,
	)

	// 8. Services
	publisherService := service.NewPublisherService(constant.EmbedDocumentTopic, pubSub)
	consumerService := service.NewConsumerService(
		pubSub,
		constant.EmbedDocumentTopic,
		uowFactory,
		embeddingProvider,
	)

	chatService := service.NewChatService(uowFactory, conversationStore, dispatcher, natsPub, sysLogger)
	documentService := service.NewDocumentService(uowFactory, publisherService, sysLogger)

	// 9. Controllers
	return &Container{
		ChatController:     controller.NewChatController(chatService),
		DocumentController: controller.NewDocumentController(documentService),

		ConsumerService: consumerService,
	}
}
