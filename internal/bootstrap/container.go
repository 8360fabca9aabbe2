package bootstrap

import (
	"log"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"ai-summary-be/internal/config"
	"ai-summary-be/internal/controller"
	"ai-summary-be/internal/pkg/logger"
	"ai-summary-be/internal/repository/history"
	"ai-summary-be/internal/repository/memory"
	"ai-summary-be/internal/service"
	"ai-summary-be/pkg/cache"
	"ai-summary-be/pkg/embedding"
	"ai-summary-be/pkg/extract"
	"ai-summary-be/pkg/llm/factory"
	"ai-summary-be/pkg/vectorstore"
)

type Container struct {
	// Controllers
	DocumentController   controller.IDocumentController
	GenerationController controller.IGenerationController

	// Background services (exposed for main.go to run)
	IndexerService service.IIndexerService

	Logger logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI backends
	embeddingProvider := buildEmbeddingProvider(cfg)

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.LLMBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 4. Storage
	sessionRepo := memory.NewSessionRepository(cfg.Cache.SessionTTL)
	statusRepo := memory.NewIndexStatusRepository()
	tracker := memory.NewTaskTracker()
	chatMemoryRepo := memory.NewChatHistoryRepository()
	indexStore := vectorstore.NewStore(cfg.Storage.IndexRoot)
	responseCache := cache.NewResponseCache(cfg.Cache.ResponseTTL)

	historyRepo, err := history.NewJSONRepository(cfg.Storage.HistoryFile)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize history storage: %v", err)
	}

	// 5. Services
	publisherService := service.NewPublisherService(cfg.Topics.BuildIndex, pubSub)

	indexerService := service.NewIndexerService(
		pubSub,
		cfg.Topics.BuildIndex,
		embeddingProvider,
		indexStore,
		statusRepo,
		cfg.Storage.ChunkSize,
		cfg.Storage.ChunkOverlap,
		sysLogger,
	)

	documentService := service.NewDocumentService(
		sessionRepo,
		statusRepo,
		historyRepo,
		tracker,
		indexStore,
		extract.NewPlainTextExtractor(),
		publisherService,
		cfg.Storage.MaxPDFSize,
		cfg.Ai.LLMModel,
		cfg.Ai.Models,
		sysLogger,
	)

	retrievalService := service.NewRetrievalService(indexStore, embeddingProvider)

	generationService := service.NewGenerationService(
		sessionRepo,
		tracker,
		retrievalService,
		responseCache,
		chatMemoryRepo,
		llmProvider,
		cfg.Ai.LLMModel,
		cfg.App.DefaultLanguage,
		cfg.Ai.LLMMaxTokens,
		sysLogger,
	)

	// 6. Controllers
	return &Container{
		DocumentController:   controller.NewDocumentController(documentService),
		GenerationController: controller.NewGenerationController(generationService, sysLogger),
		IndexerService:       indexerService,
		Logger:               sysLogger,
	}
}

// buildEmbeddingProvider assembles the candidate chain: the configured
// primary first, then the remote fallbacks. The resolver probes them in
// order on first use and sticks with the winner.
func buildEmbeddingProvider(cfg *config.Config) embedding.EmbeddingProvider {
	var candidates []embedding.EmbeddingProvider

	if cfg.Ai.EmbeddingProvider == "ollama" {
		candidates = append(candidates, embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.OllamaEmbeddingModel,
		))
		log.Printf("[INFO] Primary Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbeddingModel)
	}

	if cfg.Ai.GeminiAPIKey != "" {
		for _, model := range cfg.Ai.EmbeddingCandidates {
			candidates = append(candidates, embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey, model))
		}
		log.Printf("[INFO] Gemini embedding fallbacks registered: %d", len(cfg.Ai.EmbeddingCandidates))
	}

	if len(candidates) == 0 {
		log.Printf("[WARN] No embedding backend configured, semantic indexing disabled")
		return nil
	}

	return embedding.NewFallbackResolver(candidates...)
}
