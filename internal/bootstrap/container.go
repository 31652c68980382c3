package bootstrap

import (
	"log"
	"time"

	"ops-assistant-be/internal/config"
	"ops-assistant-be/internal/controller"
	"ops-assistant-be/internal/pkg/logger"
	"ops-assistant-be/internal/repository/unitofwork"
	"ops-assistant-be/internal/service"
	"ops-assistant-be/pkg/embedding"
	"ops-assistant-be/pkg/llm/factory"
	pktNats "ops-assistant-be/pkg/nats"
	"ops-assistant-be/pkg/rag/generator"
	"ops-assistant-be/pkg/rag/pipeline"
	"ops-assistant-be/pkg/rag/retriever"
	"ops-assistant-be/pkg/rag/verifier"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	DocumentController   controller.IDocumentController
	GenerationController controller.IGenerationController

	// Background services (run by main)
	ConsumerService service.IConsumerService
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI providers
	embeddingProvider := newEmbeddingProvider(cfg)

	var drafter generator.Drafter
	if cfg.Ai.MockAI {
		drafter = generator.NewMockDrafter()
		log.Printf("[INFO] Using Drafter: MOCK (extractive, no model calls)")
	} else {
		llmProvider, err := factory.NewLLMProvider(
			cfg.Ai.LLMProvider,
			cfg.Ai.OllamaChatModel,
			cfg.Ai.OllamaBaseURL,
			factory.AzureConfig{
				Endpoint:   cfg.Ai.AzureEndpoint,
				APIKey:     cfg.Ai.AzureKey,
				APIVersion: cfg.Ai.AzureAPIVersion,
				Deployment: cfg.Ai.AzureChatDeploy,
			},
		)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
		}
		log.Printf("[INFO] Using LLM Provider: %s", cfg.Ai.LLMProvider)
		drafter = generator.NewLLMDrafter(llmProvider, time.Duration(cfg.Pipeline.GenerationTimeoutSec)*time.Second)
	}

	embeddingCache := embedding.NewCache(30*time.Minute, 10*time.Minute)

	// 4. Generation pipeline
	ragRetriever := retriever.New(embeddingProvider, embeddingCache, retriever.Config{
		TopK:         cfg.Pipeline.TopK,
		MinScore:     cfg.Pipeline.MinScore,
		Timeout:      time.Duration(cfg.Pipeline.RetrievalTimeoutSec) * time.Second,
		RetryBackoff: time.Duration(cfg.Pipeline.RetryBackoffMs) * time.Millisecond,
	})
	ragVerifier := verifier.New(verifier.Config{
		MaxUnsupportedForMedium: cfg.Pipeline.MaxUnsupportedForMedium,
	})
	ragPipeline := pipeline.New(ragRetriever, generator.New(drafter), ragVerifier)

	// 5. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// 6. Services
	publisherService := service.NewPublisherService(cfg.App.IngestTopic, pubSub)
	consumerService := service.NewConsumerService(pubSub, cfg.App.IngestTopic, natsPub, sysLogger)

	ingestionService := service.NewIngestionService(
		uowFactory,
		embeddingProvider,
		publisherService,
		sysLogger,
		service.IngestionConfig{
			ChunkSize:    cfg.Pipeline.ChunkSize,
			ChunkOverlap: cfg.Pipeline.ChunkOverlap,
			EmbedWorkers: cfg.Pipeline.EmbedWorkers,
			EmbeddingDim: cfg.Ai.EmbeddingDim,
		},
	)
	documentService := service.NewDocumentService(
		uowFactory,
		embeddingProvider,
		embeddingCache,
		service.DocumentServiceConfig{
			TopK:     cfg.Pipeline.TopK,
			MinScore: cfg.Pipeline.MinScore,
		},
	)
	generationService := service.NewGenerationService(uowFactory, ragPipeline, sysLogger)

	// 7. Controllers
	return &Container{
		DocumentController:   controller.NewDocumentController(ingestionService, documentService),
		GenerationController: controller.NewGenerationController(generationService),
		ConsumerService:      consumerService,
	}
}

func newEmbeddingProvider(cfg *config.Config) embedding.EmbeddingProvider {
	if cfg.Ai.MockAI {
		log.Printf("[INFO] Using Embedding Provider: MOCK (%d dims)", cfg.Ai.EmbeddingDim)
		return embedding.NewMockProvider(cfg.Ai.EmbeddingDim)
	}
	switch cfg.Ai.EmbeddingProvider {
	case "azure":
		log.Printf("[INFO] Using Embedding Provider: AZURE OPENAI (%s)", cfg.Ai.AzureEmbedDeploy)
		return embedding.NewAzureProvider(
			cfg.Ai.AzureEndpoint,
			cfg.Ai.AzureKey,
			cfg.Ai.AzureAPIVersion,
			cfg.Ai.AzureEmbedDeploy,
		)
	default:
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.OllamaEmbedModel)
		return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaEmbedModel)
	}
}
