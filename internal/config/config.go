package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Ai       AIConfig
	Pipeline PipelineConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	IngestTopic        string
}

type DatabaseConfig struct {
	Connection string
}

type AIConfig struct {
	EmbeddingProvider string // "ollama", "azure" or "mock"
	LLMProvider       string // "ollama", "azure" or "mock"
	OllamaBaseURL     string
	OllamaEmbedModel  string
	OllamaChatModel   string
	AzureEndpoint     string
	AzureKey          string
	AzureAPIVersion   string
	AzureEmbedDeploy  string
	AzureChatDeploy   string
	EmbeddingDim      int
	MockAI            bool
}

// PipelineConfig surfaces every tunable of the generation pipeline.
// The confidence boundary (MaxUnsupportedForMedium) is deliberately
// configurable instead of a hidden rule.
type PipelineConfig struct {
	ChunkSize               int
	ChunkOverlap            int
	EmbedWorkers            int
	TopK                    int
	MinScore                float64
	RetrievalTimeoutSec     int
	GenerationTimeoutSec    int
	RetryBackoffMs          int
	MaxUnsupportedForMedium int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			IngestTopic:        getEnv("DOCUMENT_INGESTED_TOPIC_NAME", "DOCUMENT_INGESTED"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Ai: AIConfig{
			EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", "ollama"),
			LLMProvider:       getEnv("LLM_PROVIDER", "ollama"),
			OllamaBaseURL:     getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbedModel:  getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			OllamaChatModel:   getEnv("OLLAMA_CHAT_MODEL", "llama3"),
			AzureEndpoint:     getEnv("AZURE_OPENAI_ENDPOINT", ""),
			AzureKey:          getEnv("AZURE_OPENAI_KEY", ""),
			AzureAPIVersion:   getEnv("AZURE_OPENAI_API_VERSION", "2025-08-01-preview"),
			AzureEmbedDeploy:  getEnv("AZURE_OPENAI_EMBEDDINGS_DEPLOYMENT", ""),
			AzureChatDeploy:   getEnv("AZURE_OPENAI_CHAT_DEPLOYMENT", ""),
			// Must match the vector(N) width of document_chunks.embedding;
			// changing it (e.g. 1536 for Azure embeddings) needs a column
			// migration before re-ingesting.
			EmbeddingDim: getEnvAsInt("EMBEDDING_DIM", 768),
			MockAI:       getEnvAsBool("MOCK_AI", false),
		},
		Pipeline: PipelineConfig{
			ChunkSize:               getEnvAsInt("CHUNK_SIZE", 1800),
			ChunkOverlap:            getEnvAsInt("CHUNK_OVERLAP", 200),
			EmbedWorkers:            getEnvAsInt("EMBED_WORKERS", 4),
			TopK:                    getEnvAsInt("RETRIEVAL_TOP_K", 8),
			MinScore:                getEnvAsFloat("RETRIEVAL_MIN_SCORE", 0.35),
			RetrievalTimeoutSec:     getEnvAsInt("RETRIEVAL_TIMEOUT_SEC", 30),
			GenerationTimeoutSec:    getEnvAsInt("GENERATION_TIMEOUT_SEC", 90),
			RetryBackoffMs:          getEnvAsInt("RETRY_BACKOFF_MS", 2000),
			MaxUnsupportedForMedium: getEnvAsInt("MAX_UNSUPPORTED_FOR_MEDIUM", 1),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsFloat(key string, fallback float64) float64 {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseFloat(strValue, 64); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}
