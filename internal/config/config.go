package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Ai      AIConfig
	Storage StorageConfig
	Cache   CacheConfig
	Topics  TopicConfig
}

type AppConfig struct {
	Port               string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	DefaultLanguage    string
}

type AIConfig struct {
	LLMProvider  string // "ollama"
	LLMBaseURL   string
	LLMModel     string
	LLMMaxTokens int      // 0 means provider default
	Models       []string // selectable models exposed on /models

	EmbeddingProvider    string // "ollama" or "gemini"
	OllamaBaseURL        string
	OllamaEmbeddingModel string
	GeminiAPIKey         string
	// Remote embedding model candidates, probed in order until one answers.
	EmbeddingCandidates []string
}

type StorageConfig struct {
	IndexRoot    string
	HistoryFile  string
	MaxPDFSize   int
	ChunkSize    int
	ChunkOverlap int
}

type CacheConfig struct {
	ResponseTTL time.Duration
	SessionTTL  time.Duration
}

type TopicConfig struct {
	BuildIndex string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	defaultModel := getEnv("LLM_MODEL", "gemma:2b")

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "logs/app.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			DefaultLanguage:    getEnv("DEFAULT_LANGUAGE", "العربية"),
		},
		Ai: AIConfig{
			LLMProvider:  getEnv("LLM_PROVIDER", "ollama"),
			LLMBaseURL:   getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			LLMModel:     defaultModel,
			LLMMaxTokens: getEnvAsInt("LLM_MAX_TOKENS", 0),
			Models:       getEnvAsList("LLM_MODELS", defaultModel),

			EmbeddingProvider:    getEnv("EMBEDDING_PROVIDER", "ollama"),
			OllamaBaseURL:        getEnv("OLLAMA_BASE_URL", "http://localhost:11434"),
			OllamaEmbeddingModel: getEnv("OLLAMA_EMBEDDING_MODEL", "nomic-embed-text"),
			GeminiAPIKey:         getEnv("GOOGLE_GEMINI_API_KEY", ""),
			EmbeddingCandidates: getEnvAsList(
				"EMBEDDING_MODEL_CANDIDATES",
				"text-embedding-004,gemini-embedding-001,embedding-gecko-001",
			),
		},
		Storage: StorageConfig{
			IndexRoot:    getEnv("INDEX_ROOT", "temp/indexes"),
			HistoryFile:  getEnv("HISTORY_FILE", "temp/history.json"),
			MaxPDFSize:   getEnvAsInt("MAX_PDF_SIZE", 15*1024*1024),
			ChunkSize:    getEnvAsInt("CHUNK_SIZE", 1000),
			ChunkOverlap: getEnvAsInt("CHUNK_OVERLAP", 200),
		},
		Cache: CacheConfig{
			ResponseTTL: time.Duration(getEnvAsInt("RESPONSE_CACHE_TTL_SECONDS", 600)) * time.Second,
			SessionTTL:  time.Duration(getEnvAsInt("SESSION_TTL_SECONDS", 3600)) * time.Second,
		},
		Topics: TopicConfig{
			BuildIndex: getEnv("BUILD_INDEX_TOPIC_NAME", "BUILD_SESSION_INDEX"),
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

func getEnvAsList(key, fallback string) []string {
	raw := getEnv(key, fallback)
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
