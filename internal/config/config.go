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
	Keys     APIKeys
	Ai       AIConfig
	Compiler CompilerConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	ClientURL          string
	Environment        string
	LogFilePath        string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

type APIKeys struct {
	JWTSecret string
	OpenAI    string
}

type AIConfig struct {
	LLMProvider   string // "openai" or "ollama"
	LLMBaseURL    string
	PrimaryModel  string
	FallbackModel string
	FastModel     string
	// MaxRepairRounds caps the validate-repair loop per run.
	MaxRepairRounds int
}

type CompilerConfig struct {
	BaseURL string
	APIKey  string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, usage system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			ClientURL:          getEnv("CLIENT_URL", "http://localhost:5173"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log.csv"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", "redis://localhost:6379"),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Keys: APIKeys{
			JWTSecret: getEnv("JWT_SECRET", ""),
			OpenAI:    getEnv("OPENAI_API_KEY", ""),
		},
		Ai: AIConfig{
			LLMProvider:     getEnv("LLM_PROVIDER", "openai"),
			LLMBaseURL:      getEnv("LLM_BASE_URL", ""),
			PrimaryModel:    getEnv("LLM_PRIMARY_MODEL", "gpt-4o"),
			FallbackModel:   getEnv("LLM_FALLBACK_MODEL", "gpt-4o-mini"),
			FastModel:       getEnv("LLM_FAST_MODEL", "gpt-3.5-turbo"),
			MaxRepairRounds: getEnvAsInt("MAX_REPAIR_ROUNDS", 2),
		},
		Compiler: CompilerConfig{
			BaseURL: getEnv("COMPILER_BASE_URL", "http://localhost:8085"),
			APIKey:  getEnv("COMPILER_API_KEY", ""),
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
