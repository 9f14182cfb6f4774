package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration
type Config struct {
	DatabaseURL            string `yaml:"database_url"`
	ServerPort             string `yaml:"server_port"`
	FrontendURL            string `yaml:"frontend_url"`
	OpenAIKey              string `yaml:"openai_api_key"`
	AIModel                string `yaml:"ai_model"`
	AIImageModel           string `yaml:"ai_image_model"`
	AIBaseURL              string `yaml:"ai_base_url"`
	JWTSecret              string `yaml:"jwt_secret"`
	EnableHSTS             bool   `yaml:"enable_hsts"`
	RedisURL               string `yaml:"redis_url"`
	RabbitMQURL            string `yaml:"rabbitmq_url"`
	RabbitMQPrefetch       int    `yaml:"rabbitmq_prefetch"`
	RateLimit              string `yaml:"rate_limit"`
	Tier10Illustration     bool   `yaml:"tier10_illustration"`
	WorkerDebugMode        bool   `yaml:"worker_debug_mode"`
	ServerDebugMode        bool   `yaml:"server_debug_mode"`
	OTELEnabled            bool   `yaml:"otel_enabled"`
	OTELEndpoint           string `yaml:"otel_endpoint"`
}

// Load loads configuration from environment variables. When CONFIG_FILE
// points at a YAML file, its values are read first and the environment
// overrides them.
func Load() (*Config, error) {
	cfg := &Config{
		ServerPort:       "8080",
		FrontendURL:      "http://localhost:3000",
		RedisURL:         "redis://localhost:6379/0",
		RabbitMQPrefetch: 1,
		RateLimit:        "5-S",
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.ServerPort = getEnv("SERVER_PORT", cfg.ServerPort)
	cfg.FrontendURL = getEnv("FRONTEND_URL", cfg.FrontendURL)
	cfg.OpenAIKey = getEnv("OPENAI_API_KEY", cfg.OpenAIKey)
	cfg.AIModel = getEnv("AI_MODEL", cfg.AIModel)
	cfg.AIImageModel = getEnv("AI_IMAGE_MODEL", cfg.AIImageModel)
	cfg.AIBaseURL = getEnv("AI_BASE_URL", cfg.AIBaseURL)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.EnableHSTS = getEnvBool("ENABLE_HSTS", cfg.EnableHSTS)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.RabbitMQURL = getEnv("RABBITMQ_URL", cfg.RabbitMQURL)
	cfg.RabbitMQPrefetch = getEnvInt("RABBITMQ_PREFETCH", cfg.RabbitMQPrefetch)
	cfg.RateLimit = getEnv("RATE_LIMIT", cfg.RateLimit)
	cfg.Tier10Illustration = getEnvBool("DIARY_TIER10_ILLUSTRATION", cfg.Tier10Illustration)
	cfg.WorkerDebugMode = getEnvBool("WORKER_DEBUG_MODE", cfg.WorkerDebugMode)
	cfg.ServerDebugMode = getEnvBool("SERVER_DEBUG_MODE", cfg.ServerDebugMode)
	cfg.OTELEnabled = getEnvBool("OTEL_ENABLED", cfg.OTELEnabled)
	cfg.OTELEndpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.OTELEndpoint)

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required for session tokens")
	}

	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("RABBITMQ_URL is required for diary generation jobs")
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
