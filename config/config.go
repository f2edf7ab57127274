package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Sandbox  SandboxConfig
	Agent    AgentConfig
	Worker   WorkerConfig
	App      AppConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type SandboxConfig struct {
	BaseURL       string
	APIKey        string
	Template      string
	PreviewDomain string
	PreviewPort   int
	TTLMinutes    int
}

type AgentConfig struct {
	Provider      string
	Model         string
	APIKey        string
	MaxIterations int
	HistoryWindow int
	// Requests per minute against the LLM provider; 0 disables limiting.
	RequestsPerMinute int
}

type WorkerConfig struct {
	QueueKey        string
	CleanupSchedule string
}

type AppConfig struct {
	Environment string
	LogLevel    string
	Version     string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error in production)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "appforge"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Sandbox: SandboxConfig{
			BaseURL:       getEnv("SANDBOX_BASE_URL", "http://localhost:8090"),
			APIKey:        getEnv("SANDBOX_API_KEY", ""),
			Template:      getEnv("SANDBOX_TEMPLATE", "appforge-next"),
			PreviewDomain: getEnv("SANDBOX_PREVIEW_DOMAIN", "preview.appforge.dev"),
			PreviewPort:   getEnvAsInt("SANDBOX_PREVIEW_PORT", 3000),
			TTLMinutes:    getEnvAsInt("SANDBOX_TTL_MINUTES", 30),
		},
		Agent: AgentConfig{
			Provider:          getEnv("LLM_PROVIDER", "anthropic"),
			Model:             getEnv("LLM_MODEL", ""),
			APIKey:            getEnv("LLM_API_KEY", ""),
			MaxIterations:     getEnvAsInt("AGENT_MAX_ITERATIONS", 15),
			HistoryWindow:     getEnvAsInt("AGENT_HISTORY_WINDOW", 20),
			RequestsPerMinute: getEnvAsInt("LLM_REQUESTS_PER_MINUTE", 30),
		},
		Worker: WorkerConfig{
			QueueKey:        getEnv("BUILD_QUEUE_KEY", "builds:queue"),
			CleanupSchedule: getEnv("SANDBOX_CLEANUP_SCHEDULE", "0 */5 * * * *"),
		},
		App: AppConfig{
			Environment: getEnv("APP_ENV", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}

	if c.Sandbox.BaseURL == "" {
		return fmt.Errorf("SANDBOX_BASE_URL is required")
	}

	if c.Sandbox.TTLMinutes <= 0 {
		return fmt.Errorf("SANDBOX_TTL_MINUTES must be positive")
	}

	if c.Agent.MaxIterations <= 0 {
		return fmt.Errorf("AGENT_MAX_ITERATIONS must be positive")
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}
