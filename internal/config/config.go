// Package config handles application configuration loading and management.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/hostdesk/livechat-service/internal/domain/models"
)

// Archive store types.
const (
	ArchiveStoreRedis   = "redis"
	ArchiveStoreMongoDB = "mongodb"
	ArchiveStoreMemory  = "memory"
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig
	Cache      CacheConfig
	DocDB      DocDBConfig
	Vault      VaultConfig
	Completion CompletionConfig
	Chat       ChatConfig
	Log        LogConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host           string
	Port           int
	GinMode        string
	AdminToken     string
	AllowedOrigins []string
	EnableDocs     bool
}

// Address returns the server address in host:port format.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// CacheConfig holds cache-related configuration.
type CacheConfig struct {
	Type     string
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

// DocDBConfig holds document database configuration.
type DocDBConfig struct {
	Type     string
	URI      string
	Database string
}

// VaultConfig holds vault configuration.
type VaultConfig struct {
	Type          string
	EnvFile       string
	EncryptionKey string
}

// CompletionConfig holds the remote completion backend configuration.
type CompletionConfig struct {
	Provider      string
	BaseURL       string
	OpenAIBaseURL string
	Model         string
	Timeout       time.Duration
	Language      string
}

// ChatConfig holds the chat engine configuration.
type ChatConfig struct {
	Defaults     models.Settings
	ArchiveStore string
	SubmitRate   float64
	SubmitBurst  int
	MaxWidgets   int
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	defaults := models.DefaultSettings()

	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Port:           getEnvAsInt("SERVER_PORT", 8080),
			GinMode:        getEnv("GIN_MODE", "release"),
			AdminToken:     getEnv("ADMIN_TOKEN", ""),
			AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS"),
			EnableDocs:     getEnvAsBool("SWAGGER_ENABLED", true),
		},
		Cache: CacheConfig{
			Type:     getEnv("CACHE_TYPE", "redis"),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 3600)) * time.Second,
		},
		DocDB: DocDBConfig{
			Type:     getEnv("DOCDB_TYPE", "none"),
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "livechat"),
		},
		Vault: VaultConfig{
			Type:          getEnv("VAULT_TYPE", "dotenv"),
			EnvFile:       getEnv("VAULT_ENV_FILE", ".env"),
			EncryptionKey: getEnv("SECRETS_ENCRYPTION_KEY", ""),
		},
		Completion: CompletionConfig{
			Provider:      getEnv("COMPLETION_PROVIDER", "aiagent"),
			BaseURL:       getEnv("AI_AGENT_SERVICE_URL", "http://localhost:8000"),
			OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
			Model:         getEnv("OPENAI_MODEL", ""),
			Timeout:       time.Duration(getEnvAsInt("AI_AGENT_TIMEOUT_SECONDS", 30)) * time.Second,
			Language:      getEnv("CHAT_LANGUAGE", "en"),
		},
		Chat: ChatConfig{
			Defaults: models.Settings{
				ChatEnabled:      getEnvAsBool("CHAT_ENABLED", defaults.ChatEnabled),
				QueueAssignTime:  getEnvAsInt64("CHAT_QUEUE_ASSIGN_MS", defaults.QueueAssignTime),
				TypingStartDelay: getEnvAsInt64("CHAT_TYPING_START_MS", defaults.TypingStartDelay),
				ReplyTimePerWord: getEnvAsInt64("CHAT_REPLY_MS_PER_WORD", defaults.ReplyTimePerWord),
				FollowUpTimeout:  getEnvAsInt64("CHAT_FOLLOW_UP_MS", defaults.FollowUpTimeout),
				EndChatTimeout:   getEnvAsInt64("CHAT_END_CHAT_MS", defaults.EndChatTimeout),
			},
			ArchiveStore: getEnv("ARCHIVE_STORE", ArchiveStoreRedis),
			SubmitRate:   getEnvAsFloat("CHAT_SUBMIT_RATE", 2),
			SubmitBurst:  getEnvAsInt("CHAT_SUBMIT_BURST", 5),
			MaxWidgets:   getEnvAsInt("CHAT_MAX_WIDGETS", 10000),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is consistent.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535")
	}

	switch c.Cache.Type {
	case "redis", "memory":
	default:
		return fmt.Errorf("unsupported CACHE_TYPE: %s", c.Cache.Type)
	}

	switch c.DocDB.Type {
	case "mongodb", "cosmosdb":
		if c.DocDB.URI == "" {
			return fmt.Errorf("MONGODB_URI is required for DOCDB_TYPE %s", c.DocDB.Type)
		}
	case "none":
	default:
		return fmt.Errorf("unsupported DOCDB_TYPE: %s", c.DocDB.Type)
	}

	if c.Vault.Type != "dotenv" {
		return fmt.Errorf("unsupported VAULT_TYPE: %s", c.Vault.Type)
	}

	switch c.Completion.Provider {
	case "aiagent":
		if c.Completion.BaseURL == "" {
			return fmt.Errorf("AI_AGENT_SERVICE_URL is required for the aiagent provider")
		}
	case "openai", "none":
	default:
		return fmt.Errorf("unsupported COMPLETION_PROVIDER: %s", c.Completion.Provider)
	}

	switch c.Chat.ArchiveStore {
	case ArchiveStoreRedis, ArchiveStoreMemory:
	case ArchiveStoreMongoDB:
		if c.DocDB.Type == "none" {
			return fmt.Errorf("ARCHIVE_STORE mongodb requires DOCDB_TYPE mongodb or cosmosdb")
		}
	default:
		return fmt.Errorf("unsupported ARCHIVE_STORE: %s", c.Chat.ArchiveStore)
	}

	if err := c.Chat.Defaults.Validate(); err != nil {
		return fmt.Errorf("invalid chat defaults: %w", err)
	}

	return nil
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsInt64 gets an environment variable as an int64 with a default value.
func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsFloat gets an environment variable as a float with a default value.
func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as a boolean with a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated environment variable.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
