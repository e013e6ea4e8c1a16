// Package main is the entry point for the HostDesk Live Chat Service.
// @title HostDesk Live Chat Service API
// @version 1.0
// @description Live-support chat engine: queueing, simulated agents, AI-backed replies and a session archive.
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.url https://github.com/hostdesk/livechat-service
// @contact.email support@hostdesk.example

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer admin token
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	_ "github.com/hostdesk/livechat-service/docs"
	"github.com/hostdesk/livechat-service/internal/api/handlers"
	"github.com/hostdesk/livechat-service/internal/api/middleware"
	"github.com/hostdesk/livechat-service/internal/api/routes"
	"github.com/hostdesk/livechat-service/internal/config"
	"github.com/hostdesk/livechat-service/internal/core/cache"
	"github.com/hostdesk/livechat-service/internal/core/docdb"
	"github.com/hostdesk/livechat-service/internal/core/vault"
	memorycache "github.com/hostdesk/livechat-service/internal/infrastructure/cache/memory"
	rediscache "github.com/hostdesk/livechat-service/internal/infrastructure/cache/redis"
	"github.com/hostdesk/livechat-service/internal/infrastructure/docdb/mongodb"
	dotenvvault "github.com/hostdesk/livechat-service/internal/infrastructure/vault/dotenv"
	"github.com/hostdesk/livechat-service/internal/pkg/clock"
	"github.com/hostdesk/livechat-service/internal/pkg/encryption"
	"github.com/hostdesk/livechat-service/internal/pkg/logging"
	"github.com/hostdesk/livechat-service/internal/pkg/observability"
	"github.com/hostdesk/livechat-service/internal/services/agents"
	"github.com/hostdesk/livechat-service/internal/services/archive"
	"github.com/hostdesk/livechat-service/internal/services/chat"
	"github.com/hostdesk/livechat-service/internal/services/completion"
	"github.com/hostdesk/livechat-service/internal/services/completion/aiagent"
	"github.com/hostdesk/livechat-service/internal/services/completion/openai"
	"github.com/hostdesk/livechat-service/internal/services/responder"
	"github.com/hostdesk/livechat-service/internal/services/settings"
)

const apiKeySecret = "AI_AGENT_API_KEY"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Setup(cfg.Log.Level, cfg.Log.Format)
	observability.InitMetrics()

	ctx := context.Background()

	// Initialize vault using factory pattern
	secretVault, err := createVault(cfg.Vault)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize vault")
	}
	defer secretVault.Close()

	// Initialize cache using factory pattern
	cacheStore, err := createCache(cfg.Cache)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize cache")
	}
	defer cacheStore.Close()

	// Initialize document db client using factory pattern
	docDBClient, err := createDocDBClient(ctx, cfg.DocDB)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize document db client")
	}
	if docDBClient != nil {
		defer docDBClient.Close(ctx)

		if err := docDBClient.EnsureIndexes(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to ensure indexes")
		}
	}

	encryptor, err := createEncryptor(ctx, cfg.Vault, secretVault)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize encryptor")
	}

	// Settings
	settingsRepo, err := settings.NewCacheRepository(&settings.CacheRepositoryConfig{
		Cache:     cacheStore,
		Encryptor: encryptor,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize settings repository")
	}
	defaultKey, _ := secretVault.GetSecret(ctx, vault.SchemeDotEnv+apiKeySecret)
	settingsService, err := settings.NewService(&settings.Config{
		Repository:    settingsRepo,
		Defaults:      cfg.Chat.Defaults,
		DefaultAPIKey: defaultKey,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize settings service")
	}
	if err := settingsService.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to load persisted settings, using defaults")
	}

	// Archive
	archiveRepo, err := createArchiveRepository(cfg.Chat.ArchiveStore, cacheStore, docDBClient)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize archive repository")
	}
	archiveService, err := archive.NewService(&archive.Config{
		Repository: archiveRepo,
		Clock:      clock.New(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize archive service")
	}
	if err := archiveService.Load(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to load chat archive, starting empty")
	}

	// Replies
	completer, err := createCompleter(cfg.Completion)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize completion client")
	}
	resolver, err := responder.NewResolver(&responder.Config{
		Completer: completer,
		Keys:      settingsService,
		Language:  cfg.Completion.Language,
		Clock:     clock.New(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize responder")
	}

	// Chat engine
	registry, err := chat.NewRegistry(&chat.RegistryConfig{
		Controller: chat.Config{
			Settings: settingsService,
			Agents:   agents.DefaultPool(),
			Resolver: resolver,
			Archiver: archiveService,
			Clock:    clock.New(),
		},
		MaxWidgets: cfg.Chat.MaxWidgets,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize chat registry")
	}

	// Set Gin mode
	gin.SetMode(cfg.Server.GinMode)

	components := map[string]handlers.Pinger{
		"cache": cacheStore,
		"vault": secretVault,
	}
	if docDBClient != nil {
		components["docdb"] = docDBClient
	}

	router := gin.New()
	routes.SetupWithMiddleware(router, &routes.Config{
		HealthHandler:   handlers.NewHealthHandler(components),
		SettingsHandler: handlers.NewSettingsHandler(settingsService),
		ChatHandler:     handlers.NewChatHandler(registry, handlers.DefaultKeepAlive),
		AIAgentHandler:  handlers.NewAIAgentHandler(completer, settingsService, resolver),
		ArchiveHandler:  handlers.NewArchiveHandler(archiveService),
		AuthMiddleware:  middleware.NewAuthMiddleware(cfg.Server.AdminToken),
		RateLimiter:     middleware.NewRateLimitMiddleware(cfg.Chat.SubmitRate, cfg.Chat.SubmitBurst),
		EnableDocs:      cfg.Server.EnableDocs,
	}, middleware.DefaultCORSConfig(cfg.Server.AllowedOrigins), middleware.NewLoggingMiddleware(), middleware.NewErrorMiddleware())

	// Create HTTP server
	srv := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", cfg.Server.Address()).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Stop every session first so open event streams end
	registry.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}

// createVault creates a vault based on the configuration.
func createVault(cfg config.VaultConfig) (vault.Vault, error) {
	switch vault.Type(cfg.Type) {
	case vault.TypeDotEnv:
		return dotenvvault.NewVault(cfg.EnvFile)
	default:
		return nil, errors.New("unsupported vault type: " + cfg.Type)
	}
}

// createCache creates a cache based on the configuration.
func createCache(cfg config.CacheConfig) (cache.Cache, error) {
	switch cache.Type(cfg.Type) {
	case cache.TypeRedis:
		return rediscache.NewCache(rediscache.Config{
			Host:       cfg.Host,
			Port:       cfg.Port,
			Password:   cfg.Password,
			DB:         cfg.DB,
			DefaultTTL: cfg.TTL,
		})
	case cache.TypeMemory:
		return memorycache.NewCache(cfg.TTL), nil
	default:
		return nil, errors.New("unsupported cache type: " + cfg.Type)
	}
}

// createDocDBClient creates a document database client, or nil when disabled.
func createDocDBClient(ctx context.Context, cfg config.DocDBConfig) (*mongodb.Client, error) {
	switch docdb.Type(cfg.Type) {
	case docdb.TypeMongoDB, docdb.TypeCosmosDB:
		// Cosmos DB is reached through its MongoDB API
		return mongodb.NewClient(ctx, &mongodb.ClientConfig{
			URI:          cfg.URI,
			DatabaseName: cfg.Database,
		})
	case docdb.TypeNone:
		return nil, nil
	default:
		return nil, errors.New("unsupported docdb type: " + cfg.Type)
	}
}

// createEncryptor creates an encryptor based on the configuration.
func createEncryptor(ctx context.Context, cfg config.VaultConfig, secretVault vault.Vault) (encryption.Encryptor, error) {
	encryptionKey := cfg.EncryptionKey
	if encryptionKey == "" {
		if key, err := secretVault.GetSecret(ctx, vault.SchemeDotEnv+"SECRETS_ENCRYPTION_KEY"); err == nil {
			encryptionKey = key
		}
	}

	if encryptionKey == "" {
		log.Warn().Msg("SECRETS_ENCRYPTION_KEY not set, using NoOp encryptor")
	}

	return encryption.New(encryptionKey)
}

// createCompleter creates the remote completion client, or nil when disabled.
func createCompleter(cfg config.CompletionConfig) (completion.Completer, error) {
	switch completion.Provider(cfg.Provider) {
	case completion.ProviderAIAgent:
		return aiagent.NewClient(&aiagent.ClientConfig{
			BaseURL: cfg.BaseURL,
			Timeout: cfg.Timeout,
		})
	case completion.ProviderOpenAI:
		return openai.NewClient(&openai.ClientConfig{
			BaseURL:    cfg.OpenAIBaseURL,
			Model:      cfg.Model,
			HTTPClient: &http.Client{Timeout: cfg.Timeout},
		})
	default:
		log.Warn().Str("provider", cfg.Provider).Msg("remote completion disabled, replies use the local corpus")
		return nil, nil
	}
}

// createArchiveRepository selects the backing store for archived sessions.
func createArchiveRepository(store string, cacheStore cache.Cache, docDBClient *mongodb.Client) (archive.Repository, error) {
	switch store {
	case config.ArchiveStoreRedis:
		return archive.NewCacheRepository(cacheStore, archive.DefaultListKey)
	case config.ArchiveStoreMongoDB:
		if docDBClient == nil {
			return nil, errors.New("archive store mongodb requires a document database")
		}
		return archive.NewDocDBRepository(docDBClient.Archive())
	case config.ArchiveStoreMemory:
		return archive.NewMemoryRepository(), nil
	default:
		return nil, errors.New("unsupported archive store: " + store)
	}
}
