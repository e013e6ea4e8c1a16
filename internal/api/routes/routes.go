// Package routes defines the HTTP routes for the live chat service.
package routes

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/hostdesk/livechat-service/internal/api/handlers"
	"github.com/hostdesk/livechat-service/internal/api/middleware"
	"github.com/hostdesk/livechat-service/internal/pkg/observability"
)

// BasePath is the prefix of every API route.
const BasePath = "/api/v1/livechat"

// Config holds the dependencies for setting up routes.
type Config struct {
	HealthHandler   *handlers.HealthHandler
	SettingsHandler *handlers.SettingsHandler
	ChatHandler     *handlers.ChatHandler
	AIAgentHandler  *handlers.AIAgentHandler
	ArchiveHandler  *handlers.ArchiveHandler
	AuthMiddleware  *middleware.AuthMiddleware
	RateLimiter     *middleware.RateLimitMiddleware
	EnableDocs      bool
}

// Setup configures all routes on the Gin engine.
func Setup(r *gin.Engine, cfg *Config) {
	// Health and metrics at the root for probes and scrapers
	r.GET("/health", cfg.HealthHandler.Health)
	r.GET("/ready", cfg.HealthHandler.Ready)
	r.GET("/live", cfg.HealthHandler.Live)
	r.GET("/metrics", gin.WrapH(observability.MetricsHandler()))

	if cfg.EnableDocs {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	v1 := r.Group(BasePath)
	{
		v1.GET("/settings/public", cfg.SettingsHandler.GetPublicSettings)

		// Widget routes (no auth; one session per widget instance)
		widgets := v1.Group("/widgets/:widgetId")
		{
			widgets.POST("/messages", cfg.RateLimiter.Limit(), cfg.ChatHandler.SubmitMessage)
			widgets.GET("/session", cfg.ChatHandler.GetSession)
			widgets.POST("/close", cfg.ChatHandler.CloseChat)
			widgets.POST("/reset", cfg.ChatHandler.ResetChat)
			widgets.GET("/events", cfg.ChatHandler.StreamEvents)
		}

		admin := v1.Group("/admin")
		admin.Use(cfg.AuthMiddleware.Authenticate())
		{
			admin.GET("/settings", cfg.SettingsHandler.GetSettings)
			admin.PUT("/settings", cfg.SettingsHandler.UpdateSettings)

			admin.POST("/ai-agent/validate", cfg.AIAgentHandler.ValidateKey)
			admin.GET("/ai-agent/errors", cfg.AIAgentHandler.ListErrors)

			chats := admin.Group("/chats")
			{
				chats.GET("", cfg.ArchiveHandler.ListChats)
				chats.DELETE("", cfg.ArchiveHandler.DeleteAllChats)
				chats.GET("/export", cfg.ArchiveHandler.ExportChats)
				chats.GET("/:chatId", cfg.ArchiveHandler.GetChat)
				chats.DELETE("/:chatId", cfg.ArchiveHandler.DeleteChat)
			}
		}
	}

	r.NoRoute(middleware.NotFound())
	r.NoMethod(middleware.MethodNotAllowed())
}

// SetupWithMiddleware sets up routes with common middleware.
func SetupWithMiddleware(r *gin.Engine, cfg *Config, corsCfg middleware.CORSConfig, loggingMw *middleware.LoggingMiddleware, errorMw *middleware.ErrorMiddleware) {
	// Apply global middleware
	r.Use(loggingMw.RequestLogger())
	r.Use(loggingMw.Logger())
	r.Use(errorMw.Recovery())
	r.Use(middleware.Metrics())
	r.Use(middleware.NewCORSMiddleware(corsCfg))
	middleware.SetupCORSRoutes(r, corsCfg)

	// Setup routes
	Setup(r, cfg)
}
