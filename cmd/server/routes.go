package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"talka.backend/internal/domain/entities"
	"talka.backend/internal/infrastructure/metrics"
	"talka.backend/internal/interfaces/http/handlers"
	"talka.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	botHandler        *handlers.BotHandler
	configHandler     *handlers.ConfigHandler
	apiKeyHandler     *handlers.ApiKeyHandler
	botProfileHandler *handlers.BotProfileHandler
	healthHandler     *handlers.HealthHandler
	metrics           *metrics.Registry
	gatekeeper        middleware.Authorizer
	dashboardAuth     gin.HandlerFunc
}

func registerAPIRoutes(r *gin.Engine, d routeDeps) {
	api := r.Group("/api")
	{
		// Bot-facing routes authenticated by mesh token
		bot := api.Group("/bot/:botId")
		{
			bot.POST("/validate", middleware.BotAuthMiddleware(d.gatekeeper, entities.ScopeRead), d.botHandler.Validate)
			bot.GET("/config", d.configHandler.WidgetConfig)
		}

		// Public signed UI settings. The static segment wins over :botId.
		api.GET("/config/public-key", d.configHandler.PublicKey)
		api.GET("/config/:botId", d.configHandler.UISettings)

		// Dashboard routes (identity provider session)
		bots := api.Group("/bots/:botId")
		bots.Use(d.dashboardAuth)
		{
			bots.POST("/keys", d.apiKeyHandler.CreateApiKey)
			bots.GET("/keys", d.apiKeyHandler.ListApiKeys)
			bots.DELETE("/keys/:apiId", d.apiKeyHandler.RevokeApiKey)
			bots.DELETE("/profile-cache", d.botProfileHandler.EvictProfileCache)
		}
	}
}

func registerOpsRoutes(r *gin.Engine, d routeDeps) {
	r.GET("/health", d.healthHandler.Health)
	if d.metrics != nil {
		r.GET("/metrics", gin.WrapH(d.metrics.Handler()))
	}
}

// applyCORSMiddleware reflects the caller's origin. Widgets are embedded on
// arbitrary customer sites and authenticate with headers, not cookies.
func applyCORSMiddleware(r *gin.Engine) {
	r.Use(func(c *gin.Context) {
		if origin := c.GetHeader("Origin"); origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-ID, "+middleware.BotAuthHeader)
		c.Header("Access-Control-Expose-Headers", middleware.RequestIDHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})
}
