package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"talka.backend/internal/interfaces/http/response"
	"talka.backend/internal/usecases"
	"talka.backend/pkg/logger"
)

const (
	// BotAuthHeader carries the mesh token and wins over Authorization.
	BotAuthHeader = "x-bot-auth"
	// AuthContextKey is the gin key of the *usecases.AuthContext.
	AuthContextKey = "botAuth"
	// BotIDParam is the route parameter naming the bot.
	BotIDParam = "botId"
)

// Authorizer authenticates bot-scoped requests.
type Authorizer interface {
	Authorize(ctx context.Context, req usecases.AuthRequest) (*usecases.AuthContext, error)
}

// BotAuthMiddleware runs the gatekeeper for the bot named in the route and requires
// scope.
func BotAuthMiddleware(gk Authorizer, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		botID := c.Param(BotIDParam)
		ctx := logger.WithBotID(c.Request.Context(), botID)
		c.Request = c.Request.WithContext(ctx)

		authCtx, err := gk.Authorize(ctx, usecases.AuthRequest{
			Credential:    extractCredential(c),
			BotID:         botID,
			RequiredScope: scope,
		})
		if err != nil {
			response.Abort(c, err)
			return
		}

		c.Set(AuthContextKey, authCtx)
		c.Next()
	}
}

// GetAuthContext returns the gatekeeper result stored by BotAuthMiddleware.
func GetAuthContext(c *gin.Context) (*usecases.AuthContext, bool) {
	v, exists := c.Get(AuthContextKey)
	if !exists {
		return nil, false
	}
	authCtx, ok := v.(*usecases.AuthContext)
	return authCtx, ok
}

func extractCredential(c *gin.Context) string {
	if token := strings.TrimSpace(c.GetHeader(BotAuthHeader)); token != "" {
		return token
	}
	token, _ := bearerToken(c)
	return token
}
