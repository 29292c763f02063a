package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	domainerrors "talka.backend/internal/domain/errors"
	"talka.backend/internal/interfaces/http/middleware"
	"talka.backend/internal/interfaces/http/response"
)

type BotHandler struct{}

func NewBotHandler() *BotHandler {
	return &BotHandler{}
}

// Validate confirms a mesh token for the bot in the path.
// POST /api/bot/:botId/validate
func (h *BotHandler) Validate(c *gin.Context) {
	authCtx, ok := middleware.GetAuthContext(c)
	if !ok || authCtx.ApiKey == nil {
		response.Error(c, domainerrors.TokenMissing())
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"ok":          true,
		"bot_id":      authCtx.BotID,
		"permissions": authCtx.ApiKey.Permissions,
		"apiName":     authCtx.ApiKey.Name,
	})
}
