package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	domainerrors "talka.backend/internal/domain/errors"
	"talka.backend/internal/interfaces/http/middleware"
	"talka.backend/internal/interfaces/http/response"
)

type profileEvictor interface {
	Evict(ctx context.Context, userID, botID string) error
}

type BotProfileHandler struct {
	service profileEvictor
}

func NewBotProfileHandler(service profileEvictor) *BotProfileHandler {
	return &BotProfileHandler{service: service}
}

// EvictProfileCache drops the cached profile so the next request reads the store.
// DELETE /api/bots/:botId/profile-cache
func (h *BotProfileHandler) EvictProfileCache(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	if err := h.service.Evict(c.Request.Context(), userID, c.Param("botId")); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Profile cache evicted"})
}
