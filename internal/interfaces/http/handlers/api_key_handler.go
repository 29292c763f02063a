package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"talka.backend/internal/domain/entities"
	domainerrors "talka.backend/internal/domain/errors"
	"talka.backend/internal/interfaces/http/middleware"
	"talka.backend/internal/interfaces/http/response"
	"talka.backend/pkg/utils"
)

type apiKeyService interface {
	CreateKey(ctx context.Context, userID, botID string, input *entities.CreateApiKeyInput) (*entities.CreateApiKeyResponse, error)
	ListKeys(ctx context.Context, userID, botID string) ([]entities.ApiKeySummary, error)
	Invalidate(ctx context.Context, userID, botID, apiID string) error
}

type ApiKeyHandler struct {
	service apiKeyService
}

func NewApiKeyHandler(service apiKeyService) *ApiKeyHandler {
	return &ApiKeyHandler{service: service}
}

// CreateApiKey creates a key for a bot; the secret and mesh token are returned once.
// POST /api/bots/:botId/keys
func (h *ApiKeyHandler) CreateApiKey(c *gin.Context) {
	var input entities.CreateApiKeyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	result, err := h.service.CreateKey(c.Request.Context(), userID, c.Param("botId"), &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, result)
}

// ListApiKeys lists the keys of a bot
// GET /api/bots/:botId/keys
func (h *ApiKeyHandler) ListApiKeys(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	keys, err := h.service.ListKeys(c.Request.Context(), userID, c.Param("botId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"items": keys})
}

// RevokeApiKey deletes a key and evicts it from the cache.
// DELETE /api/bots/:botId/keys/:apiId
func (h *ApiKeyHandler) RevokeApiKey(c *gin.Context) {
	apiID := c.Param("apiId")
	if !utils.IsValidID(apiID) {
		response.Error(c, domainerrors.BadRequest("Invalid API Key ID"))
		return
	}

	userID, exists := middleware.GetUserID(c)
	if !exists {
		response.Error(c, domainerrors.Unauthorized("User not authenticated"))
		return
	}

	if err := h.service.Invalidate(c.Request.Context(), userID, c.Param("botId"), apiID); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "API Key revoked successfully"})
}
