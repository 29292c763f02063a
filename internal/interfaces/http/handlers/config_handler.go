package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-jose/go-jose/v3"
	"talka.backend/internal/domain/entities"
	domainerrors "talka.backend/internal/domain/errors"
	"talka.backend/internal/interfaces/http/response"
	"talka.backend/pkg/logger"
)

type configSigningService interface {
	WidgetConfig(ctx context.Context, botID string) (*entities.SignedWidgetConfig, error)
	UISettings(ctx context.Context, botID string) (*entities.SignedUISettings, error)
	PublicKey() (*jose.JSONWebKey, error)
}

type ConfigHandler struct {
	service configSigningService
}

func NewConfigHandler(service configSigningService) *ConfigHandler {
	return &ConfigHandler{service: service}
}

// WidgetConfig returns the HMAC signed widget config.
// GET /api/bot/:botId/config
func (h *ConfigHandler) WidgetConfig(c *gin.Context) {
	botID := c.Param("botId")
	if botID == "" {
		response.Error(c, domainerrors.BadRequest("botId is required"))
		return
	}

	ctx := logger.WithBotID(c.Request.Context(), botID)
	result, err := h.service.WidgetConfig(ctx, botID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// UISettings returns the ECDSA signed UI settings.
// GET /api/config/:botId
func (h *ConfigHandler) UISettings(c *gin.Context) {
	botID := c.Param("botId")
	if botID == "" {
		response.Error(c, domainerrors.BadRequest("botId is required"))
		return
	}

	ctx := logger.WithBotID(c.Request.Context(), botID)
	result, err := h.service.UISettings(ctx, botID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// PublicKey returns the JWK that verifies UISettings signatures.
// GET /api/config/public-key
func (h *ConfigHandler) PublicKey(c *gin.Context) {
	jwk, err := h.service.PublicKey()
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, jwk)
}
