package repositories

import (
	"context"

	"talka.backend/internal/domain/entities"
)

// BotProfileRepository reads the three records a profile is assembled from.
// Each getter returns errors.ErrNotFound for an absent record.
type BotProfileRepository interface {
	GetConfig(ctx context.Context, botID string) (*entities.BotConfig, error)
	GetSettings(ctx context.Context, botID string) (*entities.BotSettings, error)
	GetRuntimeSettings(ctx context.Context, botID string) (*entities.BotRuntimeSettings, error)
}
