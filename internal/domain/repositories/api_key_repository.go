package repositories

import (
	"context"

	"talka.backend/internal/domain/entities"
)

// ApiKeyRepository is the authoritative store of key records. Finders return
// errors.ErrNotFound for absent rows.
type ApiKeyRepository interface {
	Create(ctx context.Context, apiKey *entities.ApiKey) error
	FindByTokenHash(ctx context.Context, tokenHash string) (*entities.ApiKey, error)
	FindByID(ctx context.Context, id string) (*entities.ApiKey, error)
	ListByBotID(ctx context.Context, botID string) ([]*entities.ApiKey, error)
	CountByBotID(ctx context.Context, botID string) (int64, error)
	Delete(ctx context.Context, id string) error
}
