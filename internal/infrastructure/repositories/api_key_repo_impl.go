package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"talka.backend/internal/domain/entities"
	domainerrors "talka.backend/internal/domain/errors"
	"talka.backend/internal/domain/repositories"
	"talka.backend/internal/infrastructure/models"
	"talka.backend/pkg/utils"
)

// ApiKeyRepositoryImpl implements repositories.ApiKeyRepository
type ApiKeyRepositoryImpl struct {
	db *gorm.DB
}

// NewApiKeyRepository creates a new API key repository
func NewApiKeyRepository(db *gorm.DB) repositories.ApiKeyRepository {
	return &ApiKeyRepositoryImpl{db: db}
}

// Create inserts a key. ID and CreatedAt are filled when empty.
func (r *ApiKeyRepositoryImpl) Create(ctx context.Context, apiKey *entities.ApiKey) error {
	if apiKey.ID == "" {
		apiKey.ID = utils.NewID()
	}
	if apiKey.CreatedAt.IsZero() {
		apiKey.CreatedAt = time.Now().UTC()
	}
	m := r.toModel(apiKey)
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domainerrors.ErrAlreadyExists
		}
		return err
	}
	return nil
}

func (r *ApiKeyRepositoryImpl) FindByTokenHash(ctx context.Context, tokenHash string) (*entities.ApiKey, error) {
	var m models.ApiKey
	if err := GetDB(ctx, r.db).Where("token_hash = ?", tokenHash).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *ApiKeyRepositoryImpl) FindByID(ctx context.Context, id string) (*entities.ApiKey, error) {
	var m models.ApiKey
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *ApiKeyRepositoryImpl) ListByBotID(ctx context.Context, botID string) ([]*entities.ApiKey, error) {
	var ms []models.ApiKey
	if err := GetDB(ctx, r.db).Where("bot_id = ?", botID).Order("created_at ASC").Find(&ms).Error; err != nil {
		return nil, err
	}

	keys := make([]*entities.ApiKey, 0, len(ms))
	for i := range ms {
		keys = append(keys, r.toEntity(&ms[i]))
	}
	return keys, nil
}

func (r *ApiKeyRepositoryImpl) CountByBotID(ctx context.Context, botID string) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&models.ApiKey{}).Where("bot_id = ?", botID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Delete removes the row permanently; deleting an absent key is ErrNotFound.
func (r *ApiKeyRepositoryImpl) Delete(ctx context.Context, id string) error {
	result := GetDB(ctx, r.db).Where("id = ?", id).Delete(&models.ApiKey{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *ApiKeyRepositoryImpl) toEntity(m *models.ApiKey) *entities.ApiKey {
	perms := []string(m.Permissions)
	if perms == nil {
		perms = []string{}
	}
	return &entities.ApiKey{
		ID:          m.ID,
		BotID:       m.BotID,
		UserID:      m.UserID,
		Name:        m.Name,
		TokenHash:   m.TokenHash,
		Permissions: perms,
		CreatedAt:   m.CreatedAt,
	}
}

func (r *ApiKeyRepositoryImpl) toModel(e *entities.ApiKey) *models.ApiKey {
	perms := pq.StringArray(e.Permissions)
	if perms == nil {
		perms = pq.StringArray{}
	}
	return &models.ApiKey{
		ID:          e.ID,
		BotID:       e.BotID,
		UserID:      e.UserID,
		Name:        e.Name,
		TokenHash:   e.TokenHash,
		Permissions: perms,
		CreatedAt:   e.CreatedAt,
	}
}
