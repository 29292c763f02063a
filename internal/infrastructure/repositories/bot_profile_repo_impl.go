package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"talka.backend/internal/domain/entities"
	domainerrors "talka.backend/internal/domain/errors"
	"talka.backend/internal/domain/repositories"
	"talka.backend/internal/infrastructure/models"
)

// BotProfileRepositoryImpl reads the three bot profile tables.
type BotProfileRepositoryImpl struct {
	db *gorm.DB
}

func NewBotProfileRepository(db *gorm.DB) repositories.BotProfileRepository {
	return &BotProfileRepositoryImpl{db: db}
}

func (r *BotProfileRepositoryImpl) GetConfig(ctx context.Context, botID string) (*entities.BotConfig, error) {
	var m models.BotConfig
	if err := first(GetDB(ctx, r.db), &m, botID); err != nil {
		return nil, err
	}
	return &entities.BotConfig{
		BotID:        m.BotID,
		UserID:       m.UserID,
		Name:         m.Name,
		Persona:      m.Persona,
		Tone:         m.Tone.String,
		Greeting:     m.Greeting,
		Theme:        m.Theme,
		PrimaryColor: m.PrimaryColor.String,
		Position:     m.Position.String,
		AvatarURL:    m.AvatarURL.String,
	}, nil
}

func (r *BotProfileRepositoryImpl) GetSettings(ctx context.Context, botID string) (*entities.BotSettings, error) {
	var m models.BotSettings
	if err := first(GetDB(ctx, r.db), &m, botID); err != nil {
		return nil, err
	}
	return &entities.BotSettings{
		BotID:               m.BotID,
		BusinessName:        m.BusinessName,
		BusinessDescription: m.BusinessDescription,
		Model:               m.Model,
		Temperature:         m.Temperature,
		TopP:                m.TopP,
		MaxTokens:           m.MaxTokens,
	}, nil
}

func (r *BotProfileRepositoryImpl) GetRuntimeSettings(ctx context.Context, botID string) (*entities.BotRuntimeSettings, error) {
	var m models.BotRuntimeSettings
	if err := first(GetDB(ctx, r.db), &m, botID); err != nil {
		return nil, err
	}
	origins := []string(m.AllowedOrigins)
	if origins == nil {
		origins = []string{}
	}
	return &entities.BotRuntimeSettings{
		BotID:              m.BotID,
		RateLimitPerMinute: m.RateLimitPerMinute,
		MonthlyQuota:       m.MonthlyQuota,
		WidgetEnabled:      m.WidgetEnabled,
		MaintenanceMode:    m.MaintenanceMode,
		AllowedOrigins:     origins,
	}, nil
}

func first(db *gorm.DB, dest interface{}, botID string) error {
	if err := db.Where("bot_id = ?", botID).First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return domainerrors.ErrNotFound
		}
		return err
	}
	return nil
}
