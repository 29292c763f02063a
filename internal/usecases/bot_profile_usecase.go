package usecases

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"talka.backend/internal/domain/entities"
	domainerrors "talka.backend/internal/domain/errors"
	"talka.backend/internal/domain/repositories"
	"talka.backend/pkg/logger"
)

// BotProfileCache holds assembled profiles. Get returns nil, nil on a miss.
type BotProfileCache interface {
	Get(ctx context.Context, botID string) (*entities.BotProfile, error)
	Set(ctx context.Context, botID string, profile *entities.BotProfile) error
	Delete(ctx context.Context, botID string) error
}

type BotProfileUsecase struct {
	repo     repositories.BotProfileRepository
	cache    BotProfileCache
	validate *validator.Validate
	now      func() time.Time
}

func NewBotProfileUsecase(repo repositories.BotProfileRepository, cache BotProfileCache) *BotProfileUsecase {
	return &BotProfileUsecase{
		repo:     repo,
		cache:    cache,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
}

// Resolve returns the complete profile of botID, from cache when possible. Only a
// profile whose three parts exist and validate is cached. Concurrent misses for the
// same bot each hit the store; the last cache write wins.
func (u *BotProfileUsecase) Resolve(ctx context.Context, botID string) (*entities.BotProfile, error) {
	cached, err := u.cache.Get(ctx, botID)
	if err != nil {
		logger.Warn(ctx, "Bot profile cache read failed, falling back to store", zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	profile, err := u.fetch(ctx, botID)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	if profile.Config == nil || u.invalid(ctx, "config", profile.Config) {
		return nil, domainerrors.ConfigMissing()
	}
	if profile.Settings == nil || u.invalid(ctx, "settings", profile.Settings) {
		return nil, domainerrors.SettingsMissing()
	}
	if profile.RuntimeSettings == nil || u.invalid(ctx, "runtime_settings", profile.RuntimeSettings) {
		return nil, domainerrors.SettingsMissing()
	}

	if err := u.cache.Set(ctx, botID, profile); err != nil {
		logger.Warn(ctx, "Bot profile cache write failed", zap.Error(err))
	}
	return profile, nil
}

// Evict drops the cached profile of a bot the user owns.
func (u *BotProfileUsecase) Evict(ctx context.Context, userID, botID string) error {
	cfg, err := u.repo.GetConfig(ctx, botID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.NotFound("bot not found")
		}
		return domainerrors.InternalError(err)
	}
	if cfg.UserID != userID {
		return domainerrors.Forbidden("not owner of bot")
	}

	if err := u.cache.Delete(ctx, botID); err != nil {
		return domainerrors.InternalError(err)
	}
	logger.Info(ctx, "Bot profile cache evicted", zap.String("bot_id", botID))
	return nil
}

// fetch loads the three parts concurrently. Absent parts are left nil.
func (u *BotProfileUsecase) fetch(ctx context.Context, botID string) (*entities.BotProfile, error) {
	profile := &entities.BotProfile{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		cfg, err := u.repo.GetConfig(gctx, botID)
		if err != nil {
			return ignoreNotFound(err)
		}
		profile.Config = cfg
		return nil
	})
	g.Go(func() error {
		settings, err := u.repo.GetSettings(gctx, botID)
		if err != nil {
			return ignoreNotFound(err)
		}
		profile.Settings = settings
		return nil
	})
	g.Go(func() error {
		runtime, err := u.repo.GetRuntimeSettings(gctx, botID)
		if err != nil {
			return ignoreNotFound(err)
		}
		profile.RuntimeSettings = runtime
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	profile.FetchedAt = u.now().UTC()
	return profile, nil
}

func (u *BotProfileUsecase) invalid(ctx context.Context, part string, v any) bool {
	if err := u.validate.Struct(v); err != nil {
		logger.Warn(ctx, "Bot profile part failed validation", zap.String("part", part), zap.Error(err))
		return true
	}
	return false
}

func ignoreNotFound(err error) error {
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil
	}
	return err
}
