package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"talka.backend/internal/config"
	"talka.backend/internal/domain/entities"
	domainerrors "talka.backend/internal/domain/errors"
	"talka.backend/internal/domain/repositories"
	"talka.backend/pkg/crypto"
	"talka.backend/pkg/logger"
	"talka.backend/pkg/meshtoken"
)

var generateAPISecret = crypto.GenerateAPISecret

// ApiKeyCache is the cache-aside tier in front of the api_keys table.
type ApiKeyCache interface {
	Get(ctx context.Context, tokenHash string) (*entities.ApiKey, error)
	Set(ctx context.Context, key *entities.ApiKey) error
	Delete(ctx context.Context, tokenHash string) error
}

// MeshTokenIssuer issues signed mesh tokens.
type MeshTokenIssuer interface {
	Issue(rawSecret, botID, userID string, ttl time.Duration) (string, error)
}

type ApiKeyUsecase struct {
	apiKeyRepo  repositories.ApiKeyRepository
	profileRepo repositories.BotProfileRepository
	uow         repositories.UnitOfWork
	cache       ApiKeyCache
	issuer      MeshTokenIssuer
	tokenTTL    time.Duration
	maxKeys     int
	now         func() time.Time
}

// NewApiKeyUsecase wires the key store. issuer may be nil when MESH_TOKEN_SECRET is
// not configured; key creation then fails with SIGNING_CONFIG_MISSING.
func NewApiKeyUsecase(
	apiKeyRepo repositories.ApiKeyRepository,
	profileRepo repositories.BotProfileRepository,
	uow repositories.UnitOfWork,
	cache ApiKeyCache,
	issuer MeshTokenIssuer,
	cfg config.MeshConfig,
) *ApiKeyUsecase {
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = meshtoken.DefaultTTL
	}
	maxKeys := cfg.MaxKeysPerBot
	if maxKeys <= 0 {
		maxKeys = config.DefaultMaxKeysPerBot
	}
	return &ApiKeyUsecase{
		apiKeyRepo:  apiKeyRepo,
		profileRepo: profileRepo,
		uow:         uow,
		cache:       cache,
		issuer:      issuer,
		tokenTTL:    ttl,
		maxKeys:     maxKeys,
		now:         time.Now,
	}
}

// CreateKey issues a new key for a bot the user owns. The raw secret and mesh token
// are only ever returned here.
func (u *ApiKeyUsecase) CreateKey(ctx context.Context, userID, botID string, input *entities.CreateApiKeyInput) (*entities.CreateApiKeyResponse, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, domainerrors.BadRequest("name is required")
	}
	if u.issuer == nil {
		return nil, domainerrors.SigningConfigMissing(config.EnvMeshTokenSecret)
	}

	var (
		key       *entities.ApiKey
		secret    string
		meshToken string
	)
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.ensureBotOwner(u.uow.WithLock(txCtx), userID, botID); err != nil {
			return err
		}

		count, err := u.apiKeyRepo.CountByBotID(txCtx, botID)
		if err != nil {
			return domainerrors.InternalError(err)
		}
		if count >= int64(u.maxKeys) {
			return domainerrors.KeyLimitReached(u.maxKeys)
		}

		// Credentials are minted only once the caller may hold another key.
		secret, err = generateAPISecret()
		if err != nil {
			return domainerrors.InternalError(err)
		}
		meshToken, err = u.issuer.Issue(secret, botID, userID, u.tokenTTL)
		if err != nil {
			if errors.Is(err, meshtoken.ErrInvalidField) {
				return domainerrors.BadRequest("invalid bot or user id")
			}
			return domainerrors.InternalError(err)
		}

		key = &entities.ApiKey{
			BotID:       botID,
			UserID:      userID,
			Name:        name,
			TokenHash:   crypto.HashToken(secret),
			Permissions: normalizePermissions(input.Permissions),
			CreatedAt:   u.now().UTC(),
		}
		if err := u.apiKeyRepo.Create(txCtx, key); err != nil {
			return domainerrors.InternalError(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "API key created",
		zap.String("api_id", key.ID),
		zap.String("bot_id", botID),
		zap.Strings("permissions", key.Permissions),
	)

	return &entities.CreateApiKeyResponse{
		ApiID:       key.ID,
		BotID:       key.BotID,
		Name:        key.Name,
		Permissions: key.Permissions,
		Secret:      secret,
		MeshToken:   meshToken,
		ExpiresAt:   key.CreatedAt.Add(u.tokenTTL),
		CreatedAt:   key.CreatedAt,
	}, nil
}

// Lookup resolves a raw secret to its record through the cache. A missing record is
// domainerrors.ErrNotFound; any other store error is returned as is.
func (u *ApiKeyUsecase) Lookup(ctx context.Context, rawSecret string) (*entities.ApiKey, error) {
	tokenHash := crypto.HashToken(rawSecret)

	cached, err := u.cache.Get(ctx, tokenHash)
	if err != nil {
		logger.Warn(ctx, "API key cache read failed, falling back to store", zap.Error(err))
	} else if cached != nil {
		return cached, nil
	}

	key, err := u.apiKeyRepo.FindByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, err
	}

	if err := u.cache.Set(ctx, key); err != nil {
		logger.Warn(ctx, "API key cache write failed", zap.String("api_id", key.ID), zap.Error(err))
	}
	return key, nil
}

// Invalidate deletes a key and then evicts its cache entry. Eviction runs after the
// commit: a Lookup racing the delete can re-cache the row until the transaction ends.
// A failed eviction is reported as an internal error; the row stays deleted.
func (u *ApiKeyUsecase) Invalidate(ctx context.Context, userID, botID, apiID string) error {
	var tokenHash string
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		key, err := u.apiKeyRepo.FindByID(txCtx, apiID)
		if err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				return domainerrors.NotFound("API key not found")
			}
			return domainerrors.InternalError(err)
		}
		if key.BotID != botID {
			return domainerrors.NotFound("API key not found")
		}
		if key.UserID != userID {
			return domainerrors.Forbidden("not owner of api key")
		}

		if err := u.apiKeyRepo.Delete(txCtx, key.ID); err != nil {
			if errors.Is(err, domainerrors.ErrNotFound) {
				return domainerrors.NotFound("API key not found")
			}
			return domainerrors.InternalError(err)
		}
		tokenHash = key.TokenHash
		return nil
	})
	if err != nil {
		return err
	}

	if err := u.cache.Delete(ctx, tokenHash); err != nil {
		logger.Error(ctx, "API key cache eviction failed after delete",
			zap.String("api_id", apiID), zap.String("bot_id", botID), zap.Error(err))
		return domainerrors.InternalError(err)
	}

	logger.Info(ctx, "API key invalidated", zap.String("api_id", apiID), zap.String("bot_id", botID))
	return nil
}

// ListKeys returns the keys of a bot the user owns, without hashes.
func (u *ApiKeyUsecase) ListKeys(ctx context.Context, userID, botID string) ([]entities.ApiKeySummary, error) {
	if err := u.ensureBotOwner(ctx, userID, botID); err != nil {
		return nil, err
	}

	keys, err := u.apiKeyRepo.ListByBotID(ctx, botID)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	out := make([]entities.ApiKeySummary, 0, len(keys))
	for _, k := range keys {
		out = append(out, k.Summary())
	}
	return out, nil
}

func (u *ApiKeyUsecase) ensureBotOwner(ctx context.Context, userID, botID string) error {
	cfg, err := u.profileRepo.GetConfig(ctx, botID)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.NotFound("bot not found")
		}
		return domainerrors.InternalError(err)
	}
	if cfg.UserID != userID {
		return domainerrors.Forbidden("not owner of bot")
	}
	return nil
}

// normalizePermissions drops unknown and duplicate scopes. An empty set grants read.
func normalizePermissions(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, p := range in {
		p = strings.ToLower(strings.TrimSpace(p))
		switch p {
		case entities.ScopeRead, entities.ScopeWrite, entities.ScopeProd, entities.ScopeDev:
		default:
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	if len(out) == 0 {
		out = append(out, entities.ScopeRead)
	}
	return out
}
