package repositories

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"talka.backend/internal/domain/entities"
	domainerrors "talka.backend/internal/domain/errors"
	"talka.backend/pkg/utils"
)

func TestApiKeyRepository_BasicCRUD(t *testing.T) {
	db := newTestDB(t)
	createAPIKeyTable(t, db)
	repo := NewApiKeyRepository(db)
	ctx := context.Background()

	key := &entities.ApiKey{
		BotID:       "bot_1",
		UserID:      "user_1",
		Name:        "prod key",
		TokenHash:   "a1b2",
		Permissions: []string{entities.ScopeRead, entities.ScopeProd},
	}
	require.NoError(t, repo.Create(ctx, key))
	require.True(t, utils.IsValidID(key.ID))
	require.False(t, key.CreatedAt.IsZero())

	got, err := repo.FindByTokenHash(ctx, "a1b2")
	require.NoError(t, err)
	require.Equal(t, key.ID, got.ID)
	require.Equal(t, []string{"read", "prod"}, got.Permissions)

	byID, err := repo.FindByID(ctx, key.ID)
	require.NoError(t, err)
	require.Equal(t, "prod key", byID.Name)

	require.NoError(t, repo.Create(ctx, &entities.ApiKey{BotID: "bot_1", UserID: "user_1", Name: "dev", TokenHash: "c3d4"}))
	require.NoError(t, repo.Create(ctx, &entities.ApiKey{BotID: "bot_2", UserID: "user_1", Name: "other", TokenHash: "e5f6"}))

	count, err := repo.CountByBotID(ctx, "bot_1")
	require.NoError(t, err)
	require.Equal(t, int64(2), count)

	list, err := repo.ListByBotID(ctx, "bot_1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, []string{}, list[1].Permissions)

	require.NoError(t, repo.Delete(ctx, key.ID))
	_, err = repo.FindByTokenHash(ctx, "a1b2")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, key.ID), domainerrors.ErrNotFound)
}

func TestApiKeyRepository_NotFound(t *testing.T) {
	db := newTestDB(t)
	createAPIKeyTable(t, db)
	repo := NewApiKeyRepository(db)

	_, err := repo.FindByID(context.Background(), utils.NewID())
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = repo.FindByTokenHash(context.Background(), "missing")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestApiKeyRepository_DuplicateHashRejected(t *testing.T) {
	db := newTestDB(t)
	createAPIKeyTable(t, db)
	repo := NewApiKeyRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entities.ApiKey{BotID: "bot_1", UserID: "u", Name: "a", TokenHash: "same"}))
	require.Error(t, repo.Create(ctx, &entities.ApiKey{BotID: "bot_1", UserID: "u", Name: "b", TokenHash: "same"}))
}

func TestApiKeyRepository_ClosedDBErrors(t *testing.T) {
	db := newTestDB(t)
	createAPIKeyTable(t, db)
	repo := NewApiKeyRepository(db)
	ctx := context.Background()

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	require.Error(t, repo.Create(ctx, &entities.ApiKey{BotID: "b", UserID: "u", Name: "n", TokenHash: "h"}))
	_, err = repo.FindByTokenHash(ctx, "h")
	require.Error(t, err)
	require.NotErrorIs(t, err, domainerrors.ErrNotFound)
	_, err = repo.FindByID(ctx, "id")
	require.Error(t, err)
	_, err = repo.ListByBotID(ctx, "b")
	require.Error(t, err)
	_, err = repo.CountByBotID(ctx, "b")
	require.Error(t, err)
	require.Error(t, repo.Delete(ctx, "id"))
}
