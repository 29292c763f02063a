package usecases_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"talka.backend/internal/domain/entities"
	"talka.backend/pkg/meshtoken"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

func (m *MockUnitOfWork) WithLock(ctx context.Context) context.Context {
	args := m.Called(ctx)
	return args.Get(0).(context.Context) // Return mocked context
}

// Mock ApiKeyRepository
type MockApiKeyRepository struct {
	mock.Mock
}

func (m *MockApiKeyRepository) Create(ctx context.Context, apiKey *entities.ApiKey) error {
	args := m.Called(ctx, apiKey)
	return args.Error(0)
}

func (m *MockApiKeyRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*entities.ApiKey, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ApiKey), args.Error(1)
}

func (m *MockApiKeyRepository) FindByID(ctx context.Context, id string) (*entities.ApiKey, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ApiKey), args.Error(1)
}

func (m *MockApiKeyRepository) ListByBotID(ctx context.Context, botID string) ([]*entities.ApiKey, error) {
	args := m.Called(ctx, botID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.ApiKey), args.Error(1)
}

func (m *MockApiKeyRepository) CountByBotID(ctx context.Context, botID string) (int64, error) {
	args := m.Called(ctx, botID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockApiKeyRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Mock BotProfileRepository
type MockBotProfileRepository struct {
	mock.Mock
}

func (m *MockBotProfileRepository) GetConfig(ctx context.Context, botID string) (*entities.BotConfig, error) {
	args := m.Called(ctx, botID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BotConfig), args.Error(1)
}

func (m *MockBotProfileRepository) GetSettings(ctx context.Context, botID string) (*entities.BotSettings, error) {
	args := m.Called(ctx, botID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BotSettings), args.Error(1)
}

func (m *MockBotProfileRepository) GetRuntimeSettings(ctx context.Context, botID string) (*entities.BotRuntimeSettings, error) {
	args := m.Called(ctx, botID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BotRuntimeSettings), args.Error(1)
}

// Mock ApiKeyCache
type MockApiKeyCache struct {
	mock.Mock
}

func (m *MockApiKeyCache) Get(ctx context.Context, tokenHash string) (*entities.ApiKey, error) {
	args := m.Called(ctx, tokenHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ApiKey), args.Error(1)
}

func (m *MockApiKeyCache) Set(ctx context.Context, key *entities.ApiKey) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockApiKeyCache) Delete(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

// Mock BotProfileCache
type MockBotProfileCache struct {
	mock.Mock
}

func (m *MockBotProfileCache) Get(ctx context.Context, botID string) (*entities.BotProfile, error) {
	args := m.Called(ctx, botID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BotProfile), args.Error(1)
}

func (m *MockBotProfileCache) Set(ctx context.Context, botID string, profile *entities.BotProfile) error {
	args := m.Called(ctx, botID, profile)
	return args.Error(0)
}

func (m *MockBotProfileCache) Delete(ctx context.Context, botID string) error {
	args := m.Called(ctx, botID)
	return args.Error(0)
}

// Mock ApiKeyLookup
type MockApiKeyLookup struct {
	mock.Mock
}

func (m *MockApiKeyLookup) Lookup(ctx context.Context, rawSecret string) (*entities.ApiKey, error) {
	args := m.Called(ctx, rawSecret)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ApiKey), args.Error(1)
}

// Mock BotProfileResolver
type MockBotProfileResolver struct {
	mock.Mock
}

func (m *MockBotProfileResolver) Resolve(ctx context.Context, botID string) (*entities.BotProfile, error) {
	args := m.Called(ctx, botID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BotProfile), args.Error(1)
}

func validProfile(botID, userID string) *entities.BotProfile {
	return &entities.BotProfile{
		Config: &entities.BotConfig{
			BotID: botID, UserID: userID, Name: "Helper", Persona: "You are helpful",
			Greeting: "Hi there", Theme: "dark", PrimaryColor: "#112233", Position: "bottom-right",
		},
		Settings: &entities.BotSettings{
			BotID: botID, BusinessName: "Acme", Model: "gpt-4o-mini", Temperature: 0.5, TopP: 1, MaxTokens: 1024,
		},
		RuntimeSettings: &entities.BotRuntimeSettings{
			BotID: botID, RateLimitPerMinute: 60, WidgetEnabled: true,
		},
	}
}

func newTestCodec(secret string, now func() time.Time) *meshtoken.Codec {
	codec, err := meshtoken.NewCodec([]byte(secret), meshtoken.WithClock(now))
	if err != nil {
		panic(err)
	}
	return codec
}
