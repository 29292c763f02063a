package usecases

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"talka.backend/internal/config"
	"talka.backend/internal/domain/entities"
	domainerrors "talka.backend/internal/domain/errors"
	"talka.backend/internal/infrastructure/metrics"
	"talka.backend/pkg/logger"
	"talka.backend/pkg/meshtoken"
)

// AuthState is a step of the request authentication state machine. Every step
// either advances or moves to StateError, which is terminal.
type AuthState string

const (
	StateStart               AuthState = "START"
	StateCredentialExtracted AuthState = "CREDENTIAL_EXTRACTED"
	StateTokenVerified       AuthState = "TOKEN_VERIFIED"
	StateBotMatched          AuthState = "BOT_MATCHED"
	StateKeyResolved         AuthState = "KEY_RESOLVED"
	StateProfileResolved     AuthState = "PROFILE_RESOLVED"
	StatePermissionChecked   AuthState = "PERMISSION_CHECKED"
	StateAuthorized          AuthState = "AUTHORIZED"
	StateError               AuthState = "ERROR"
)

// MeshTokenVerifier verifies mesh tokens.
type MeshTokenVerifier interface {
	Verify(token string) (*meshtoken.Claims, error)
}

// ApiKeyLookup resolves a raw secret to its key record.
type ApiKeyLookup interface {
	Lookup(ctx context.Context, rawSecret string) (*entities.ApiKey, error)
}

// BotProfileResolver resolves the complete profile of a bot.
type BotProfileResolver interface {
	Resolve(ctx context.Context, botID string) (*entities.BotProfile, error)
}

type AuthRequest struct {
	Credential    string
	BotID         string
	RequiredScope string
}

// AuthContext is attached to an authorized request.
type AuthContext struct {
	BotID   string
	UserID  string
	ApiKey  *entities.ApiKey
	Profile *entities.BotProfile
	State   AuthState
}

type Gatekeeper struct {
	verifier MeshTokenVerifier
	keys     ApiKeyLookup
	profiles BotProfileResolver
	metrics  *metrics.Registry
}

// NewGatekeeper wires the authenticator. verifier may be nil when
// MESH_TOKEN_SECRET is not configured; every request then fails closed.
func NewGatekeeper(verifier MeshTokenVerifier, keys ApiKeyLookup, profiles BotProfileResolver, m *metrics.Registry) *Gatekeeper {
	return &Gatekeeper{verifier: verifier, keys: keys, profiles: profiles, metrics: m}
}

// Authorize runs the full authentication pipeline for one bot-scoped request.
func (g *Gatekeeper) Authorize(ctx context.Context, req AuthRequest) (*AuthContext, error) {
	ctx = logger.WithBotID(ctx, req.BotID)
	state := StateStart

	authCtx, err := g.authorize(ctx, req, &state)
	if err != nil {
		appErr, ok := domainerrors.As(err)
		if !ok {
			appErr = domainerrors.InternalError(err)
		}
		logger.Warn(ctx, "Bot request rejected",
			zap.String("last_state", string(state)),
			zap.String("err_code", appErr.Code),
			zap.Error(err),
		)
		g.metrics.AuthOutcome(appErr.Code)
		return nil, appErr
	}

	g.metrics.AuthOutcome(string(StateAuthorized))
	return authCtx, nil
}

// authorize advances *state as each step succeeds so the caller can report where a
// request stopped.
func (g *Gatekeeper) authorize(ctx context.Context, req AuthRequest, state *AuthState) (*AuthContext, error) {
	if req.Credential == "" {
		return nil, domainerrors.TokenMissing()
	}
	*state = StateCredentialExtracted

	if g.verifier == nil {
		return nil, domainerrors.SigningConfigMissing(config.EnvMeshTokenSecret)
	}
	claims, err := g.verifier.Verify(req.Credential)
	if err != nil {
		return nil, domainerrors.TokenInvalid(err)
	}
	*state = StateTokenVerified

	if claims.BotID != req.BotID || claims.RawSecret == "" {
		return nil, domainerrors.BotMismatch()
	}
	*state = StateBotMatched

	key, err := g.keys.Lookup(ctx, claims.RawSecret)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.KeyRevoked()
		}
		return nil, domainerrors.InternalError(err)
	}
	if key.BotID != req.BotID {
		return nil, domainerrors.BotMismatch()
	}
	*state = StateKeyResolved

	profile, err := g.profiles.Resolve(ctx, req.BotID)
	if err != nil {
		return nil, err
	}
	*state = StateProfileResolved

	scope := req.RequiredScope
	if scope == "" {
		scope = entities.ScopeRead
	}
	if !key.HasPermission(scope) {
		return nil, domainerrors.PermissionDenied(scope)
	}
	*state = StatePermissionChecked

	*state = StateAuthorized
	return &AuthContext{
		BotID:   req.BotID,
		UserID:  key.UserID,
		ApiKey:  key,
		Profile: profile,
		State:   StateAuthorized,
	}, nil
}
