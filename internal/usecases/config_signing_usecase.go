package usecases

import (
	"context"

	"github.com/go-jose/go-jose/v3"
	"talka.backend/internal/config"
	"talka.backend/internal/domain/entities"
	domainerrors "talka.backend/internal/domain/errors"
	"talka.backend/pkg/signer"
)

// ConfigSigningUsecase serves signed, public views of a bot profile. The widget
// config is HMAC signed for the bundled widget; UI settings are ECDSA signed for
// verifiers that only hold the public key.
type ConfigSigningUsecase struct {
	profiles   BotProfileResolver
	hmacSecret []byte
	ecdsaKey   string
}

func NewConfigSigningUsecase(profiles BotProfileResolver, cfg config.SigningConfig) *ConfigSigningUsecase {
	return &ConfigSigningUsecase{
		profiles:   profiles,
		hmacSecret: []byte(cfg.WidgetHMACSecret),
		ecdsaKey:   cfg.ECDSAPrivateKey,
	}
}

func (u *ConfigSigningUsecase) WidgetConfig(ctx context.Context, botID string) (*entities.SignedWidgetConfig, error) {
	if len(u.hmacSecret) == 0 {
		return nil, domainerrors.SigningConfigMissing(config.EnvWidgetHMACSecret)
	}

	profile, err := u.profiles.Resolve(ctx, botID)
	if err != nil {
		return nil, err
	}

	widget := profile.WidgetConfig()
	sig, err := signer.SignHMAC(widget, u.hmacSecret)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	return &entities.SignedWidgetConfig{Config: widget, Signature: sig}, nil
}

// UISettings signs the canonical form of {"ui_settings": ...}.
func (u *ConfigSigningUsecase) UISettings(ctx context.Context, botID string) (*entities.SignedUISettings, error) {
	if u.ecdsaKey == "" {
		return nil, domainerrors.SigningConfigMissing(config.EnvWidgetSigningKey)
	}

	profile, err := u.profiles.Resolve(ctx, botID)
	if err != nil {
		return nil, err
	}

	ui := profile.UISettings()
	sig, err := signer.SignECDSA(entities.UISettingsPayload{UISettings: ui}, u.ecdsaKey)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	return &entities.SignedUISettings{UISettings: ui, Signature: sig}, nil
}

// PublicKey returns the public JWK widgets use to verify UISettings signatures.
func (u *ConfigSigningUsecase) PublicKey() (*jose.JSONWebKey, error) {
	if u.ecdsaKey == "" {
		return nil, domainerrors.SigningConfigMissing(config.EnvWidgetSigningKey)
	}
	jwk, err := signer.PublicJWK(u.ecdsaKey)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	return jwk, nil
}
