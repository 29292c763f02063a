package entities

import "time"

// BotConfig holds persona and presentation fields of a bot.
type BotConfig struct {
	BotID        string `json:"botId" validate:"required"`
	UserID       string `json:"userId" validate:"required"`
	Name         string `json:"name" validate:"required,max=100"`
	Persona      string `json:"persona" validate:"max=4000"`
	Tone         string `json:"tone" validate:"omitempty,oneof=friendly formal casual concise"`
	Greeting     string `json:"greeting" validate:"max=500"`
	Theme        string `json:"theme" validate:"required,oneof=light dark system"`
	PrimaryColor string `json:"primaryColor" validate:"omitempty,hexcolor"`
	Position     string `json:"position" validate:"omitempty,oneof=bottom-right bottom-left"`
	AvatarURL    string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
}

// BotSettings holds business context and generation parameters.
type BotSettings struct {
	BotID               string  `json:"botId" validate:"required"`
	BusinessName        string  `json:"businessName" validate:"required,max=200"`
	BusinessDescription string  `json:"businessDescription" validate:"max=4000"`
	Model               string  `json:"model" validate:"required"`
	Temperature         float64 `json:"temperature" validate:"gte=0,lte=2"`
	TopP                float64 `json:"topP" validate:"gte=0,lte=1"`
	MaxTokens           int     `json:"maxTokens" validate:"gt=0,lte=32768"`
}

// BotRuntimeSettings holds quotas, rate limits and operational toggles.
type BotRuntimeSettings struct {
	BotID              string   `json:"botId" validate:"required"`
	RateLimitPerMinute int      `json:"rateLimitPerMinute" validate:"gte=0"`
	MonthlyQuota       int      `json:"monthlyQuota" validate:"gte=0"`
	WidgetEnabled      bool     `json:"widgetEnabled"`
	MaintenanceMode    bool     `json:"maintenanceMode"`
	AllowedOrigins     []string `json:"allowedOrigins" validate:"omitempty,dive,url"`
}

// BotProfile is the cached aggregate a bot needs to answer requests. It is only
// cached when all three parts are present and valid.
type BotProfile struct {
	Config          *BotConfig          `json:"config"`
	Settings        *BotSettings        `json:"settings"`
	RuntimeSettings *BotRuntimeSettings `json:"runtimeSettings"`
	FetchedAt       time.Time           `json:"fetchedAt"`
}

// Complete reports whether every part is present.
func (p *BotProfile) Complete() bool {
	return p != nil && p.Config != nil && p.Settings != nil && p.RuntimeSettings != nil
}

// WidgetConfig is the payload signed with the shared widget secret.
type WidgetConfig struct {
	BotID       string  `json:"bot_id"`
	Theme       string  `json:"theme"`
	Greeting    string  `json:"greeting"`
	Temperature float64 `json:"temperature"`
}

// UISettings is the whitelisted, UI-safe subset of a profile signed with ECDSA.
type UISettings struct {
	BotID        string `json:"bot_id"`
	Name         string `json:"name"`
	Greeting     string `json:"greeting"`
	Theme        string `json:"theme"`
	PrimaryColor string `json:"primary_color"`
	Position     string `json:"position"`
	AvatarURL    string `json:"avatar_url"`
}

// UISettingsPayload is the exact object whose canonical form is ECDSA signed.
type UISettingsPayload struct {
	UISettings UISettings `json:"ui_settings"`
}

func (p *BotProfile) WidgetConfig() WidgetConfig {
	return WidgetConfig{
		BotID:       p.Config.BotID,
		Theme:       p.Config.Theme,
		Greeting:    p.Config.Greeting,
		Temperature: p.Settings.Temperature,
	}
}

func (p *BotProfile) UISettings() UISettings {
	return UISettings{
		BotID:        p.Config.BotID,
		Name:         p.Config.Name,
		Greeting:     p.Config.Greeting,
		Theme:        p.Config.Theme,
		PrimaryColor: p.Config.PrimaryColor,
		Position:     p.Config.Position,
		AvatarURL:    p.Config.AvatarURL,
	}
}

type SignedWidgetConfig struct {
	Config    WidgetConfig `json:"config"`
	Signature string       `json:"signature"`
}

type SignedUISettings struct {
	UISettings UISettings `json:"ui_settings"`
	Signature  string     `json:"signature"`
}
