package models

import (
	"time"

	"github.com/lib/pq"
)

type BotSettings struct {
	BotID               string  `gorm:"type:varchar(64);primaryKey"`
	BusinessName        string  `gorm:"type:varchar(200);not null"`
	BusinessDescription string  `gorm:"type:text"`
	Model               string  `gorm:"type:varchar(64);not null"`
	Temperature         float64 `gorm:"type:decimal(3,2);default:0.7"`
	TopP                float64 `gorm:"type:decimal(3,2);default:1"`
	MaxTokens           int     `gorm:"default:1024"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

func (BotSettings) TableName() string {
	return "bot_settings"
}

type BotRuntimeSettings struct {
	BotID              string         `gorm:"type:varchar(64);primaryKey"`
	RateLimitPerMinute int            `gorm:"default:60"`
	MonthlyQuota       int            `gorm:"default:0"`
	WidgetEnabled      bool           `gorm:"default:true"`
	MaintenanceMode    bool           `gorm:"default:false"`
	AllowedOrigins     pq.StringArray `gorm:"type:text[];default:'{}'"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (BotRuntimeSettings) TableName() string {
	return "bot_runtime_settings"
}
