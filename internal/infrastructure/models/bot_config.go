package models

import (
	"time"

	"github.com/volatiletech/null/v8"
)

type BotConfig struct {
	BotID        string      `gorm:"type:varchar(64);primaryKey"`
	UserID       string      `gorm:"type:varchar(64);not null;index"`
	Name         string      `gorm:"type:varchar(100);not null"`
	Persona      string      `gorm:"type:text"`
	Tone         null.String `gorm:"type:varchar(32)"`
	Greeting     string      `gorm:"type:varchar(500)"`
	Theme        string      `gorm:"type:varchar(16);not null;default:'light'"`
	PrimaryColor null.String `gorm:"type:varchar(16)"`
	Position     null.String `gorm:"type:varchar(16)"`
	AvatarURL    null.String `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
