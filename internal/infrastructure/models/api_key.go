package models

import (
	"time"

	"github.com/lib/pq"
)

type ApiKey struct {
	ID          string         `gorm:"type:varchar(36);primaryKey"`
	BotID       string         `gorm:"type:varchar(64);not null;index"`
	UserID      string         `gorm:"type:varchar(64);not null;index"`
	Name        string         `gorm:"type:varchar(100);not null"`
	TokenHash   string         `gorm:"type:varchar(64);uniqueIndex;not null"` // SHA256 of raw secret
	Permissions pq.StringArray `gorm:"type:text[];not null;default:'{}'"`
	CreatedAt   time.Time
}
