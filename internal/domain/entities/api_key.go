package entities

import (
	"slices"
	"time"
)

// Permission scopes an API key can carry.
const (
	ScopeRead  = "read"
	ScopeWrite = "write"
	ScopeProd  = "prod"
	ScopeDev   = "dev"
)

// ApiKey is the permission record of an issued key. Only the SHA-256 digest of the
// raw secret is kept.
type ApiKey struct {
	ID          string    `json:"apiId"`
	BotID       string    `json:"botId"`
	UserID      string    `json:"userId"`
	Name        string    `json:"name"`
	TokenHash   string    `json:"tokenHash"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"createdAt"`
}

// HasPermission reports whether scope was granted.
func (k *ApiKey) HasPermission(scope string) bool {
	return slices.Contains(k.Permissions, scope)
}

type CreateApiKeyInput struct {
	Name        string   `json:"name" binding:"required,max=100"`
	Permissions []string `json:"permissions" binding:"omitempty,dive,oneof=read write prod dev"`
}

// CreateApiKeyResponse is returned once; Secret and MeshToken are never retrievable
// again.
type CreateApiKeyResponse struct {
	ApiID       string    `json:"apiId"`
	BotID       string    `json:"botId"`
	Name        string    `json:"name"`
	Permissions []string  `json:"permissions"`
	Secret      string    `json:"secret"`
	MeshToken   string    `json:"meshToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ApiKeySummary is the dashboard listing shape.
type ApiKeySummary struct {
	ApiID       string    `json:"apiId"`
	Name        string    `json:"name"`
	Permissions []string  `json:"permissions"`
	CreatedAt   time.Time `json:"createdAt"`
}

func (k *ApiKey) Summary() ApiKeySummary {
	return ApiKeySummary{
		ApiID:       k.ID,
		Name:        k.Name,
		Permissions: k.Permissions,
		CreatedAt:   k.CreatedAt,
	}
}
