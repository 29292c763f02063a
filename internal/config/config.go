package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Cache backends selectable with CACHE_BACKEND.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config holds all configuration values
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	JWT      JWTConfig
	Mesh     MeshConfig
	Signing  SigningConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port string
	Env  string
}

func (c ServerConfig) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// DSN returns the key/value connection string understood by lib/pq.
func (c DatabaseConfig) DSN() string {
	return "host=" + c.Host + " port=" + strconv.Itoa(c.Port) + " user=" + c.User + " password=" + c.Password + " dbname=" + c.DBName + " sslmode=" + c.SSLMode
}

// URL returns the database connection URL
func (c DatabaseConfig) URL() string {
	return "postgres://" + c.User + ":" + c.Password + "@" + c.Host + ":" + strconv.Itoa(c.Port) + "/" + c.DBName + "?sslmode=" + c.SSLMode
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	URL      string
	Password string
	PoolSize int
}

// CacheConfig selects and sizes the cache backend.
type CacheConfig struct {
	Backend       string
	TTL           time.Duration
	LRUCapacity   int
	SweepInterval time.Duration
}

// ResolveBackend returns the explicit backend or derives it from the server env:
// redis in production, the in-process LRU otherwise.
func (c Config) ResolveBackend() string {
	switch strings.ToLower(c.Cache.Backend) {
	case CacheBackendRedis:
		return CacheBackendRedis
	case CacheBackendMemory:
		return CacheBackendMemory
	}
	if c.Server.IsProduction() {
		return CacheBackendRedis
	}
	return CacheBackendMemory
}

// JWTConfig holds the identity provider token settings.
type JWTConfig struct {
	Secret       string
	AccessExpiry time.Duration
}

// MeshConfig holds API-key and mesh token settings.
type MeshConfig struct {
	TokenSecret   string
	TokenTTL      time.Duration
	MaxKeysPerBot int
}

// SigningConfig holds response signing material. Empty values disable the
// corresponding endpoint with SIGNING_CONFIG_MISSING.
type SigningConfig struct {
	WidgetHMACSecret string
	ECDSAPrivateKey  string
}

// Environment variable names for secrets, used in error messages.
const (
	EnvMeshTokenSecret    = "MESH_TOKEN_SECRET"
	EnvWidgetHMACSecret   = "WIDGET_HMAC_SECRET"
	EnvWidgetSigningKey   = "WIDGET_SIGNING_PRIVATE_KEY"
	EnvJWTSecret          = "JWT_SECRET"
	DefaultMaxKeysPerBot  = 5
	DefaultCacheTTL       = 5 * time.Minute
	DefaultMeshTokenTTL   = 7 * 24 * time.Hour
	DefaultLRUCapacity    = 10000
	DefaultSweepInterval  = time.Minute
	DefaultJWTAccessValid = 15 * time.Minute
)

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Env:  getEnv("SERVER_ENV", "development"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "talka"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			URL:      getEnv("REDIS_URL", "redis://localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			PoolSize: getEnvAsInt("REDIS_POOL_SIZE", 10),
		},
		Cache: CacheConfig{
			Backend:       getEnv("CACHE_BACKEND", ""),
			TTL:           getEnvAsDuration("CACHE_TTL", DefaultCacheTTL),
			LRUCapacity:   getEnvAsInt("CACHE_LRU_CAPACITY", DefaultLRUCapacity),
			SweepInterval: getEnvAsDuration("CACHE_SWEEP_INTERVAL", DefaultSweepInterval),
		},
		JWT: JWTConfig{
			Secret:       getEnv(EnvJWTSecret, ""),
			AccessExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRY", DefaultJWTAccessValid),
		},
		Mesh: MeshConfig{
			TokenSecret:   getEnv(EnvMeshTokenSecret, ""),
			TokenTTL:      getEnvAsDuration("MESH_TOKEN_TTL", DefaultMeshTokenTTL),
			MaxKeysPerBot: getEnvAsInt("MAX_KEYS_PER_BOT", DefaultMaxKeysPerBot),
		},
		Signing: SigningConfig{
			WidgetHMACSecret: getEnv(EnvWidgetHMACSecret, ""),
			ECDSAPrivateKey:  getEnv(EnvWidgetSigningKey, ""),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
