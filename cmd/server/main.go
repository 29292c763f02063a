package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"talka.backend/internal/config"
	domainerrors "talka.backend/internal/domain/errors"
	domainrepos "talka.backend/internal/domain/repositories"
	"talka.backend/internal/infrastructure/cache"
	"talka.backend/internal/infrastructure/datasources/postgres"
	"talka.backend/internal/infrastructure/jobs"
	"talka.backend/internal/infrastructure/metrics"
	"talka.backend/internal/infrastructure/repositories"
	"talka.backend/internal/interfaces/http/handlers"
	"talka.backend/internal/interfaces/http/middleware"
	"talka.backend/internal/interfaces/http/response"
	"talka.backend/internal/usecases"
	"talka.backend/pkg/jwt"
	"talka.backend/pkg/logger"
	"talka.backend/pkg/meshtoken"
	"talka.backend/pkg/redis"
)

var (
	loadDotenv     = godotenv.Load
	loadCfg        = config.Load
	initLog        = logger.Init
	openDB         = postgres.NewConnection
	newRedisClient = func(cfg config.RedisConfig) (*goredis.Client, error) {
		return redis.NewClient(redis.Options{URL: cfg.URL, Password: cfg.Password, PoolSize: cfg.PoolSize})
	}
	runServer      = func(srv *http.Server) error { return srv.ListenAndServe() }
	notifyShutdown = func() (context.Context, context.CancelFunc) {
		return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	}
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env)
	defer logger.Sync()
	ctx := context.Background()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Redis is only dialed when it backs the cache
	var redisClient *goredis.Client
	backend := cfg.ResolveBackend()
	if backend == config.CacheBackendRedis {
		client, err := newRedisClient(cfg.Redis)
		if err != nil {
			logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer client.Close()
		redisClient = client
		logger.Info(ctx, "Redis initialized")
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()
	logger.Info(ctx, "Connected to PostgreSQL via GORM")

	var cmdable goredis.Cmdable
	if redisClient != nil {
		cmdable = redisClient
	}
	store, err := cache.NewStore(*cfg, cmdable)
	if err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	logger.Info(ctx, "Cache backend selected", zap.String("backend", backend))

	reg := metrics.NewRegistry()
	app, err := buildApp(cfg, db, store, reg)
	if err != nil {
		return err
	}

	// Start background jobs
	jobCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sweeper *jobs.CacheSweeperJob
	if expiring, ok := store.(jobs.ExpiringCache); ok {
		sweeper = jobs.NewCacheSweeperJob(expiring, cfg.Cache.SweepInterval)
		go sweeper.Start(jobCtx)
	}

	checks := map[string]handlers.Pinger{"database": sqlDB}
	if redisClient != nil {
		checks["redis"] = handlers.PingFunc(func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}
	app.healthHandler = handlers.NewHealthHandler(checks)

	r := newRouter(app)
	for _, route := range r.Routes() {
		logger.Debug(ctx, "Route registered", zap.String("method", route.Method), zap.String("path", route.Path))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := notifyShutdown()
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(ctx, "Talka backend starting", zap.String("port", cfg.Server.Port))
		serverErrors <- runServer(srv)
	}()

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-sigCtx.Done():
	}

	// Graceful shutdown
	logger.Info(ctx, "Shutting down server")
	if sweeper != nil {
		sweeper.Stop()
	}
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	if err := <-serverErrors; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	logger.Info(ctx, "Server stopped")
	return nil
}

// buildApp wires repositories, caches and usecases into route dependencies.
// Missing secrets do not stop the boot; the affected endpoints answer
// SIGNING_CONFIG_MISSING instead.
func buildApp(cfg *config.Config, db *gorm.DB, store domainrepos.CacheStore, reg *metrics.Registry) (routeDeps, error) {
	ctx := context.Background()

	apiKeyRepo := repositories.NewApiKeyRepository(db)
	profileRepo := repositories.NewBotProfileRepository(db)
	uow := repositories.NewUnitOfWork(db)

	apiKeyCache := cache.NewApiKeyCache(store, cfg.Cache.TTL, reg)
	profileCache := cache.NewBotProfileCache(store, cfg.Cache.TTL, reg)

	// Interfaces stay nil, not typed-nil, when the secret is absent
	var (
		issuer   usecases.MeshTokenIssuer
		verifier usecases.MeshTokenVerifier
	)
	if cfg.Mesh.TokenSecret != "" {
		codec, err := meshtoken.NewCodec([]byte(cfg.Mesh.TokenSecret))
		if err != nil {
			return routeDeps{}, fmt.Errorf("failed to initialize mesh token codec: %w", err)
		}
		issuer, verifier = codec, codec
	} else {
		logger.Warn(ctx, "Mesh token secret not set; bot authentication disabled", zap.String("env_var", config.EnvMeshTokenSecret))
	}
	if cfg.Signing.WidgetHMACSecret == "" {
		logger.Warn(ctx, "Widget HMAC secret not set", zap.String("env_var", config.EnvWidgetHMACSecret))
	}
	if cfg.Signing.ECDSAPrivateKey == "" {
		logger.Warn(ctx, "Widget signing key not set", zap.String("env_var", config.EnvWidgetSigningKey))
	}

	apiKeyUsecase := usecases.NewApiKeyUsecase(apiKeyRepo, profileRepo, uow, apiKeyCache, issuer, cfg.Mesh)
	profileUsecase := usecases.NewBotProfileUsecase(profileRepo, profileCache)
	gatekeeper := usecases.NewGatekeeper(verifier, apiKeyUsecase, profileUsecase, reg)
	signingUsecase := usecases.NewConfigSigningUsecase(profileUsecase, cfg.Signing)

	return routeDeps{
		botHandler:        handlers.NewBotHandler(),
		configHandler:     handlers.NewConfigHandler(signingUsecase),
		apiKeyHandler:     handlers.NewApiKeyHandler(apiKeyUsecase),
		botProfileHandler: handlers.NewBotProfileHandler(profileUsecase),
		metrics:           reg,
		gatekeeper:        gatekeeper,
		dashboardAuth:     dashboardAuth(cfg.JWT),
	}, nil
}

func newRouter(d routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware(d.metrics))

	applyCORSMiddleware(r)
	registerOpsRoutes(r, d)
	registerAPIRoutes(r, d)
	return r
}

// dashboardAuth fails closed when no JWT secret is configured.
func dashboardAuth(cfg config.JWTConfig) gin.HandlerFunc {
	if cfg.Secret == "" {
		logger.Warn(context.Background(), "JWT secret not set; dashboard routes disabled", zap.String("env_var", config.EnvJWTSecret))
		return func(c *gin.Context) {
			response.Abort(c, domainerrors.SigningConfigMissing(config.EnvJWTSecret))
		}
	}
	return middleware.AuthMiddleware(jwt.NewJWTService(cfg.Secret, cfg.AccessExpiry))
}
