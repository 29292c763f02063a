package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"talka.backend/internal/config"
	"talka.backend/internal/domain/entities"
	"talka.backend/internal/infrastructure/cache"
	"talka.backend/internal/infrastructure/datasources/postgres"
	"talka.backend/internal/infrastructure/metrics"
	"talka.backend/internal/infrastructure/repositories"
	"talka.backend/internal/usecases"
	"talka.backend/pkg/meshtoken"
)

var openAdminAPIKeyDB = postgres.NewConnection

type adminAPIKeyRuntime interface {
	CreateKey(ctx context.Context, userID, botID string, input *entities.CreateApiKeyInput) (*entities.CreateApiKeyResponse, error)
}

type adminAPIKeyDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	prepare func(cfg *config.Config) (adminAPIKeyRuntime, io.Closer, error)
	now     func() time.Time
	out     io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func defaultAdminAPIKeyDeps() adminAPIKeyDeps {
	return adminAPIKeyDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: prepareRuntime,
		now:     time.Now,
		out:     os.Stdout,
	}
}

// prepareRuntime builds the same key usecase the server runs. Creation never reads
// the cache, so a private LRU stands in for the shared backend.
func prepareRuntime(cfg *config.Config) (adminAPIKeyRuntime, io.Closer, error) {
	if cfg.Mesh.TokenSecret == "" {
		return nil, nil, fmt.Errorf("%s is not set", config.EnvMeshTokenSecret)
	}
	codec, err := meshtoken.NewCodec([]byte(cfg.Mesh.TokenSecret))
	if err != nil {
		return nil, nil, err
	}

	db, err := openAdminAPIKeyDB(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init sql db: %w", err)
	}

	apiKeyCache := cache.NewApiKeyCache(cache.NewLRUCache(1), cfg.Cache.TTL, metrics.NewRegistry())
	uc := usecases.NewApiKeyUsecase(
		repositories.NewApiKeyRepository(db),
		repositories.NewBotProfileRepository(db),
		repositories.NewUnitOfWork(db),
		apiKeyCache,
		codec,
		cfg.Mesh,
	)
	return uc, sqlDB, nil
}

func resolveAPIKeyName(input string, now time.Time) string {
	if input != "" {
		return input
	}
	return fmt.Sprintf("cli-%s", now.Format("20060102-150405"))
}

func parsePermissions(raw string) []string {
	var perms []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			perms = append(perms, p)
		}
	}
	return perms
}

func runAdminAPIKey(args []string, deps adminAPIKeyDeps) error {
	def := defaultAdminAPIKeyDeps()
	if deps.loadEnv == nil {
		deps.loadEnv = def.loadEnv
	}
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.now == nil {
		deps.now = def.now
	}
	if deps.prepare == nil {
		deps.prepare = def.prepare
	}
	if deps.out == nil {
		deps.out = def.out
	}

	fs := flag.NewFlagSet("admin-apikey", flag.ContinueOnError)
	userIDFlag := fs.String("user-id", "", "owner user id (required)")
	botIDFlag := fs.String("bot-id", "", "bot id (required)")
	nameFlag := fs.String("name", "", "api key display name (optional)")
	permsFlag := fs.String("permissions", entities.ScopeRead, "comma separated scopes: read,write,prod,dev")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *userIDFlag == "" {
		return fmt.Errorf("--user-id is required")
	}
	if *botIDFlag == "" {
		return fmt.Errorf("--bot-id is required")
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := deps.loadCfg()
	runtime, closer, err := deps.prepare(cfg)
	if err != nil {
		return err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	defer closer.Close()

	resp, err := runtime.CreateKey(context.Background(), *userIDFlag, *botIDFlag, &entities.CreateApiKeyInput{
		Name:        resolveAPIKeyName(*nameFlag, deps.now()),
		Permissions: parsePermissions(*permsFlag),
	})
	if err != nil {
		return fmt.Errorf("failed creating api key: %w", err)
	}

	_, _ = fmt.Fprintln(deps.out, "Created bot API key. The secret and mesh token are shown only once.")
	_, _ = fmt.Fprintf(deps.out, "bot_id=%s\n", resp.BotID)
	_, _ = fmt.Fprintf(deps.out, "api_id=%s\n", resp.ApiID)
	_, _ = fmt.Fprintf(deps.out, "name=%s\n", resp.Name)
	_, _ = fmt.Fprintf(deps.out, "permissions=%s\n", strings.Join(resp.Permissions, ","))
	_, _ = fmt.Fprintf(deps.out, "expires_at=%s\n", resp.ExpiresAt.UTC().Format(time.RFC3339))
	_, _ = fmt.Fprintf(deps.out, "SECRET=%s\n", resp.Secret)
	_, _ = fmt.Fprintf(deps.out, "MESH_TOKEN=%s\n", resp.MeshToken)
	return nil
}

func main() {
	if err := runAdminAPIKey(os.Args[1:], defaultAdminAPIKeyDeps()); err != nil {
		log.Fatal(err)
	}
}
