package main

import (
	"context"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/identity-service/internal/api/http"
	"github.com/spec-kit/identity-service/internal/api/http/handlers"
	"github.com/spec-kit/identity-service/internal/auth"
	"github.com/spec-kit/identity-service/internal/config"
	"github.com/spec-kit/identity-service/internal/events"
	"github.com/spec-kit/identity-service/internal/observability"
	"github.com/spec-kit/identity-service/internal/persistence"
	"github.com/spec-kit/identity-service/internal/repository"
	"github.com/spec-kit/identity-service/internal/service"
	"github.com/spec-kit/identity-service/internal/worker"
)

type repositories struct {
	users   repository.UserRepository
	tokens  repository.TokenRepository
	tenants repository.TenantRepository
	groups  repository.GroupRepository
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	repos := buildRepositories(cfg, pg, redis)
	logger.Info("storage selected",
		zap.String("store_backend", cfg.Store.Backend),
		zap.String("token_backend", cfg.Store.TokenBackend))

	dispatcher := events.NewInMemoryDispatcher()
	service.NewAuditService(dispatcher, logger).RegisterHandlers()

	tokenStore := auth.NewTokenStore(repos.tokens)
	authorizer := auth.NewAuthorizer(tokenStore, repos.users, logger.Named("authorizer"))

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:   repos.users,
		TenantRepo: repos.tenants,
		TokenStore: tokenStore,
		Authorizer: authorizer,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	registryDeps := service.RegistryDependencies{
		TenantRepo: repos.tenants,
		GroupRepo:  repos.groups,
		Authorizer: authorizer,
		Dispatcher: dispatcher,
		Logger:     logger,
	}
	tenantService := service.NewTenantService(*cfg, registryDeps)
	groupService := service.NewGroupService(*cfg, registryDeps)
	identity := service.NewIdentityService(authService, tenantService, groupService)

	if err := service.NewBootstrap(cfg.Auth, repos.users, repos.tenants, logger).EnsureAdmin(ctx); err != nil {
		logger.Fatal("failed to bootstrap admin", zap.Error(err))
	}

	reaperDone := worker.NewReaper(tokenStore, groupService, worker.ReaperOptions{
		Interval:   cfg.Reaper.Interval(),
		Retention:  cfg.Reaper.TokenRetention(),
		Dispatcher: dispatcher,
		Logger:     logger.Named("reaper"),
	}).Start(ctx)

	metrics := observability.NewMetrics()
	app := httptransport.NewApp(cfg.App.Name)
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		APIVersion: cfg.App.Version,
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Probe{
			"postgres": pg,
			"redis":    redis,
		}, metrics, logger.Named("health")),
		Version:         handlers.NewVersionHandler(cfg.App.Version),
		Contract:        handlers.NewContractHandler(contractDocs(cfg.App.ContractDir, logger)),
		Tokens:          handlers.NewTokenHandler(identity),
		Tenants:         handlers.NewTenantsHandler(identity),
		Groups:          handlers.NewGroupsHandler(identity),
		TokenMiddleware: auth.NewTokenMiddleware(cfg.Auth.TokenHeader),
	})

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	<-reaperDone
	_ = app.Shutdown()
}

func buildRepositories(cfg *config.Config, pg *persistence.Postgres, redis *persistence.Redis) repositories {
	var repos repositories
	if cfg.Store.Backend == config.BackendPostgres {
		pool := pg.PoolHandle()
		repos.users = repository.NewUserRepository(pool)
		repos.tenants = repository.NewTenantRepository(pool)
		repos.groups = repository.NewGroupRepository(pool)
	} else {
		repos.users = repository.NewMemoryUserRepository()
		repos.tenants = repository.NewMemoryTenantRepository()
		repos.groups = repository.NewMemoryGroupRepository()
	}

	switch cfg.Store.TokenBackend {
	case config.BackendPostgres:
		repos.tokens = repository.NewTokenRepository(pg.PoolHandle())
	case config.BackendRedis:
		repos.tokens = repository.NewRedisTokenRepository(redis.Client, cfg.Redis.KeyPrefix, cfg.Reaper.TokenRetention())
	default:
		repos.tokens = repository.NewMemoryTokenRepository()
	}
	return repos
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}

// contractDocs returns the contract document tree, or nil when the directory
// is missing so the contract routes answer 404.
func contractDocs(dir string, logger *zap.Logger) fs.FS {
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		logger.Info("contract documents not found; contract routes disabled", zap.String("dir", dir))
		return nil
	}
	return os.DirFS(dir)
}
