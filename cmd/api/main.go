package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/manocorp/account-service/internal/api/http"
	"github.com/manocorp/account-service/internal/api/http/handlers"
	"github.com/manocorp/account-service/internal/auth"
	"github.com/manocorp/account-service/internal/cache"
	"github.com/manocorp/account-service/internal/config"
	"github.com/manocorp/account-service/internal/events"
	"github.com/manocorp/account-service/internal/observability"
	"github.com/manocorp/account-service/internal/persistence"
	"github.com/manocorp/account-service/internal/repository"
	"github.com/manocorp/account-service/internal/service"
	"github.com/manocorp/account-service/internal/worker"
)

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
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	credRepo := repository.NewCredentialRepository(pool)

	hasher := auth.NewHasher(cfg.Auth.PasswordPepper)
	dispatcher := events.NewInMemoryDispatcher()
	userCache := cache.NewUserCache(redis, cfg.Cache.UserTTL(), logger)

	authService, err := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo:       userRepo,
		CredentialRepo: credRepo,
		Hasher:         hasher,
		Dispatcher:     dispatcher,
		Logger:         logger,
	})
	if err != nil {
		logger.Fatal("failed to build auth service", zap.Error(err))
	}

	userService := service.NewUserService(*cfg, service.UserDependencies{
		UserRepo:       userRepo,
		CredentialRepo: credRepo,
		Hasher:         hasher,
		Dispatcher:     dispatcher,
		Cache:          userCache,
		Logger:         logger,
	})

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	metrics := observability.NewMetrics()
	authMiddleware := auth.NewMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(userService),
		Auth:           handlers.NewAuthHandler(authService),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
