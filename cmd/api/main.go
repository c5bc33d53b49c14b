package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/seva-foundation/darshan-service/internal/api/http"
	"github.com/seva-foundation/darshan-service/internal/api/http/handlers"
	"github.com/seva-foundation/darshan-service/internal/auth"
	"github.com/seva-foundation/darshan-service/internal/config"
	"github.com/seva-foundation/darshan-service/internal/events"
	"github.com/seva-foundation/darshan-service/internal/observability"
	"github.com/seva-foundation/darshan-service/internal/persistence"
	"github.com/seva-foundation/darshan-service/internal/repository"
	"github.com/seva-foundation/darshan-service/internal/service"
	"github.com/seva-foundation/darshan-service/internal/worker"
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

	blobs, err := persistence.NewS3BlobStore(ctx, cfg.S3, logger)
	if err != nil {
		logger.Fatal("failed to init blob store", zap.Error(err))
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	darshanRepo := repository.NewDarshanRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	spiritualEventRepo := repository.NewSpiritualEventRepository(pool)
	teamRepo := repository.NewTeamMemberRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()

	authService := service.NewAuthService(*cfg, userRepo)
	darshanService := service.NewDarshanService(service.DarshanDependencies{
		RequestRepo: darshanRepo,
		UserRepo:    userRepo,
		Dispatcher:  dispatcher,
		Cache:       redis,
		CacheTTL:    cfg.Redis.ApprovedCacheTTL(),
	})
	contentService := service.NewContentService(service.ContentDependencies{
		EventRepo:          eventRepo,
		SpiritualEventRepo: spiritualEventRepo,
		TeamMemberRepo:     teamRepo,
		Blobs:              blobs,
		Logger:             logger,
	})

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	contextResolver := auth.NewContextResolver(authService.TokenManager())
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: int(cfg.S3.UploadMaxSizeBytes),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:           handlers.NewUsersHandler(authService),
		Darshan:         handlers.NewDarshanHandler(darshanService),
		Events:          handlers.NewEventsHandler(contentService),
		SpiritualEvents: handlers.NewSpiritualEventsHandler(contentService),
		Team:            handlers.NewTeamHandler(contentService),
		ContextResolver: contextResolver,
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
