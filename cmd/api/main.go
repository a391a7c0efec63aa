package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/Malinda-kawshalya/issue-web/internal/api/http"
	"github.com/Malinda-kawshalya/issue-web/internal/api/http/handlers"
	"github.com/Malinda-kawshalya/issue-web/internal/auth"
	"github.com/Malinda-kawshalya/issue-web/internal/config"
	"github.com/Malinda-kawshalya/issue-web/internal/events"
	"github.com/Malinda-kawshalya/issue-web/internal/observability"
	"github.com/Malinda-kawshalya/issue-web/internal/persistence"
	"github.com/Malinda-kawshalya/issue-web/internal/repository"
	"github.com/Malinda-kawshalya/issue-web/internal/service"
	"github.com/Malinda-kawshalya/issue-web/internal/worker"
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

	mongo, err := persistence.NewMongo(ctx, cfg.Mongo, logger)
	if err != nil {
		logger.Fatal("failed to connect mongodb", zap.Error(err))
	}
	defer mongo.Close(context.Background())

	db := mongo.Database()
	if cfg.Mongo.EnsureIndexes {
		if err := persistence.EnsureIndexes(ctx, db, logger); err != nil {
			logger.Fatal("failed to ensure indexes", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	userRepo := repository.NewUserRepository(db)
	issueRepo := repository.NewIssueRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, logger)
	worker.StartNotificationWorker(notificationService)

	authService := service.NewAuthService(cfg.Auth, userRepo)
	issueService := service.NewIssueService(service.IssueDependencies{
		IssueRepo:   issueRepo,
		CommentRepo: commentRepo,
		UserRepo:    userRepo,
		Policy:      service.AllowAllPolicy{},
		StatsCache:  service.NewStatsCache(redis, cfg.Redis.StatsTTL()),
		Dispatcher:  dispatcher,
		Logger:      logger,
	})

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout(), cfg.App.IsDevelopment())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, mongo, redis),
		Users:          handlers.NewUsersHandler(authService),
		Issues:         handlers.NewIssuesHandler(issueService),
		Admin:          handlers.NewAdminHandler(metrics),
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
