package main

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/campus-mts/mts/internal/api/http"
	"github.com/campus-mts/mts/internal/api/http/handlers"
	"github.com/campus-mts/mts/internal/auth"
	"github.com/campus-mts/mts/internal/config"
	"github.com/campus-mts/mts/internal/events"
	"github.com/campus-mts/mts/internal/observability"
	"github.com/campus-mts/mts/internal/persistence"
	"github.com/campus-mts/mts/internal/repository"
	"github.com/campus-mts/mts/internal/service"
	"github.com/campus-mts/mts/internal/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer logger.Sync() //nolint:errcheck
		return serve(cmd.Context(), cfg, logger)
	},
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return err
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, cfg.Postgres.DSN, false, logger); err != nil {
			return err
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	statusRepo := repository.NewStatusRepository(pool)
	metrics := observability.NewMetrics()

	workers := worker.NewPool(cfg.Notification.Workers, cfg.Notification.QueueSize, logger)
	dispatcher := events.NewAsyncDispatcher(workers, logger)
	catalogCache := persistence.NewCatalogCache(redis, cfg.Redis.CatalogCacheTTL(), logger)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{UserRepo: userRepo})
	userService := service.NewUserService(service.UserDependencies{
		UserRepo:   userRepo,
		Catalog:    catalogCache,
		BcryptCost: cfg.Auth.BcryptCost,
		Logger:     logger,
	})
	catalogService := service.NewCatalogService(service.CatalogDependencies{
		DepartmentRepo:  repository.NewDepartmentRepository(pool),
		CategoryRepo:    repository.NewCategoryRepository(pool),
		SubCategoryRepo: repository.NewSubCategoryRepository(pool),
		AssetRepo:       repository.NewAssetRepository(pool),
		PcPartRepo:      repository.NewPcPartRepository(pool),
		StatusRepo:      statusRepo,
		UserRepo:        userRepo,
		Cache:           catalogCache,
		Logger:          logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		StatusRepo: statusRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	notificationService := service.NewNotificationService(service.NotificationDependencies{
		NotificationRepo: repository.NewNotificationRepository(pool),
		UserRepo:         userRepo,
		TicketRepo:       ticketRepo,
		StatusRepo:       statusRepo,
		Dispatcher:       dispatcher,
		Metrics:          metrics,
		Logger:           logger,
	})
	worker.StartNotificationWorker(workers, notificationService)
	defer workers.Stop()

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	var redisPinger handlers.Pinger
	if redis != nil {
		redisPinger = redis
	}
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redisPinger, metrics),
		Users:          handlers.NewUsersHandler(authService, userService),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		Catalog:        handlers.NewCatalogHandler(catalogService),
		AuthMiddleware: authMiddleware,
	})

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		listenErr <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-listenErr:
		return err
	case <-ctx.Done():
		logger.Info("shutting down")
	}

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	return nil
}
