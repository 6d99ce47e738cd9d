package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/hulame/rental-service/internal/api/http"
	"github.com/hulame/rental-service/internal/api/http/handlers"
	"github.com/hulame/rental-service/internal/auth"
	"github.com/hulame/rental-service/internal/config"
	"github.com/hulame/rental-service/internal/domain"
	"github.com/hulame/rental-service/internal/events"
	"github.com/hulame/rental-service/internal/observability"
	"github.com/hulame/rental-service/internal/persistence"
	"github.com/hulame/rental-service/internal/service"
	"github.com/hulame/rental-service/internal/worker"
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

	store, pg, err := persistence.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to open storage", zap.Error(err))
	}
	defer pg.Close()

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	gate := auth.NewStatusGate(cfg.Marketplace.SupportContact)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo: store.Users(),
		Tokens:   tokens,
		Gate:     gate,
		Logger:   logger,
	})
	if err := authService.EnsureAdmin(ctx, "Administrator", cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
		logger.Fatal("failed to bootstrap admin", zap.Error(err))
	}

	transactionService := service.NewTransactionService(service.TransactionDependencies{
		Store:      store,
		Gate:       gate,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
		Policy: service.TransactionPolicy{
			PlatformFee:            cfg.Marketplace.PlatformFee,
			ReserveOnDirectRequest: cfg.Marketplace.ReserveOnDirectRequest,
			ListingRelease:         domain.ParseListingReleasePolicy(cfg.Marketplace.ListingReleasePolicy),
		},
	})
	accountService := service.NewAccountService(service.AccountDependencies{
		Store:      store,
		Gate:       gate,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	listingService := service.NewListingService(store, gate, logger)

	notificationDeps := service.NotificationDependencies{
		Store:      store,
		Gate:       gate,
		Dispatcher: dispatcher,
		Logger:     logger,
		Config:     cfg.Notification,
	}
	if redis != nil {
		notificationDeps.Publisher = redis
	}
	notificationService := service.NewNotificationService(notificationDeps)
	worker.StartNotificationWorker(notificationService, logger)

	rateLimiter, err := httptransport.NewRateLimiter(cfg.RateLimit, redis, logger)
	if err != nil {
		logger.Fatal("invalid rate limit configuration", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Listings:       handlers.NewListingsHandler(listingService),
		Transactions:   handlers.NewTransactionsHandler(transactionService),
		Users:          handlers.NewUsersHandler(accountService, transactionService),
		Notifications:  handlers.NewNotificationsHandler(notificationService, redis, logger),
		Admin:          handlers.NewAdminHandler(accountService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, store.Users(), gate),
		RateLimit:      httptransport.RateLimit(rateLimiter, logger),
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()), zap.String("storage", cfg.Storage.Driver))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
