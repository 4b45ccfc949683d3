package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"creator-funnel/internal/cache"
	"creator-funnel/internal/client"
	"creator-funnel/internal/config"
	"creator-funnel/internal/jobs/reconcile"
	"creator-funnel/internal/logger"
	"creator-funnel/internal/repository"
	"creator-funnel/internal/server"
	"creator-funnel/internal/service"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Printf("Failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	log = log.With(zap.String("env", cfg.Environment.Name))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	db, err := client.OpenDatabase(cfg.Database, log)
	if err != nil {
		log.Fatal("database init failed", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}

	rdb, err := client.InitRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("redis init failed", zap.Error(err))
	}
	if rdb == nil {
		log.Info("REDIS_ADDR not set, page cache disabled")
	} else {
		defer func() { _ = rdb.Close() }()
	}

	clubzilaClient := client.NewClubzilaClient(&cfg.Clubzila, log)

	creatorRepo := repository.NewCreatorRepository(db)
	pageRepo := repository.NewLandingPageRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	webhookEventRepo := repository.NewWebhookEventRepository(db)

	pageCache := cache.NewPageCache(rdb, cfg.Redis.PageTTL)

	pageService := service.NewPageService(
		pageRepo,
		creatorRepo,
		pageCache,
		service.PageDefaults{
			BaseURL:  cfg.BaseURL,
			Amount:   cfg.Clubzila.Amount,
			Currency: cfg.Clubzila.Currency,
		},
		log,
	)
	subscriptionService := service.NewSubscriptionService(
		clubzilaClient,
		pageRepo,
		creatorRepo,
		subscriptionRepo,
		webhookEventRepo,
		service.SubscriptionConfig{
			Amount:            cfg.Clubzila.Amount,
			Currency:          cfg.Clubzila.Currency,
			PendingTTL:        cfg.Subscription.PendingTTL,
			WebhookSecret:     cfg.Clubzila.WebhookSecret,
			CheckSubscription: cfg.Clubzila.CheckSubscription,
		},
		log,
	)

	if cfg.Admin.JWTSecret == "" {
		log.Warn("ADMIN_JWT_SECRET not set, admin routes are unauthenticated")
	}
	if cfg.Clubzila.WebhookSecret == "" {
		log.Warn("CLUBZILA_WEBHOOK_SECRET not set, webhook signatures are not verified")
	}

	// Init HTTP server
	srv, err := server.NewServer(server.Services{
		Creator:      service.NewCreatorService(creatorRepo, pageRepo, pageCache, log),
		Page:         pageService,
		Analytics:    service.NewAnalyticsService(pageRepo, subscriptionRepo),
		Subscription: subscriptionService,
	}, server.Options{
		BaseURL:            cfg.BaseURL,
		AdminJWTSecret:     cfg.Admin.JWTSecret,
		SubscribeRateLimit: cfg.Subscription.RateLimit,
	}, log)
	if err != nil {
		log.Fatal("server init failed", zap.Error(err))
	}

	job := reconcile.New(subscriptionService, cfg.Subscription.ReconcileInterval, log.With(zap.String("job", "reconcile")))
	go job.Start(ctx)

	serverAddr := cfg.HTTP.Addr()
	log.Info("starting HTTP server", zap.String("addr", serverAddr))
	go func() {
		if err := srv.Start(serverAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("signal received, starting graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error", zap.Error(err))
	}
}
