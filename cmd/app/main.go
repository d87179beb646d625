package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tapzar-billing/internal/config"
	pg "tapzar-billing/internal/infra/db/postgres"
	"tapzar-billing/internal/infra/logging"
	"tapzar-billing/internal/infra/metrics"
	"tapzar-billing/internal/infra/notify"
	"tapzar-billing/internal/infra/payment"
	rds "tapzar-billing/internal/infra/redis"
	"tapzar-billing/internal/infra/web"
	"tapzar-billing/internal/usecase"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 8)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection failed")
	}
	defer pool.Close()

	var limiter web.Limiter
	var cache usecase.StatusCache
	if cfg.Redis.URL != "" {
		redisClient, err := rds.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connection failed")
		}
		defer redisClient.Close()
		limiter = rds.NewEndpointLimiter(redisClient, cfg.Webhook.RateLimit, cfg.Webhook.RateWindow)
		cache = rds.NewStatusCache(redisClient, cfg.Redis.TTL)
	}

	paymentRepo := pg.NewPaymentRepo(pool)
	subRepo := pg.NewSubscriptionRepo(pool)
	userRepo := pg.NewUserRepo(pool)
	tm := pg.NewTxManager(pool)

	gateway := payment.NewFreedomPayGateway(cfg.Gateway, payment.PayboxXMLParser{}, logger)
	notifier := notify.NewLogNotifier(userRepo, logger)

	paymentUC := usecase.NewPaymentUseCase(paymentRepo, gateway, cache, cfg.Gateway.Currency, logger)
	subUC := usecase.NewSubscriptionUseCase(subRepo, logger)
	webhookUC := usecase.NewWebhookUseCase(usecase.WebhookConfig{
		Secret:        cfg.Gateway.SecretKey,
		DefaultScript: cfg.Webhook.ResultScript,
		Sandbox:       cfg.Gateway.Sandbox(),
	}, paymentUC, subUC, tm, notifier, logger)

	auth := web.NewAuthManager(cfg.Auth.HMACSecret)
	server := web.NewServer(paymentUC, subUC, webhookUC, auth, limiter, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Start(cfg.Server.Port) }()

	select {
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
	case err := <-errCh:
		logger.Error().Err(err).Msg("http server stopped")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("shutdown failed")
	}
}
