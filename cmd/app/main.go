package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"restaurant-offer-service/internal/config"
	pg "restaurant-offer-service/internal/infra/db/postgres"
	"restaurant-offer-service/internal/infra/logging"
	"restaurant-offer-service/internal/infra/metrics"
	red "restaurant-offer-service/internal/infra/redis"
	"restaurant-offer-service/internal/infra/sched"
	"restaurant-offer-service/internal/infra/web"
	"restaurant-offer-service/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (console logs)")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Runtime.Dev {
		log.Printf("[DEV MODE] Enabled")
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	metrics.MustRegister()

	// ---- Postgres ----
	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	// ---- Redis (optional, rate limiting only) ----
	var limiter *red.RateLimiter
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Fatalf("redis: %v", err)
		}
		defer redisClient.Close()
		limiter = red.NewRateLimiter(redisClient)
	} else {
		logger.Warn().Msg("redis.url not set, registration rate limiting disabled")
	}

	// ---- Repositories ----
	entryRepo := pg.NewOfferEntryRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Use cases ----
	offerUC := usecase.NewOfferUseCase(entryRepo, txManager, logger)
	adminUC := usecase.NewAdminUseCase(entryRepo, logger)

	// ---- Auth gate ----
	auth := web.NewAuthManager(cfg.Auth.JWTSecret, cfg.Auth.PasswordHash, cfg.Auth.TokenTTL)

	// ---- Background purge ----
	retention := time.Duration(cfg.Offer.RetentionDays) * 24 * time.Hour
	purge := sched.NewPurgeWorker(cfg.Offer.PurgeInterval, retention, adminUC, logger)
	go func() {
		if err := purge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("purge worker stopped")
		}
	}()

	// ---- HTTP server ----
	srv := web.NewServer(offerUC, adminUC, auth, limiter, cfg.Offer, logger)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Routes(cfg.Server.RequestTimeout),
	}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("http server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			cancel()
		}
	}()

	// ---- Graceful shutdown ----
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case s := <-sig:
		logger.Info().Str("signal", s.String()).Msg("shutting down")
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("http shutdown")
	}
}
