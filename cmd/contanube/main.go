package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/contanube/contanube/internal/app"
	"github.com/contanube/contanube/internal/auth"
	"github.com/contanube/contanube/internal/billing"
	"github.com/contanube/contanube/internal/extract"
	"github.com/contanube/contanube/internal/ledger"
	"github.com/contanube/contanube/internal/platform/cache"
	"github.com/contanube/contanube/internal/platform/db"
	"github.com/contanube/contanube/internal/shared"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "contanube_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, cfg.SubscriptionLength)
	authHandler := auth.NewHandler(logger, authService, sessionManager, csrfManager)
	requireUser := auth.RequireUser(authService, logger)

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("asynq close", slog.Any("error", err))
		}
	}()

	gateway := billing.GatewayConfig{
		Business:   cfg.PayPalBusiness,
		GatewayURL: cfg.PayPalGatewayURL,
		BaseURL:    cfg.AppBaseURL,
	}
	billingService := billing.NewService(gateway, cfg.DemoConfirmDelay, asynqClient, logger)
	webhookVerifier := billing.NewWebhookVerifier(cfg.PayPalVerifyURL, cfg.PayPalWebhookID, cfg.PayPalAccessToken)
	billingHandler := billing.NewHandler(logger, billingService, webhookVerifier, authService, func(r *http.Request) (int64, bool) {
		return auth.UserIDFromContext(r.Context())
	}, cfg.PayPalBusiness)

	ledgerStore := ledger.NewStore(redisClient, cfg.SessionTTL)
	ledgerService := ledger.NewService(ledgerStore, extract.New(nil), logger)
	ledgerHandler := ledger.NewHandler(logger, ledgerService)

	authHandler.WithLogoutHook(func(ctx context.Context, sessionID string) {
		if err := ledgerService.Clear(ctx, sessionID); err != nil {
			logger.Warn("clear session transactions", slog.Any("error", err))
		}
	})

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		AuthHandler:    authHandler,
		BillingHandler: billingHandler,
		LedgerHandler:  ledgerHandler,
		RequireUser:    requireUser,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		logger.Error("server run", slog.Any("error", err))
		os.Exit(1)
	}
}
