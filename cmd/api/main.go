package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/givebridge/givebridge-backend/api/routes"
	"github.com/givebridge/givebridge-backend/internal/aggregation"
	"github.com/givebridge/givebridge-backend/internal/auth"
	"github.com/givebridge/givebridge-backend/internal/causes"
	"github.com/givebridge/givebridge-backend/internal/donations"
	"github.com/givebridge/givebridge-backend/internal/notifications"
	"github.com/givebridge/givebridge-backend/internal/users"
	stripewebhook "github.com/givebridge/givebridge-backend/internal/webhooks/stripe"
	"github.com/givebridge/givebridge-backend/pkg/auth/session"
	"github.com/givebridge/givebridge-backend/pkg/config"
	"github.com/givebridge/givebridge-backend/pkg/db"
	"github.com/givebridge/givebridge-backend/pkg/logger"
	"github.com/givebridge/givebridge-backend/pkg/metrics"
	"github.com/givebridge/givebridge-backend/pkg/migrate"
	"github.com/givebridge/givebridge-backend/pkg/redis"
	"github.com/givebridge/givebridge-backend/pkg/stripe"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	donationMetrics := metrics.NewDonationMetrics(registry)

	mailer := notifications.NewMailer(cfg.Sendgrid, logg)

	usersRepo := users.NewRepository(dbClient.DB())
	causesRepo := causes.NewRepository(dbClient.DB())
	donationsRepo := donations.NewRepository(dbClient.DB())
	aggregationRepo := aggregation.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		Repo:     usersRepo,
		Sessions: sessionManager,
		OTP:      redisClient,
		Mailer:   mailer,
		Logger:   logg,
		JWT:      cfg.JWT,
		Password: cfg.Password,
		Approval: cfg.Approval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	causesService, err := causes.NewService(causes.ServiceParams{Repo: causesRepo})
	if err != nil {
		logg.Error(context.Background(), "failed to create causes service", err)
		os.Exit(1)
	}

	donationsService, err := donations.NewService(donations.ServiceParams{
		Repo:     donationsRepo,
		Users:    usersRepo,
		Causes:   causesRepo,
		Gateway:  donations.NewStripeGateway(stripeClient),
		Notifier: mailer,
		Metrics:  donationMetrics,
		Logger:   logg,
		Config:   cfg.Donation,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create donations service", err)
		os.Exit(1)
	}

	aggregationService, err := aggregation.NewService(aggregation.ServiceParams{
		Repo:   aggregationRepo,
		Users:  usersRepo,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create aggregation service", err)
		os.Exit(1)
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Reconciler: donationsService,
		Metrics:    donationMetrics,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Donation.WebhookEventTTL, "stripe-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook guard", err)
		os.Exit(1)
	}

	router := routes.NewRouter(routes.Deps{
		Config:   cfg,
		Logger:   logg,
		DB:       dbClient,
		Redis:    redisClient,
		Sessions: sessionManager,
		Registry: registry,

		AuthService:        authService,
		CausesService:      causesService,
		DonationsService:   donationsService,
		AggregationService: aggregationService,
		UsersRepo:          usersRepo,

		StripeClient: stripeClient,
		WebhookSvc:   webhookService,
		WebhookGuard: webhookGuard,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-stopCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
