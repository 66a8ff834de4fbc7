package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"github.com/craftlink/marketplace-api/internal/http/handlers"
	imw "github.com/craftlink/marketplace-api/internal/http/middleware"
	"github.com/craftlink/marketplace-api/internal/platform/lock"
	"github.com/craftlink/marketplace-api/internal/platform/notify"
	"github.com/craftlink/marketplace-api/internal/platform/payments"
	"github.com/craftlink/marketplace-api/internal/repo/postgres"
	"github.com/craftlink/marketplace-api/internal/service"
	"github.com/craftlink/marketplace-api/pkg/config"
	"github.com/craftlink/marketplace-api/pkg/database"
	"github.com/craftlink/marketplace-api/pkg/events"
	"github.com/craftlink/marketplace-api/pkg/logger"
	mw "github.com/craftlink/marketplace-api/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	// Connect to database
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Connect to event bus
	eventBus, err := events.NewNATSEventBus(cfg.NATS.URL)
	if err != nil {
		logger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer eventBus.Close()

	// Per-user cancellation lock; without Redis the documented
	// double-escalation race remains.
	var locker lock.Locker = lock.NoopLocker{}
	if cfg.Redis.Enabled {
		redisLocker, err := lock.NewRedisLocker(cfg.Redis.URL)
		if err != nil {
			logger.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer redisLocker.Close()
		locker = redisLocker
	}

	var charger payments.Charger = payments.NoopCharger{}
	if cfg.Stripe.SecretKey != "" {
		charger = payments.NewStripeCharger(cfg.Stripe.SecretKey)
	}

	var notifier notify.Notifier = notify.NewDevNotifier()
	if !cfg.Mail.DevMode {
		notifier = notify.NewMailerSend(cfg.Mail.MailerSendKey, cfg.Mail.FromName, cfg.Mail.FromEmail)
	}

	// Repositories
	providerRepo := postgres.NewProviderRepo(pool)
	banRepo := postgres.NewBanRepo(pool)
	cancellationRepo := postgres.NewCancellationRepo(pool)
	subscriptionRepo := postgres.NewSubscriptionRepo(pool)
	bookingRepo := postgres.NewBookingRepo(pool)
	userRepo := postgres.NewUserRepo(pool)

	// Services
	banLedger := service.NewBanLedger(banRepo, cancellationRepo, userRepo, eventBus, notifier, locker, cfg.Trust)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, providerRepo, charger, eventBus, cfg.Plans)

	// Handlers
	providerHandler := handlers.NewProviderHandler(providerRepo)
	bookingHandler := handlers.NewBookingHandler(bookingRepo, banLedger)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)
	trustHandler := handlers.NewTrustHandler(banLedger)

	// Setup router
	r := chi.NewRouter()

	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("marketplace-api"))
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	secret := cfg.Auth.JWTSecret

	// Public reads: banned users can still browse, so no gate here.
	r.Group(func(r chi.Router) {
		r.Use(imw.OptionalJWT(secret))
		r.Get("/providers", providerHandler.List)
		r.Get("/providers/{id}", providerHandler.GetByID)
	})

	// Authenticated reads bypass the gate as well.
	r.Group(func(r chi.Router) {
		r.Use(imw.RequireJWT(secret))
		r.Get("/providers/{id}/subscription", subscriptionHandler.Status)
		r.Get("/me/ban", trustHandler.MyBanStatus)
	})

	// Every mutating route goes through the access gate.
	r.Group(func(r chi.Router) {
		r.Use(imw.RequireJWT(secret))
		r.Use(imw.AccessGate(banLedger))
		r.Patch("/providers/me", providerHandler.UpdateMe)
		r.Delete("/bookings/{id}", bookingHandler.Cancel)
		r.Post("/providers/{id}/subscription", subscriptionHandler.Create)
		r.Delete("/providers/{id}/subscription", subscriptionHandler.Cancel)
		r.Post("/providers/{id}/tier/upgrade", subscriptionHandler.UpgradeTier)
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down marketplace API...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Shutdown error", "error", err)
		}
	}()

	logger.Info("Starting marketplace API", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
