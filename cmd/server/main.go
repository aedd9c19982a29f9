package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/forgo/petzadopt/internal/config"
	"github.com/forgo/petzadopt/internal/database"
	"github.com/forgo/petzadopt/internal/handler"
	"github.com/forgo/petzadopt/internal/jobs"
	"github.com/forgo/petzadopt/internal/middleware"
	"github.com/forgo/petzadopt/internal/repository"
	"github.com/forgo/petzadopt/internal/seed"
	"github.com/forgo/petzadopt/internal/service"
	"github.com/forgo/petzadopt/pkg/jwt"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.Log.Level),
	}))
	slog.SetDefault(logger)

	// Initialize database connection
	db := database.NewSurrealDB(database.Config{
		Host:      cfg.Database.Host,
		Port:      cfg.Database.Port,
		User:      cfg.Database.User,
		Password:  cfg.Database.Password,
		Namespace: cfg.Database.Namespace,
		Database:  cfg.Database.Database,

		TLS:             cfg.Database.TLS,
		ConnectAttempts: cfg.Database.ConnectAttempts,
	})

	ctx := context.Background()
	if err := db.Connect(ctx); err != nil {
		slog.Error("failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	slog.Info("connected to database",
		slog.String("host", cfg.Database.Host),
		slog.String("database", cfg.Database.Database),
	)

	// Initialize JWT service
	jwtService, err := jwt.NewService(jwt.Config{
		PrivateKeyPath: cfg.JWT.PrivateKeyPath,
		PublicKeyPath:  cfg.JWT.PublicKeyPath,
		Secret:         cfg.JWT.Secret,
		Issuer:         cfg.JWT.Issuer,
		ExpirationMins: cfg.JWT.ExpirationMins,
	})
	if err != nil {
		slog.Error("failed to initialize JWT service", slog.String("error", err.Error()))
		os.Exit(1)
	}
	slog.Info("jwt signing configured", slog.String("alg", jwtService.Algorithm()))

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	petRepo := repository.NewPetRepository(db)
	adoptionRepo := repository.NewAdoptionRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	ledgerRepo := repository.NewLedgerRepository(db)

	// Initialize services
	guard := service.NewGuard(service.GuardConfig{
		JWTService: jwtService,
		Users:      userRepo,
	})

	userService := service.NewUserService(service.UserServiceConfig{
		Repo:   userRepo,
		Admins: guard,
	})

	petService := service.NewPetService(service.PetServiceConfig{
		Repo:   petRepo,
		Admins: guard,
	})

	adoptionService := service.NewAdoptionService(service.AdoptionServiceConfig{
		Repo: adoptionRepo,
		Pets: petRepo,
	})

	campaignService := service.NewCampaignService(service.CampaignServiceConfig{
		Repo:   campaignRepo,
		Admins: guard,
	})

	policy, err := service.ParseReversalPolicy(cfg.Ledger.ReversalPolicy)
	if err != nil {
		slog.Error("invalid reversal policy", slog.String("error", err.Error()))
		os.Exit(1)
	}

	reconcileQueue := service.NewReconcileQueue(0)

	// Live campaign totals
	eventHub := service.NewEventHub(0)
	defer eventHub.Close()

	ledgerService := service.NewLedgerService(service.LedgerConfig{
		Store:          ledgerRepo,
		Queue:          reconcileQueue,
		ReversalPolicy: policy,
		MaxRetries:     cfg.Ledger.MaxRetries,
		AcceptPaused:   cfg.Ledger.AcceptPaused,
		Events:         eventHub,
		Logger:         logger,
	})

	var processor service.PaymentProcessor
	if cfg.Stripe.SecretKey != "" {
		processor = service.NewStripeProcessor(service.StripeConfig{
			SecretKey:      cfg.Stripe.SecretKey,
			Currency:       cfg.Stripe.Currency,
			PaymentMethods: cfg.Stripe.PaymentMethods,
		})
	} else {
		slog.Warn("no payment processor configured; payment intents are disabled")
	}

	paymentService := service.NewPaymentService(service.PaymentServiceConfig{
		Processor:     processor,
		Ledger:        ledgerService,
		VerifyCharges: cfg.Stripe.VerifyCharges,
		Logger:        logger,
	})

	// Initialize rate limiter and idempotency store
	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:   cfg.RateLimit.Rate,
		Window: cfg.RateLimit.Window,
		Burst:  cfg.RateLimit.Burst,
	})
	defer rateLimiter.Stop()

	paymentLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Rate:   cfg.RateLimit.PaymentRate,
		Window: cfg.RateLimit.Window,
		Burst:  cfg.RateLimit.PaymentBurst,
	})
	defer paymentLimiter.Stop()

	idempotencyStore := middleware.NewIdempotencyStore(middleware.IdempotencyConfig{})
	defer idempotencyStore.Stop()

	// Start background jobs
	reconciler := jobs.NewLedgerReconciler(jobs.LedgerReconcilerConfig{
		Ledger:         ledgerService,
		Queue:          reconcileQueue,
		Interval:       cfg.Ledger.ReconcileInterval,
		Batch:          cfg.Ledger.ReconcileBatch,
		AuditOnStartup: cfg.Ledger.AuditOnStartup,
		Logger:         logger,
	})
	reconciler.Start()
	defer reconciler.Stop()

	// Fixture loading is a development convenience only
	var seeder *handler.AdminSeederHandler
	if cfg.IsDevelopment() {
		seeder = handler.NewAdminSeederHandler(seed.NewLoader(seed.LoaderConfig{
			Users:     userRepo,
			Pets:      petService,
			Campaigns: campaignService,
			Logger:    logger,
		}))
	}

	// Create router and register routes
	mux := http.NewServeMux()
	registerRoutes(mux, guard, handlers{
		health:    handler.NewHealthHandler(db),
		token:     handler.NewTokenHandler(guard),
		pets:      handler.NewPetHandler(petService),
		adoptions: handler.NewAdoptionHandler(adoptionService),
		campaigns: handler.NewCampaignHandler(campaignService),
		donations: handler.NewDonationHandler(paymentService, ledgerService),
		events:    handler.NewEventsHandler(eventHub, campaignService),
		users:     handler.NewUserHandler(userService),
		seeder:    seeder,
	})

	// Apply global middleware. The caller is resolved before rate limiting
	// and idempotency so both key on the verified email. Compression sits
	// outside idempotency so replays are encoded for the new request.
	wrapped := middleware.Chain(
		mux,
		middleware.RequestID,
		middleware.Logger,
		middleware.Recovery,
		middleware.CORS(cfg.Server.AllowedOrigins),
		middleware.Compress,
		middleware.OptionalAuth(guard),
		middleware.RateLimit(rateLimiter,
			middleware.RateLimitRule{Method: http.MethodPost, Prefix: "/v1/payments", Limiter: paymentLimiter},
			middleware.RateLimitRule{Method: http.MethodPost, Prefix: "/v1/jwt", Limiter: paymentLimiter},
		),
		middleware.Idempotency(idempotencyStore),
	)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      wrapped,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}
	// Event streams do not count as in-flight work
	server.RegisterOnShutdown(eventHub.Close)

	// Start server in goroutine
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Server.Port),
			slog.String("env", cfg.Server.Env),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", slog.String("error", err.Error()))
	}

	slog.Info("server exited")
}

// logLevel maps a validated LOG_LEVEL value to a slog level
func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
