package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pratik-mahalle/tasknest/internal/api/handlers"
	"github.com/pratik-mahalle/tasknest/internal/api/middleware"
	"github.com/pratik-mahalle/tasknest/internal/api/router"
	"github.com/pratik-mahalle/tasknest/internal/billing"
	"github.com/pratik-mahalle/tasknest/internal/config"
	"github.com/pratik-mahalle/tasknest/internal/pkg/logger"
	"github.com/pratik-mahalle/tasknest/internal/pkg/validator"
	"github.com/pratik-mahalle/tasknest/internal/providers"
	"github.com/pratik-mahalle/tasknest/internal/repository/postgres"
	"github.com/pratik-mahalle/tasknest/internal/services"
	"github.com/pratik-mahalle/tasknest/internal/worker"
	"github.com/pratik-mahalle/tasknest/migrations"
)

// @title TaskNest API
// @version 1.0
// @description AI usage quotas and subscription lifecycle for TaskNest.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{
		Level:      cfg.Logging.Level,
		Format:     cfg.Logging.Format,
		OutputPath: cfg.Logging.OutputPath,
		Service:    "tasknest-api",
	})

	if err := run(cfg, log); err != nil {
		log.ErrorWithErr(err, "Server exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.RunMigrations(db, migrations.Files); err != nil {
		return err
	}
	log.With("driver", cfg.Database.Driver).Info("Database ready")

	limits := cfg.Quota.Limits()
	accounts := postgres.NewAccountRepository(db)

	scheduler := services.NewResetScheduler(accounts, limits, log)
	subscriptions := services.NewSubscriptionService(accounts, scheduler, limits, log)
	quota := services.NewQuotaService(accounts, subscriptions, scheduler, limits, log)
	accountService := services.NewAccountService(accounts, log)

	// Expire first so recovery only arms timers for accounts that are free now
	scheduler.Start(ctx)
	defer scheduler.Stop()
	if _, err := subscriptions.SweepExpired(ctx, time.Now()); err != nil {
		log.WarnWithErr(err, "Startup expiry sweep failed")
	}
	if _, err := scheduler.RecoverOnStartup(ctx); err != nil {
		log.WarnWithErr(err, "Reset timer recovery failed")
	}

	checks := map[string]handlers.HealthCheck{
		"database": db.PingContext,
	}

	var store billing.IdempotencyStore = postgres.NewPaymentEventRepository(db)
	if cfg.Redis.Enabled {
		rdb, err := billing.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer rdb.Close()
		store = billing.NewRedisIdempotencyStore(rdb, cfg.Billing.IdempotencyTTL)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
		log.With("addr", cfg.Redis.Addr()).Info("Using Redis for payment idempotency")
	}

	gateway := billing.NewStripeGateway(cfg.Billing, limits)
	if !cfg.Billing.Enabled() {
		log.Warn("Stripe is not configured, checkout is disabled")
	}
	billingService := services.NewBillingService(gateway, store, accounts, subscriptions, log)

	assistant := providers.NewAssistant(cfg.AI)
	log.With("provider", assistant.Name()).Info("AI assistant ready")

	maintenance := worker.NewMaintenance(
		subscriptions,
		scheduler,
		cfg.Quota.ExpirySweepSchedule,
		cfg.Quota.ResetSweepSchedule,
		log,
	)
	if err := maintenance.Start(ctx); err != nil {
		return err
	}
	defer maintenance.Stop()

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	go limiter.RunCleanup(ctx, 5*time.Minute)

	val := validator.New()
	h := &router.Handlers{
		Health:  handlers.NewHealthHandler(checks, log),
		Account: handlers.NewAccountHandler(accountService, cfg.Auth, log, val),
		Quota:   handlers.NewQuotaHandler(quota, subscriptions, log),
		Billing: handlers.NewBillingHandler(billingService, subscriptions, log, val),
		AI:      handlers.NewAIHandler(assistant, quota, log, val),
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.New(cfg, log, h, quota, limiter),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.With("addr", srv.Addr).Info("API listening")
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	log.Info("Server stopped")
	return nil
}
